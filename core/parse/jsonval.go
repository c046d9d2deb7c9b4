package parse

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// parseJSONValue parses exactly one strict RFC 8259 JSON value from the
// start of s (after skipping leading whitespace) and reports how many
// bytes of s were consumed. Numbers are decoded as json.Number so the
// canonical serializer can later distinguish integers from doubles
// without relying on locale-dependent reformatting.
func parseJSONValue(s string) (value interface{}, consumed int, err error) {
	trimmed := strings.TrimLeft(s, " \t\r\n")
	leading := len(s) - len(trimmed)
	if trimmed == "" {
		return nil, 0, fmt.Errorf("expected a JSON value, found end of statement")
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(trimmed)))
	dec.UseNumber()

	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return nil, 0, fmt.Errorf("invalid JSON value: %w", err)
	}
	return v, leading + int(dec.InputOffset()), nil
}
