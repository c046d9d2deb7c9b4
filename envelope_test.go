package insign

import (
	"encoding/json"
	"testing"

	"github.com/insignlang/insign/core/ierr"
)

func TestDecodeEnvelopeArray(t *testing.T) {
	units, err := DecodeEnvelope([]byte(`[{"pos":[10,64,10],"text":"@rc([0,0,0],[1,1,1])"}]`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(units) != 1 || units[0].Pos != [3]int32{10, 64, 10} {
		t.Fatalf("got %+v", units)
	}
}

func TestDecodeEnvelopeMissingText(t *testing.T) {
	_, err := DecodeEnvelope([]byte(`[{"pos":[0,0,0]}]`))
	var ce *ierr.CompileError
	if !ierr.As(err, &ce) || ce.Kind != ierr.InvalidInput {
		t.Fatalf("expected InvalidInput, got %v", err)
	}
}

func TestDecodeEnvelopeNotAnArray(t *testing.T) {
	_, err := DecodeEnvelope([]byte(`{"pos":[0,0,0],"text":"x"}`))
	var ce *ierr.CompileError
	if !ierr.As(err, &ce) || ce.Kind != ierr.InvalidInput {
		t.Fatalf("expected InvalidInput, got %v", err)
	}
}

func TestDecodeEnvelopeWrongPosArity(t *testing.T) {
	_, err := DecodeEnvelope([]byte(`[{"pos":[0,0],"text":"x"}]`))
	var ce *ierr.CompileError
	if !ierr.As(err, &ce) || ce.Kind != ierr.InvalidInput {
		t.Fatalf("expected InvalidInput, got %v", err)
	}
}

func TestDecodeEnvelopeEmptyArray(t *testing.T) {
	units, err := DecodeEnvelope([]byte(`[]`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(units) != 0 {
		t.Fatalf("got %+v", units)
	}
}

func TestDecodeJSONLines(t *testing.T) {
	input := "{\"pos\":[0,0,0],\"text\":\"@rc([0,0,0],[1,1,1])\"}\n{\"pos\":[1,1,1],\"text\":\"@rc([0,0,0],[1,1,1])\"}\n"
	units, err := DecodeJSONLines([]byte(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(units) != 2 {
		t.Fatalf("got %+v", units)
	}
}

func TestEncodeErrorShape(t *testing.T) {
	err := ierr.New(ierr.UnknownRegion, 2, 3, "region %q not found", "x")
	out := EncodeError(err)
	var decoded map[string]interface{}
	if jsonErr := json.Unmarshal(out, &decoded); jsonErr != nil {
		t.Fatalf("output is not valid JSON: %v", jsonErr)
	}
	if decoded["status"] != "error" || decoded["code"] != "UnknownRegion" {
		t.Fatalf("got %+v", decoded)
	}
	loc, ok := decoded["location"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected location object, got %+v", decoded)
	}
	if loc["tuple_index"].(float64) != 2 || loc["statement_index"].(float64) != 3 {
		t.Fatalf("got location %+v", loc)
	}
}
