package insign

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"sync"
	"testing"
	"testing/quick"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/insignlang/insign/core/ierr"
	"github.com/insignlang/insign/core/unit"
)

func mustCompile(t *testing.T, envelope string, opts Options) []byte {
	t.Helper()
	units, err := DecodeEnvelope([]byte(envelope))
	if err != nil {
		t.Fatalf("envelope decode error: %v", err)
	}
	out, err := Compile(context.Background(), units, opts)
	if err != nil {
		t.Fatalf("compile error: %v", err)
	}
	return out
}

func TestCompileScenarioAnonymousRelativeBoxWithMetadata(t *testing.T) {
	out := mustCompile(t, `[{"pos":[10,64,10],"text":"@rc([0,0,0],[3,2,1])\n#doc.label=\"Patch A\""}]`, Options{})
	var doc map[string]interface{}
	if err := json.Unmarshal(out, &doc); err != nil {
		t.Fatalf("bad json: %v", err)
	}
	region, ok := doc["__anon:0:0"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected __anon:0:0 region, got %+v", doc)
	}
	boxes := region["bounding_boxes"].([]interface{})
	if len(boxes) != 1 {
		t.Fatalf("got boxes %+v", boxes)
	}
	meta := region["metadata"].(map[string]interface{})
	if meta["doc.label"] != "Patch A" {
		t.Fatalf("got metadata %+v", meta)
	}
}

func TestCompileScenarioNamedAccumulatorAcrossUnits(t *testing.T) {
	envelope := `[
		{"pos":[0,0,0],"text":"@dataloop=rc([0,64,0],[31,72,15])"},
		{"pos":[0,0,0],"text":"@dataloop=rc([100,0,0],[110,10,10])"}
	]`
	out := mustCompile(t, envelope, Options{})
	var doc map[string]interface{}
	if err := json.Unmarshal(out, &doc); err != nil {
		t.Fatalf("bad json: %v", err)
	}
	dl := doc["dataloop"].(map[string]interface{})
	boxes := dl["bounding_boxes"].([]interface{})
	if len(boxes) != 2 {
		t.Fatalf("got %+v", boxes)
	}
}

func TestCompileScenarioUnionDefine(t *testing.T) {
	envelope := `[{"pos":[0,0,0],"text":"@a=rc([0,0,0],[1,1,1])\n@b=rc([10,10,10],[11,11,11])\n@c=a+b\n#c:note=\"u\""}]`
	out := mustCompile(t, envelope, Options{})
	var doc map[string]interface{}
	if err := json.Unmarshal(out, &doc); err != nil {
		t.Fatalf("bad json: %v", err)
	}
	c := doc["c"].(map[string]interface{})
	boxes := c["bounding_boxes"].([]interface{})
	if len(boxes) != 2 {
		t.Fatalf("got %+v", boxes)
	}
	meta := c["metadata"].(map[string]interface{})
	if meta["note"] != "u" {
		t.Fatalf("got %+v", meta)
	}
}

func TestCompileScenarioGlobalAndWildcard(t *testing.T) {
	envelope := `[{"pos":[0,0,0],"text":"#cpu.*:power.budget=\"low\"\n#$global:io.bus_width=8"}]`
	out := mustCompile(t, envelope, Options{})

	gIdx := bytesIndex(out, []byte(`"$global"`))
	cpuIdx := bytesIndex(out, []byte(`"cpu.*"`))
	if gIdx < 0 || cpuIdx < 0 || gIdx > cpuIdx {
		t.Fatalf("expected $global before cpu.* in %s", out)
	}
}

func TestCompileScenarioConflict(t *testing.T) {
	envelope := `[{"pos":[0,0,0],"text":"#r:k=1"},{"pos":[0,0,0],"text":"#r:k=2"}]`
	units, err := DecodeEnvelope([]byte(envelope))
	if err != nil {
		t.Fatalf("decode error: %v", err)
	}
	_, err = Compile(context.Background(), units, Options{})
	var ce *ierr.CompileError
	if !ierr.As(err, &ce) || ce.Kind != ierr.MetadataConflict {
		t.Fatalf("expected MetadataConflict, got %v", err)
	}
}

func TestCompileScenarioConflictIdenticalDuplicatesOK(t *testing.T) {
	envelope := `[{"pos":[0,0,0],"text":"#r:k=1"},{"pos":[0,0,0],"text":"#r:k=1"}]`
	mustCompile(t, envelope, Options{})
}

func TestCompileScenarioCycle(t *testing.T) {
	envelope := `[{"pos":[0,0,0],"text":"@a=b\n@b=a"}]`
	units, err := DecodeEnvelope([]byte(envelope))
	if err != nil {
		t.Fatalf("decode error: %v", err)
	}
	_, err = Compile(context.Background(), units, Options{})
	var ce *ierr.CompileError
	if !ierr.As(err, &ce) || ce.Kind != ierr.CyclicDefinition {
		t.Fatalf("expected CyclicDefinition, got %v", err)
	}
}

func TestCompileDeterministicAcrossCalls(t *testing.T) {
	envelope := `[{"pos":[0,0,0],"text":"@a=rc([0,0,0],[1,1,1])\n#a:k=\"v\""}]`
	units, err := DecodeEnvelope([]byte(envelope))
	if err != nil {
		t.Fatalf("decode error: %v", err)
	}
	a, err := Compile(context.Background(), units, Options{})
	if err != nil {
		t.Fatalf("compile error: %v", err)
	}
	b, err := Compile(context.Background(), units, Options{})
	if err != nil {
		t.Fatalf("compile error: %v", err)
	}
	if string(a) != string(b) {
		diff, _ := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
			A:        difflib.SplitLines(string(a)),
			B:        difflib.SplitLines(string(b)),
			FromFile: "first compile",
			ToFile:   "second compile",
			Context:  2,
		})
		t.Fatalf("non-deterministic output:\n%s", diff)
	}
}

func TestCompilePhase0ClosureRejectsPhase1Operators(t *testing.T) {
	envelope := `[{"pos":[0,0,0],"text":"@a=rc([0,0,0],[1,1,1])\n@b=rc([1,1,1],[2,2,2])\n@c=a-b"}]`
	units, err := DecodeEnvelope([]byte(envelope))
	if err != nil {
		t.Fatalf("decode error: %v", err)
	}
	_, err = Compile(context.Background(), units, Options{BooleanOps: false})
	var ce *ierr.CompileError
	if !ierr.As(err, &ce) || ce.Kind != ierr.UnknownOperator {
		t.Fatalf("expected UnknownOperator, got %v", err)
	}
}

func TestCompileDebugEchoesCapabilities(t *testing.T) {
	envelope := `[{"pos":[0,0,0],"text":"#$global:v=1"}]`
	units, err := DecodeEnvelope([]byte(envelope))
	if err != nil {
		t.Fatalf("decode error: %v", err)
	}
	out, err := Compile(context.Background(), units, Options{Debug: true, BooleanOps: true})
	if err != nil {
		t.Fatalf("compile error: %v", err)
	}
	var doc map[string]interface{}
	if err := json.Unmarshal(out, &doc); err != nil {
		t.Fatalf("bad json: %v", err)
	}
	caps, ok := doc["$capabilities"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected $capabilities, got %+v", doc)
	}
	if caps["boolean_ops"] != true {
		t.Fatalf("got %+v", caps)
	}
}

func TestCompileConcurrentRequestsDoNotCrossTalk(t *testing.T) {
	var wg sync.WaitGroup
	errs := make(chan error, 50)
	for i := 0; i < 50; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			units := []unit.RawUnit{{Text: "@rc([0,0,0],[1,1,1])\n#n=" + itoa(i)}}
			out, err := Compile(context.Background(), units, Options{})
			if err != nil {
				errs <- err
				return
			}
			var doc map[string]interface{}
			if jsonErr := json.Unmarshal(out, &doc); jsonErr != nil {
				errs <- jsonErr
				return
			}
			region := doc["__anon:0:0"].(map[string]interface{})
			meta := region["metadata"].(map[string]interface{})
			if meta["n"].(float64) != float64(i) {
				errs <- errNotMatching
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent compile error: %v", err)
	}
}

func bytesIndex(haystack, needle []byte) int {
	for i := 0; i+len(needle) <= len(haystack); i++ {
		match := true
		for j := range needle {
			if haystack[i+j] != needle[j] {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}

func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	neg := i < 0
	if neg {
		i = -i
	}
	var digits []byte
	for i > 0 {
		digits = append([]byte{byte('0' + i%10)}, digits...)
		i /= 10
	}
	if neg {
		return "-" + string(digits)
	}
	return string(digits)
}

var errNotMatching = errFixed("concurrent result mismatch")

type errFixed string

func (e errFixed) Error() string { return string(e) }

// TestCompileReorderingIndependentUnitsIsANoOp checks that two units
// defining distinct named regions, with no shared region ids and no
// shared metadata keys, produce the same named-region output regardless
// of the order they're submitted in — determinism only promises a
// stable key order in the serialized document (spec §4.5), not that
// unit order is irrelevant, so this property is scoped to units that
// share no identifiers and therefore cannot race with each other.
func TestCompileReorderingIndependentUnitsIsANoOp(t *testing.T) {
	prop := func(seedA, seedB uint16, gap uint8) bool {
		nameA := fmt.Sprintf("region_a_%d", seedA)
		nameB := fmt.Sprintf("region_b_%d", seedB)
		if nameA == nameB {
			return true
		}
		originA := int32(seedA % 1000)
		originB := originA + int32(gap) + 2000 // keep the two boxes well apart

		unitA := unit.RawUnit{Text: fmt.Sprintf(
			"@%s=rc([0,0,0],[1,1,1])\n#%s:k=%d", nameA, nameA, seedA,
		)}
		unitB := unit.RawUnit{Text: fmt.Sprintf(
			"@%s=rc([%d,0,0],[%d,1,1])\n#%s:k=%d", nameB, originB, originB+1, nameB, seedB,
		)}

		forward, err := Compile(context.Background(), []unit.RawUnit{unitA, unitB}, Options{})
		if err != nil {
			t.Logf("forward order compile error: %v", err)
			return false
		}
		backward, err := Compile(context.Background(), []unit.RawUnit{unitB, unitA}, Options{})
		if err != nil {
			t.Logf("backward order compile error: %v", err)
			return false
		}

		var fdoc, bdoc map[string]interface{}
		if err := json.Unmarshal(forward, &fdoc); err != nil {
			t.Logf("forward order output is not valid JSON: %v", err)
			return false
		}
		if err := json.Unmarshal(backward, &bdoc); err != nil {
			t.Logf("backward order output is not valid JSON: %v", err)
			return false
		}
		return reflect.DeepEqual(fdoc, bdoc)
	}
	if err := quick.Check(prop, &quick.Config{MaxCount: 64}); err != nil {
		t.Fatalf("reordering property failed: %v", err)
	}
}
