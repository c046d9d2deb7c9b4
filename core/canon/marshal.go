// Package canon implements the canonical serializer (spec §4.5): it
// renders a resolved region.Document as a single byte-stable JSON object,
// with explicit key ordering the stdlib's map-key sort cannot express at
// the top level ($global, then wildcards, then region ids).
//
// Leaf values — metadata maps, arrays, strings, numbers — are handed to
// encoding/json, which already sorts map[string]any keys lexicographically
// at every depth; only the top-level grouping and each region's
// bounding_boxes/metadata ordering need to be built by hand. Grounded on
// the teacher's stream-based capsule manifest writer in
// core/store/manifest.go, which takes the same "small hand-ordered outer
// shell, stdlib json for everything nested" approach.
package canon

import (
	"bytes"
	"encoding/json"
	"sort"

	"github.com/insignlang/insign/core/geom"
	"github.com/insignlang/insign/core/ierr"
	"github.com/insignlang/insign/core/region"
)

// Options controls output formatting. Pretty never changes key order or
// value content — it only re-indents the same canonical byte sequence.
type Options struct {
	Pretty bool

	// Extra adds additional top-level keys after $global/wildcards/
	// regions, sorted lexicographically among themselves. It exists for
	// insign.Options.Debug's "$capabilities" echo; spec §4.5's ordering
	// contract governs only $global/wildcards/region keys, so Extra keys
	// are deliberately kept out of that grouping and off by default.
	Extra map[string]interface{}
}

// Marshal renders doc into its canonical JSON form.
func Marshal(doc *region.Document, opts Options) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeDocument(&buf, doc, opts.Extra); err != nil {
		return nil, err
	}
	if !opts.Pretty {
		return buf.Bytes(), nil
	}
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, buf.Bytes(), "", "  "); err != nil {
		return nil, ierr.NewNoLocation(ierr.SerializationError, "failed to indent output: %s", err.Error())
	}
	return pretty.Bytes(), nil
}

func writeDocument(buf *bytes.Buffer, doc *region.Document, extra map[string]interface{}) error {
	w := newObjectWriter(buf)

	if len(doc.Global) > 0 {
		if err := w.field("$global", doc.Global); err != nil {
			return err
		}
	}

	for _, k := range sortedKeys(doc.Wildcards) {
		if err := w.field(k, doc.Wildcards[k]); err != nil {
			return err
		}
	}

	rkeys := make([]string, 0, len(doc.Regions))
	for k := range doc.Regions {
		rkeys = append(rkeys, k)
	}
	sort.Strings(rkeys)
	for _, k := range rkeys {
		ro := doc.Regions[k]
		if err := w.fieldFunc(k, func(b *bytes.Buffer) error { return writeRegion(b, ro) }); err != nil {
			return err
		}
	}

	ekeys := make([]string, 0, len(extra))
	for k := range extra {
		ekeys = append(ekeys, k)
	}
	sort.Strings(ekeys)
	for _, k := range ekeys {
		if err := w.field(k, extra[k]); err != nil {
			return err
		}
	}

	w.close()
	return nil
}

func writeRegion(buf *bytes.Buffer, ro *region.RegionOutput) error {
	w := newObjectWriter(buf)
	if len(ro.Boxes) > 0 {
		if err := w.fieldFunc("bounding_boxes", func(b *bytes.Buffer) error { return writeBoxes(b, ro.Boxes) }); err != nil {
			return err
		}
	}
	if len(ro.Metadata) > 0 {
		if err := w.field("metadata", ro.Metadata); err != nil {
			return err
		}
	}
	w.close()
	return nil
}

// writeBoxes emits each box as [[x1,y1,z1],[x2,y2,z2]]. Boxes are assumed
// already canonicalized (sorted, deduplicated) by core/region/core/geom
// upstream; this function only formats them.
func writeBoxes(buf *bytes.Buffer, boxes []geom.Box) error {
	buf.WriteByte('[')
	for i, b := range boxes {
		if i > 0 {
			buf.WriteByte(',')
		}
		enc, err := encodeValue([2][3]int32{[3]int32(b.Min), [3]int32(b.Max)})
		if err != nil {
			return err
		}
		buf.Write(enc)
	}
	buf.WriteByte(']')
	return nil
}

func sortedKeys(m map[string]map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
