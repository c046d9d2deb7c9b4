package region

import "github.com/insignlang/insign/core/geom"

// RegionOutput is one named (or surviving anonymous) region's resolved
// content: its canonical box set and its merged metadata, ready for
// core/canon to order and emit per spec §4.5.
type RegionOutput struct {
	Boxes     []geom.Box
	Metadata  map[string]interface{}
	Anonymous bool
}

// Document is the fully-resolved compilation result: everything
// core/canon needs to serialize, with no remaining ambiguity about
// ordering, pruning, or conflicts — those decisions are all made here.
type Document struct {
	Global    map[string]interface{}
	Wildcards map[string]map[string]interface{}
	Regions   map[string]*RegionOutput
}

// assemble merges the evaluated region table with grouped metadata into
// the final Document, applying spec §3's anonymous-pruning rule: an
// anonymous region with no metadata attachment is omitted entirely, even
// if it has boxes.
func assemble(t *table, global map[string]interface{}, wildcards map[string]map[string]interface{}, regionMeta map[string]map[string]interface{}) *Document {
	regions := make(map[string]*RegionOutput)

	for _, id := range t.order {
		e := t.entries[id]
		md := regionMeta[id]
		if e.anonymous && len(md) == 0 {
			continue
		}
		regions[id] = &RegionOutput{Boxes: e.resolved, Metadata: md, Anonymous: e.anonymous}
	}

	// Metadata may target a region id that no geometry statement ever
	// defined (spec §4.4 "Validation of targets": such entries must be
	// preserved verbatim so downstream, future-defining consumers still
	// see them). These phantom regions are never anonymous, since
	// anonymous ids are only ever synthesized from a geometry statement.
	for id, md := range regionMeta {
		if _, ok := regions[id]; ok {
			continue
		}
		regions[id] = &RegionOutput{Metadata: md}
	}

	return &Document{Global: global, Wildcards: wildcards, Regions: regions}
}
