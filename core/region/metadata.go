package region

import (
	"reflect"

	"github.com/insignlang/insign/core/ast"
	"github.com/insignlang/insign/core/ierr"
)

// metaGroup accumulates every metadata entry that shares a (target, key)
// pair, so conflicting values can be reported with every contributing
// origin, per spec §4.4 "Metadata assignment".
type metaGroup struct {
	kind   ast.TargetKind
	target string // target.Key(): "$global", "<prefix>.*", or a region id
	region string // set when kind == TargetExact
	key    string
	value  interface{}
	origins []ierr.Location
}

type groupKey struct{ target, key string }

// assignMetadata groups metadata entries by (target, key), verifies
// structural equality across duplicates, and buckets the survivors into
// global/wildcard/region-keyed maps ready for final document assembly.
// Values are compared with reflect.DeepEqual: core/parse decodes JSON
// numbers as json.Number, so two entries are structurally equal exactly
// when they round-tripped through the same textual JSON (so 1 and 1.0
// are treated as different values).
func assignMetadata(metas []*ast.MetaStmt) (global map[string]interface{}, wildcards map[string]map[string]interface{}, regions map[string]map[string]interface{}, err error) {
	groups := make(map[groupKey]*metaGroup)
	var order []groupKey

	for _, m := range metas {
		gk := groupKey{target: m.Target.Key(), key: m.Key}
		loc := ierr.Location{UnitIndex: m.Origin.UnitIndex, StatementIndex: m.Origin.StatementIndex}

		g, ok := groups[gk]
		if !ok {
			g = &metaGroup{
				kind:   m.Target.Kind,
				target: m.Target.Key(),
				region: m.Target.Region,
				key:    m.Key,
				value:  m.Value,
			}
			groups[gk] = g
			order = append(order, gk)
		} else if !reflect.DeepEqual(g.value, m.Value) {
			return nil, nil, nil, ierr.NewMulti(ierr.MetadataConflict,
				append(append([]ierr.Location{}, g.origins...), loc),
				"target %q key %q received conflicting values", gk.target, gk.key)
		}
		g.origins = append(g.origins, loc)
	}

	global = map[string]interface{}{}
	wildcards = map[string]map[string]interface{}{}
	regions = map[string]map[string]interface{}{}

	for _, gk := range order {
		g := groups[gk]
		switch g.kind {
		case ast.TargetGlobal:
			global[g.key] = g.value
		case ast.TargetWildcard:
			bucket, ok := wildcards[g.target]
			if !ok {
				bucket = map[string]interface{}{}
				wildcards[g.target] = bucket
			}
			bucket[g.key] = g.value
		default: // TargetExact
			bucket, ok := regions[g.region]
			if !ok {
				bucket = map[string]interface{}{}
				regions[g.region] = bucket
			}
			bucket[g.key] = g.value
		}
	}
	return global, wildcards, regions, nil
}
