// Package ast defines the typed AST node, target, and value model that
// core/parse produces and core/region consumes: geometry statements,
// metadata statements, region identifiers, metadata targets, and the
// boolean region-expression tree.
package ast

import (
	"fmt"
	"regexp"

	"github.com/insignlang/insign/core/geom"
)

// regionIDPattern matches spec §3's RegionId grammar: a non-empty string
// over [A-Za-z0-9_.]. The identifier is treated as an opaque string; the
// dot convention is a naming convention only, never parsed structurally.
var regionIDPattern = regexp.MustCompile(`^[A-Za-z0-9_.]+$`)

// ValidRegionID reports whether s is a syntactically valid region
// identifier.
func ValidRegionID(s string) bool {
	return s != "" && regionIDPattern.MatchString(s)
}

// Origin identifies where an AST node came from, for diagnostics.
type Origin struct {
	UnitIndex      int
	StatementIndex int
}

// AnonymousID synthesizes the deterministic id for an anonymous region,
// per spec §3: "__anon:<unit_index>:<statement_index>".
func (o Origin) AnonymousID() string {
	return fmt.Sprintf("__anon:%d:%d", o.UnitIndex, o.StatementIndex)
}

// GeomKind distinguishes the four geometry statement shapes spec §4.3
// enumerates.
type GeomKind int

const (
	// GeomAccumulatorNamed is `@<id> = rc(box)` / `@<id> = ac(box)`.
	GeomAccumulatorNamed GeomKind = iota
	// GeomDefinedNamed is `@<id> = <expr>` where expr is not a bare
	// rc(...)/ac(...) call.
	GeomDefinedNamed
	// GeomAccumulatorAnonymous is `@ rc(box)` / `@ ac(box)`.
	GeomAccumulatorAnonymous
	// GeomDefinedAnonymous is `@ def(<expr>)`.
	GeomDefinedAnonymous
)

// CoordMode distinguishes relative (rc) from absolute (ac) coordinates.
type CoordMode int

const (
	Relative CoordMode = iota
	Absolute
)

// GeomStmt is one parsed `@...` statement.
type GeomStmt struct {
	Origin Origin
	Kind   GeomKind

	// RegionID is set for GeomAccumulatorNamed and GeomDefinedNamed.
	RegionID string

	// Corners and Mode are set for the two accumulator kinds.
	Corners [2]geom.Position
	Mode    CoordMode

	// Expr is set for the two defined kinds.
	Expr *BooleanExpr
}

// AnonymousID reports whether this is one of the two anonymous geometry
// kinds, whose id is synthesized by Origin.AnonymousID.
func (g *GeomStmt) AnonymousID() bool {
	return g.Kind == GeomAccumulatorAnonymous || g.Kind == GeomDefinedAnonymous
}

// TargetID returns the region id this statement defines or appends to:
// the named id for the two named kinds, or the synthesized anonymous id
// otherwise.
func (g *GeomStmt) TargetID() string {
	if g.AnonymousID() {
		return g.Origin.AnonymousID()
	}
	return g.RegionID
}

// TargetKind is the kind of a MetadataTarget: global, an exact region id,
// or a wildcard prefix.
type TargetKind int

const (
	TargetGlobal TargetKind = iota
	TargetExact
	TargetWildcard
)

// MetadataTarget is the subject of a metadata entry.
type MetadataTarget struct {
	Kind   TargetKind
	Region string // set for TargetExact
	Prefix string // set for TargetWildcard (without the trailing ".*")
}

// Key returns the string form of the target used for conflict-detection
// bucketing and for serialization (wildcards include the trailing ".*").
func (t MetadataTarget) Key() string {
	switch t.Kind {
	case TargetGlobal:
		return "$global"
	case TargetWildcard:
		return t.Prefix + ".*"
	default:
		return t.Region
	}
}

// MetaStmt is one parsed `#...` statement.
type MetaStmt struct {
	Origin Origin
	// Target is set when the statement used explicit-target syntax
	// (`#<target>:<key>=<json>`); nil means "current region of this
	// unit", which core/parse.Unit replaces with an explicit TargetExact
	// using the in-unit geometry statements.
	Target *MetadataTarget
	Key    string
	Value  interface{} // parsed JSON value (UseNumber semantics preserved)
}

// BooleanOp is one of the four region-algebra operators.
type BooleanOp int

const (
	OpUnion BooleanOp = iota
	OpDifference
	OpIntersection
	OpXOR
)

// BooleanExpr is the expression AST for defined-region bodies: either a
// reference to another region id, or a binary operator node.
type BooleanExpr struct {
	// RegionRef is set when this node is a leaf reference.
	RegionRef string

	// Op, Left, Right are set when this node is a binary operator.
	Op    BooleanOp
	Left  *BooleanExpr
	Right *BooleanExpr
}

// IsLeaf reports whether this node is a bare region reference.
func (e *BooleanExpr) IsLeaf() bool {
	return e.Left == nil && e.Right == nil
}

// RegionRefs returns every region id this expression references, in the
// order they occur (left-to-right, depth-first).
func (e *BooleanExpr) RegionRefs() []string {
	var refs []string
	var walk func(n *BooleanExpr)
	walk = func(n *BooleanExpr) {
		if n == nil {
			return
		}
		if n.IsLeaf() {
			refs = append(refs, n.RegionRef)
			return
		}
		walk(n.Left)
		walk(n.Right)
	}
	walk(e)
	return refs
}
