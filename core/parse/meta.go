package parse

import (
	"github.com/insignlang/insign/core/ast"
	"github.com/insignlang/insign/core/ierr"
	"github.com/insignlang/insign/core/scan"
)

// Metadata parses a single `#...` statement into an ast.MetaStmt, per
// spec §4.4. Two forms are accepted:
//
//	#<key>=<json>              (applies to the current region)
//	#<target>:<key>=<json>     (applies to $global, a region, or a prefix.* wildcard)
//
// Grounded on original_source/crates/insign-core/src/parser/meta.rs's
// MetadataParser, adapted to the cursor/json-value helpers already built
// for geometry statements.
func Metadata(unitIdx int, stmt scan.Statement) (*ast.MetaStmt, error) {
	c := &cursor{s: stmt.Text}
	if !c.consumeByte('#') {
		return nil, ierr.New(ierr.ParseErrorKind, unitIdx, stmt.Index, "metadata statement must start with '#'")
	}

	origin := ast.Origin{UnitIndex: unitIdx, StatementIndex: stmt.Index}

	target, key, err := parseTargetAndKey(c, unitIdx, stmt.Index)
	if err != nil {
		return nil, err
	}

	if !c.consumeByte('=') {
		return nil, ierr.New(ierr.ParseErrorKind, unitIdx, stmt.Index, "expected '=' after metadata key")
	}

	value, consumed, err := parseJSONValue(c.rest())
	if err != nil {
		return nil, ierr.New(ierr.ParseErrorKind, unitIdx, stmt.Index, "%s", err.Error())
	}
	c.pos += consumed

	if rest := stringsTrimSpace(c.rest()); rest != "" {
		return nil, ierr.New(ierr.ParseErrorKind, unitIdx, stmt.Index, "unexpected trailing content after metadata value: %q", rest)
	}

	return &ast.MetaStmt{Origin: origin, Target: target, Key: key, Value: value}, nil
}

// parseTargetAndKey disambiguates "#<key>=" from "#<target>:<key>=" by
// scanning the first token, then checking for a following ':'.
func parseTargetAndKey(c *cursor, unitIdx, stmtIdx int) (*ast.MetadataTarget, string, error) {
	save := c.pos
	first, ok := c.parseToken("$*")
	if !ok {
		return nil, "", ierr.New(ierr.ParseErrorKind, unitIdx, stmtIdx, "expected a metadata key or target")
	}

	if c.consumeByte(':') {
		target, err := classifyTarget(first, unitIdx, stmtIdx)
		if err != nil {
			return nil, "", err
		}
		key, ok := c.parseToken("")
		if !ok {
			return nil, "", ierr.New(ierr.ParseErrorKind, unitIdx, stmtIdx, "expected a metadata key after target")
		}
		return target, key, nil
	}

	// No ':' followed: first was actually the key, targeting the current
	// region. Rewind is unnecessary since parseToken already advanced
	// past the key and we deliberately don't reconsume it.
	_ = save
	return nil, first, nil
}

func classifyTarget(tok string, unitIdx, stmtIdx int) (*ast.MetadataTarget, error) {
	switch {
	case tok == "$global":
		return &ast.MetadataTarget{Kind: ast.TargetGlobal}, nil
	case len(tok) >= 2 && tok[len(tok)-2:] == ".*":
		prefix := tok[:len(tok)-2]
		if prefix == "" {
			return nil, ierr.New(ierr.ParseErrorKind, unitIdx, stmtIdx, "wildcard target must have a non-empty prefix before '.*'")
		}
		if !ast.ValidRegionID(prefix) {
			return nil, ierr.New(ierr.ParseErrorKind, unitIdx, stmtIdx, "wildcard target prefix %q is not a valid region id", prefix)
		}
		return &ast.MetadataTarget{Kind: ast.TargetWildcard, Prefix: prefix}, nil
	case tok != "" && tok[0] == '$':
		return nil, ierr.New(ierr.ParseErrorKind, unitIdx, stmtIdx, "unknown metadata target %q", tok)
	default:
		if !ast.ValidRegionID(tok) {
			return nil, ierr.New(ierr.ParseErrorKind, unitIdx, stmtIdx, "metadata target %q is not a valid region id", tok)
		}
		return &ast.MetadataTarget{Kind: ast.TargetExact, Region: tok}, nil
	}
}
