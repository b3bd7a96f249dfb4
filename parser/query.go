package parser

import (
	"strings"

	"github.com/syssam/surtype/diag"
)

// Clause keywords that end the scan of an opaque expression region
// (WHERE conditions, ORDER BY lists, and so on).
var selectClauseKeywords = []string{
	"FROM", "OMIT", "WHERE", "SPLIT", "GROUP", "ORDER", "LIMIT", "START",
	"FETCH", "TIMEOUT", "PARALLEL", "EXPLAIN", "WITH", "RETURN",
	"CONTENT", "MERGE", "SET", "VALUES",
}

func atClauseKeyword(t token) bool {
	for _, kw := range selectClauseKeywords {
		if keywordIs(t, kw) {
			return true
		}
	}
	return false
}

// Comparison operators that bind a $param to the field beside it.
var comparisonKeywords = []string{
	"CONTAINS", "CONTAINSALL", "CONTAINSANY", "CONTAINSNONE",
	"INSIDE", "NOTINSIDE", "IN", "IS", "ALLINSIDE", "ANYINSIDE",
}

func isComparison(t token) bool {
	if t.kind == tokenPunct {
		switch t.text {
		case "=", "<", ">", "!", "?":
			return true
		}
		return false
	}
	for _, kw := range comparisonKeywords {
		if keywordIs(t, kw) {
			return true
		}
	}
	return false
}

func (p *parser) parseSelect() Statement {
	start := p.bump() // SELECT
	stmt := &SelectStatement{Loc: start.loc}
	if p.acceptKeyword("VALUE") {
		stmt.Value = true
	}

	// Field selector list.
	for {
		t := p.cur()
		if p.atTerminator() || keywordIs(t, "FROM") || keywordIs(t, "OMIT") {
			break
		}
		sel, ok := p.parseSelector()
		if ok {
			stmt.Selectors = append(stmt.Selectors, sel)
		}
		if !p.acceptPunct(",") && !ok {
			// Could not make progress; bail out of the selector list.
			p.skipToSelectorEnd()
		}
	}
	if stmt.Value && len(stmt.Selectors) != 1 {
		return p.unsupported("SELECT", start.loc, "SELECT VALUE requires exactly one field expression")
	}

	// OMIT fields FROM target.
	if p.acceptKeyword("OMIT") {
		for {
			path, _, _ := p.parsePath()
			if len(path) == 0 {
				break
			}
			stmt.Omit = append(stmt.Omit, path)
			if !p.acceptPunct(",") {
				break
			}
		}
	}
	if !p.acceptKeyword("FROM") {
		return p.unsupported("SELECT", start.loc, "missing FROM clause")
	}
	p.acceptKeyword("ONLY")
	target, ok := p.parseTableRef()
	if !ok {
		return p.unsupported("SELECT", start.loc, "missing target table")
	}
	stmt.Target = target

	// Tail clauses, in any order.
	for !p.atTerminator() {
		t := p.cur()
		switch {
		case keywordIs(t, "WHERE"):
			p.bump()
			stmt.HasWhere = true
			stmt.Params = append(stmt.Params, p.scanCondition()...)
		case keywordIs(t, "FETCH"):
			p.bump()
			for {
				loc := p.cur().loc
				path, _, _ := p.parsePath()
				if len(path) == 0 {
					break
				}
				stmt.Fetch = append(stmt.Fetch, FetchRef{Path: path, Loc: loc})
				if !p.acceptPunct(",") {
					break
				}
			}
		default:
			// LIMIT/ORDER/GROUP/... do not affect the result shape;
			// $params inside them still get context-free uses recorded.
			p.bump()
			if t.kind == tokenParam {
				stmt.Params = append(stmt.Params, ParamUse{Name: t.text, Loc: t.loc})
			}
		}
	}
	return stmt
}

// parseSelector parses one entry of the SELECT field list.
func (p *parser) parseSelector() (Selector, bool) {
	t := p.cur()
	sel := Selector{Loc: t.loc}
	switch {
	case t.kind == tokenPunct && t.text == "*":
		p.bump()
		sel.Wildcard = true
	case t.kind == tokenArrow || t.kind == tokenBack:
		tr, ok := p.parseTraversal()
		if !ok {
			return Selector{}, false
		}
		sel.Traversal = tr
	case t.kind == tokenIdent:
		// A '(' after the identifier means a function call, which is
		// outside the supported expression surface.
		if p.peek(1).kind == tokenPunct && p.peek(1).text == "(" {
			p.errorf(diag.UnsupportedConstruct, t.loc, "function calls are not supported in field selectors: %s(...)", t.text)
			p.skipToSelectorEnd()
			return Selector{}, false
		}
		sel.Path, sel.All, sel.Destructure = p.parsePath()
	default:
		p.errorf(diag.UnsupportedConstruct, t.loc, "unsupported field selector starting at %q", t.text)
		p.skipToSelectorEnd()
		return Selector{}, false
	}
	if p.acceptKeyword("AS") {
		if a := p.cur(); a.kind == tokenIdent {
			p.bump()
			sel.Alias = a.text
		}
	}
	return sel, true
}

// parseTraversal parses ->rel->tbl / <-rel<-tbl chains with an
// optional .* or .{...} modifier on the final step.
func (p *parser) parseTraversal() (*Traversal, bool) {
	tr := &Traversal{}
	for {
		t := p.cur()
		var dir Direction
		switch t.kind {
		case tokenArrow:
			dir = Out
		case tokenBack:
			dir = In
		default:
			if len(tr.Steps) == 0 {
				return nil, false
			}
			return tr, true
		}
		p.bump()
		name := p.cur()
		if name.kind != tokenIdent {
			p.errorf(diag.UnsupportedConstruct, name.loc, "expected table name after %q", t.text)
			return nil, false
		}
		p.bump()
		tr.Steps = append(tr.Steps, TraversalStep{Dir: dir, Table: name.text, Loc: name.loc})

		if p.cur().kind == tokenPunct && p.cur().text == "." {
			p.bump()
			switch {
			case p.acceptPunct("*"):
				tr.All = true
				return tr, true
			case p.cur().kind == tokenPunct && p.cur().text == "{":
				p.bump()
				for p.cur().kind == tokenIdent {
					tr.Destructure = append(tr.Destructure, p.bump().text)
					if !p.acceptPunct(",") {
						break
					}
				}
				p.acceptPunct("}")
				return tr, true
			}
		}
	}
}

// skipToSelectorEnd recovers to the next selector boundary.
func (p *parser) skipToSelectorEnd() {
	for !p.atTerminator() {
		t := p.cur()
		if (t.kind == tokenPunct && t.text == ",") || keywordIs(t, "FROM") || keywordIs(t, "OMIT") {
			return
		}
		p.bump()
	}
}

// scanCondition walks an opaque condition expression, collecting $param
// uses and the field path each is compared against. The expression is
// analyzed for presence only, never evaluated.
func (p *parser) scanCondition() []ParamUse {
	var uses []ParamUse
	var lastPath []string
	opSeen := false
	depth := 0
	for {
		t := p.cur()
		if t.kind == tokenEOF || (t.kind == tokenPunct && t.text == ";") {
			return uses
		}
		if depth == 0 && atClauseKeyword(t) {
			return uses
		}
		switch {
		case t.kind == tokenPunct && (t.text == "(" || t.text == "[" || t.text == "{"):
			depth++
			p.bump()
		case t.kind == tokenPunct && (t.text == ")" || t.text == "]" || t.text == "}"):
			depth--
			p.bump()
		case keywordIs(t, "AND") || keywordIs(t, "OR") || (t.kind == tokenPunct && (t.text == "&" || t.text == "|" || t.text == ",")):
			lastPath, opSeen = nil, false
			p.bump()
		case isComparison(t):
			opSeen = true
			p.bump()
		case t.kind == tokenParam:
			p.bump()
			use := ParamUse{Name: t.text, Loc: t.loc}
			switch {
			case opSeen && lastPath != nil:
				use.FieldPath = lastPath
			default:
				// "$p = path" form: look ahead for a comparison followed
				// by a field path.
				if isComparison(p.cur()) {
					j := p.i
					for isComparison(p.toks[j]) {
						j++
					}
					if p.toks[j].kind == tokenIdent && !atClauseKeyword(p.toks[j]) {
						p.i = j
						use.FieldPath, _, _ = p.parsePath()
					}
				}
			}
			uses = append(uses, use)
			lastPath, opSeen = nil, false
		case t.kind == tokenIdent && !atClauseKeyword(t):
			path, _, _ := p.parsePath()
			if len(path) > 0 {
				lastPath = path
			} else {
				p.bump()
			}
		default:
			p.bump()
		}
	}
}

// parseContentObject parses "{ key: value, ... }" payloads, recording
// the keys and any $param values bound to them.
func (p *parser) parseContentObject() ([]ContentField, []ParamUse) {
	if !(p.cur().kind == tokenPunct && p.cur().text == "{") {
		return nil, nil
	}
	p.bump()
	var fields []ContentField
	var uses []ParamUse
	for {
		t := p.cur()
		if t.kind == tokenEOF || (t.kind == tokenPunct && t.text == "}") {
			p.acceptPunct("}")
			return fields, uses
		}
		if t.kind != tokenIdent && t.kind != tokenString {
			// Not a key position; give up on this payload.
			p.skipObjectRest()
			return fields, uses
		}
		key := p.bump()
		if !p.acceptPunct(":") {
			p.skipObjectRest()
			return fields, uses
		}
		cf := ContentField{Name: key.text, Loc: key.loc}
		// Value region: consume until ',' or '}' at this depth.
		depth := 0
		first := true
		for {
			v := p.cur()
			if v.kind == tokenEOF {
				break
			}
			if depth == 0 && v.kind == tokenPunct && (v.text == "," || v.text == "}") {
				break
			}
			if v.kind == tokenPunct {
				switch v.text {
				case "{", "[", "(":
					depth++
				case "}", "]", ")":
					depth--
				}
			}
			if v.kind == tokenParam {
				if first {
					cf.Param = v.text
				}
				uses = append(uses, ParamUse{Name: v.text, FieldPath: []string{key.text}, Loc: v.loc})
			}
			first = false
			p.bump()
		}
		fields = append(fields, cf)
		if !p.acceptPunct(",") {
			p.acceptPunct("}")
			return fields, uses
		}
	}
}

// parseSetAssignments parses "SET a = v, b += v, ..." payloads.
func (p *parser) parseSetAssignments() ([]ContentField, []ParamUse) {
	var fields []ContentField
	var uses []ParamUse
	for {
		path, _, _ := p.parsePath()
		if len(path) == 0 {
			return fields, uses
		}
		name := strings.Join(path, ".")
		cf := ContentField{Name: name, Loc: p.cur().loc}
		// Skip the operator (=, +=, -=).
		for p.cur().kind == tokenPunct && (p.cur().text == "=" || p.cur().text == "+" || p.cur().text == "-") {
			p.bump()
		}
		// Value region: consume until ',' or a clause keyword.
		depth := 0
		first := true
		for {
			v := p.cur()
			if v.kind == tokenEOF || (v.kind == tokenPunct && v.text == ";") {
				break
			}
			if depth == 0 && (v.kind == tokenPunct && v.text == "," || atClauseKeyword(v)) {
				break
			}
			if v.kind == tokenPunct {
				switch v.text {
				case "{", "[", "(":
					depth++
				case "}", "]", ")":
					depth--
				}
			}
			if v.kind == tokenParam {
				if first {
					cf.Param = v.text
				}
				uses = append(uses, ParamUse{Name: v.text, FieldPath: path, Loc: v.loc})
			}
			first = false
			p.bump()
		}
		fields = append(fields, cf)
		if !p.acceptPunct(",") {
			return fields, uses
		}
	}
}

// parseMutationTail handles the shared CONTENT/MERGE/SET/WHERE/RETURN
// tail of the mutation statements.
func (p *parser) parseMutationTail(content *[]ContentField, params *[]ParamUse, hasWhere *bool) {
	for !p.atTerminator() {
		t := p.cur()
		switch {
		case keywordIs(t, "CONTENT") || keywordIs(t, "MERGE"):
			p.bump()
			fs, us := p.parseContentObject()
			*content = append(*content, fs...)
			*params = append(*params, us...)
		case keywordIs(t, "SET"):
			p.bump()
			fs, us := p.parseSetAssignments()
			*content = append(*content, fs...)
			*params = append(*params, us...)
		case keywordIs(t, "WHERE"):
			p.bump()
			if hasWhere != nil {
				*hasWhere = true
			}
			*params = append(*params, p.scanCondition()...)
		default:
			p.bump()
			if t.kind == tokenParam {
				*params = append(*params, ParamUse{Name: t.text, Loc: t.loc})
			}
		}
	}
}

func (p *parser) parseCreate() Statement {
	start := p.bump() // CREATE
	p.acceptKeyword("ONLY")
	target, ok := p.parseTableRef()
	if !ok {
		return p.unsupported("CREATE", start.loc, "missing target table")
	}
	stmt := &CreateStatement{Target: target, Loc: start.loc}
	p.parseMutationTail(&stmt.Content, &stmt.Params, nil)
	return stmt
}

func (p *parser) parseInsert() Statement {
	start := p.bump() // INSERT
	p.acceptKeyword("IGNORE")
	if !p.acceptKeyword("INTO") {
		return p.unsupported("INSERT", start.loc, "missing INTO clause")
	}
	target, ok := p.parseTableRef()
	if !ok {
		return p.unsupported("INSERT", start.loc, "missing target table")
	}
	stmt := &InsertStatement{Target: target, Loc: start.loc}
	switch {
	case p.cur().kind == tokenPunct && p.cur().text == "{":
		stmt.Content, stmt.Params = p.parseContentObject()
	case p.cur().kind == tokenPunct && p.cur().text == "[":
		// Array of objects: merge the keys of every element.
		p.bump()
		seen := map[string]bool{}
		for {
			if !(p.cur().kind == tokenPunct && p.cur().text == "{") {
				break
			}
			fs, us := p.parseContentObject()
			for _, f := range fs {
				if !seen[f.Name] {
					seen[f.Name] = true
					stmt.Content = append(stmt.Content, f)
				}
			}
			stmt.Params = append(stmt.Params, us...)
			if !p.acceptPunct(",") {
				break
			}
		}
		p.acceptPunct("]")
	case p.cur().kind == tokenPunct && p.cur().text == "(":
		// (a, b) VALUES ($x, $y): columns pair positionally with values.
		p.bump()
		var cols []ContentField
		for p.cur().kind == tokenIdent {
			c := p.bump()
			cols = append(cols, ContentField{Name: c.text, Loc: c.loc})
			if !p.acceptPunct(",") {
				break
			}
		}
		p.acceptPunct(")")
		stmt.Content = cols
		if p.acceptKeyword("VALUES") {
			p.acceptPunct("(")
			pos, depth := 0, 0
			for !p.atTerminator() {
				v := p.cur()
				if depth == 0 && v.kind == tokenPunct && v.text == ")" {
					p.bump()
					break
				}
				switch {
				case v.kind == tokenPunct && (v.text == "(" || v.text == "[" || v.text == "{"):
					depth++
				case v.kind == tokenPunct && (v.text == ")" || v.text == "]" || v.text == "}"):
					depth--
				case depth == 0 && v.kind == tokenPunct && v.text == ",":
					pos++
				case v.kind == tokenParam && pos < len(cols):
					stmt.Params = append(stmt.Params, ParamUse{
						Name: v.text, FieldPath: []string{cols[pos].Name}, Loc: v.loc,
					})
					cols[pos].Param = v.text
				}
				p.bump()
			}
		}
	}
	p.skipToTerminator()
	return stmt
}

func (p *parser) parseUpdate() Statement {
	start := p.bump() // UPDATE
	p.acceptKeyword("ONLY")
	target, ok := p.parseTableRef()
	if !ok {
		return p.unsupported("UPDATE", start.loc, "missing target table")
	}
	stmt := &UpdateStatement{Target: target, Loc: start.loc}
	p.parseMutationTail(&stmt.Content, &stmt.Params, &stmt.HasWhere)
	return stmt
}

func (p *parser) parseUpsert() Statement {
	start := p.bump() // UPSERT
	p.acceptKeyword("ONLY")
	target, ok := p.parseTableRef()
	if !ok {
		return p.unsupported("UPSERT", start.loc, "missing target table")
	}
	stmt := &UpsertStatement{Target: target, Loc: start.loc}
	p.parseMutationTail(&stmt.Content, &stmt.Params, &stmt.HasWhere)
	return stmt
}

func (p *parser) parseDelete() Statement {
	start := p.bump() // DELETE
	p.acceptKeyword("FROM")
	p.acceptKeyword("ONLY")
	target, ok := p.parseTableRef()
	if !ok {
		return p.unsupported("DELETE", start.loc, "missing target table")
	}
	stmt := &DeleteStatement{Target: target, Loc: start.loc}
	for !p.atTerminator() {
		t := p.cur()
		if keywordIs(t, "WHERE") {
			p.bump()
			stmt.HasWhere = true
			stmt.Params = append(stmt.Params, p.scanCondition()...)
			continue
		}
		p.bump()
	}
	return stmt
}

func (p *parser) parseRelate() Statement {
	start := p.bump() // RELATE
	p.acceptKeyword("ONLY")
	in, ok := p.parseTableRef()
	if !ok {
		return p.unsupported("RELATE", start.loc, "missing in-record")
	}
	if p.cur().kind != tokenArrow {
		return p.unsupported("RELATE", start.loc, "expected '->' after in-record")
	}
	p.bump()
	rel, ok := p.parseTableRef()
	if !ok {
		return p.unsupported("RELATE", start.loc, "missing relation table")
	}
	if p.cur().kind != tokenArrow {
		return p.unsupported("RELATE", start.loc, "expected '->' after relation table")
	}
	p.bump()
	out, ok := p.parseTableRef()
	if !ok {
		return p.unsupported("RELATE", start.loc, "missing out-record")
	}
	stmt := &RelateStatement{In: in, Relation: rel, Out: out, Loc: start.loc}
	p.parseMutationTail(&stmt.Content, &stmt.Params, nil)
	return stmt
}
