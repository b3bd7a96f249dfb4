package parser

import (
	"strings"

	"github.com/syssam/surtype/diag"
	"github.com/syssam/surtype/types"
)

// Clause keywords that terminate a DEFINE FIELD tail expression.
var fieldClauseKeywords = []string{
	"VALUE", "ASSERT", "DEFAULT", "READONLY", "PERMISSIONS", "COMMENT", "FLEXIBLE",
}

func (p *parser) parseDefine() Statement {
	start := p.bump() // DEFINE
	t := p.cur()
	switch {
	case keywordIs(t, "TABLE"):
		p.bump()
		return p.parseDefineTable(start.loc)
	case keywordIs(t, "FIELD"):
		p.bump()
		return p.parseDefineField(start.loc)
	case keywordIs(t, "INDEX"), keywordIs(t, "EVENT"), keywordIs(t, "ANALYZER"), keywordIs(t, "PARAM"):
		// Indexes, events, analyzers and params never change a result
		// shape; they are skipped without a finding.
		p.skipToTerminator()
		return &UnsupportedStatement{Keyword: "DEFINE " + strings.ToUpper(t.text), Loc: start.loc}
	}
	kw := strings.ToUpper(t.text)
	p.errorf(diag.UnsupportedConstruct, t.loc, "unsupported definition %q", "DEFINE "+kw)
	return &UnsupportedStatement{Keyword: "DEFINE " + kw, Loc: start.loc}
}

// parseDefineTable parses
//
//	DEFINE TABLE [IF NOT EXISTS] name [SCHEMAFULL|SCHEMALESS]
//	    [TYPE ANY|NORMAL|RELATION [FROM a TO b]] ...
//
// Trailing clauses (PERMISSIONS, COMMENT, CHANGEFEED) are skipped.
func (p *parser) parseDefineTable(loc diag.Location) Statement {
	p.skipIfNotExists()
	name := p.cur()
	if name.kind != tokenIdent {
		return p.unsupported("DEFINE TABLE", loc, "missing table name")
	}
	p.bump()
	stmt := &DefineTableStatement{Name: name.text, Loc: loc}
	for !p.atTerminator() {
		t := p.cur()
		switch {
		case keywordIs(t, "SCHEMAFULL"):
			p.bump()
			stmt.Schemafull = true
		case keywordIs(t, "SCHEMALESS"):
			p.bump()
			stmt.Schemafull = false
		case keywordIs(t, "TYPE"):
			p.bump()
			switch {
			case p.acceptKeyword("RELATION"):
				stmt.Relation = true
				if p.acceptKeyword("FROM") || p.acceptKeyword("IN") {
					if p.cur().kind == tokenIdent {
						stmt.From = p.bump().text
					}
				}
				if p.acceptKeyword("TO") || p.acceptKeyword("OUT") {
					if p.cur().kind == tokenIdent {
						stmt.To = p.bump().text
					}
				}
			case p.acceptKeyword("ANY"), p.acceptKeyword("NORMAL"):
			}
		default:
			p.bump()
		}
	}
	return stmt
}

// parseDefineField parses
//
//	DEFINE FIELD [IF NOT EXISTS] path ON [TABLE] name [FLEXIBLE]
//	    [TYPE typeexpr] [DEFAULT literal] ...
//
// A missing or malformed TYPE clause yields an Unknown-typed field, not
// a dropped statement: partial results always survive.
func (p *parser) parseDefineField(loc diag.Location) Statement {
	p.skipIfNotExists()
	path, _, _ := p.parsePath()
	if len(path) == 0 {
		return p.unsupported("DEFINE FIELD", loc, "missing field path")
	}
	if !p.acceptKeyword("ON") {
		return p.unsupported("DEFINE FIELD", loc, "missing ON clause")
	}
	p.acceptKeyword("TABLE")
	table := p.cur()
	if table.kind != tokenIdent {
		return p.unsupported("DEFINE FIELD", loc, "missing table name in ON clause")
	}
	p.bump()

	stmt := &DefineFieldStatement{Path: path, Table: table.text, Loc: loc}
	for !p.atTerminator() {
		t := p.cur()
		switch {
		case keywordIs(t, "TYPE"):
			p.bump()
			stmt.Type = p.parseType()
		case keywordIs(t, "DEFAULT"):
			p.bump()
			p.acceptKeyword("ALWAYS")
			stmt.Default = p.captureClauseValue()
		default:
			p.bump()
		}
	}
	if stmt.Type == nil {
		// No TYPE clause: the field accepts anything at runtime.
		stmt.Type = types.NewAny()
	}
	return stmt
}

func (p *parser) skipIfNotExists() {
	if keywordIs(p.cur(), "IF") && keywordIs(p.peek(1), "NOT") && keywordIs(p.peek(2), "EXISTS") {
		p.bump()
		p.bump()
		p.bump()
	}
}

// captureClauseValue collects the raw source of a clause value, up to
// the next clause keyword or statement terminator.
func (p *parser) captureClauseValue() string {
	var parts []string
	for !p.atTerminator() {
		t := p.cur()
		stop := false
		for _, kw := range fieldClauseKeywords {
			if keywordIs(t, kw) {
				stop = true
				break
			}
		}
		if stop {
			break
		}
		p.bump()
		if t.kind == tokenString {
			parts = append(parts, `"`+t.text+`"`)
		} else {
			parts = append(parts, t.text)
		}
	}
	return strings.Join(parts, " ")
}

func (p *parser) skipToTerminator() {
	for !p.atTerminator() {
		p.bump()
	}
}
