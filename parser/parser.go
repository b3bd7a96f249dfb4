// Package parser turns SurrealQL source text into statement AST nodes.
//
// The parser is recovery-oriented: a syntax error in one statement is
// reported as a diagnostic and parsing resumes at the next statement
// terminator, so one bad statement never hides the rest of a file.
// Statement keywords outside the supported grammar produce an
// UnsupportedStatement placeholder plus a single diagnostic.
package parser

import (
	"strings"

	"github.com/syssam/surtype/diag"
)

type parser struct {
	toks  []token
	i     int
	diags diag.List
}

// Parse parses all statements in src. It always returns every
// statement it could recognize, alongside the diagnostics for the ones
// it could not.
func Parse(file, src string) ([]Statement, diag.List) {
	p := &parser{toks: lex(file, src)}
	var stmts []Statement
	for p.cur().kind != tokenEOF {
		if p.acceptPunct(";") {
			continue
		}
		stmts = append(stmts, p.parseStatement())
		p.sync()
	}
	return stmts, p.diags
}

func (p *parser) cur() token { return p.toks[p.i] }

func (p *parser) peek(n int) token {
	if p.i+n >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.i+n]
}

func (p *parser) bump() token {
	t := p.toks[p.i]
	if t.kind != tokenEOF {
		p.i++
	}
	return t
}

func (p *parser) acceptPunct(s string) bool {
	if t := p.cur(); t.kind == tokenPunct && t.text == s {
		p.bump()
		return true
	}
	return false
}

func (p *parser) acceptKeyword(kw string) bool {
	if keywordIs(p.cur(), kw) {
		p.bump()
		return true
	}
	return false
}

// sync skips to just past the next statement terminator.
func (p *parser) sync() {
	for {
		t := p.cur()
		if t.kind == tokenEOF {
			return
		}
		p.bump()
		if t.kind == tokenPunct && t.text == ";" {
			return
		}
	}
}

// atTerminator reports whether the current token ends a statement.
func (p *parser) atTerminator() bool {
	t := p.cur()
	return t.kind == tokenEOF || (t.kind == tokenPunct && t.text == ";")
}

func (p *parser) errorf(kind diag.Kind, loc diag.Location, format string, args ...any) {
	p.diags.Add(diag.Errorf(kind, loc, format, args...))
}

func (p *parser) warnf(kind diag.Kind, loc diag.Location, format string, args ...any) {
	p.diags.Add(diag.Warnf(kind, loc, format, args...))
}

func (p *parser) parseStatement() Statement {
	t := p.cur()
	switch {
	case keywordIs(t, "SELECT"):
		return p.parseSelect()
	case keywordIs(t, "CREATE"):
		return p.parseCreate()
	case keywordIs(t, "INSERT"):
		return p.parseInsert()
	case keywordIs(t, "UPDATE"):
		return p.parseUpdate()
	case keywordIs(t, "UPSERT"):
		return p.parseUpsert()
	case keywordIs(t, "DELETE"):
		return p.parseDelete()
	case keywordIs(t, "RELATE"):
		return p.parseRelate()
	case keywordIs(t, "DEFINE"):
		return p.parseDefine()
	}
	kw := t.text
	if kw == "" {
		kw = "<eof>"
	}
	p.errorf(diag.UnsupportedConstruct, t.loc, "unsupported statement %q", strings.ToUpper(kw))
	return &UnsupportedStatement{Keyword: strings.ToUpper(kw), Loc: t.loc}
}

// unsupported reports a malformed supported statement and degrades it
// to the opaque placeholder so inference still sees one node per
// statement position.
func (p *parser) unsupported(keyword string, loc diag.Location, why string) Statement {
	p.errorf(diag.UnsupportedConstruct, loc, "malformed %s statement: %s", keyword, why)
	return &UnsupportedStatement{Keyword: keyword, Loc: loc}
}

// parseTableRef parses "name" or "name:id".
func (p *parser) parseTableRef() (TableRef, bool) {
	t := p.cur()
	if t.kind != tokenIdent {
		return TableRef{}, false
	}
	p.bump()
	ref := TableRef{Name: t.text, Loc: t.loc}
	if p.cur().kind == tokenPunct && p.cur().text == ":" {
		p.bump()
		id := p.cur()
		if id.kind == tokenIdent || id.kind == tokenNumber || id.kind == tokenString {
			p.bump()
			ref.ID = id.text
		}
	}
	return ref, true
}

// parsePath parses ident(.ident)* and reports trailing .* or .{...}
// modifiers.
func (p *parser) parsePath() (path []string, all bool, destructure []string) {
	for {
		t := p.cur()
		if t.kind != tokenIdent {
			return path, all, destructure
		}
		p.bump()
		path = append(path, t.text)
		if !p.acceptPunct(".") {
			return path, all, destructure
		}
		switch {
		case p.acceptPunct("*"):
			return path, true, nil
		case p.cur().kind == tokenPunct && p.cur().text == "{":
			p.bump()
			for p.cur().kind == tokenIdent {
				destructure = append(destructure, p.bump().text)
				if !p.acceptPunct(",") {
					break
				}
			}
			p.acceptPunct("}")
			return path, false, destructure
		}
	}
}
