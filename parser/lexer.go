package parser

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/syssam/surtype/diag"
)

type tokenKind uint8

const (
	tokenEOF tokenKind = iota
	tokenIdent
	tokenNumber
	tokenString
	tokenParam // $name, without the sigil
	tokenPunct // single punctuation: ; , . * : ( ) { } [ ] = < > ! + -
	tokenArrow // ->
	tokenBack  // <-
)

type token struct {
	kind tokenKind
	text string
	loc  diag.Location
}

// lexer produces tokens from one source file. It is deliberately
// permissive: anything it cannot classify is handed through as
// punctuation so statement parsers can decide how to recover.
type lexer struct {
	file string
	src  string
	pos  int
	line int
	col  int
}

func newLexer(file, src string) *lexer {
	return &lexer{file: file, src: src, line: 1, col: 1}
}

func (l *lexer) location() diag.Location {
	return diag.Location{File: l.file, Line: l.line, Column: l.col}
}

func (l *lexer) advance(n int) {
	for i := 0; i < n; i++ {
		if l.pos >= len(l.src) {
			return
		}
		if l.src[l.pos] == '\n' {
			l.line++
			l.col = 1
		} else {
			l.col++
		}
		l.pos++
	}
}

func (l *lexer) skipSpaceAndComments() {
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			l.advance(1)
		case strings.HasPrefix(l.src[l.pos:], "--") || strings.HasPrefix(l.src[l.pos:], "//"):
			for l.pos < len(l.src) && l.src[l.pos] != '\n' {
				l.advance(1)
			}
		case strings.HasPrefix(l.src[l.pos:], "/*"):
			l.advance(2)
			for l.pos < len(l.src) && !strings.HasPrefix(l.src[l.pos:], "*/") {
				l.advance(1)
			}
			l.advance(2)
		default:
			return
		}
	}
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func (l *lexer) next() token {
	l.skipSpaceAndComments()
	loc := l.location()
	if l.pos >= len(l.src) {
		return token{kind: tokenEOF, loc: loc}
	}
	c := l.src[l.pos]

	// Two-rune graph arrows.
	if strings.HasPrefix(l.src[l.pos:], "->") {
		l.advance(2)
		return token{kind: tokenArrow, text: "->", loc: loc}
	}
	if strings.HasPrefix(l.src[l.pos:], "<-") {
		l.advance(2)
		return token{kind: tokenBack, text: "<-", loc: loc}
	}

	switch {
	case c == '$':
		l.advance(1)
		start := l.pos
		for l.pos < len(l.src) {
			r, size := utf8.DecodeRuneInString(l.src[l.pos:])
			if !isIdentPart(r) {
				break
			}
			l.advance(size)
		}
		return token{kind: tokenParam, text: l.src[start:l.pos], loc: loc}

	case c == '"' || c == '\'':
		quote := c
		l.advance(1)
		start := l.pos
		for l.pos < len(l.src) && l.src[l.pos] != quote {
			if l.src[l.pos] == '\\' {
				l.advance(1)
			}
			l.advance(1)
		}
		text := l.src[start:l.pos]
		l.advance(1) // closing quote
		return token{kind: tokenString, text: text, loc: loc}

	case c == '`':
		// Backtick-quoted identifier.
		l.advance(1)
		start := l.pos
		for l.pos < len(l.src) && l.src[l.pos] != '`' {
			l.advance(1)
		}
		text := l.src[start:l.pos]
		l.advance(1)
		return token{kind: tokenIdent, text: text, loc: loc}

	case c >= '0' && c <= '9':
		start := l.pos
		for l.pos < len(l.src) {
			d := l.src[l.pos]
			if (d < '0' || d > '9') && d != '.' {
				break
			}
			// A dot only belongs to the number when followed by a digit;
			// otherwise it is a path separator (user:1.name is not valid,
			// but 1.5 is).
			if d == '.' && (l.pos+1 >= len(l.src) || l.src[l.pos+1] < '0' || l.src[l.pos+1] > '9') {
				break
			}
			l.advance(1)
		}
		return token{kind: tokenNumber, text: l.src[start:l.pos], loc: loc}
	}

	r, size := utf8.DecodeRuneInString(l.src[l.pos:])
	if isIdentStart(r) {
		start := l.pos
		l.advance(size)
		for l.pos < len(l.src) {
			r, size := utf8.DecodeRuneInString(l.src[l.pos:])
			if !isIdentPart(r) {
				break
			}
			l.advance(size)
		}
		return token{kind: tokenIdent, text: l.src[start:l.pos], loc: loc}
	}

	l.advance(size)
	return token{kind: tokenPunct, text: string(r), loc: loc}
}

// lex tokenizes the whole source up front. Files are small; a token
// slice keeps the statement parsers trivially backtrackable.
func lex(file, src string) []token {
	l := newLexer(file, src)
	var out []token
	for {
		t := l.next()
		out = append(out, t)
		if t.kind == tokenEOF {
			return out
		}
	}
}

// keywordIs compares an identifier token against a keyword,
// case-insensitively, the way SurrealQL treats keywords.
func keywordIs(t token, kw string) bool {
	return t.kind == tokenIdent && strings.EqualFold(t.text, kw)
}
