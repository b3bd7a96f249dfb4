package parser

import (
	"strconv"
	"strings"

	"github.com/syssam/surtype/diag"
	"github.com/syssam/surtype/types"
)

// parseType resolves a SurrealQL type expression into the type algebra.
// Unrecognized syntax resolves to Unknown with an InvalidTypeSyntax
// diagnostic; the parse is never aborted.
func (p *parser) parseType() *types.Type {
	t := p.cur()
	switch {
	case t.kind == tokenPunct && t.text == "{":
		return p.parseObjectType()
	case t.kind != tokenIdent:
		p.errorf(diag.InvalidTypeSyntax, t.loc, "expected type expression, found %q", t.text)
		return types.NewUnknown()
	}
	p.bump()
	switch strings.ToLower(t.text) {
	case "string":
		return types.NewString()
	case "number", "int", "float", "decimal":
		return types.NewNumber()
	case "bool":
		return types.NewBool()
	case "datetime":
		return types.NewDatetime()
	case "duration":
		return types.NewDuration()
	case "uuid":
		return types.NewUUID()
	case "bytes":
		return types.NewBytes()
	case "geometry":
		// Geometry subtypes (point, polygon, ...) do not change the
		// inferred shape; skip them.
		if p.acceptPunct("<") {
			p.skipAngle()
		}
		return types.NewGeometry()
	case "any":
		return types.NewAny()
	case "object":
		// Free-form object with no declared members.
		return types.NewAny()
	case "array", "set":
		if !p.acceptPunct("<") {
			return types.NewArray(types.NewAny())
		}
		elem := p.parseType()
		n := 0
		if p.acceptPunct(",") {
			size := p.cur()
			if size.kind == tokenNumber {
				p.bump()
				if v, err := strconv.Atoi(size.text); err == nil {
					n = v
				}
			} else {
				p.errorf(diag.InvalidTypeSyntax, size.loc, "expected array length, found %q", size.text)
			}
		}
		p.expectAngleClose(t.loc)
		return types.NewArrayLen(elem, n)
	case "record":
		if !p.acceptPunct("<") {
			p.errorf(diag.InvalidTypeSyntax, t.loc, "record type requires a target table")
			return types.NewUnknown()
		}
		target := p.cur()
		if target.kind != tokenIdent {
			p.errorf(diag.InvalidTypeSyntax, target.loc, "expected table name in record type, found %q", target.text)
			p.skipAngle()
			return types.NewUnknown()
		}
		p.bump()
		if p.cur().kind == tokenPunct && p.cur().text == "|" {
			// Multi-table record links have no single target to resolve
			// against; the analyzer does not support them.
			p.errorf(diag.InvalidTypeSyntax, target.loc, "multi-table record links are not supported")
			p.skipAngle()
			return types.NewUnknown()
		}
		p.expectAngleClose(t.loc)
		return types.NewRecord(target.text)
	case "option":
		if !p.acceptPunct("<") {
			p.errorf(diag.InvalidTypeSyntax, t.loc, "option type requires an inner type")
			return types.NewUnknown()
		}
		inner := p.parseType()
		p.expectAngleClose(t.loc)
		return types.NewOption(inner)
	}
	p.errorf(diag.InvalidTypeSyntax, t.loc, "unrecognized type %q", t.text)
	return types.NewUnknown()
}

// parseObjectType parses "{ name: type, ... }" with recursive member
// types. Duplicate member names are an error; the first declaration
// wins so the object stays usable.
func (p *parser) parseObjectType() *types.Type {
	open := p.bump() // "{"
	var fields []types.Field
	seen := map[string]bool{}
	for {
		t := p.cur()
		if t.kind == tokenEOF || (t.kind == tokenPunct && t.text == "}") {
			break
		}
		name := t
		if name.kind != tokenIdent && name.kind != tokenString {
			p.errorf(diag.InvalidTypeSyntax, name.loc, "expected field name in object type, found %q", name.text)
			p.skipObjectRest()
			return types.NewUnknown()
		}
		p.bump()
		if !p.acceptPunct(":") {
			p.errorf(diag.InvalidTypeSyntax, name.loc, "expected ':' after field %q", name.text)
			p.skipObjectRest()
			return types.NewUnknown()
		}
		ft := p.parseType()
		if seen[name.text] {
			p.errorf(diag.DuplicateFieldInSameDefinition, name.loc, "duplicate field %q in object type", name.text)
		} else {
			seen[name.text] = true
			fields = append(fields, types.Field{Name: name.text, Type: ft})
		}
		if !p.acceptPunct(",") {
			break
		}
	}
	if !p.acceptPunct("}") {
		p.errorf(diag.InvalidTypeSyntax, open.loc, "unterminated object type")
	}
	return types.NewObject(fields)
}

func (p *parser) expectAngleClose(open diag.Location) {
	if !p.acceptPunct(">") {
		p.errorf(diag.InvalidTypeSyntax, open, "unterminated type parameter list")
		p.skipAngle()
	}
}

// skipAngle consumes tokens up to and including the matching '>'.
func (p *parser) skipAngle() {
	depth := 1
	for depth > 0 {
		t := p.cur()
		if t.kind == tokenEOF || (t.kind == tokenPunct && t.text == ";") {
			return
		}
		p.bump()
		if t.kind == tokenPunct {
			switch t.text {
			case "<":
				depth++
			case ">":
				depth--
			}
		}
	}
}

// skipObjectRest consumes tokens up to and including the matching '}'.
func (p *parser) skipObjectRest() {
	depth := 1
	for depth > 0 {
		t := p.cur()
		if t.kind == tokenEOF {
			return
		}
		p.bump()
		if t.kind == tokenPunct {
			switch t.text {
			case "{":
				depth++
			case "}":
				depth--
			}
		}
	}
}
