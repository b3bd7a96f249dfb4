// Package diag defines the structured findings produced by the schema
// and query analysis stages. Diagnostics are plain data: they are
// constructed, collected per analysis unit, and concatenated by the run
// pipeline into a final report. Only the pipeline decides pass/fail.
package diag

import (
	"fmt"
	"sort"
)

// Severity classifies a diagnostic.
type Severity uint8

const (
	// Error blocks confident code generation for the affected fields.
	Error Severity = iota + 1
	// Warning is informational and does not change emitted types.
	Warning
)

// String returns the lowercase severity name.
func (s Severity) String() string {
	switch s {
	case Error:
		return "error"
	case Warning:
		return "warning"
	}
	return fmt.Sprintf("Severity(%d)", s)
}

// Kind identifies the diagnosable condition.
type Kind uint8

const (
	// Schema-stage kinds.
	InvalidTypeSyntax Kind = iota + 1
	DuplicateFieldInSameDefinition
	TableRedefined

	// Query-stage kinds.
	UndefinedTableRef
	UndefinedField
	InvalidFetchTarget
	UnsupportedConstruct
	UnionFallback
	UnresolvedParam
	SchemalessUnknownField
)

var kindNames = map[Kind]string{
	InvalidTypeSyntax:              "invalid-type-syntax",
	DuplicateFieldInSameDefinition: "duplicate-field",
	TableRedefined:                 "table-redefined",
	UndefinedTableRef:              "undefined-table",
	UndefinedField:                 "undefined-field",
	InvalidFetchTarget:             "invalid-fetch-target",
	UnsupportedConstruct:           "unsupported-construct",
	UnionFallback:                  "union-fallback",
	UnresolvedParam:                "unresolved-param",
	SchemalessUnknownField:         "schemaless-unknown-field",
}

// String returns the kebab-case kind name used in reports.
func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// A Location points at the source of a finding.
type Location struct {
	File   string
	Line   int
	Column int
}

// String renders the location as file:line:column.
func (l Location) String() string {
	if l.File == "" && l.Line == 0 {
		return "<unknown>"
	}
	return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
}

// A Diagnostic is one severity-tagged finding.
type Diagnostic struct {
	Severity Severity
	Kind     Kind
	Message  string
	Location Location
}

// String renders the diagnostic in the report line format.
func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s: %s [%s]", d.Location, d.Severity, d.Message, d.Kind)
}

// Errorf constructs an Error diagnostic.
func Errorf(kind Kind, loc Location, format string, args ...any) Diagnostic {
	return Diagnostic{Severity: Error, Kind: kind, Message: fmt.Sprintf(format, args...), Location: loc}
}

// Warnf constructs a Warning diagnostic.
func Warnf(kind Kind, loc Location, format string, args ...any) Diagnostic {
	return Diagnostic{Severity: Warning, Kind: kind, Message: fmt.Sprintf(format, args...), Location: loc}
}

// A List is an ordered collection of diagnostics for one analysis unit.
type List []Diagnostic

// Add appends diagnostics to the list.
func (l *List) Add(ds ...Diagnostic) {
	*l = append(*l, ds...)
}

// HasErrors reports whether any diagnostic has Error severity.
func (l List) HasErrors() bool {
	for _, d := range l {
		if d.Severity == Error {
			return true
		}
	}
	return false
}

// Errors returns the Error-severity subset, preserving order.
func (l List) Errors() List {
	var out List
	for _, d := range l {
		if d.Severity == Error {
			out = append(out, d)
		}
	}
	return out
}

// Warnings returns the Warning-severity subset, preserving order.
func (l List) Warnings() List {
	var out List
	for _, d := range l {
		if d.Severity == Warning {
			out = append(out, d)
		}
	}
	return out
}

// SortByLocation orders the list by file, then line, then column.
// Severity ties are kept stable.
func (l List) SortByLocation() {
	sort.SliceStable(l, func(i, j int) bool {
		a, b := l[i].Location, l[j].Location
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Column < b.Column
	})
}
