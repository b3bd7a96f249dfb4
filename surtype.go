// Package surtype statically analyzes SurrealQL queries against a
// declared schema, producing typed result descriptors for code
// generators.
//
// The engine has two entry points. BuildRegistry parses schema sources
// into an immutable registry — a one-time barrier. AnalyzeQuery then
// infers the output shape of every statement in a query source against
// that registry. The registry is never mutated after construction, so
// AnalyzeQuery may be called from any number of goroutines sharing one
// registry.
package surtype

import (
	"github.com/syssam/surtype/diag"
	"github.com/syssam/surtype/infer"
	"github.com/syssam/surtype/parser"
	"github.com/syssam/surtype/schema"
)

// A Source is one already-read source file. The engine performs no
// I/O; the driver owns file discovery and reading.
type Source struct {
	Path string
	Text string
}

// BuildRegistry constructs the schema registry from the full set of
// schema sources. Malformed statements become diagnostics plus
// Unknown-typed fields; every well-formed definition survives.
func BuildRegistry(sources []Source) (*schema.Registry, diag.List) {
	b := schema.NewBuilder()
	for _, s := range sources {
		b.AddSource(s.Path, s.Text)
	}
	return b.Build()
}

// AnalyzeQuery parses one query source and infers a descriptor for
// each statement found, in source order. A failing statement yields an
// empty descriptor and diagnostics; the rest of the file is still
// analyzed.
func AnalyzeQuery(reg *schema.Registry, source Source) ([]infer.Descriptor, diag.List) {
	stmts, diags := parser.Parse(source.Path, source.Text)
	descs := make([]infer.Descriptor, 0, len(stmts))
	for _, stmt := range stmts {
		d, ds := infer.Infer(reg, stmt)
		descs = append(descs, d)
		diags.Add(ds...)
	}
	return descs, diags
}
