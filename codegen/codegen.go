// Package codegen defines the contract between the analysis pipeline
// and the language backends. A backend renders result descriptors into
// target-language source; descriptors are self-contained, so backends
// never see the AST or the registry.
package codegen

import (
	"strings"
	"unicode/utf8"

	"github.com/go-openapi/inflect"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/syssam/surtype/infer"
)

// A Unit is one analyzed query source handed to a backend: the export
// base name (derived from the file stem), the original query text for
// doc comments, and one descriptor per statement.
type Unit struct {
	Name        string
	Query       string
	Descriptors []infer.Descriptor
}

// A Generator renders units into one target-language source file.
type Generator interface {
	Generate(units []Unit) ([]byte, error)
}

var upper = cases.Upper(language.Und)

// Export converts a file stem or field name into an exported
// identifier: get_user and get-user both become GetUser.
func Export(name string) string {
	name = strings.NewReplacer("-", "_", ".", "_", " ", "_").Replace(name)
	out := inflect.Camelize(name)
	if out == "" {
		return "Query"
	}
	r, size := utf8.DecodeRuneInString(out)
	return upper.String(string(r)) + out[size:]
}
