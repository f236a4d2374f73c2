package marker

import (
	_ "embed"
	"go/ast"
	"go/parser"
	"go/token"
	"strings"

	"github.com/cockroachdb/errors"
)

// GeneratedHeader opens every file written by dlgen. Files starting with it
// are ignored when a package is loaded, so a run never sees its own output.
const GeneratedHeader = "// Code generated by dlgen. DO NOT EDIT."

// FileName is the name of the unit carrying the marker declaration.
const FileName = "dl_markers.go"

//go:embed declaration.go.txt
var declaration string

// Declaration returns the marker declaration without header or package clause.
func Declaration() string {
	return declaration
}

// Source renders the marker unit for package pkgName.
func Source(pkgName string) string {
	var b strings.Builder
	b.Grow(len(GeneratedHeader) + len(pkgName) + len(declaration) + 16)
	b.WriteString(GeneratedHeader)
	b.WriteString("\n\npackage ")
	b.WriteString(pkgName)
	b.WriteString("\n\n")
	b.WriteString(declaration)
	return b.String()
}

// Parse parses the marker unit for pkgName into fset. The declaration is part
// of the binary, so a failure here means the engine itself is broken.
func Parse(fset *token.FileSet, filename, pkgName string) (*ast.File, error) {
	file, err := parser.ParseFile(fset, filename, Source(pkgName), parser.ParseComments)
	if err != nil {
		return nil, errors.AssertionFailedf("marker declaration does not parse for package %q: %v", pkgName, err)
	}
	return file, nil
}
