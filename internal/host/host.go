// Package host adapts the Go toolchain front end to the contract dlgen needs
// from a compiler platform: parsed files, a semantic model per file, symbol
// identity and positions.
//
// All packages of a Compilation are type-checked in one universe, so
// types.Object pointers compare by identity across the packages of a run.
package host

import (
	"go/ast"
	"go/token"
	"go/types"

	"github.com/darklink/dlgen/internal/diag"
	"github.com/darklink/dlgen/internal/marker"
)

// Package is one type-checked package of a run.
type Package struct {
	Path string
	Name string
	Dir  string

	// Files are the user files of the package in input order. Files written by
	// dlgen are excluded; MarkerFile holds the marker unit added by the run.
	Files      []*ast.File
	FileNames  []string
	MarkerFile *ast.File

	Types      *types.Package
	Info       *types.Info
	TypeErrors []error

	markers  map[marker.Kind]*types.TypeName
	shadowed []types.Object
}

// Marker returns the marker type declared by the run in this package.
func (p *Package) Marker(kind marker.Kind) *types.TypeName {
	if p == nil {
		return nil
	}
	return p.markers[kind]
}

// ShadowedMarkers returns the package-level objects the user declared under a
// marker name, ordered by name. Writing the marker unit into such a package
// would redeclare them.
func (p *Package) ShadowedMarkers() []types.Object {
	if p == nil {
		return nil
	}
	return p.shadowed
}

// FileName returns the path file was parsed from.
func (p *Package) FileName(file *ast.File) string {
	for i, f := range p.Files {
		if f == file {
			return p.FileNames[i]
		}
	}
	return ""
}

// Compilation is the set of packages processed by one run.
type Compilation struct {
	Fset     *token.FileSet
	Packages []*Package

	byPath  map[string]*Package
	byTypes map[*types.Package]*Package
	markers map[*types.TypeName]marker.Kind
}

func newCompilation(fset *token.FileSet) *Compilation {
	return &Compilation{
		Fset:    fset,
		byPath:  make(map[string]*Package),
		byTypes: make(map[*types.Package]*Package),
		markers: make(map[*types.TypeName]marker.Kind),
	}
}

func (c *Compilation) add(p *Package) {
	c.Packages = append(c.Packages, p)
	c.byPath[p.Path] = p
	if p.Types != nil {
		c.byTypes[p.Types] = p
	}
	for kind, obj := range p.markers {
		c.markers[obj] = kind
	}
}

// Package returns the run package with the given path.
func (c *Compilation) Package(path string) *Package {
	return c.byPath[path]
}

// PackageOf returns the run package declaring obj, or nil when obj comes from
// outside the run.
func (c *Compilation) PackageOf(obj types.Object) *Package {
	if obj == nil || obj.Pkg() == nil {
		return nil
	}
	return c.byTypes[obj.Pkg()]
}

// MarkerKind reports which marker obj is. Recognition is by identity with the
// marker types the run declared; a same-named type declared anywhere else is
// KindNone.
func (c *Compilation) MarkerKind(obj *types.TypeName) marker.Kind {
	if obj == nil {
		return marker.KindNone
	}
	return c.markers[obj]
}

// SemanticModel returns the semantic model for one file of pkg.
func (c *Compilation) SemanticModel(pkg *Package, file *ast.File) *SemanticModel {
	return &SemanticModel{comp: c, pkg: pkg, file: file}
}

func (c *Compilation) Position(pos token.Pos) token.Position {
	return c.Fset.Position(pos)
}

// Span resolves [pos, end) into a diagnostic span.
func (c *Compilation) Span(pos, end token.Pos) diag.Span {
	return diag.SpanOf(c.Fset, pos, end)
}
