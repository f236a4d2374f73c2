package host

import (
	"go/ast"
	"go/importer"
	"go/token"
	"go/types"
	"path/filepath"

	"github.com/cockroachdb/errors"

	"github.com/darklink/dlgen/internal/marker"
)

// PackageInput is one package handed to Check.
type PackageInput struct {
	Path      string
	Dir       string
	Files     []*ast.File
	FileNames []string

	// ImportMap maps import paths as written in the files to package paths.
	// Missing entries map to themselves.
	ImportMap map[string]string
	// Imports serves packages from outside the run, keyed by import path.
	Imports map[string]*types.Package
}

// CheckOptions tunes type-checking.
type CheckOptions struct {
	// Importer resolves imports found neither in the run nor in
	// PackageInput.Imports. Defaults to importer.Default().
	Importer  types.Importer
	GoVersion string
	Sizes     types.Sizes
}

// Check type-checks inputs in order. Every package gets the marker unit added
// to its files, and files previously written by dlgen are dropped. Inputs must
// be ordered so that a package follows the run packages it imports.
//
// Type errors do not fail the check: code using members that are generated by
// this run does not type-check before the run. They are kept on the package.
func Check(fset *token.FileSet, inputs []PackageInput, opts CheckOptions) (*Compilation, error) {
	if fset == nil {
		return nil, errors.AssertionFailedf("host.Check: nil file set")
	}
	fallback := opts.Importer
	if fallback == nil {
		fallback = importer.Default()
	}

	comp := newCompilation(fset)
	for _, in := range inputs {
		pkg, err := checkPackage(comp, fset, in, fallback, opts)
		if err != nil {
			return nil, err
		}
		comp.add(pkg)
	}
	return comp, nil
}

func checkPackage(comp *Compilation, fset *token.FileSet, in PackageInput, fallback types.Importer, opts CheckOptions) (*Package, error) {
	if len(in.Files) == 0 {
		return nil, errors.Newf("package %s has no files", in.Path)
	}
	if len(in.FileNames) != len(in.Files) {
		return nil, errors.AssertionFailedf("package %s: %d files but %d file names", in.Path, len(in.Files), len(in.FileNames))
	}
	if comp.Package(in.Path) != nil {
		return nil, errors.Newf("package %s listed twice", in.Path)
	}

	pkg := &Package{
		Path:    in.Path,
		Name:    in.Files[0].Name.Name,
		Dir:     in.Dir,
		markers: make(map[marker.Kind]*types.TypeName),
	}
	for i, f := range in.Files {
		if IsGenerated(f) {
			continue
		}
		pkg.Files = append(pkg.Files, f)
		pkg.FileNames = append(pkg.FileNames, in.FileNames[i])
	}

	markerFile, err := marker.Parse(fset, filepath.Join(in.Dir, marker.FileName), pkg.Name)
	if err != nil {
		return nil, errors.Wrapf(err, "package %s", in.Path)
	}
	pkg.MarkerFile = markerFile

	pkg.Info = &types.Info{
		Types:      make(map[ast.Expr]types.TypeAndValue),
		Defs:       make(map[*ast.Ident]types.Object),
		Uses:       make(map[*ast.Ident]types.Object),
		Implicits:  make(map[ast.Node]types.Object),
		Selections: make(map[*ast.SelectorExpr]*types.Selection),
		Scopes:     make(map[ast.Node]*types.Scope),
		Instances:  make(map[*ast.Ident]types.Instance),
	}
	conf := types.Config{
		Importer:  runImporter{comp: comp, in: in, fallback: fallback},
		GoVersion: opts.GoVersion,
		Sizes:     opts.Sizes,
		Error: func(err error) {
			pkg.TypeErrors = append(pkg.TypeErrors, err)
		},
	}
	files := make([]*ast.File, 0, len(pkg.Files)+1)
	files = append(files, pkg.Files...)
	files = append(files, markerFile)

	// The error is the first of TypeErrors; a package is returned regardless.
	tpkg, _ := conf.Check(in.Path, fset, files, pkg.Info)
	if tpkg == nil {
		return nil, errors.AssertionFailedf("type checker returned no package for %s", in.Path)
	}
	pkg.Types = tpkg

	tf := fset.File(markerFile.Pos())
	for _, spec := range marker.Specs() {
		obj := tpkg.Scope().Lookup(spec.Name)
		if obj == nil {
			continue
		}
		tn, ok := obj.(*types.TypeName)
		if !ok || tf == nil || fset.File(tn.Pos()) != tf {
			// The package declares the name itself; the marker stays unrecognised.
			pkg.shadowed = append(pkg.shadowed, obj)
			continue
		}
		pkg.markers[spec.Kind] = tn
	}
	return pkg, nil
}

type runImporter struct {
	comp     *Compilation
	in       PackageInput
	fallback types.Importer
}

func (r runImporter) Import(path string) (*types.Package, error) {
	pkgPath := path
	if mapped, ok := r.in.ImportMap[path]; ok {
		pkgPath = mapped
	}
	if p := r.comp.Package(pkgPath); p != nil {
		return p.Types, nil
	}
	if p, ok := r.in.Imports[path]; ok && p != nil {
		return p, nil
	}
	if path == "unsafe" {
		return types.Unsafe, nil
	}
	return r.fallback.Import(path)
}
