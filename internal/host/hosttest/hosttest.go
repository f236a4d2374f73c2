// Package hosttest builds host compilations from in-memory sources.
package hosttest

import (
	"go/ast"
	"go/importer"
	"go/parser"
	"go/token"
	"go/types"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"

	"github.com/cockroachdb/errors"

	"github.com/darklink/dlgen/internal/host"
)

// NotifyPath is the import path of the notification runtime package.
const NotifyPath = "github.com/darklink/dlgen/notify"

// File is one in-memory source file.
type File struct {
	Name string
	Src  string
}

// Package is one in-memory package. Packages passed together must be ordered
// so that imports come first.
type Package struct {
	Path  string
	Files []File
}

// Dir is the virtual directory of a package.
func Dir(path string) string {
	return filepath.Join(string(filepath.Separator)+"src", filepath.FromSlash(path))
}

// Compile parses pkgs and checks them as one run.
func Compile(t testing.TB, pkgs ...Package) *host.Compilation {
	t.Helper()
	comp, err := Build(pkgs...)
	if err != nil {
		t.Fatalf("hosttest: %v", err)
	}
	return comp
}

// Single compiles one package example.com/demo made of a single file.
func Single(t testing.TB, src string) *host.Compilation {
	t.Helper()
	return Compile(t, Package{Path: "example.com/demo", Files: []File{{Name: "demo.go", Src: src}}})
}

// Build is Compile without a testing.TB.
func Build(pkgs ...Package) (*host.Compilation, error) {
	fset := token.NewFileSet()
	inputs := make([]host.PackageInput, 0, len(pkgs))
	for _, p := range pkgs {
		in := host.PackageInput{Path: p.Path, Dir: Dir(p.Path)}
		for _, f := range p.Files {
			name := filepath.Join(in.Dir, f.Name)
			file, err := parser.ParseFile(fset, name, f.Src, parser.ParseComments)
			if err != nil {
				return nil, errors.Wrapf(err, "parse %s", name)
			}
			in.Files = append(in.Files, file)
			in.FileNames = append(in.FileNames, name)
		}
		inputs = append(inputs, in)
	}
	return host.Check(fset, inputs, host.CheckOptions{Importer: Importer()})
}

// TypeCheck type-checks pkgs with plain go/types, without the marker unit,
// and returns every type error found. Generated files are checked this way
// together with the sources they were generated from.
func TypeCheck(pkgs ...Package) []error {
	fset := token.NewFileSet()
	done := make(map[string]*types.Package)
	var errs []error
	imp := importerFunc(func(path string) (*types.Package, error) {
		if p, ok := done[path]; ok {
			return p, nil
		}
		return Importer().Import(path)
	})
	for _, p := range pkgs {
		var files []*ast.File
		for _, f := range p.Files {
			file, err := parser.ParseFile(fset, filepath.Join(Dir(p.Path), f.Name), f.Src, parser.ParseComments)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			files = append(files, file)
		}
		conf := types.Config{Importer: imp, Error: func(err error) { errs = append(errs, err) }}
		tpkg, _ := conf.Check(p.Path, fset, files, nil)
		done[p.Path] = tpkg
	}
	return errs
}

type importerFunc func(path string) (*types.Package, error)

func (f importerFunc) Import(path string) (*types.Package, error) { return f(path) }

var (
	notifyOnce sync.Once
	notifyPkg  *types.Package
	notifyErr  error
	stdOnce    sync.Once
	std        types.Importer
	stdMu      sync.Mutex
)

// Importer serves the notification runtime from this repository's sources and
// everything else from the standard importer.
func Importer() types.Importer {
	stdOnce.Do(func() { std = importer.Default() })
	return importerFunc(func(path string) (*types.Package, error) {
		if path == NotifyPath {
			notifyOnce.Do(func() { notifyPkg, notifyErr = checkNotify() })
			return notifyPkg, notifyErr
		}
		stdMu.Lock()
		defer stdMu.Unlock()
		return std.Import(path)
	})
}

func checkNotify() (*types.Package, error) {
	_, self, _, ok := runtime.Caller(0)
	if !ok {
		return nil, errors.New("hosttest: cannot locate sources")
	}
	dir := filepath.Join(filepath.Dir(self), "..", "..", "..", "notify")
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrap(err, "hosttest: read notify sources")
	}
	fset := token.NewFileSet()
	var files []*ast.File
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".go") || strings.HasSuffix(name, "_test.go") {
			continue
		}
		f, err := parser.ParseFile(fset, filepath.Join(dir, name), nil, 0)
		if err != nil {
			return nil, errors.Wrap(err, "hosttest: parse notify")
		}
		files = append(files, f)
	}
	stdMu.Lock()
	defer stdMu.Unlock()
	conf := types.Config{Importer: std}
	return conf.Check(NotifyPath, fset, files, nil)
}
