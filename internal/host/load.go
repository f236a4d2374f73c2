package host

import (
	"context"
	"go/token"
	"go/types"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	"golang.org/x/tools/go/packages"
)

// LoadConfig selects the packages of a run.
type LoadConfig struct {
	Dir      string
	Patterns []string
	Tags     []string
	Tests    bool
	Env      []string
}

const loadMode = packages.NeedName | packages.NeedFiles | packages.NeedCompiledGoFiles |
	packages.NeedSyntax | packages.NeedTypes | packages.NeedImports | packages.NeedDeps | packages.NeedModule | packages.NeedTypesSizes

// Load resolves patterns with go/packages and type-checks the matched packages
// as one run. Packages outside the run are used as loaded.
func Load(ctx context.Context, cfg LoadConfig) (*Compilation, error) {
	patterns := cfg.Patterns
	if len(patterns) == 0 {
		patterns = []string{"./..."}
	}
	fset := token.NewFileSet()
	pcfg := &packages.Config{
		Context: ctx,
		Mode:    loadMode,
		Dir:     cfg.Dir,
		Env:     cfg.Env,
		Fset:    fset,
		Tests:   cfg.Tests,
	}
	if len(cfg.Tags) > 0 {
		pcfg.BuildFlags = []string{"-tags=" + strings.Join(cfg.Tags, ",")}
	}

	roots, err := packages.Load(pcfg, patterns...)
	if err != nil {
		return nil, errors.Wrapf(err, "load %v", patterns)
	}
	if len(roots) == 0 {
		return nil, errors.Newf("no packages matched %v", patterns)
	}
	for _, p := range roots {
		for _, perr := range p.Errors {
			if perr.Kind == packages.ListError {
				return nil, errors.Newf("%s: %s", p.PkgPath, perr.Msg)
			}
		}
	}

	ordered := topoOrder(selectVariants(roots))
	inputs := make([]PackageInput, 0, len(ordered))
	for _, p := range ordered {
		if len(p.Syntax) == 0 {
			continue
		}
		in := PackageInput{
			Path:      p.PkgPath,
			Dir:       packageDir(p),
			Files:     p.Syntax,
			FileNames: p.CompiledGoFiles,
			ImportMap: make(map[string]string, len(p.Imports)),
			Imports:   make(map[string]*types.Package, len(p.Imports)),
		}
		if len(in.FileNames) != len(in.Files) {
			in.FileNames = syntaxNames(fset, p)
		}
		for importPath, dep := range p.Imports {
			in.ImportMap[importPath] = dep.PkgPath
			in.Imports[importPath] = dep.Types
		}
		inputs = append(inputs, in)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return Check(fset, inputs, CheckOptions{Sizes: sizesOf(roots)})
}

// topoOrder orders root packages so that each follows the roots it imports.
// Ties are broken by package path.
func topoOrder(roots []*packages.Package) []*packages.Package {
	byPath := make(map[string]*packages.Package, len(roots))
	for _, p := range roots {
		byPath[p.PkgPath] = p
	}
	sorted := append([]*packages.Package(nil), roots...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].PkgPath < sorted[j].PkgPath })

	var out []*packages.Package
	seen := make(map[string]bool, len(roots))
	var visit func(p *packages.Package)
	visit = func(p *packages.Package) {
		if seen[p.PkgPath] {
			return
		}
		seen[p.PkgPath] = true
		deps := make([]string, 0, len(p.Imports))
		for _, dep := range p.Imports {
			if _, ok := byPath[dep.PkgPath]; ok {
				deps = append(deps, dep.PkgPath)
			}
		}
		sort.Strings(deps)
		for _, path := range deps {
			visit(byPath[path])
		}
		out = append(out, p)
	}
	for _, p := range sorted {
		visit(p)
	}
	return out
}

func packageDir(p *packages.Package) string {
	if p.Dir != "" {
		return p.Dir
	}
	if len(p.GoFiles) > 0 {
		return filepath.Dir(p.GoFiles[0])
	}
	return ""
}

func syntaxNames(fset *token.FileSet, p *packages.Package) []string {
	names := make([]string, len(p.Syntax))
	for i, f := range p.Syntax {
		names[i] = fset.Position(f.Package).Filename
	}
	return names
}

func sizesOf(roots []*packages.Package) types.Sizes {
	for _, p := range roots {
		if p.TypesSizes != nil {
			return p.TypesSizes
		}
	}
	return nil
}

// selectVariants drops test binaries and, when tests are loaded, keeps only the
// variant of each package that carries the most files.
func selectVariants(roots []*packages.Package) []*packages.Package {
	best := make(map[string]*packages.Package, len(roots))
	for _, p := range roots {
		if p.Name == "main" && strings.HasSuffix(p.PkgPath, ".test") {
			continue
		}
		if cur, ok := best[p.PkgPath]; !ok || len(p.Syntax) > len(cur.Syntax) {
			best[p.PkgPath] = p
		}
	}
	out := make([]*packages.Package, 0, len(best))
	for _, p := range roots {
		if best[p.PkgPath] == p {
			out = append(out, p)
		}
	}
	return out
}
