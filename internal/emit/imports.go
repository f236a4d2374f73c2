package emit

import (
	"go/types"
	"path"
	"sort"
	"strconv"
)

// Import is one import spec of a generated file.
type Import struct {
	Name string // explicit local name, empty when it equals the path base
	Path string
}

// Imports collects the imports a generated file needs and assigns local names
// that collide neither with each other nor with package-level identifiers.
type Imports struct {
	self   string
	taken  func(name string) bool
	byPath map[string]string
	byName map[string]string
}

// NewImports creates an import set for a file of package selfPath. taken
// reports names declared at package level; it may be nil.
func NewImports(selfPath string, taken func(name string) bool) *Imports {
	return &Imports{
		self:   selfPath,
		taken:  taken,
		byPath: make(map[string]string),
		byName: make(map[string]string),
	}
}

// Add records an import of pkgPath whose package clause name is name and
// returns the local name to qualify with.
func (im *Imports) Add(pkgPath, name string) string {
	if pkgPath == im.self {
		return ""
	}
	if local, ok := im.byPath[pkgPath]; ok {
		return local
	}
	local := name
	for i := 2; im.used(local); i++ {
		local = name + strconv.Itoa(i)
	}
	im.byPath[pkgPath] = local
	im.byName[local] = pkgPath
	return local
}

func (im *Imports) used(name string) bool {
	if _, ok := im.byName[name]; ok {
		return true
	}
	return im.taken != nil && im.taken(name)
}

// Qualifier renders package-qualified names through the import set.
func (im *Imports) Qualifier() types.Qualifier {
	return func(p *types.Package) string {
		return im.Add(p.Path(), p.Name())
	}
}

// Names returns the local names in use.
func (im *Imports) Names() []string {
	names := make([]string, 0, len(im.byName))
	for n := range im.byName {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// List returns the import specs sorted by path.
func (im *Imports) List() []Import {
	out := make([]Import, 0, len(im.byPath))
	for p, local := range im.byPath {
		spec := Import{Path: p}
		if local != path.Base(p) {
			spec.Name = local
		}
		out = append(out, spec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}
