package enummatch

import (
	"go/types"

	"github.com/darklink/dlgen/internal/emit"
	"github.com/darklink/dlgen/internal/genkit"
)

func render(e enum) (genkit.Unit, error) {
	scope := e.obj.Pkg().Scope()
	im := emit.NewImports(e.pkg.Path, func(name string) bool { return scope.Lookup(name) != nil })
	names := make([]string, len(e.members))
	for i, m := range e.members {
		names[i] = m.Name()
	}
	src, err := emit.Match(emit.MatchEnum{
		PkgName:    e.pkg.Name,
		TypeName:   e.obj.Name(),
		Underlying: types.TypeString(e.named.Underlying(), nil),
		Members:    names,
		FuncName:   funcName(e.obj.Name()),
		IsFlags:    e.flags,
		Fmt:        im.Add("fmt", "fmt"),
		Imports:    im,
	})
	if err != nil {
		return genkit.Unit{}, err
	}
	return genkit.Unit{
		Name:     genkit.UnitName(e.pkg.Path, e.obj.Name(), unitSuffix),
		Package:  e.pkg,
		FileName: genkit.UnitFileName(e.obj.Name(), unitSuffix),
		Source:   src,
		Owner:    e.obj,
	}, nil
}
