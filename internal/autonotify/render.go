package autonotify

import (
	"go/types"

	"github.com/darklink/dlgen/internal/emit"
	"github.com/darklink/dlgen/internal/genkit"
)

func render(o *owner, props []property) (genkit.Unit, error) {
	pkg := o.pkg
	scope := pkg.Types.Scope()
	im := emit.NewImports(pkg.Path, func(name string) bool { return scope.Lookup(name) != nil })
	qualify := im.Qualifier()

	class := emit.NotifyClass{
		PkgName:  pkg.Name,
		TypeName: o.obj.Name(),
		Embed:    o.embed,
		Imports:  im,
	}
	if tps := o.named.TypeParams(); tps.Len() > 0 {
		for i := 0; i < tps.Len(); i++ {
			class.TypeParams = append(class.TypeParams, tps.At(i).Obj().Name())
		}
	} else if np := o.notifier.Obj().Pkg(); np != nil {
		class.Notifier = im.Add(np.Path(), np.Name()) + ".PropertyChangedNotifier"
	}
	for _, p := range props {
		class.Fields = append(class.Fields, emit.NotifyField{
			Name:          p.field.Name(),
			Type:          types.TypeString(p.field.Type(), qualify),
			PrivateSetter: p.private,
		})
	}

	src, err := emit.Notify(class)
	if err != nil {
		return genkit.Unit{}, err
	}
	return genkit.Unit{
		Name:     genkit.UnitName(pkg.Path, o.obj.Name(), unitSuffix),
		Package:  pkg,
		FileName: genkit.UnitFileName(o.obj.Name(), unitSuffix),
		Source:   src,
		Owner:    o.obj,
	}, nil
}
