package autonotify

import (
	"fmt"
	"go/ast"
	"go/types"

	"github.com/cockroachdb/errors"

	"github.com/darklink/dlgen/internal/collect"
	"github.com/darklink/dlgen/internal/diag"
	"github.com/darklink/dlgen/internal/emit"
	"github.com/darklink/dlgen/internal/host"
	"github.com/darklink/dlgen/internal/marker"
)

// validate checks a resolved marker against its attachment point and returns
// the properties it declares. Every failure reports exactly one diagnostic at
// the directive and drops the candidate.
func (a *analyzer) validate(t target) ([]property, *owner, bool) {
	span := a.comp.Span(t.comment.Pos(), t.comment.End())
	report := func(code diag.Code, format string, args ...any) *diag.ReportBuilder {
		return diag.Report(a.ec.Reporter(), code, span, fmt.Sprintf(format, args...))
	}

	stack := t.cand.Stack
	_, inGroup := collect.Parent(stack, 1).(*ast.CommentGroup)
	field, isField := collect.Parent(stack, 2).(*ast.Field)
	_, inList := collect.Parent(stack, 3).(*ast.FieldList)
	st, inStruct := collect.Parent(stack, 4).(*ast.StructType)
	spec, inSpec := collect.Parent(stack, 5).(*ast.TypeSpec)
	if !inGroup || !isField || !inList || !inStruct || !inSpec || spec.Type != st {
		report(diag.AnNotOnField, "AutoNotify must be attached to a field of a struct type declaration").Emit()
		return nil, nil, false
	}
	if len(field.Names) == 0 {
		report(diag.AnNotOnField, "AutoNotify cannot be attached to an embedded field").Emit()
		return nil, nil, false
	}

	obj, _ := t.model.DeclaredObject(spec.Name).(*types.TypeName)
	if obj == nil {
		return nil, nil, false
	}
	declared := a.comp.Span(spec.Name.Pos(), spec.Name.End())
	if spec.Assign.IsValid() {
		report(diag.AnOwnerNotExtendable, "%s is an alias; methods can only be generated for defined types", obj.Name()).
			WithNote(declared, "alias declared here").Emit()
		return nil, nil, false
	}
	if collect.InFunction(stack) || obj.Parent() != obj.Pkg().Scope() {
		report(diag.AnOwnerNotExtendable, "%s is declared inside a function; methods can only be generated for package-level types", obj.Name()).
			WithNote(declared, "type declared here").Emit()
		return nil, nil, false
	}
	named, _ := obj.Type().(*types.Named)
	notifier, embed := embeddedNotifier(named)
	if notifier == nil {
		report(diag.AnOwnerNotExtendable, "%s does not embed notify.Notifier", obj.Name()).
			WithNote(declared, "type declared here").Emit()
		return nil, nil, false
	}

	for _, name := range field.Names {
		if name.Name == "_" {
			report(diag.AnFieldImmutable, "blank field cannot be read or assigned").Emit()
			return nil, nil, false
		}
	}

	if t.optErr != nil {
		var oe *marker.OptionError
		if errors.As(t.optErr, &oe) {
			report(diag.AnOptionNotConstant, "%s", oe.Error()).Emit()
		} else {
			report(diag.AnOptionNotConstant, "invalid AutoNotify options: %s", host.TypeErrorMessage(t.optErr)).Emit()
		}
		return nil, nil, false
	}

	props := make([]property, 0, len(field.Names))
	for _, name := range field.Names {
		v, _ := t.model.DeclaredObject(name).(*types.Var)
		if v == nil {
			return nil, nil, false
		}
		if !types.Comparable(v.Type()) {
			report(diag.AnFieldNotComparable, "field %s has type %s, which is not comparable", v.Name(),
				types.TypeString(v.Type(), types.RelativeTo(obj.Pkg()))).Emit()
			return nil, nil, false
		}
		if !strictlyComparable(v.Type()) {
			report(diag.AnFieldNotComparable, "field %s has type %s, whose values may not be comparable", v.Name(),
				types.TypeString(v.Type(), types.RelativeTo(obj.Pkg()))).Emit()
			return nil, nil, false
		}
		props = append(props, property{field: v, private: t.opts.UsePrivateSetter})
	}

	gen := a.generated[obj]
	if gen == nil {
		gen = make(map[string]bool)
	}
	claimed := make(map[string]bool)
	ptr := types.NewPointer(named)
	for _, p := range props {
		for _, name := range accessorNames(p) {
			if gen[name] || claimed[name] {
				report(diag.AnAccessorCollision, "accessor %s is already generated for %s", name, obj.Name()).Emit()
				return nil, nil, false
			}
			if existing, _, _ := types.LookupFieldOrMethod(ptr, false, obj.Pkg(), name); existing != nil {
				b := report(diag.AnAccessorCollision, "%s already has a member named %s", obj.Name(), name)
				if existing.Pos().IsValid() {
					b = b.WithNote(a.comp.Span(existing.Pos(), existing.Pos()+1), "declared here")
				}
				b.Emit()
				return nil, nil, false
			}
			claimed[name] = true
		}
	}
	for name := range claimed {
		gen[name] = true
	}
	a.generated[obj] = gen

	pkg := a.comp.PackageOf(obj)
	if pkg == nil {
		return nil, nil, false
	}
	return props, &owner{obj: obj, named: named, pkg: pkg, notifier: notifier, embed: embed}, true
}

func accessorNames(p property) []string {
	return []string{emit.PropertyName(p.field.Name()), emit.SetterName(p.field.Name(), p.private)}
}

// strictlyComparable reports whether == on values of t never panics. An
// interface compares dynamic values, which need not be comparable. Type
// parameters are taken at their constraint.
func strictlyComparable(t types.Type) bool {
	if _, ok := types.Unalias(t).(*types.TypeParam); ok {
		return true
	}
	switch u := t.Underlying().(type) {
	case *types.Interface:
		return false
	case *types.Struct:
		for i := 0; i < u.NumFields(); i++ {
			if !strictlyComparable(u.Field(i).Type()) {
				return false
			}
		}
	case *types.Array:
		return strictlyComparable(u.Elem())
	}
	return true
}
