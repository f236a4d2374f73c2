package enummatch

import (
	"fmt"
	"go/ast"
	"go/constant"
	"go/token"
	"go/types"
	"sort"

	"github.com/darklink/dlgen/internal/collect"
	"github.com/darklink/dlgen/internal/diag"
	"github.com/darklink/dlgen/internal/genkit"
	"github.com/darklink/dlgen/internal/host"
	"github.com/darklink/dlgen/internal/marker"
)

type analyzer struct {
	ec   *genkit.ExecContext
	comp *host.Compilation
}

type enum struct {
	obj     *types.TypeName
	named   *types.Named
	pkg     *host.Package
	members []*types.Const
	flags   bool
}

// resolveReceiver returns the enum type x has in x.Match, or nil. Selectors
// that already resolve, such as a hand-written Match method, are not usages.
func (a *analyzer) resolveReceiver(c collect.Candidate) *types.Named {
	sel, ok := c.Node.(*ast.SelectorExpr)
	if !ok {
		return nil
	}
	model := a.comp.SemanticModel(c.Package, c.File)
	if _, ok := model.Selection(sel); ok {
		return nil
	}
	tv, ok := c.Package.Info.Types[sel.X]
	if !ok || !tv.IsValue() || tv.Type == nil {
		return nil
	}
	t := types.Unalias(tv.Type)
	if p, ok := t.(*types.Pointer); ok {
		t = types.Unalias(p.Elem())
	}
	named, ok := t.(*types.Named)
	if !ok || named.TypeParams().Len() > 0 || named.TypeArgs().Len() > 0 {
		return nil
	}
	if !isEnumUnderlying(named.Underlying()) {
		return nil
	}
	obj := named.Obj()
	if obj.Pkg() == nil || obj.Parent() != obj.Pkg().Scope() {
		return nil
	}
	if a.comp.PackageOf(obj) == nil {
		return nil
	}
	if m, _, _ := types.LookupFieldOrMethod(named, true, obj.Pkg(), "Match"); m != nil {
		return nil
	}
	return named
}

func isEnumUnderlying(t types.Type) bool {
	b, ok := t.(*types.Basic)
	return ok && b.Info()&(types.IsInteger|types.IsFloat|types.IsString) != 0 && b.Info()&types.IsUntyped == 0
}

func isIntegerUnderlying(t types.Type) bool {
	b, ok := t.(*types.Basic)
	return ok && b.Info()&types.IsInteger != 0
}

// members returns the package-level constants of named in declaration order.
// Blank constants and constants repeating an earlier value are skipped.
func (a *analyzer) members(named *types.Named) []*types.Const {
	scope := named.Obj().Pkg().Scope()
	var consts []*types.Const
	for _, name := range scope.Names() {
		c, ok := scope.Lookup(name).(*types.Const)
		if !ok || name == "_" || !types.Identical(c.Type(), named) {
			continue
		}
		consts = append(consts, c)
	}
	sort.Slice(consts, func(i, j int) bool {
		pi, pj := a.comp.Position(consts[i].Pos()), a.comp.Position(consts[j].Pos())
		if pi.Filename != pj.Filename {
			return pi.Filename < pj.Filename
		}
		return pi.Offset < pj.Offset
	})
	out := consts[:0]
	for _, c := range consts {
		dup := false
		for _, prev := range out {
			if constant.Compare(prev.Val(), token.EQL, c.Val()) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, c)
		}
	}
	return out
}

// resolveFlags returns the type a Flags directive marks, or nil. Misplaced
// and misapplied markers are reported.
func (a *analyzer) resolveFlags(c collect.Candidate) *types.TypeName {
	comment, ok := c.Node.(*ast.Comment)
	if !ok {
		return nil
	}
	text, ok := marker.DirectiveExpr(comment.Text)
	if !ok {
		return nil
	}
	model := a.comp.SemanticModel(c.Package, c.File)
	ev, err := model.EvalDirective(comment.Pos()+token.Pos(marker.DirectiveOffset(comment.Text)), text)
	if err != nil || a.comp.MarkerKind(ev.TypeName()) != marker.KindFlags {
		return nil
	}

	span := a.comp.Span(comment.Pos(), comment.End())
	warn := func(format string, args ...any) {
		diag.Report(a.ec.Reporter(), diag.EmFlagsMisapplied, span, fmt.Sprintf(format, args...)).Emit()
	}
	spec := flagsTarget(c.Stack)
	if spec == nil {
		warn("Flags must be attached to a type declaration")
		return nil
	}
	obj, _ := model.DeclaredObject(spec.Name).(*types.TypeName)
	if obj == nil {
		return nil
	}
	named, ok := obj.Type().(*types.Named)
	if spec.Assign.IsValid() || !ok || !isIntegerUnderlying(named.Underlying()) || named.TypeParams().Len() > 0 {
		warn("Flags requires a defined integer type; %s is %s", obj.Name(),
			types.TypeString(obj.Type().Underlying(), types.RelativeTo(obj.Pkg())))
		return nil
	}
	return obj
}

// flagsTarget returns the type spec a directive comment documents: the only
// spec of a type declaration, or a spec of a grouped one.
func flagsTarget(stack []ast.Node) *ast.TypeSpec {
	if _, ok := collect.Parent(stack, 1).(*ast.CommentGroup); !ok {
		return nil
	}
	switch n := collect.Parent(stack, 2).(type) {
	case *ast.TypeSpec:
		return n
	case *ast.GenDecl:
		if n.Tok != token.TYPE || len(n.Specs) != 1 {
			return nil
		}
		spec, _ := n.Specs[0].(*ast.TypeSpec)
		return spec
	}
	return nil
}

// checkNames reports helpers whose names are already declared.
func (a *analyzer) checkNames(e enum) bool {
	name := funcName(e.obj.Name())
	decl := a.comp.Span(e.obj.Pos(), e.obj.Pos()+token.Pos(len(e.obj.Name())))
	if prev := e.obj.Pkg().Scope().Lookup(name); prev != nil {
		diag.Report(a.ec.Reporter(), diag.EmNameCollision, decl,
			fmt.Sprintf("cannot generate %s for %s: the name is already declared", name, e.obj.Name())).
			WithNote(a.comp.Span(prev.Pos(), prev.Pos()+token.Pos(len(name))), "declared here").Emit()
		return false
	}
	if e.flags {
		if prev, _, _ := types.LookupFieldOrMethod(e.named, true, e.obj.Pkg(), "Has"); prev != nil {
			diag.Report(a.ec.Reporter(), diag.EmNameCollision, decl,
				fmt.Sprintf("cannot generate Has for %s: the method is already declared", e.obj.Name())).
				WithNote(a.comp.Span(prev.Pos(), prev.Pos()+3), "declared here").Emit()
			return false
		}
	}
	return true
}

func funcName(typeName string) string {
	if token.IsExported(typeName) {
		return "Match" + typeName
	}
	return "match" + genkit.Capitalize(typeName)
}
