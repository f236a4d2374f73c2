package autonotify

import (
	"go/ast"
	"go/token"
	"go/types"

	"github.com/darklink/dlgen/internal/collect"
	"github.com/darklink/dlgen/internal/genkit"
	"github.com/darklink/dlgen/internal/host"
	"github.com/darklink/dlgen/internal/marker"
)

// target is a candidate confirmed to be an AutoNotify marker.
type target struct {
	cand    collect.Candidate
	comment *ast.Comment
	model   *host.SemanticModel
	opts    marker.Options
	// optErr is set when the marker type resolved but its options did not.
	optErr error
}

type owner struct {
	obj      *types.TypeName
	named    *types.Named
	pkg      *host.Package
	notifier *types.Named
	// embed is the name the notifier is embedded under, which differs from
	// Notifier when the embedded type is an alias.
	embed string
}

type property struct {
	field   *types.Var
	private bool
}

type analyzer struct {
	ec   *genkit.ExecContext
	comp *host.Compilation
	// generated tracks the accessor names already claimed per owner.
	generated map[*types.TypeName]map[string]bool
}

// resolve type-checks the directive where it appears and keeps it only when it
// denotes the AutoNotify marker declared by the run. Everything else, including
// other directives and same-named types, is not a usage and is dropped.
func (a *analyzer) resolve(c collect.Candidate) (target, bool) {
	comment, ok := c.Node.(*ast.Comment)
	if !ok {
		return target{}, false
	}
	text, ok := marker.DirectiveExpr(comment.Text)
	if !ok {
		return target{}, false
	}
	pos := comment.Pos() + token.Pos(marker.DirectiveOffset(comment.Text))
	model := a.comp.SemanticModel(c.Package, c.File)
	t := target{cand: c, comment: comment, model: model}

	ev, err := model.EvalDirective(pos, text)
	if ev == nil {
		return target{}, false
	}
	if err != nil {
		// The marker type may resolve while an option does not.
		lit, ok := ast.Unparen(ev.Expr).(*ast.CompositeLit)
		if !ok || lit.Type == nil {
			return target{}, false
		}
		head, herr := model.EvalDirective(pos, types.ExprString(lit.Type))
		if herr != nil || a.comp.MarkerKind(head.TypeName()) != marker.KindAutoNotify {
			return target{}, false
		}
		t.optErr = err
		return t, true
	}
	if a.comp.MarkerKind(ev.TypeName()) != marker.KindAutoNotify {
		return target{}, false
	}
	t.opts, t.optErr = marker.DecodeOptions(ev.Expr, ev.Info)
	return t, true
}

// embeddedNotifier returns the notify.Notifier embedded directly in named
// and the field it is embedded as. The runtime package lives outside the run,
// so it is matched by path.
func embeddedNotifier(named *types.Named) (*types.Named, string) {
	if named == nil {
		return nil, ""
	}
	st, ok := named.Underlying().(*types.Struct)
	if !ok {
		return nil, ""
	}
	for i := 0; i < st.NumFields(); i++ {
		f := st.Field(i)
		if !f.Embedded() {
			continue
		}
		t := types.Unalias(f.Type())
		if p, ok := t.(*types.Pointer); ok {
			t = types.Unalias(p.Elem())
		}
		n, ok := t.(*types.Named)
		if !ok {
			continue
		}
		obj := n.Obj()
		if obj.Name() == "Notifier" && obj.Pkg() != nil && obj.Pkg().Path() == NotifyPath {
			return n, f.Name()
		}
	}
	return nil, ""
}
