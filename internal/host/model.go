package host

import (
	"go/ast"
	"go/parser"
	"go/token"
	"go/types"

	"github.com/cockroachdb/errors"
)

// SemanticModel answers type questions about one file of a run package.
type SemanticModel struct {
	comp *Compilation
	pkg  *Package
	file *ast.File
}

func (m *SemanticModel) Compilation() *Compilation { return m.comp }
func (m *SemanticModel) Package() *Package         { return m.pkg }
func (m *SemanticModel) File() *ast.File           { return m.file }

// TypeOf returns the type of e, or nil.
func (m *SemanticModel) TypeOf(e ast.Expr) types.Type {
	return m.pkg.Info.TypeOf(e)
}

// Selection returns the resolved selection for sel. Qualified identifiers and
// selectors that do not type-check have none.
func (m *SemanticModel) Selection(sel *ast.SelectorExpr) (*types.Selection, bool) {
	s, ok := m.pkg.Info.Selections[sel]
	return s, ok
}

// DeclaredObject returns the object declared by id, or nil.
func (m *SemanticModel) DeclaredObject(id *ast.Ident) types.Object {
	if id == nil {
		return nil
	}
	return m.pkg.Info.Defs[id]
}

// ObjectOf returns the object id denotes, declared or used.
func (m *SemanticModel) ObjectOf(id *ast.Ident) types.Object {
	if id == nil {
		return nil
	}
	return m.pkg.Info.ObjectOf(id)
}

// Evaluated is a type-checked directive expression. Info only holds the
// facts recorded for Expr.
type Evaluated struct {
	Expr ast.Expr
	TV   types.TypeAndValue
	Info *types.Info
}

// TypeName returns the named type the expression denotes or has, or nil.
func (e *Evaluated) TypeName() *types.TypeName {
	if e == nil || e.TV.Type == nil {
		return nil
	}
	named, ok := types.Unalias(e.TV.Type).(*types.Named)
	if !ok {
		return nil
	}
	return named.Origin().Obj()
}

// EvalDirective type-checks exprText as if it appeared at pos, which must lie in
// the model's file. Identifiers resolve in the innermost scope at pos, so a
// directive sees exactly what code written at that point would see.
//
// A parse failure returns a nil Evaluated. A type error returns the partially
// checked expression together with the error.
func (m *SemanticModel) EvalDirective(pos token.Pos, exprText string) (*Evaluated, error) {
	expr, err := parser.ParseExprFrom(token.NewFileSet(), "", exprText, 0)
	if err != nil {
		return nil, errors.Wrapf(err, "parse directive %q", exprText)
	}
	ev := &Evaluated{
		Expr: expr,
		Info: &types.Info{
			Types: make(map[ast.Expr]types.TypeAndValue),
			Uses:  make(map[*ast.Ident]types.Object),
		},
	}
	// Expression positions belong to a scratch file set; error messages are
	// reported at pos by the caller.
	if err := types.CheckExpr(m.comp.Fset, m.pkg.Types, pos, expr, ev.Info); err != nil {
		ev.TV = ev.Info.Types[expr]
		return ev, err
	}
	ev.TV = ev.Info.Types[expr]
	return ev, nil
}

// TypeErrorMessage strips position information from type-checker errors.
func TypeErrorMessage(err error) string {
	var terr types.Error
	if errors.As(err, &terr) {
		return terr.Msg
	}
	return err.Error()
}
