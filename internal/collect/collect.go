// Package collect holds the syntactic pre-filters and the run-scoped
// accumulator used by the generators' syntax receivers.
package collect

import (
	"go/ast"
	"go/token"
	"sort"
	"sync"

	"github.com/darklink/dlgen/internal/genkit"
	"github.com/darklink/dlgen/internal/host"
	"github.com/darklink/dlgen/internal/marker"
)

// Candidate is a syntax node that looks like a marker usage. Nothing about it
// is known to be true until it is resolved.
type Candidate struct {
	Node    ast.Node
	Stack   []ast.Node
	File    *ast.File
	Package *host.Package
	Pos     token.Pos
}

// FromSyntax copies a delivered syntax node into a candidate. The stack is
// copied because the driver reuses its backing array.
func FromSyntax(n genkit.SyntaxNode) Candidate {
	return Candidate{
		Node:    n.Node,
		Stack:   append([]ast.Node(nil), n.Stack...),
		File:    n.File,
		Package: n.Package,
		Pos:     n.Node.Pos(),
	}
}

// Accumulator is an append-only candidate list safe for concurrent Add.
type Accumulator struct {
	mu    sync.Mutex
	items []Candidate
}

func (a *Accumulator) Add(c Candidate) {
	a.mu.Lock()
	a.items = append(a.items, c)
	a.mu.Unlock()
}

// Sorted returns a copy of the candidates in source order: by file name, then
// by offset. Collection order depends on scheduling; analysis order must not.
func (a *Accumulator) Sorted(fset *token.FileSet) []Candidate {
	a.mu.Lock()
	out := append([]Candidate(nil), a.items...)
	a.mu.Unlock()
	sort.SliceStable(out, func(i, j int) bool {
		pi, pj := fset.Position(out[i].Pos), fset.Position(out[j].Pos)
		if pi.Filename != pj.Filename {
			return pi.Filename < pj.Filename
		}
		return pi.Offset < pj.Offset
	})
	return out
}

// DirectiveComment is the pre-filter for marker directives.
func DirectiveComment(n ast.Node) (*ast.Comment, bool) {
	c, ok := n.(*ast.Comment)
	if !ok || !marker.IsDirective(c.Text) {
		return nil, false
	}
	return c, true
}

// MatchSelector is the pre-filter for x.Match selectors.
func MatchSelector(n ast.Node) (*ast.SelectorExpr, bool) {
	sel, ok := n.(*ast.SelectorExpr)
	if !ok || sel.Sel == nil || sel.Sel.Name != "Match" {
		return nil, false
	}
	return sel, true
}
