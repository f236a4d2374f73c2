package collect

import "go/ast"

// Parent returns the n-th ancestor of the last node of stack. Parent(stack, 0)
// is the node itself, Parent(stack, 1) its direct parent.
func Parent(stack []ast.Node, n int) ast.Node {
	i := len(stack) - 1 - n
	if i < 0 || i >= len(stack) {
		return nil
	}
	return stack[i]
}

// InFunction reports whether the last node lies inside a function body or
// function literal.
func InFunction(stack []ast.Node) bool {
	for i := len(stack) - 2; i >= 0; i-- {
		switch stack[i].(type) {
		case *ast.FuncDecl, *ast.FuncLit:
			return true
		}
	}
	return false
}
