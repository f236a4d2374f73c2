package marker

import (
	"strings"
)

// DirectivePrefix introduces a marker directive comment, e.g.
//
//	//dl:AutoNotify{UsePrivateSetter: true}
const DirectivePrefix = "//dl:"

// IsDirective reports whether comment text looks like a marker directive. It is
// a syntactic pre-filter only.
func IsDirective(text string) bool {
	return strings.HasPrefix(text, DirectivePrefix)
}

// DirectiveExpr returns the Go expression carried by a directive comment.
func DirectiveExpr(text string) (string, bool) {
	if !IsDirective(text) {
		return "", false
	}
	expr := strings.TrimSpace(text[len(DirectivePrefix):])
	if expr == "" {
		return "", false
	}
	return expr, true
}

// DirectiveOffset is the byte offset of the expression inside the comment text,
// used to place diagnostics and type-checking positions on the expression.
func DirectiveOffset(text string) int {
	if !IsDirective(text) {
		return 0
	}
	rest := text[len(DirectivePrefix):]
	return len(DirectivePrefix) + len(rest) - len(strings.TrimLeft(rest, " \t"))
}
