package marker

import (
	"go/ast"
	"go/parser"
	"go/token"
	"go/types"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	spec, ok := Lookup("AutoNotify")
	require.True(t, ok)
	assert.Equal(t, KindAutoNotify, spec.Kind)
	assert.True(t, spec.Allows(TargetField))
	assert.False(t, spec.Allows(TargetType))

	_, ok = Lookup("autonotify")
	assert.False(t, ok, "lookup is case-sensitive like Go identifiers")

	flags, ok := LookupKind(KindFlags)
	require.True(t, ok)
	assert.Equal(t, "Flags", flags.Name)

	specs := Specs()
	require.Len(t, specs, 2)
	assert.Equal(t, "AutoNotify", specs[0].Name)
	assert.Equal(t, "Flags", specs[1].Name)
}

func TestDirectiveExpr(t *testing.T) {
	cases := []struct {
		text string
		expr string
		ok   bool
	}{
		{"//dl:AutoNotify", "AutoNotify", true},
		{"//dl:  AutoNotify{UsePrivateSetter: true} ", "AutoNotify{UsePrivateSetter: true}", true},
		{"//dl:", "", false},
		{"// dl:AutoNotify", "", false},
		{"//go:generate dlgen", "", false},
	}
	for _, tc := range cases {
		expr, ok := DirectiveExpr(tc.text)
		assert.Equal(t, tc.ok, ok, tc.text)
		assert.Equal(t, tc.expr, expr, tc.text)
	}
	assert.Equal(t, len("//dl:  "), DirectiveOffset("//dl:  AutoNotify"))
}

func TestSourceAndParse(t *testing.T) {
	src := Source("demo")
	assert.True(t, strings.HasPrefix(src, GeneratedHeader+"\n"))
	assert.Contains(t, src, "package demo\n")
	assert.Contains(t, src, "type AutoNotify struct")

	fset := token.NewFileSet()
	file, err := Parse(fset, FileName, "demo")
	require.NoError(t, err)
	assert.Equal(t, "demo", file.Name.Name)
	assert.NotNil(t, file.Scope.Lookup("AutoNotify"))
	assert.NotNil(t, file.Scope.Lookup("Flags"))
}

func TestParseFailureIsAssertion(t *testing.T) {
	_, err := Parse(token.NewFileSet(), FileName, "1nvalid")
	require.Error(t, err)
	assert.True(t, errors.HasAssertionFailure(err))
}

func checkWithMarkers(t *testing.T, src string) (*types.Package, *types.Info, *token.FileSet) {
	t.Helper()
	fset := token.NewFileSet()
	user, err := parser.ParseFile(fset, "user.go", src, parser.ParseComments)
	require.NoError(t, err)
	markers, err := Parse(fset, FileName, user.Name.Name)
	require.NoError(t, err)

	info := &types.Info{Types: make(map[ast.Expr]types.TypeAndValue)}
	pkg, err := new(types.Config).Check("example.com/demo", fset, []*ast.File{user, markers}, info)
	require.NoError(t, err)
	return pkg, info, fset
}

func evalOptions(t *testing.T, pkg *types.Package, info *types.Info, fset *token.FileSet, text string) (Options, error) {
	t.Helper()
	expr, err := parser.ParseExpr(text)
	require.NoError(t, err)
	require.NoError(t, types.CheckExpr(fset, pkg, token.NoPos, expr, info))
	return DecodeOptions(expr, info)
}

func TestDecodeOptions(t *testing.T) {
	pkg, info, fset := checkWithMarkers(t, "package demo\n\nconst private = true\n\nvar toggle = true\n")

	opts, err := evalOptions(t, pkg, info, fset, "AutoNotify")
	require.NoError(t, err)
	assert.False(t, opts.UsePrivateSetter)

	opts, err = evalOptions(t, pkg, info, fset, "AutoNotify{UsePrivateSetter: true}")
	require.NoError(t, err)
	assert.True(t, opts.UsePrivateSetter)

	opts, err = evalOptions(t, pkg, info, fset, "AutoNotify{private}")
	require.NoError(t, err)
	assert.True(t, opts.UsePrivateSetter)

	_, err = evalOptions(t, pkg, info, fset, "AutoNotify{UsePrivateSetter: toggle}")
	var optErr *OptionError
	require.ErrorAs(t, err, &optErr)
	assert.Equal(t, "UsePrivateSetter", optErr.Option)
}
