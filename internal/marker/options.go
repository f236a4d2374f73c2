package marker

import (
	"go/ast"
	"go/constant"
	"go/types"

	"github.com/cockroachdb/errors"
)

// Options is the configuration surface of the AutoNotify marker.
type Options struct {
	UsePrivateSetter bool
}

// autoNotifyFields lists the marker fields in declaration order, for
// positional composite literals.
var autoNotifyFields = []string{"UsePrivateSetter"}

// OptionError reports a marker option whose value is not a constant.
type OptionError struct {
	Option string
}

func (e *OptionError) Error() string {
	return "marker option " + e.Option + " must be a constant"
}

// DecodeOptions reads AutoNotify options from a type-checked directive
// expression. A bare type name yields the defaults; any other expression must
// be a composite literal of constants.
func DecodeOptions(expr ast.Expr, info *types.Info) (Options, error) {
	var opts Options
	lit, ok := ast.Unparen(expr).(*ast.CompositeLit)
	if !ok {
		if tv, ok := info.Types[expr]; ok && tv.IsType() {
			return opts, nil
		}
		return opts, &OptionError{Option: "value"}
	}
	for i, elt := range lit.Elts {
		name, value := "", elt
		if kv, ok := elt.(*ast.KeyValueExpr); ok {
			key, ok := kv.Key.(*ast.Ident)
			if !ok {
				return opts, &OptionError{Option: "?"}
			}
			name, value = key.Name, kv.Value
		} else if i < len(autoNotifyFields) {
			name = autoNotifyFields[i]
		}
		tv, ok := info.Types[value]
		if !ok || tv.Value == nil {
			return opts, &OptionError{Option: name}
		}
		switch name {
		case "UsePrivateSetter":
			if tv.Value.Kind() != constant.Bool {
				return opts, &OptionError{Option: name}
			}
			opts.UsePrivateSetter = constant.BoolVal(tv.Value)
		default:
			return opts, errors.Newf("unknown marker option %q", name)
		}
	}
	return opts, nil
}
