package diagfmt

import (
	"io"

	"github.com/cockroachdb/errors"

	"github.com/darklink/dlgen/internal/diag"
)

// Render writes items in the given format.
func Render(w io.Writer, format Format, items []diag.Diagnostic, pretty PrettyOpts, js JSONOpts) error {
	switch format {
	case FormatPretty, "":
		Pretty(w, items, pretty)
	case FormatShort:
		Short(w, items, pretty)
	case FormatJSON:
		return JSON(w, items, js)
	case FormatMsgpack:
		return Msgpack(w, items, js)
	default:
		return errors.Newf("unknown diagnostics format %q", format)
	}
	return nil
}
