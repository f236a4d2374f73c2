package host

import (
	"bytes"
	"go/ast"

	"github.com/darklink/dlgen/internal/marker"
)

// IsGenerated reports whether file was written by dlgen.
func IsGenerated(file *ast.File) bool {
	if file == nil || len(file.Comments) == 0 {
		return false
	}
	first := file.Comments[0]
	if first.Pos() > file.Package {
		return false
	}
	for _, c := range first.List {
		if c.Text == marker.GeneratedHeader {
			return true
		}
	}
	return false
}

// IsGeneratedSource is IsGenerated for unparsed file contents.
func IsGeneratedSource(src []byte) bool {
	return bytes.HasPrefix(src, []byte(marker.GeneratedHeader))
}
