// Package emit renders generated units. Everything here is a pure function of
// its input model; resolution and validation happen before.
package emit

import (
	"bytes"
	"fmt"
	"go/format"
	"strconv"

	"github.com/cockroachdb/errors"

	"github.com/darklink/dlgen/internal/genkit"
	"github.com/darklink/dlgen/internal/marker"
)

// PropertyName is the accessor name generated for a field.
func PropertyName(field string) string {
	return genkit.Capitalize(field)
}

// SetterName is the mutator name generated for a field.
func SetterName(field string, private bool) string {
	if private {
		return "set" + PropertyName(field)
	}
	return "Set" + PropertyName(field)
}

type writer struct {
	buf bytes.Buffer
}

func (w *writer) printf(format string, args ...any) {
	fmt.Fprintf(&w.buf, format, args...)
}

func (w *writer) header(pkgName string, imports []Import) {
	w.printf("%s\n\npackage %s\n", marker.GeneratedHeader, pkgName)
	switch len(imports) {
	case 0:
	case 1:
		w.printf("\nimport %s\n", importSpec(imports[0]))
	default:
		w.printf("\nimport (\n")
		for _, im := range imports {
			w.printf("\t%s\n", importSpec(im))
		}
		w.printf(")\n")
	}
}

func importSpec(im Import) string {
	if im.Name == "" {
		return strconv.Quote(im.Path)
	}
	return im.Name + " " + strconv.Quote(im.Path)
}

func (w *writer) format(unit string) ([]byte, error) {
	out, err := format.Source(w.buf.Bytes())
	if err != nil {
		return nil, errors.AssertionFailedf("generated %s does not parse: %v\n%s", unit, err, w.buf.String())
	}
	return out, nil
}

// pickName returns the first candidate not in reserved, or the first
// candidate with a numeric suffix.
func pickName(reserved map[string]bool, candidates ...string) string {
	for _, c := range candidates {
		if c != "" && !reserved[c] {
			return c
		}
	}
	base := candidates[len(candidates)-1]
	for i := 2; ; i++ {
		name := base + strconv.Itoa(i)
		if !reserved[name] {
			return name
		}
	}
}

func reservedSet(groups ...[]string) map[string]bool {
	out := make(map[string]bool)
	for _, g := range groups {
		for _, n := range g {
			out[n] = true
		}
	}
	return out
}

// Markers renders the marker unit of a package.
func Markers(pkgName string) ([]byte, error) {
	w := &writer{}
	w.buf.WriteString(marker.Source(pkgName))
	return w.format("marker declaration")
}
