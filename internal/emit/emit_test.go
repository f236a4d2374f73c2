package emit

import (
	"strings"
	"testing"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/darklink/dlgen/internal/host/hosttest"
	"github.com/darklink/dlgen/internal/marker"
)

func requireGolden(t *testing.T, want, got string) {
	t.Helper()
	if want == got {
		return
	}
	diff, _ := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(want),
		B:        difflib.SplitLines(got),
		FromFile: "want",
		ToFile:   "got",
		Context:  3,
	})
	t.Fatalf("output mismatch:\n%s", diff)
}

func requireCompiles(t *testing.T, pkgs ...hosttest.Package) {
	t.Helper()
	errs := hosttest.TypeCheck(pkgs...)
	require.Empty(t, errs)
}

const counterSrc = `package demo

import "github.com/darklink/dlgen/notify"

type Counter struct {
	notify.Notifier

	//dl:AutoNotify
	value int
	//dl:AutoNotify{UsePrivateSetter: true}
	label string
}
`

const counterWant = marker.GeneratedHeader + `

package demo

import "github.com/darklink/dlgen/notify"

var _ notify.PropertyChangedNotifier = (*Counter)(nil)

// Value returns the value field.
func (c *Counter) Value() int {
	return c.value
}

// SetValue assigns the value field and raises PropertyChanged for "Value" when the value changes.
func (c *Counter) SetValue(value int) {
	if c.value == value {
		return
	}
	c.value = value
	c.Notifier.RaisePropertyChanged(c, "Value")
}

// Label returns the label field.
func (c *Counter) Label() string {
	return c.label
}

// setLabel assigns the label field and raises PropertyChanged for "Label" when the value changes.
func (c *Counter) setLabel(value string) {
	if c.label == value {
		return
	}
	c.label = value
	c.Notifier.RaisePropertyChanged(c, "Label")
}
`

func TestNotify_Golden(t *testing.T) {
	im := NewImports("example.com/demo", nil)
	notifier := im.Add(hosttest.NotifyPath, "notify") + ".PropertyChangedNotifier"

	out, err := Notify(NotifyClass{
		PkgName:  "demo",
		TypeName: "Counter",
		Fields: []NotifyField{
			{Name: "value", Type: "int"},
			{Name: "label", Type: "string", PrivateSetter: true},
		},
		Notifier: notifier,
		Imports:  im,
	})
	require.NoError(t, err)
	requireGolden(t, counterWant, string(out))

	requireCompiles(t, hosttest.Package{Path: "example.com/demo", Files: []hosttest.File{
		{Name: "model.go", Src: counterSrc},
		{Name: "counter_notify.go", Src: string(out)},
	}})
}

func TestNotify_GenericReceiverAndNameClashes(t *testing.T) {
	im := NewImports("example.com/demo", func(name string) bool { return name == "time" })
	dur := im.Add("time", "time") + ".Duration"
	assert.Equal(t, "time2.Duration", dur)

	out, err := Notify(NotifyClass{
		PkgName:    "demo",
		TypeName:   "Box",
		TypeParams: []string{"value", "b"},
		Fields: []NotifyField{
			{Name: "item", Type: "value"},
			{Name: "ttl", Type: dur},
		},
		Notifier: "notify.PropertyChangedNotifier",
		Imports:  im,
	})
	require.NoError(t, err)
	src := string(out)

	assert.Contains(t, src, `time2 "time"`)
	assert.NotContains(t, src, "var _ notify.PropertyChangedNotifier")
	assert.Contains(t, src, "func (r *Box[value, b]) Item() value {")
	assert.Contains(t, src, "func (r *Box[value, b]) SetItem(v value) {")
	assert.Contains(t, src, "func (r *Box[value, b]) SetTtl(v time2.Duration) {")

	requireCompiles(t, hosttest.Package{Path: "example.com/demo", Files: []hosttest.File{
		{Name: "model.go", Src: `package demo

import (
	stdtime "time"

	"github.com/darklink/dlgen/notify"
)

type Box[value comparable, b comparable] struct {
	notify.Notifier
	item value
	ttl  stdtime.Duration
	key  b
}
`},
		{Name: "other.go", Src: "package demo\n\ntype time struct{}\n"},
		{Name: "box_notify.go", Src: src},
	}})
}

const colorWant = marker.GeneratedHeader + `

package demo

import "fmt"

// Match calls the callback of the member v equals. It panics when v is not a
// declared Color.
func (v Color) Match(onRed func(), onGreen func()) {
	switch v {
	case Red:
		onRed()
	case Green:
		onGreen()
	default:
		panic(fmt.Sprintf("demo.Color: unsupported value %v", int(v)))
	}
}

// MatchColor returns the result of the callback of the member v equals. It panics
// when v is not a declared Color.
func MatchColor[R any](v Color, onRed func() R, onGreen func() R) R {
	switch v {
	case Red:
		return onRed()
	case Green:
		return onGreen()
	default:
		panic(fmt.Sprintf("demo.Color: unsupported value %v", int(v)))
	}
}
`

func TestMatch_Golden(t *testing.T) {
	im := NewImports("example.com/demo", nil)
	out, err := Match(MatchEnum{
		PkgName:    "demo",
		TypeName:   "Color",
		Underlying: "int",
		Members:    []string{"Red", "Green"},
		FuncName:   "MatchColor",
		Fmt:        im.Add("fmt", "fmt"),
		Imports:    im,
	})
	require.NoError(t, err)
	requireGolden(t, colorWant, string(out))
}

func TestMatch_FlagsAndShadowing(t *testing.T) {
	im := NewImports("example.com/demo", nil)
	out, err := Match(MatchEnum{
		PkgName:    "demo",
		TypeName:   "Perm",
		Underlying: "uint8",
		Members:    []string{"v", "R", "onV", "flag"},
		FuncName:   "MatchPerm",
		IsFlags:    true,
		Fmt:        im.Add("fmt", "fmt"),
		Imports:    im,
	})
	require.NoError(t, err)
	src := string(out)

	assert.Contains(t, src, "func (val Perm) Match(onV2 func(), onR func(), onOnV func(), onFlag func()) {")
	assert.Contains(t, src, "func MatchPerm[Result any](val Perm, onV2 func() Result,")
	assert.Contains(t, src, "func (val Perm) Has(f Perm) bool {")
	assert.Contains(t, src, "return val&f == f")

	requireCompiles(t, hosttest.Package{Path: "example.com/demo", Files: []hosttest.File{
		{Name: "perm.go", Src: `package demo

type Perm uint8

const (
	v    Perm = 1 << iota
	R
	onV
	flag
)
`},
		{Name: "perm_match.go", Src: src},
	}})
}

func TestMatch_StringEnumQuotesValue(t *testing.T) {
	im := NewImports("example.com/demo", nil)
	out, err := Match(MatchEnum{
		PkgName:    "demo",
		TypeName:   "Mode",
		Underlying: "string",
		Members:    []string{"Fast"},
		FuncName:   "matchMode",
		Fmt:        im.Add("fmt", "fmt"),
		Imports:    im,
	})
	require.NoError(t, err)
	assert.Contains(t, string(out), `panic(fmt.Sprintf("demo.Mode: unsupported value %q", string(v)))`)
	assert.NotContains(t, string(out), "Has(")
}

func TestMatchParams(t *testing.T) {
	assert.Equal(t, []string{"onRed", "onRed2", "onX"}, MatchParams([]string{"Red", "red", "_x"}))
}

func TestImports(t *testing.T) {
	im := NewImports("example.com/demo", nil)
	assert.Equal(t, "", im.Add("example.com/demo", "demo"))
	assert.Equal(t, "yaml", im.Add("gopkg.in/yaml.v3", "yaml"))
	assert.Equal(t, "yaml2", im.Add("example.com/other/yaml", "yaml"))
	assert.Equal(t, "yaml", im.Add("gopkg.in/yaml.v3", "yaml"))

	assert.Equal(t, []Import{
		{Name: "yaml2", Path: "example.com/other/yaml"},
		{Name: "yaml", Path: "gopkg.in/yaml.v3"},
	}, im.List())
	assert.Equal(t, []string{"yaml", "yaml2"}, im.Names())
}

func TestMarkers(t *testing.T) {
	out, err := Markers("demo")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(out), marker.GeneratedHeader))
	requireCompiles(t, hosttest.Package{Path: "example.com/demo", Files: []hosttest.File{{Name: marker.FileName, Src: string(out)}}})
}
