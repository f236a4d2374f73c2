package autonotify_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/darklink/dlgen/internal/autonotify"
	"github.com/darklink/dlgen/internal/diag"
	"github.com/darklink/dlgen/internal/driver"
	"github.com/darklink/dlgen/internal/genkit"
	"github.com/darklink/dlgen/internal/host/hosttest"
)

const demoPath = "example.com/demo"

func generate(t *testing.T, pkgs ...hosttest.Package) *driver.Result {
	t.Helper()
	comp := hosttest.Compile(t, pkgs...)
	res, err := driver.Run(context.Background(), comp, []genkit.Generator{autonotify.New()}, driver.Options{})
	require.NoError(t, err)
	return res
}

func demo(src string) hosttest.Package {
	return hosttest.Package{Path: demoPath, Files: []hosttest.File{{Name: "demo.go", Src: src}}}
}

func unit(t *testing.T, res *driver.Result, name string) genkit.Unit {
	t.Helper()
	for _, u := range res.Units {
		if u.Name == name {
			return u
		}
	}
	t.Fatalf("no unit %s", name)
	return genkit.Unit{}
}

// withUnits adds the generated files of pkg to its sources.
func withUnits(pkg hosttest.Package, res *driver.Result, extra ...hosttest.File) hosttest.Package {
	out := hosttest.Package{Path: pkg.Path, Files: append([]hosttest.File(nil), pkg.Files...)}
	for _, u := range res.Units {
		if u.Package.Path == pkg.Path {
			out.Files = append(out.Files, hosttest.File{Name: u.FileName, Src: string(u.Source)})
		}
	}
	out.Files = append(out.Files, extra...)
	return out
}

func golden(res *driver.Result) string {
	return diag.FormatGoldenDiagnostics(res.Diagnostics.Items(), hosttest.Dir(demoPath), false)
}

const counterSrc = `package demo

import (
	"time"

	"github.com/darklink/dlgen/notify"
)

type Counter struct {
	notify.Notifier

	//dl:AutoNotify
	value int

	//dl:AutoNotify
	first, last string // both names

	//dl:AutoNotify{UsePrivateSetter: true}
	stamp time.Time

	//dl:Unknown
	other int
}
`

func TestGenerate_Accessors(t *testing.T) {
	pkg := demo(counterSrc)
	res := generate(t, pkg)
	require.Empty(t, golden(res))

	require.Len(t, res.Units, 2)
	assert.Equal(t, demoPath+".markers", res.Units[0].Name)

	u := unit(t, res, demoPath+".Counter.notify")
	assert.Equal(t, "counter_notify.go", u.FileName)
	src := string(u.Source)
	assert.True(t, strings.HasPrefix(src, "// Code generated by dlgen. DO NOT EDIT."))
	for _, want := range []string{
		`var _ notify.PropertyChangedNotifier = (*Counter)(nil)`,
		`func (c *Counter) Value() int`,
		`func (c *Counter) SetValue(value int)`,
		`func (c *Counter) First() string`,
		`func (c *Counter) SetFirst(value string)`,
		`func (c *Counter) Last() string`,
		`func (c *Counter) SetLast(value string)`,
		`func (c *Counter) Stamp() time.Time`,
		`func (c *Counter) setStamp(value time.Time)`,
		`c.Notifier.RaisePropertyChanged(c, "Value")`,
		`"time"`,
	} {
		assert.Contains(t, src, want)
	}
	assert.NotContains(t, src, "SetStamp")
	assert.NotContains(t, src, "Other")

	// Fields keep declaration order.
	assert.Less(t, strings.Index(src, "Value()"), strings.Index(src, "First()"))
	assert.Less(t, strings.Index(src, "First()"), strings.Index(src, "Last()"))
	assert.Less(t, strings.Index(src, "Last()"), strings.Index(src, "Stamp()"))

	use := hosttest.File{Name: "use.go", Src: `package demo

func use() {
	var c Counter
	c.SetValue(c.Value() + 1)
	c.SetFirst(c.Last())
	c.setStamp(c.Stamp())
}
`}
	assert.Empty(t, hosttest.TypeCheck(withUnits(pkg, res, use)))
}

func TestGenerate_GenericOwner(t *testing.T) {
	pkg := demo(`package demo

import "github.com/darklink/dlgen/notify"

type Box[T comparable] struct {
	*notify.Notifier

	//dl:AutoNotify
	item T
}
`)
	res := generate(t, pkg)
	require.Empty(t, golden(res))

	src := string(unit(t, res, demoPath+".Box.notify").Source)
	assert.Contains(t, src, "func (b *Box[T]) Item() T")
	assert.Contains(t, src, "func (b *Box[T]) SetItem(value T)")
	assert.NotContains(t, src, "var _")

	use := hosttest.File{Name: "use.go", Src: `package demo

import "github.com/darklink/dlgen/notify"

func use() string {
	b := &Box[string]{Notifier: &notify.Notifier{}}
	b.SetItem("x")
	return b.Item()
}
`}
	assert.Empty(t, hosttest.TypeCheck(withUnits(pkg, res, use)))
}

func TestGenerate_Diagnostics(t *testing.T) {
	res := generate(t, demo(`package demo

import "github.com/darklink/dlgen/notify"

//dl:AutoNotify
var loose int

type Alias = struct {
	notify.Notifier
	//dl:AutoNotify
	a int
}

type Plain struct {
	//dl:AutoNotify
	b int
}

type Model struct {
	notify.Notifier

	//dl:AutoNotify
	_ int

	//dl:AutoNotify
	items []string

	//dl:AutoNotify
	name string

	//dl:AutoNotify{UsePrivateSetter: flag}
	size int

	//dl:AutoNotify
	Count int
}

var flag = true

func (m *Model) Name() string { return m.name }

func local() {
	type Inner struct {
		notify.Notifier
		//dl:AutoNotify
		c int
	}
	_ = Inner{}
}
`))

	want := strings.Join([]string{
		"error DL.AN01 demo.go:5:1 AutoNotify must be attached to a field of a struct type declaration",
		"error DL.AN02 demo.go:10:2 Alias is an alias; methods can only be generated for defined types",
		"error DL.AN02 demo.go:15:2 Plain does not embed notify.Notifier",
		"error DL.AN03 demo.go:22:2 blank field cannot be read or assigned",
		"error DL.AN04 demo.go:25:2 field items has type []string, which is not comparable",
		"error DL.AN05 demo.go:28:2 Model already has a member named Name",
		"error DL.AN06 demo.go:31:2 marker option UsePrivateSetter must be a constant",
		"error DL.AN05 demo.go:34:2 Model already has a member named Count",
		"error DL.AN02 demo.go:45:3 Inner is declared inside a function; methods can only be generated for package-level types",
	}, "\n")
	assert.Equal(t, want, golden(res))

	// Every candidate failed, so only the marker unit remains.
	require.Len(t, res.Units, 1)
	assert.Equal(t, demoPath+".markers", res.Units[0].Name)
}

func TestGenerate_CollisionNotes(t *testing.T) {
	res := generate(t, demo(`package demo

import "github.com/darklink/dlgen/notify"

type Model struct {
	notify.Notifier

	//dl:AutoNotify
	name string
}

func (m *Model) Name() string { return m.name }
`))
	got := diag.FormatGoldenDiagnostics(res.Diagnostics.Items(), hosttest.Dir(demoPath), true)
	assert.Equal(t, strings.Join([]string{
		"error DL.AN05 demo.go:8:2 Model already has a member named Name",
		"note DL.AN05 demo.go:12:17 declared here",
	}, "\n"), got)
}

func TestGenerate_AccessorClaimedTwice(t *testing.T) {
	res := generate(t, demo(`package demo

import "github.com/darklink/dlgen/notify"

type Model struct {
	notify.Notifier

	//dl:AutoNotify
	value int

	//dl:AutoNotify
	setValue int
}
`))
	assert.Equal(t, "error DL.AN05 demo.go:11:2 accessor SetValue is already generated for Model", golden(res))
	src := string(unit(t, res, demoPath+".Model.notify").Source)
	assert.Contains(t, src, "func (m *Model) SetValue(value int)")
	assert.NotContains(t, src, "SetSetValue")
}

func TestGenerate_PrivateSetterCollidesWithField(t *testing.T) {
	res := generate(t, demo(`package demo

import "github.com/darklink/dlgen/notify"

type Model struct {
	notify.Notifier

	//dl:AutoNotify{UsePrivateSetter: true}
	value int

	setValue func(int)
}
`))
	assert.Equal(t, "error DL.AN05 demo.go:8:2 Model already has a member named setValue", golden(res))
}

func TestGenerate_ShadowedMarkerIsIgnored(t *testing.T) {
	res := generate(t, demo(`package demo

import "github.com/darklink/dlgen/notify"

type AutoNotify struct{}

type Model struct {
	notify.Notifier

	//dl:AutoNotify
	value int
}
`))
	assert.Empty(t, golden(res))
	for _, u := range res.Units {
		assert.NotEqual(t, demoPath+".Model.notify", u.Name)
	}
}

func TestGenerate_QualifiedMarker(t *testing.T) {
	other := hosttest.Package{Path: "example.com/other", Files: []hosttest.File{{Name: "other.go", Src: "package other\n"}}}
	res := generate(t, other, demo(`package demo

import (
	"example.com/other"
	"github.com/darklink/dlgen/notify"
)

var _ other.AutoNotify

type Model struct {
	notify.Notifier

	//dl:other.AutoNotify
	value int
}
`))
	assert.Empty(t, golden(res))
	u := unit(t, res, demoPath+".Model.notify")
	assert.Equal(t, demoPath, u.Package.Path)
}

func TestGenerate_FieldTypeImports(t *testing.T) {
	pkg := demo(`package demo

import (
	stdtime "time"

	"github.com/darklink/dlgen/notify"
)

type time struct{}

type Event struct {
	notify.Notifier

	//dl:AutoNotify
	at stdtime.Time

	//dl:AutoNotify
	local time
}
`)
	res := generate(t, pkg)
	require.Empty(t, golden(res))
	src := string(unit(t, res, demoPath+".Event.notify").Source)
	assert.Contains(t, src, `time2 "time"`)
	assert.Contains(t, src, "func (e *Event) At() time2.Time")
	assert.Contains(t, src, "func (e *Event) Local() time")
	assert.Empty(t, hosttest.TypeCheck(withUnits(pkg, res)))
}

func TestGenerate_Canceled(t *testing.T) {
	comp := hosttest.Compile(t, demo(counterSrc))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := driver.Run(ctx, comp, []genkit.Generator{autonotify.New()}, driver.Options{})
	require.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, res)
}

func TestGenerate_FreshStatePerRun(t *testing.T) {
	comp := hosttest.Compile(t, demo(counterSrc))
	gen := autonotify.New()
	first, err := driver.Run(context.Background(), comp, []genkit.Generator{gen}, driver.Options{})
	require.NoError(t, err)
	second, err := driver.Run(context.Background(), comp, []genkit.Generator{gen}, driver.Options{})
	require.NoError(t, err)

	require.Len(t, second.Units, len(first.Units))
	for i := range first.Units {
		assert.Equal(t, first.Units[i].Name, second.Units[i].Name)
		assert.Equal(t, string(first.Units[i].Source), string(second.Units[i].Source))
		assert.Equal(t, first.Units[i].FileName, second.Units[i].FileName)
	}
}

func TestGenerate_AliasEmbeddedNotifier(t *testing.T) {
	pkg := demo(`package demo

import "github.com/darklink/dlgen/notify"

type N = notify.Notifier

type Model struct {
	N

	//dl:AutoNotify
	value int
}
`)
	res := generate(t, pkg)
	require.Empty(t, res.Diagnostics.Items())

	src := string(unit(t, res, demoPath+".Model.notify").Source)
	assert.Contains(t, src, `m.N.RaisePropertyChanged(m, "Value")`)
	assert.NotContains(t, src, "m.Notifier")
	assert.Empty(t, hosttest.TypeCheck(withUnits(pkg, res)))
}

func TestGenerate_InterfaceFieldsAreNotComparable(t *testing.T) {
	res := generate(t, demo(`package demo

import "github.com/darklink/dlgen/notify"

type Pair struct {
	Key   string
	Value any
}

type Model struct {
	notify.Notifier

	//dl:AutoNotify
	value any

	//dl:AutoNotify
	pair Pair

	//dl:AutoNotify
	pairs [2]Pair

	//dl:AutoNotify
	key string
}
`))
	items := res.Diagnostics.Items()
	require.Len(t, items, 3)
	for i, field := range []string{"value", "pair", "pairs"} {
		assert.Equal(t, diag.AnFieldNotComparable, items[i].Code)
		assert.Contains(t, items[i].Message, "field "+field+" has type")
		assert.Contains(t, items[i].Message, "may not be comparable")
	}

	src := string(unit(t, res, demoPath+".Model.notify").Source)
	assert.Contains(t, src, "func (m *Model) SetKey(")
	assert.NotContains(t, src, "SetValue")
}
