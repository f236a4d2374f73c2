package genkit

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/darklink/dlgen/internal/diag"
)

func TestSnakeCase(t *testing.T) {
	cases := map[string]string{
		"Counter":         "counter",
		"HTTPServer":      "http_server",
		"userID":          "user_id",
		"Box":             "box",
		"Already_Snake":   "already_snake",
		"ÉtatMachine":     "état_machine",
		"HTTPSConnection": "https_connection",
	}
	for in, want := range cases {
		assert.Equal(t, want, SnakeCase(in), in)
	}
}

func TestCapitalize(t *testing.T) {
	assert.Equal(t, "Value", Capitalize("value"))
	assert.Equal(t, "Value", Capitalize("Value"))
	assert.Equal(t, "_value", Capitalize("_value"))
	assert.Equal(t, "Émoji", Capitalize("émoji"))
	assert.Equal(t, "", Capitalize(""))
}

func TestUnitNames(t *testing.T) {
	assert.Equal(t, "example.com/demo.Counter.notify", UnitName("example.com/demo", "Counter", "notify"))
	assert.Equal(t, "example.com/demo.markers", UnitName("example.com/demo", "", "markers"))
	assert.Equal(t, "http_server_match.go", UnitFileName("HTTPServer", "match"))
}

type countingReceiver struct{ n int }

func (r *countingReceiver) OnVisitSyntaxNode(SyntaxNode) { r.n++ }

func TestInitContext_FactoryPerRun(t *testing.T) {
	var ic InitContext
	assert.Nil(t, ic.NewReceiver())

	ic.RegisterForSyntaxNotifications(func() SyntaxReceiver { return &countingReceiver{} })
	first := ic.NewReceiver().(*countingReceiver)
	first.OnVisitSyntaxNode(SyntaxNode{})
	second := ic.NewReceiver().(*countingReceiver)
	assert.NotSame(t, first, second)
	assert.Equal(t, 0, second.n)
}

func TestExecContext(t *testing.T) {
	bag := diag.NewBag(0)
	var units []Unit
	ctx, cancel := context.WithCancel(context.Background())
	ec := NewExecContext(ctx, nil, nil, diag.BagReporter{Bag: bag}, func(u Unit) error {
		units = append(units, u)
		return nil
	})

	require.NoError(t, ec.AddSource(Unit{Name: "a"}))
	ec.ReportDiagnostic(diag.Of(diag.AnNotOnField, diag.Span{}, "x"))
	assert.Len(t, units, 1)
	assert.Equal(t, 1, bag.Len())
	assert.NoError(t, ec.Canceled())

	cancel()
	assert.ErrorIs(t, ec.Canceled(), context.Canceled)
}
