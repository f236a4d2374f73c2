// Package genkit is the contract between the driver and the generators.
//
// A generator runs in two phases. During collection the driver hands every
// syntax node of every user file to the generator's SyntaxReceiver; receivers
// only filter syntactically and must never fail. After collection completes,
// Execute runs once with the whole compilation and the filled receiver.
package genkit

import (
	"context"
	"go/ast"

	"github.com/darklink/dlgen/internal/diag"
	"github.com/darklink/dlgen/internal/host"
	"github.com/darklink/dlgen/internal/trace"
)

// Generator produces generated units from a compilation.
type Generator interface {
	Name() string
	Initialize(ctx *InitContext)
	Execute(ctx *ExecContext) error
}

// SyntaxNode is one node delivered during collection. Stack holds the path
// from the file down to Node, Node included; it is reused after the call
// returns, so receivers keeping it must copy it.
type SyntaxNode struct {
	Node    ast.Node
	Stack   []ast.Node
	File    *ast.File
	Package *host.Package
}

// SyntaxReceiver is notified of every syntax node of a run. Calls may come
// from several goroutines at once, one file per goroutine.
type SyntaxReceiver interface {
	OnVisitSyntaxNode(node SyntaxNode)
}

// InitContext is handed to Generator.Initialize at the start of every run.
type InitContext struct {
	newReceiver func() SyntaxReceiver
}

// RegisterForSyntaxNotifications registers a receiver factory. The factory is
// called once per run, so receiver state never outlives a run.
func (c *InitContext) RegisterForSyntaxNotifications(factory func() SyntaxReceiver) {
	c.newReceiver = factory
}

// NewReceiver creates the run's receiver, or returns nil when the generator
// did not register one.
func (c *InitContext) NewReceiver() SyntaxReceiver {
	if c == nil || c.newReceiver == nil {
		return nil
	}
	return c.newReceiver()
}

// ExecContext is handed to Generator.Execute.
type ExecContext struct {
	ctx         context.Context
	Compilation *host.Compilation
	Receiver    SyntaxReceiver

	reporter diag.Reporter
	add      func(Unit) error
}

// NewExecContext binds an execution context to its sinks.
func NewExecContext(ctx context.Context, comp *host.Compilation, recv SyntaxReceiver, reporter diag.Reporter, add func(Unit) error) *ExecContext {
	if reporter == nil {
		reporter = diag.NopReporter{}
	}
	return &ExecContext{ctx: ctx, Compilation: comp, Receiver: recv, reporter: reporter, add: add}
}

func (c *ExecContext) Context() context.Context {
	if c.ctx == nil {
		return context.Background()
	}
	return c.ctx
}

// Canceled returns the context error once the run was canceled. Generators
// check it between resolutions.
func (c *ExecContext) Canceled() error {
	return c.Context().Err()
}

func (c *ExecContext) Tracer() trace.Tracer {
	return trace.FromContext(c.Context())
}

// Reporter exposes the diagnostic sink for diag.ReportBuilder.
func (c *ExecContext) Reporter() diag.Reporter {
	return c.reporter
}

func (c *ExecContext) ReportDiagnostic(d diag.Diagnostic) {
	c.reporter.Report(d)
}

// AddSource registers a generated unit. Unit names must be unique in a run.
func (c *ExecContext) AddSource(u Unit) error {
	if c.add == nil {
		return nil
	}
	return c.add(u)
}
