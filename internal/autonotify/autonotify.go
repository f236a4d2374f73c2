// Package autonotify generates change-notification accessors for struct fields
// marked with //dl:AutoNotify.
package autonotify

import (
	"go/types"

	"github.com/cockroachdb/errors"

	"github.com/darklink/dlgen/internal/collect"
	"github.com/darklink/dlgen/internal/genkit"
	"github.com/darklink/dlgen/internal/group"
	"github.com/darklink/dlgen/internal/logger"
	"github.com/darklink/dlgen/internal/trace"
)

// NotifyPath is the import path of the runtime package generated code uses.
const NotifyPath = "github.com/darklink/dlgen/notify"

const unitSuffix = "notify"

// Generator is the AutoNotify generator.
type Generator struct{}

func New() *Generator { return &Generator{} }

func (*Generator) Name() string { return "autonotify" }

func (*Generator) Initialize(ctx *genkit.InitContext) {
	ctx.RegisterForSyntaxNotifications(func() genkit.SyntaxReceiver { return &Receiver{} })
}

// Receiver collects directive comments. It has no idea which directives are
// AutoNotify markers.
type Receiver struct {
	collect.Accumulator
}

func (r *Receiver) OnVisitSyntaxNode(n genkit.SyntaxNode) {
	if _, ok := collect.DirectiveComment(n.Node); ok {
		r.Add(collect.FromSyntax(n))
	}
}

func (g *Generator) Execute(ec *genkit.ExecContext) error {
	recv, ok := ec.Receiver.(*Receiver)
	if !ok {
		return errors.AssertionFailedf("autonotify: unexpected receiver %T", ec.Receiver)
	}
	comp := ec.Compilation
	log := logger.Named(g.Name())

	span, _ := trace.Start(ec.Context(), trace.ScopePass, "autonotify:resolve")
	owners := group.New[*types.TypeName, property]()
	classes := make(map[*types.TypeName]*owner)
	a := &analyzer{ec: ec, comp: comp, generated: make(map[*types.TypeName]map[string]bool)}

	candidates := recv.Sorted(comp.Fset)
	for _, c := range candidates {
		if err := ec.Canceled(); err != nil {
			span.End("canceled")
			return err
		}
		target, ok := a.resolve(c)
		if !ok {
			continue
		}
		props, own, ok := a.validate(target)
		if !ok {
			continue
		}
		if _, seen := classes[own.obj]; !seen {
			classes[own.obj] = own
		}
		for _, p := range props {
			owners.Add(own.obj, p)
		}
	}
	span.Count("candidates", len(candidates)).Count("owners", owners.Len()).End("")

	for obj, props := range owners.All() {
		if err := ec.Canceled(); err != nil {
			return err
		}
		unit, err := render(classes[obj], props)
		if err != nil {
			return err
		}
		if err := ec.AddSource(unit); err != nil {
			return err
		}
		log.Debugw("accessors generated", logger.FieldUnit, unit.Name, logger.FieldCount, len(props))
	}
	return nil
}
