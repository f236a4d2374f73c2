// Package enummatch generates exhaustive Match helpers for the enum types a
// program calls Match on.
//
// An enum is a defined, non-generic type with an integer, float or string
// underlying type and at least one package-level constant. Its members are
// those constants in declaration order.
package enummatch

import (
	"go/types"

	"github.com/cockroachdb/errors"

	"github.com/darklink/dlgen/internal/collect"
	"github.com/darklink/dlgen/internal/genkit"
	"github.com/darklink/dlgen/internal/group"
	"github.com/darklink/dlgen/internal/logger"
	"github.com/darklink/dlgen/internal/trace"
)

const unitSuffix = "match"

// Generator is the enum dispatch generator.
type Generator struct{}

func New() *Generator { return &Generator{} }

func (*Generator) Name() string { return "enummatch" }

func (*Generator) Initialize(ctx *genkit.InitContext) {
	ctx.RegisterForSyntaxNotifications(func() genkit.SyntaxReceiver { return &Receiver{} })
}

// Receiver collects x.Match selectors and directive comments.
type Receiver struct {
	Selectors  collect.Accumulator
	Directives collect.Accumulator
}

func (r *Receiver) OnVisitSyntaxNode(n genkit.SyntaxNode) {
	if _, ok := collect.MatchSelector(n.Node); ok {
		r.Selectors.Add(collect.FromSyntax(n))
		return
	}
	if _, ok := collect.DirectiveComment(n.Node); ok {
		r.Directives.Add(collect.FromSyntax(n))
	}
}

func (g *Generator) Execute(ec *genkit.ExecContext) error {
	recv, ok := ec.Receiver.(*Receiver)
	if !ok {
		return errors.AssertionFailedf("enummatch: unexpected receiver %T", ec.Receiver)
	}
	comp := ec.Compilation
	log := logger.Named(g.Name())
	a := &analyzer{ec: ec, comp: comp}

	span, _ := trace.Start(ec.Context(), trace.ScopePass, "enummatch:flags")
	flags := make(map[*types.TypeName]bool)
	for _, c := range recv.Directives.Sorted(comp.Fset) {
		if err := ec.Canceled(); err != nil {
			span.End("canceled")
			return err
		}
		if obj := a.resolveFlags(c); obj != nil {
			flags[obj] = true
		}
	}
	span.Count("flags", len(flags)).End("")

	span, _ = trace.Start(ec.Context(), trace.ScopePass, "enummatch:resolve")
	enums := group.New[*types.TypeName, *types.Const]()
	seen := make(map[*types.TypeName]bool)
	for _, c := range recv.Selectors.Sorted(comp.Fset) {
		if err := ec.Canceled(); err != nil {
			span.End("canceled")
			return err
		}
		named := a.resolveReceiver(c)
		if named == nil || seen[named.Obj()] {
			continue
		}
		seen[named.Obj()] = true
		members := a.members(named)
		if len(members) == 0 {
			continue
		}
		for _, m := range members {
			enums.Add(named.Obj(), m)
		}
	}
	span.Count("enums", enums.Len()).End("")

	for obj, members := range enums.All() {
		if err := ec.Canceled(); err != nil {
			return err
		}
		e := enum{obj: obj, named: obj.Type().(*types.Named), pkg: comp.PackageOf(obj), members: members, flags: flags[obj]}
		if !a.checkNames(e) {
			continue
		}
		unit, err := render(e)
		if err != nil {
			return err
		}
		if err := ec.AddSource(unit); err != nil {
			return err
		}
		log.Debugw("dispatch generated", logger.FieldUnit, unit.Name, logger.FieldCount, len(members))
	}
	return nil
}
