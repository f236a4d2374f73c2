// Package driver runs generators over a compilation: it adds the marker
// units, delivers syntax to the generators' receivers, executes the generators
// and gathers their units and diagnostics.
package driver

import (
	"context"
	"fmt"
	"go/token"
	"go/types"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/darklink/dlgen/internal/diag"
	"github.com/darklink/dlgen/internal/emit"
	"github.com/darklink/dlgen/internal/genkit"
	"github.com/darklink/dlgen/internal/host"
	"github.com/darklink/dlgen/internal/logger"
	"github.com/darklink/dlgen/internal/marker"
	"github.com/darklink/dlgen/internal/observ"
	"github.com/darklink/dlgen/internal/trace"
)

// Result is the outcome of a run.
type Result struct {
	// Units are ordered by emission: marker units first, then the units of
	// each generator in the order it added them.
	Units       []genkit.Unit
	Diagnostics *diag.Bag
	Timings     observ.Report
}

// HasErrors reports whether the run produced error diagnostics.
func (r *Result) HasErrors() bool {
	return r != nil && r.Diagnostics != nil && r.Diagnostics.HasErrors()
}

type genRun struct {
	gen  genkit.Generator
	recv genkit.SyntaxReceiver
}

// Run executes gens over comp. Every call starts from fresh generator state.
// A canceled context aborts the run and no units are returned.
func Run(ctx context.Context, comp *host.Compilation, gens []genkit.Generator, opts Options) (*Result, error) {
	if comp == nil {
		return nil, errors.AssertionFailedf("driver.Run: nil compilation")
	}
	if opts.EmitMarkers == "" {
		opts.EmitMarkers = MarkersAlways
	}
	sink := opts.progress()
	log := logger.Named("driver")
	timer := observ.NewTimer()
	runSpan, ctx := trace.Start(ctx, trace.ScopeDriver, "run")
	defer runSpan.End("")

	runs := make([]genRun, 0, len(gens))
	var receivers []genkit.SyntaxReceiver
	names := make(map[string]bool, len(gens))
	for _, g := range gens {
		if names[g.Name()] {
			return nil, errors.AssertionFailedf("generator %s registered twice", g.Name())
		}
		names[g.Name()] = true
		ic := &genkit.InitContext{}
		g.Initialize(ic)
		r := genRun{gen: g, recv: ic.NewReceiver()}
		if r.recv != nil {
			receivers = append(receivers, r.recv)
		}
		runs = append(runs, r)
	}

	done := timer.Track("collect")
	span, cctx := trace.Start(ctx, trace.ScopePass, "collect")
	directives, err := collect(cctx, comp, receivers, opts.Jobs, sink)
	span.End("")
	if err != nil {
		done("canceled")
		return nil, errors.Wrap(err, "collect")
	}
	done("")

	bag := diag.NewBag(opts.MaxDiagnostics)
	reporter := diag.NewDedupReporter(diag.BagReporter{Bag: bag})
	units := newUnitSet()

	for _, pkg := range comp.Packages {
		if !wantMarkers(opts.EmitMarkers, directives[pkg]) {
			continue
		}
		if shadowed := pkg.ShadowedMarkers(); len(shadowed) > 0 {
			reportShadowed(comp, reporter, pkg, shadowed)
			log.Debugw("marker unit skipped", logger.FieldPackage, pkg.Path)
			continue
		}
		src, err := emit.Markers(pkg.Name)
		if err != nil {
			return nil, err
		}
		if err := units.add(genkit.Unit{
			Name:     genkit.UnitName(pkg.Path, "", "markers"),
			Package:  pkg,
			FileName: marker.FileName,
			Source:   src,
		}); err != nil {
			return nil, err
		}
	}

	for _, r := range runs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		done := timer.Track("analyze:" + r.gen.Name())
		start := time.Now()
		sink.OnEvent(Event{Stage: StageAnalyze, Status: StatusWorking})
		span, gctx := trace.Start(ctx, trace.ScopePass, r.gen.Name())
		before := len(units.list)
		ec := genkit.NewExecContext(gctx, comp, r.recv, reporter, units.add)
		err := r.gen.Execute(ec)
		span.End("")
		done(strconv.Itoa(len(units.list)-before) + " units")
		if err != nil {
			sink.OnEvent(Event{Stage: StageAnalyze, Status: StatusError, Err: err, Elapsed: time.Since(start)})
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			return nil, errors.Wrapf(err, "generator %s", r.gen.Name())
		}
		log.Debugw("generator finished", logger.FieldGenerator, r.gen.Name(), logger.FieldCount, len(units.list)-before,
			logger.FieldDuration, time.Since(start))
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sink.OnEvent(Event{Stage: StageAnalyze, Status: StatusDone})

	units.assignFileNames(comp)
	for _, u := range units.list {
		sink.OnEvent(Event{Package: u.Package.Path, Stage: StageEmit, Status: StatusDone})
	}
	bag.Dedup()
	bag.Sort()
	return &Result{Units: units.list, Diagnostics: bag, Timings: timer.Report()}, nil
}

func reportShadowed(comp *host.Compilation, r diag.Reporter, pkg *host.Package, shadowed []types.Object) {
	for _, obj := range shadowed {
		pos := obj.Pos()
		span := comp.Span(pos, pos+token.Pos(len(obj.Name())))
		msg := fmt.Sprintf("package %s declares %s itself; %s is not written and //dl:%s is not recognised here",
			pkg.Name, obj.Name(), marker.FileName, obj.Name())
		diag.Report(r, diag.MkMarkerShadowed, span, msg).Emit()
	}
}

func wantMarkers(mode EmitMarkers, directives int) bool {
	switch mode {
	case MarkersNever:
		return false
	case MarkersUsed:
		return directives > 0
	default:
		return true
	}
}

type unitSet struct {
	list  []genkit.Unit
	names map[string]bool
}

func newUnitSet() *unitSet {
	return &unitSet{names: make(map[string]bool)}
}

func (s *unitSet) add(u genkit.Unit) error {
	if u.Package == nil {
		return errors.AssertionFailedf("unit %s has no package", u.Name)
	}
	if u.Name == "" || u.FileName == "" {
		return errors.AssertionFailedf("unit %q has no name or file name", u.Name)
	}
	if s.names[u.Name] {
		return errors.AssertionFailedf("unit %s added twice", u.Name)
	}
	s.names[u.Name] = true
	s.list = append(s.list, u)
	return nil
}

// assignFileNames makes file names unique per package directory, never
// reusing the name of a user file. Later units get numeric suffixes. Units
// that only compile with the package's tests get a _test.go name.
func (s *unitSet) assignFileNames(comp *host.Compilation) {
	// An external test package shares its directory with the package it tests.
	taken := make(map[string]map[string]bool)
	for _, pkg := range comp.Packages {
		set, ok := taken[pkg.Dir]
		if !ok {
			set = make(map[string]bool)
			taken[pkg.Dir] = set
		}
		for _, name := range pkg.FileNames {
			set[filepath.Base(name)] = true
		}
	}
	for i := range s.list {
		u := &s.list[i]
		set, ok := taken[u.Package.Dir]
		if !ok {
			set = make(map[string]bool)
			taken[u.Package.Dir] = set
		}
		ext := ".go"
		if testOnly(comp.Fset, u) {
			ext = "_test.go"
		}
		stem := strings.TrimSuffix(strings.TrimSuffix(u.FileName, ".go"), "_test")
		name := stem + ext
		for n := 2; set[name]; n++ {
			name = stem + "_" + strconv.Itoa(n) + ext
		}
		set[name] = true
		u.FileName = name
	}
}

// testOnly reports whether u belongs to a package made of test files only,
// such as an external test package, or extends a declaration made in a
// _test.go file.
func testOnly(fset *token.FileSet, u *genkit.Unit) bool {
	if u.Owner != nil && u.Owner.Pos().IsValid() {
		if isTestFile(fset.Position(u.Owner.Pos()).Filename) {
			return true
		}
	}
	for _, name := range u.Package.FileNames {
		if !isTestFile(name) {
			return false
		}
	}
	return len(u.Package.FileNames) > 0
}

func isTestFile(name string) bool {
	return strings.HasSuffix(name, "_test.go")
}
