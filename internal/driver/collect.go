package driver

import (
	"context"
	"go/ast"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/tools/go/ast/inspector"

	"github.com/darklink/dlgen/internal/genkit"
	"github.com/darklink/dlgen/internal/host"
	"github.com/darklink/dlgen/internal/marker"
	"github.com/darklink/dlgen/internal/trace"
)

type fileJob struct {
	pkg  *host.Package
	file *ast.File
}

// collect delivers every node of every user file to the receivers. Files are
// walked in parallel; each receiver sees the nodes of one file in source
// order. It returns the number of dl directives found per package.
func collect(ctx context.Context, comp *host.Compilation, receivers []genkit.SyntaxReceiver, jobs int, sink ProgressSink) (map[*host.Package]int, error) {
	var work []fileJob
	for _, pkg := range comp.Packages {
		for _, f := range pkg.Files {
			work = append(work, fileJob{pkg: pkg, file: f})
		}
	}
	directives := make([]atomic.Int64, len(comp.Packages))
	index := make(map[*host.Package]int, len(comp.Packages))
	for i, pkg := range comp.Packages {
		index[pkg] = i
		sink.OnEvent(Event{Package: pkg.Path, Stage: StageCollect, Status: StatusQueued})
	}
	if len(work) == 0 || len(receivers) == 0 {
		return counts(comp, directives), nil
	}

	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(work)))
	for _, job := range work {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			start := time.Now()
			n := walkFile(job, receivers)
			directives[index[job.pkg]].Add(int64(n))
			sink.OnEvent(Event{Package: job.pkg.Path, Stage: StageCollect, Status: StatusWorking, Elapsed: time.Since(start)})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	for i, pkg := range comp.Packages {
		trace.Point(ctx, trace.ScopePackage, pkg.Path, strconv.FormatInt(directives[i].Load(), 10)+" directives")
		sink.OnEvent(Event{Package: pkg.Path, Stage: StageCollect, Status: StatusDone})
	}
	return counts(comp, directives), nil
}

func counts(comp *host.Compilation, directives []atomic.Int64) map[*host.Package]int {
	out := make(map[*host.Package]int, len(comp.Packages))
	for i, pkg := range comp.Packages {
		out[pkg] = int(directives[i].Load())
	}
	return out
}

// walkFile visits the syntax tree of one file, then the comments the tree
// does not reach (those inside function bodies, between declarations, ...).
func walkFile(job fileJob, receivers []genkit.SyntaxReceiver) int {
	seen := make(map[*ast.Comment]bool)
	directives := 0
	deliver := func(n ast.Node, stack []ast.Node) {
		if c, ok := n.(*ast.Comment); ok {
			seen[c] = true
			if marker.IsDirective(c.Text) {
				directives++
			}
		}
		node := genkit.SyntaxNode{Node: n, Stack: stack, File: job.file, Package: job.pkg}
		for _, r := range receivers {
			r.OnVisitSyntaxNode(node)
		}
	}

	in := inspector.New([]*ast.File{job.file})
	in.WithStack(nil, func(n ast.Node, push bool, stack []ast.Node) bool {
		if push {
			deliver(n, stack)
		}
		return true
	})

	for _, cg := range job.file.Comments {
		for _, c := range cg.List {
			if seen[c] {
				continue
			}
			deliver(c, []ast.Node{job.file, cg, c})
		}
	}
	return directives
}
