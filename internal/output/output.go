// Package output moves generated units between memory and disk.
package output

import (
	"bytes"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	"golang.org/x/sync/errgroup"

	"github.com/darklink/dlgen/internal/genkit"
	"github.com/darklink/dlgen/internal/host"
)

// Options configures Write.
type Options struct {
	// Prune removes dlgen files in Dirs that no unit produced.
	Prune bool
	// Dirs are the package directories of the run.
	Dirs []string
	// Jobs bounds the parallel writes; zero means GOMAXPROCS.
	Jobs int
}

// Report lists what Write did, by absolute path.
type Report struct {
	Written   []string
	Unchanged []string
	Removed   []string
}

// Path is where a unit is written.
func Path(u genkit.Unit) string {
	return filepath.Join(u.Package.Dir, u.FileName)
}

// Write stores units on disk. A file is only replaced when its contents
// change, and never when it was not written by dlgen. Every target is checked
// before the first write.
func Write(units []genkit.Unit, opts Options) (*Report, error) {
	rep := &Report{}
	keep := make(map[string]bool, len(units))
	var pending []genkit.Unit
	for _, u := range units {
		path := Path(u)
		keep[path] = true
		old, err := os.ReadFile(path)
		switch {
		case err == nil:
			if !host.IsGeneratedSource(old) {
				return rep, errors.Newf("refusing to overwrite %s: not generated by dlgen", path)
			}
			if bytes.Equal(old, u.Source) {
				rep.Unchanged = append(rep.Unchanged, path)
				continue
			}
		case !errors.Is(err, os.ErrNotExist):
			return rep, errors.Wrapf(err, "read %s", path)
		}
		pending = append(pending, u)
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	written := make([]bool, len(pending))
	var g errgroup.Group
	g.SetLimit(jobs)
	for i, u := range pending {
		g.Go(func() error {
			if err := writeAtomic(Path(u), u.Source); err != nil {
				return err
			}
			written[i] = true
			return nil
		})
	}
	err := g.Wait()
	for i, u := range pending {
		if written[i] {
			rep.Written = append(rep.Written, Path(u))
		}
	}
	if err != nil {
		return rep, err
	}

	if !opts.Prune {
		return rep, nil
	}
	stale, err := generatedFiles(opts.Dirs)
	if err != nil {
		return rep, err
	}
	for _, path := range stale {
		if keep[path] {
			continue
		}
		if err := os.Remove(path); err != nil {
			return rep, errors.Wrapf(err, "remove %s", path)
		}
		rep.Removed = append(rep.Removed, path)
	}
	return rep, nil
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	f, err := os.CreateTemp(dir, ".dlgen-*")
	if err != nil {
		return errors.Wrapf(err, "write %s", path)
	}
	tmp := f.Name()
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return errors.Wrapf(err, "write %s", path)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return errors.Wrapf(err, "write %s", path)
	}
	if err := os.Chmod(tmp, 0o644); err != nil {
		_ = os.Remove(tmp)
		return errors.Wrapf(err, "write %s", path)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return errors.Wrapf(err, "write %s", path)
	}
	return nil
}

// generatedFiles returns the dlgen files of dirs, sorted.
func generatedFiles(dirs []string) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	for _, dir := range dirs {
		if seen[dir] {
			continue
		}
		seen[dir] = true
		entries, err := os.ReadDir(dir)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, errors.Wrapf(err, "list %s", dir)
		}
		for _, e := range entries {
			if e.IsDir() || !strings.HasSuffix(e.Name(), ".go") {
				continue
			}
			path := filepath.Join(dir, e.Name())
			ok, err := isGeneratedFile(path)
			if err != nil {
				return nil, err
			}
			if ok {
				out = append(out, path)
			}
		}
	}
	sort.Strings(out)
	return out, nil
}

func isGeneratedFile(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, errors.Wrapf(err, "open %s", path)
	}
	defer f.Close()
	head := make([]byte, 64)
	n, _ := f.Read(head)
	return host.IsGeneratedSource(head[:n]), nil
}

// Clean removes the dlgen files of dirs and returns their paths.
func Clean(dirs []string) ([]string, error) {
	files, err := generatedFiles(dirs)
	if err != nil {
		return nil, err
	}
	for i, path := range files {
		if err := os.Remove(path); err != nil {
			return files[:i], errors.Wrapf(err, "remove %s", path)
		}
	}
	return files, nil
}
