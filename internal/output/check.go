package output

import (
	"os"

	"github.com/cockroachdb/errors"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/darklink/dlgen/internal/genkit"
)

// DriftKind classifies a difference between the run and the disk.
type DriftKind string

const (
	DriftChanged DriftKind = "changed"
	DriftMissing DriftKind = "missing"
	DriftStale   DriftKind = "stale"
)

// Drift is one file whose disk contents differ from the run.
type Drift struct {
	Path string
	Kind DriftKind
	// Diff is a unified diff from disk to the run.
	Diff string
}

// Check compares units with the disk without writing. Stale files are dlgen
// files in dirs that no unit produced.
func Check(units []genkit.Unit, dirs []string) ([]Drift, error) {
	var drifts []Drift
	keep := make(map[string]bool, len(units))
	for _, u := range units {
		path := Path(u)
		keep[path] = true
		old, err := os.ReadFile(path)
		if err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, errors.Wrapf(err, "read %s", path)
			}
			drifts = append(drifts, Drift{Path: path, Kind: DriftMissing, Diff: diff(path, "", string(u.Source))})
			continue
		}
		if string(old) != string(u.Source) {
			drifts = append(drifts, Drift{Path: path, Kind: DriftChanged, Diff: diff(path, string(old), string(u.Source))})
		}
	}
	existing, err := generatedFiles(dirs)
	if err != nil {
		return nil, err
	}
	for _, path := range existing {
		if keep[path] {
			continue
		}
		old, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, "read %s", path)
		}
		drifts = append(drifts, Drift{Path: path, Kind: DriftStale, Diff: diff(path, string(old), "")})
	}
	return drifts, nil
}

func diff(path, a, b string) string {
	out, _ := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(a),
		B:        difflib.SplitLines(b),
		FromFile: path,
		ToFile:   path + " (generated)",
		Context:  3,
	})
	return out
}
