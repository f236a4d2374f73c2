package project

import (
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
)

// Manifest file names, in lookup order within one directory.
const (
	TOMLName = "dlgen.toml"
	YAMLName = "dlgen.yaml"
)

// FindManifest walks up from startDir to locate dlgen.toml or dlgen.yaml.
func FindManifest(startDir string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, errors.Wrap(err, "failed to resolve start directory")
	}
	for {
		for _, name := range []string{TOMLName, YAMLName} {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, true, nil
			} else if !errors.Is(err, os.ErrNotExist) {
				return "", false, errors.Wrapf(err, "failed to stat %q", candidate)
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// FindProjectRoot returns the directory containing the manifest, if any.
func FindProjectRoot(startDir string) (root string, ok bool, err error) {
	manifestPath, ok, err := FindManifest(startDir)
	if err != nil || !ok {
		return "", ok, err
	}
	return filepath.Dir(manifestPath), true, nil
}
