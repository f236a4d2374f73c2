// Package project reads the dlgen manifest of a project.
package project

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"

	"github.com/darklink/dlgen/internal/diagfmt"
	"github.com/darklink/dlgen/internal/driver"
)

// Config is the contents of a manifest. Zero values mean "use the default".
type Config struct {
	Generate GenerateConfig `toml:"generate" yaml:"generate"`
	Output   OutputConfig   `toml:"output" yaml:"output"`
}

type GenerateConfig struct {
	Patterns    []string `toml:"patterns" yaml:"patterns"`
	Tags        []string `toml:"tags" yaml:"tags"`
	Tests       bool     `toml:"tests" yaml:"tests"`
	EmitMarkers string   `toml:"emit_markers" yaml:"emit_markers"`
	Prune       bool     `toml:"prune" yaml:"prune"`
	Jobs        int      `toml:"jobs" yaml:"jobs"`
}

type OutputConfig struct {
	Format         string `toml:"format" yaml:"format"`
	MaxDiagnostics int    `toml:"max_diagnostics" yaml:"max_diagnostics"`
}

// Manifest is a loaded manifest file.
type Manifest struct {
	Path   string
	Root   string
	Config Config
}

// LoadManifest finds and decodes the manifest above startDir. ok is false
// when there is none.
func LoadManifest(startDir string) (*Manifest, bool, error) {
	path, ok, err := FindManifest(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, true, err
	}
	return &Manifest{Path: path, Root: filepath.Dir(path), Config: cfg}, true, nil
}

// LoadConfig decodes and validates one manifest file. Unknown keys are
// errors so typos do not go unnoticed.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "%s", path)
	}
	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		meta, err := toml.Decode(string(data), &cfg)
		if err != nil {
			return Config{}, errors.Wrapf(err, "%s: failed to parse TOML", path)
		}
		if undecoded := meta.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			sort.Strings(keys)
			return Config{}, errors.Newf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
		}
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return Config{}, errors.Wrapf(err, "%s: failed to parse YAML", path)
		}
	default:
		return Config{}, errors.Newf("%s: unsupported manifest format", path)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, errors.Wrapf(err, "%s", path)
	}
	return cfg, nil
}

// Validate checks value ranges and enumerations.
func (c Config) Validate() error {
	if _, err := driver.ParseEmitMarkers(c.Generate.EmitMarkers); err != nil {
		return errors.Wrap(err, "[generate].emit_markers")
	}
	if c.Generate.Jobs < 0 {
		return errors.Newf("[generate].jobs must not be negative, got %d", c.Generate.Jobs)
	}
	for _, p := range c.Generate.Patterns {
		if strings.TrimSpace(p) == "" {
			return errors.New("[generate].patterns must not contain empty patterns")
		}
	}
	if _, err := diagfmt.ParseFormat(c.Output.Format); err != nil {
		return errors.Wrap(err, "[output].format")
	}
	if c.Output.MaxDiagnostics < 0 {
		return errors.Newf("[output].max_diagnostics must not be negative, got %d", c.Output.MaxDiagnostics)
	}
	return nil
}
