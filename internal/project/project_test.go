package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func write(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoadManifest_TOMLFromSubdirectory(t *testing.T) {
	root := t.TempDir()
	write(t, filepath.Join(root, TOMLName), `
[generate]
patterns = ["./models/...", "./enums"]
tags = ["integration"]
emit_markers = "used"
prune = true
jobs = 4

[output]
format = "short"
max_diagnostics = 20
`)
	sub := filepath.Join(root, "models", "deep")
	require.NoError(t, os.MkdirAll(sub, 0o755))

	m, ok, err := LoadManifest(sub)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, root, m.Root)
	assert.Equal(t, []string{"./models/...", "./enums"}, m.Config.Generate.Patterns)
	assert.Equal(t, []string{"integration"}, m.Config.Generate.Tags)
	assert.Equal(t, "used", m.Config.Generate.EmitMarkers)
	assert.True(t, m.Config.Generate.Prune)
	assert.Equal(t, 4, m.Config.Generate.Jobs)
	assert.Equal(t, "short", m.Config.Output.Format)
	assert.Equal(t, 20, m.Config.Output.MaxDiagnostics)
}

func TestLoadManifest_YAML(t *testing.T) {
	root := t.TempDir()
	write(t, filepath.Join(root, YAMLName), "generate:\n  tests: true\n  emit_markers: never\noutput:\n  format: json\n")

	m, ok, err := LoadManifest(root)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, m.Config.Generate.Tests)
	assert.Equal(t, "never", m.Config.Generate.EmitMarkers)
	assert.Equal(t, "json", m.Config.Output.Format)
}

func TestLoadManifest_TOMLWinsInSameDirectory(t *testing.T) {
	root := t.TempDir()
	write(t, filepath.Join(root, TOMLName), "")
	write(t, filepath.Join(root, YAMLName), "generate:\n  jobs: 2\n")

	path, ok, err := FindManifest(root)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(root, TOMLName), path)
}

func TestLoadConfig_Errors(t *testing.T) {
	cases := map[string]struct {
		name, content, want string
	}{
		"unknown toml key":  {TOMLName, "[generate]\nparallel = 2\n", "unknown keys: generate.parallel"},
		"unknown yaml key":  {YAMLName, "generate:\n  parallel: 2\n", "parallel"},
		"bad emit markers":  {TOMLName, "[generate]\nemit_markers = \"sometimes\"\n", "[generate].emit_markers"},
		"negative jobs":     {TOMLName, "[generate]\njobs = -1\n", "[generate].jobs"},
		"bad format":        {YAMLName, "output:\n  format: sarif\n", "[output].format"},
		"empty pattern":     {TOMLName, "[generate]\npatterns = [\" \"]\n", "[generate].patterns"},
		"negative max":      {TOMLName, "[output]\nmax_diagnostics = -3\n", "[output].max_diagnostics"},
		"toml syntax error": {TOMLName, "[generate\n", "failed to parse TOML"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tc.name)
			write(t, path, tc.content)
			_, err := LoadConfig(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
			assert.Contains(t, err.Error(), path)
		})
	}
}

func TestLoadConfig_EmptyYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), YAMLName)
	write(t, path, "")
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, Config{}, cfg)
}
