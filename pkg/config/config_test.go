package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWhenMissing(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadTOML(t *testing.T) {
	dir := t.TempDir()
	content := `
[parser]
restrict = false
structural = true
max_backtracks = 50

[files]
include = ["src/**/*.cpp"]

[resolve]
suggest_threshold = 0.6
workers = 2
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, TOMLFile), []byte(content), 0644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.False(t, cfg.Parser.Restrict)
	assert.True(t, cfg.Parser.LongLong, "unset keys keep their defaults")
	assert.True(t, cfg.Parser.Structural)
	assert.Equal(t, 50, cfg.Parser.MaxBacktracks)
	assert.Equal(t, []string{"src/**/*.cpp"}, cfg.Files.Include)
	assert.Equal(t, 0.6, cfg.Resolve.SuggestThreshold)
	assert.Equal(t, 2, cfg.Resolve.Workers)
	assert.Equal(t, filepath.Join(dir, TOMLFile), cfg.Path)
}

func TestLoadKDLFallback(t *testing.T) {
	dir := t.TempDir()
	content := `
parser {
    long_long false
    max_tokens 2000
}
files {
    include "lib/**/*.h" "lib/**/*.cc"
    exclude {
        "lib/third_party/**"
    }
}
resolve {
    max_suggestions 5
}
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, KDLFile), []byte(content), 0644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.False(t, cfg.Parser.LongLong)
	assert.Equal(t, 2000, cfg.Parser.MaxTokens)
	assert.Equal(t, []string{"lib/**/*.h", "lib/**/*.cc"}, cfg.Files.Include)
	assert.Equal(t, []string{"lib/third_party/**"}, cfg.Files.Exclude)
	assert.Equal(t, 5, cfg.Resolve.MaxSuggestions)
}

func TestLoadYAMLFallback(t *testing.T) {
	dir := t.TempDir()
	content := `
parser:
  structural: true
files:
  include:
    - "src/**/*.hpp"
resolve:
  suggest_threshold: 0.5
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, YAMLFile), []byte(content), 0644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, YAMLFile), cfg.Path)
	assert.True(t, cfg.Parser.Structural)
	assert.True(t, cfg.Parser.Restrict)
	assert.Equal(t, []string{"src/**/*.hpp"}, cfg.Files.Include)
	assert.Equal(t, 0.5, cfg.Resolve.SuggestThreshold)
}

func TestLoadYAMLRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yml")
	require.NoError(t, os.WriteFile(path, []byte("parser:\n  dialect: c99\n"), 0644))

	_, err := LoadFile(path)
	assert.ErrorContains(t, err, "failed to parse config")
}

func TestTOMLPreferredOverKDL(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, TOMLFile), []byte("[parser]\nmax_tokens = 10\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, KDLFile), []byte("parser {\n    max_tokens 20\n}\n"), 0644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.Parser.MaxTokens)
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative backtracks", func(c *Config) { c.Parser.MaxBacktracks = -1 }},
		{"threshold above one", func(c *Config) { c.Resolve.SuggestThreshold = 1.5 }},
		{"negative workers", func(c *Config) { c.Resolve.Workers = -3 }},
		{"bad glob", func(c *Config) { c.Files.Include = []string{"src/[a-"} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestFilesMatches(t *testing.T) {
	files := Default().Files
	assert.True(t, files.Matches("src/widget.cpp"))
	assert.True(t, files.Matches("include/a/b.hpp"))
	assert.False(t, files.Matches("README.md"))
	assert.False(t, files.Matches("out/build/gen.cpp"))
}

func TestWriteRoundTrip(t *testing.T) {
	dir := t.TempDir()
	cfg := Default()
	cfg.Resolve.Workers = 4

	path, err := cfg.Write(dir, false)
	require.NoError(t, err)

	_, err = cfg.Write(dir, false)
	assert.Error(t, err, "existing file is not replaced without force")

	loaded, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 4, loaded.Resolve.Workers)
	assert.Equal(t, cfg.Files, loaded.Files)
}
