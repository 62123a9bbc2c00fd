package document

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"cppbind/pkg/config"
)

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
}

func TestWorkspaceDiscover(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"include/geo.h":  geometry,
		"src/geo.cpp":    "int g;",
		"build/gen.cpp":  "int generated;",
		"README.md":      "# docs",
		"src/notes.txt":  "not C++",
		"src/deep/a.hpp": "int a;",
	})

	ws := NewWorkspace(dir)
	paths, err := ws.Discover()
	require.NoError(t, err)
	assert.Equal(t, []string{"include/geo.h", "src/deep/a.hpp", "src/geo.cpp"}, paths)
}

func TestWorkspaceDiscoverCustomPatterns(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"a.h":        "int a;",
		"b.cpp":      "int b;",
		"test/c.cpp": "int c;",
	})

	cfg := config.Default()
	cfg.Files.Include = []string{"**/*.cpp"}
	cfg.Files.Exclude = []string{"test/**"}
	ws := NewWorkspace(dir, WithConfig(cfg))

	paths, err := ws.Discover()
	require.NoError(t, err)
	assert.Equal(t, []string{"b.cpp"}, paths)
}

func TestWorkspaceLoadCachesByContent(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"a.h": "int a;", "b.h": "int b;"})
	ws := NewWorkspace(dir)

	docs, err := ws.Load(context.Background(), []string{"a.h", "b.h"})
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "a.h", docs[0].GetFilename())
	assert.Equal(t, "b.h", docs[1].GetFilename())

	again, err := ws.Load(context.Background(), []string{"a.h"})
	require.NoError(t, err)
	assert.Same(t, docs[0], again[0])

	writeFiles(t, dir, map[string]string{"a.h": "int a2;"})
	changed, err := ws.Load(context.Background(), []string{"a.h"})
	require.NoError(t, err)
	assert.NotSame(t, docs[0], changed[0])

	cached, ok := ws.Document("a.h")
	require.True(t, ok)
	assert.Same(t, changed[0], cached)

	ws.Invalidate("a.h")
	_, ok = ws.Document("a.h")
	assert.False(t, ok)
}

func TestWorkspaceLoadMissingFile(t *testing.T) {
	defer goleak.VerifyNone(t)

	ws := NewWorkspace(t.TempDir())
	_, err := ws.Load(context.Background(), []string{"missing.h"})
	assert.Error(t, err)
}

func TestWorkspaceCheck(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"good.h":  geometry,
		"bad.cpp": "int counter;\nvoid f() { countr = 1; }\n",
	})
	ws := NewWorkspace(dir)

	report, err := ws.Check(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Files, 2)
	assert.True(t, report.HasErrors())
	assert.Equal(t, 1, report.Errors)

	assert.Equal(t, "bad.cpp", report.Files[0].Path)
	require.Len(t, report.Files[0].Issues, 1)
	assert.Equal(t, []string{"counter"}, report.Files[0].Issues[0].Suggestions)

	assert.Equal(t, "good.h", report.Files[1].Path)
	assert.Empty(t, report.Files[1].Issues)
	assert.Equal(t, 1, report.Files[1].Stats.Declarations)
}
