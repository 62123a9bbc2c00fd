package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cppbind/pkg/config"
)

const geometry = `namespace geo {
struct Point {
    int x;
};
int area(int w, int h);
}
`

// run executes the root command with args, resetting every flag first
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	reset := func(c *cobra.Command) {
		c.Flags().VisitAll(func(f *pflag.Flag) {
			_ = f.Value.Set(f.DefValue)
			f.Changed = false
		})
	}
	reset(rootCmd)
	for _, c := range rootCmd.Commands() {
		reset(c)
	}
	configPath, verbosity = "", 0

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "cppbind dev (unknown)")
	assert.Contains(t, out, "Commit:  unknown")
}

func TestParseHuman(t *testing.T) {
	path := writeFile(t, t.TempDir(), "geo.h", geometry)

	out, err := run(t, "parse", path)
	require.NoError(t, err)
	assert.Contains(t, out, "namespace namespace geo  [1:1]")
	assert.Contains(t, out, "    function int area(int w, int h)")
	assert.Contains(t, out, "Declarations: 1\n")
	assert.Contains(t, out, "Errors: 0, warnings: 0\n")
	assert.NotContains(t, out, "Diagnostics:")
}

func TestParseReportsDiagnostics(t *testing.T) {
	path := writeFile(t, t.TempDir(), "bad.cpp", "int ;\nint ok;\n")

	out, err := run(t, "parse", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Diagnostics:")
	assert.Contains(t, out, "declaration does not declare anything")
	assert.Contains(t, out, "variable int ok")
}

func TestParseJSON(t *testing.T) {
	path := writeFile(t, t.TempDir(), "geo.h", geometry)

	out, err := run(t, "parse", "--format", "json", path)
	require.NoError(t, err)

	var decoded struct {
		Filename     string `json:"filename"`
		Declarations []struct {
			Kind     string            `json:"kind"`
			Children []json.RawMessage `json:"children"`
		} `json:"declarations"`
		Diagnostics []json.RawMessage `json:"diagnostics"`
		Stats       struct {
			Declarations int `json:"declarations"`
		} `json:"stats"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, path, decoded.Filename)
	require.Len(t, decoded.Declarations, 1)
	assert.Equal(t, "namespace", decoded.Declarations[0].Kind)
	assert.Len(t, decoded.Declarations[0].Children, 2)
	assert.Empty(t, decoded.Diagnostics)
	assert.Equal(t, 1, decoded.Stats.Declarations)
}

func TestParseUnknownFormat(t *testing.T) {
	path := writeFile(t, t.TempDir(), "geo.h", geometry)
	_, err := run(t, "parse", "-f", "yaml", path)
	assert.ErrorContains(t, err, "unknown format")
}

func TestParseStructural(t *testing.T) {
	path := writeFile(t, t.TempDir(), "f.cpp", "int f() { return missing; }\n")

	out, err := run(t, "parse", "--structural", path)
	require.NoError(t, err)
	assert.Contains(t, out, "function int f()")
}

func TestResolve(t *testing.T) {
	path := writeFile(t, t.TempDir(), "count.cpp", "int counter;\nint f() { return counter + missing; }\n")

	out, err := run(t, "resolve", path)
	require.NoError(t, err)
	assert.Contains(t, out, "LOCATION")
	assert.Contains(t, out, "counter")
	assert.Contains(t, out, "unresolved: not declared in any enclosing scope")

	out, err = run(t, "resolve", "--problems", "--format", "json", path)
	require.NoError(t, err)
	var records []bindingRecord
	require.NoError(t, json.Unmarshal([]byte(out), &records))
	require.Len(t, records, 1)
	assert.Equal(t, "missing", records[0].Name)
	assert.Equal(t, 2, records[0].Line)
	assert.Equal(t, "problem", records[0].Kind)
}

func TestResolveLookup(t *testing.T) {
	path := writeFile(t, t.TempDir(), "geo.h", geometry)

	out, err := run(t, "resolve", "--lookup", "geo::Point", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Kind: class\n")
	assert.Contains(t, out, "Full Name: geo::Point\n")

	_, err = run(t, "resolve", "--lookup", "geo::Nothing", path)
	assert.Error(t, err)
}

func TestScopes(t *testing.T) {
	path := writeFile(t, t.TempDir(), "geo.h", geometry)

	out, err := run(t, "scopes", path)
	require.NoError(t, err)
	assert.Contains(t, out, "translation unit  [1:1]: geo\n")
	assert.Contains(t, out, "    namespace geo  [1:1]: Point, area\n")
	assert.Contains(t, out, "class geo::Point")
}

func TestCheckDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "include/geo.h", geometry)
	writeFile(t, dir, "src/count.cpp", "int counter;\nint f() { return countr; }\n")

	out, err := run(t, "check", dir)
	assert.EqualError(t, err, "found 1 errors")
	assert.Contains(t, out, "src/count.cpp:2:")
	assert.Contains(t, out, "did you mean counter?")
	assert.Contains(t, out, "2 files checked: 1 errors, 0 warnings")
}

func TestCheckFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "geo.h", geometry)
	writeFile(t, dir, "count.cpp", "int counter;\nint f() { return countr; }\n")
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	out, err := run(t, "check", "geo.h")
	require.NoError(t, err)
	assert.Contains(t, out, "1 files checked: 0 errors, 0 warnings")
}

func TestCheckUsesConfigFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "geo.h", geometry)
	writeFile(t, dir, "count.cpp", "int counter;\nint f() { return countr; }\n")

	cfg := config.Default()
	cfg.Files.Include = []string{"**/*.h"}
	_, err := cfg.Write(dir, false)
	require.NoError(t, err)

	out, err := run(t, "check", "--format", "json", dir)
	require.NoError(t, err)
	var report struct {
		Files  []json.RawMessage `json:"files"`
		Errors int               `json:"errors"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Len(t, report.Files, 1)
	assert.Equal(t, 0, report.Errors)
}

func TestInit(t *testing.T) {
	dir := t.TempDir()

	out, err := run(t, "init", dir)
	require.NoError(t, err)
	assert.Contains(t, out, config.TOMLFile)

	cfg, err := config.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, config.TOMLFile), cfg.Path)

	_, err = run(t, "init", dir)
	assert.ErrorContains(t, err, "already exists")

	_, err = run(t, "init", "--force", dir)
	assert.NoError(t, err)
}

func TestWatchRejectsFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "geo.h", geometry)
	_, err := run(t, "watch", path)
	assert.ErrorContains(t, err, "is not a directory")
}
