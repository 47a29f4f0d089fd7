package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
)

const tinyPPM = `P3
# tinypic: 4 columns, 3 rows
4 3
255
0 0 0  100 0 0  0 0 0  255 0 255
0 0 0  0 255 175  0 0 0  0 0 0
0 0 0  0 0 0  0 15 175  0 0 0
`

// writeFile writes content under dir and returns its path.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

// testEnv isolates config and cache directories and returns a scratch dir.
func testEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(dir, "cache"))
	return dir
}

// runCLI executes the root command with args and returns stdout, the log
// output and the error.
func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, logs bytes.Buffer
	c := New(&logs, LogDebug)
	root := c.RootCommand()
	if args == nil {
		args = []string{}
	}
	root.SetArgs(LabelArgs(root, args))
	root.SetOut(&out)
	root.SetErr(&logs)
	err := root.ExecuteContext(context.Background())
	return out.String(), logs.String(), err
}
