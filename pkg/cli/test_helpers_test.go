package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// isolate points HOME and the database at a fresh temp dir and clears the
// environment overrides so tests never touch a real profile.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("TASKFLOW_DB_PATH", "")
	t.Setenv("TASKFLOW_ACTOR", "")
	t.Setenv("TASKFLOW_OUTPUT", "")
	return filepath.Join(dir, "taskflow.sqlite")
}

// run executes the CLI with args and returns stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// mustRunJSON executes the CLI with -o json and decodes stdout into v.
func mustRunJSON(t *testing.T, v any, args ...string) {
	t.Helper()
	out, err := run(t, append([]string{"-o", "json"}, args...)...)
	require.NoError(t, err, out)
	require.NoError(t, json.Unmarshal([]byte(out), v), out)
}
