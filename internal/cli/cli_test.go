package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// run executes the CLI against a private data directory.
func run(t *testing.T, dataDir string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--data-dir", dataDir}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func isolate(t *testing.T) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv("TASKBOARD_STORAGE", "sqlite")
}

func TestAddThenList(t *testing.T) {
	isolate(t)
	dir := t.TempDir()

	out, err := run(t, dir, "add", "Write", "report", "--priority", "high", "--tags", "docs,q2")
	require.NoError(t, err)
	assert.Contains(t, out, `"Write report"`)
	assert.Contains(t, out, "todo")

	_, err = run(t, dir, "add", "Review", "--stage", "in-progress", "--due", "2026-05-11")
	require.NoError(t, err)

	out, err = run(t, dir, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "todo (1)")
	assert.Contains(t, out, "in-progress (1)")
	assert.Contains(t, out, "done (0)")
	assert.Contains(t, out, "Write report")
	assert.Contains(t, out, "docs,q2")
	assert.Contains(t, out, "2026-05-11")

	out, err = run(t, dir, "list", "--stage", "in-progress")
	require.NoError(t, err)
	assert.Contains(t, out, "Review")
	assert.NotContains(t, out, "Write report")

	assert.FileExists(t, filepath.Join(dir, "taskboard.db"))
}

func TestAddRecurring(t *testing.T) {
	isolate(t)
	dir := t.TempDir()

	_, err := run(t, dir, "add", "Standup", "-r", "--every-days", "1", "--every-hours", "30")
	require.NoError(t, err)

	out, err := run(t, dir, "list", "-s", "todo")
	require.NoError(t, err)
	assert.Contains(t, out, "1d 23h 0m")
}

func TestAddRejectsBadInput(t *testing.T) {
	isolate(t)
	dir := t.TempDir()

	_, err := run(t, dir, "add", "   ")
	assert.Error(t, err)

	_, err = run(t, dir, "add", "x", "--priority", "urgent")
	assert.Error(t, err)

	_, err = run(t, dir, "add", "x", "--stage", "later")
	assert.Error(t, err)

	_, err = run(t, dir, "add", "x", "--due", "next week")
	assert.Error(t, err)

	_, err = run(t, dir, "add")
	assert.Error(t, err)
}

func TestListRejectsUnknownStage(t *testing.T) {
	isolate(t)
	_, err := run(t, t.TempDir(), "list", "--stage", "backlog")
	assert.Error(t, err)
}

func TestFileStorage(t *testing.T) {
	isolate(t)
	dir := t.TempDir()

	_, err := run(t, dir, "--storage", "file", "add", "Filed")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "board.json"))
	assert.NoFileExists(t, filepath.Join(dir, "taskboard.db"))

	out, err := run(t, dir, "--storage", "file", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Filed")

	raw, err := os.ReadFile(filepath.Join(dir, "board.json"))
	require.NoError(t, err)
	assert.Contains(t, string(raw), "todo-storage")
}

func TestFileStorageCorruptBoardStartsEmpty(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "board.json"), []byte("{not json"), 0o644))

	out, err := run(t, dir, "--storage", "file", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "todo (0)")
	assert.FileExists(t, filepath.Join(dir, "board.json.corrupt"))

	_, err = run(t, dir, "--storage", "file", "add", "Recovered")
	require.NoError(t, err)
	out, err = run(t, dir, "--storage", "file", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Recovered")
}

func TestExport(t *testing.T) {
	isolate(t)
	dir := t.TempDir()

	_, err := run(t, dir, "add", "One", "--tags", "keep")
	require.NoError(t, err)
	_, err = run(t, dir, "add", "Two")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "tasks.json")
	out, err := run(t, dir, "export", "--format", "json", "--out", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Exported 2 tasks")

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Equal(t, 2, doc.Count)

	_, err = run(t, dir, "export", "--format", "xml", "--out", filepath.Join(t.TempDir(), "x.xml"))
	assert.Error(t, err)
}

func TestExportDefaultPath(t *testing.T) {
	isolate(t)
	dir := t.TempDir()

	out, err := run(t, dir, "export", "--format", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "Exported 0 tasks")

	entries, err := os.ReadDir(".")
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	found := false
	for _, n := range names {
		if strings.HasPrefix(n, "taskboard-export-") && strings.HasSuffix(n, ".yaml") {
			found = true
		}
	}
	assert.True(t, found, "default export file missing from %v", names)
}

func TestInvalidStorageConfig(t *testing.T) {
	isolate(t)
	_, err := run(t, t.TempDir(), "--storage", "postgres", "list")
	assert.Error(t, err)
}
