package main

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"reqcheck/internal/shared/testutil"
)

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

// execute runs the root command with args and returns stdout.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "config.yaml", []byte("logging:\n  level: error\n  output: console\n"))

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(append([]string{"--config", cfgPath}, args...))
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)

	err := cmd.Execute()
	return out.String(), err
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	history := writeFile(t, dir, "consolidado.xlsx", testutil.WorkbookBytes(t, testutil.HistoryColumns, testutil.HistoryRows()))
	current := writeFile(t, dir, "requerimentos.csv", testutil.CSVBytes(t, testutil.CurrentColumns, testutil.CurrentRows()))
	outDir := filepath.Join(dir, "out")

	stdout, err := execute(t, "", "run",
		"--history", history, "--current", current,
		"--format", "csv", "--out", outDir, "--debug")
	require.NoError(t, err)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(stdout), &got), stdout)
	assert.Equal(t, float64(4), got["row_count"])
	assert.Contains(t, got, "debug")

	exportPath, ok := got["export_path"].(string)
	require.True(t, ok)
	assert.Equal(t, outDir, filepath.Dir(exportPath))
	assert.Equal(t, ".csv", filepath.Ext(exportPath))

	data, err := os.ReadFile(exportPath)
	require.NoError(t, err)
	assert.Equal(t, 5, strings.Count(string(data), "\n"))
}

func TestRun_LogsShareTraceID(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "config.yaml", []byte("logging:\n  level: info\n  format: json\n  output: console\n"))
	history := writeFile(t, dir, "consolidado.xlsx", testutil.WorkbookBytes(t, testutil.HistoryColumns, testutil.HistoryRows()))
	current := writeFile(t, dir, "requerimentos.csv", testutil.CSVBytes(t, testutil.CurrentColumns, testutil.CurrentRows()))

	var stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs([]string{"--config", cfgPath, "run",
		"--history", history, "--current", current,
		"--format", "csv", "--out", filepath.Join(dir, "out")})
	cmd.SetOut(io.Discard)
	cmd.SetErr(&stderr)
	require.NoError(t, cmd.Execute())

	var complete map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(stderr.String()), "\n") {
		var entry map[string]interface{}
		if json.Unmarshal([]byte(line), &entry) == nil && entry["msg"] == "Report complete" {
			complete = entry
		}
	}
	require.NotNil(t, complete, stderr.String())
	assert.Len(t, complete["trace_id"], 36)
}

func TestRun_SchemaErrorExitCode(t *testing.T) {
	dir := t.TempDir()
	history := writeFile(t, dir, "consolidado.csv", testutil.CSVBytes(t, []string{"nusp", "Ano"}, nil))
	current := writeFile(t, dir, "requerimentos.csv", testutil.CSVBytes(t, testutil.CurrentColumns, testutil.CurrentRows()))

	_, err := execute(t, "", "run", "--history", history, "--current", current, "--out", dir)
	require.Error(t, err)
	assert.Equal(t, exitSchemaError, exitCode(err))
	assert.Contains(t, err.Error(), "disciplina")
}

func TestRun_RejectsInput(t *testing.T) {
	dir := t.TempDir()
	current := writeFile(t, dir, "requerimentos.csv", testutil.CSVBytes(t, testutil.CurrentColumns, testutil.CurrentRows()))
	legacy := writeFile(t, dir, "consolidado.xls", []byte("old"))

	tests := []struct {
		name string
		args []string
	}{
		{name: "missing flag", args: []string{"run", "--current", current}},
		{name: "legacy workbook", args: []string{"run", "--history", legacy, "--current", current}},
		{name: "missing file", args: []string{"run", "--history", filepath.Join(dir, "nope.xlsx"), "--current", current}},
		{name: "bad format", args: []string{"run", "--history", current, "--current", current, "--format", "pdf"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, "", tt.args...)
			require.Error(t, err)
			assert.Equal(t, exitFailure, exitCode(err))
		})
	}
}

func TestHashPassword(t *testing.T) {
	stdout, err := execute(t, "segredo\n", "hash-password")
	require.NoError(t, err)

	hash := strings.TrimSpace(stdout)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("segredo")))
}

func TestHashPassword_Empty(t *testing.T) {
	_, err := execute(t, "", "hash-password")
	assert.Error(t, err)

	_, err = execute(t, "\n", "hash-password")
	assert.Error(t, err)
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, exitOK, exitCode(nil))
	assert.Equal(t, exitFailure, exitCode(assert.AnError))
	assert.Equal(t, exitSchemaError, exitCode(&exitError{code: exitSchemaError, err: assert.AnError}))
}
