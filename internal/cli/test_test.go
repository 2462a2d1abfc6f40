package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AddioElectronics/enumex/internal/testutil"
)

const permScenario = `name: perm_basics
description: "Composition of strict flags"
specs:
  - perm.cue
steps:
  - eval: Perm.Read | Perm.Exec
    expect: { value: 5, name: "Read|Exec" }
  - eval: Perm(8)
    expect: { error: UNDEFINED_FLAG_BITS }
`

const failingScenario = `name: perm_wrong
description: "Expects the wrong composite"
specs:
  - perm.cue
steps:
  - eval: Perm.Read | Perm.Write
    expect: { value: 7 }
`

// writeScenarioDir lays out a scenarios directory with the perm spec next to
// the given scenario files.
func writeScenarioDir(t *testing.T, scenarios map[string]string) string {
	t.Helper()
	files := map[string]string{"perm.cue": testutil.PermCUE}
	for name, content := range scenarios {
		files[name] = content
	}
	return testutil.WriteSpecs(t, files)
}

func runTestCmd(t *testing.T, format string, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewTestCommand(&RootOptions{Format: format})
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestTestCommandMissingArgs(t *testing.T) {
	_, err := runTestCmd(t, "text")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg")
}

func TestTestCommandNonExistentPath(t *testing.T) {
	_, err := runTestCmd(t, "text", "/nonexistent/scenarios")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "scenario path not found")
}

func TestTestCommandRepositoryScenarios(t *testing.T) {
	out, err := runTestCmd(t, "text", filepath.Join("..", "..", "testdata", "scenarios"))
	require.NoError(t, err, out)

	assert.Contains(t, out, "✓ strict_flags")
	assert.Contains(t, out, "✓ subclass_composition")
	assert.Contains(t, out, "✓ string_properties")
	assert.Contains(t, out, "Test Summary: 3 passed, 0 failed, 3 total")
	assert.Contains(t, out, "✓ All scenarios passed")
}

func TestTestCommandSingleFile(t *testing.T) {
	out, err := runTestCmd(t, "text", filepath.Join("..", "..", "testdata", "scenarios", "strict_flags.yaml"))
	require.NoError(t, err, out)
	assert.Contains(t, out, "Test Summary: 1 passed, 0 failed, 1 total")
}

func TestTestCommandFilter(t *testing.T) {
	out, err := runTestCmd(t, "json", filepath.Join("..", "..", "testdata", "scenarios"), "--filter", "strict_*")
	require.NoError(t, err)

	var resp struct {
		Status string     `json:"status"`
		Data   TestResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	require.Len(t, resp.Data.Scenarios, 1)
	assert.Equal(t, "strict_flags", resp.Data.Scenarios[0].Name)
}

func TestTestCommandFailingScenario(t *testing.T) {
	dir := writeScenarioDir(t, map[string]string{
		"ok.yaml":    permScenario,
		"wrong.yaml": failingScenario,
	})

	out, err := runTestCmd(t, "text", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✓ perm_basics")
	assert.Contains(t, out, "✗ perm_wrong")
	assert.Contains(t, out, "value: expected 7, got 3")
	assert.Contains(t, out, "Test Summary: 1 passed, 1 failed, 2 total")
}

func TestTestCommandFailingScenarioJSON(t *testing.T) {
	dir := writeScenarioDir(t, map[string]string{"wrong.yaml": failingScenario})

	out, err := runTestCmd(t, "json", dir)
	require.Error(t, err)

	var resp struct {
		Status string     `json:"status"`
		Data   TestResult `json:"data"`
		Error  *CLIError  `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeTestFailed, resp.Error.Code)
	assert.Equal(t, 1, resp.Data.Failed)
	require.Len(t, resp.Data.Scenarios, 1)
	assert.NotEmpty(t, resp.Data.Scenarios[0].Errors)
}

func TestTestCommandInvalidScenario(t *testing.T) {
	dir := writeScenarioDir(t, map[string]string{"bad.yaml": "name: bad\n"})

	out, err := runTestCmd(t, "text", dir)
	require.Error(t, err)
	assert.Contains(t, out, "✗ bad.yaml")
	assert.Contains(t, out, "failed to load scenario")
}

func TestTestCommandGoldenLifecycle(t *testing.T) {
	dir := writeScenarioDir(t, map[string]string{"perm.yaml": permScenario})
	goldenPath := filepath.Join(dir, "golden", "perm.golden")

	out, err := runTestCmd(t, "text", dir, "--update")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ perm_basics (golden updated)")

	golden, err := os.ReadFile(goldenPath)
	require.NoError(t, err)
	assert.Contains(t, string(golden), `"scenario_name":"perm_basics"`)
	assert.Contains(t, string(golden), `"code":"UNDEFINED_FLAG_BITS"`)

	_, err = runTestCmd(t, "text", dir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(goldenPath, []byte(`{"scenario_name":"perm_basics","trace":[]}`), 0644))
	out, err = runTestCmd(t, "text", dir)
	require.Error(t, err)
	assert.Contains(t, out, "trace does not match golden file")
}

func TestTestCommandEmptyScenariosDir(t *testing.T) {
	out, err := runTestCmd(t, "text", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, out, "No scenarios found")
}

func TestTestCommandEmptyScenariosDirJSON(t *testing.T) {
	out, err := runTestCmd(t, "json", t.TempDir())
	require.NoError(t, err)

	var response CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &response))
	assert.Equal(t, "ok", response.Status)
}

func TestTestHelpText(t *testing.T) {
	out, err := runTestCmd(t, "text", "--help")
	require.NoError(t, err)

	assert.Contains(t, out, "harness")
	assert.Contains(t, out, "--update")
	assert.Contains(t, out, "--filter")
	assert.Contains(t, out, "scenarios-dir")
}

func TestFindScenarioFiles(t *testing.T) {
	tmpDir := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "test1.yaml"), []byte(""), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "test2.yml"), []byte(""), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "ignore.txt"), []byte(""), 0644))

	files, err := findScenarioFiles(tmpDir, "")
	require.NoError(t, err)
	assert.Len(t, files, 2)
}

func TestFindScenarioFilesWithFilter(t *testing.T) {
	tmpDir := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "flag-strict.yaml"), []byte(""), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "flag-keep.yaml"), []byte(""), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "subclass.yaml"), []byte(""), 0644))

	files, err := findScenarioFiles(tmpDir, "flag-*")
	require.NoError(t, err)
	assert.Len(t, files, 2)

	_, err = findScenarioFiles(tmpDir, "[")
	require.Error(t, err)
}

func TestGoldenFilePath(t *testing.T) {
	assert.Equal(t,
		filepath.Join("scenarios", "golden", "strict_flags.golden"),
		goldenFilePath(filepath.Join("scenarios", "strict_flags.yaml")))
}
