package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AddioElectronics/enumex/internal/compiler"
	"github.com/AddioElectronics/enumex/internal/ir"
	"github.com/AddioElectronics/enumex/internal/testutil"
)

func TestCompileValidSpecs(t *testing.T) {
	// Use testdata/specs directory
	specsDir := filepath.Join("..", "..", "testdata", "specs")

	// Skip if testdata doesn't exist
	if _, err := os.Stat(specsDir); os.IsNotExist(err) {
		t.Skip("testdata/specs directory not found")
	}

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewCompileCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{specsDir})

	err := cmd.Execute()
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "✓ Compiled 4 enum(s)")
	assert.Contains(t, output, "B(A): 2 member(s), 1 capability(ies)")
	assert.Contains(t, output, "Perm(Flag): 4 member(s), 0 capability(ies)")
	assert.Contains(t, output, "Registry hash: ")
}

func TestCompileValidSpecsJSON(t *testing.T) {
	specsDir := testutil.FixtureDir(t)

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "json"}
	cmd := NewCompileCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{specsDir})

	err := cmd.Execute()
	require.NoError(t, err)

	var resp CLIResponse
	err = json.Unmarshal(buf.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Status)

	dataMap, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	enums, ok := dataMap["enums"].([]interface{})
	require.True(t, ok)
	assert.Len(t, enums, 4)
	hashes, ok := dataMap["hashes"].(map[string]interface{})
	require.True(t, ok)
	assert.Contains(t, hashes, "Color")
	assert.NotEmpty(t, dataMap["registry_hash"])
}

func TestCompileOutputToFile(t *testing.T) {
	specsDir := testutil.FixtureDir(t)
	outputFile := filepath.Join(t.TempDir(), "compiled.json")

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewCompileCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{specsDir, "--output", outputFile})

	err := cmd.Execute()
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Wrote canonical IR to "+outputFile)

	data, err := os.ReadFile(outputFile)
	require.NoError(t, err)

	var result CompilationResult
	err = json.Unmarshal(data, &result)
	require.NoError(t, err)
	assert.Len(t, result.Enums, 4)
	assert.Len(t, result.Hashes, 4)
}

func TestCompileHashesAreStable(t *testing.T) {
	run := func() CompilationResult {
		specsDir := testutil.FixtureDir(t)
		buf := &bytes.Buffer{}
		cmd := NewCompileCommand(&RootOptions{Format: "json"})
		cmd.SetOut(buf)
		cmd.SetArgs([]string{specsDir})
		require.NoError(t, cmd.Execute())

		var resp struct {
			Data CompilationResult `json:"data"`
		}
		require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
		return resp.Data
	}

	first, second := run(), run()
	assert.Equal(t, first.Hashes, second.Hashes)
	assert.Equal(t, first.RegistryHash, second.RegistryHash)
}

func TestCompileNonExistentDirectory(t *testing.T) {
	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewCompileCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"/nonexistent/directory/path"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "E005") // ErrCodeNotFound
	assert.Contains(t, buf.String(), "not found")
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestCompileEmptyDirectory(t *testing.T) {
	tmpDir := t.TempDir()

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewCompileCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{tmpDir})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "E003")
	assert.Contains(t, buf.String(), "no CUE files found")
}

func TestCompileNoEnumDeclarations(t *testing.T) {
	specsDir := testutil.WriteSpecs(t, map[string]string{
		"empty.cue": "package test\n\nother: 1\n",
	})

	buf := &bytes.Buffer{}
	cmd := NewCompileCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{specsDir})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, buf.String(), "no enum declarations found")
}

func TestCompileInvalidSpec(t *testing.T) {
	// Enum without members
	specsDir := testutil.WriteSpecs(t, map[string]string{
		"bad.cue": `
package test

enum: Bad: {
	bases: ["Enum"]
}
`,
	})

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewCompileCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{specsDir})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "compilation failed")
	assert.Contains(t, buf.String(), "Compilation failed")
	assert.Contains(t, buf.String(), "enum.Bad: members are required")
}

func TestCompileInvalidSpecJSON(t *testing.T) {
	specsDir := testutil.WriteSpecs(t, map[string]string{
		"bad.cue": `
package test

enum: Bad: {
	bases: ["Enum"]
}
`,
	})

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "json"}
	cmd := NewCompileCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{specsDir})

	err := cmd.Execute()
	require.Error(t, err)

	var resp CLIResponse
	jsonErr := json.Unmarshal(buf.Bytes(), &resp)
	require.NoError(t, jsonErr)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, compiler.ErrInvalidMemberName, resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "members are required")
}

func TestCompileFloatRejection(t *testing.T) {
	specsDir := testutil.WriteSpecs(t, map[string]string{
		"float.cue": `
package test

enum: Ratio: {
	bases: ["Enum"]
	members: [{name: "Half", value: 0.5}]
}
`,
	})

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewCompileCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{specsDir})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, buf.String(), "float")
	assert.Contains(t, buf.String(), "forbidden")
}

func TestCompileVerboseOutput(t *testing.T) {
	specsDir := testutil.WriteSpecs(t, map[string]string{"perm.cue": testutil.PermCUE})

	stdoutBuf := &bytes.Buffer{}
	stderrBuf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text", Verbose: true}
	cmd := NewCompileCommand(rootOpts)
	cmd.SetOut(stdoutBuf)
	cmd.SetErr(stderrBuf) // Verbose output goes to stderr
	cmd.SetArgs([]string{specsDir})

	err := cmd.Execute()
	require.NoError(t, err)

	verboseOutput := stderrBuf.String()
	assert.Contains(t, verboseOutput, "Found 1 CUE file(s)")
	assert.Contains(t, verboseOutput, "Compiling enum: Perm")
	assert.NotContains(t, stdoutBuf.String(), "Compiling enum")
}

func TestFindCUEFiles(t *testing.T) {
	tmpDir := t.TempDir()

	// Create nested directories with CUE files
	subDir := filepath.Join(tmpDir, "subdir")
	err := os.MkdirAll(subDir, 0755)
	require.NoError(t, err)

	err = os.WriteFile(filepath.Join(tmpDir, "root.cue"), []byte("package test"), 0644)
	require.NoError(t, err)
	err = os.WriteFile(filepath.Join(tmpDir, "notcue.txt"), []byte("not a cue file"), 0644)
	require.NoError(t, err)
	err = os.WriteFile(filepath.Join(subDir, "nested.cue"), []byte("package test"), 0644)
	require.NoError(t, err)

	files, err := FindCUEFiles(tmpDir)
	require.NoError(t, err)
	assert.Len(t, files, 2)
}

func TestMapFieldToErrorCode(t *testing.T) {
	tests := []struct {
		field    string
		expected string
	}{
		{"bases", compiler.ErrInvalidBase},
		{"value", compiler.ErrInvalidMemberValue},
		{"members[2].args", compiler.ErrInvalidMemberValue},
		{"members", compiler.ErrInvalidMemberName},
		{"members[0]", compiler.ErrInvalidMemberName},
		{"capabilities.describe.kind", compiler.ErrInvalidCapability},
		{"boundary", compiler.ErrInvalidBoundary},
		{"unknown", ErrCodeGeneric},
	}

	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			code := MapFieldToErrorCode(tt.field)
			assert.Equal(t, tt.expected, code)
		})
	}
}

func TestBuildCompilationResult(t *testing.T) {
	decls := []ir.EnumDecl{
		{Name: "A", Members: []ir.MemberDecl{{Name: "X"}}},
		{Name: "B", Bases: []string{"A"}, Members: []ir.MemberDecl{{Name: "Y"}}},
	}

	result, err := buildCompilationResult(decls)
	require.NoError(t, err)

	hashA, err := ir.DeclHash(decls[0])
	require.NoError(t, err)
	assert.Equal(t, hashA, result.Hashes["A"])
	assert.Len(t, result.Hashes, 2)

	regHash, err := ir.RegistryHash(decls)
	require.NoError(t, err)
	assert.Equal(t, regHash, result.RegistryHash)
}
