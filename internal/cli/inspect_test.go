package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AddioElectronics/enumex/internal/testutil"
)

func runInspectCmd(t *testing.T, format string, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewInspectCommand(&RootOptions{Format: format})
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestInspectFlagType(t *testing.T) {
	out, err := runInspectCmd(t, "text", testutil.FixtureDir(t), "Perm")
	require.NoError(t, err)

	assert.Contains(t, out, "flag Perm\n")
	assert.Contains(t, out, "boundary:  strict")
	assert.Contains(t, out, "flag mask: 0b111")
	assert.Contains(t, out, "Members (3):")
	assert.Contains(t, out, "<Perm.Read: 1>")
	assert.Contains(t, out, "<Perm.Exec: 4>")
	assert.Contains(t, out, "Aliases:\n  RW = 3")
	assert.NotContains(t, out, "Unmet")
}

func TestInspectAbstractType(t *testing.T) {
	out, err := runInspectCmd(t, "text", testutil.FixtureDir(t), "A")
	require.NoError(t, err)

	assert.Contains(t, out, "abstract flag A\n")
	assert.Contains(t, out, "method describe (abstract)")
	assert.Contains(t, out, "Unmet: describe")
}

func TestInspectJSON(t *testing.T) {
	out, err := runInspectCmd(t, "json", testutil.FixtureDir(t), "B")
	require.NoError(t, err)

	var resp struct {
		Status string        `json:"status"`
		Data   InspectResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)

	r := resp.Data
	assert.Equal(t, "B", r.Name)
	require.NotEmpty(t, r.Ancestors)
	assert.Equal(t, "A", r.Ancestors[0])
	assert.False(t, r.Abstract)
	assert.Empty(t, r.Unmet)
	assert.True(t, r.Flag)

	names := make([]string, len(r.Members))
	for i, m := range r.Members {
		names[i] = m.Name
	}
	assert.Equal(t, []string{"Val1", "Val2", "Val3", "Val4"}, names)

	require.Len(t, r.Capabilities, 1)
	assert.Equal(t, CapabilityInfo{Name: "describe", Kind: "method"}, r.Capabilities[0])
}

func TestInspectStringType(t *testing.T) {
	out, err := runInspectCmd(t, "json", testutil.FixtureDir(t), "Color")
	require.NoError(t, err)

	var resp struct {
		Data InspectResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	r := resp.Data
	assert.False(t, r.Flag)
	assert.Empty(t, r.Boundary)
	require.Len(t, r.Members, 3)
	assert.Equal(t, "azure", r.Members[2].Value)
	assert.Len(t, r.Capabilities, 2)
}

func TestInspectUnknownType(t *testing.T) {
	out, err := runInspectCmd(t, "text", testutil.FixtureDir(t), "Nope")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, `unknown type "Nope"`)
}

func TestInspectLinkFailure(t *testing.T) {
	_, err := runInspectCmd(t, "text", "/nonexistent/specs", "Perm")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
