package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// SubclassCUE declares an abstract flag type A and its concrete subclass B.
const SubclassCUE = `package fixtures

enum: A: {
	bases: ["IntFlag", "abstract"]
	members: [{name: "Val1", value: 1}, {name: "Val2", value: 2}]
	capabilities: describe: {kind: "method", abstract: true}
}

enum: B: {
	bases: ["A"]
	members: [{name: "Val3", value: 4}, {name: "Val4", value: 8}]
	capabilities: describe: {kind: "method", template: "{{.Name}} = {{.Value}}"}
}
`

// PermCUE declares a strict flag type with an alias and a declared order.
const PermCUE = `package fixtures

enum: Perm: {
	bases: ["Flag"]
	members: [
		{name: "Read"},
		{name: "Write"},
		{name: "Exec"},
		{name: "RW", value: 3},
	]
	boundary: "strict"
	order: ["Read", "Write", "Exec"]
}
`

// ColorCUE declares a string enumeration with a settable property.
const ColorCUE = `package fixtures

enum: Color: {
	bases: ["StrEnum"]
	members: [{name: "Red"}, {name: "Green"}, {name: "Blue", value: "azure"}]
	capabilities: {
		label: {kind: "property", template: "color {{.Value}}", settable: true}
		shout: {kind: "method", template: "{{.Name}}!"}
	}
}
`

// WriteSpecs writes each file into a fresh temporary directory and returns
// the directory.
func WriteSpecs(t testing.TB, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	return dir
}

// FixtureDir writes the subclass, flag and string fixtures into one
// directory.
func FixtureDir(t testing.TB) string {
	t.Helper()
	return WriteSpecs(t, map[string]string{
		"subclass.cue": SubclassCUE,
		"perm.cue":     PermCUE,
		"color.cue":    ColorCUE,
	})
}
