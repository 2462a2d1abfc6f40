package compiler

import (
	"context"
	"testing"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AddioElectronics/enumex/internal/enumex"
	"github.com/AddioElectronics/enumex/internal/ir"
	"github.com/AddioElectronics/enumex/internal/testutil"
)

func compileAll(t *testing.T, src string) []ir.EnumDecl {
	t.Helper()
	v := cuecontext.New().CompileString(src)
	require.NoError(t, v.Err())

	iter, err := v.LookupPath(cue.ParsePath("enum")).Fields()
	require.NoError(t, err)

	var decls []ir.EnumDecl
	for iter.Next() {
		d, err := CompileEnum(iter.Value())
		require.NoError(t, err)
		decls = append(decls, *d)
	}
	return decls
}

func linkAll(t *testing.T, src string) *enumex.Registry {
	t.Helper()
	reg := enumex.NewRegistry()
	_, err := Link(compileAll(t, src), reg)
	require.NoError(t, err)
	return reg
}

func TestLinkSubclass(t *testing.T) {
	reg := enumex.NewRegistry()
	types, err := Link(compileAll(t, testutil.SubclassCUE), reg)
	require.NoError(t, err)
	require.Len(t, types, 2)
	assert.Equal(t, "A", types[0].Name())
	assert.Equal(t, "B", types[1].Name())

	a, ok := reg.Type("A")
	require.True(t, ok)
	b, ok := reg.Type("B")
	require.True(t, ok)

	assert.True(t, a.Abstract())
	assert.Equal(t, []string{"describe"}, a.Unmet())
	assert.False(t, b.Abstract())
	assert.Equal(t, []string{"Val1", "Val2", "Val3", "Val4"}, b.Names())
}

func TestLinkDescribeContract(t *testing.T) {
	reg := linkAll(t, testutil.SubclassCUE)
	a, _ := reg.Type("A")
	b, _ := reg.Type("B")
	ctx := context.Background()

	for _, m := range a.Members() {
		_, err := m.Call(ctx, "describe")
		assert.True(t, enumex.HasCode(err, enumex.CodeAbstractAccess), "A.%s", m.Name())
	}

	want := []string{"Val1 = 1", "Val2 = 2", "Val3 = 4", "Val4 = 8"}
	for i, m := range b.Members() {
		got, err := m.Call(ctx, "describe")
		require.NoError(t, err)
		assert.Equal(t, want[i], got)
	}

	_, err := a.New(1)
	assert.True(t, enumex.HasCode(err, enumex.CodeAbstractInstantiation))
}

func TestLinkComposition(t *testing.T) {
	reg := linkAll(t, testutil.SubclassCUE)
	a, _ := reg.Type("A")
	b, _ := reg.Type("B")

	res, err := b.MustMember("Val3").Or(a.MustMember("Val1"))
	require.NoError(t, err)
	m, ok := res.(*enumex.Member)
	require.True(t, ok)
	assert.Same(t, b, m.Type())
	assert.Equal(t, int64(5), m.Value())
}

func TestLinkFlagsAndOrder(t *testing.T) {
	reg := linkAll(t, testutil.PermCUE)
	perm, ok := reg.Type("Perm")
	require.True(t, ok)

	assert.Equal(t, []string{"Read", "Write", "Exec"}, perm.Names())
	assert.Equal(t, int64(7), perm.FlagMask())
	assert.False(t, perm.MustMember("RW").Canonical())

	boundary, ok := perm.Boundary()
	require.True(t, ok)
	assert.Equal(t, enumex.Strict, boundary)

	_, err := perm.New(8)
	assert.True(t, enumex.HasCode(err, enumex.CodeUndefinedFlagBits))
}

func TestLinkSettableProperty(t *testing.T) {
	reg := linkAll(t, testutil.ColorCUE)
	color, _ := reg.Type("Color")
	red := color.MustMember("Red")
	ctx := context.Background()

	got, err := red.Get(ctx, "label")
	require.NoError(t, err)
	assert.Equal(t, "color red", got)

	require.NoError(t, red.Set(ctx, "label", "crimson"))
	got, err = red.Get(ctx, "label")
	require.NoError(t, err)
	assert.Equal(t, "crimson", got)

	green, err := color.MustMember("Green").Get(ctx, "label")
	require.NoError(t, err)
	assert.Equal(t, "color green", green, "assignment is per member")

	require.NoError(t, red.Delete(ctx, "label"))
	got, err = red.Get(ctx, "label")
	require.NoError(t, err)
	assert.Equal(t, "color red", got)

	shout, err := color.MustMember("Blue").Call(ctx, "shout")
	require.NoError(t, err)
	assert.Equal(t, "Blue!", shout)
}

func TestLinkSettablePropertyPerType(t *testing.T) {
	reg := linkAll(t, `
		enum: Shade: {
			bases: ["Enum"]
			members: [{name: "X", value: 1}]
			capabilities: label: {kind: "property", template: "{{.Type}} {{.Name}}", settable: true}
		}
		enum: Tint: {
			bases: ["Shade"]
			members: [{name: "Y", value: 2}]
		}
	`)
	shade, _ := reg.Type("Shade")
	tint, _ := reg.Type("Tint")
	ctx := context.Background()

	require.NoError(t, tint.MustMember("X").Set(ctx, "label", "tinted"))

	got, err := tint.MustMember("X").Get(ctx, "label")
	require.NoError(t, err)
	assert.Equal(t, "tinted", got)

	got, err = shade.MustMember("X").Get(ctx, "label")
	require.NoError(t, err)
	assert.Equal(t, "Shade X", got, "subclass assignment leaves the ancestor member alone")

	require.NoError(t, shade.MustMember("X").Set(ctx, "label", "shaded"))
	got, err = tint.MustMember("X").Get(ctx, "label")
	require.NoError(t, err)
	assert.Equal(t, "tinted", got)
}

func TestLinkReadOnlyProperty(t *testing.T) {
	reg := linkAll(t, `
		enum: Size: {
			bases: ["IntEnum"]
			members: [{name: "S"}, {name: "M"}]
			capabilities: code: {kind: "property", template: "sz-{{.Value}}"}
		}
	`)
	size, _ := reg.Type("Size")
	ctx := context.Background()

	got, err := size.MustMember("M").Get(ctx, "code")
	require.NoError(t, err)
	assert.Equal(t, "sz-2", got)

	err = size.MustMember("M").Set(ctx, "code", "x")
	assert.True(t, enumex.HasCode(err, enumex.CodeNoAttribute))
}

func TestLinkMethodArgs(t *testing.T) {
	reg := linkAll(t, `
		enum: Greet: {
			members: [{name: "Hi", value: "hello"}]
			capabilities: say: {kind: "method", template: "{{.Value}} {{index .Args 0}}"}
		}
	`)
	greet, _ := reg.Type("Greet")

	got, err := greet.MustMember("Hi").Call(context.Background(), "say", "world")
	require.NoError(t, err)
	assert.Equal(t, "hello world", got)

	_, err = greet.MustMember("Hi").Call(context.Background(), "say")
	assert.Error(t, err, "index out of range surfaces as an error")
}

func TestLinkOrderMismatch(t *testing.T) {
	decls := compileAll(t, `
		enum: Bad: {
			bases: ["Enum"]
			members: [{name: "A"}, {name: "B"}]
			order: ["B", "A"]
		}
	`)
	_, err := Link(decls, enumex.NewRegistry())
	assert.True(t, enumex.HasCode(err, enumex.CodeOrderMismatch))
}

func TestLinkCycle(t *testing.T) {
	_, err := Link([]ir.EnumDecl{decl("A", "B"), decl("B", "A")}, enumex.NewRegistry())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "inheritance cycle")
}

func TestLinkUnknownBase(t *testing.T) {
	_, err := Link([]ir.EnumDecl{decl("A", "Nope")}, enumex.NewRegistry())
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown base "Nope"`)
}

func TestLinkBoundaryOnNonFlag(t *testing.T) {
	d := decl("A", "Enum")
	d.Boundary = "keep"
	_, err := Link([]ir.EnumDecl{d}, enumex.NewRegistry())
	assert.True(t, enumex.HasCode(err, enumex.CodeInvalidValue))
}

func TestLinkTwiceFails(t *testing.T) {
	reg := enumex.NewRegistry()
	decls := []ir.EnumDecl{decl("A", "Enum")}
	_, err := Link(decls, reg)
	require.NoError(t, err)

	_, err = Link(decls, reg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")
}

func TestLinkAcrossCalls(t *testing.T) {
	reg := enumex.NewRegistry()
	_, err := Link([]ir.EnumDecl{decl("Base", "IntEnum")}, reg)
	require.NoError(t, err)

	types, err := Link([]ir.EnumDecl{decl("Derived", "Base")}, reg)
	require.NoError(t, err)
	assert.Equal(t, []string{"XBase", "XDerived"}, types[0].Names())
}
