package enumex

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMember_Presentation(t *testing.T) {
	color := NewBuilder("Color").Auto("Red").Member("Label", "crimson").MustBuild()
	num := NewBuilder("Num", IntEnum).Member("Two", 2).MustBuild()
	mode := NewBuilder("Mode", StrEnum).Auto("Read").MustBuild()

	tests := []struct {
		name     string
		member   *Member
		wantStr  string
		wantRepr string
	}{
		{"plain enum", color.MustMember("Red"), "Color.Red", "<Color.Red: 1>"},
		{"string value", color.MustMember("Label"), "Color.Label", `<Color.Label: "crimson">`},
		{"int enum renders value", num.MustMember("Two"), "2", "<Num.Two: 2>"},
		{"str enum renders value", mode.MustMember("Read"), "read", `<Mode.Read: "read">`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantStr, tt.member.String())
			assert.Equal(t, tt.wantRepr, tt.member.Repr())
			assert.Equal(t, tt.wantStr, fmt.Sprintf("%v", tt.member))
			assert.Equal(t, tt.wantRepr, fmt.Sprintf("%#v", tt.member))
		})
	}
}

func TestMember_Equal(t *testing.T) {
	num := NewBuilder("Num", IntEnum).Member("One", 1).MustBuild()
	sub := NewBuilder("Sub", num).Member("Two", 2).MustBuild()
	other := NewBuilder("Other", IntEnum).Member("One", 1).MustBuild()
	plain := NewBuilder("Plain").Member("One", 1).MustBuild()

	one := num.MustMember("One")
	assert.True(t, one.Equal(one))
	assert.True(t, one.Equal(sub.MustMember("One")))
	assert.False(t, one.Equal(other.MustMember("One")), "unrelated types never compare equal")
	assert.True(t, one.Equal(1), "integer carriers compare with raw values")
	assert.False(t, plain.MustMember("One").Equal(1), "object carrier members are not raw values")
}

func TestMember_Int64(t *testing.T) {
	num := NewBuilder("Num", IntEnum).Member("One", 1).MustBuild()
	n, ok := num.MustMember("One").Int64()
	assert.True(t, ok)
	assert.Equal(t, int64(1), n)

	mode := NewBuilder("Mode", StrEnum).Auto("Read").MustBuild()
	_, ok = mode.MustMember("Read").Int64()
	assert.False(t, ok)
}

func TestType_MustMemberPanics(t *testing.T) {
	color := NewBuilder("Color").Auto("Red").MustBuild()
	assert.Panics(t, func() { color.MustMember("Blue") })
}

func TestBuilder_MustBuildPanics(t *testing.T) {
	assert.Panics(t, func() { NewBuilder("T", Int).MustBuild() })
}
