package eval

import (
	"fmt"
	"strconv"

	"github.com/AddioElectronics/enumex/internal/enumex"
)

// Result is the printable summary of an evaluated value, shared by the CLI
// and the scenario harness.
type Result struct {
	Value any    `json:"value"`
	Type  string `json:"type,omitempty"`
	Name  string `json:"name,omitempty"`
	Text  string `json:"text"`
}

// Describe summarizes v. Members report their raw value, type and name;
// composites carry their composed name.
func Describe(v any) Result {
	switch x := v.(type) {
	case *enumex.Member:
		return Result{Value: x.Value(), Type: x.Type().Name(), Name: x.Name(), Text: x.Repr()}
	case *enumex.Type:
		return Result{Value: x.Name(), Type: "type", Name: x.Name(), Text: fmt.Sprintf("<enum %s>", strconv.Quote(x.Name()))}
	case *enumex.Capability:
		owner := ""
		if x.Owner() != nil {
			owner = x.Owner().Name()
		}
		return Result{Value: x.Name(), Type: "capability", Name: x.Name(), Text: fmt.Sprintf("<%s %s of %s>", x.Kind(), x.Name(), owner)}
	case enumex.BoundMethod:
		return Result{Type: "bound method", Text: "<bound method>"}
	case string:
		return Result{Value: x, Text: strconv.Quote(x)}
	case nil:
		return Result{Text: "nil"}
	}
	return Result{Value: v, Text: fmt.Sprint(v)}
}
