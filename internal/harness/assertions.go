package harness

import (
	"fmt"
	"slices"
	"strings"

	"github.com/AddioElectronics/enumex/internal/enumex"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for _, event := range e.Trace {
			if event.Failed() {
				fmt.Fprintf(&buf, "  [%d] %s -> error: %s\n", event.Seq, event.Expr, event.Error)
			} else {
				fmt.Fprintf(&buf, "  [%d] %s -> %s\n", event.Seq, event.Expr, event.Text)
			}
		}
	}

	return buf.String()
}

// assertMemberOrder checks the canonical member names of a type.
func assertMemberOrder(t *enumex.Type, assertion Assertion) error {
	got := t.Names()
	if !slices.Equal(got, assertion.Names) {
		return &AssertionError{
			Type:     AssertMemberOrder,
			Expected: fmt.Sprintf("%s members %v", t.Name(), assertion.Names),
			Actual:   fmt.Sprintf("%v", got),
		}
	}
	return nil
}

// assertAbstract checks whether a type is abstract.
func assertAbstract(t *enumex.Type, want bool) error {
	if t.Abstract() == want {
		return nil
	}
	kind := AssertAbstract
	if !want {
		kind = AssertConcrete
	}
	return &AssertionError{
		Type:     kind,
		Expected: fmt.Sprintf("%s is %s", t.Name(), kind),
		Actual:   fmt.Sprintf("unmet capabilities %v", t.Unmet()),
	}
}

// assertUnmet checks the unmet capability set, order-insensitively.
func assertUnmet(t *enumex.Type, assertion Assertion) error {
	got := t.Unmet()
	want := slices.Clone(assertion.Names)
	slices.Sort(got)
	slices.Sort(want)
	if !slices.Equal(got, want) {
		return &AssertionError{
			Type:     AssertUnmet,
			Expected: fmt.Sprintf("%s unmet %v", t.Name(), want),
			Actual:   fmt.Sprintf("%v", got),
		}
	}
	return nil
}

// assertTraceContains checks that the expression was evaluated
// successfully at least once.
func assertTraceContains(trace []TraceEvent, assertion Assertion) error {
	for _, event := range trace {
		if event.Expr == assertion.Expr && !event.Failed() {
			return nil
		}
	}
	return &AssertionError{
		Type:     AssertTraceContains,
		Expected: fmt.Sprintf("successful step %q", assertion.Expr),
		Actual:   "not found in trace",
		Trace:    trace,
	}
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a slice of error messages for failed assertions.
// The registry supplies the linked types for type assertions.
func EvaluateAssertions(result *Result, assertions []Assertion, reg *enumex.Registry) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		if assertion.Type == AssertTraceContains {
			err = assertTraceContains(result.Trace, assertion)
		} else if t, ok := reg.Type(assertion.TypeName); !ok {
			err = fmt.Errorf("assertion[%d]: unknown type %q", i, assertion.TypeName)
		} else {
			switch assertion.Type {
			case AssertMemberOrder:
				err = assertMemberOrder(t, assertion)
			case AssertAbstract:
				err = assertAbstract(t, true)
			case AssertConcrete:
				err = assertAbstract(t, false)
			case AssertUnmet:
				err = assertUnmet(t, assertion)
			default:
				err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
			}
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}
