package enumex

import (
	"fmt"
	"slices"
	"strings"
)

// splitOrder flattens order entries, each of which may itself be a comma or
// whitespace delimited list of names.
func splitOrder(entries []string) []string {
	var names []string
	for _, e := range entries {
		names = append(names, strings.FieldsFunc(e, func(r rune) bool {
			return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
		})...)
	}
	return names
}

// checkOrder compares a declared order with t's canonical sequence after
// dropping the names that never appear in it: aliases, and for flags the
// zero and multi-bit members. Unknown names are kept so they mismatch.
func checkOrder(t *Type, declared []string) error {
	filtered := make([]string, 0, len(declared))
	for _, n := range declared {
		m, known := t.byName[n]
		if known && (m.name != n || !m.canonical) {
			continue
		}
		filtered = append(filtered, n)
	}
	if slices.Equal(filtered, t.names) {
		return nil
	}
	return &Error{
		Code:      CodeOrderMismatch,
		Message:   fmt.Sprintf("member order does not match declared order: [%s] != [%s]", strings.Join(t.names, ", "), strings.Join(filtered, ", ")),
		Type:      t.name,
		Declared:  filtered,
		Canonical: slices.Clone(t.names),
	}
}
