package testutil

// FixedRunID hands out the same run identifier every time.
//
// Scenario traces embed the run ID, so a fixed one keeps golden files
// byte-identical across runs. Safe for concurrent use.
type FixedRunID struct {
	id string
}

// NewFixedRunID creates a fixed run ID generator.
// If id is empty, Generate() returns "test-run-default".
func NewFixedRunID(id string) *FixedRunID {
	if id == "" {
		id = "test-run-default"
	}
	return &FixedRunID{id: id}
}

// Generate returns the fixed run ID.
//
// Implements harness.RunIDGenerator.
func (g *FixedRunID) Generate() string {
	return g.id
}
