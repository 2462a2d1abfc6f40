package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario defines a conformance test scenario.
// Scenarios link a set of enumeration specs, evaluate a sequence of
// expressions against them, and assert on the resulting types and trace.
type Scenario struct {
	// Name uniquely identifies this scenario.
	// It also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Specs lists paths to CUE spec files to compile and link.
	// Paths are relative to the scenario file location.
	Specs []string `yaml:"specs"`

	// Steps are evaluated in order against a fresh registry.
	Steps []Step `yaml:"steps"`

	// Assertions validate the linked types and the trace.
	// Supported types: member_order, abstract, concrete, unmet, trace_contains
	Assertions []Assertion `yaml:"assertions,omitempty"`

	// RunID is an optional fixed run identifier. When set it is recorded
	// in the golden snapshot.
	RunID string `yaml:"run_id,omitempty"`
}

// Step is a single expression evaluation.
type Step struct {
	// Eval is the expression, e.g. "B.Val3 | A.Val1".
	Eval string `yaml:"eval"`

	// Expect validates the outcome. If nil the step must merely not fail.
	Expect *ExpectClause `yaml:"expect,omitempty"`
}

// ExpectClause specifies the expected outcome of a step.
// Only the fields that are set are compared.
type ExpectClause struct {
	// Value is compared against the raw result by its printed form, so
	// `value: 5` matches a member carrying int64(5).
	Value any `yaml:"value,omitempty"`

	// Type is the result's type name ("B", "type", "capability", ...).
	Type string `yaml:"type,omitempty"`

	// Name is the member name, composites included ("Val1|Val3").
	Name string `yaml:"name,omitempty"`

	// Error expects evaluation to fail. It matches either the error code
	// (e.g. ABSTRACT_INSTANTIATION) or a substring of the message.
	Error string `yaml:"error,omitempty"`
}

// Assertion validates a linked type or the trace.
type Assertion struct {
	// Type specifies the assertion type:
	// - "member_order": canonical member names equal Names
	// - "abstract": the type has unmet capabilities
	// - "concrete": the type has none
	// - "unmet": the unmet capability names equal Names
	// - "trace_contains": a step evaluated Expr without error
	Type string `yaml:"type"`

	// TypeName names the enumeration type (all but trace_contains).
	TypeName string `yaml:"type_name,omitempty"`

	// Names is the expected name list (member_order, unmet).
	Names []string `yaml:"names,omitempty"`

	// Expr is the expression to find (trace_contains).
	Expr string `yaml:"expr,omitempty"`
}

// Assertion type constants.
const (
	AssertMemberOrder   = "member_order"
	AssertAbstract      = "abstract"
	AssertConcrete      = "concrete"
	AssertUnmet         = "unmet"
	AssertTraceContains = "trace_contains"
)

// LoadScenario reads and parses a scenario YAML file. Spec paths are
// resolved relative to the scenario file's directory.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	return LoadScenarioWithBasePath(path, filepath.Dir(path))
}

// LoadScenarioWithBasePath reads and parses a scenario YAML file,
// resolving spec paths relative to the provided base path.
func LoadScenarioWithBasePath(path, basePath string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}

	// Resolve spec paths relative to base path BEFORE validation
	for i, specPath := range scenario.Specs {
		if !filepath.IsAbs(specPath) && basePath != "" {
			scenario.Specs[i] = filepath.Join(basePath, specPath)
		}
	}

	if err := validateScenario(scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return scenario, nil
}

// ParseScenario decodes scenario YAML without resolving or validating
// spec paths.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Specs) == 0 {
		return fmt.Errorf("specs list is required and must be non-empty")
	}

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for _, specPath := range s.Specs {
		if _, err := os.Stat(specPath); os.IsNotExist(err) {
			return fmt.Errorf("spec file not found: %s", specPath)
		}
	}

	for i, step := range s.Steps {
		if step.Eval == "" {
			return fmt.Errorf("steps[%d]: eval is required", i)
		}
		if step.Expect != nil && step.Expect.Error != "" {
			if step.Expect.Value != nil || step.Expect.Type != "" || step.Expect.Name != "" {
				return fmt.Errorf("steps[%d].expect: error cannot be combined with value, type or name", i)
			}
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertMemberOrder, AssertUnmet:
		if a.TypeName == "" {
			return fmt.Errorf("assertions[%d]: type_name is required for %s", index, a.Type)
		}
		if a.Type == AssertMemberOrder && len(a.Names) == 0 {
			return fmt.Errorf("assertions[%d]: names list is required for member_order", index)
		}
	case AssertAbstract, AssertConcrete:
		if a.TypeName == "" {
			return fmt.Errorf("assertions[%d]: type_name is required for %s", index, a.Type)
		}
	case AssertTraceContains:
		if a.Expr == "" {
			return fmt.Errorf("assertions[%d]: expr is required for trace_contains", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
