// Package harness provides conformance testing for enumeration specs.
//
// The harness links CUE enum specs into a fresh registry, evaluates a
// sequence of expressions against it, and checks the outcomes as
// executable contract tests.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	specs:
//	  - specs/subclass.cue
//	steps:
//	  - eval: B.Val3 | A.Val1
//	    expect: { value: 5, type: B, name: "Val1|Val3" }
//	  - eval: A(1)
//	    expect: { error: ABSTRACT_INSTANTIATION }
//	assertions:
//	  - type: member_order
//	    type_name: B
//	    names: [Val1, Val2, Val3, Val4]
//	  - type: unmet
//	    type_name: A
//	    names: [describe]
//
// # Assertion Types
//
//   - member_order: canonical member names of a type
//   - abstract, concrete: whether a type has unmet capabilities
//   - unmet: the exact unmet capability set
//   - trace_contains: an expression was evaluated without error
//
// # Deterministic Testing
//
// Every run starts from a new registry, so scenarios never observe each
// other's types. Snapshots are canonical JSON and omit the run ID unless
// the scenario fixes one with run_id, so golden files are byte-stable.
package harness
