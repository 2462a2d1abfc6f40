package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/AddioElectronics/enumex/internal/ir"
)

// TraceSnapshot captures the linked types and trace of a scenario run.
// It serializes to canonical JSON for deterministic comparison.
type TraceSnapshot struct {
	ScenarioName string       `json:"scenario_name"`
	RunID        string       `json:"run_id,omitempty"`
	Types        []string     `json:"types"`
	Trace        []TraceEvent `json:"trace"`
}

// toCanonicalMap converts a TraceSnapshot to a map[string]any for canonical JSON serialization.
// Values that have no canonical form (nil, floats, arbitrary objects) are
// represented by their text only.
func (s *TraceSnapshot) toCanonicalMap() map[string]any {
	traceList := make([]any, len(s.Trace))
	for i, event := range s.Trace {
		eventMap := map[string]any{
			"seq":  event.Seq,
			"expr": event.Expr,
		}
		if event.Failed() {
			eventMap["error"] = event.Error
			if event.Code != "" {
				eventMap["code"] = event.Code
			}
		} else {
			eventMap["text"] = event.Text
			if event.Type != "" {
				eventMap["type"] = event.Type
			}
			if event.Name != "" {
				eventMap["name"] = event.Name
			}
			if v, err := ir.FromGo(event.Value); err == nil {
				if _, null := v.(ir.IRNull); !null {
					eventMap["value"] = v
				}
			}
		}
		traceList[i] = eventMap
	}

	types := make([]any, len(s.Types))
	for i, name := range s.Types {
		types[i] = name
	}

	result := map[string]any{
		"scenario_name": s.ScenarioName,
		"types":         types,
		"trace":         traceList,
	}
	if s.RunID != "" {
		result["run_id"] = s.RunID
	}
	return result
}

// Snapshot renders the canonical JSON snapshot of a run. The run ID is
// only included when the scenario fixes it.
func Snapshot(scenario *Scenario, result *Result) ([]byte, error) {
	snapshot := TraceSnapshot{
		ScenarioName: scenario.Name,
		RunID:        scenario.RunID,
		Types:        result.Types,
		Trace:        result.Trace,
	}
	return ir.MarshalCanonical(snapshot.toCanonicalMap())
}

// RunWithGolden executes a scenario and compares the snapshot against a golden file.
// The golden file is stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario, opts ...Option) (*Result, error) {
	t.Helper()

	result, err := Run(scenario, opts...)
	if err != nil {
		return nil, err
	}

	data, err := Snapshot(scenario, result)
	if err != nil {
		return nil, err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, data)

	return result, nil
}
