package harness

// TraceEvent records one evaluated step.
// Exactly one of the result fields (Type/Name/Value/Text) or Error is set.
type TraceEvent struct {
	Seq   int64  `json:"seq"`
	Expr  string `json:"expr"`
	Type  string `json:"type,omitempty"`
	Name  string `json:"name,omitempty"`
	Value any    `json:"value,omitempty"`
	Text  string `json:"text,omitempty"`
	Error string `json:"error,omitempty"`

	// Code is the enumeration error code when Error came from the core.
	Code string `json:"code,omitempty"`
}

// Failed reports whether the step raised an error.
func (e TraceEvent) Failed() bool { return e.Error != "" }

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if every expect clause and assertion matched.
	Pass bool `json:"pass"`

	// RunID identifies this execution in logs.
	RunID string `json:"run_id"`

	// Types lists the enumeration types linked from the scenario specs,
	// in link order.
	Types []string `json:"types"`

	// Trace contains one event per step, in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
// Used as the starting point for test execution.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Types:  []string{},
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddTrace appends a step event to the trace.
func (r *Result) AddTrace(event TraceEvent) {
	r.Trace = append(r.Trace, event)
}
