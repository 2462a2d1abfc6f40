package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
	"github.com/google/uuid"

	"github.com/AddioElectronics/enumex/internal/compiler"
	"github.com/AddioElectronics/enumex/internal/enumex"
	"github.com/AddioElectronics/enumex/internal/eval"
	"github.com/AddioElectronics/enumex/internal/ir"
	"github.com/AddioElectronics/enumex/internal/testutil"
)

// RunIDGenerator produces the identifier attached to each run.
type RunIDGenerator interface {
	Generate() string
}

// UUIDRunID generates time-ordered UUIDv7 run IDs.
type UUIDRunID struct{}

// Generate returns a fresh UUIDv7 string.
func (UUIDRunID) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Option configures a harness run.
type Option func(*Harness)

// WithRunID overrides the run ID generator. A scenario's own run_id
// still takes precedence.
func WithRunID(gen RunIDGenerator) Option {
	return func(h *Harness) { h.runIDs = gen }
}

// WithLogger sets the logger used during the run. Runs are silent by
// default.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Harness) { h.logger = logger }
}

// Harness is the test execution engine.
// Each run links its specs into a fresh registry and evaluates the steps
// against it.
type Harness struct {
	reg    *enumex.Registry
	eval   *eval.Evaluator
	runIDs RunIDGenerator
	logger *slog.Logger
	seq    int64
}

// Run executes a test scenario and returns the result.
//
// Execution flow:
// 1. Create a fresh registry
// 2. Load, compile, validate and link the scenario specs
// 3. Evaluate each step, checking its expect clause
// 4. Evaluate assertions against the linked types and trace
//
// Failures to load or link the specs are returned as errors; step and
// assertion failures are recorded on the result.
func Run(scenario *Scenario, opts ...Option) (*Result, error) {
	reg := enumex.NewRegistry()
	h := &Harness{
		reg:    reg,
		eval:   eval.New(reg),
		runIDs: UUIDRunID{},
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)), // Suppress logs in tests
	}
	for _, opt := range opts {
		opt(h)
	}
	if scenario.RunID != "" {
		h.runIDs = testutil.NewFixedRunID(scenario.RunID)
	}

	ctx := context.Background()
	result := NewResult()
	result.RunID = h.runIDs.Generate()
	logger := h.logger.With("scenario", scenario.Name, "run_id", result.RunID)

	decls, err := LoadSpecs(scenario.Specs)
	if err != nil {
		return nil, fmt.Errorf("failed to load specs: %w", err)
	}

	types, err := h.link(decls)
	if err != nil {
		return nil, fmt.Errorf("failed to link specs: %w", err)
	}
	for _, t := range types {
		result.Types = append(result.Types, t.Name())
	}
	logger.Debug("specs linked", "types", len(types))

	for i, step := range scenario.Steps {
		event := h.evaluate(ctx, step.Eval)
		result.AddTrace(event)
		logger.Debug("step evaluated", "seq", event.Seq, "expr", event.Expr, "error", event.Error)

		if msg := checkExpect(i, step, event); msg != "" {
			result.AddError(msg)
		}
	}

	for _, msg := range EvaluateAssertions(result, scenario.Assertions, reg) {
		result.AddError(msg)
	}

	logger.Info("scenario finished", "pass", result.Pass, "errors", len(result.Errors))
	return result, nil
}

// link validates the declarations as a set and links them into the
// harness registry.
func (h *Harness) link(decls []ir.EnumDecl) ([]*enumex.Type, error) {
	if verrs := compiler.Validate(decls); len(verrs) > 0 {
		errs := make([]error, len(verrs))
		for i, e := range verrs {
			errs[i] = e
		}
		return nil, errors.Join(errs...)
	}
	return compiler.Link(decls, h.reg)
}

// evaluate runs one expression and records it as a trace event.
func (h *Harness) evaluate(ctx context.Context, expr string) TraceEvent {
	h.seq++
	event := TraceEvent{Seq: h.seq, Expr: expr}

	v, err := h.eval.EvalString(ctx, expr)
	if err != nil {
		event.Error = err.Error()
		var e *enumex.Error
		if errors.As(err, &e) {
			event.Code = string(e.Code)
		}
		return event
	}

	r := eval.Describe(v)
	event.Type = r.Type
	event.Name = r.Name
	event.Value = r.Value
	event.Text = r.Text
	return event
}

// checkExpect compares a step's event with its expect clause and returns
// a failure message, or "" if the step matched.
func checkExpect(index int, step Step, event TraceEvent) string {
	prefix := fmt.Sprintf("steps[%d] %q", index, step.Eval)
	exp := step.Expect

	if exp != nil && exp.Error != "" {
		if !event.Failed() {
			return fmt.Sprintf("%s: expected error %q, got %s", prefix, exp.Error, event.Text)
		}
		if event.Code != exp.Error && !strings.Contains(event.Error, exp.Error) {
			return fmt.Sprintf("%s: expected error %q, got %q", prefix, exp.Error, event.Error)
		}
		return ""
	}

	if event.Failed() {
		return fmt.Sprintf("%s: unexpected error: %s", prefix, event.Error)
	}
	if exp == nil {
		return ""
	}

	if exp.Value != nil && fmt.Sprint(exp.Value) != fmt.Sprint(event.Value) {
		return fmt.Sprintf("%s: value: expected %v, got %v", prefix, exp.Value, event.Value)
	}
	if exp.Type != "" && exp.Type != event.Type {
		return fmt.Sprintf("%s: type: expected %s, got %s", prefix, exp.Type, event.Type)
	}
	if exp.Name != "" && exp.Name != event.Name {
		return fmt.Sprintf("%s: name: expected %s, got %s", prefix, exp.Name, event.Name)
	}
	return ""
}

// LoadSpecs compiles the enumeration declarations of each spec path.
// A path may name a single .cue file or a directory holding one CUE
// package. Declarations are returned in path order, then field order.
func LoadSpecs(paths []string) ([]ir.EnumDecl, error) {
	ctx := cuecontext.New()
	var decls []ir.EnumDecl

	for _, path := range paths {
		value, err := buildSpec(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}

		enums := value.LookupPath(cue.ParsePath("enum"))
		if !enums.Exists() {
			continue
		}
		iter, err := enums.Fields()
		if err != nil {
			return nil, fmt.Errorf("%s: iterating enums: %w", path, err)
		}
		for iter.Next() {
			d, err := compiler.CompileEnum(iter.Value())
			if err != nil {
				return nil, fmt.Errorf("%s: enum.%s: %w", path, iter.Label(), err)
			}
			decls = append(decls, *d)
		}
	}

	if len(decls) == 0 {
		return nil, fmt.Errorf("no enum declarations found in specs")
	}
	return decls, nil
}

func buildSpec(ctx *cue.Context, path string) (cue.Value, error) {
	info, err := os.Stat(path)
	if err != nil {
		return cue.Value{}, err
	}

	var value cue.Value
	if info.IsDir() {
		instances := load.Instances([]string{"."}, &load.Config{Dir: path})
		if len(instances) == 0 {
			return cue.Value{}, fmt.Errorf("no CUE instances loaded")
		}
		if instances[0].Err != nil {
			return cue.Value{}, fmt.Errorf("loading CUE files: %w", instances[0].Err)
		}
		value = ctx.BuildInstance(instances[0])
	} else {
		data, err := os.ReadFile(path)
		if err != nil {
			return cue.Value{}, err
		}
		value = ctx.CompileBytes(data, cue.Filename(path))
	}

	if err := value.Err(); err != nil {
		return cue.Value{}, fmt.Errorf("building CUE value: %w", err)
	}
	return value, nil
}
