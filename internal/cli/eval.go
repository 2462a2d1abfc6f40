package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/AddioElectronics/enumex/internal/enumex"
	"github.com/AddioElectronics/enumex/internal/eval"
)

// EvalFailure is the details payload of a failed evaluation.
type EvalFailure struct {
	Expr string `json:"expr"`
	Kind string `json:"kind,omitempty"` // enumex error code, when there is one
}

// NewEvalCommand creates the eval command.
func NewEvalCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "eval <specs-dir> <expr>",
		Short: "Evaluate an expression against linked enum types",
		Long: `Link the specs in a directory and evaluate one expression.

Expressions select members (Perm.R), look them up by value (Perm(3)),
compose flags (Perm.R | Perm.W, ~Perm.X), test membership (Perm.R in p)
and call methods or read properties (Color.RED.describe()).

Exit codes:
  0 - Expression evaluated
  1 - Evaluation raised an error
  2 - Command error (invalid paths, unlinkable specs, etc.)

Examples:
  enumex eval ./specs 'Perm.R | Perm.W'
  enumex eval ./specs 'Perm(7)' --format json`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEval(rootOpts, args[0], args[1], cmd)
		},
	}
	return cmd
}

func runEval(opts *RootOptions, specsDir, expr string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	reg, types, err := LinkSpecs(specsDir)
	if err != nil {
		_ = formatter.Error(ErrCodeLinkFailed, err.Error(), nil)
		return err
	}
	formatter.VerboseLog("Linked %d enum(s) from %s", len(types), specsDir)

	result, err := evaluate(cmd.Context(), reg, expr)
	if err != nil {
		_ = formatter.Error(ErrCodeEvalFailed, err.Error(), evalFailure(expr, err))
		return WrapExitError(ExitFailure, "evaluation failed", err)
	}

	return formatter.Render(result, func(w io.Writer) { fmt.Fprintln(w, result.Text) })
}

// evaluate runs one expression against reg and summarizes the value.
func evaluate(ctx context.Context, reg *enumex.Registry, expr string) (eval.Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	v, err := eval.New(reg).EvalString(ctx, expr)
	if err != nil {
		return eval.Result{}, err
	}
	return eval.Describe(v), nil
}

func evalFailure(expr string, err error) EvalFailure {
	f := EvalFailure{Expr: expr}
	var e *enumex.Error
	if errors.As(err, &e) {
		f.Kind = string(e.Code)
	}
	return f
}
