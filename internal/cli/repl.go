package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/AddioElectronics/enumex/internal/enumex"
)

const (
	historyFile = ".enumex_history"
	promptMain  = "enumex> "
	replHelp    = `Commands:
  :types   List linked enum types
  :help    Show this help
  :quit    Exit the REPL
Anything else is evaluated as an expression, e.g. Perm.R | Perm.W`
)

// NewReplCommand creates the repl command.
func NewReplCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "repl <specs-dir>",
		Short: "Interactively evaluate expressions against linked enum types",
		Long: `Link the specs in a directory and start an interactive session.

Each line is evaluated like 'enumex eval'. Errors are printed and the
session continues. Ctrl+C cancels the current line, Ctrl+D exits.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplCommand(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runReplCommand(opts *RootOptions, specsDir string, cmd *cobra.Command) error {
	reg, _, err := LinkSpecs(specsDir)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Error [%s]: %v\n", ErrCodeLinkFailed, err)
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	session := &replSession{ctx: ctx, reg: reg, out: cmd.OutOrStdout()}
	if f, ok := cmd.InOrStdin().(*os.File); ok && isTerminal(f) {
		return session.interactive()
	}
	return session.run(cmd.InOrStdin())
}

type replSession struct {
	ctx context.Context
	reg *enumex.Registry
	out io.Writer
}

// interactive drives the session through a line editor with history.
func (s *replSession) interactive() error {
	fmt.Fprintln(s.out, "enumex REPL\nCtrl+C cancels input, Ctrl+D exits. Type :help for commands.")

	histPath := filepath.Join(os.TempDir(), historyFile)
	if home, err := os.UserHomeDir(); err == nil {
		histPath = filepath.Join(home, historyFile)
	}

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	for {
		line, err := ln.Prompt(promptMain)
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(s.out)
			return nil
		}
		if errors.Is(err, liner.ErrPromptAborted) {
			continue
		}
		if err != nil {
			return err
		}
		if strings.TrimSpace(line) != "" {
			ln.AppendHistory(line)
		}
		if s.handle(line) {
			return nil
		}
	}
}

// run reads one expression per line from r until EOF or :quit.
func (s *replSession) run(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if s.handle(scanner.Text()) {
			return nil
		}
	}
	return scanner.Err()
}

// handle evaluates or dispatches one line. It reports whether the
// session should end.
func (s *replSession) handle(line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}

	if strings.HasPrefix(line, ":") {
		switch strings.ToLower(line) {
		case ":quit", ":q":
			return true
		case ":types":
			for _, t := range s.reg.Types() {
				fmt.Fprintf(s.out, "%s (%d member(s))\n", t.Name(), t.Len())
			}
		case ":help":
			fmt.Fprintln(s.out, replHelp)
		default:
			fmt.Fprintln(s.out, "unknown command. Type :help for commands.")
		}
		return false
	}

	result, err := evaluate(s.ctx, s.reg, line)
	if err != nil {
		fmt.Fprintf(s.out, "error: %v\n", err)
		return false
	}
	fmt.Fprintln(s.out, result.Text)
	return false
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
