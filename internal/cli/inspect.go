package cli

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AddioElectronics/enumex/internal/enumex"
)

// MemberInfo describes one member in inspect output.
type MemberInfo struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
	Repr  string `json:"repr"`
}

// CapabilityInfo describes one capability in inspect output.
type CapabilityInfo struct {
	Name  string `json:"name"`
	Kind  string `json:"kind"`
	Unmet bool   `json:"unmet,omitempty"`
}

// InspectResult is the structure of a linked enumeration type.
type InspectResult struct {
	Name         string           `json:"name"`
	Ancestors    []string         `json:"ancestors"`
	Carrier      string           `json:"carrier,omitempty"`
	Abstract     bool             `json:"abstract"`
	Unmet        []string         `json:"unmet,omitempty"`
	Members      []MemberInfo     `json:"members"`
	Aliases      []MemberInfo     `json:"aliases,omitempty"`
	Capabilities []CapabilityInfo `json:"capabilities,omitempty"`

	// Flag types only
	Flag     bool   `json:"flag"`
	Boundary string `json:"boundary,omitempty"`
	FlagMask int64  `json:"flag_mask,omitempty"`
	AllBits  int64  `json:"all_bits,omitempty"`
}

// NewInspectCommand creates the inspect command.
func NewInspectCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <specs-dir> <type>",
		Short: "Show the structure of a linked enum type",
		Long: `Link the specs in a directory and describe one enum type: its
ancestry, canonical members, aliases, capabilities, unmet contract and,
for flag types, the boundary policy and bit masks.

Examples:
  enumex inspect ./specs Perm
  enumex inspect ./specs B --format json`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(rootOpts, args[0], args[1], cmd)
		},
	}
	return cmd
}

func runInspect(opts *RootOptions, specsDir, typeName string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	reg, _, err := LinkSpecs(specsDir)
	if err != nil {
		_ = formatter.Error(ErrCodeLinkFailed, err.Error(), nil)
		return err
	}

	t, ok := reg.Type(typeName)
	if !ok {
		msg := fmt.Sprintf("unknown type %q", typeName)
		_ = formatter.Error(ErrCodeNotFound, msg, nil)
		return NewExitError(ExitCommandError, msg)
	}

	result := Inspect(t)
	return formatter.Render(result, func(w io.Writer) { writeInspectText(w, result) })
}

// Inspect summarizes a linked type.
func Inspect(t *enumex.Type) InspectResult {
	r := InspectResult{
		Name:     t.Name(),
		Abstract: t.Abstract(),
		Unmet:    t.Unmet(),
		Members:  []MemberInfo{},
		Flag:     t.IsFlag(),
	}

	for p := t.Parent(); p != nil; p = p.Parent() {
		r.Ancestors = append(r.Ancestors, p.Name())
	}
	if c := t.Carrier(); c != nil {
		r.Carrier = c.Name()
	}

	for _, m := range t.Members() {
		r.Members = append(r.Members, MemberInfo{Name: m.Name(), Value: m.Value(), Repr: m.Repr()})
	}

	aliases := t.Aliases()
	names := make([]string, 0, len(aliases))
	for name := range aliases {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		m := aliases[name]
		r.Aliases = append(r.Aliases, MemberInfo{Name: name, Value: m.Value(), Repr: m.Repr()})
	}

	for _, name := range t.Capabilities() {
		c, _ := t.Capability(name)
		r.Capabilities = append(r.Capabilities, CapabilityInfo{
			Name:  name,
			Kind:  string(c.Kind()),
			Unmet: t.IsUnmet(name),
		})
	}

	if b, ok := t.Boundary(); ok {
		r.Boundary = string(b)
		r.FlagMask = t.FlagMask()
		r.AllBits = t.AllBits()
	}
	return r
}

func writeInspectText(w io.Writer, r InspectResult) {
	kind := "enum"
	if r.Flag {
		kind = "flag"
	}
	if r.Abstract {
		kind = "abstract " + kind
	}
	fmt.Fprintf(w, "%s %s\n", kind, r.Name)
	if len(r.Ancestors) > 0 {
		fmt.Fprintf(w, "  ancestors: %s\n", strings.Join(r.Ancestors, " → "))
	}
	if r.Carrier != "" {
		fmt.Fprintf(w, "  carrier:   %s\n", r.Carrier)
	}
	if r.Flag {
		fmt.Fprintf(w, "  boundary:  %s\n", r.Boundary)
		fmt.Fprintf(w, "  flag mask: %#b (all bits %#b)\n", r.FlagMask, r.AllBits)
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Members (%d):\n", len(r.Members))
	for _, m := range r.Members {
		fmt.Fprintf(w, "  %s\n", m.Repr)
	}
	if len(r.Aliases) > 0 {
		fmt.Fprintln(w, "Aliases:")
		for _, m := range r.Aliases {
			fmt.Fprintf(w, "  %s = %v\n", m.Name, m.Value)
		}
	}
	if len(r.Capabilities) > 0 {
		fmt.Fprintln(w, "Capabilities:")
		for _, c := range r.Capabilities {
			suffix := ""
			if c.Unmet {
				suffix = " (abstract)"
			}
			fmt.Fprintf(w, "  %s %s%s\n", c.Kind, c.Name, suffix)
		}
	}
	if r.Abstract {
		fmt.Fprintf(w, "\nUnmet: %s\n", strings.Join(r.Unmet, ", "))
	}
}
