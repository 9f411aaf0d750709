package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/leapstack-labs/leapflow/internal/cli/output"
	"github.com/leapstack-labs/leapflow/internal/connect"
	"github.com/leapstack-labs/leapflow/internal/registry"
	"github.com/leapstack-labs/leapflow/pkg/core"
	"github.com/spf13/cobra"
)

// ErrConnectionRefused is returned when connect-check finds the pair illegal.
var ErrConnectionRefused = errors.New("connection refused")

// NewConnectCheckCommand creates the connect-check command.
func NewConnectCheckCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "connect-check <source-type> [target-type]",
		Short: "Check whether one node type may connect to another",
		Long: `Check a source/target type pair against the connection rules and show
the stroke an accepted edge would get. With only a source type, list
every type it may connect to.

Exits non-zero when the pair is refused.`,
		Example: `  # Is the pair legal?
  leapflow connect-check dataModel atomicAnalysis

  # Where can a pre-check go?
  leapflow connect-check preCheck`,
		Args: cobra.RangeArgs(1, 2),
		ValidArgsFunction: func(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
			if len(args) >= 2 {
				return nil, cobra.ShellCompDirectiveNoFileComp
			}
			var names []string
			for _, s := range registry.Default().Types() {
				names = append(names, string(s.Type))
			}
			return names, cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				return runConnectTargets(cmd, args[0])
			}
			return runConnectCheck(cmd, args[0], args[1])
		},
	}
	return cmd
}

// ConnectCheckOutput is the JSON form of a connect-check verdict.
type ConnectCheckOutput struct {
	Source  string          `json:"source"`
	Target  string          `json:"target"`
	Allowed bool            `json:"allowed"`
	Message string          `json:"message,omitempty"`
	Style   *core.EdgeStyle `json:"style,omitempty"`
}

func runConnectCheck(cmd *cobra.Command, source, target string) error {
	r := NewCommandContext(cmd).Renderer
	reg := registry.Default()

	for _, t := range []string{source, target} {
		if _, err := reg.Resolve(t); err != nil {
			return err
		}
	}

	out := ConnectCheckOutput{Source: source, Target: target}
	style, err := connect.Validate(core.NodeType(source), core.NodeType(target))
	if err != nil {
		out.Message = connect.UserMessage(err)
	} else {
		out.Allowed = true
		out.Style = &style
	}

	switch r.EffectiveMode() {
	case output.ModeJSON:
		if err := r.JSON(out); err != nil {
			return err
		}
	default:
		styles := r.Styles()
		if out.Allowed {
			r.Success(fmt.Sprintf("%s → %s is allowed", source, target))
			line := fmt.Sprintf("stroke %s, width %g", style.Stroke, style.StrokeWidth)
			if style.Dashed() {
				line += ", dashed " + style.StrokeDasharray
			}
			r.Printf("  %s\n", styles.Swatch(style.Stroke, line))
		} else {
			r.Error(fmt.Sprintf("%s → %s: %s", source, target, out.Message))
		}
	}

	if !out.Allowed {
		return fmt.Errorf("%w: %s", ErrConnectionRefused, out.Message)
	}
	return nil
}

func runConnectTargets(cmd *cobra.Command, source string) error {
	r := NewCommandContext(cmd).Renderer
	if _, err := registry.Default().Resolve(source); err != nil {
		return err
	}

	targets := connect.Targets(core.NodeType(source))
	names := make([]string, len(targets))
	for i, t := range targets {
		names[i] = string(t)
	}

	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(map[string]any{"source": source, "targets": names})
	default:
		if len(names) == 0 {
			r.Muted(fmt.Sprintf("%s is terminal and cannot connect onward", source))
			return nil
		}
		r.Printf("%s → %s\n", source, strings.Join(names, ", "))
		return nil
	}
}
