package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/phanxgames/morph"
)

var (
	styleLabel  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	styleValue  = lipgloss.NewStyle().Foreground(lipgloss.Color("36"))
	styleHeader = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	styleCell   = lipgloss.NewStyle().Padding(0, 1)
	styleStatic = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Padding(0, 1)
)

// newPlanCmd creates the plan command, which composes a transition and
// prints every node with its start and end placement.
func newPlanCmd(opts *rootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "plan [scene.yaml]",
		Short: "Print the node table of a composed transition",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := composeTransition(cmd.Context(), opts, args[0])
			if err != nil {
				return err
			}
			defer t.animator.Cleanup()
			return writePlan(cmd.OutOrStdout(), t.animator)
		},
	}
}

func writePlan(w io.Writer, a *morph.Animator) error {
	summary := []struct{ label, value string }{
		{"transition", a.ID.String()},
		{"growth", a.Growth().String()},
		{"flow", a.Flow().String()},
		{"duration", a.Duration().String()},
	}
	for _, s := range summary {
		if _, err := fmt.Fprintf(w, "%s %s\n", styleLabel.Render(fmt.Sprintf("%-10s", s.label)), styleValue.Render(s.value)); err != nil {
			return err
		}
	}

	static := map[int]bool{}
	tbl := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "KIND", "NAME", "SIDE", "START", "END")
	for i, n := range a.Nodes() {
		end := "static"
		if p, ok := n.EndPlacement(); ok {
			end = p.String()
		} else {
			static[i] = true
		}
		tbl.Row(strconv.Itoa(int(n.ID)), n.Kind.String(), n.Name, sideOf(n), n.StartPlacement().String(), end)
	}
	tbl.StyleFunc(func(row, col int) lipgloss.Style {
		switch {
		case row == table.HeaderRow:
			return styleHeader
		case col == 5 && static[row]:
			return styleStatic
		default:
			return styleCell
		}
	})
	_, err := fmt.Fprintln(w, tbl.String())
	return err
}

// sideOf names the scene a node belongs to, or "-" for nodes shared by
// both.
func sideOf(n *morph.Node) string {
	switch n.Kind {
	case morph.NodeBase, morph.NodeAcetate, morph.NodeExiting, morph.NodeEntering:
		return n.Side.String()
	default:
		return "-"
	}
}
