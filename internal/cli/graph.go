package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/goccy/go-graphviz"
	"github.com/spf13/cobra"

	"github.com/phanxgames/morph"
)

// graphOpts holds the command-line flags for the graph command.
type graphOpts struct {
	svg string // write an SVG rendering here instead of printing DOT
}

// newGraphCmd creates the graph command, which prepares a transition and
// emits the transient node graph attached to the stage, in paint order.
func newGraphCmd(opts *rootOpts) *cobra.Command {
	var g graphOpts

	cmd := &cobra.Command{
		Use:   "graph [scene.yaml]",
		Short: "Emit the transient node graph as DOT or SVG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			t, err := composeTransition(ctx, opts, args[0])
			if err != nil {
				return err
			}
			defer t.animator.Cleanup()

			dot, err := graphDOT(t.animator, t.stage)
			if err != nil {
				return err
			}
			if g.svg == "" {
				_, err := fmt.Fprint(cmd.OutOrStdout(), dot)
				return err
			}
			svg, err := renderSVG(ctx, dot)
			if err != nil {
				return err
			}
			if err := os.WriteFile(g.svg, svg, 0o644); err != nil {
				return fmt.Errorf("write svg: %w", err)
			}
			loggerFromContext(ctx).Info("Wrote node graph", "path", g.svg)
			return nil
		},
	}

	cmd.Flags().StringVar(&g.svg, "svg", "", "render the graph to this SVG file")
	return cmd
}

var kindColors = map[morph.NodeKind]string{
	morph.NodeBase:     "lightgrey",
	morph.NodePortal:   "lightblue",
	morph.NodeShadow:   "grey",
	morph.NodeEffect:   "lavender",
	morph.NodeAcetate:  "lightyellow",
	morph.NodeMorphing: "palegreen",
	morph.NodeExiting:  "mistyrose",
	morph.NodeEntering: "honeydew",
}

// graphDOT prepares a and converts the element tree under stage to DOT.
// Nodes of the transient graph are labelled with their kind; host scene
// roots and morphing faces are drawn dashed. Edges are labelled with the
// child's paint index.
func graphDOT(a *morph.Animator, stage *morph.Element) (string, error) {
	if err := a.Prepare(); err != nil {
		return "", err
	}
	nodes := make(map[*morph.Element]*morph.Node, len(a.Nodes()))
	for _, n := range a.Nodes() {
		nodes[n.Content()] = n
	}
	ids := map[*morph.Element]string{}
	id := func(e *morph.Element) string {
		if s, ok := ids[e]; ok {
			return s
		}
		s := fmt.Sprintf("e%d", len(ids))
		ids[e] = s
		return s
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14];\n")
	buf.WriteString("\n")
	fmt.Fprintf(&buf, "  %s [label=%q, shape=plaintext, style=\"\"];\n", id(stage), stage.Name)

	var edges bytes.Buffer
	var walk func(parent *morph.Element)
	walk = func(parent *morph.Element) {
		for i, c := range parent.Children() {
			n, ok := nodes[c]
			if ok {
				label := n.Kind.String() + "\n" + n.Name
				if n.Kind == morph.NodePortal {
					label += "\n" + n.Growth.String()
				}
				fmt.Fprintf(&buf, "  %s [label=%q, fillcolor=%s];\n", id(c), label, kindColors[n.Kind])
			} else {
				fmt.Fprintf(&buf, "  %s [label=%q, style=\"rounded,dashed\"];\n", id(c), c.Name)
			}
			fmt.Fprintf(&edges, "  %s -> %s [label=\"%d\"];\n", id(parent), id(c), i)
			if ok {
				walk(c)
			}
		}
	}
	walk(stage)

	buf.WriteString("\n")
	buf.Write(edges.Bytes())
	buf.WriteString("}\n")
	return buf.String(), nil
}

// renderSVG renders a DOT graph to SVG using Graphviz.
func renderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
