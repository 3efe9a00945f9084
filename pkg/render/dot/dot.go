// Package dot renders a composition's ownership forest as a Graphviz
// node-link diagram, for previewing track contents and nesting structure
// without running the downstream emitter.
package dot

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/goccy/go-graphviz"

	"github.com/reelforge/reelforge/pkg/errors"
	"github.com/reelforge/reelforge/pkg/timeline"
)

// Options configures diagram generation.
type Options struct {
	// Detailed includes frame spans and layers in node labels.
	// When false, only the type tag is shown.
	Detailed bool
}

// ToDOT converts a resolved forest to Graphviz DOT format.
// Each track becomes a cluster holding its top-level nodes in append order;
// ownership edges are labelled with the slot name that binds the child.
// The resulting DOT string can be rendered with [RenderSVG].
func ToDOT(tl *timeline.Timeline, forest *timeline.Forest, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph composition {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=20, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	for i, tr := range tl.Tracks() {
		if tr.NodeCount() == 0 {
			continue
		}
		fmt.Fprintf(&buf, "  subgraph cluster_%d {\n", i)
		fmt.Fprintf(&buf, "    label=%q;\n", "track: "+tr.Name())
		buf.WriteString("    style=dashed;\n")
		for _, id := range tr.Nodes() {
			if forest.IsOwned(id) {
				continue
			}
			n := tl.Node(id)
			fmt.Fprintf(&buf, "    %q [label=%q];\n", nodeName(id), fmtLabel(n, opts.Detailed))
		}
		buf.WriteString("  }\n")
	}

	buf.WriteString("\n")
	writeNested(&buf, tl, forest, opts)

	buf.WriteString("}\n")
	return buf.String()
}

// writeNested emits nested node declarations and slot-labelled ownership
// edges, walking the same deterministic order as the serializer.
func writeNested(buf *bytes.Buffer, tl *timeline.Timeline, forest *timeline.Forest, opts Options) {
	var descend func(id timeline.NodeID)
	descend = func(id timeline.NodeID) {
		n := tl.Node(id)
		for _, slot := range tl.Registry().Slots(n.Tag()) {
			v, ok := n.Prop(slot.Name)
			if !ok {
				continue
			}
			var refs []timeline.NodeID
			switch v.Kind() {
			case timeline.KindChild:
				if v.ChildID() != timeline.NoNode {
					refs = []timeline.NodeID{v.ChildID()}
				}
			case timeline.KindChildList:
				refs = v.ChildIDs()
			}
			for _, ref := range refs {
				child := tl.Node(ref)
				fmt.Fprintf(buf, "  %q [label=%q, fillcolor=lightgrey];\n", nodeName(ref), fmtLabel(child, opts.Detailed))
				fmt.Fprintf(buf, "  %q -> %q [label=%q, fontsize=14];\n", nodeName(id), nodeName(ref), slot.Name)
				descend(ref)
			}
		}
	}

	for _, id := range forest.TopLevel {
		descend(id)
	}
}

// nodeName returns a stable DOT identifier for a node.
func nodeName(id timeline.NodeID) string {
	return fmt.Sprintf("n%d", id)
}

func fmtLabel(n *timeline.ComponentNode, detailed bool) string {
	if !detailed {
		return n.Tag()
	}
	return fmt.Sprintf("%s\nframes %d..%d\nlayer %d",
		n.Tag(), n.StartFrame(), n.EndFrame(), n.Layer())
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "init graphviz")
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "render SVG")
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the SVG root element so the diagram scales from
// origin, which keeps embedding predictable.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
