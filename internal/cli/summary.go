package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/reelforge/reelforge/pkg/pipeline"
	"github.com/reelforge/reelforge/pkg/timeline"
)

// summaryCommand creates the summary command for printing the timeline layout.
func (c *CLI) summaryCommand() *cobra.Command {
	var theme string

	cmd := &cobra.Command{
		Use:   "summary [manifest.toml]",
		Short: "Print the track and node layout of a composed timeline",
		Long: `Print the track and node layout of a composed timeline.

The summary command composes the manifest and prints one table per track,
listing every placed node with its frame range and layer. Unplaced nodes
(children owned by composite slots) are listed separately.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runSummary(cmd.Context(), args[0], theme)
		},
	}

	cmd.Flags().StringVar(&theme, "theme", "", "theme name recorded on the timeline")

	return cmd
}

// runSummary composes the manifest and prints per-track tables.
func (c *CLI) runSummary(ctx context.Context, input, theme string) error {
	runner, err := c.newRunner(true)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts := pipeline.Options{
		ManifestPath: input,
		Theme:        theme,
		Logger:       c.Logger,
	}

	prog := newProgress(loggerFromContext(ctx))
	tl, _, err := runner.Compose(ctx, opts)
	if err != nil {
		return fmt.Errorf("summary: %w", err)
	}
	sum := tl.Summarize()
	prog.done("Composed %d nodes", len(sum.Nodes))

	fmt.Println(StyleTitle.Render(filepath.Base(input)))
	printKeyValue("fps", fmt.Sprintf("%d", sum.FPS))
	printKeyValue("duration", fmt.Sprintf("%d frames (%.2fs)",
		sum.TotalDurationFrames, timeline.FramesToSeconds(sum.FPS, sum.TotalDurationFrames)))
	fmt.Println()

	for _, tr := range sum.Tracks {
		fmt.Println(StyleHighlight.Render(fmt.Sprintf("track %q (layer %d)", tr.Name, tr.Layer)))
		fmt.Println(trackTable(sum, tr.Name))
		fmt.Println()
	}

	if unplaced := unplacedNodes(sum); len(unplaced) > 0 {
		fmt.Println(StyleDim.Render(fmt.Sprintf("%d owned nodes (rendered inside composite slots)", len(unplaced))))
	}

	return nil
}

// trackTable renders the placed nodes of one track as a table.
func trackTable(sum timeline.Summary, track string) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(StyleDim).
		Headers("ID", "TAG", "START", "END", "LAYER")

	for _, n := range sum.Nodes {
		if n.Track != track {
			continue
		}
		t.Row(
			fmt.Sprintf("%d", n.ID),
			n.Tag,
			fmt.Sprintf("%d", n.StartFrame),
			fmt.Sprintf("%d", n.StartFrame+n.DurationFrames),
			fmt.Sprintf("%d", n.Layer),
		)
	}
	return t.Render()
}

// unplacedNodes returns the summaries of nodes not placed on any track.
func unplacedNodes(sum timeline.Summary) []timeline.NodeSummary {
	var out []timeline.NodeSummary
	for _, n := range sum.Nodes {
		if n.Track == "" {
			out = append(out, n)
		}
	}
	return out
}
