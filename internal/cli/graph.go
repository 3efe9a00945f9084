package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/reelforge/reelforge/pkg/pipeline"
)

// graphCommand creates the graph command for rendering the ownership forest.
func (c *CLI) graphCommand() *cobra.Command {
	var (
		formatsStr string
		output     string
		noCache    bool
		detailed   bool
	)

	cmd := &cobra.Command{
		Use:   "graph [manifest.toml]",
		Short: "Render the ownership forest as DOT or SVG",
		Long: `Render the ownership forest as DOT or SVG.

The graph command composes the manifest and draws the tracks, placed
nodes, and child-slot ownership edges. Tracks become clusters; owned
children hang off their parents with slot-labelled edges.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formats := parseGraphFormats(formatsStr)
			if err := pipeline.ValidateFormats(formats); err != nil {
				return err
			}
			for _, f := range formats {
				if f != pipeline.FormatDOT && f != pipeline.FormatSVG {
					return fmt.Errorf("graph supports dot and svg, got %q", f)
				}
			}
			return c.runGraph(cmd.Context(), args[0], formats, output, noCache, detailed)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), dot (comma-separated)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "include timing detail in node labels")

	return cmd
}

// parseGraphFormats parses the --format flag, defaulting to svg.
func parseGraphFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	return parseFormats(s)
}

// runGraph executes the pipeline restricted to graph formats.
func (c *CLI) runGraph(ctx context.Context, input string, formats []string, output string, noCache, detailed bool) error {
	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts := pipeline.Options{
		ManifestPath: input,
		Formats:      formats,
		Detailed:     detailed,
		Logger:       c.Logger,
	}

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Drawing %s...", filepath.Base(input)))
	spinner.Start()

	result, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Graph failed")
		return fmt.Errorf("graph: %w", err)
	}
	spinner.Stop()

	printSuccess("Drew %s", filepath.Base(input))
	printStats(result.Stats.NodeCount, result.Stats.TrackCount, result.CacheInfo.ArtifactHit)

	return writeArtifacts(artifactWriteParams{
		artifacts: result.Artifacts,
		formats:   formats,
		input:     input,
		output:    output,
		cacheHit:  result.CacheInfo.ArtifactHit,
	})
}
