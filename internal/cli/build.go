package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/reelforge/reelforge/pkg/pipeline"
)

// buildCommand creates the build command for composing a manifest into markup.
func (c *CLI) buildCommand() *cobra.Command {
	var (
		formatsStr string
		output     string
		noCache    bool
		stdout     bool
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "build [manifest.toml]",
		Short: "Compose a manifest and emit component markup",
		Long: `Compose a manifest and emit component markup.

The build command reads a TOML manifest describing tracks and scenes,
composes the timeline, resolves the ownership forest, and serializes it
to nested component markup. Derived outputs (JSON summary, DOT, SVG) can
be requested with --format.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Formats = parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(opts.Formats); err != nil {
				return err
			}
			return c.runBuild(cmd.Context(), args[0], opts, output, noCache, stdout)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&stdout, "stdout", false, "write the first format to stdout instead of a file")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): markup (default), json, dot, svg (comma-separated)")
	cmd.Flags().StringVar(&opts.Theme, "theme", "", "theme name recorded on the timeline")
	cmd.Flags().StringVar(&opts.Indent, "indent", "", "indentation unit for markup output")
	cmd.Flags().BoolVar(&opts.Detailed, "detailed", false, "include timing detail in DOT labels")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "bypass the cache and recompute")

	return cmd
}

// runBuild executes the full pipeline and writes the requested artifacts.
func (c *CLI) runBuild(ctx context.Context, input string, opts pipeline.Options, output string, noCache, stdout bool) error {
	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts.ManifestPath = input
	opts.Logger = c.Logger

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Composing %s...", filepath.Base(input)))
	spinner.Start()

	result, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Build failed")
		return fmt.Errorf("build: %w", err)
	}
	spinner.Stop()

	for _, w := range result.Warnings {
		printWarning("%s", w)
	}

	printSuccess("Built %s", filepath.Base(input))
	printStats(result.Stats.NodeCount, result.Stats.TrackCount, result.CacheInfo.MarkupHit)
	printDetail("tags: %s", strings.Join(result.Tags, ", "))

	if stdout {
		_, err := os.Stdout.Write(result.Artifacts[opts.Formats[0]])
		return err
	}

	printNextStep("Inspect the composition", fmt.Sprintf("reelforge inspect %s", input))

	return writeArtifacts(artifactWriteParams{
		artifacts: result.Artifacts,
		formats:   opts.Formats,
		input:     input,
		output:    output,
		cacheHit:  result.CacheInfo.ArtifactHit,
	})
}

// artifactWriteParams bundles the inputs for writeArtifacts.
type artifactWriteParams struct {
	artifacts map[string][]byte
	formats   []string
	input     string
	output    string
	cacheHit  bool
}

// writeArtifacts writes each rendered format to disk.
//
// With a single format, --output names the file directly. With multiple
// formats, --output is treated as a base path and the format extension is
// appended. Without --output, files are placed next to the input manifest.
func writeArtifacts(p artifactWriteParams) error {
	base := p.output
	if base == "" {
		base = strings.TrimSuffix(p.input, filepath.Ext(p.input))
	}

	for _, format := range p.formats {
		data, ok := p.artifacts[format]
		if !ok {
			continue
		}

		path := base + formatExt(format)
		if p.output != "" && len(p.formats) == 1 {
			path = p.output
		}

		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		printFile(path)
	}
	return nil
}
