package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/reelforge/reelforge/pkg/pipeline"
)

// inspectCommand creates the inspect command for browsing nodes interactively.
func (c *CLI) inspectCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect [manifest.toml]",
		Short: "Browse placed and owned nodes interactively",
		Long: `Browse placed and owned nodes interactively.

The inspect command composes the manifest and opens a terminal browser
over every node in the arena. Placed nodes show their track and frame
range; owned nodes show the props binding them into their parent.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runInspect(cmd.Context(), args[0])
		},
	}

	return cmd
}

// runInspect composes the manifest and starts the bubbletea browser.
func (c *CLI) runInspect(ctx context.Context, input string) error {
	runner, err := c.newRunner(true)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts := pipeline.Options{
		ManifestPath: input,
		Logger:       c.Logger,
	}

	tl, _, err := runner.Compose(ctx, opts)
	if err != nil {
		return fmt.Errorf("inspect: %w", err)
	}

	p := tea.NewProgram(NewNodeListModel(tl), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("inspect ui: %w", err)
	}
	return nil
}
