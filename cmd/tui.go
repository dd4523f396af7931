package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"

	"scout/internal/shared"
	"scout/internal/ui"
	"scout/internal/workflow"
)

// TUI launches the interactive terminal UI for product discovery.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	if r.discovery == nil {
		return fmt.Errorf("%w: discovery service not initialized", shared.ErrServiceUnavailable)
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/scout-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	controller := workflow.NewController(workflow.ControllerOpts{
		API:     r.discovery,
		Streams: r.discovery,
		Tracker: r.auth,
		Logger:  r.logger,
	})

	model := ui.NewModel(ctx, controller)
	p := tea.NewProgram(model)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
