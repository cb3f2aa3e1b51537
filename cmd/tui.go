package main

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"

	"playbridge/internal/tasks"
	"playbridge/internal/ui"
)

// TUI launches the interactive terminal interface for playlist sync.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	source := cmd.String("source")
	destination := cmd.String("destination")

	engine, src, err := r.engineFor(ctx, source, destination)
	if err != nil {
		return err
	}

	opts := tasks.SyncOptions{UpdateExisting: cmd.Bool("update")}
	model := ui.NewModel(ctx, src, engine, opts)

	program := tea.NewProgram(model, tea.WithAltScreen())
	_, err = program.Run()
	return err
}
