package main

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"

	"playbridge/internal/shared"
)

// History lists past sync runs from the configured database.
func (r *Runner) History(ctx context.Context, cmd *cli.Command) error {
	limit := cmd.Int("limit")
	source := cmd.String("source")
	useJSON := cmd.Bool("json")

	history, db, err := r.history()
	if err != nil {
		return err
	}
	if history == nil {
		return fmt.Errorf("%w: database.path not set in %s", shared.ErrMissingConfig, r.configPath)
	}
	defer db.Close()

	criteria := map[string]any{"limit": limit}
	if source != "" {
		criteria["source_service"] = source
	}

	runs, err := history.List(criteria)
	if err != nil {
		return err
	}

	if useJSON {
		return r.writeJSON(runs, true)
	}

	if len(runs) == 0 {
		return r.writePlain("No sync runs recorded.\n")
	}

	r.writePlain("Recent sync runs:\n\n")
	for _, run := range runs {
		started := time.UnixMilli(run.StartedAt).Format("2006-01-02 15:04")
		status := "✓"
		if !run.Succeeded() {
			status = "✗"
		}

		r.writePlain("%s %s  %s → %s\n", status, started, run.SourceService, run.DestinationService)
		r.writePlain("   Playlist: %s (%s mode)\n", run.SourcePlaylistName, run.SyncMode)
		r.writePlain("   Matched: %d/%d", run.MatchedTracks, run.TotalTracks)
		if run.UnmatchedTracks > 0 {
			r.writePlain(", unmatched: %d", run.UnmatchedTracks)
		}
		r.writePlain("\n")
		if !run.Succeeded() {
			r.writePlain("   Error: %s\n", run.Errors[0])
		}
		r.writePlain("\n")
	}
	return nil
}
