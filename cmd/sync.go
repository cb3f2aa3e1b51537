package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"playbridge/internal/tasks"
)

// SyncRun syncs one playlist from a source service to a destination service.
func (r *Runner) SyncRun(ctx context.Context, cmd *cli.Command) error {
	opts := tasks.SyncOptions{
		PlaylistName:        cmd.String("name"),
		PlaylistDescription: cmd.String("description"),
		UpdateExisting:      cmd.Bool("update"),
	}

	return r.runSync(ctx, cmd.String("source"), cmd.String("destination"), cmd.String("playlist"), opts)
}

// runSync drives one sync end to end: progress printing, the engine call,
// history recording, and the result summary.
func (r *Runner) runSync(ctx context.Context, source, destination, playlistID string, opts tasks.SyncOptions) error {
	engine, _, err := r.engineFor(ctx, source, destination)
	if err != nil {
		return err
	}

	r.logger.Info("starting sync", "source", source, "destination", destination, "playlist", playlistID)

	progress := make(chan tasks.ProgressUpdate, 50)
	printerDone := make(chan struct{})
	go func() {
		defer close(printerDone)
		for update := range progress {
			switch update.Phase {
			case tasks.FetchSource:
				r.writePlain("📥 %s\n", update.Message)
			case tasks.ResolveDestination:
				r.writePlain("🎯 %s\n", update.Message)
			case tasks.MatchTracks:
				r.writePlain("🔍 %s\n", update.Message)
			case tasks.WriteBack:
				r.writePlain("📝 %s\n", update.Message)
			}
		}
	}()

	result, syncErr := engine.SyncPlaylist(ctx, playlistID, opts, progress)
	close(progress)
	<-printerDone

	if history, db, err := r.history(); err != nil {
		r.logger.Warn("failed to open sync history", "error", err)
	} else if history != nil {
		defer db.Close()
		if _, err := history.Record(playlistID, result); err != nil {
			r.logger.Warn("failed to record sync run", "error", err)
		}
	}

	if syncErr != nil {
		return syncErr
	}

	r.writePlain("\n")
	r.writePlainHeader("Sync Complete")
	r.writePlain("Source: %s (%d tracks)\n", result.SourcePlaylist.Name, result.TotalTracks)
	if result.DestinationPlaylist != nil {
		r.writePlain("Destination: %s (%s)\n", result.DestinationPlaylist.Name, result.DestinationService)
	}
	r.writePlain("Mode: %s\n", result.SyncMode)
	r.writePlain("Matched: %d/%d tracks\n", result.MatchedTracks, result.TotalTracks)

	if len(result.UnmatchedTracks) > 0 {
		r.writePlain("\nUnmatched tracks (%d):\n", len(result.UnmatchedTracks))
		for _, track := range result.UnmatchedTracks {
			r.writePlain("  - %s - %s", track.Artist, track.Title)
			if track.Album != "" {
				r.writePlain(" (%s)", track.Album)
			}
			r.writePlain("\n")
		}
	}

	return nil
}

// SyncValidate runs pre-flight checks for a sync without starting it.
func (r *Runner) SyncValidate(ctx context.Context, cmd *cli.Command) error {
	engine, _, err := r.engineFor(ctx, cmd.String("source"), cmd.String("destination"))
	if err != nil {
		return err
	}

	validation := engine.ValidateSync(ctx, cmd.String("playlist"))

	if !validation.Valid {
		r.writePlain("✗ Sync is not possible: %s\n", validation.Error)
		return fmt.Errorf("validation failed: %s", validation.Error)
	}

	r.writePlain("✓ Sync is possible\n")
	if validation.SourcePlaylist != nil {
		r.writePlain("  Playlist: %s (%d tracks)\n", validation.SourcePlaylist.Name, validation.SourcePlaylist.TrackCount)
	}
	if validation.Capabilities != nil {
		r.writePlain("  Track limit: %d\n", validation.Capabilities.MaxPlaylistTracks)
		r.writePlain("  ISRC matching: %v\n", validation.Capabilities.SupportsISRC)
	}
	return nil
}

// SyncCapabilities shows the merged capabilities of a service pair.
func (r *Runner) SyncCapabilities(ctx context.Context, cmd *cli.Command) error {
	useJSON := cmd.Bool("json")
	pretty := cmd.Bool("pretty")

	engine, _, err := r.engineFor(ctx, cmd.String("source"), cmd.String("destination"))
	if err != nil {
		return err
	}

	capabilities := engine.SyncCapabilities()

	if useJSON {
		return r.writeJSON(capabilities, pretty)
	}

	r.writePlain("%s → %s\n\n", capabilities.Source.Name, capabilities.Destination.Name)
	r.writePlain("Can sync: %v\n", capabilities.CanSync)
	r.writePlain("Can create playlists: %v\n", capabilities.CanCreatePlaylists)
	r.writePlain("ISRC matching: %v\n", capabilities.SupportsISRC)
	r.writePlain("Max playlist tracks: %d\n", capabilities.MaxPlaylistTracks)
	r.writePlain("Batch size: %d\n", capabilities.BatchSize)
	return nil
}

// JobsRun executes every sync job configured under [[jobs]].
func (r *Runner) JobsRun(ctx context.Context, cmd *cli.Command) error {
	if len(r.config.Jobs) == 0 {
		return r.writePlain("No jobs configured. Add [[jobs]] entries to the config file.\n")
	}

	var failed int
	for _, job := range r.config.Jobs {
		r.writePlainHeader(fmt.Sprintf("Job: %s", job.Name))

		opts := tasks.SyncOptions{
			PlaylistName:   job.PlaylistName,
			UpdateExisting: job.UpdateExisting,
		}

		if err := r.runSync(ctx, job.Source, job.Destination, job.PlaylistID, opts); err != nil {
			failed++
			r.logger.Error("job failed", "job", job.Name, "error", err)
			r.writePlain("✗ Job %s failed: %v\n\n", job.Name, err)
			continue
		}
		r.writePlain("\n")
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d jobs failed", failed, len(r.config.Jobs))
	}
	return nil
}

// JobsList prints the configured sync jobs.
func (r *Runner) JobsList(ctx context.Context, cmd *cli.Command) error {
	if len(r.config.Jobs) == 0 {
		return r.writePlain("No jobs configured.\n")
	}

	for i, job := range r.config.Jobs {
		r.writePlain("%d. %s\n", i+1, job.Name)
		r.writePlain("   %s → %s, playlist %s\n", job.Source, job.Destination, job.PlaylistID)
		if job.UpdateExisting {
			r.writePlain("   mode: update\n")
		}
		r.writePlain("\n")
	}
	return nil
}
