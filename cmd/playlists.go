package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"playbridge/internal/shared"
	"playbridge/internal/tasks"
)

// Services lists the configured services and their capabilities.
func (r *Runner) Services(ctx context.Context, cmd *cli.Command) error {
	useJSON := cmd.Bool("json")
	pretty := cmd.Bool("pretty")

	names := r.registry.Names()
	if len(names) == 0 {
		return r.writePlain("No services configured. Run: playbridge setup config\n")
	}

	if useJSON {
		type entry struct {
			Key          string `json:"key"`
			Name         string `json:"name"`
			Capabilities any    `json:"capabilities"`
		}
		entries := make([]entry, 0, len(names))
		for _, key := range names {
			svc, err := r.registry.Get(key)
			if err != nil {
				continue
			}
			entries = append(entries, entry{Key: key, Name: svc.Name(), Capabilities: svc.Capabilities()})
		}
		return r.writeJSON(entries, pretty)
	}

	r.writePlain("Configured services:\n\n")
	for _, key := range names {
		svc, err := r.registry.Get(key)
		if err != nil {
			continue
		}
		capabilities := svc.Capabilities()
		r.writePlain("%s (%s)\n", svc.Name(), key)
		r.writePlain("  Read: %v  Write: %v  Create: %v  ISRC: %v\n",
			capabilities.CanRead, capabilities.CanWrite, capabilities.CanCreatePlaylists, capabilities.SupportsISRC)
		r.writePlain("  Max tracks: %d  Batch size: %d\n\n",
			capabilities.MaxPlaylistTracks, capabilities.BatchSize)
	}
	return nil
}

// Playlists lists playlists from one service.
func (r *Runner) Playlists(ctx context.Context, cmd *cli.Command) error {
	serviceKey := cmd.StringArg("service")
	limit := cmd.Int("limit")
	useJSON := cmd.Bool("json")
	pretty := cmd.Bool("pretty")

	if serviceKey == "" {
		return fmt.Errorf("%w: service argument is required (spotify or applemusic)", shared.ErrMissingArgument)
	}

	svc, err := r.service(ctx, serviceKey)
	if err != nil {
		return err
	}

	r.logger.Info("listing playlists", "service", serviceKey, "limit", limit)

	playlists, err := svc.GetPlaylists(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	if limit > 0 && limit < len(playlists) {
		playlists = playlists[:limit]
	}

	if useJSON {
		return r.writeJSON(playlists, pretty)
	}

	r.writePlain("Found %d playlists:\n\n", len(playlists))
	for i, p := range playlists {
		r.writePlain("%d. %s\n", i+1, p.Name)
		if p.Description != "" {
			r.writePlain("   Description: %s\n", p.Description)
		}
		r.writePlain("   ID: %s\n", p.ID)
		r.writePlain("   Tracks: %d\n\n", p.TrackCount)
	}

	return nil
}

// Export exports playlists to local files in the requested format.
func (r *Runner) Export(ctx context.Context, cmd *cli.Command) error {
	serviceKey := cmd.StringArg("service")
	ids := cmd.StringSlice("id")
	format := cmd.String("format")
	outputDir := cmd.String("output")
	workers := cmd.Int("workers")

	if serviceKey == "" {
		return fmt.Errorf("%w: service argument is required (spotify or applemusic)", shared.ErrMissingArgument)
	}

	svc, err := r.service(ctx, serviceKey)
	if err != nil {
		return err
	}

	r.logger.Info("exporting playlists", "service", serviceKey, "count", len(ids), "format", format)

	progress := make(chan tasks.ProgressUpdate, 50)
	printerDone := make(chan struct{})
	go func() {
		defer close(printerDone)
		for update := range progress {
			r.writePlain("%s\n", update.Message)
		}
	}()

	result, err := tasks.BulkExport(ctx, progress, svc, ids, tasks.BulkExportOpts{
		Format:     format,
		OutputDir:  outputDir,
		NumWorkers: workers,
	})
	close(progress)
	<-printerDone

	if err != nil {
		return err
	}

	r.writePlain("\n")
	r.writePlainHeader("Export Complete")
	r.writePlain("Exported: %d/%d playlists\n", result.SuccessfulExports, result.TotalPlaylists)
	r.writePlain("Output: %s\n", result.OutputDirectory)
	if result.FailedExports > 0 {
		r.writePlain("\nFailed exports:\n")
		for _, res := range result.Results {
			if !res.Success {
				r.writePlain("  - %s: %v\n", res.PlaylistName, res.Error)
			}
		}
	}

	return nil
}
