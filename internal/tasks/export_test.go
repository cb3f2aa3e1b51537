package tasks

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"playbridge/internal/models"
	th "playbridge/internal/testing"
)

func exportSource(failingID string) *th.MockService {
	return &th.MockService{
		ServiceName: "MockSource",
		GetPlaylistDetailsFn: func(ctx context.Context, id string) (*models.Playlist, error) {
			if id == failingID {
				return nil, errors.New("playlist not found: " + id)
			}
			return &models.Playlist{ID: id, Name: "Playlist " + id, TrackCount: 2}, nil
		},
		GetPlaylistTracksFn: func(ctx context.Context, id string) ([]models.Track, error) {
			return []models.Track{
				{ID: id + "-t1", Title: "Song One", Artist: "Artist One", DurationMS: 180000},
				{ID: id + "-t2", Title: "Song Two", Artist: "Artist Two", DurationMS: 245000},
			}, nil
		},
	}
}

func TestBulkExport(t *testing.T) {
	t.Run("JSON Export With Manifest", func(t *testing.T) {
		tmpDir := t.TempDir()
		opts := BulkExportOpts{
			Format:    "json",
			OutputDir: filepath.Join(tmpDir, "out"),
			RateLimit: 1000,
		}

		ids := []string{"pl1", "pl2", "pl3"}
		result, err := BulkExport(context.Background(), nil, exportSource(""), ids, opts)
		if err != nil {
			t.Fatalf("BulkExport failed: %v", err)
		}

		if result.TotalPlaylists != 3 || result.SuccessfulExports != 3 || result.FailedExports != 0 {
			t.Errorf("unexpected totals: %+v", result)
		}
		for _, id := range ids {
			th.AssertFileExists(t, filepath.Join(opts.OutputDir, fmt.Sprintf("%s.json", id)))
		}

		th.AssertFileExists(t, result.ManifestPath)
		manifest := th.MustReadFile(t, result.ManifestPath)
		if !strings.Contains(manifest, `"successful_exports": 3`) {
			t.Errorf("manifest missing success count, got: %s", manifest)
		}
	})

	t.Run("Partial Failure Recorded", func(t *testing.T) {
		tmpDir := t.TempDir()
		opts := BulkExportOpts{
			Format:    "txt",
			OutputDir: filepath.Join(tmpDir, "out"),
			RateLimit: 1000,
		}

		result, err := BulkExport(context.Background(), nil, exportSource("bad"), []string{"pl1", "bad"}, opts)
		if err != nil {
			t.Fatalf("BulkExport failed: %v", err)
		}

		if result.SuccessfulExports != 1 || result.FailedExports != 1 {
			t.Errorf("expected 1 success and 1 failure, got %+v", result)
		}

		var failed *PlaylistExportResult
		for i := range result.Results {
			if !result.Results[i].Success {
				failed = &result.Results[i]
			}
		}
		if failed == nil {
			t.Fatal("expected a failed result entry")
		}
		if failed.PlaylistID != "bad" || failed.Error == nil {
			t.Errorf("unexpected failed entry: %+v", failed)
		}

		th.AssertFileExists(t, filepath.Join(opts.OutputDir, "pl1_tracks.txt"))
	})

	t.Run("Progress Updates", func(t *testing.T) {
		tmpDir := t.TempDir()
		opts := BulkExportOpts{
			Format:    "csv",
			OutputDir: filepath.Join(tmpDir, "out"),
			RateLimit: 1000,
		}

		progress := make(chan ProgressUpdate, 64)
		if _, err := BulkExport(context.Background(), progress, exportSource(""), []string{"pl1", "pl2"}, opts); err != nil {
			t.Fatalf("BulkExport failed: %v", err)
		}
		close(progress)

		exporting, completed := 0, 0
		for update := range progress {
			if update.Phase != ExportPlaylist {
				t.Errorf("unexpected phase %s", update.Phase)
			}
			switch {
			case strings.Contains(update.Message, "Exporting:"):
				exporting++
			case strings.Contains(update.Message, "✓"):
				completed++
			}
		}
		if exporting != 2 || completed != 2 {
			t.Errorf("expected 2 exporting and 2 completed updates, got %d/%d", exporting, completed)
		}
	})

	t.Run("Nil Service", func(t *testing.T) {
		if _, err := BulkExport(context.Background(), nil, nil, []string{"pl1"}, BulkExportOpts{}); err == nil {
			t.Fatal("expected error for nil service")
		}
	})
}
