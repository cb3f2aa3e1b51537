package repositories

import (
	"database/sql"
	"testing"
	"time"

	"playbridge/internal/models"
	"playbridge/internal/shared"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}
	return db
}

func sampleResult() *models.SyncResult {
	result := models.NewSyncResult("Spotify", "Apple Music", models.SyncModeCreate)
	result.SourcePlaylist = &models.Playlist{ID: "src1", Name: "Road Trip", TrackCount: 40}
	result.DestinationPlaylist = &models.Playlist{ID: "dst1", Name: "Road Trip (from Spotify)"}
	result.TotalTracks = 40
	result.MatchedTracks = 38
	result.UnmatchedTracks = []models.UnmatchedTrack{
		{Title: "Lost Song", Artist: "Nobody"},
		{Title: "Other Song", Artist: "No One"},
	}
	result.Finalize()
	return result
}

func TestSyncRunRepository(t *testing.T) {
	t.Run("Record And Get", func(t *testing.T) {
		repo := NewSyncRunRepository(setupTestDB(t))

		run, err := repo.Record("src1", sampleResult())
		if err != nil {
			t.Fatalf("Record failed: %v", err)
		}
		if run.ID == "" {
			t.Fatal("expected a generated run ID")
		}
		if !run.Succeeded() {
			t.Error("expected error-free run to report success")
		}

		got, err := repo.Get(run.ID)
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}

		if got.SourceService != "Spotify" || got.DestinationService != "Apple Music" {
			t.Errorf("unexpected services: %s -> %s", got.SourceService, got.DestinationService)
		}
		if got.SourcePlaylistName != "Road Trip" || got.DestinationPlaylistID != "dst1" {
			t.Errorf("unexpected playlist fields: %+v", got)
		}
		if got.TotalTracks != 40 || got.MatchedTracks != 38 || got.UnmatchedTracks != 2 {
			t.Errorf("unexpected counts: %+v", got)
		}
		if got.SyncMode != models.SyncModeCreate {
			t.Errorf("unexpected sync mode %s", got.SyncMode)
		}
		if got.StartedAt == 0 || got.FinishedAt == 0 {
			t.Error("expected timestamps to round-trip")
		}
	})

	t.Run("Record Failed Run", func(t *testing.T) {
		repo := NewSyncRunRepository(setupTestDB(t))

		result := models.NewSyncResult("Spotify", "Apple Music", models.SyncModeUpdate)
		result.Errors = append(result.Errors, "failed to fetch source playlist", "context canceled")
		result.Finalize()

		run, err := repo.Record("src1", result)
		if err != nil {
			t.Fatalf("Record failed: %v", err)
		}

		got, err := repo.Get(run.ID)
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if got.Succeeded() {
			t.Error("expected run with errors to report failure")
		}
		if len(got.Errors) != 2 || got.Errors[0] != "failed to fetch source playlist" {
			t.Errorf("expected errors to round-trip, got %v", got.Errors)
		}
	})

	t.Run("Record Nil Result", func(t *testing.T) {
		repo := NewSyncRunRepository(setupTestDB(t))

		if _, err := repo.Record("src1", nil); err == nil {
			t.Fatal("expected error for nil result")
		}
	})

	t.Run("Get Missing", func(t *testing.T) {
		repo := NewSyncRunRepository(setupTestDB(t))

		if _, err := repo.Get("nope"); err == nil {
			t.Fatal("expected error for unknown run ID")
		}
	})

	t.Run("List Filters And Ordering", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewSyncRunRepository(db)

		older := sampleResult()
		older.StartTime -= 60000
		if _, err := repo.Record("src1", older); err != nil {
			t.Fatalf("Record failed: %v", err)
		}

		newer := sampleResult()
		newer.SourceService = "Apple Music"
		newer.DestinationService = "Spotify"
		if _, err := repo.Record("src2", newer); err != nil {
			t.Fatalf("Record failed: %v", err)
		}

		all, err := repo.List(nil)
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(all) != 2 {
			t.Fatalf("expected 2 runs, got %d", len(all))
		}
		if all[0].SourcePlaylistID != "src2" {
			t.Errorf("expected newest first, got %s", all[0].SourcePlaylistID)
		}

		filtered, err := repo.List(map[string]any{"source_service": "Spotify"})
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(filtered) != 1 || filtered[0].SourcePlaylistID != "src1" {
			t.Errorf("unexpected filtered result: %+v", filtered)
		}

		limited, err := repo.List(map[string]any{"limit": 1})
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(limited) != 1 {
			t.Errorf("expected 1 run with limit, got %d", len(limited))
		}
	})

	t.Run("Delete", func(t *testing.T) {
		repo := NewSyncRunRepository(setupTestDB(t))

		run, err := repo.Record("src1", sampleResult())
		if err != nil {
			t.Fatalf("Record failed: %v", err)
		}

		if err := repo.Delete(run.ID); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
		if err := repo.Delete(run.ID); err == nil {
			t.Fatal("expected error deleting an already-removed run")
		}
		if _, err := repo.Get(run.ID); err == nil {
			t.Fatal("expected deleted run to be gone")
		}
	})

	t.Run("Prune", func(t *testing.T) {
		repo := NewSyncRunRepository(setupTestDB(t))

		old := sampleResult()
		old.StartTime = time.Now().Add(-48 * time.Hour).UnixMilli()
		if _, err := repo.Record("src-old", old); err != nil {
			t.Fatalf("Record failed: %v", err)
		}
		if _, err := repo.Record("src-new", sampleResult()); err != nil {
			t.Fatalf("Record failed: %v", err)
		}

		pruned, err := repo.Prune(time.Now().Add(-24 * time.Hour))
		if err != nil {
			t.Fatalf("Prune failed: %v", err)
		}
		if pruned != 1 {
			t.Errorf("expected 1 pruned run, got %d", pruned)
		}

		remaining, err := repo.List(nil)
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(remaining) != 1 || remaining[0].SourcePlaylistID != "src-new" {
			t.Errorf("unexpected remaining runs: %+v", remaining)
		}
	})
}
