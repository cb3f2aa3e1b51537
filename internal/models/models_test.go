package models

import (
	"testing"
	"time"
)

func TestMatchResult(t *testing.T) {
	source := Track{ID: "src1", Title: "Bohemian Rhapsody", Artist: "Queen", Album: "A Night at the Opera"}

	t.Run("NewMatch", func(t *testing.T) {
		dest := Track{ID: "dst1", Title: "Bohemian Rhapsody", Artist: "Queen"}
		result := NewMatch(source, dest, 100, MatchMethodISRC)

		if !result.Matched() {
			t.Error("expected match to report Matched")
		}
		if result.Destination == nil || result.Destination.ID != "dst1" {
			t.Errorf("unexpected destination: %+v", result.Destination)
		}
		if result.Confidence != 100 {
			t.Errorf("expected confidence 100, got %f", result.Confidence)
		}
		if result.Method != MatchMethodISRC {
			t.Errorf("expected method isrc, got %s", result.Method)
		}
	})

	t.Run("NoMatch", func(t *testing.T) {
		result := NoMatch(source)

		if result.Matched() {
			t.Error("expected NoMatch to report unmatched")
		}
		if result.Destination != nil {
			t.Error("expected nil destination")
		}
		if result.Confidence != 0 {
			t.Errorf("expected zero confidence, got %f", result.Confidence)
		}
		if result.Method != MatchMethodNone {
			t.Errorf("expected method none, got %s", result.Method)
		}
		if result.Source.ID != "src1" {
			t.Errorf("expected source track preserved, got %s", result.Source.ID)
		}
	})

	t.Run("Destination Is A Copy", func(t *testing.T) {
		dest := Track{ID: "dst1"}
		result := NewMatch(source, dest, 90, MatchMethodFuzzy)
		dest.ID = "mutated"

		if result.Destination.ID != "dst1" {
			t.Error("expected destination snapshot to be independent of caller's value")
		}
	})
}

func TestSyncResult(t *testing.T) {
	t.Run("NewSyncResult", func(t *testing.T) {
		before := time.Now().UnixMilli()
		result := NewSyncResult("spotify", "applemusic", SyncModeUpdate)
		after := time.Now().UnixMilli()

		if result.SourceService != "spotify" || result.DestinationService != "applemusic" {
			t.Errorf("unexpected services: %s -> %s", result.SourceService, result.DestinationService)
		}
		if result.SyncMode != SyncModeUpdate {
			t.Errorf("expected update mode, got %s", result.SyncMode)
		}
		if result.StartTime < before || result.StartTime > after {
			t.Errorf("start time %d outside [%d, %d]", result.StartTime, before, after)
		}
		if result.UnmatchedTracks == nil || result.Errors == nil {
			t.Error("expected slices to be initialized")
		}
	})

	t.Run("Empty Mode Defaults To Create", func(t *testing.T) {
		result := NewSyncResult("spotify", "applemusic", "")
		if result.SyncMode != SyncModeCreate {
			t.Errorf("expected create mode, got %s", result.SyncMode)
		}
	})

	t.Run("Finalize", func(t *testing.T) {
		result := NewSyncResult("spotify", "applemusic", SyncModeCreate)
		result.Finalize()

		if result.EndTime < result.StartTime {
			t.Errorf("end time %d before start time %d", result.EndTime, result.StartTime)
		}
		if result.DurationMS != result.EndTime-result.StartTime {
			t.Errorf("duration %d does not match end-start %d", result.DurationMS, result.EndTime-result.StartTime)
		}
	})
}
