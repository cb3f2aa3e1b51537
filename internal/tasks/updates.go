package tasks

import (
	"fmt"
	"math"

	"playbridge/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI, TUI, or server-push layer for
// display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Percent int    // Overall completion percentage, when known
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	FetchSource Phase = iota
	ResolveDestination
	MatchTracks
	WriteBack
	Complete
	ExportPlaylist
)

func (p Phase) String() string {
	switch p {
	case FetchSource:
		return "fetch_source"
	case ResolveDestination:
		return "resolve_destination"
	case MatchTracks:
		return "match_tracks"
	case WriteBack:
		return "write_back"
	case Complete:
		return "complete"
	case ExportPlaylist:
		return "export_playlist"
	default:
		return ""
	}
}

func fetchSourceUpdate(serviceName string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchSource,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Fetching source playlist from %s...", serviceName),
	}
}

func foundPlaylistUpdate(playlist *models.Playlist, trackCount int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchSource,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Found playlist: %s (%d tracks)", playlist.Name, trackCount),
		Data:    playlist,
	}
}

func resolveDestinationUpdate(mode models.SyncMode, name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ResolveDestination,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Sync mode %s, target playlist %q", mode, name),
	}
}

// matchProgressUpdate reports cumulative matching progress after a batch
// completes. Percent counts processed tracks, not accepted matches.
func matchProgressUpdate(processed, total int) ProgressUpdate {
	percent := int(math.Round(float64(processed) / float64(total) * 100))
	return ProgressUpdate{
		Phase:   MatchTracks,
		Step:    processed,
		Total:   total,
		Percent: percent,
		Message: fmt.Sprintf("Matched %d/%d tracks (%d%%)", processed, total, percent),
	}
}

func writeBackUpdate(mode models.SyncMode, trackCount int) ProgressUpdate {
	verb := "Creating destination playlist with"
	if mode == models.SyncModeUpdate {
		verb = "Adding"
	}
	return ProgressUpdate{
		Phase:   WriteBack,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("%s %d tracks...", verb, trackCount),
	}
}

func completeUpdate(result *models.SyncResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Complete,
		Step:    1,
		Total:   1,
		Percent: 100,
		Message: fmt.Sprintf("Sync complete: %d matched, %d unmatched", result.MatchedTracks, len(result.UnmatchedTracks)),
		Data:    result,
	}
}

func exportingPlaylistUpdate(step, total int, name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportPlaylist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Exporting: %s...", step, total, name),
	}
}

func exportCompletedUpdate(step, total int, name string, filesCount int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportPlaylist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s (%d files)", step, total, name, filesCount),
	}
}

func exportFailedUpdate(step, total int, name string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportPlaylist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, name, err),
	}
}
