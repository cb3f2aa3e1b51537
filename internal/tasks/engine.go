package tasks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"playbridge/internal/match"
	"playbridge/internal/models"
	"playbridge/internal/services"
	"playbridge/internal/shared"
)

// matchBatchSize is the number of tracks matched concurrently per batch.
// Batches run sequentially with a cooldown between them to stay under the
// destination's rate limits.
const matchBatchSize = 15

// SyncOptions configures a playlist sync.
type SyncOptions struct {
	SyncMode            models.SyncMode // requested mode, defaults to create
	PlaylistName        string          // override for the destination playlist name
	PlaylistDescription string          // override for the generated description
	UpdateExisting      bool            // enables destination playlist lookup and reuse
}

// PlaylistEngine orchestrates playlist syncs from a source to a destination
// catalog service.
type PlaylistEngine struct {
	source      services.Service
	destination services.Service
	matcher     *match.Matcher
	logger      *log.Logger

	// cooldown between matching batches; stricter services get a longer
	// pause. Overridable in tests.
	cooldown time.Duration
}

// destinationCooldown picks the post-batch pause for a destination service.
// Apple Music throttles search traffic harder than Spotify does.
func destinationCooldown(serviceName string) time.Duration {
	if serviceName == "Apple Music" {
		return 200 * time.Millisecond
	}
	return 100 * time.Millisecond
}

// NewPlaylistEngine creates an engine syncing from source to destination.
func NewPlaylistEngine(source, destination services.Service, logger *log.Logger) *PlaylistEngine {
	return &PlaylistEngine{
		source:      source,
		destination: destination,
		matcher:     match.NewMatcher(destination, logger),
		logger:      logger,
		cooldown:    destinationCooldown(destination.Name()),
	}
}

// DestinationName returns the destination service's display name.
func (e *PlaylistEngine) DestinationName() string {
	return e.destination.Name()
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *PlaylistEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
		// Sent successfully
	default:
		// Channel full or closed, skip this update
	}
}

// SyncPlaylist syncs one source playlist to the destination service.
//
// On a fatal failure the error is appended to the result's error list, the
// result is finalized, and both are returned; partial destination writes that
// already committed are not rolled back. An unmatched track is not a failure.
func (e *PlaylistEngine) SyncPlaylist(ctx context.Context, sourcePlaylistID string, opts SyncOptions, progress chan<- ProgressUpdate) (*models.SyncResult, error) {
	result := models.NewSyncResult(e.source.Name(), e.destination.Name(), opts.SyncMode)

	fail := func(err error) (*models.SyncResult, error) {
		result.Errors = append(result.Errors, err.Error())
		result.Finalize()
		return result, err
	}

	// Step 1: fetch the source playlist and its full track list.
	e.sendProgress(progress, fetchSourceUpdate(e.source.Name()))

	sourcePlaylist, err := e.source.GetPlaylistDetails(ctx, sourcePlaylistID)
	if err != nil {
		return fail(fmt.Errorf("failed to fetch source playlist: %w", err))
	}
	result.SourcePlaylist = sourcePlaylist

	tracks, err := e.source.GetPlaylistTracks(ctx, sourcePlaylistID)
	if err != nil {
		return fail(fmt.Errorf("failed to fetch source tracks: %w", err))
	}

	result.TotalTracks = len(tracks)
	e.sendProgress(progress, foundPlaylistUpdate(sourcePlaylist, len(tracks)))

	if len(tracks) == 0 {
		result.Finalize()
		e.sendProgress(progress, completeUpdate(result))
		return result, nil
	}

	// Step 2: resolve the destination playlist and sync mode. The only mode
	// transition is create -> update, and only here.
	defaultName := fmt.Sprintf("%s (from %s)", sourcePlaylist.Name, e.source.Name())
	targetName := opts.PlaylistName
	if targetName == "" {
		targetName = defaultName
	}

	var existing *models.Playlist
	if opts.UpdateExisting {
		existing, err = e.destination.FindPlaylistByName(ctx, sourcePlaylist.Name)
		if err != nil {
			return fail(fmt.Errorf("failed to look up destination playlist: %w", err))
		}
		if existing == nil {
			existing, err = e.destination.FindPlaylistByName(ctx, defaultName)
			if err != nil {
				return fail(fmt.Errorf("failed to look up destination playlist: %w", err))
			}
		}
		if existing != nil {
			result.SyncMode = models.SyncModeUpdate
			targetName = existing.Name
		} else if opts.PlaylistName == "" {
			// Falling back to create after a failed lookup keeps the plain
			// source name; the "(from ...)" suffix is only for syncs that never
			// looked for an existing playlist.
			targetName = sourcePlaylist.Name
		}
	}
	if existing == nil {
		// Update mode requires a resolved destination playlist; anything
		// else falls back to create.
		result.SyncMode = models.SyncModeCreate
	}
	e.sendProgress(progress, resolveDestinationUpdate(result.SyncMode, targetName))

	// Step 3: match in batches, concurrent within a batch, sequential across
	// batches. Results land at their source index so order is preserved.
	matches := make([]models.MatchResult, len(tracks))
	processed := 0

	for start := 0; start < len(tracks); start += matchBatchSize {
		end := min(start+matchBatchSize, len(tracks))

		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				matches[i] = e.matcher.MatchTrack(ctx, tracks[i])
			}(i)
		}
		wg.Wait()

		processed += end - start
		e.sendProgress(progress, matchProgressUpdate(processed, len(tracks)))

		if end < len(tracks) {
			select {
			case <-ctx.Done():
				return fail(ctx.Err())
			case <-time.After(e.cooldown):
			}
		}
	}

	// Step 4: aggregate in source order.
	matchedIDs := make([]string, 0, len(matches))
	matchedSources := make([]models.Track, 0, len(matches))

	for _, m := range matches {
		if m.Matched() {
			matchedIDs = append(matchedIDs, m.Destination.ID)
			matchedSources = append(matchedSources, m.Source)
			result.MatchedTracks++
		} else {
			result.UnmatchedTracks = append(result.UnmatchedTracks, models.UnmatchedTrack{
				Title:  m.Source.Title,
				Artist: m.Source.Artist,
				Album:  m.Source.Album,
			})
		}
	}

	// Step 5: write back. With nothing matched the destination is left
	// untouched in both modes.
	if len(matchedIDs) > 0 {
		if result.SyncMode == models.SyncModeUpdate {
			if err := e.updateExistingPlaylist(ctx, existing, matchedIDs, matchedSources, result, progress); err != nil {
				return fail(err)
			}
		} else {
			description := opts.PlaylistDescription
			if description == "" {
				description = fmt.Sprintf("Synced from %s on %s", e.source.Name(), time.Now().Format("2006-01-02"))
			}

			e.sendProgress(progress, writeBackUpdate(models.SyncModeCreate, len(matchedIDs)))
			created, err := e.destination.CreatePlaylist(ctx, targetName, description, matchedIDs)
			if err != nil {
				return fail(fmt.Errorf("failed to create destination playlist: %w", err))
			}
			result.DestinationPlaylist = created
		}
	}

	result.Finalize()
	e.sendProgress(progress, completeUpdate(result))
	return result, nil
}

// updateExistingPlaylist adds matched tracks to an existing destination
// playlist, skipping any track whose source signature already appears there.
//
// The result's matched count is overwritten with the newly-added count, so in
// update mode it diverges from create mode's "total matched" meaning. Kept
// for compatibility with existing consumers of the result payload.
func (e *PlaylistEngine) updateExistingPlaylist(
	ctx context.Context,
	existing *models.Playlist,
	matchedIDs []string,
	matchedSources []models.Track,
	result *models.SyncResult,
	progress chan<- ProgressUpdate,
) error {
	existingTracks, err := e.destination.GetPlaylistTracks(ctx, existing.ID)
	if err != nil {
		return fmt.Errorf("failed to fetch destination tracks: %w", err)
	}

	signatures := make(map[string]bool, len(existingTracks))
	for _, track := range existingTracks {
		signatures[match.TrackSignature(track)] = true
	}

	newIDs := make([]string, 0, len(matchedIDs))
	for i, id := range matchedIDs {
		if signatures[match.TrackSignature(matchedSources[i])] {
			continue
		}
		newIDs = append(newIDs, id)
	}

	if len(newIDs) > 0 {
		e.sendProgress(progress, writeBackUpdate(models.SyncModeUpdate, len(newIDs)))
		if err := e.destination.AddTracksToPlaylist(ctx, existing.ID, newIDs); err != nil {
			return fmt.Errorf("failed to add tracks to destination playlist: %w", err)
		}

		// Refresh the snapshot so the result reflects the post-add track
		// count; the write already committed, so a failed refresh only keeps
		// the stale snapshot.
		if refreshed, err := e.destination.GetPlaylistDetails(ctx, existing.ID); err != nil {
			e.logger.Warn("failed to refresh destination playlist", "playlist", existing.ID, "error", err)
		} else if refreshed != nil {
			existing = refreshed
		}
	} else {
		e.logger.Info("no new tracks to add", "playlist", existing.Name)
	}

	result.DestinationPlaylist = existing
	result.MatchedTracks = len(newIDs)
	return nil
}

// SyncCapabilities merges what the source/destination pair supports: flags
// are ANDed, limits take the minimum of the two services.
func (e *PlaylistEngine) SyncCapabilities() models.SyncCapabilities {
	src := e.source.Capabilities()
	dst := e.destination.Capabilities()

	return models.SyncCapabilities{
		CanSync:            src.CanRead && dst.CanWrite,
		CanCreatePlaylists: src.CanCreatePlaylists && dst.CanCreatePlaylists,
		SupportsISRC:       src.SupportsISRC && dst.SupportsISRC,
		MaxPlaylistTracks:  min(src.MaxPlaylistTracks, dst.MaxPlaylistTracks),
		BatchSize:          min(src.BatchSize, dst.BatchSize),
		Source:             models.ServiceInfo{Name: e.source.Name(), Capabilities: src},
		Destination:        models.ServiceInfo{Name: e.destination.Name(), Capabilities: dst},
	}
}

// ValidateSync checks that a sync can run at all: the source playlist is
// reachable, the pair's merged capabilities permit sync, and the track count
// fits the destination's limit. Failures come back structured, not raised.
func (e *PlaylistEngine) ValidateSync(ctx context.Context, sourcePlaylistID string) *models.Validation {
	capabilities := e.SyncCapabilities()

	if !capabilities.CanSync {
		return &models.Validation{
			Valid:        false,
			Error:        shared.ErrSyncUnsupported.Error(),
			Capabilities: &capabilities,
		}
	}

	playlist, err := e.source.GetPlaylistDetails(ctx, sourcePlaylistID)
	if err != nil {
		return &models.Validation{
			Valid:        false,
			Error:        err.Error(),
			Capabilities: &capabilities,
		}
	}

	if playlist.TrackCount > capabilities.MaxPlaylistTracks {
		return &models.Validation{
			Valid: false,
			Error: fmt.Sprintf("%s: %d tracks exceeds limit of %d",
				shared.ErrPlaylistTooBig.Error(), playlist.TrackCount, capabilities.MaxPlaylistTracks),
			SourcePlaylist: playlist,
			Capabilities:   &capabilities,
		}
	}

	return &models.Validation{
		Valid:          true,
		SourcePlaylist: playlist,
		Capabilities:   &capabilities,
	}
}
