package models

import "time"

// AlbumType classifies the release a candidate track appears on.
// Only some services expose it; the zero value is AlbumTypeUnknown.
type AlbumType string

const (
	AlbumTypeAlbum       AlbumType = "album"
	AlbumTypeSingle      AlbumType = "single"
	AlbumTypeCompilation AlbumType = "compilation"
	AlbumTypeUnknown     AlbumType = ""
)

// Track represents a music track from any catalog service.
type Track struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	Artist      string            `json:"artist"` // full artist-credit string
	Album       string            `json:"album"`
	DurationMS  int               `json:"duration_ms,omitempty"`
	ISRC        string            `json:"isrc,omitempty"`
	URI         string            `json:"uri,omitempty"`
	ExternalIDs map[string]string `json:"external_ids,omitempty"`
	AlbumType   AlbumType         `json:"album_type,omitempty"`
}

// Image describes playlist artwork at one resolution.
type Image struct {
	URL    string `json:"url"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
}

// Playlist represents a playlist snapshot from any catalog service.
// Snapshots are re-fetched, never mutated in place.
type Playlist struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	TrackCount  int     `json:"track_count"`
	Images      []Image `json:"images,omitempty"`
	Owner       string  `json:"owner,omitempty"`
}

// PlaylistExport bundles a playlist snapshot with its full track list for
// file export.
type PlaylistExport struct {
	Playlist Playlist `json:"playlist"`
	Tracks   []Track  `json:"tracks"`
}

// MatchMethod identifies which strategy produced a match.
type MatchMethod string

const (
	MatchMethodISRC  MatchMethod = "isrc"
	MatchMethodExact MatchMethod = "exact"
	MatchMethodFuzzy MatchMethod = "fuzzy"
	MatchMethodNone  MatchMethod = "none"
)

// MatchResult is the outcome of matching one source track against the
// destination catalog.
//
// Invariant: Method == MatchMethodNone iff Destination == nil iff
// Confidence == 0. Use [NewMatch] and [NoMatch] to preserve it.
type MatchResult struct {
	Source      Track       `json:"source"`
	Destination *Track      `json:"destination,omitempty"`
	Confidence  float64     `json:"confidence"`
	Method      MatchMethod `json:"method"`
}

// NewMatch builds a MatchResult for a found destination track.
func NewMatch(source Track, destination Track, confidence float64, method MatchMethod) MatchResult {
	return MatchResult{
		Source:      source,
		Destination: &destination,
		Confidence:  confidence,
		Method:      method,
	}
}

// NoMatch builds the MatchResult for a track that failed every strategy.
func NoMatch(source Track) MatchResult {
	return MatchResult{
		Source:     source,
		Confidence: 0,
		Method:     MatchMethodNone,
	}
}

// Matched reports whether a destination track was found.
func (m MatchResult) Matched() bool {
	return m.Destination != nil
}

// UnmatchedTrack describes a source track that found no destination match.
type UnmatchedTrack struct {
	Title  string `json:"title"`
	Artist string `json:"artist"`
	Album  string `json:"album"`
}

// SyncMode selects create-new versus update-existing write-back semantics.
type SyncMode string

const (
	SyncModeCreate SyncMode = "create"
	SyncModeUpdate SyncMode = "update"
)

// SyncResult aggregates the outcome of one playlist sync.
//
// Constructed at sync start via [NewSyncResult], mutated in place by the
// orchestrator as each phase completes, and finalized on both the success
// and failure paths.
type SyncResult struct {
	SourcePlaylist      *Playlist        `json:"source_playlist,omitempty"`
	DestinationPlaylist *Playlist        `json:"destination_playlist,omitempty"`
	SourceService       string           `json:"source_service"`
	DestinationService  string           `json:"destination_service"`
	TotalTracks         int              `json:"total_tracks"`
	MatchedTracks       int              `json:"matched_tracks"`
	UnmatchedTracks     []UnmatchedTrack `json:"unmatched_tracks"`
	Errors              []string         `json:"errors"`
	StartTime           int64            `json:"start_time"` // epoch millis
	EndTime             int64            `json:"end_time,omitempty"`
	DurationMS          int64            `json:"duration_ms,omitempty"`
	SyncMode            SyncMode         `json:"sync_mode"`
}

// NewSyncResult constructs a SyncResult stamped with the current time and the
// requested sync mode.
func NewSyncResult(sourceService, destinationService string, mode SyncMode) *SyncResult {
	if mode == "" {
		mode = SyncModeCreate
	}
	return &SyncResult{
		SourceService:      sourceService,
		DestinationService: destinationService,
		UnmatchedTracks:    []UnmatchedTrack{},
		Errors:             []string{},
		StartTime:          time.Now().UnixMilli(),
		SyncMode:           mode,
	}
}

// Finalize records the end time and derived duration. Safe to call on both
// success and failure paths; later calls overwrite earlier ones.
func (r *SyncResult) Finalize() {
	r.EndTime = time.Now().UnixMilli()
	r.DurationMS = r.EndTime - r.StartTime
}

// Capabilities describes what operations a catalog service integration
// supports.
type Capabilities struct {
	CanRead            bool `json:"can_read"`
	CanWrite           bool `json:"can_write"`
	CanCreatePlaylists bool `json:"can_create_playlists"`
	SupportsISRC       bool `json:"supports_isrc"`
	MaxPlaylistTracks  int  `json:"max_playlist_tracks"`
	BatchSize          int  `json:"batch_size"`
}

// SyncCapabilities summarizes what a source/destination pair can do together:
// flags are ANDed, limits take the minimum of the two services.
type SyncCapabilities struct {
	CanSync            bool         `json:"can_sync"`
	CanCreatePlaylists bool         `json:"can_create_playlists"`
	SupportsISRC       bool         `json:"supports_isrc"`
	MaxPlaylistTracks  int          `json:"max_playlist_tracks"`
	BatchSize          int          `json:"batch_size"`
	Source             ServiceInfo  `json:"source"`
	Destination        ServiceInfo  `json:"destination"`
}

// ServiceInfo pairs a service name with its capabilities for reporting.
type ServiceInfo struct {
	Name         string       `json:"name"`
	Capabilities Capabilities `json:"capabilities"`
}

// Validation is the structured answer to "can this sync run at all".
// Invalid outcomes carry Error; valid ones carry the source playlist summary
// and the merged capabilities.
type Validation struct {
	Valid          bool              `json:"valid"`
	Error          string            `json:"error,omitempty"`
	SourcePlaylist *Playlist         `json:"source_playlist,omitempty"`
	Capabilities   *SyncCapabilities `json:"capabilities,omitempty"`
}
