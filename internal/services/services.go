package services

import (
	"context"

	"playbridge/internal/models"
)

// Service defines the interface for music catalog providers (Spotify, Apple
// Music) that can read playlists, search for tracks, and write playlists.
type Service interface {
	// Name returns the display name of the service (e.g., "Spotify").
	Name() string

	// Authenticate performs OAuth or token authentication with the service.
	// Returns an error if authentication fails.
	Authenticate(ctx context.Context, credentials map[string]string) error

	// GetPlaylists retrieves all playlists for the authenticated user.
	GetPlaylists(ctx context.Context) ([]models.Playlist, error)

	// GetPlaylistDetails retrieves a playlist's metadata by ID.
	GetPlaylistDetails(ctx context.Context, playlistID string) (*models.Playlist, error)

	// GetPlaylistTracks retrieves every track in a playlist, in playlist order.
	GetPlaylistTracks(ctx context.Context, playlistID string) ([]models.Track, error)

	// SearchTrack searches the catalog with a free-text query and returns up
	// to limit candidate tracks, best match first.
	SearchTrack(ctx context.Context, query string, limit int) ([]models.Track, error)

	// CreatePlaylist creates a new playlist populated with the given track IDs.
	CreatePlaylist(ctx context.Context, name, description string, trackIDs []string) (*models.Playlist, error)

	// AddTracksToPlaylist appends tracks to an existing playlist.
	AddTracksToPlaylist(ctx context.Context, playlistID string, trackIDs []string) error

	// FindPlaylistByName returns the user's playlist with the given name, or
	// (nil, nil) when no playlist with that name exists.
	FindPlaylistByName(ctx context.Context, name string) (*models.Playlist, error)

	// Capabilities reports what this service integration supports.
	Capabilities() models.Capabilities
}

// ISRCSearcher is implemented by services whose catalog can be queried by
// International Standard Recording Code. Callers check for it with a type
// assertion and fall back to text search when the service lacks it.
type ISRCSearcher interface {
	SearchByISRC(ctx context.Context, isrc string) ([]models.Track, error)
}
