// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"os"
	"testing"

	"playbridge/internal/models"
)

// MockService is a configurable test double for [services.Service]. Each
// operation delegates to its Fn field when set and returns an empty success
// otherwise.
type MockService struct {
	ServiceName string

	AuthenticateFn        func(ctx context.Context, credentials map[string]string) error
	GetPlaylistsFn        func(ctx context.Context) ([]models.Playlist, error)
	GetPlaylistDetailsFn  func(ctx context.Context, playlistID string) (*models.Playlist, error)
	GetPlaylistTracksFn   func(ctx context.Context, playlistID string) ([]models.Track, error)
	SearchTrackFn         func(ctx context.Context, query string, limit int) ([]models.Track, error)
	CreatePlaylistFn      func(ctx context.Context, name, description string, trackIDs []string) (*models.Playlist, error)
	AddTracksToPlaylistFn func(ctx context.Context, playlistID string, trackIDs []string) error
	FindPlaylistByNameFn  func(ctx context.Context, name string) (*models.Playlist, error)
	CapabilitiesValue     *models.Capabilities
}

func (m *MockService) Name() string {
	if m.ServiceName != "" {
		return m.ServiceName
	}
	return "mock"
}

func (m *MockService) Authenticate(ctx context.Context, credentials map[string]string) error {
	if m.AuthenticateFn != nil {
		return m.AuthenticateFn(ctx, credentials)
	}
	return nil
}

func (m *MockService) GetPlaylists(ctx context.Context) ([]models.Playlist, error) {
	if m.GetPlaylistsFn != nil {
		return m.GetPlaylistsFn(ctx)
	}
	return []models.Playlist{}, nil
}

func (m *MockService) GetPlaylistDetails(ctx context.Context, playlistID string) (*models.Playlist, error) {
	if m.GetPlaylistDetailsFn != nil {
		return m.GetPlaylistDetailsFn(ctx, playlistID)
	}
	return &models.Playlist{ID: playlistID}, nil
}

func (m *MockService) GetPlaylistTracks(ctx context.Context, playlistID string) ([]models.Track, error) {
	if m.GetPlaylistTracksFn != nil {
		return m.GetPlaylistTracksFn(ctx, playlistID)
	}
	return []models.Track{}, nil
}

func (m *MockService) SearchTrack(ctx context.Context, query string, limit int) ([]models.Track, error) {
	if m.SearchTrackFn != nil {
		return m.SearchTrackFn(ctx, query, limit)
	}
	return []models.Track{}, nil
}

func (m *MockService) CreatePlaylist(ctx context.Context, name, description string, trackIDs []string) (*models.Playlist, error) {
	if m.CreatePlaylistFn != nil {
		return m.CreatePlaylistFn(ctx, name, description, trackIDs)
	}
	return &models.Playlist{ID: "created", Name: name, Description: description, TrackCount: len(trackIDs)}, nil
}

func (m *MockService) AddTracksToPlaylist(ctx context.Context, playlistID string, trackIDs []string) error {
	if m.AddTracksToPlaylistFn != nil {
		return m.AddTracksToPlaylistFn(ctx, playlistID, trackIDs)
	}
	return nil
}

func (m *MockService) FindPlaylistByName(ctx context.Context, name string) (*models.Playlist, error) {
	if m.FindPlaylistByNameFn != nil {
		return m.FindPlaylistByNameFn(ctx, name)
	}
	return nil, nil
}

func (m *MockService) Capabilities() models.Capabilities {
	if m.CapabilitiesValue != nil {
		return *m.CapabilitiesValue
	}
	return models.Capabilities{
		CanRead:            true,
		CanWrite:           true,
		CanCreatePlaylists: true,
		SupportsISRC:       true,
		MaxPlaylistTracks:  10000,
		BatchSize:          100,
	}
}

// MockISRCService extends [MockService] with the optional recording-code
// lookup capability. Use plain [MockService] to exercise the degraded path
// where the destination lacks it.
type MockISRCService struct {
	MockService

	SearchByISRCFn func(ctx context.Context, isrc string) ([]models.Track, error)
}

func (m *MockISRCService) SearchByISRC(ctx context.Context, isrc string) ([]models.Track, error) {
	if m.SearchByISRCFn != nil {
		return m.SearchByISRCFn(ctx, isrc)
	}
	return []models.Track{}, nil
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
