// Apple Music API implementation of [Service]
//
// Apple Music API response types based on https://developer.apple.com/documentation/applemusicapi
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"playbridge/internal/models"
	"playbridge/internal/shared"
)

const appleMusicBaseURL = "https://api.music.apple.com/v1"

// AppleMusicArtwork represents artwork attached to a resource.
type AppleMusicArtwork struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// AppleMusicSongAttributes holds the attributes of a catalog or library song.
type AppleMusicSongAttributes struct {
	Name             string            `json:"name"`
	ArtistName       string            `json:"artistName"`
	AlbumName        string            `json:"albumName"`
	DurationInMillis int               `json:"durationInMillis"`
	ISRC             string            `json:"isrc"`
	URL              string            `json:"url"`
	Artwork          AppleMusicArtwork `json:"artwork"`
}

// AppleMusicSong represents a song resource.
type AppleMusicSong struct {
	ID         string                   `json:"id"`
	Type       string                   `json:"type"`
	Attributes AppleMusicSongAttributes `json:"attributes"`
}

// AppleMusicPlaylistAttributes holds the attributes of a library playlist.
type AppleMusicPlaylistAttributes struct {
	Name        string `json:"name"`
	Description struct {
		Standard string `json:"standard"`
	} `json:"description"`
	Artwork    AppleMusicArtwork `json:"artwork"`
	CanEdit    bool              `json:"canEdit"`
	TrackCount int               `json:"trackCount"`
	DateAdded  string            `json:"dateAdded"`
	IsPublic   bool              `json:"isPublic"`
}

// AppleMusicPlaylist represents a library playlist resource.
type AppleMusicPlaylist struct {
	ID         string                       `json:"id"`
	Type       string                       `json:"type"`
	Attributes AppleMusicPlaylistAttributes `json:"attributes"`
}

// appleMusicPage is the generic paginated envelope used by the library and
// catalog endpoints.
type appleMusicPage[T any] struct {
	Data []T    `json:"data"`
	Next string `json:"next"`
	Meta struct {
		Total int `json:"total"`
	} `json:"meta"`
}

// AppleMusicService implements the [Service] interface for Apple Music API
// interactions. Requires a developer token (signed JWT) and a Music-User-Token
// for library access; catalog reads are scoped to a storefront.
type AppleMusicService struct {
	developerToken string
	userToken      string
	storefront     string
	httpClient     *http.Client
	baseURL        string
}

// NewAppleMusicService creates a new Apple Music service with the given
// credentials. Expects developer_token, user_token, and optionally storefront
// (defaults to "us").
func NewAppleMusicService(credentials map[string]string) (*AppleMusicService, error) {
	developerToken, ok := credentials["developer_token"]
	if !ok || developerToken == "" {
		return nil, fmt.Errorf("%w: missing developer_token", shared.ErrMissingCredentials)
	}

	storefront := credentials["storefront"]
	if storefront == "" {
		storefront = "us"
	}

	return &AppleMusicService{
		developerToken: developerToken,
		userToken:      credentials["user_token"],
		storefront:     storefront,
		httpClient:     http.DefaultClient,
		baseURL:        appleMusicBaseURL,
	}, nil
}

func (s *AppleMusicService) Name() string {
	return "Apple Music"
}

// Authenticate stores the Music-User-Token. The developer token is validated
// at construction; Apple has no server-side exchange step.
func (s *AppleMusicService) Authenticate(ctx context.Context, credentials map[string]string) error {
	if userToken, ok := credentials["user_token"]; ok && userToken != "" {
		s.userToken = userToken
	}

	if s.userToken == "" {
		return fmt.Errorf("%w: missing user_token", shared.ErrMissingCredentials)
	}

	return nil
}

// Capabilities reports what the Apple Music integration supports.
func (s *AppleMusicService) Capabilities() models.Capabilities {
	return models.Capabilities{
		CanRead:            true,
		CanWrite:           true,
		CanCreatePlaylists: true,
		SupportsISRC:       true,
		MaxPlaylistTracks:  10000,
		BatchSize:          100,
	}
}

// doRequest performs an authenticated HTTP request to the Apple Music API.
// Library endpoints additionally require the Music-User-Token header.
func (s *AppleMusicService) doRequest(ctx context.Context, method, endpoint string, body interface{}, result interface{}) error {
	if s.userToken == "" && strings.HasPrefix(endpoint, "/me/") {
		return fmt.Errorf("%w: call Authenticate first", shared.ErrNotAuthenticated)
	}

	apiURL := s.baseURL + endpoint

	var reqBody *bytes.Buffer
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewBuffer(data)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, apiURL, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+s.developerToken)
	req.Header.Set("Content-Type", "application/json")
	if s.userToken != "" {
		req.Header.Set("Music-User-Token", s.userToken)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, endpoint)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: apple music returned status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// toTrack converts a song resource to the shared model. Apple does not expose
// release type per song, so AlbumType stays unknown and compilation detection
// falls back to album-name keywords.
func (song AppleMusicSong) toTrack() models.Track {
	track := models.Track{
		ID:         song.ID,
		Title:      song.Attributes.Name,
		Artist:     song.Attributes.ArtistName,
		Album:      song.Attributes.AlbumName,
		DurationMS: song.Attributes.DurationInMillis,
		ISRC:       song.Attributes.ISRC,
		URI:        song.Attributes.URL,
	}

	if song.Attributes.ISRC != "" {
		track.ExternalIDs = map[string]string{"isrc": song.Attributes.ISRC}
	}

	return track
}

func (p AppleMusicPlaylist) toPlaylist() models.Playlist {
	playlist := models.Playlist{
		ID:          p.ID,
		Name:        p.Attributes.Name,
		Description: p.Attributes.Description.Standard,
		TrackCount:  p.Attributes.TrackCount,
	}

	if p.Attributes.Artwork.URL != "" {
		playlist.Images = []models.Image{{
			URL:    p.Attributes.Artwork.URL,
			Width:  p.Attributes.Artwork.Width,
			Height: p.Attributes.Artwork.Height,
		}}
	}

	return playlist
}

// GetPlaylists retrieves all playlists in the user's library, following the
// next cursor until exhausted.
func (s *AppleMusicService) GetPlaylists(ctx context.Context) ([]models.Playlist, error) {
	var all []models.Playlist
	endpoint := "/me/library/playlists?limit=100"

	for endpoint != "" {
		var page appleMusicPage[AppleMusicPlaylist]
		if err := s.doRequest(ctx, "GET", endpoint, nil, &page); err != nil {
			return nil, err
		}

		for _, playlist := range page.Data {
			all = append(all, playlist.toPlaylist())
		}

		// next comes back with the /v1 prefix already stripped off the base.
		endpoint = strings.TrimPrefix(page.Next, "/v1")
	}

	return all, nil
}

// GetPlaylistDetails retrieves a library playlist's metadata by ID.
func (s *AppleMusicService) GetPlaylistDetails(ctx context.Context, playlistID string) (*models.Playlist, error) {
	endpoint := fmt.Sprintf("/me/library/playlists/%s", playlistID)

	var page appleMusicPage[AppleMusicPlaylist]
	if err := s.doRequest(ctx, "GET", endpoint, nil, &page); err != nil {
		return nil, err
	}

	if len(page.Data) == 0 {
		return nil, fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, playlistID)
	}

	playlist := page.Data[0].toPlaylist()
	return &playlist, nil
}

// GetPlaylistTracks retrieves every track in a library playlist, in playlist
// order.
func (s *AppleMusicService) GetPlaylistTracks(ctx context.Context, playlistID string) ([]models.Track, error) {
	var tracks []models.Track
	endpoint := fmt.Sprintf("/me/library/playlists/%s/tracks?limit=100", playlistID)

	for endpoint != "" {
		var page appleMusicPage[AppleMusicSong]
		if err := s.doRequest(ctx, "GET", endpoint, nil, &page); err != nil {
			return nil, err
		}

		for _, song := range page.Data {
			tracks = append(tracks, song.toTrack())
		}

		endpoint = strings.TrimPrefix(page.Next, "/v1")
	}

	return tracks, nil
}

// SearchTrack searches the storefront catalog with a free-text term.
func (s *AppleMusicService) SearchTrack(ctx context.Context, query string, limit int) ([]models.Track, error) {
	if limit <= 0 {
		limit = 5
	}
	if limit > 25 {
		limit = 25
	}

	endpoint := fmt.Sprintf("/catalog/%s/search?term=%s&types=songs&limit=%d",
		s.storefront, url.QueryEscape(query), limit)

	var response struct {
		Results struct {
			Songs appleMusicPage[AppleMusicSong] `json:"songs"`
		} `json:"results"`
	}

	if err := s.doRequest(ctx, "GET", endpoint, nil, &response); err != nil {
		return nil, err
	}

	tracks := make([]models.Track, 0, len(response.Results.Songs.Data))
	for _, song := range response.Results.Songs.Data {
		tracks = append(tracks, song.toTrack())
	}

	return tracks, nil
}

// SearchByISRC looks up catalog songs by recording code using the
// filter[isrc] parameter.
func (s *AppleMusicService) SearchByISRC(ctx context.Context, isrc string) ([]models.Track, error) {
	endpoint := fmt.Sprintf("/catalog/%s/songs?filter[isrc]=%s", s.storefront, url.QueryEscape(isrc))

	var page appleMusicPage[AppleMusicSong]
	if err := s.doRequest(ctx, "GET", endpoint, nil, &page); err != nil {
		return nil, err
	}

	tracks := make([]models.Track, 0, len(page.Data))
	for _, song := range page.Data {
		tracks = append(tracks, song.toTrack())
	}

	return tracks, nil
}

// CreatePlaylist creates a library playlist populated with the given catalog
// song IDs.
func (s *AppleMusicService) CreatePlaylist(ctx context.Context, name, description string, trackIDs []string) (*models.Playlist, error) {
	trackData := make([]map[string]string, 0, len(trackIDs))
	for _, id := range trackIDs {
		trackData = append(trackData, map[string]string{"id": id, "type": "songs"})
	}

	body := map[string]interface{}{
		"attributes": map[string]string{
			"name":        name,
			"description": description,
		},
		"relationships": map[string]interface{}{
			"tracks": map[string]interface{}{
				"data": trackData,
			},
		},
	}

	var page appleMusicPage[AppleMusicPlaylist]
	if err := s.doRequest(ctx, "POST", "/me/library/playlists", body, &page); err != nil {
		return nil, err
	}

	if len(page.Data) == 0 {
		return nil, fmt.Errorf("%w: playlist creation returned no data", shared.ErrAPIRequest)
	}

	playlist := page.Data[0].toPlaylist()
	playlist.TrackCount = len(trackIDs)
	return &playlist, nil
}

// AddTracksToPlaylist appends catalog songs to an existing library playlist.
func (s *AppleMusicService) AddTracksToPlaylist(ctx context.Context, playlistID string, trackIDs []string) error {
	if len(trackIDs) == 0 {
		return nil
	}

	trackData := make([]map[string]string, 0, len(trackIDs))
	for _, id := range trackIDs {
		trackData = append(trackData, map[string]string{"id": id, "type": "songs"})
	}

	endpoint := fmt.Sprintf("/me/library/playlists/%s/tracks", playlistID)
	body := map[string]interface{}{"data": trackData}

	return s.doRequest(ctx, "POST", endpoint, body, nil)
}

// FindPlaylistByName returns the library playlist with the given name, or
// (nil, nil) when no playlist with that name exists. Comparison is
// case-insensitive.
func (s *AppleMusicService) FindPlaylistByName(ctx context.Context, name string) (*models.Playlist, error) {
	playlists, err := s.GetPlaylists(ctx)
	if err != nil {
		return nil, err
	}

	for _, playlist := range playlists {
		if strings.EqualFold(playlist.Name, name) {
			return &playlist, nil
		}
	}

	return nil, nil
}
