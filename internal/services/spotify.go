// Spotify API implementation of [Service]
//
// Spotify API response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"playbridge/internal/models"
	"playbridge/internal/shared"
)

const (
	spotifyAuthURL  = "https://accounts.spotify.com/authorize"
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"
)

type spotifyExternalIDs struct {
	ISRC string `json:"isrc"`
}

// SpotifyImage represents an image resource.
type SpotifyImage struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

// SpotifyUser represents a Spotify user profile.
type SpotifyUser struct {
	ID          string         `json:"id"`
	DisplayName string         `json:"display_name"`
	Country     string         `json:"country"`
	Images      []SpotifyImage `json:"images"`
}

// SpotifyArtist represents a Spotify artist.
type SpotifyArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URI  string `json:"uri"`
}

// SpotifyAlbum represents a Spotify album.
type SpotifyAlbum struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	AlbumType   string         `json:"album_type"` // album, single, compilation
	ReleaseDate string         `json:"release_date"`
	TotalTracks int            `json:"total_tracks"`
	Images      []SpotifyImage `json:"images"`
	URI         string         `json:"uri"`
}

// SpotifyTrack represents a Spotify track.
type SpotifyTrack struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Artists     []SpotifyArtist    `json:"artists"`
	Album       SpotifyAlbum       `json:"album"`
	DurationMS  int                `json:"duration_ms"`
	Explicit    bool               `json:"explicit"`
	ExternalIDs spotifyExternalIDs `json:"external_ids"`
	Popularity  int                `json:"popularity"`
	URI         string             `json:"uri"`
}

type spotifyOwner struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

type spotifyTrackRef struct {
	Total int `json:"total"`
}

// SpotifyPlaylist represents a Spotify playlist.
type SpotifyPlaylist struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Owner       spotifyOwner    `json:"owner"`
	Public      bool            `json:"public"`
	Tracks      spotifyTrackRef `json:"tracks"`
	Images      []SpotifyImage  `json:"images"`
	URI         string          `json:"uri"`
}

// SpotifyPlaylistTrack represents a track within a playlist context.
type SpotifyPlaylistTrack struct {
	AddedAt string        `json:"added_at"`
	Track   *SpotifyTrack `json:"track"`
}

// SpotifyPaginatedPlaylists represents a paginated response of playlists.
type SpotifyPaginatedPlaylists struct {
	Items  []SpotifyPlaylist `json:"items"`
	Total  int               `json:"total"`
	Limit  int               `json:"limit"`
	Offset int               `json:"offset"`
	Next   *string           `json:"next"`
}

// SpotifyPaginatedPlaylistTracks represents a paginated response of playlist tracks.
type SpotifyPaginatedPlaylistTracks struct {
	Items  []SpotifyPlaylistTrack `json:"items"`
	Total  int                    `json:"total"`
	Limit  int                    `json:"limit"`
	Offset int                    `json:"offset"`
	Next   *string                `json:"next"`
}

// SpotifyService implements the [Service] interface for Spotify API interactions.
// Uses [oauth2] for authentication and provides methods for playlist and track operations.
type SpotifyService struct {
	config     *oauth2.Config
	token      *oauth2.Token
	httpClient *http.Client
	baseURL    string
	userID     string
}

// NewSpotifyService creates a new Spotify service with the given OAuth2 credentials.
func NewSpotifyService(credentials map[string]string) (*SpotifyService, error) {
	clientID, ok := credentials["client_id"]
	if !ok || clientID == "" {
		return nil, fmt.Errorf("%w: missing client_id", shared.ErrMissingCredentials)
	}

	clientSecret, ok := credentials["client_secret"]
	if !ok || clientSecret == "" {
		return nil, fmt.Errorf("%w: missing client_secret", shared.ErrMissingCredentials)
	}

	redirectURI, ok := credentials["redirect_uri"]
	if !ok || redirectURI == "" {
		redirectURI = "http://localhost:3000/callback"
	}

	config := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURI,
		Scopes: []string{
			"user-read-private",
			"playlist-read-private",
			"playlist-read-collaborative",
			"playlist-modify-public",
			"playlist-modify-private",
		},
		Endpoint: oauth2.Endpoint{
			AuthURL:  spotifyAuthURL,
			TokenURL: spotifyTokenURL,
		},
	}

	return &SpotifyService{
		config:     config,
		httpClient: http.DefaultClient,
		baseURL:    spotifyBaseURL,
	}, nil
}

func (s *SpotifyService) Name() string {
	return "Spotify"
}

// GetAuthURL returns the OAuth2 authorization URL for user login.
func (s *SpotifyService) GetAuthURL(state string) string {
	return s.config.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// OAuthConfig exposes the underlying OAuth2 config for the callback flow.
func (s *SpotifyService) OAuthConfig() *oauth2.Config {
	return s.config
}

// UseToken installs an already-exchanged OAuth2 token.
func (s *SpotifyService) UseToken(ctx context.Context, token *oauth2.Token) {
	s.token = token
	s.httpClient = s.config.Client(ctx, token)
}

// Authenticate performs OAuth2 authentication with Spotify. Accepts an
// "access_token", a "refresh_token", or an "auth_code" in credentials, in
// that order of preference.
func (s *SpotifyService) Authenticate(ctx context.Context, credentials map[string]string) error {
	if accessToken, ok := credentials["access_token"]; ok && accessToken != "" {
		s.token = &oauth2.Token{AccessToken: accessToken}
		s.httpClient = s.config.Client(ctx, s.token)
		return nil
	}

	if refreshToken, ok := credentials["refresh_token"]; ok && refreshToken != "" {
		// Expired token forces the oauth2 transport to refresh on first use.
		s.token = &oauth2.Token{
			RefreshToken: refreshToken,
			Expiry:       time.Now().Add(-time.Minute),
		}
		s.httpClient = s.config.Client(ctx, s.token)
		return nil
	}

	if authCode, ok := credentials["auth_code"]; ok && authCode != "" {
		token, err := s.config.Exchange(ctx, authCode)
		if err != nil {
			return fmt.Errorf("%w: failed to exchange auth code: %v", shared.ErrAuthFailed, err)
		}
		s.token = token
		s.httpClient = s.config.Client(ctx, s.token)
		return nil
	}

	return fmt.Errorf("%w: missing access_token, refresh_token, or auth_code", shared.ErrMissingCredentials)
}

// Capabilities reports what the Spotify integration supports.
func (s *SpotifyService) Capabilities() models.Capabilities {
	return models.Capabilities{
		CanRead:            true,
		CanWrite:           true,
		CanCreatePlaylists: true,
		SupportsISRC:       true,
		MaxPlaylistTracks:  10000,
		BatchSize:          100,
	}
}

// doRequest performs an authenticated HTTP request to the Spotify API.
func (s *SpotifyService) doRequest(ctx context.Context, method, endpoint string, body interface{}, result interface{}) error {
	if s.token == nil {
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

	req.Header.Set("Authorization", "Bearer "+s.token.AccessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, endpoint)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: spotify returned status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// toTrack converts a Spotify track response to the shared model.
func (t SpotifyTrack) toTrack() models.Track {
	names := make([]string, 0, len(t.Artists))
	for _, artist := range t.Artists {
		names = append(names, artist.Name)
	}

	track := models.Track{
		ID:         t.ID,
		Title:      t.Name,
		Artist:     strings.Join(names, ", "),
		Album:      t.Album.Name,
		DurationMS: t.DurationMS,
		ISRC:       t.ExternalIDs.ISRC,
		URI:        t.URI,
		AlbumType:  models.AlbumType(t.Album.AlbumType),
	}

	if t.ExternalIDs.ISRC != "" {
		track.ExternalIDs = map[string]string{"isrc": t.ExternalIDs.ISRC}
	}

	return track
}

func (p SpotifyPlaylist) toPlaylist() models.Playlist {
	images := make([]models.Image, 0, len(p.Images))
	for _, img := range p.Images {
		images = append(images, models.Image{URL: img.URL, Width: img.Width, Height: img.Height})
	}

	return models.Playlist{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		TrackCount:  p.Tracks.Total,
		Images:      images,
		Owner:       p.Owner.DisplayName,
	}
}

// UserProfile retrieves the current authenticated user's profile.
func (s *SpotifyService) UserProfile(ctx context.Context) (*SpotifyUser, error) {
	var user SpotifyUser
	if err := s.doRequest(ctx, "GET", "/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// GetPlaylists retrieves all playlists for the authenticated user.
func (s *SpotifyService) GetPlaylists(ctx context.Context) ([]models.Playlist, error) {
	var all []models.Playlist
	limit := 50
	offset := 0

	for {
		endpoint := fmt.Sprintf("/me/playlists?limit=%d&offset=%d", limit, offset)

		var response SpotifyPaginatedPlaylists
		if err := s.doRequest(ctx, "GET", endpoint, nil, &response); err != nil {
			return nil, err
		}

		for _, sp := range response.Items {
			all = append(all, sp.toPlaylist())
		}

		if response.Next == nil {
			break
		}
		offset += limit
	}

	return all, nil
}

// GetPlaylistDetails retrieves a playlist's metadata by ID.
func (s *SpotifyService) GetPlaylistDetails(ctx context.Context, playlistID string) (*models.Playlist, error) {
	endpoint := fmt.Sprintf("/playlists/%s", playlistID)

	var sp SpotifyPlaylist
	if err := s.doRequest(ctx, "GET", endpoint, nil, &sp); err != nil {
		return nil, err
	}

	playlist := sp.toPlaylist()
	return &playlist, nil
}

// GetPlaylistTracks retrieves every track in a playlist, in playlist order.
// Local files and removed tracks come back with a null track object and are
// skipped.
func (s *SpotifyService) GetPlaylistTracks(ctx context.Context, playlistID string) ([]models.Track, error) {
	var tracks []models.Track
	limit := 100
	offset := 0

	for {
		endpoint := fmt.Sprintf("/playlists/%s/tracks?limit=%d&offset=%d", playlistID, limit, offset)

		var response SpotifyPaginatedPlaylistTracks
		if err := s.doRequest(ctx, "GET", endpoint, nil, &response); err != nil {
			return nil, err
		}

		for _, item := range response.Items {
			if item.Track == nil || item.Track.ID == "" {
				continue
			}
			tracks = append(tracks, item.Track.toTrack())
		}

		if response.Next == nil {
			break
		}
		offset += limit
	}

	return tracks, nil
}

// SearchTrack searches the Spotify catalog with a free-text query.
func (s *SpotifyService) SearchTrack(ctx context.Context, query string, limit int) ([]models.Track, error) {
	if limit <= 0 {
		limit = 5
	}
	if limit > 50 {
		limit = 50
	}

	endpoint := fmt.Sprintf("/search?q=%s&type=track&limit=%d", url.QueryEscape(query), limit)

	var response struct {
		Tracks struct {
			Items []SpotifyTrack `json:"items"`
		} `json:"tracks"`
	}

	if err := s.doRequest(ctx, "GET", endpoint, nil, &response); err != nil {
		return nil, err
	}

	tracks := make([]models.Track, 0, len(response.Tracks.Items))
	for _, item := range response.Tracks.Items {
		tracks = append(tracks, item.toTrack())
	}

	return tracks, nil
}

// SearchByISRC looks up catalog tracks by recording code using Spotify's
// isrc: query filter.
func (s *SpotifyService) SearchByISRC(ctx context.Context, isrc string) ([]models.Track, error) {
	return s.SearchTrack(ctx, "isrc:"+isrc, 5)
}

// currentUserID fetches and caches the authenticated user's ID, needed for
// playlist creation.
func (s *SpotifyService) currentUserID(ctx context.Context) (string, error) {
	if s.userID != "" {
		return s.userID, nil
	}

	user, err := s.UserProfile(ctx)
	if err != nil {
		return "", err
	}

	s.userID = user.ID
	return s.userID, nil
}

// CreatePlaylist creates a private playlist and adds the given tracks in
// batches of 100.
func (s *SpotifyService) CreatePlaylist(ctx context.Context, name, description string, trackIDs []string) (*models.Playlist, error) {
	userID, err := s.currentUserID(ctx)
	if err != nil {
		return nil, err
	}

	body := map[string]interface{}{
		"name":        name,
		"description": description,
		"public":      false,
	}

	var sp SpotifyPlaylist
	endpoint := fmt.Sprintf("/users/%s/playlists", userID)
	if err := s.doRequest(ctx, "POST", endpoint, body, &sp); err != nil {
		return nil, err
	}

	if err := s.AddTracksToPlaylist(ctx, sp.ID, trackIDs); err != nil {
		return nil, err
	}

	playlist := sp.toPlaylist()
	playlist.TrackCount = len(trackIDs)
	return &playlist, nil
}

// AddTracksToPlaylist appends tracks to an existing playlist in batches of 100.
func (s *SpotifyService) AddTracksToPlaylist(ctx context.Context, playlistID string, trackIDs []string) error {
	endpoint := fmt.Sprintf("/playlists/%s/tracks", playlistID)

	for start := 0; start < len(trackIDs); start += 100 {
		end := min(start+100, len(trackIDs))

		uris := make([]string, 0, end-start)
		for _, id := range trackIDs[start:end] {
			uris = append(uris, "spotify:track:"+id)
		}

		body := map[string]interface{}{"uris": uris}
		if err := s.doRequest(ctx, "POST", endpoint, body, nil); err != nil {
			return err
		}
	}

	return nil
}

// FindPlaylistByName returns the user's playlist with the given name, or
// (nil, nil) when no playlist with that name exists. Comparison is
// case-insensitive.
func (s *SpotifyService) FindPlaylistByName(ctx context.Context, name string) (*models.Playlist, error) {
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
