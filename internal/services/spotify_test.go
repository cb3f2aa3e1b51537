package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"golang.org/x/oauth2"

	"playbridge/internal/shared"
)

func newTestSpotifyService(t *testing.T, handler http.Handler) (*SpotifyService, *httptest.Server) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	srv, err := NewSpotifyService(map[string]string{
		"client_id":     "test_client_id",
		"client_secret": "test_client_secret",
	})
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}

	srv.baseURL = server.URL
	srv.token = &oauth2.Token{AccessToken: "test_access_token"}
	srv.httpClient = server.Client()

	return srv, server
}

func TestNewSpotifyService(t *testing.T) {
	t.Run("With Valid Credentials", func(t *testing.T) {
		srv, err := NewSpotifyService(map[string]string{
			"client_id":     "test_client_id",
			"client_secret": "test_client_secret",
			"redirect_uri":  "http://localhost:9999/cb",
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if srv.Name() != "Spotify" {
			t.Errorf("expected service name 'Spotify', got %s", srv.Name())
		}
		if srv.config.RedirectURL != "http://localhost:9999/cb" {
			t.Errorf("unexpected redirect URI: %s", srv.config.RedirectURL)
		}
	})

	t.Run("Missing Client ID", func(t *testing.T) {
		_, err := NewSpotifyService(map[string]string{"client_secret": "secret"})
		if !errors.Is(err, shared.ErrMissingCredentials) {
			t.Errorf("expected ErrMissingCredentials, got %v", err)
		}
	})

	t.Run("Missing Client Secret", func(t *testing.T) {
		_, err := NewSpotifyService(map[string]string{"client_id": "id"})
		if !errors.Is(err, shared.ErrMissingCredentials) {
			t.Errorf("expected ErrMissingCredentials, got %v", err)
		}
	})
}

func TestSpotifyAuthenticate(t *testing.T) {
	srv, err := NewSpotifyService(map[string]string{
		"client_id":     "test_client_id",
		"client_secret": "test_client_secret",
	})
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}

	t.Run("With Access Token", func(t *testing.T) {
		err := srv.Authenticate(context.Background(), map[string]string{
			"access_token": "test_access_token",
		})
		if err != nil {
			t.Errorf("expected no error with access token, got %v", err)
		}
	})

	t.Run("With Refresh Token", func(t *testing.T) {
		err := srv.Authenticate(context.Background(), map[string]string{
			"refresh_token": "test_refresh_token",
		})
		if err != nil {
			t.Errorf("expected no error with refresh token, got %v", err)
		}
		if srv.token.RefreshToken != "test_refresh_token" {
			t.Error("expected refresh token to be stored")
		}
		if srv.token.Valid() {
			t.Error("expected stored token to be expired so the transport refreshes it")
		}
	})

	t.Run("Missing Credentials", func(t *testing.T) {
		err := srv.Authenticate(context.Background(), map[string]string{})
		if !errors.Is(err, shared.ErrMissingCredentials) {
			t.Errorf("expected ErrMissingCredentials, got %v", err)
		}
	})

	t.Run("Unauthenticated Request", func(t *testing.T) {
		fresh, _ := NewSpotifyService(map[string]string{
			"client_id":     "test_client_id",
			"client_secret": "test_client_secret",
		})

		_, err := fresh.GetPlaylists(context.Background())
		if !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
	})
}

func TestSpotifyGetAuthURL(t *testing.T) {
	srv, err := NewSpotifyService(map[string]string{
		"client_id":     "test_client_id",
		"client_secret": "test_client_secret",
	})
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}

	authURL := srv.GetAuthURL("test_state")
	if !strings.Contains(authURL, "accounts.spotify.com") {
		t.Error("auth URL should contain Spotify domain")
	}
	if !strings.Contains(authURL, "test_client_id") {
		t.Error("auth URL should contain client_id")
	}
	if !strings.Contains(authURL, "test_state") {
		t.Error("auth URL should contain state")
	}
}

func TestSpotifyGetPlaylistTracks(t *testing.T) {
	srv, _ := newTestSpotifyService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/playlists/pl1/tracks") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test_access_token" {
			t.Errorf("unexpected authorization header %q", got)
		}

		json.NewEncoder(w).Encode(map[string]interface{}{
			"items": []map[string]interface{}{
				{
					"track": map[string]interface{}{
						"id":          "t1",
						"name":        "Bohemian Rhapsody",
						"duration_ms": 354320,
						"artists": []map[string]string{
							{"name": "Queen"},
						},
						"album": map[string]interface{}{
							"name":       "A Night at the Opera",
							"album_type": "album",
						},
						"external_ids": map[string]string{"isrc": "GBUM71029604"},
					},
				},
				{
					// local file, track object is null
					"track": nil,
				},
			},
			"total": 2,
			"next":  nil,
		})
	}))

	tracks, err := srv.GetPlaylistTracks(context.Background(), "pl1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if len(tracks) != 1 {
		t.Fatalf("expected 1 track (null track skipped), got %d", len(tracks))
	}

	track := tracks[0]
	if track.Title != "Bohemian Rhapsody" || track.Artist != "Queen" {
		t.Errorf("unexpected track: %+v", track)
	}
	if track.ISRC != "GBUM71029604" {
		t.Errorf("expected ISRC to be mapped, got %q", track.ISRC)
	}
	if track.AlbumType != "album" {
		t.Errorf("expected album type 'album', got %q", track.AlbumType)
	}
}

func TestSpotifySearchTrack(t *testing.T) {
	var gotQuery string
	srv, _ := newTestSpotifyService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")

		json.NewEncoder(w).Encode(map[string]interface{}{
			"tracks": map[string]interface{}{
				"items": []map[string]interface{}{
					{
						"id":   "t1",
						"name": "Bohemian Rhapsody",
						"artists": []map[string]string{
							{"name": "Queen"},
						},
						"album": map[string]interface{}{
							"name":       "Greatest Hits",
							"album_type": "compilation",
						},
					},
				},
			},
		})
	}))

	t.Run("Text Search", func(t *testing.T) {
		tracks, err := srv.SearchTrack(context.Background(), "Bohemian Rhapsody Queen", 5)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if gotQuery != "Bohemian Rhapsody Queen" {
			t.Errorf("unexpected query %q", gotQuery)
		}
		if len(tracks) != 1 || tracks[0].AlbumType != "compilation" {
			t.Errorf("unexpected results: %+v", tracks)
		}
	})

	t.Run("ISRC Search", func(t *testing.T) {
		_, err := srv.SearchByISRC(context.Background(), "GBUM71029604")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if gotQuery != "isrc:GBUM71029604" {
			t.Errorf("expected isrc query filter, got %q", gotQuery)
		}
	})
}

func TestSpotifyMultipleArtists(t *testing.T) {
	srv, _ := newTestSpotifyService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"tracks": map[string]interface{}{
				"items": []map[string]interface{}{
					{
						"id":   "t1",
						"name": "Under Pressure",
						"artists": []map[string]string{
							{"name": "Queen"},
							{"name": "David Bowie"},
						},
						"album": map[string]interface{}{"name": "Hot Space"},
					},
				},
			},
		})
	}))

	tracks, err := srv.SearchTrack(context.Background(), "Under Pressure", 1)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if tracks[0].Artist != "Queen, David Bowie" {
		t.Errorf("expected joined artist credit, got %q", tracks[0].Artist)
	}
}

func TestSpotifyCreatePlaylist(t *testing.T) {
	var addedURIs []string
	srv, _ := newTestSpotifyService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/me":
			json.NewEncoder(w).Encode(map[string]string{"id": "user1"})
		case r.URL.Path == "/users/user1/playlists" && r.Method == "POST":
			var body map[string]interface{}
			json.NewDecoder(r.Body).Decode(&body)
			if body["public"] != false {
				t.Error("expected playlist to be created private")
			}
			json.NewEncoder(w).Encode(map[string]interface{}{
				"id":   "newpl",
				"name": body["name"],
			})
		case r.URL.Path == "/playlists/newpl/tracks" && r.Method == "POST":
			var body struct {
				URIs []string `json:"uris"`
			}
			json.NewDecoder(r.Body).Decode(&body)
			addedURIs = append(addedURIs, body.URIs...)
			w.WriteHeader(http.StatusCreated)
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))

	playlist, err := srv.CreatePlaylist(context.Background(), "Road Trip", "synced", []string{"t1", "t2"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if playlist.ID != "newpl" || playlist.Name != "Road Trip" {
		t.Errorf("unexpected playlist: %+v", playlist)
	}
	if playlist.TrackCount != 2 {
		t.Errorf("expected track count 2, got %d", playlist.TrackCount)
	}
	if len(addedURIs) != 2 || addedURIs[0] != "spotify:track:t1" {
		t.Errorf("unexpected track URIs: %v", addedURIs)
	}
}

func TestSpotifyAddTracksBatching(t *testing.T) {
	var batches [][]string
	srv, _ := newTestSpotifyService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			URIs []string `json:"uris"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		batches = append(batches, body.URIs)
		w.WriteHeader(http.StatusCreated)
	}))

	trackIDs := make([]string, 250)
	for i := range trackIDs {
		trackIDs[i] = "t"
	}

	if err := srv.AddTracksToPlaylist(context.Background(), "pl1", trackIDs); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if len(batches) != 3 {
		t.Fatalf("expected 3 batches for 250 tracks, got %d", len(batches))
	}
	if len(batches[0]) != 100 || len(batches[1]) != 100 || len(batches[2]) != 50 {
		t.Errorf("unexpected batch sizes: %d, %d, %d", len(batches[0]), len(batches[1]), len(batches[2]))
	}
}

func TestSpotifyFindPlaylistByName(t *testing.T) {
	srv, _ := newTestSpotifyService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"items": []map[string]interface{}{
				{"id": "pl1", "name": "Road Trip", "tracks": map[string]int{"total": 10}},
				{"id": "pl2", "name": "Workout", "tracks": map[string]int{"total": 25}},
			},
			"next": nil,
		})
	}))

	t.Run("Found Case Insensitive", func(t *testing.T) {
		playlist, err := srv.FindPlaylistByName(context.Background(), "road trip")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if playlist == nil || playlist.ID != "pl1" {
			t.Errorf("expected playlist pl1, got %+v", playlist)
		}
	})

	t.Run("Not Found Returns Nil", func(t *testing.T) {
		playlist, err := srv.FindPlaylistByName(context.Background(), "Nonexistent")
		if err != nil {
			t.Fatalf("expected no error for missing playlist, got %v", err)
		}
		if playlist != nil {
			t.Errorf("expected nil playlist, got %+v", playlist)
		}
	})
}

func TestSpotifyNotFound(t *testing.T) {
	srv, _ := newTestSpotifyService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	_, err := srv.GetPlaylistDetails(context.Background(), "missing")
	if !errors.Is(err, shared.ErrPlaylistNotFound) {
		t.Errorf("expected ErrPlaylistNotFound, got %v", err)
	}
}
