// Package services defines the [Service] interface for music catalog providers and implements it for Spotify and Apple Music.
//
// # Service Interface
//
// All catalog providers implement a common abstraction, enabling playlist reads, track search, and playlist writes to work uniformly across providers. Providers that support lookup by recording code additionally implement [ISRCSearcher]; callers discover it with a type assertion.
//
// # Spotify Implementation
//
// [SpotifyService] uses OAuth2 for authentication with automatic token refresh. The [oauth2.Config] client refreshes expired access tokens using the stored refresh token.
//
// # Apple Music Implementation
//
// [AppleMusicService] authenticates with a developer token (a signed JWT) plus a Music-User-Token for library access. Catalog reads are scoped to a storefront; library reads and writes go through the /me/library endpoints.
//
// # Error Handling
//
// Services use typed errors from the shared package:
//   - [shared.ErrNotAuthenticated] : Authenticate() not called
//   - [shared.ErrAPIRequest] : HTTP request failed
//   - [shared.ErrPlaylistNotFound] : Playlist ID not found
//
// # API Mappings
//
// Both services convert provider-specific JSON responses to [models.Playlist] and [models.Track]:
//   - Spotify: external_ids.isrc populates Track.ISRC, album.album_type populates Track.AlbumType
//   - Apple Music: attributes.isrc on catalog songs populates Track.ISRC; album type is not exposed per song and stays unknown
package services
