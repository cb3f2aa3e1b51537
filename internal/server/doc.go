// Package server provides HTTP routing, middleware, and the sync API.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method-qualified route patterns.
//
// # Sync API
//
// [API] exposes the playlist sync engine over HTTP: service discovery, playlist
// listing, capability and validation checks, sync history, and a
// Server-Sent-Events endpoint that streams sync progress while a playlist sync
// runs.
//
// # OAuth Callback Handler
//
// [OAuthHandler] implements the OAuth2 authorization code callback flow used
// when linking a Spotify account from the CLI. A temporary HTTP server starts
// on localhost, handles the callback once, validates the state parameter, and
// hands the exchanged token back through a channel.
package server
