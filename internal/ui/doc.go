// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides a multi-view workflow for playlist sync:
//  1. [PlaylistListView] : Browse and select source playlists
//  2. [TrackListView] : Preview tracks before syncing
//  3. [ConfirmView] : Confirm the sync operation
//  4. [SyncView] : Monitor real-time progress updates
//  5. [ResultView] : Display match counts and unmatched tracks
//
// The [Model] implements bubbletea's standard Init/Update/View pattern.
// Progress updates flow through a channel from the PlaylistEngine, providing
// non-blocking status reporting while a sync runs.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, y/n, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
