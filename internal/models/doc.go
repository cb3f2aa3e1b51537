// Package models defines the data model shared by the catalog services, the
// track matcher, and the sync orchestrator.
//
// [Track] and [Playlist] are immutable snapshots created by a catalog service
// from its native response shape. [MatchResult] records one matching decision
// for one source track. [SyncResult] is the mutable aggregate of a full
// playlist sync; the orchestrator owns it until [SyncResult.Finalize] is
// called, after which it is never mutated again.
package models
