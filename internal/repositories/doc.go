// package repositories provides the persistence layer for sync history.
//
// Sync runs are recorded in SQLite so past syncs can be listed and inspected
// from the CLI and the API without the source services being reachable.
package repositories
