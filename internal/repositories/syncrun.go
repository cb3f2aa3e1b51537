package repositories

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"playbridge/internal/models"
	"playbridge/internal/shared"
)

// SyncRun is one persisted sync outcome, flattened from a [models.SyncResult].
type SyncRun struct {
	ID                    string          `json:"id"`
	SourceService         string          `json:"source_service"`
	DestinationService    string          `json:"destination_service"`
	SourcePlaylistID      string          `json:"source_playlist_id"`
	SourcePlaylistName    string          `json:"source_playlist_name,omitempty"`
	DestinationPlaylistID string          `json:"destination_playlist_id,omitempty"`
	SyncMode              models.SyncMode `json:"sync_mode"`
	TotalTracks           int             `json:"total_tracks"`
	MatchedTracks         int             `json:"matched_tracks"`
	UnmatchedTracks       int             `json:"unmatched_tracks"`
	Errors                []string        `json:"errors,omitempty"`
	StartedAt             int64           `json:"started_at"` // epoch millis
	FinishedAt            int64           `json:"finished_at,omitempty"`
	DurationMS            int64           `json:"duration_ms,omitempty"`
}

// Succeeded reports whether the run finished without fatal errors.
func (r *SyncRun) Succeeded() bool {
	return len(r.Errors) == 0
}

// SyncRunRepository stores and queries sync run history.
type SyncRunRepository struct {
	db *sql.DB
}

// NewSyncRunRepository creates a repository backed by the given database.
// The sync_runs table must already exist; see [shared.RunMigrations].
func NewSyncRunRepository(db *sql.DB) *SyncRunRepository {
	return &SyncRunRepository{db: db}
}

// Record flattens a sync result into a SyncRun row and inserts it.
// Returns the stored run with its generated ID.
func (r *SyncRunRepository) Record(sourcePlaylistID string, result *models.SyncResult) (*SyncRun, error) {
	if result == nil {
		return nil, fmt.Errorf("%w: nil sync result", shared.ErrInvalidInput)
	}

	run := &SyncRun{
		ID:                 shared.GenerateID(),
		SourceService:      result.SourceService,
		DestinationService: result.DestinationService,
		SourcePlaylistID:   sourcePlaylistID,
		SyncMode:           result.SyncMode,
		TotalTracks:        result.TotalTracks,
		MatchedTracks:      result.MatchedTracks,
		UnmatchedTracks:    len(result.UnmatchedTracks),
		Errors:             result.Errors,
		StartedAt:          result.StartTime,
		FinishedAt:         result.EndTime,
		DurationMS:         result.DurationMS,
	}
	if result.SourcePlaylist != nil {
		run.SourcePlaylistName = result.SourcePlaylist.Name
	}
	if result.DestinationPlaylist != nil {
		run.DestinationPlaylistID = result.DestinationPlaylist.ID
	}

	if err := r.insert(run); err != nil {
		return nil, err
	}
	return run, nil
}

func (r *SyncRunRepository) insert(run *SyncRun) error {
	query := `
		INSERT INTO sync_runs (
			id, source_service, destination_service, source_playlist_id,
			source_playlist_name, destination_playlist_id, sync_mode,
			total_tracks, matched_tracks, unmatched_tracks, errors,
			started_at, finished_at, duration_ms
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	var errorsCol any
	if len(run.Errors) > 0 {
		errorsCol = strings.Join(run.Errors, "\n")
	}

	var destinationPlaylistID any
	if run.DestinationPlaylistID != "" {
		destinationPlaylistID = run.DestinationPlaylistID
	}

	_, err := r.db.Exec(query,
		run.ID,
		run.SourceService,
		run.DestinationService,
		run.SourcePlaylistID,
		run.SourcePlaylistName,
		destinationPlaylistID,
		string(run.SyncMode),
		run.TotalTracks,
		run.MatchedTracks,
		run.UnmatchedTracks,
		errorsCol,
		run.StartedAt,
		run.FinishedAt,
		run.DurationMS,
	)
	if err != nil {
		return fmt.Errorf("failed to insert sync run: %w", err)
	}
	return nil
}

const syncRunColumns = `
	id, source_service, destination_service, source_playlist_id,
	source_playlist_name, destination_playlist_id, sync_mode,
	total_tracks, matched_tracks, unmatched_tracks, errors,
	started_at, finished_at, duration_ms
`

// Get retrieves one sync run by ID.
func (r *SyncRunRepository) Get(id string) (*SyncRun, error) {
	query := "SELECT" + syncRunColumns + "FROM sync_runs WHERE id = ?"
	return scanSyncRun(r.db.QueryRow(query, id))
}

// List retrieves sync runs matching the given criteria, newest first.
// Supported criteria keys: source_service, destination_service,
// source_playlist_id, sync_mode, limit.
func (r *SyncRunRepository) List(criteria map[string]any) ([]*SyncRun, error) {
	query := "SELECT" + syncRunColumns + "FROM sync_runs WHERE 1=1"
	args := []any{}

	if v, ok := criteria["source_service"].(string); ok && v != "" {
		query += " AND source_service = ?"
		args = append(args, v)
	}
	if v, ok := criteria["destination_service"].(string); ok && v != "" {
		query += " AND destination_service = ?"
		args = append(args, v)
	}
	if v, ok := criteria["source_playlist_id"].(string); ok && v != "" {
		query += " AND source_playlist_id = ?"
		args = append(args, v)
	}
	if v, ok := criteria["sync_mode"].(string); ok && v != "" {
		query += " AND sync_mode = ?"
		args = append(args, v)
	}

	query += " ORDER BY started_at DESC"

	if limit, ok := criteria["limit"].(int); ok && limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query sync runs: %w", err)
	}
	defer rows.Close()

	var runs []*SyncRun
	for rows.Next() {
		run, err := scanSyncRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return runs, nil
}

// Delete removes a sync run from the history.
func (r *SyncRunRepository) Delete(id string) error {
	result, err := r.db.Exec("DELETE FROM sync_runs WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete sync run: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("sync run not found: %s", id)
	}
	return nil
}

// Prune deletes runs that started before the cutoff and returns the count.
func (r *SyncRunRepository) Prune(olderThan time.Time) (int64, error) {
	result, err := r.db.Exec("DELETE FROM sync_runs WHERE started_at < ?", olderThan.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("failed to prune sync runs: %w", err)
	}
	return result.RowsAffected()
}

// scanner abstracts sql.Row and sql.Rows for shared scan logic.
type scanner interface {
	Scan(dest ...any) error
}

func scanSyncRun(row scanner) (*SyncRun, error) {
	var (
		run                   SyncRun
		sourcePlaylistName    sql.NullString
		destinationPlaylistID sql.NullString
		syncMode              string
		errorsCol             sql.NullString
		finishedAt            sql.NullInt64
		durationMS            sql.NullInt64
	)

	err := row.Scan(
		&run.ID, &run.SourceService, &run.DestinationService, &run.SourcePlaylistID,
		&sourcePlaylistName, &destinationPlaylistID, &syncMode,
		&run.TotalTracks, &run.MatchedTracks, &run.UnmatchedTracks, &errorsCol,
		&run.StartedAt, &finishedAt, &durationMS,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("sync run not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan sync run: %w", err)
	}

	run.SourcePlaylistName = sourcePlaylistName.String
	run.DestinationPlaylistID = destinationPlaylistID.String
	run.SyncMode = models.SyncMode(syncMode)
	if errorsCol.Valid && errorsCol.String != "" {
		run.Errors = strings.Split(errorsCol.String, "\n")
	}
	run.FinishedAt = finishedAt.Int64
	run.DurationMS = durationMS.Int64

	return &run, nil
}
