package repositories

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/modsync/internal/models"
	"github.com/desertthunder/modsync/internal/shared"
)

const syncRunColumns = `
	id, sequence, profile_id, catalog_url, status, total_mods, completed_mods,
	downloaded_mods, failed_mods, error, started_at, finished_at,
	created_at, updated_at, deleted_at`

// SyncRunRepository implements models.Repository[*models.SyncRun] for run history.
type SyncRunRepository struct {
	db *sql.DB
}

// NewSyncRunRepository creates a new SyncRunRepository with the given database connection
func NewSyncRunRepository(db *sql.DB) *SyncRunRepository {
	return &SyncRunRepository{db: db}
}

// Create inserts a finished run with generated ID and sequence
func (r *SyncRunRepository) Create(run *models.SyncRun) error {
	if err := run.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	sequence, err := NextSequence(r.db, "sync_runs")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	failed, err := json.Marshal(nonNil(run.FailedMods()))
	if err != nil {
		return fmt.Errorf("failed to encode failed mods: %w", err)
	}

	id := shared.GenerateID()
	query := `
		INSERT INTO sync_runs (
			id, sequence, profile_id, catalog_url, status, total_mods, completed_mods,
			downloaded_mods, failed_mods, error, started_at, finished_at, created_at, updated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		id,
		sequence,
		run.ProfileID(),
		run.CatalogURL(),
		string(run.Status()),
		run.TotalMods(),
		run.CompletedMods(),
		run.DownloadedMods(),
		string(failed),
		run.Error(),
		run.StartedAt(),
		run.FinishedAt(),
		run.CreatedAt(),
		run.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert sync run: %w", err)
	}

	run.SetID(id)
	run.SetSequence(sequence)
	return nil
}

// Get retrieves a run by ID, excluding soft-deleted runs
func (r *SyncRunRepository) Get(id string) (*models.SyncRun, error) {
	query := `SELECT ` + syncRunColumns + ` FROM sync_runs WHERE id = ? AND deleted_at IS NULL`

	run, err := scanSyncRun(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("sync run not found: %s", id)
	}
	return run, err
}

// Update rewrites the status and error of an existing run
func (r *SyncRunRepository) Update(run *models.SyncRun) error {
	if err := run.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	run.SetUpdatedAt(now)

	query := `
		UPDATE sync_runs
		SET status = ?, error = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, string(run.Status()), run.Error(), now, run.ID())
	if err != nil {
		return fmt.Errorf("failed to update sync run: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("sync run not found or already deleted: %s", run.ID())
	}

	return nil
}

// Delete soft-deletes a run by ID
func (r *SyncRunRepository) Delete(id string) error {
	query := `
		UPDATE sync_runs
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete sync run: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("sync run not found or already deleted: %s", id)
	}

	return nil
}

// List retrieves runs newest first.
//
// Supported criteria: "profile_id" (string), "status" (string or [models.SyncStatus]), "limit" (int).
func (r *SyncRunRepository) List(criteria map[string]any) ([]*models.SyncRun, error) {
	query := `SELECT ` + syncRunColumns + ` FROM sync_runs WHERE deleted_at IS NULL`
	args := []any{}

	if profileID, ok := criteria["profile_id"].(string); ok && profileID != "" {
		query += " AND profile_id = ?"
		args = append(args, profileID)
	}

	switch status := criteria["status"].(type) {
	case string:
		if status != "" {
			query += " AND status = ?"
			args = append(args, status)
		}
	case models.SyncStatus:
		query += " AND status = ?"
		args = append(args, string(status))
	}

	query += " ORDER BY sequence DESC"

	if limit, ok := criteria["limit"].(int); ok && limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query sync runs: %w", err)
	}
	defer rows.Close()

	var runs []*models.SyncRun
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

type rowScanner interface {
	Scan(dest ...any) error
}

// scanSyncRun scans a [sql.Row] or [sql.Rows] into a [models.SyncRun]
func scanSyncRun(row rowScanner) (*models.SyncRun, error) {
	var (
		id             string
		sequence       int
		profileID      string
		catalogURL     string
		status         string
		totalMods      int
		completedMods  int
		downloadedMods int
		failedJSON     string
		errMsg         string
		startedAt      time.Time
		finishedAt     time.Time
		createdAt      time.Time
		updatedAt      time.Time
		deletedAt      sql.NullTime
	)

	err := row.Scan(
		&id, &sequence, &profileID, &catalogURL, &status, &totalMods, &completedMods,
		&downloadedMods, &failedJSON, &errMsg, &startedAt, &finishedAt,
		&createdAt, &updatedAt, &deletedAt,
	)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan sync run: %w", err)
	}

	var failed []string
	if err := json.Unmarshal([]byte(failedJSON), &failed); err != nil {
		return nil, fmt.Errorf("failed to decode failed mods of run %s: %w", id, err)
	}

	params := models.SyncRunParams{
		ProfileID:      profileID,
		CatalogURL:     catalogURL,
		Status:         models.SyncStatus(status),
		TotalMods:      totalMods,
		CompletedMods:  completedMods,
		DownloadedMods: downloadedMods,
		FailedMods:     failed,
		Error:          errMsg,
		StartedAt:      startedAt,
		FinishedAt:     finishedAt,
	}

	var deleted *time.Time
	if deletedAt.Valid {
		deleted = &deletedAt.Time
	}

	return models.RestoreSyncRun(id, sequence, params, createdAt, updatedAt, deleted), nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// RunHistory records finished runs through a [SyncRunRepository].
type RunHistory struct {
	repo   *SyncRunRepository
	logger *log.Logger
}

// NewRunHistory creates a recorder backed by repo.
func NewRunHistory(repo *SyncRunRepository, logger *log.Logger) *RunHistory {
	return &RunHistory{repo: repo, logger: logger}
}

// RecordRun stores run and logs its sequence.
func (h *RunHistory) RecordRun(run *models.SyncRun) error {
	if err := h.repo.Create(run); err != nil {
		return err
	}
	if h.logger != nil {
		h.logger.Debug("recorded sync run", "sequence", run.Sequence(), "status", run.Status())
	}
	return nil
}

// Recent returns up to limit runs of profileID, newest first.
func (h *RunHistory) Recent(profileID string, limit int) ([]*models.SyncRun, error) {
	return h.repo.List(map[string]any{"profile_id": profileID, "limit": limit})
}
