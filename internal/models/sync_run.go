package models

import (
	"fmt"
	"time"
)

// SyncRun is the persisted history entry for one synchronization run.
type SyncRun struct {
	id             string
	sequence       int
	profileID      string
	catalogURL     string
	status         SyncStatus
	totalMods      int
	completedMods  int
	downloadedMods int
	failedMods     []string
	errMsg         string
	startedAt      time.Time
	finishedAt     time.Time
	createdAt      time.Time
	updatedAt      time.Time
	deletedAt      *time.Time
}

// SyncRunParams carries the values needed to build a [SyncRun].
type SyncRunParams struct {
	ProfileID      string
	CatalogURL     string
	Status         SyncStatus
	TotalMods      int
	CompletedMods  int
	DownloadedMods int
	FailedMods     []string
	Error          string
	StartedAt      time.Time
	FinishedAt     time.Time
}

// NewSyncRun creates an unsaved run record. The repository assigns the ID and sequence.
func NewSyncRun(p SyncRunParams) *SyncRun {
	now := time.Now()
	return &SyncRun{
		profileID:      p.ProfileID,
		catalogURL:     p.CatalogURL,
		status:         p.Status,
		totalMods:      p.TotalMods,
		completedMods:  p.CompletedMods,
		downloadedMods: p.DownloadedMods,
		failedMods:     append([]string(nil), p.FailedMods...),
		errMsg:         p.Error,
		startedAt:      p.StartedAt,
		finishedAt:     p.FinishedAt,
		createdAt:      now,
		updatedAt:      now,
	}
}

// RestoreSyncRun rebuilds a run from stored columns.
func RestoreSyncRun(id string, sequence int, p SyncRunParams, createdAt, updatedAt time.Time, deletedAt *time.Time) *SyncRun {
	r := NewSyncRun(p)
	r.id = id
	r.sequence = sequence
	r.createdAt = createdAt
	r.updatedAt = updatedAt
	r.deletedAt = deletedAt
	return r
}

func (r *SyncRun) ID() string              { return r.id }
func (r *SyncRun) Sequence() int           { return r.sequence }
func (r *SyncRun) ProfileID() string       { return r.profileID }
func (r *SyncRun) CatalogURL() string      { return r.catalogURL }
func (r *SyncRun) Status() SyncStatus      { return r.status }
func (r *SyncRun) TotalMods() int          { return r.totalMods }
func (r *SyncRun) CompletedMods() int      { return r.completedMods }
func (r *SyncRun) DownloadedMods() int     { return r.downloadedMods }
func (r *SyncRun) FailedMods() []string    { return r.failedMods }
func (r *SyncRun) Error() string           { return r.errMsg }
func (r *SyncRun) StartedAt() time.Time    { return r.startedAt }
func (r *SyncRun) FinishedAt() time.Time   { return r.finishedAt }
func (r *SyncRun) CreatedAt() time.Time    { return r.createdAt }
func (r *SyncRun) UpdatedAt() time.Time    { return r.updatedAt }
func (r *SyncRun) DeletedAt() *time.Time   { return r.deletedAt }
func (r *SyncRun) Duration() time.Duration { return r.finishedAt.Sub(r.startedAt) }

func (r *SyncRun) SetID(id string)          { r.id = id }
func (r *SyncRun) SetSequence(seq int)      { r.sequence = seq }
func (r *SyncRun) SetUpdatedAt(t time.Time) { r.updatedAt = t }
func (r *SyncRun) SetStatus(s SyncStatus)   { r.status = s }
func (r *SyncRun) SetError(msg string)      { r.errMsg = msg }

// Validate checks required fields and that the run ended in a terminal status.
func (r *SyncRun) Validate() error {
	if r.profileID == "" {
		return fmt.Errorf("profile ID is required")
	}
	if !r.status.Terminal() {
		return fmt.Errorf("status %q is not terminal", r.status)
	}
	if r.finishedAt.Before(r.startedAt) {
		return fmt.Errorf("run finished before it started")
	}
	return nil
}
