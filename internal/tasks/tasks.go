// package tasks implements the mod catalog synchronization run.
//
// The core abstraction is SyncEngine, which reconciles a profile's mod folder with a server catalog.
// Runs emit progress through a callback for status reporting to CLI/UI layers.
package tasks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/modsync/internal/models"
	"github.com/desertthunder/modsync/internal/services"
	"github.com/desertthunder/modsync/internal/shared"
	"golang.org/x/time/rate"
)

const (
	DefaultMaxAttempts  = 3
	DefaultRetryBackoff = time.Second
)

// CatalogFetcher retrieves and parses a server catalog.
type CatalogFetcher interface {
	FetchCatalog(ctx context.Context, catalogURL string) ([]models.RemoteModRecord, error)
}

// Downloader writes one remote mod into a directory.
type Downloader interface {
	Download(ctx context.Context, remote models.RemoteModRecord, destDir string, onProgress func(percent float64)) error
}

// ProfileSaver persists a profile. The engine calls it after every mod.
type ProfileSaver interface {
	SaveProfile(profile *models.Profile) error
}

// RunRecorder stores the outcome of a run. Failures are logged and never affect the run.
type RunRecorder interface {
	RecordRun(run *models.SyncRun) error
}

// SyncEngine defines the synchronization operations exposed to the CLI, TUI and API.
type SyncEngine interface {
	// Run fetches the profile's catalog and downloads every mod that is missing or outdated locally.
	Run(ctx context.Context, profile *models.Profile, onProgress ProgressFunc) (*SyncResult, error)

	// Cancel signals the active run of a profile and reports whether one was running.
	Cancel(profileID string) bool

	// Progress returns the last progress event of a profile's current or most recent run.
	Progress(profileID string) (models.SyncProgress, bool)
}

// SyncResult summarizes one run.
type SyncResult struct {
	RunID      string
	ProfileID  string
	Status     models.SyncStatus
	Total      int      // Entries in the catalog
	Completed  int      // Mods downloaded or skipped as current
	Downloaded int      // Mods actually transferred
	Skipped    int      // Mods judged current
	FailedMods []string // File names that failed every attempt
	StartedAt  time.Time
	FinishedAt time.Time
	Err        error // Set for error and cancelled runs
}

// Options configures a [ModEngine]. Zero values select defaults.
type Options struct {
	MaxAttempts  int           // Download attempts per mod. Default: 3
	RetryBackoff time.Duration // Delay between attempts. Default: 1s, negative disables
	Limiter      *rate.Limiter // Paces consecutive downloads; nil disables pacing
	Recorder     RunRecorder   // Optional run history
	Registry     *Registry     // Shared between engines that must not run the same profile twice
	Logger       *log.Logger
}

// ModEngine implements [SyncEngine]. Mods are processed one at a time in catalog order.
type ModEngine struct {
	fetcher     CatalogFetcher
	downloader  Downloader
	store       ProfileSaver
	recorder    RunRecorder
	registry    *Registry
	limiter     *rate.Limiter
	maxAttempts int
	backoff     time.Duration
	logger      *log.Logger
	now         func() time.Time
	sleep       func(ctx context.Context, d time.Duration) error
}

// NewModEngine creates a new ModEngine with the provided collaborators.
func NewModEngine(fetcher CatalogFetcher, downloader Downloader, store ProfileSaver, opts Options) *ModEngine {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = DefaultMaxAttempts
	}
	if opts.RetryBackoff < 0 {
		opts.RetryBackoff = 0
	} else if opts.RetryBackoff == 0 {
		opts.RetryBackoff = DefaultRetryBackoff
	}
	if opts.Registry == nil {
		opts.Registry = NewRegistry()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(io.Discard)
	}

	return &ModEngine{
		fetcher:     fetcher,
		downloader:  downloader,
		store:       store,
		recorder:    opts.Recorder,
		registry:    opts.Registry,
		limiter:     opts.Limiter,
		maxAttempts: opts.MaxAttempts,
		backoff:     opts.RetryBackoff,
		logger:      opts.Logger,
		now:         time.Now,
		sleep:       sleepContext,
	}
}

// Cancel signals the active run of profileID.
func (e *ModEngine) Cancel(profileID string) bool {
	return e.registry.Cancel(profileID)
}

// Progress returns the last event emitted for profileID.
func (e *ModEngine) Progress(profileID string) (models.SyncProgress, bool) {
	return e.registry.Progress(profileID)
}

// Registry exposes the run registry so callers can check for active runs.
func (e *ModEngine) Registry() *Registry {
	return e.registry
}

// Run performs one synchronization pass for profile, mutating its mod list in place.
//
// The returned result is nil only when the run could not start ([shared.ErrSyncInProgress] or a nil profile).
// A completed run returns a nil error even when some mods failed; inspect [SyncResult.FailedMods].
// A cancelled run returns an error wrapping [shared.ErrCancelled].
func (e *ModEngine) Run(ctx context.Context, profile *models.Profile, onProgress ProgressFunc) (*SyncResult, error) {
	if profile == nil {
		return nil, fmt.Errorf("%w: profile is required", shared.ErrInvalidInput)
	}

	coord, release, err := e.registry.Begin(ctx, profile.ID)
	if err != nil {
		return nil, err
	}
	defer release()

	s := &runState{
		engine:     e,
		profile:    profile,
		coord:      coord,
		onProgress: onProgress,
		logger:     shared.WithLogger(e.logger, "profile", profile.Name),
		result: &SyncResult{
			RunID:      shared.GenerateID(),
			ProfileID:  profile.ID,
			FailedMods: []string{},
			StartedAt:  e.now(),
		},
	}

	s.logger.Info("sync started", "url", profile.ServerSyncURL, "folder", profile.ModFolderPath)

	status, runErr := s.execute()
	s.finish(status, runErr)
	e.record(s.result, profile.ServerSyncURL)

	switch status {
	case models.StatusCompleted:
		return s.result, nil
	case models.StatusCancelled:
		return s.result, fmt.Errorf("sync %s: %w", profile.Name, shared.ErrCancelled)
	default:
		return s.result, runErr
	}
}

func (e *ModEngine) record(result *SyncResult, catalogURL string) {
	if e.recorder == nil {
		return
	}

	params := models.SyncRunParams{
		ProfileID:      result.ProfileID,
		CatalogURL:     catalogURL,
		Status:         result.Status,
		TotalMods:      result.Total,
		CompletedMods:  result.Completed,
		DownloadedMods: result.Downloaded,
		FailedMods:     result.FailedMods,
		StartedAt:      result.StartedAt,
		FinishedAt:     result.FinishedAt,
	}
	if result.Err != nil && result.Status == models.StatusError {
		params.Error = result.Err.Error()
	}

	if err := e.recorder.RecordRun(models.NewSyncRun(params)); err != nil {
		e.logger.Warn("failed to record sync run", "run", result.RunID, "error", err)
	}
}

// runState holds the mutable state of one run.
type runState struct {
	engine     *ModEngine
	profile    *models.Profile
	coord      *Coordinator
	onProgress ProgressFunc
	logger     *log.Logger
	result     *SyncResult
	current    string
}

func (s *runState) emit(status models.SyncStatus, percent float64) {
	p := models.SyncProgress{
		CurrentMod:          s.current,
		TotalMods:           s.result.Total,
		CompletedMods:       s.result.Completed,
		CurrentFileProgress: percent,
		Status:              status,
	}
	if status.Terminal() {
		p.CurrentMod = ""
		p.FailedMods = slices.Clone(s.result.FailedMods)
		if status == models.StatusError && s.result.Err != nil {
			p.Error = s.result.Err.Error()
		}
	}

	s.engine.registry.record(s.profile.ID, p)
	if s.onProgress != nil {
		s.onProgress(p)
	}
}

func (s *runState) execute() (models.SyncStatus, error) {
	if err := s.coord.Err(); err != nil {
		return models.StatusCancelled, err
	}

	catalogURL := strings.TrimSpace(s.profile.ServerSyncURL)
	if _, err := services.ValidateURL(catalogURL); err != nil {
		return models.StatusError, err
	}
	if strings.TrimSpace(s.profile.ModFolderPath) == "" {
		return models.StatusError, fmt.Errorf("%w: profile %s has no mod folder", shared.ErrInvalidInput, s.profile.Name)
	}

	s.emit(models.StatusFetching, 0)
	remote, err := s.engine.fetcher.FetchCatalog(s.coord.Context(), catalogURL)
	if err != nil {
		if s.coord.IsSignalled() || errors.Is(err, shared.ErrCancelled) {
			return models.StatusCancelled, shared.ErrCancelled
		}
		return models.StatusError, err
	}

	s.result.Total = len(remote)
	s.logger.Debug("catalog received", "mods", len(remote))
	if len(remote) == 0 {
		if n := s.serverModCount(); n > 0 {
			s.logger.Warn("catalog is empty but profile tracks server mods", "tracked", n)
		}
	}

	if err := os.MkdirAll(s.profile.ModFolderPath, 0755); err != nil {
		return models.StatusError, fmt.Errorf("failed to create mod folder: %w", err)
	}

	for i, rm := range remote {
		if err := s.coord.Err(); err != nil {
			s.logger.Info("sync cancelled before mod", "file", rm.FileName)
			return models.StatusCancelled, err
		}

		s.current = rm.FileName
		s.emit(models.StatusVerifying, 0)
		if rm.RawHTML != "" {
			s.logger.Debug("catalog entry markup", "file", rm.FileName, "html", rm.RawHTML)
		}

		idx := s.profile.FindMod(rm.FileName)
		if s.isCurrent(idx, rm) {
			if err := s.refresh(idx, rm); err != nil {
				return models.StatusError, err
			}
			s.result.Skipped++
			s.result.Completed++
			continue
		}

		if err := s.download(rm); err != nil {
			if s.coord.IsSignalled() {
				s.logger.Info("sync cancelled during download", "file", rm.FileName)
				return models.StatusCancelled, shared.ErrCancelled
			}
			s.logger.Error("mod failed after all attempts", "file", rm.FileName, "attempts", s.engine.maxAttempts, "error", err)
			s.result.FailedMods = append(s.result.FailedMods, rm.FileName)
			continue
		}

		s.emit(models.StatusSaving, 100)
		if err := s.apply(idx, rm); err != nil {
			return models.StatusError, err
		}
		s.result.Downloaded++
		s.result.Completed++

		if err := s.coord.Err(); err != nil {
			s.logger.Info("sync cancelled after download", "file", rm.FileName)
			return models.StatusCancelled, err
		}

		if s.engine.limiter != nil && i < len(remote)-1 {
			if err := s.engine.limiter.Wait(s.coord.Context()); err != nil {
				return models.StatusCancelled, shared.ErrCancelled
			}
		}
	}

	now := s.engine.now()
	s.profile.LastSyncDate = &now
	if err := s.save(); err != nil {
		return models.StatusError, err
	}

	return models.StatusCompleted, nil
}

// isCurrent applies the skip rule: the profile tracks the file, the file is on disk, and the server either
// reports the same version or no version at all.
func (s *runState) isCurrent(idx int, rm models.RemoteModRecord) bool {
	if idx < 0 {
		return false
	}
	if _, err := os.Stat(filepath.Join(s.profile.ModFolderPath, rm.FileName)); err != nil {
		return false
	}

	local := strings.TrimSpace(s.profile.Mods[idx].Version)
	server := strings.TrimSpace(rm.Version)
	if server == "" {
		s.logger.Debug("no server version, keeping local file", "file", rm.FileName)
		return true
	}
	if server == local {
		s.logger.Debug("mod is current", "file", rm.FileName, "version", server)
		return true
	}

	s.logger.Debug("version changed", "file", rm.FileName, "local", local, "server", server)
	return false
}

// refresh merges catalog metadata into a skipped mod and saves only if something changed.
func (s *runState) refresh(idx int, rm models.RemoteModRecord) error {
	version := s.profile.Mods[idx].Version
	if strings.TrimSpace(rm.Version) == "" {
		rm.Version = version
	}
	if !rm.MergeInto(&s.profile.Mods[idx]) {
		return nil
	}
	return s.save()
}

// apply merges a downloaded mod into the profile and persists it.
func (s *runState) apply(idx int, rm models.RemoteModRecord) error {
	if idx >= 0 {
		rm.MergeInto(&s.profile.Mods[idx])
	} else {
		s.profile.Mods = append(s.profile.Mods, rm.ToModRecord())
	}
	return s.save()
}

func (s *runState) save() error {
	if err := s.engine.store.SaveProfile(s.profile); err != nil {
		return fmt.Errorf("failed to save profile %s: %w", s.profile.Name, err)
	}
	return nil
}

// download makes up to maxAttempts attempts, waiting the backoff between them.
// Only transient errors are retried.
func (s *runState) download(rm models.RemoteModRecord) error {
	var lastErr error

	for attempt := 1; attempt <= s.engine.maxAttempts; attempt++ {
		if err := s.coord.Err(); err != nil {
			return err
		}

		s.emit(models.StatusDownloading, 0)
		err := s.engine.downloader.Download(s.coord.Context(), rm, s.profile.ModFolderPath, func(percent float64) {
			s.emit(models.StatusDownloading, percent)
		})
		if err == nil {
			s.logger.Debug("downloaded mod", "file", rm.FileName, "attempt", attempt)
			return nil
		}

		lastErr = err
		s.logger.Warn("download attempt failed", "file", rm.FileName, "attempt", attempt, "error", err)

		if !shared.IsTransient(err) || attempt == s.engine.maxAttempts {
			break
		}
		if err := s.engine.sleep(s.coord.Context(), s.engine.backoff); err != nil {
			return shared.ErrCancelled
		}
	}

	return lastErr
}

func (s *runState) finish(status models.SyncStatus, err error) {
	s.result.Status = status
	s.result.FinishedAt = s.engine.now()
	if status != models.StatusCompleted {
		s.result.Err = err
	}

	s.current = ""
	s.emit(status, 100)

	switch status {
	case models.StatusCompleted:
		s.logger.Info("sync completed",
			"total", s.result.Total, "downloaded", s.result.Downloaded, "skipped", s.result.Skipped,
			"duration", s.result.FinishedAt.Sub(s.result.StartedAt).Round(time.Millisecond))
	case models.StatusCancelled:
		s.logger.Info("sync cancelled", "completed", s.result.Completed, "total", s.result.Total)
	default:
		s.logger.Error("sync failed", "error", err)
	}

	if len(s.result.FailedMods) > 0 {
		s.logger.Warn("failed mods", "count", len(s.result.FailedMods), "files", strings.Join(s.result.FailedMods, ", "))
	}
}

func (s *runState) serverModCount() int {
	n := 0
	for _, m := range s.profile.Mods {
		if m.IsFromServer {
			n++
		}
	}
	return n
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
