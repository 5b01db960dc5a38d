package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/modsync/internal/models"
	"github.com/desertthunder/modsync/internal/shared"
	"github.com/desertthunder/modsync/internal/tasks"
)

// ProfileSource looks up stored profiles.
type ProfileSource interface {
	ListProfiles() ([]*models.Profile, error)
	FindProfile(ref string) (*models.Profile, error)
}

// ProfileSummary is the list view of a profile.
type ProfileSummary struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	ServerSyncURL string     `json:"serverSyncUrl,omitempty"`
	ModCount      int        `json:"modCount"`
	LastSyncDate  *time.Time `json:"lastSyncDate,omitempty"`
	Syncing       bool       `json:"syncing"`
}

// SyncHandler serves the profile and sync control endpoints.
//
// Runs started over HTTP outlive the request and stop when the handler's base context is cancelled.
type SyncHandler struct {
	ctx      context.Context
	profiles ProfileSource
	engine   tasks.SyncEngine
	logger   *log.Logger
	mux      *http.ServeMux
	wg       sync.WaitGroup
}

// NewSyncHandler creates a [SyncHandler]. ctx bounds every run it starts.
func NewSyncHandler(ctx context.Context, profiles ProfileSource, engine tasks.SyncEngine, logger *log.Logger) *SyncHandler {
	h := &SyncHandler{
		ctx:      ctx,
		profiles: profiles,
		engine:   engine,
		logger:   logger,
		mux:      http.NewServeMux(),
	}
	h.mux.HandleFunc("GET /profiles", h.listProfiles)
	h.mux.HandleFunc("GET /profiles/{id}", h.getProfile)
	h.mux.HandleFunc("POST /profiles/{id}/sync", h.startSync)
	h.mux.HandleFunc("POST /profiles/{id}/cancel", h.cancelSync)
	h.mux.HandleFunc("GET /profiles/{id}/progress", h.progress)
	return h
}

// Routes implements [Handler].
func (h *SyncHandler) Routes() []string {
	return []string{
		"GET /profiles",
		"GET /profiles/{id}",
		"POST /profiles/{id}/sync",
		"POST /profiles/{id}/cancel",
		"GET /profiles/{id}/progress",
	}
}

// ServeHTTP implements [http.Handler].
func (h *SyncHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// Wait blocks until every run started by this handler has returned.
func (h *SyncHandler) Wait() {
	h.wg.Wait()
}

func (h *SyncHandler) listProfiles(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.profiles.ListProfiles()
	if err != nil {
		h.logger.Error("failed to list profiles", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list profiles")
		return
	}

	summaries := make([]ProfileSummary, 0, len(profiles))
	for _, p := range profiles {
		_, syncing := h.activeProgress(p.ID)
		summaries = append(summaries, ProfileSummary{
			ID:            p.ID,
			Name:          p.Name,
			ServerSyncURL: p.ServerSyncURL,
			ModCount:      len(p.Mods),
			LastSyncDate:  p.LastSyncDate,
			Syncing:       syncing,
		})
	}
	writeJSON(w, http.StatusOK, summaries)
}

func (h *SyncHandler) getProfile(w http.ResponseWriter, r *http.Request) {
	profile, ok := h.lookup(w, r.PathValue("id"))
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// startSync launches a run and answers once the engine has accepted or rejected it.
func (h *SyncHandler) startSync(w http.ResponseWriter, r *http.Request) {
	profile, ok := h.lookup(w, r.PathValue("id"))
	if !ok {
		return
	}

	started := make(chan models.SyncProgress, 1)
	done := make(chan error, 1)
	var once sync.Once

	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		_, err := h.engine.Run(h.ctx, profile, func(p models.SyncProgress) {
			once.Do(func() { started <- p })
		})
		if err != nil && !errors.Is(err, shared.ErrSyncInProgress) {
			h.logger.Warn("background sync ended with error", "profile", profile.Name, "error", err)
		}
		done <- err
	}()

	select {
	case p := <-started:
		if !p.Status.Terminal() {
			writeJSON(w, http.StatusAccepted, map[string]any{"profileId": profile.ID, "progress": p})
			return
		}
		h.rejected(w, profile, <-done)
	case err := <-done:
		h.rejected(w, profile, err)
	}
}

// rejected answers for a run that ended before reporting any work.
func (h *SyncHandler) rejected(w http.ResponseWriter, profile *models.Profile, err error) {
	switch {
	case err == nil:
		writeJSON(w, http.StatusAccepted, map[string]any{"profileId": profile.ID})
	case errors.Is(err, shared.ErrSyncInProgress):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, shared.ErrCancelled):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, shared.ErrInvalidURL), errors.Is(err, shared.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusBadGateway, err.Error())
	}
}

func (h *SyncHandler) cancelSync(w http.ResponseWriter, r *http.Request) {
	profile, ok := h.lookup(w, r.PathValue("id"))
	if !ok {
		return
	}

	if !h.engine.Cancel(profile.ID) {
		writeError(w, http.StatusConflict, "no synchronization running")
		return
	}
	h.logger.Info("cancel requested", "profile", profile.Name)
	writeJSON(w, http.StatusAccepted, map[string]any{"profileId": profile.ID, "cancelled": true})
}

func (h *SyncHandler) progress(w http.ResponseWriter, r *http.Request) {
	profile, ok := h.lookup(w, r.PathValue("id"))
	if !ok {
		return
	}

	p, ok := h.engine.Progress(profile.ID)
	if !ok {
		writeError(w, http.StatusNotFound, "no synchronization progress recorded")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *SyncHandler) activeProgress(profileID string) (models.SyncProgress, bool) {
	p, ok := h.engine.Progress(profileID)
	if !ok || p.Status.Terminal() {
		return p, false
	}
	return p, true
}

func (h *SyncHandler) lookup(w http.ResponseWriter, ref string) (*models.Profile, bool) {
	profile, err := h.profiles.FindProfile(ref)
	switch {
	case errors.Is(err, shared.ErrProfileNotFound):
		writeError(w, http.StatusNotFound, err.Error())
		return nil, false
	case err != nil:
		h.logger.Error("failed to load profile", "ref", ref, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load profile")
		return nil, false
	}
	return profile, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
