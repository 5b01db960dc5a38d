package tasks

import (
	"context"
	"fmt"
	"sync"

	"github.com/desertthunder/modsync/internal/models"
	"github.com/desertthunder/modsync/internal/shared"
)

// Registry tracks the active run of each profile and the last progress event it emitted.
//
// A profile may have at most one active run. The zero value is not usable; call [NewRegistry].
type Registry struct {
	mu     sync.Mutex
	active map[string]*Coordinator
	last   map[string]models.SyncProgress
}

func NewRegistry() *Registry {
	return &Registry{
		active: make(map[string]*Coordinator),
		last:   make(map[string]models.SyncProgress),
	}
}

// Begin reserves profileID for a new run.
//
// The returned release func must be called when the run ends. Fails with [shared.ErrSyncInProgress] if a run is already active.
func (r *Registry) Begin(ctx context.Context, profileID string) (*Coordinator, func(), error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.active[profileID]; ok {
		return nil, nil, fmt.Errorf("%w: %s", shared.ErrSyncInProgress, profileID)
	}

	coord := NewCoordinator(ctx)
	r.active[profileID] = coord
	delete(r.last, profileID)

	release := func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if r.active[profileID] == coord {
			delete(r.active, profileID)
		}
		coord.stop()
	}
	return coord, release, nil
}

// Cancel signals the active run of profileID and reports whether there was one.
func (r *Registry) Cancel(profileID string) bool {
	r.mu.Lock()
	coord, ok := r.active[profileID]
	r.mu.Unlock()

	if ok {
		coord.Signal()
	}
	return ok
}

// Active reports whether profileID has a run in flight.
func (r *Registry) Active(profileID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.active[profileID]
	return ok
}

// Progress returns the last event emitted for profileID, which may belong to a finished run.
func (r *Registry) Progress(profileID string) (models.SyncProgress, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.last[profileID]
	return p, ok
}

func (r *Registry) record(profileID string, p models.SyncProgress) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.last[profileID] = p
}
