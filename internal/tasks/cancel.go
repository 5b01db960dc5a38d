package tasks

import (
	"context"

	"github.com/desertthunder/modsync/internal/shared"
)

// Coordinator is the cancellation signal of a single sync run.
//
// It wraps a cancellable context so the signal reaches every HTTP request and chunk read made on behalf of the run.
// Cancelling the parent context counts as a signal too.
type Coordinator struct {
	ctx    context.Context
	cancel context.CancelCauseFunc
}

// NewCoordinator derives a run-scoped signal from parent.
func NewCoordinator(parent context.Context) *Coordinator {
	ctx, cancel := context.WithCancelCause(parent)
	return &Coordinator{ctx: ctx, cancel: cancel}
}

// Signal requests cancellation. Calling it more than once has no further effect.
func (c *Coordinator) Signal() {
	c.cancel(shared.ErrCancelled)
}

// IsSignalled reports whether the run should stop.
func (c *Coordinator) IsSignalled() bool {
	return c.ctx.Err() != nil
}

// Context is handed to the fetcher and downloader.
func (c *Coordinator) Context() context.Context {
	return c.ctx
}

// Err returns [shared.ErrCancelled] once signalled, nil otherwise.
func (c *Coordinator) Err() error {
	if !c.IsSignalled() {
		return nil
	}
	return shared.ErrCancelled
}

// stop releases the context once the run is over.
func (c *Coordinator) stop() {
	c.cancel(context.Canceled)
}
