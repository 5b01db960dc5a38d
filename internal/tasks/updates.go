package tasks

import (
	"fmt"

	"github.com/desertthunder/modsync/internal/models"
)

// ProgressFunc receives progress events synchronously on the engine's goroutine.
type ProgressFunc func(models.SyncProgress)

// ChannelProgress adapts a channel into a [ProgressFunc].
//
// Sends never block: when the channel is full the event is dropped, so a slow consumer cannot stall a download.
func ChannelProgress(ch chan<- models.SyncProgress) ProgressFunc {
	return func(p models.SyncProgress) {
		sendProgress(ch, p)
	}
}

// sendProgress sends a progress update through the channel without blocking.
func sendProgress(ch chan<- models.SyncProgress, p models.SyncProgress) {
	if ch == nil {
		return
	}
	select {
	case ch <- p:
	default:
	}
}

// Message renders a progress event as a one-line status for CLI output.
func Message(p models.SyncProgress) string {
	step := fmt.Sprintf("[%d/%d]", p.CompletedMods, p.TotalMods)

	switch p.Status {
	case models.StatusFetching:
		return "Fetching server catalog..."
	case models.StatusVerifying:
		return fmt.Sprintf("%s Checking %s", step, p.CurrentMod)
	case models.StatusDownloading:
		if p.CurrentFileProgress > 0 {
			return fmt.Sprintf("%s Downloading %s (%.0f%%)", step, p.CurrentMod, p.CurrentFileProgress)
		}
		return fmt.Sprintf("%s Downloading %s", step, p.CurrentMod)
	case models.StatusExtracting:
		return fmt.Sprintf("%s Extracting %s", step, p.CurrentMod)
	case models.StatusSaving:
		return fmt.Sprintf("%s Saving %s", step, p.CurrentMod)
	case models.StatusCompleted:
		if len(p.FailedMods) > 0 {
			return fmt.Sprintf("✓ Synchronized %d/%d mods (%d failed)", p.CompletedMods, p.TotalMods, len(p.FailedMods))
		}
		return fmt.Sprintf("✓ Synchronized %d/%d mods", p.CompletedMods, p.TotalMods)
	case models.StatusCancelled:
		return fmt.Sprintf("Cancelled after %d/%d mods", p.CompletedMods, p.TotalMods)
	case models.StatusError:
		return fmt.Sprintf("✗ Sync failed: %s", p.Error)
	default:
		return string(p.Status)
	}
}
