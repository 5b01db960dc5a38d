package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/modsync/internal/models"
	"github.com/desertthunder/modsync/internal/shared"
	"github.com/desertthunder/modsync/internal/tasks"
	"github.com/urfave/cli/v3"
)

// syncReport is the --json output of [Runner.Sync].
type syncReport struct {
	RunID      string            `json:"runId"`
	ProfileID  string            `json:"profileId"`
	Status     models.SyncStatus `json:"status"`
	Total      int               `json:"total"`
	Completed  int               `json:"completed"`
	Downloaded int               `json:"downloaded"`
	Skipped    int               `json:"skipped"`
	FailedMods []string          `json:"failedMods"`
	Duration   string            `json:"duration"`
	Error      string            `json:"error,omitempty"`
}

// Sync runs a synchronization for one profile. Interrupting the process cancels the run
// between chunks and leaves the profile consistent with the files on disk.
func (r *Runner) Sync(ctx context.Context, cmd *cli.Command) error {
	profile, err := r.findProfile(cmd)
	if err != nil {
		return err
	}

	useJSON := cmd.Bool("json")

	var onProgress tasks.ProgressFunc
	if !useJSON {
		r.writePlainHeader(fmt.Sprintf("Syncing %s", profile.Name))
		onProgress = r.progressPrinter()
	}

	result, runErr := r.engine.Run(ctx, profile, onProgress)
	if result == nil {
		return runErr
	}

	if useJSON {
		report := syncReport{
			RunID:      result.RunID,
			ProfileID:  result.ProfileID,
			Status:     result.Status,
			Total:      result.Total,
			Completed:  result.Completed,
			Downloaded: result.Downloaded,
			Skipped:    result.Skipped,
			FailedMods: result.FailedMods,
			Duration:   result.FinishedAt.Sub(result.StartedAt).Round(time.Millisecond).String(),
		}
		if result.Err != nil {
			report.Error = result.Err.Error()
		}
		if err := r.writeJSON(report, true); err != nil {
			return err
		}
		return runErr
	}

	r.writePlainln("Downloaded: %d  Up to date: %d  Failed: %d  (%s)",
		result.Downloaded, result.Skipped, len(result.FailedMods),
		result.FinishedAt.Sub(result.StartedAt).Round(time.Millisecond))
	if len(result.FailedMods) > 0 {
		r.writePlain("Failed mods:\n")
		for _, name := range result.FailedMods {
			r.writePlain("  • %s\n", name)
		}
	}
	if errors.Is(runErr, shared.ErrCancelled) {
		r.writePlain("Cancelled. Mods finished so far are saved to the profile.\n")
	}
	return runErr
}

// progressPrinter prints one line per mod step plus every 25% of a download.
func (r *Runner) progressPrinter() tasks.ProgressFunc {
	var lastMod string
	var lastStatus models.SyncStatus
	lastQuarter := -1

	return func(p models.SyncProgress) {
		quarter := int(p.CurrentFileProgress) / 25
		changed := p.CurrentMod != lastMod || p.Status != lastStatus
		if !changed && (p.Status != models.StatusDownloading || quarter == lastQuarter) {
			return
		}

		lastMod, lastStatus, lastQuarter = p.CurrentMod, p.Status, quarter
		r.writePlain("%s\n", tasks.Message(p))
	}
}
