package main

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/modsync/internal/formatter"
	"github.com/desertthunder/modsync/internal/shared"
	"github.com/urfave/cli/v3"
)

type runView struct {
	ID         string    `json:"id"`
	Sequence   int       `json:"sequence"`
	Status     string    `json:"status"`
	CatalogURL string    `json:"catalogUrl"`
	Total      int       `json:"totalMods"`
	Completed  int       `json:"completedMods"`
	Downloaded int       `json:"downloadedMods"`
	FailedMods []string  `json:"failedMods"`
	Error      string    `json:"error,omitempty"`
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`
}

// History lists recorded runs of a profile, newest first.
func (r *Runner) History(ctx context.Context, cmd *cli.Command) error {
	if r.history == nil {
		return fmt.Errorf("%w: run history database is unavailable (see modsync setup)", shared.ErrInvalidConfig)
	}

	if cmd.Bool("reset") {
		return r.resetHistory()
	}

	profile, err := r.findProfile(cmd)
	if err != nil {
		return err
	}

	limit := int(cmd.Int("limit"))
	if limit <= 0 {
		return fmt.Errorf("%w: limit must be positive", shared.ErrInvalidFlag)
	}

	runs, err := r.history.Recent(profile.ID, limit)
	if err != nil {
		return fmt.Errorf("failed to load run history: %w", err)
	}

	if cmd.Bool("json") {
		views := make([]runView, 0, len(runs))
		for _, run := range runs {
			views = append(views, runView{
				ID:         run.ID(),
				Sequence:   run.Sequence(),
				Status:     string(run.Status()),
				CatalogURL: run.CatalogURL(),
				Total:      run.TotalMods(),
				Completed:  run.CompletedMods(),
				Downloaded: run.DownloadedMods(),
				FailedMods: run.FailedMods(),
				Error:      run.Error(),
				StartedAt:  run.StartedAt(),
				FinishedAt: run.FinishedAt(),
			})
		}
		return r.writeJSON(views, true)
	}

	if len(runs) == 0 {
		r.writePlain("No runs recorded for %s\n", profile.Name)
		return nil
	}

	r.writePlainHeader(fmt.Sprintf("Runs of %s", profile.Name))
	r.writePlain("%s\n", formatter.RenderRuns(runs))
	return nil
}

// resetHistory drops every recorded run of every profile.
func (r *Runner) resetHistory() error {
	if err := shared.ResetSchema(r.db); err != nil {
		return fmt.Errorf("failed to reset run history: %w", err)
	}
	r.logger.Info("run history reset", "database", r.config.Database.Path)
	r.writePlainln("Run history cleared")
	return nil
}
