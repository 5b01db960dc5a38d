package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/modsync/internal/formatter"
	"github.com/desertthunder/modsync/internal/shared"
	"github.com/urfave/cli/v3"
)

// Catalog fetches a server catalog and prints the parsed entries.
func (r *Runner) Catalog(ctx context.Context, cmd *cli.Command) error {
	url := strings.TrimSpace(cmd.StringArg("url"))
	if url == "" {
		return fmt.Errorf("%w: catalog URL", shared.ErrMissingArgument)
	}

	mods, err := r.catalog.FetchCatalog(ctx, url)
	if err != nil {
		return fmt.Errorf("failed to fetch catalog: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(mods, true)
	}

	if len(mods) == 0 {
		r.writePlain("No mods found at %s\n", url)
		return nil
	}

	r.writePlain("%s\n", formatter.RenderCatalog(mods))
	return nil
}
