package main

import (
	"context"

	"github.com/desertthunder/modsync/internal/server"
	"github.com/desertthunder/modsync/internal/shared"
	"github.com/urfave/cli/v3"
)

// Serve runs the control API until interrupted. Runs still active at shutdown are cancelled.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	host := r.config.Server.Host
	if h := cmd.String("host"); h != "" {
		host = h
	}
	port := r.config.Server.Port
	if p := int(cmd.Int("port")); p > 0 {
		port = p
	}

	logger := shared.WithLogger(r.logger, "component", "api")
	handler := server.NewSyncHandler(ctx, r.store, r.engine, logger)

	router := server.NewBasicRouter()
	router.Use(server.Recover(logger), server.Logging(logger))
	router.Handler(handler)

	srv := server.New(host, port, router, logger)
	r.writePlain("→ Control API listening on http://%s\n", srv.Addr())

	err := srv.Run(ctx)
	handler.Wait()
	return err
}
