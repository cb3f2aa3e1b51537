package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/urfave/cli/v3"

	"playbridge/internal/server"
)

// Serve starts the HTTP sync API.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	host := cmd.String("host")
	if host == "" {
		host = r.config.Server.Host
	}
	port := cmd.Int("port")
	if port == 0 {
		port = r.config.Server.Port
	}

	// Authenticate every configured service up front so API requests don't
	// trip over cold credentials.
	for _, key := range r.registry.Names() {
		if _, err := r.service(ctx, key); err != nil {
			r.logger.Warn("service authentication failed", "service", key, "error", err)
		}
	}

	history, db, err := r.history()
	if err != nil {
		r.logger.Warn("sync history unavailable", "error", err)
	}
	if db != nil {
		defer db.Close()
	}

	router := server.NewBasicRouter()
	router.Use(server.Recover(r.logger), server.Logging(r.logger))
	server.NewAPI(r.registry, history, r.logger).Register(router)

	addr := fmt.Sprintf("%s:%d", host, port)
	r.logger.Info("starting sync API", "addr", addr)
	r.writePlain("Listening on http://%s\n", addr)

	httpServer := &http.Server{Addr: addr, Handler: router}

	errs := make(chan error, 1)
	go func() {
		errs <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errs:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	case <-ctx.Done():
		return httpServer.Shutdown(context.Background())
	}
}
