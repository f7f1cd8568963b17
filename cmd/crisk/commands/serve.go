package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"crisk/internal/server"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

func newServeCommand() *cobra.Command {
	serve := &cobra.Command{
		Use:   "serve",
		Short: "Serve the assessment as a JSON API",
		Long:  `Serves the assessment over HTTP until SIGINT or SIGTERM, then commits the open session and closes the file.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, _ := cmd.Flags().GetString("addr")
			if addr == "" {
				addr = cfg.Addr
			}

			store, err := openStore(cmd)
			if err != nil {
				return err
			}

			gin.SetMode(gin.ReleaseMode)
			srv := &http.Server{
				Addr:              addr,
				Handler:           server.NewRouter(store),
				ReadHeaderTimeout: 10 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			errc := make(chan error, 1)
			go func() {
				slog.Info("starting server", "addr", addr, "file", store.Path())
				errc <- srv.ListenAndServe()
			}()

			select {
			case err = <-errc:
				if errors.Is(err, http.ErrServerClosed) {
					err = nil
				}
				return errors.Join(err, store.Close())
			case <-ctx.Done():
				slog.Info("shutting down")
				return stopServer(srv, store, 5*time.Second)
			}
		},
	}

	serve.Flags().String("addr", "", "listen address (default $CRISK_ADDR or 127.0.0.1:8080)")
	return serve
}

type shutdowner interface {
	Shutdown(ctx context.Context) error
}

// stopServer drains srv and then closes the store. If requests are still
// running when the timeout hits the store is left open, the uncommitted
// session is discarded when the process exits.
func stopServer(srv shutdowner, store io.Closer, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server did not stop in time, changes since the last commit are lost", "err", err)
		return fmt.Errorf("shutdown: %w", err)
	}
	return store.Close()
}
