// Package serve contains the command that runs the HTTP API server.
package serve

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"findash/cmd/root"
	"findash/internal/server"

	"github.com/spf13/cobra"
)

var addr string

// Cmd is the serve command.
var Cmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the JSON API server",
	RunE:  run,
}

func init() {
	Cmd.Flags().StringVar(&addr, "addr", "", "listen address (defaults to http.addr from config)")
}

func run(cmd *cobra.Command, args []string) error {
	app, err := root.BuildApp()
	if err != nil {
		return err
	}
	defer app.Close()

	listenAddr := addr
	if listenAddr == "" {
		listenAddr = root.Cfg.HTTP.Addr
	}
	srv := server.New(listenAddr, app.Service, root.Log)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
