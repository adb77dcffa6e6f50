package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/shunichi-ikebuchi/tag-ledger/internal/api"
)

const shutdownTimeout = 10 * time.Second

var serveAddr string

// serveCmd represents the serve command.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the ledger JSON API",
	Long: `Serve the tags, accounts and transactions API over HTTP.

The listen address defaults to LEDGER_ADDR (":8080"). The server shuts
down gracefully on SIGINT or SIGTERM.

Example:
  ledger serve
  ledger serve --addr :9090`,
	Run: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides LEDGER_ADDR)")
}

func runServe(cmd *cobra.Command, args []string) {
	jsonLogs = true
	slog.SetDefault(newLogger(debug))

	a, err := openApp()
	exitOnError(err, "failed to open ledger")
	defer a.Close()

	addr := a.cfg.Server.Addr
	if serveAddr != "" {
		addr = serveAddr
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	handler := api.NewRouter(a.ledger, a.logger)
	exitOnError(serve(ctx, addr, handler, a.logger), "server error")
}

// serve runs an HTTP server on addr until ctx is done, then shuts it down
// gracefully.
func serve(ctx context.Context, addr string, handler http.Handler, logger *slog.Logger) error {
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting ledger API", "addr", addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}

	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	logger.Info("server stopped")
	return nil
}
