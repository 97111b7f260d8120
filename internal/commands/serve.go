package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cleared-dev/voucherbook/internal/api"
	"github.com/cleared-dev/voucherbook/internal/logging"
	"github.com/cleared-dev/voucherbook/internal/metrics"
)

func newServeCommand(opts *globalOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the book over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, opts, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")

	return cmd
}

// runServe serves until ctx is cancelled. Each successful mutation is
// saved as it happens; shutdown drains requests and saves anything left.
func runServe(ctx context.Context, opts *globalOptions, addr string) error {
	m := metrics.New()
	s, err := openSession(opts, m)
	if err != nil {
		return err
	}
	if addr == "" {
		addr = s.cfg.Server.Addr
	}

	log, err := logging.New(s.cfg.Log.Level, s.cfg.Log.Development)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()
	log = log.With(zap.String("book", s.root))

	srv := &http.Server{
		Addr:         addr,
		Handler:      s.apiHandler(log, m),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting voucherbook server", zap.String("addr", addr), zap.String("book_name", s.cfg.Book.Name))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("starting server: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}

	if len(s.book.PendingAudit()) > 0 {
		if err := s.save(); err != nil {
			log.Error("saving book", zap.Error(err))
			return err
		}
	}
	log.Info("server exited")
	return nil
}

// apiHandler serves s.book over HTTP, saving the book after every
// successful mutation.
func (s *session) apiHandler(log *zap.Logger, m *metrics.Metrics) http.Handler {
	return api.NewServer(s.book, log, m, s.cfg.Formatter()).PersistWith(s.save).Routes()
}
