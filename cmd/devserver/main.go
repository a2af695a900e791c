package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"socialnet/config"
	"socialnet/internal/devserver"
	"socialnet/internal/devserver/store"
	"socialnet/pkg/logger"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configFile string

	root := &cobra.Command{
		Use:           "devserver",
		Short:         "Development backend for the socialnet client",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.NewServerConfig(configFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			log, err := logger.New(cfg.Logging.Level)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, log)
		},
	}
	root.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (yaml)")

	root.AddCommand(&cobra.Command{
		Use:   "migrate-down",
		Short: "Roll back the last schema migration",
		RunE: func(*cobra.Command, []string) error {
			cfg, err := config.NewServerConfig(configFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			return store.RollbackLastMigration(cfg.Storage.DBPath)
		},
	})
	return root
}

func serve(ctx context.Context, cfg *config.ServerConfig, log *zap.SugaredLogger) error {
	st, err := store.Open(cfg.Storage.DBPath)
	if err != nil {
		return err
	}
	defer st.Close()

	srv, err := devserver.New(st, log, devserver.Options{
		JWTSecret:      []byte(cfg.Auth.JWTSecret),
		TokenTTL:       cfg.Auth.TokenTTL,
		BcryptCost:     cfg.Auth.BcryptCost,
		PublicURL:      cfg.Server.PublicURL,
		UploadDir:      cfg.Storage.UploadDir,
		PresignTTL:     cfg.Upload.PresignTTL,
		MaxUploadBytes: cfg.Upload.MaxBytes,
	})
	if err != nil {
		return err
	}

	httpSrv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           srv.Handler(),
		ReadHeaderTimeout: cfg.Server.RequestTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infow("devserver listening", "addr", httpSrv.Addr, "public_url", cfg.PublicURL(), "db", cfg.Storage.DBPath)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
	}

	log.Infow("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	srv.Close()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
