package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"socialnet/config"
	"socialnet/internal/api"
	"socialnet/internal/httpclient"
	"socialnet/internal/query"
	"socialnet/internal/session"
	"socialnet/internal/usecase"
	"socialnet/pkg/logger"
)

var (
	configFile string
	verbose    bool

	log *zap.SugaredLogger
	svc *usecase.Service
)

var rootCmd = &cobra.Command{
	Use:           "socialctl",
	Short:         "Command line client for the socialnet API",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.NewClientConfig(configFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		level := cfg.Logging.Level
		if verbose {
			level = "debug"
		}
		if log, err = logger.New(level); err != nil {
			return err
		}

		sess := session.New(cfg.Session.File)
		if _, err := sess.Load(); err != nil && !errors.Is(err, session.ErrNoSession) {
			log.Warnw("ignoring unreadable session", "file", sess.Path(), "error", err)
		}

		hc, err := httpclient.New(cfg.API.BaseURL,
			httpclient.WithPrefix(cfg.API.Prefix),
			httpclient.WithTimeout(cfg.API.Timeout),
			httpclient.WithTokenSource(sess.Token),
			httpclient.WithLogger(log),
		)
		if err != nil {
			return err
		}
		cache := query.New(query.Options{
			StaleTime:   cfg.Cache.StaleTime,
			Retry:       cfg.Cache.Retry,
			RetryDelay:  cfg.Cache.RetryDelay,
			ShouldRetry: httpclient.Retryable,
			Logger:      log,
		})
		svc = usecase.New(api.New(hc), cache, sess, log)
		return nil
	},
	PersistentPostRun: func(*cobra.Command, []string) {
		if log != nil {
			_ = log.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}

// toastError marks a failure of the service layer, shown as a toast.
type toastError struct{ err error }

func (e toastError) Error() string { return e.err.Error() }
func (e toastError) Unwrap() error { return e.err }

func fail(err error) error {
	if err == nil {
		return nil
	}
	return toastError{err}
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}

func main() {
	err := rootCmd.Execute()
	if err == nil {
		return
	}
	var te toastError
	if errors.As(err, &te) {
		fmt.Fprintln(os.Stderr, usecase.Toast(te.err))
		if log != nil {
			log.Debugw("command failed", "error", te.err)
		}
	} else {
		fmt.Fprintln(os.Stderr, err)
	}
	os.Exit(1)
}
