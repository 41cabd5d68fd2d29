// Command bookingctl drives the booking core from the terminal. It runs a
// single command given with -c, or reads commands from stdin, one per line.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"bookingcore/internal/adapters/console"
	"bookingcore/internal/config"
	"bookingcore/internal/core"
	"bookingcore/internal/logging"
	"bookingcore/internal/storage"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, "bookingctl:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("bookingctl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	command := fs.String("c", "", "run a single command and exit")
	envFile := fs.String("env-file", ".env", "optional dotenv file loaded before the environment is read")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := godotenv.Load(*envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("loading %s: %w", *envFile, err)
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger, err := logging.New(stderr, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}

	medium, err := storage.Open(ctx, cfg.Storage, logger)
	if err != nil {
		return err
	}

	opts, cleanup, err := observability(ctx, cfg, logger)
	if err != nil {
		_ = medium.Close()
		return err
	}
	defer cleanup()

	c := core.New(medium, append(opts,
		core.WithAdminEmails(cfg.AdminEmails...),
		core.WithLocation(cfg.Location()),
	)...)
	defer func() {
		if err := c.Close(); err != nil {
			logger.Warn("close core", "error", err)
		}
	}()

	shell := console.NewShell(c, logger)
	if *command != "" {
		res := shell.Execute(ctx, *command)
		if err := writeResult(stdout, res); err != nil {
			return err
		}
		if !res.Success {
			return errCommandFailed
		}
		return nil
	}
	return shell.Run(ctx, stdin, stdout)
}

var errCommandFailed = errors.New("command failed")

// observability builds the metrics, tracing and audit options and starts the
// metrics listener when configured.
func observability(ctx context.Context, cfg *config.Config, logger *slog.Logger) ([]core.Option, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	registry := prometheus.NewRegistry()
	prom, err := core.NewPrometheusMetricsRecorder(registry)
	if err != nil {
		return nil, cleanup, fmt.Errorf("register metrics: %w", err)
	}
	expvarRec := core.NewExpvarMetricsRecorder("")
	opts := []core.Option{
		core.WithMetricsRecorder(core.MultiMetricsRecorder{prom, expvarRec}),
		core.WithAuditRecorder(logging.NewAuditRecorder(logger)),
	}

	if cfg.TraceFile != "" {
		f, err := os.OpenFile(cfg.TraceFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, cleanup, fmt.Errorf("open trace file: %w", err)
		}
		closers = append(closers, func() { _ = f.Close() })
		opts = append(opts, core.WithTracer(core.NewJSONTracer(f)))
	}

	if cfg.MetricsEnabled() {
		srv := &http.Server{
			Addr:              cfg.MetricsAddr,
			Handler:           newMetricsRouter(registry),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			logger.Info("metrics listener started", "addr", cfg.MetricsAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics listener failed", "error", err)
			}
		}()
		closers = append(closers, func() {
			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		})
	}
	return opts, cleanup, nil
}

func writeResult(w io.Writer, res console.Result) error {
	b, err := json.Marshal(res)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}
