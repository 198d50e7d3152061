package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/earthboundkid/versioninfo/v2"
	"github.com/getsentry/sentry-go"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/lmittmann/tint"
	"github.com/riverqueue/river"
	"golang.org/x/sync/errgroup"

	"github.com/dynoinc/respond/internal/background"
	"github.com/dynoinc/respond/internal/background/channel_sync_worker"
	"github.com/dynoinc/respond/internal/background/incident_update_worker"
	"github.com/dynoinc/respond/internal/incident"
	respondotel "github.com/dynoinc/respond/internal/otel"
	"github.com/dynoinc/respond/internal/slack_integration"
	"github.com/dynoinc/respond/internal/storage"
	"github.com/dynoinc/respond/internal/web"
)

type Config struct {
	DevMode  bool   `split_words:"true" default:"false"`
	LogLevel string `split_words:"true" default:"info"`

	// Error reporting and tracing
	SentryDSN       string  `envconfig:"SENTRY_DSN"`
	OTLPEndpoint    string  `envconfig:"OTLP_ENDPOINT"`
	TraceSampleRate float64 `split_words:"true" default:"0.1"`

	// Database configuration
	Database storage.DatabaseConfig

	// Slack configuration
	Slack slack_integration.Config

	// Standard cron expression; empty disables the periodic channel sync.
	ChannelSyncSchedule string `split_words:"true" default:"*/10 * * * *"`

	// HTTP configuration
	HTTPAddr string `split_words:"true" default:"127.0.0.1:5001"`
}

func main() {
	help := flag.Bool("help", false, "Show help")
	flag.Parse()

	if *help {
		_ = envconfig.Usage("respond", &Config{})
		return
	}

	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			log.Fatalf("error loading .env file: %v", err)
		}
	}

	var c Config
	if err := envconfig.Process("respond", &c); err != nil {
		log.Fatalf("error loading configuration: %v", err)
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		log.Fatalf("invalid log level %q: %v", c.LogLevel, err)
	}
	slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.DateTime,
		AddSource:  c.DevMode,
	})))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	wg, ctx := errgroup.WithContext(ctx)
	slog.InfoContext(ctx, "Running version", "version", versioninfo.Short())

	// Error reporting setup
	if c.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              c.SentryDSN,
			Release:          versioninfo.Short(),
			EnableTracing:    true,
			TracesSampleRate: c.TraceSampleRate,
		}); err != nil {
			log.Fatalf("error setting up Sentry: %v", err)
		}
		defer sentry.Flush(2 * time.Second)
	}

	// Tracing and metrics setup
	providers, err := respondotel.Setup(ctx, respondotel.Config{
		OTLPEndpoint: c.OTLPEndpoint,
		SampleRate:   c.TraceSampleRate,
	}, "respond", versioninfo.Short(), c.SentryDSN != "")
	if err != nil {
		log.Fatalf("error setting up telemetry: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := providers.Shutdown(shutdownCtx); err != nil {
			slog.Warn("error flushing telemetry", "error", err)
		}
	}()

	// Database setup
	if c.DevMode {
		if err := storage.StartPostgresContainer(ctx, c.Database); err != nil {
			log.Fatalf("error setting up dev database: %v", err)
		}
	}
	db, err := storage.New(ctx, c.Database.URL())
	if err != nil {
		log.Fatalf("error setting up database: %v", err)
	}
	defer db.Close()

	incidents := incident.NewService(storage.NewIncidentStore(db))

	// Slack integration setup
	slackIntegration, err := slack_integration.New(ctx, c.Slack, incidents)
	if err != nil {
		log.Fatalf("error setting up Slack: %v", err)
	}
	chat := slackIntegration.Service()

	// Background job setup
	workers := river.NewWorkers()
	river.AddWorker(workers, incident_update_worker.New(incidents, chat))
	river.AddWorker(workers, channel_sync_worker.New(incidents, chat))

	periodicJobs, err := background.PeriodicJobs(c.ChannelSyncSchedule)
	if err != nil {
		log.Fatalf("error setting up periodic jobs: %v", err)
	}
	riverClient, err := background.New(db, workers, periodicJobs)
	if err != nil {
		log.Fatalf("error setting up background worker: %v", err)
	}
	incidents.Notifier = background.NewNotifier(riverClient)

	// HTTP server setup
	handler, err := web.New(ctx, db, riverClient, incidents, providers.Gatherer)
	if err != nil {
		log.Fatalf("error setting up HTTP server: %v", err)
	}

	server := &http.Server{
		BaseContext:       func(listener net.Listener) context.Context { return ctx },
		Addr:              c.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	wg.Go(func() error {
		slog.InfoContext(ctx, "Starting river client")
		if err := riverClient.Start(ctx); err != nil {
			return fmt.Errorf("river client error: %w", err)
		}

		<-ctx.Done()
		stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return riverClient.Stop(stopCtx)
	})
	wg.Go(func() error {
		slog.InfoContext(ctx, "Starting HTTP server", "addr", c.HTTPAddr)
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}

		return nil
	})
	wg.Go(func() error {
		slog.InfoContext(ctx, "Starting Slack integration", "enabled", slackIntegration.Enabled(), "bot_user_id", chat.BotUserID())
		return slackIntegration.Run(ctx)
	})
	wg.Go(func() error {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

		select {
		case <-ctx.Done():
		case <-sig:
			slog.Info("Shutting down")
			cancel()
		}

		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancelShutdown()
		return server.Shutdown(shutdownCtx)
	})

	if err := wg.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("error running server", "error", err)
	}
}
