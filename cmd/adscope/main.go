package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexvidalr/adscope/config"
	"github.com/alexvidalr/adscope/internal/adapters/googleads"
	"github.com/alexvidalr/adscope/internal/adapters/httpapi"
	"github.com/alexvidalr/adscope/internal/adapters/meta"
	"github.com/alexvidalr/adscope/internal/adapters/notify"
	"github.com/alexvidalr/adscope/internal/adapters/storage"
	"github.com/alexvidalr/adscope/internal/adapters/tiktok"
	"github.com/alexvidalr/adscope/internal/application/merge"
	"github.com/alexvidalr/adscope/internal/domain"
	"github.com/alexvidalr/adscope/internal/ports"
	"github.com/alexvidalr/adscope/internal/scheduler"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	once := flag.Bool("once", false, "run one pipeline cycle and exit")
	serve := flag.Bool("serve", false, "start the HTTP API server")
	table := flag.Bool("table", false, "print full table (default: compact 1-line)")
	verbose := flag.Bool("verbose", false, "set log level to debug")
	logFormat := flag.String("format", "", "log format: text|json (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err, "path", *configPath)
		os.Exit(1)
	}

	if *verbose {
		cfg.Log.Level = "debug"
	}
	if *logFormat != "" {
		cfg.Log.Format = *logFormat
	}
	setupLogger(cfg.Log)

	slog.Info("adscope starting",
		"config", *configPath,
		"level", cfg.Fetch.Level,
		"channel", cfg.Fetch.Channel,
		"once", *once,
		"serve", *serve,
	)

	providers := buildProviders(cfg)
	if len(providers) == 0 {
		slog.Error("no channel adapters configured — set at least one access token")
		os.Exit(1)
	}
	merger := merge.New(providers, cfg.FetchTimeout())

	var store *storage.SQLiteStorage
	if cfg.Storage.Enabled {
		store, err = storage.NewSQLiteStorage(cfg.Storage.DSN)
		if err != nil {
			slog.Error("failed to open storage", "err", err, "dsn", cfg.Storage.DSN)
			os.Exit(1)
		}
		defer store.Close()
	}

	notifier := notify.NewConsole(*table)
	baseQuery := merge.Query{
		Level:       domain.Level(cfg.Fetch.Level),
		Channel:     cfg.Fetch.Channel,
		Account:     cfg.Fetch.Account,
		DatePreset:  cfg.Fetch.DatePreset,
		IncludeDims: cfg.Fetch.IncludeDims,
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// store es *SQLiteStorage; un nil tipado no debe colarse en la interfaz
	var storePort ports.Storage
	if store != nil {
		storePort = store
	}
	sched := scheduler.New(ctx, merger, storePort, notifier, baseQuery, cfg.Thresholds)

	if *once {
		if err := sched.RunNow(); err != nil {
			slog.Error("run failed", "err", err)
			os.Exit(1)
		}
		return
	}

	if *serve {
		runServer(ctx, cfg, merger, providers, storePort)
		return
	}

	// Modo daemon: run inicial + cron
	if err := sched.RunNow(); err != nil {
		slog.Error("initial run failed", "err", err)
	}
	if err := sched.Register(cfg.Fetch.Schedule); err != nil {
		slog.Error("failed to register schedule", "err", err, "spec", cfg.Fetch.Schedule)
		os.Exit(1)
	}
	sched.Start()
	<-ctx.Done()
	sched.Stop()

	slog.Info("adscope stopped cleanly")
}

// buildProviders instancia sólo los adapters con credenciales presentes.
func buildProviders(cfg *config.Config) []ports.ChannelProvider {
	var providers []ports.ChannelProvider

	if p := meta.New(cfg.Meta); p.Enabled() {
		providers = append(providers, p)
	} else {
		slog.Debug("meta adapter disabled: no access token")
	}
	if p := googleads.New(cfg.Google); p.Enabled() {
		providers = append(providers, p)
	} else {
		slog.Debug("google adapter disabled: incomplete credentials")
	}
	if p := tiktok.New(cfg.TikTok); p.Enabled() {
		providers = append(providers, p)
	} else {
		slog.Debug("tiktok adapter disabled: no access token")
	}
	return providers
}

func runServer(ctx context.Context, cfg *config.Config, merger *merge.Orchestrator,
	providers []ports.ChannelProvider, store ports.Storage) {

	api := httpapi.NewServer(slog.Default(), merger, providers, store, cfg.Thresholds)
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           api.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("http server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server failed", "err", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown failed", "err", err)
	}
	slog.Info("adscope stopped cleanly")
}

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}
