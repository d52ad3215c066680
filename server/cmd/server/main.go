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

	"github.com/drillscope/drillscope/server/internal/alerts"
	"github.com/drillscope/drillscope/server/internal/api"
	"github.com/drillscope/drillscope/server/internal/config"
	"github.com/drillscope/drillscope/server/internal/metrics"
	"github.com/drillscope/drillscope/server/internal/records"
	"github.com/drillscope/drillscope/server/internal/store"
	"github.com/drillscope/drillscope/server/internal/ws"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file; empty runs with defaults")
	uiDir := flag.String("ui-dir", "", "serve the dashboard static files from this directory (e.g. ui/dist); leave empty to disable")
	flag.Parse()

	level := new(slog.LevelVar)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	slog.Info("drillscope-server starting", "config", *configPath)

	cfg := config.Defaults()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			slog.Error("failed to load config", "err", err)
			os.Exit(1)
		}
	}
	level.Set(cfg.Server.Level())

	slog.Info("config loaded",
		"http_port", cfg.Server.HTTPPort,
		"log_level", cfg.Server.LogLevel,
		"cache_ttl", cfg.Server.Cache.TTL,
		"max_upload_bytes", cfg.Server.Upload.MaxBytes,
		"start_column", cfg.Server.Columns.StartTime,
		"end_column", cfg.Server.Columns.EndTime,
		"alert_rules", len(cfg.Server.Alerts.Rules),
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Upload cache with background TTL eviction.
	st := store.New(cfg.Server.Cache.TTL)
	go st.Run(ctx)

	// Alerts engine evaluates rules on every processed upload.
	alertEngine := alerts.New(cfg.Server.Alerts)

	// Log level and alert rules follow the config file. Column and timestamp
	// settings are read once at startup.
	if *configPath != "" {
		go func() {
			err := config.Watch(ctx, *configPath, func(next *config.Config) {
				level.Set(next.Server.Level())
				alertEngine.SetConfig(next.Server.Alerts)
			})
			if err != nil {
				slog.Error("config watcher stopped", "err", err)
			}
		}()
	}

	// WebSocket hub pushes the upload list to dashboard clients.
	hub := ws.New(st, cfg.Server.Stream.Interval)
	go hub.Run(ctx)

	reg := metrics.New(st.Count)

	handler := api.New(st, api.Config{
		Processor:      records.NewProcessor(cfg.Server.ProcessorOptions(logger)),
		MaxUploadBytes: cfg.Server.Upload.MaxBytes,
		Location:       cfg.Server.Timestamps.Zone(),
		Alerts:         alertEngine,
		Metrics:        reg,
		OnUpload:       hub.Notify,
	})

	httpMux := http.NewServeMux()
	httpMux.Handle("/api/", handler)
	httpMux.Handle("/ws/stream", hub)
	httpMux.Handle("/metrics", reg)

	// The "/" catch-all serves index.html for any unknown path (SPA routing).
	if *uiDir != "" {
		fs := http.FileServer(http.Dir(*uiDir))
		httpMux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
			path := *uiDir + r.URL.Path
			if _, err := os.Stat(path); os.IsNotExist(err) {
				http.ServeFile(w, r, *uiDir+"/index.html")
				return
			}
			fs.ServeHTTP(w, r)
		})
		slog.Info("serving UI static files", "dir", *uiDir)
	}

	httpSrv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.HTTPPort),
		Handler:           httpMux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		slog.Info("HTTP server listening", "port", cfg.Server.HTTPPort)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server stopped", "err", err)
			cancel()
		}
	}()

	<-ctx.Done()
	slog.Info("drillscope-server shutting down")

	shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP shutdown", "err", err)
	}
}
