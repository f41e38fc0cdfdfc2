package commands

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/bookbuilder/internal/events"
	"git.home.luguber.info/inful/bookbuilder/internal/history"
	"git.home.luguber.info/inful/bookbuilder/internal/logfields"
	"git.home.luguber.info/inful/bookbuilder/internal/metrics"
	"git.home.luguber.info/inful/bookbuilder/internal/pipeline"
	"git.home.luguber.info/inful/bookbuilder/internal/report"
	"git.home.luguber.info/inful/bookbuilder/internal/watch"
)

// WatchCmd implements the 'watch' command: continuous rebuild on change.
type WatchCmd struct {
	Output string `short:"o" help:"Output directory for rendered artifacts (default from config)"`
	Locale string `help:"Restrict translation checks to one locale"`
}

func (w *WatchCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var rec metrics.Recorder = metrics.NoopRecorder{}
	if cfg.Metrics.Enabled {
		registry := prom.NewRegistry()
		rec = metrics.NewPrometheusRecorder(registry)

		server := &http.Server{Addr: cfg.Metrics.Addr, Handler: metrics.HTTPHandler(registry)}
		go func() {
			g.Logger.Info("metrics endpoint listening", slog.String("addr", cfg.Metrics.Addr))
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				g.Logger.Error("metrics server", logfields.Error(err))
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = server.Shutdown(shutdownCtx)
		}()
	}

	var publisher *events.Publisher
	if cfg.Events.NATSURL != "" {
		publisher, err = events.Connect(cfg.Events.NATSURL, cfg.Events.Subject, g.Logger)
		if err != nil {
			// Watch mode still works without the event stream.
			g.Logger.Warn("event publishing disabled", logfields.Error(err))
		} else {
			defer publisher.Close()
		}
	}

	store := openHistory(g, root, cfg.HistoryDB)
	if store != nil {
		defer store.Close()
	}

	p := newPipeline(root, cfg, rec, g.Logger)
	opts := pipeline.Options{
		Formats:   selectedFormats(cfg, false, false, false, false),
		Locale:    w.Locale,
		Title:     cfg.Title,
		OutputDir: outputDir(root, cfg, w.Output),
	}

	rebuildEvery, _ := cfg.Watch.RebuildInterval()
	watcher := &watch.Watcher{
		Root:         root.Root,
		Debounce:     cfg.Watch.DebounceDuration(),
		RebuildEvery: rebuildEvery,
		Logger:       g.Logger,
		Build: func(ctx context.Context) *report.BuildReport {
			return p.Run(ctx, opts)
		},
		OnReport: func(r *report.BuildReport) {
			if publisher != nil {
				publisher.PublishReport(r)
			}
			if store != nil {
				if err := store.Record(context.Background(), r); err != nil {
					g.Logger.Warn("record build history", logfields.Error(err))
				}
			}
		},
	}

	return watcher.Run(ctx)
}

func openHistory(g *Global, root *CLI, dbPath string) *history.Store {
	if !filepath.IsAbs(dbPath) {
		dbPath = filepath.Join(root.Root, dbPath)
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		g.Logger.Warn("create history directory", logfields.Error(err))
		return nil
	}
	store, err := history.Open(dbPath)
	if err != nil {
		g.Logger.Warn("open history database", logfields.Error(err))
		return nil
	}
	return store
}
