// Package watch rebuilds the book whenever content changes on disk.
//
// Filesystem events are debounced so editor save bursts trigger one rebuild,
// and an optional periodic schedule forces rebuilds even without changes so
// git-derived dates stay current. Builds run strictly serially.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-co-op/gocron/v2"

	"git.home.luguber.info/inful/bookbuilder/internal/document"
	"git.home.luguber.info/inful/bookbuilder/internal/logfields"
	"git.home.luguber.info/inful/bookbuilder/internal/report"
)

// Watcher drives rebuild-on-change for one book root.
type Watcher struct {
	// Root is the book root containing content/ and translations/.
	Root string

	// Debounce is the quiet window after the last change before a rebuild.
	Debounce time.Duration

	// RebuildEvery schedules periodic rebuilds. Zero disables the schedule.
	RebuildEvery time.Duration

	// Build runs one build and returns its report. Never nil.
	Build func(ctx context.Context) *report.BuildReport

	// OnReport, when set, observes every finished report (event publishing,
	// history recording). Called from the watch loop goroutine.
	OnReport func(*report.BuildReport)

	Logger *slog.Logger
}

// Run watches until the context is canceled. It performs one initial build
// before entering the loop so watch mode never starts stale.
func (w *Watcher) Run(ctx context.Context) error {
	if w.Logger == nil {
		w.Logger = slog.Default()
	}
	if w.Debounce <= 0 {
		w.Debounce = 500 * time.Millisecond
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create file watcher: %w", err)
	}
	defer fsw.Close()

	for _, dir := range []string{"content", "translations"} {
		base := filepath.Join(w.Root, dir)
		if _, err := os.Stat(base); err != nil {
			continue
		}
		if err := addTree(fsw, base); err != nil {
			return fmt.Errorf("watch %s: %w", base, err)
		}
	}

	trigger := make(chan string, 16)

	var scheduler gocron.Scheduler
	if w.RebuildEvery > 0 {
		scheduler, err = gocron.NewScheduler()
		if err != nil {
			return fmt.Errorf("create scheduler: %w", err)
		}
		_, err = scheduler.NewJob(
			gocron.DurationJob(w.RebuildEvery),
			gocron.NewTask(func() {
				select {
				case trigger <- "scheduled rebuild":
				default:
				}
			}),
			gocron.WithName("periodic-rebuild"),
		)
		if err != nil {
			return fmt.Errorf("schedule periodic rebuild: %w", err)
		}
		scheduler.Start()
		defer func() { _ = scheduler.Shutdown() }()
	}

	w.runBuild(ctx, "initial build")

	deb := newDebouncer(w.Debounce)
	for {
		select {
		case <-ctx.Done():
			w.Logger.Info("watch stopped")
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if event.Op.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					// New part or locale directory: watch it too.
					_ = addTree(fsw, event.Name)
					deb.Notify()
					continue
				}
			}
			if !document.IsContentFile(event.Name) {
				continue
			}
			w.Logger.Debug("content changed",
				logfields.Path(event.Name),
				slog.String("op", event.Op.String()))
			deb.Notify()

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.Logger.Warn("watch error", logfields.Error(err))

		case <-deb.C():
			deb.Reset()
			w.runBuild(ctx, "content changed")

		case reason := <-trigger:
			w.runBuild(ctx, reason)
		}
	}
}

func (w *Watcher) runBuild(ctx context.Context, reason string) {
	if ctx.Err() != nil {
		return
	}
	w.Logger.Info("rebuilding", slog.String("reason", reason))
	r := w.Build(ctx)
	if w.OnReport != nil {
		w.OnReport(r)
	}
}

// addTree watches a directory and all its subdirectories. fsnotify watches
// are not recursive.
func addTree(fsw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(p string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			return fsw.Add(p)
		}
		return nil
	})
}
