package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"git.home.luguber.info/inful/bookbuilder/internal/config"
	"git.home.luguber.info/inful/bookbuilder/internal/history"
	"git.home.luguber.info/inful/bookbuilder/internal/logfields"
	"git.home.luguber.info/inful/bookbuilder/internal/pipeline"
	"git.home.luguber.info/inful/bookbuilder/internal/report"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	Output string `short:"o" help:"Output directory for rendered artifacts (default from config)"`
	HTML   bool   `help:"Render HTML"`
	PDF    bool   `help:"Render PDF"`
	EPUB   bool   `help:"Render EPUB"`
	All    bool   `help:"Render every supported format"`
	Locale string `help:"Restrict translation checks to one locale"`
	Report string `help:"Write the build report as JSON to this path"`
}

func (b *BuildCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p := newPipeline(root, cfg, nil, g.Logger)
	r := p.Run(ctx, pipeline.Options{
		Formats:    selectedFormats(cfg, b.HTML, b.PDF, b.EPUB, b.All),
		Locale:     b.Locale,
		Title:      cfg.Title,
		OutputDir:  outputDir(root, cfg, b.Output),
		ReportPath: b.Report,
	})

	recordHistory(g, root, cfg, r)
	printSummary(r)

	g.ExitCode = r.ExitCode()
	return nil
}

// recordHistory persists the report, best effort. History being unavailable
// never affects the build result.
func recordHistory(g *Global, root *CLI, cfg *config.Config, r *report.BuildReport) {
	dbPath := cfg.HistoryDB
	if !filepath.IsAbs(dbPath) {
		dbPath = filepath.Join(root.Root, dbPath)
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		g.Logger.Warn("create history directory", logfields.Error(err))
		return
	}
	store, err := history.Open(dbPath)
	if err != nil {
		g.Logger.Warn("open history database", logfields.Error(err))
		return
	}
	defer store.Close()
	if err := store.Record(context.Background(), r); err != nil {
		g.Logger.Warn("record build history", logfields.Error(err))
	}
}

// printSummary writes the human-facing result to stdout.
func printSummary(r *report.BuildReport) {
	fmt.Printf("Build %s: %s (%d documents, %d errors, %d warnings)\n",
		r.BuildID, r.Outcome, r.Documents, r.ErrorCount(), r.WarningCount())

	for _, issue := range r.Issues {
		if issue.Severity == report.SeverityInfo {
			continue
		}
		if issue.Path != "" {
			fmt.Printf("  %s: %s: %s\n", issue.Severity, issue.Path, issue.Message)
		} else {
			fmt.Printf("  %s: %s\n", issue.Severity, issue.Message)
		}
	}
	for _, outcome := range r.Renders {
		if outcome.Success {
			fmt.Printf("  %s: %s\n", outcome.Format, outcome.Artifact)
		} else {
			fmt.Printf("  %s: failed after %d attempts: %s\n", outcome.Format, outcome.Attempts, outcome.Error)
		}
	}
}
