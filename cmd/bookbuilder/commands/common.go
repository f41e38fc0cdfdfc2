package commands

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/bookbuilder/internal/config"
	"git.home.luguber.info/inful/bookbuilder/internal/gitmeta"
	"git.home.luguber.info/inful/bookbuilder/internal/logfields"
	"git.home.luguber.info/inful/bookbuilder/internal/metrics"
	"git.home.luguber.info/inful/bookbuilder/internal/pipeline"
	"git.home.luguber.info/inful/bookbuilder/internal/render"
)

// Global carries state shared across subcommands.
type Global struct {
	Logger *slog.Logger

	// ExitCode is set by commands whose outcome maps to a non-zero exit
	// without being an error (partial render failures).
	ExitCode int
}

// CLI is the root command definition with global flags.
type CLI struct {
	Root    string           `short:"C" help:"Book root directory" default:"." type:"existingdir"`
	Config  string           `short:"c" help:"Configuration file path, relative to the book root" default:"book.yaml"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build    BuildCmd    `cmd:"" help:"Validate the book and render the configured output formats"`
	Validate ValidateCmd `cmd:"" help:"Check structure, frontmatter, and translations without rendering"`
	Status   StatusCmd   `cmd:"" help:"Show per-part and overall completion"`
	Watch    WatchCmd    `cmd:"" help:"Rebuild continuously as content changes"`
	History  HistoryCmd  `cmd:"" help:"List recent builds from the history database"`
	Init     InitCmd     `cmd:"" help:"Create a starter book.yaml"`
}

// AfterApply runs after flag parsing; sets up logging once.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return nil
}

// ConfigPath resolves the configuration file against the book root.
func (c *CLI) ConfigPath() string {
	if filepath.IsAbs(c.Config) {
		return c.Config
	}
	return filepath.Join(c.Root, c.Config)
}

// loadConfig loads and validates book.yaml.
func loadConfig(root *CLI) (*config.Config, error) {
	return config.Load(root.ConfigPath())
}

// buildRenderers assembles the renderer set from configuration. HTML renders
// in-process unless an external command overrides it; PDF and EPUB require
// configured commands.
func buildRenderers(cfg *config.Config) map[render.Format]render.Renderer {
	renderers := map[render.Format]render.Renderer{
		render.FormatHTML: render.NewGoldmarkRenderer(),
	}
	for format, argv := range cfg.Renderers {
		renderers[render.Format(format)] = &render.CommandRenderer{Argv: argv}
	}
	return renderers
}

// newPipeline wires a pipeline for the book root. Git history is optional:
// books outside version control simply have no date fallback.
func newPipeline(root *CLI, cfg *config.Config, rec metrics.Recorder, logger *slog.Logger) *pipeline.Pipeline {
	p := pipeline.New(root.Root, buildRenderers(cfg), rec, logger)
	if history, err := gitmeta.Open(root.Root); err == nil {
		p.History = history
	} else {
		logger.Debug("no git history available", logfields.Error(err))
	}
	return p
}

// selectedFormats resolves the formats for one build: explicit flags beat
// configuration, and --all selects everything.
func selectedFormats(cfg *config.Config, html, pdf, epub, all bool) []render.Format {
	if all {
		return []render.Format{render.FormatHTML, render.FormatPDF, render.FormatEPUB}
	}
	var formats []render.Format
	if html {
		formats = append(formats, render.FormatHTML)
	}
	if pdf {
		formats = append(formats, render.FormatPDF)
	}
	if epub {
		formats = append(formats, render.FormatEPUB)
	}
	if len(formats) > 0 {
		return formats
	}
	for _, f := range cfg.Formats {
		formats = append(formats, render.Format(f))
	}
	return formats
}

// outputDir resolves the artifact directory: CLI flag beats configuration,
// and relative paths anchor at the book root.
func outputDir(root *CLI, cfg *config.Config, flag string) string {
	dir := flag
	if dir == "" {
		dir = cfg.OutputDir
	}
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(root.Root, dir)
	}
	return dir
}
