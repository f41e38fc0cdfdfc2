// Package pipeline runs the staged document assembly flow: parse, graph,
// status, translations, render. Every run produces a BuildReport whether it
// succeeds or not.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/bookbuilder/internal/document"
	"git.home.luguber.info/inful/bookbuilder/internal/graph"
	"git.home.luguber.info/inful/bookbuilder/internal/logfields"
	"git.home.luguber.info/inful/bookbuilder/internal/metrics"
	"git.home.luguber.info/inful/bookbuilder/internal/render"
	"git.home.luguber.info/inful/bookbuilder/internal/report"
	"git.home.luguber.info/inful/bookbuilder/internal/status"
	"git.home.luguber.info/inful/bookbuilder/internal/translation"
)

// Stage names, in execution order. They key stage durations in the report
// and the stage label in metrics.
const (
	StageParse        = "parse_documents"
	StageGraph        = "build_graph"
	StageStatus       = "aggregate_status"
	StageTranslations = "link_translations"
	StageRender       = "render"
)

// Options selects what a single run does.
type Options struct {
	// Formats to render. Empty together with SkipRender=false still means
	// no render output.
	Formats []render.Format

	// SkipRender stops the pipeline after analysis. Used by validate and
	// status commands.
	SkipRender bool

	// Locale restricts translation loading to one locale. Empty loads all.
	Locale string

	// Title and OutputDir feed the render job.
	Title     string
	OutputDir string

	// ReportPath, when set, writes the finished report as JSON.
	ReportPath string
}

// Pipeline owns the collaborators shared across runs. It is reusable: watch
// mode calls Run repeatedly on the same instance.
type Pipeline struct {
	Root     string
	History  document.LastUpdatedSource
	Logger   *slog.Logger
	Recorder metrics.Recorder

	// Renderers maps each format to its renderer. Missing entries surface
	// as environment issues at dispatch time.
	Renderers map[render.Format]render.Renderer
}

// New wires a pipeline with safe fallbacks for optional collaborators.
func New(root string, renderers map[render.Format]render.Renderer, rec metrics.Recorder, logger *slog.Logger) *Pipeline {
	if rec == nil {
		rec = metrics.NoopRecorder{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		Root:      root,
		Logger:    logger,
		Recorder:  rec,
		Renderers: renderers,
	}
}

// Run executes one full build. The returned report is always non-nil and
// always finished: callers read its Outcome and ExitCode rather than an
// error. Structural (error-level) issues abort before render dispatch.
func (p *Pipeline) Run(ctx context.Context, opts Options) *report.BuildReport {
	r := report.New()
	logger := p.Logger.With(logfields.BuildID(r.BuildID))
	logger.Info("build started", logfields.Path(p.Root))

	defer func() {
		r.Finish()
		p.Recorder.ObserveBuildDuration(r.Duration())
		p.Recorder.IncBuildOutcome(string(r.Outcome))
		logger.Info("build finished",
			slog.String("outcome", string(r.Outcome)),
			slog.Int("errors", r.ErrorCount()),
			slog.Int("warnings", r.WarningCount()),
			logfields.DurationMS(float64(r.Duration().Milliseconds())))
		if opts.ReportPath != "" {
			if err := r.WriteJSON(opts.ReportPath); err != nil {
				logger.Error("write report", logfields.Error(err))
			}
		}
	}()

	// Stage 1: parse every content file.
	var loaded *document.LoadResult
	ok := p.stage(ctx, r, logger, StageParse, func(ctx context.Context) bool {
		loader := &document.Loader{Root: p.Root, History: p.History, LocaleFilter: opts.Locale}
		result, err := loader.Load(ctx)
		if err != nil {
			code := report.IssueEnvironment
			if ctx.Err() != nil {
				code = report.IssueCanceled
			}
			r.AddIssue(code, report.SeverityError, StageParse, p.Root, err.Error())
			return false
		}
		loaded = result
		r.Documents = len(result.Canonical)
		r.Translations = len(result.Translations)
		r.Issues = append(r.Issues, result.Issues...)
		return true
	})
	if !ok {
		return r
	}

	// Stage 2: assemble the content graph.
	var g *graph.ContentGraph
	ok = p.stage(ctx, r, logger, StageGraph, func(ctx context.Context) bool {
		var issues []report.Issue
		g, issues = graph.Build(loaded.Canonical)
		r.Issues = append(r.Issues, issues...)
		return true
	})
	if !ok {
		return r
	}

	// Stage 3: completion rollup.
	ok = p.stage(ctx, r, logger, StageStatus, func(ctx context.Context) bool {
		r.Completion = status.Aggregate(g)
		return true
	})
	if !ok {
		return r
	}

	// Stage 4: translation linking.
	ok = p.stage(ctx, r, logger, StageTranslations, func(ctx context.Context) bool {
		result := translation.LinkTranslations(g, loaded.Translations)
		r.TranslationSum = &result.Summary
		r.Issues = append(r.Issues, result.Issues...)
		return true
	})
	if !ok {
		return r
	}

	// Structural problems make render output unrepresentative of the book,
	// so error-level issues stop the run here.
	if r.HasErrors() {
		logger.Error("structural errors, skipping render", slog.Int("errors", r.ErrorCount()))
		return r
	}
	if opts.SkipRender || len(opts.Formats) == 0 {
		return r
	}

	// Stage 5: concurrent render dispatch.
	p.stage(ctx, r, logger, StageRender, func(ctx context.Context) bool {
		job := render.Job{
			Source:    render.Assemble(g, opts.Title),
			Title:     opts.Title,
			OutputDir: opts.OutputDir,
		}
		dispatcher := render.NewDispatcher(p.Renderers, p.Recorder, logger)
		outcomes, issues := dispatcher.Dispatch(ctx, job, opts.Formats)
		for _, outcome := range outcomes {
			r.RecordRender(outcome)
		}
		r.Issues = append(r.Issues, issues...)

		// A render cut short by cancellation is a canceled run, not a
		// partial success.
		if ctx.Err() != nil {
			r.Canceled = true
		}
		return true
	})

	return r
}

// stage runs one pipeline stage with timing, metrics, and a cancellation
// check at the boundary. It returns false when the run should stop.
func (p *Pipeline) stage(ctx context.Context, r *report.BuildReport, logger *slog.Logger, name string, fn func(context.Context) bool) bool {
	if err := ctx.Err(); err != nil {
		r.Canceled = true
		r.AddIssue(report.IssueCanceled, report.SeverityError, name, "", "build canceled")
		return false
	}

	started := time.Now()
	ok := fn(ctx)
	elapsed := time.Since(started)

	r.RecordStageDuration(name, elapsed)
	p.Recorder.ObserveStageDuration(name, elapsed)
	result := metrics.ResultSuccess
	if !ok {
		result = metrics.ResultFatal
	}
	p.Recorder.IncStageResult(name, result)

	logger.Debug("stage completed",
		logfields.Stage(name),
		logfields.DurationMS(float64(elapsed.Milliseconds())))

	if ctx.Err() != nil && !ok {
		r.Canceled = true
	}
	return ok
}
