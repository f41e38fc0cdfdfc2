package render

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	ferrors "git.home.luguber.info/inful/bookbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/bookbuilder/internal/logfields"
	"git.home.luguber.info/inful/bookbuilder/internal/metrics"
	"git.home.luguber.info/inful/bookbuilder/internal/report"
)

const stageName = "render"

// Dispatcher fans a render job out to every requested format concurrently.
// Formats never depend on each other, so a PDF failure cannot stop the EPUB.
type Dispatcher struct {
	Renderers map[Format]Renderer
	Recorder  metrics.Recorder
	Logger    *slog.Logger

	// MaxAttempts bounds the attempt chain per format. Render errors get one
	// retry; environment errors never do.
	MaxAttempts int
}

// NewDispatcher wires a dispatcher with the standard retry policy.
func NewDispatcher(renderers map[Format]Renderer, rec metrics.Recorder, logger *slog.Logger) *Dispatcher {
	if rec == nil {
		rec = metrics.NoopRecorder{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		Renderers:   renderers,
		Recorder:    rec,
		Logger:      logger,
		MaxAttempts: 2,
	}
}

// Dispatch runs every format in formats concurrently and aggregates the
// results in DispatchOrder, so output is deterministic regardless of which
// goroutine finishes first. Failures come back as warning issues rather than
// errors; callers decide the build outcome from the outcomes slice.
func (d *Dispatcher) Dispatch(ctx context.Context, job Job, formats []Format) ([]report.RenderOutcome, []report.Issue) {
	ordered := make([]Format, 0, len(formats))
	requested := make(map[Format]bool, len(formats))
	for _, f := range formats {
		requested[f] = true
	}
	for _, f := range DispatchOrder {
		if requested[f] {
			ordered = append(ordered, f)
		}
	}

	outcomes := make([]report.RenderOutcome, len(ordered))
	issueLists := make([][]report.Issue, len(ordered))

	var wg sync.WaitGroup
	for i, format := range ordered {
		wg.Add(1)
		go func(i int, format Format) {
			defer wg.Done()
			outcomes[i], issueLists[i] = d.renderOne(ctx, job, format)
		}(i, format)
	}
	wg.Wait()

	var issues []report.Issue
	for _, list := range issueLists {
		issues = append(issues, list...)
	}
	return outcomes, issues
}

func (d *Dispatcher) renderOne(ctx context.Context, job Job, format Format) (report.RenderOutcome, []report.Issue) {
	outcome := report.RenderOutcome{Format: string(format)}
	started := time.Now()

	renderer, ok := d.Renderers[format]
	if !ok {
		outcome.Error = "no renderer configured"
		return outcome, []report.Issue{{
			Code:     report.IssueRenderEnvironment,
			Severity: report.SeverityWarning,
			Stage:    stageName,
			Message:  fmt.Sprintf("no renderer configured for %s", format),
		}}
	}

	var artifact string
	var err error
	for attempt := 1; attempt <= d.maxAttempts(); attempt++ {
		outcome.Attempts = attempt
		if attempt > 1 {
			d.Recorder.IncRenderRetry(string(format))
			d.Logger.Warn("retrying render",
				logfields.Format(string(format)),
				logfields.Attempt(attempt),
				logfields.Error(err))
		}

		artifact, err = renderer.Render(ctx, job, format)
		if err == nil {
			break
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			break
		}
		if ce, ok := ferrors.AsClassified(err); !ok || !ce.CanRetry() {
			break
		}
	}

	outcome.Duration = time.Since(started)
	d.Recorder.ObserveRenderDuration(string(format), outcome.Duration, err == nil)
	d.Recorder.IncRenderResult(string(format), err == nil)

	if err != nil {
		outcome.Error = err.Error()
		d.Logger.Error("render failed",
			logfields.Format(string(format)),
			logfields.Attempt(outcome.Attempts),
			logfields.Error(err))
		return outcome, []report.Issue{failureIssue(format, err)}
	}

	outcome.Success = true
	outcome.Artifact = artifact
	d.Logger.Info("render complete",
		logfields.Format(string(format)),
		logfields.Path(artifact),
		logfields.DurationMS(float64(outcome.Duration.Milliseconds())))

	var issues []report.Issue
	if format == FormatHTML {
		issues = VerifyHTML(artifact)
	}
	return outcome, issues
}

func (d *Dispatcher) maxAttempts() int {
	if d.MaxAttempts > 0 {
		return d.MaxAttempts
	}
	return 2
}

func failureIssue(format Format, err error) report.Issue {
	code := report.IssueRenderFailed
	if ferrors.HasCategory(err, ferrors.CategoryEnvironment) {
		code = report.IssueRenderEnvironment
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		code = report.IssueCanceled
	}
	return report.Issue{
		Code:     code,
		Severity: report.SeverityWarning,
		Stage:    stageName,
		Message:  fmt.Sprintf("%s render failed: %v", format, err),
	}
}
