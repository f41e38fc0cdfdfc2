// Package report defines the BuildReport: the single aggregated outcome
// record of one pipeline invocation, covering validation, completion,
// translation findings, and render results.
//
// A BuildReport is constructed fresh per run, filled in by the pipeline
// stages, and read-only for everything downstream (CLI, history store,
// event publisher). It is always produced, even when the build aborts on a
// fatal structural error, so a single bad file does not hide feedback about
// every other file.
package report

import (
	"encoding/json"
	"os"
	"time"

	"github.com/google/uuid"
)

// Outcome is the typed enumeration of final build result states.
type Outcome string

const (
	OutcomeSuccess  Outcome = "success"  // everything validated and rendered
	OutcomeWarning  Outcome = "warning"  // consistency warnings only
	OutcomePartial  Outcome = "partial"  // at least one render format failed after retry
	OutcomeFailed   Outcome = "failed"   // fatal document-level errors, render never dispatched
	OutcomeCanceled Outcome = "canceled" // run canceled before completion
)

// RenderOutcome records the result of one render format attempt chain.
type RenderOutcome struct {
	Format   string        `json:"format"`
	Success  bool          `json:"success"`
	Attempts int           `json:"attempts"`
	Duration time.Duration `json:"duration"`
	Artifact string        `json:"artifact,omitempty"`
	Error    string        `json:"error,omitempty"`
}

// PartCompletion is the rolled-up completion of one part.
type PartCompletion struct {
	Part      int     `json:"part"`
	Documents int     `json:"documents"`
	Percent   float64 `json:"percent"`
}

// Completion is the book-level completion rollup.
type Completion struct {
	OverallPercent float64          `json:"overall_percent"`
	Chapters       int              `json:"chapters"`
	Appendices     int              `json:"appendices"`
	Parts          []PartCompletion `json:"parts"`
}

// TranslationSummary captures the translation linker's findings.
type TranslationSummary struct {
	Locales  []string `json:"locales"`
	Linked   int      `json:"linked"`
	Stale    int      `json:"stale"`
	Missing  int      `json:"missing"`
	Orphaned int      `json:"orphaned"`
}

// BuildReport captures the full outcome of a single pipeline invocation.
type BuildReport struct {
	SchemaVersion  int                      `json:"schema_version"`
	BuildID        string                   `json:"build_id"`
	Start          time.Time                `json:"start"`
	End            time.Time                `json:"end"`
	Documents      int                      `json:"documents"`
	Translations   int                      `json:"translations"`
	Issues         []Issue                  `json:"issues,omitempty"`
	StageDurations map[string]time.Duration `json:"stage_durations"`
	Completion     *Completion              `json:"completion,omitempty"`
	TranslationSum *TranslationSummary      `json:"translation_summary,omitempty"`
	Renders        []RenderOutcome          `json:"renders,omitempty"`
	Outcome        Outcome                  `json:"outcome"`
	Canceled       bool                     `json:"canceled,omitempty"`
}

// New constructs an empty BuildReport with a fresh build ID.
func New() *BuildReport {
	return &BuildReport{
		SchemaVersion:  1,
		BuildID:        uuid.NewString(),
		Start:          time.Now(),
		StageDurations: make(map[string]time.Duration),
	}
}

// AddIssue appends a structured finding.
func (r *BuildReport) AddIssue(code IssueCode, severity Severity, stage, path, message string) {
	r.Issues = append(r.Issues, Issue{
		Code:     code,
		Severity: severity,
		Stage:    stage,
		Path:     path,
		Message:  message,
	})
}

// RecordRender appends a render outcome.
func (r *BuildReport) RecordRender(outcome RenderOutcome) {
	r.Renders = append(r.Renders, outcome)
}

// RecordStageDuration stores the wall time of a stage.
func (r *BuildReport) RecordStageDuration(stage string, d time.Duration) {
	r.StageDurations[stage] = d
}

// ErrorCount returns the number of error-level issues.
func (r *BuildReport) ErrorCount() int {
	n := 0
	for _, issue := range r.Issues {
		if issue.Severity == SeverityError {
			n++
		}
	}
	return n
}

// WarningCount returns the number of warning-level issues.
func (r *BuildReport) WarningCount() int {
	n := 0
	for _, issue := range r.Issues {
		if issue.Severity == SeverityWarning {
			n++
		}
	}
	return n
}

// HasErrors reports whether any error-level (structural) issues exist.
func (r *BuildReport) HasErrors() bool {
	return r.ErrorCount() > 0
}

// FailedRenders returns the number of formats that failed after retry.
func (r *BuildReport) FailedRenders() int {
	n := 0
	for _, render := range r.Renders {
		if !render.Success {
			n++
		}
	}
	return n
}

// DeriveOutcome computes the final outcome from accumulated state.
// Precedence: canceled > failed (structural) > partial (render) > warning > success.
func (r *BuildReport) DeriveOutcome() {
	switch {
	case r.Canceled:
		r.Outcome = OutcomeCanceled
	case r.HasErrors():
		r.Outcome = OutcomeFailed
	case r.FailedRenders() > 0:
		r.Outcome = OutcomePartial
	case r.WarningCount() > 0:
		r.Outcome = OutcomeWarning
	default:
		r.Outcome = OutcomeSuccess
	}
}

// Finish stamps the end time and derives the outcome.
func (r *BuildReport) Finish() {
	r.End = time.Now()
	r.DeriveOutcome()
}

// ExitCode maps the outcome onto the CLI contract: 0 = success (warnings
// allowed), 1 = fatal document-level errors or cancellation, 2 = at least one
// render format failed after retry while others succeeded.
func (r *BuildReport) ExitCode() int {
	switch r.Outcome {
	case OutcomeFailed, OutcomeCanceled:
		return 1
	case OutcomePartial:
		return 2
	default:
		return 0
	}
}

// Duration returns the total wall time of the run.
func (r *BuildReport) Duration() time.Duration {
	if r.End.IsZero() {
		return 0
	}
	return r.End.Sub(r.Start)
}

// WriteJSON writes the report to path as indented JSON for CI consumption.
func (r *BuildReport) WriteJSON(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
