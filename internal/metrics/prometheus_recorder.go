package metrics

import (
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	once           sync.Once
	stageDuration  *prom.HistogramVec
	buildDuration  prom.Histogram
	stageResults   *prom.CounterVec
	buildOutcome   *prom.CounterVec
	renderDuration *prom.HistogramVec
	renderResults  *prom.CounterVec
	renderRetries  *prom.CounterVec
}

// NewPrometheusRecorder constructs and registers Prometheus metrics (idempotent).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{}
	pr.once.Do(func() {
		pr.stageDuration = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "bookbuilder",
			Name:      "stage_duration_seconds",
			Help:      "Duration of individual pipeline stages",
			Buckets:   prom.DefBuckets,
		}, []string{"stage"})
		pr.buildDuration = prom.NewHistogram(prom.HistogramOpts{
			Namespace: "bookbuilder",
			Name:      "build_duration_seconds",
			Help:      "Total build duration",
			Buckets:   prom.DefBuckets,
		})
		pr.stageResults = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "bookbuilder",
			Name:      "stage_results_total",
			Help:      "Stage result counts by outcome",
		}, []string{"stage", "result"})
		pr.buildOutcome = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "bookbuilder",
			Name:      "build_outcomes_total",
			Help:      "Build outcomes by final status",
		}, []string{"outcome"})
		pr.renderDuration = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "bookbuilder",
			Name:      "render_duration_seconds",
			Help:      "Duration of individual render format attempts",
			Buckets:   prom.DefBuckets,
		}, []string{"format", "result"})
		pr.renderResults = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "bookbuilder",
			Name:      "render_results_total",
			Help:      "Render results by format and success/failure",
		}, []string{"format", "result"})
		pr.renderRetries = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "bookbuilder",
			Name:      "render_retries_total",
			Help:      "Render retries after transient failures",
		}, []string{"format"})
		reg.MustRegister(pr.stageDuration, pr.buildDuration, pr.stageResults,
			pr.buildOutcome, pr.renderDuration, pr.renderResults, pr.renderRetries)
	})
	return pr
}

func (pr *PrometheusRecorder) ObserveStageDuration(stage string, d time.Duration) {
	pr.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (pr *PrometheusRecorder) ObserveBuildDuration(d time.Duration) {
	pr.buildDuration.Observe(d.Seconds())
}

func (pr *PrometheusRecorder) IncStageResult(stage string, result ResultLabel) {
	pr.stageResults.WithLabelValues(stage, string(result)).Inc()
}

func (pr *PrometheusRecorder) IncBuildOutcome(outcome string) {
	pr.buildOutcome.WithLabelValues(outcome).Inc()
}

func (pr *PrometheusRecorder) ObserveRenderDuration(format string, d time.Duration, success bool) {
	pr.renderDuration.WithLabelValues(format, successLabel(success)).Observe(d.Seconds())
}

func (pr *PrometheusRecorder) IncRenderResult(format string, success bool) {
	pr.renderResults.WithLabelValues(format, successLabel(success)).Inc()
}

func (pr *PrometheusRecorder) IncRenderRetry(format string) {
	pr.renderRetries.WithLabelValues(format).Inc()
}

func successLabel(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}
