package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/nao1215/contentscale/internal/model"
)

const namespace = "contentscale"

// Outcome label values of the scans counter.
const (
	OutcomeScored = "scored"
	OutcomeFailed = "failed"
)

// Result label values of the validations counter.
const (
	ResultVerified = "verified"
	ResultFallback = "fallback"
)

// Recorder collects scan metrics in its own registry.
type Recorder struct {
	registry    *prometheus.Registry
	scans       *prometheus.CounterVec
	validations *prometheus.CounterVec
	rejections  *prometheus.CounterVec
	totals      prometheus.Histogram
	durations   prometheus.Histogram
	lastScore   *prometheus.GaugeVec
}

// NewRecorder creates a Recorder with all collectors registered.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		scans: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scans_total",
			Help:      "Scans by outcome and failure stage.",
		}, []string{"outcome", "stage"}),
		validations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "validations_total",
			Help:      "Scored scans by validation result.",
		}, []string{"result"}),
		rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "validator_rejections_total",
			Help:      "Detected elements rejected by the validator, by category.",
		}, []string{"category"}),
		totals: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "score_total",
			Help:      "Distribution of total scores.",
			Buckets:   prometheus.LinearBuckets(10, 10, 10),
		}),
		durations: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "scan_duration_seconds",
			Help:      "Wall time of a scan.",
			Buckets:   prometheus.ExponentialBuckets(0.25, 2, 10),
		}),
		lastScore: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_score",
			Help:      "Total score of the most recent scan per host.",
		}, []string{"host"}),
	}
	r.registry.MustRegister(r.scans, r.validations, r.rejections, r.totals, r.durations, r.lastScore)
	return r
}

// Registry returns the registry holding the recorder's collectors.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Observe records one finished scan. Nil reports are ignored.
func (r *Recorder) Observe(report *model.ScanReport) {
	if report == nil {
		return
	}

	r.durations.Observe(float64(report.DurationMillis) / 1000)

	if report.Failed() {
		stage := report.FailureStage
		if stage == "" {
			stage = "unknown"
		}
		r.scans.WithLabelValues(OutcomeFailed, stage).Inc()
		return
	}

	r.scans.WithLabelValues(OutcomeScored, "").Inc()
	r.totals.Observe(float64(report.Total()))
	if report.Host != "" {
		r.lastScore.WithLabelValues(report.Host).Set(float64(report.Total()))
	}

	if report.Validation == nil {
		return
	}
	if report.Validation.Fallback {
		r.validations.WithLabelValues(ResultFallback).Inc()
		return
	}
	r.validations.WithLabelValues(ResultVerified).Inc()
	for category, rejected := range report.Validation.Rejections {
		if len(rejected) > 0 {
			r.rejections.WithLabelValues(string(category)).Add(float64(len(rejected)))
		}
	}
}

// ObserveAll records every report in reports.
func (r *Recorder) ObserveAll(reports []*model.ScanReport) {
	for _, report := range reports {
		r.Observe(report)
	}
}

// WriteTextfile writes the registry in the Prometheus text format to path,
// atomically replacing any previous file.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}
