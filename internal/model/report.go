package model

import (
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Failure stages recorded on a ScanReport.
const (
	StageRender   = "render"
	StageParse    = "parse"
	StageValidate = "validate"
	StageScore    = "score"
)

// ScanReport is the result of scanning one URL.
// A report that failed to render or parse carries FailureStage and Error,
// which keeps it distinct from a page that was scored low.
type ScanReport struct {
	// ID is a random UUID identifying the scan.
	ID string `json:"id"`

	// URL is the scanned URL as given by the user.
	URL string `json:"url"`

	// Host is the lowercase hostname of URL without a leading "www.".
	Host string `json:"host"`

	// ScannedAt is when the scan started.
	ScannedAt time.Time `json:"scannedAt"`

	// Page describes the rendered page. The HTML itself is not serialized.
	Page *Page `json:"page,omitempty"`

	// Parse is the parser output.
	Parse *ParserOutput `json:"parse,omitempty"`

	// Validation is the validator output, or the fallback.
	Validation *ValidatedCounts `json:"validation,omitempty"`

	// Score is the final score.
	Score *ScoreBreakdown `json:"score,omitempty"`

	// Quality is the label of Score.Total.
	Quality Quality `json:"quality,omitempty"`

	// PerformedSteps lists the pipeline steps that completed.
	PerformedSteps []string `json:"performedSteps,omitempty"`

	// FailureStage names the step that failed. Empty on success.
	FailureStage string `json:"failureStage,omitempty"`

	// TimedOut is true if the scan was cancelled by its deadline.
	TimedOut bool `json:"timedOut"`

	// DurationMillis is the wall time of the scan.
	DurationMillis int64 `json:"durationMillis"`

	// Error is the failure cause. Not serialized; see ErrorMessage.
	Error error `json:"-"`

	// ErrorMessage is the string form of Error.
	ErrorMessage string `json:"error,omitempty"` //nolint:tagliatelle // error is conventional
}

// NewScanReport creates a report for the given URL with a fresh ID.
func NewScanReport(rawURL string) *ScanReport {
	return &ScanReport{
		ID:        uuid.NewString(),
		URL:       rawURL,
		Host:      NormalizeHost(rawURL),
		ScannedAt: time.Now().UTC(),
	}
}

// NormalizeHost returns the lowercase hostname of rawURL without a leading "www.".
// It returns an empty string if rawURL has no host.
func NormalizeHost(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return ""
	}
	host := strings.ToLower(u.Hostname())
	return strings.TrimPrefix(host, "www.")
}

// Fail records a failure at the given stage.
func (r *ScanReport) Fail(stage string, err error) {
	r.FailureStage = stage
	r.Error = err
	if err != nil {
		r.ErrorMessage = err.Error()
	}
}

// Failed returns true if the scan could not produce a score.
func (r *ScanReport) Failed() bool {
	return r.FailureStage != "" || r.Score == nil
}

// Verified returns true if the score used validator verdicts rather than the fallback.
func (r *ScanReport) Verified() bool {
	return r.Validation != nil && !r.Validation.Fallback
}

// Total returns the total score, or 0 for a failed scan.
func (r *ScanReport) Total() int {
	if r.Score == nil {
		return 0
	}
	return r.Score.Total
}

// Summary returns the compact form stored next to the full report.
func (r *ScanReport) Summary() ScanSummary {
	s := ScanSummary{
		ID:           r.ID,
		URL:          r.URL,
		Host:         r.Host,
		ScannedAt:    r.ScannedAt,
		Quality:      r.Quality,
		Verified:     r.Verified(),
		FailureStage: r.FailureStage,
	}
	if r.Score != nil {
		s.Total = r.Score.Total
		s.GRAAF = r.Score.GRAAF.Total
		s.CRAFT = r.Score.CRAFT.Total
		s.Technical = r.Score.Technical.Total
	}
	return s
}

// ScanSummary is the compact form of a ScanReport used by history and leaderboard listings.
type ScanSummary struct {
	ID           string    `json:"id"`
	URL          string    `json:"url"`
	Host         string    `json:"host"`
	ScannedAt    time.Time `json:"scannedAt"`
	Total        int       `json:"total"`
	GRAAF        int       `json:"graaf"`
	CRAFT        int       `json:"craft"`
	Technical    int       `json:"technical"`
	Quality      Quality   `json:"quality"`
	Verified     bool      `json:"verified"`
	FailureStage string    `json:"failureStage,omitempty"`
}
