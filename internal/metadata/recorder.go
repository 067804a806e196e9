package metadata

import (
	"log/slog"
	"time"
)

/*
Metadata Collected
- Fetch and probe timestamps
- HTTP status codes and categories
- Crawl depth
- Analyzer failures

Metadata is write-only.
No component may read metadata to influence crawl, probe or ledger decisions.
*/

type MetadataSink interface {
	RecordError(
		observedAt time.Time,
		packageName string,
		action string,
		cause ErrorCause,
		details string,
		attrs []Attribute,
	)

	RecordFetch(
		fetchUrl string,
		httpStatus int,
		duration time.Duration,
		contentType string,
		crawlDepth int,
	)

	RecordProbe(
		probeUrl string,
		httpStatus int,
		category string,
		duration time.Duration,
	)
}

type CrawlFinalizer interface {
	RecordFinalCrawlStats(
		totalPages int,
		totalErrors int,
		acceptedLinks int,
		duration time.Duration,
	)
}

type RunFinalizer interface {
	RecordFinalRunStats(stats RunStats, duration time.Duration)
}

// Recorder writes events as structured slog records.
// Events from one worker are logged in the order received; there is no
// global ordering across workers.
type Recorder struct {
	logger *slog.Logger
}

func NewRecorder(logger *slog.Logger, sessionID string) *Recorder {
	if sessionID != "" {
		logger = logger.With(string(AttrSession), sessionID)
	}
	return &Recorder{logger: logger}
}

func (r *Recorder) RecordError(
	observedAt time.Time,
	packageName string,
	action string,
	cause ErrorCause,
	details string,
	attrs []Attribute,
) {
	args := []any{
		"observed_at", observedAt,
		"package", packageName,
		"action", action,
		"cause", cause.String(),
		"err", details,
	}
	r.logger.Warn("error", append(args, flatten(attrs)...)...)
}

func (r *Recorder) RecordFetch(
	fetchUrl string,
	httpStatus int,
	duration time.Duration,
	contentType string,
	crawlDepth int,
) {
	r.logger.Debug("fetch",
		"url", fetchUrl,
		"status", httpStatus,
		"duration", duration,
		"content_type", contentType,
		"depth", crawlDepth,
	)
}

func (r *Recorder) RecordProbe(
	probeUrl string,
	httpStatus int,
	category string,
	duration time.Duration,
) {
	r.logger.Debug("probe",
		"url", probeUrl,
		"status", httpStatus,
		"category", category,
		"duration", duration,
	)
}

// RecordFinalCrawlStats is called exactly once per crawl, after the frontier
// is exhausted.
func (r *Recorder) RecordFinalCrawlStats(
	totalPages int,
	totalErrors int,
	acceptedLinks int,
	duration time.Duration,
) {
	r.logger.Info("crawl finished",
		"pages", totalPages,
		"errors", totalErrors,
		"links", acceptedLinks,
		"duration_ms", duration.Milliseconds(),
	)
}

// RecordFinalRunStats is called exactly once per session run.
func (r *Recorder) RecordFinalRunStats(stats RunStats, duration time.Duration) {
	r.logger.Info("run finished",
		"urls", stats.TotalURLs,
		"test_cases", stats.TotalTestCases,
		"passed", stats.Passed,
		"failed", stats.Failed,
		"transport_errors", stats.TransportErrs,
		"analyzer_errors", stats.AnalyzerErrs,
		"duration_ms", duration.Milliseconds(),
	)
}

func flatten(attrs []Attribute) []any {
	out := make([]any, 0, len(attrs)*2)
	for _, a := range attrs {
		out = append(out, string(a.Key), a.Value)
	}
	return out
}

// NoopSink implements every metadata interface and does nothing.
// Callers decide whether to inject a Recorder or a NoopSink.
type NoopSink struct{}

func (n *NoopSink) RecordError(
	observedAt time.Time,
	packageName string,
	action string,
	cause ErrorCause,
	details string,
	attrs []Attribute,
) {
}

func (n *NoopSink) RecordFetch(
	fetchUrl string,
	httpStatus int,
	duration time.Duration,
	contentType string,
	crawlDepth int,
) {
}

func (n *NoopSink) RecordProbe(
	probeUrl string,
	httpStatus int,
	category string,
	duration time.Duration,
) {
}

func (n *NoopSink) RecordFinalCrawlStats(totalPages int, totalErrors int, acceptedLinks int, duration time.Duration) {
}

func (n *NoopSink) RecordFinalRunStats(stats RunStats, duration time.Duration) {}
