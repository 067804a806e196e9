package robots

import (
	"fmt"

	"github.com/rohmanhakim/webqa/internal/metadata"
	"github.com/rohmanhakim/webqa/pkg/failure"
)

type RobotsErrorCause string

const (
	ErrCausePreFetchFailure  RobotsErrorCause = "failed to build request"
	ErrCauseHttpFetchFailure RobotsErrorCause = "failed to fetch robots.txt"
	ErrCauseHttpServerError  RobotsErrorCause = "server error"
	ErrCauseHttpUnexpected   RobotsErrorCause = "unexpected status"
	ErrCauseReadFailure      RobotsErrorCause = "failed to read robots.txt"
)

// RobotsError never stops a crawl. A host whose robots.txt cannot be read
// is treated as having no rules.
type RobotsError struct {
	Message string
	Cause   RobotsErrorCause
}

func (e *RobotsError) Error() string {
	return fmt.Sprintf("robots error: %s: %s", e.Cause, e.Message)
}

func (e *RobotsError) Severity() failure.Severity {
	return failure.SeverityRecoverable
}

// mapRobotsErrorToMetadataCause maps robots-local error semantics
// to the canonical metadata.ErrorCause table.
//
// This mapping is observational only and MUST NOT be used
// to derive control-flow decisions.
func mapRobotsErrorToMetadataCause(err *RobotsError) metadata.ErrorCause {
	switch err.Cause {
	case ErrCauseHttpFetchFailure, ErrCauseHttpServerError, ErrCauseHttpUnexpected, ErrCauseReadFailure:
		return metadata.CauseNetworkFailure
	default:
		return metadata.CauseUnknown
	}
}
