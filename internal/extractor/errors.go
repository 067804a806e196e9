package extractor

import (
	"fmt"

	"github.com/rohmanhakim/webqa/internal/metadata"
	"github.com/rohmanhakim/webqa/pkg/failure"
)

type ExtractionErrorCause string

const (
	ErrCauseNotHTML ExtractionErrorCause = "not html"
)

type ExtractionError struct {
	Message string
	Cause   ExtractionErrorCause
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extractor error: %s: %s", e.Cause, e.Message)
}

// Severity is always recoverable: a page that cannot be parsed yields no links.
func (e *ExtractionError) Severity() failure.Severity {
	return failure.SeverityRecoverable
}

func mapExtractionErrorToMetadataCause(err *ExtractionError) metadata.ErrorCause {
	switch err.Cause {
	case ErrCauseNotHTML:
		return metadata.CauseContentInvalid
	default:
		return metadata.CauseUnknown
	}
}
