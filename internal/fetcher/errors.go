package fetcher

import (
	"fmt"

	"github.com/rohmanhakim/webqa/internal/metadata"
	"github.com/rohmanhakim/webqa/pkg/failure"
)

type FetchErrorCause string

const (
	ErrCauseInvalidRequest        = "invalid request"
	ErrCauseNetworkFailure        = "network issues"
	ErrCauseReadResponseBodyError = "failed to read response body"
	ErrCauseContentTypeInvalid    = "non-HTML content"
	ErrCauseRequestClientError    = "4xx"
	ErrCauseRequest5xx            = "5xx"
)

// FetchError never aborts a crawl. A page that fails to fetch contributes
// no links and the crawl moves on.
type FetchError struct {
	Message string
	Cause   FetchErrorCause
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetcher error: %s: %s", e.Cause, e.Message)
}

func (e *FetchError) Severity() failure.Severity {
	if e.Cause == ErrCauseInvalidRequest {
		return failure.SeverityFatal
	}
	return failure.SeverityRecoverable
}

// mapFetchErrorToMetadataCause maps fetcher-local error semantics
// to the canonical metadata.ErrorCause table.
//
// This mapping is observational only and MUST NOT be used
// to derive control-flow decisions.
func mapFetchErrorToMetadataCause(err *FetchError) metadata.ErrorCause {
	switch err.Cause {
	case ErrCauseNetworkFailure, ErrCauseReadResponseBodyError:
		return metadata.CauseNetworkFailure
	case ErrCauseContentTypeInvalid:
		return metadata.CauseContentInvalid
	default:
		return metadata.CauseUnknown
	}
}
