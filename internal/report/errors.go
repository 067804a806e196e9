package report

import (
	"fmt"

	"github.com/rohmanhakim/webqa/pkg/failure"
)

type ReportErrorCause string

const (
	ErrCauseUnsupportedFormat ReportErrorCause = "unsupported format"
	ErrCauseEncodeFailure     ReportErrorCause = "encode failed"
	ErrCauseWriteFailure      ReportErrorCause = "write failed"
)

type ReportError struct {
	Message string
	Cause   ReportErrorCause
}

func (e *ReportError) Error() string {
	return fmt.Sprintf("report error: %s: %s", e.Cause, e.Message)
}

func (e *ReportError) Severity() failure.Severity {
	return failure.SeverityFatal
}
