package storage

import (
	"errors"
	"fmt"

	"github.com/rohmanhakim/webqa/internal/metadata"
	"github.com/rohmanhakim/webqa/pkg/failure"
)

var ErrRunNotFound = errors.New("run not found")

type StorageErrorCause string

const (
	ErrCauseOpenFailure  StorageErrorCause = "open failed"
	ErrCauseWriteFailure StorageErrorCause = "write failed"
	ErrCauseReadFailure  StorageErrorCause = "read failed"
)

type StorageError struct {
	Message   string
	Retryable bool
	Cause     StorageErrorCause
	Err       error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error: %s: %s", e.Cause, e.Message)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func (e *StorageError) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}

// mapStorageErrorToMetadataCause maps storage-local error semantics
// to the canonical metadata.ErrorCause table.
//
// This mapping is observational only and MUST NOT be used
// to derive control-flow decisions.
func mapStorageErrorToMetadataCause(err *StorageError) metadata.ErrorCause {
	switch err.Cause {
	case ErrCauseOpenFailure, ErrCauseWriteFailure, ErrCauseReadFailure:
		return metadata.CauseStorageFailure
	default:
		return metadata.CauseUnknown
	}
}
