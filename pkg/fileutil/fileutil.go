package fileutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rohmanhakim/webqa/pkg/failure"
)

// EnsureDir check if a given directory plus the following path exist, then create one if not
func EnsureDir(dir string, path ...string) failure.ClassifiedError {
	targetPath := append([]string{dir}, path...)

	if err := os.MkdirAll(filepath.Join(targetPath...), 0755); err != nil {
		return &FileError{
			Message:   err.Error(),
			Retryable: false,
			Cause:     ErrCausePathError,
		}
	}
	return nil
}

// TimestampedName builds "<prefix>_<YYYYMMDD_HHMMSS>.<ext>".
func TimestampedName(prefix string, ext string, at time.Time) string {
	return fmt.Sprintf("%s_%s.%s", prefix, at.Format("20060102_150405"), strings.TrimPrefix(ext, "."))
}

// CreateIn creates (or truncates) name inside dir, creating dir first.
// The caller closes the returned file.
func CreateIn(dir string, name string) (*os.File, failure.ClassifiedError) {
	if err := EnsureDir(dir); err != nil {
		return nil, err
	}
	file, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return nil, &FileError{
			Message:   err.Error(),
			Retryable: false,
			Cause:     ErrCauseCreateError,
		}
	}
	return file, nil
}
