package report

import (
	"errors"
	"io"
	"strings"
	"time"

	"github.com/rohmanhakim/webqa/internal/session"
	"github.com/rohmanhakim/webqa/pkg/fileutil"
)

/*
Responsibilities
- Serialize a session snapshot as JSON or CSV
- Render a terminal summary
- Write report files under the output directory

Reports are read-only views: nothing here changes a session.
*/

const filePrefix = "webqa_report"

type Exporter interface {
	Export(w io.Writer, snapshot session.Snapshot) error
	// Extension is the file extension without the dot.
	Extension() string
}

// NewExporter returns the exporter for format ("json" or "csv").
// now stamps the generated document; nil means time.Now.
func NewExporter(format string, now func() time.Time) (Exporter, error) {
	if now == nil {
		now = time.Now
	}
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json":
		return &JSONExporter{now: now}, nil
	case "csv":
		return &CSVExporter{now: now}, nil
	default:
		return nil, &ReportError{Message: format, Cause: ErrCauseUnsupportedFormat}
	}
}

// WriteFile exports snapshot into a new timestamped file under outputDir
// and returns its path.
func WriteFile(outputDir string, exporter Exporter, snapshot session.Snapshot, at time.Time) (string, error) {
	name := fileutil.TimestampedName(filePrefix, exporter.Extension(), at)
	file, ferr := fileutil.CreateIn(outputDir, name)
	if ferr != nil {
		return "", &ReportError{Message: ferr.Error(), Cause: ErrCauseWriteFailure}
	}

	exportErr := exporter.Export(file, snapshot)
	closeErr := file.Close()
	if err := errors.Join(exportErr, closeErr); err != nil {
		return "", err
	}
	return file.Name(), nil
}
