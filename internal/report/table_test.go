package report_test

import (
	"bytes"
	"testing"

	"github.com/rohmanhakim/webqa/internal/report"
	"github.com/rohmanhakim/webqa/internal/session"
	"github.com/stretchr/testify/assert"
)

func TestPrintSummary(t *testing.T) {
	var buf bytes.Buffer

	report.PrintSummary(&buf, newSnapshot())
	out := buf.String()

	assert.Contains(t, out, "Total URLs")
	assert.Contains(t, out, "33.3%")
	assert.Contains(t, out, "Client Error")
	// only the 404 row is a Fail; the Not Run button row is not listed
	assert.Contains(t, out, "TC0002")
	assert.NotContains(t, out, "TC0003")
	assert.Contains(t, out, "Status: 404 Not Found")
}

func TestPrintSummary_NoFailures(t *testing.T) {
	var buf bytes.Buffer

	report.PrintSummary(&buf, session.Snapshot{})

	assert.Contains(t, buf.String(), "Weighted score")
	assert.Contains(t, buf.String(), "0.0%")
	assert.NotContains(t, buf.String(), "Actual Result")
}
