package report

import (
	"io"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/rohmanhakim/webqa/internal/ledger"
	"github.com/rohmanhakim/webqa/internal/session"
)

// TestCaseRow is one CSV line. The first thirteen columns are the classic
// QA spreadsheet layout.
type TestCaseRow struct {
	ID             string `csv:"Test ID"`
	Module         string `csv:"Module"`
	SubjectData    string `csv:"Test Links/Data"`
	Description    string `csv:"Test Case Description"`
	Preconditions  string `csv:"Pre-Conditions"`
	Steps          string `csv:"Test Steps"`
	ExpectedResult string `csv:"Expected Result"`
	ActualResult   string `csv:"Actual Result"`
	Status         string `csv:"Status"`
	Severity       string `csv:"Severity"`
	Verdict        string `csv:"Case Pass/Fail"`
	Comments       string `csv:"Comments/Bug ID"`
	Resolution     string `csv:"Resolutions"`
	TestType       string `csv:"Test Type"`
	Timestamp      string `csv:"Timestamp"`
}

type CSVExporter struct {
	now func() time.Time
}

func (e *CSVExporter) Extension() string {
	return "csv"
}

func (e *CSVExporter) Export(w io.Writer, snapshot session.Snapshot) error {
	rows := make([]TestCaseRow, 0, len(snapshot.TestCases))
	for _, tc := range snapshot.TestCases {
		rows = append(rows, toRow(tc))
	}
	if err := gocsv.Marshal(&rows, w); err != nil {
		return &ReportError{Message: err.Error(), Cause: ErrCauseEncodeFailure}
	}
	return nil
}

func toRow(tc ledger.TestCase) TestCaseRow {
	return TestCaseRow{
		ID:             tc.ID,
		Module:         tc.Module,
		SubjectData:    tc.SubjectData,
		Description:    tc.Description,
		Preconditions:  tc.Preconditions,
		Steps:          tc.Steps,
		ExpectedResult: tc.ExpectedResult,
		ActualResult:   tc.ActualResult,
		Status:         string(tc.Status),
		Severity:       string(tc.Severity),
		Verdict:        string(tc.Verdict),
		Comments:       tc.Comments,
		Resolution:     tc.Resolution,
		TestType:       tc.TestType,
		Timestamp:      tc.Timestamp.Format(timestampLayout),
	}
}
