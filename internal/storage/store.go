package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rohmanhakim/webqa/internal/ledger"
	"github.com/rohmanhakim/webqa/internal/metadata"
	"github.com/rohmanhakim/webqa/internal/session"
	"github.com/rohmanhakim/webqa/pkg/hashutil"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

/*
Responsibilities
- Persist finished session runs (header, test cases, probe results)
- Read them back for history and comparison

Each SaveRun creates a new run row; a session re-run is a new run.
Writes for one run are atomic.
*/

// Fixed-width UTC timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

type RunStore struct {
	metadataSink metadata.MetadataSink
	path         string
	db           *sql.DB
	now          func() time.Time
}

// NewRunStore creates a store for the SQLite file at path.
// Use ":memory:" for an in-memory database.
func NewRunStore(path string, metadataSink metadata.MetadataSink) *RunStore {
	return &RunStore{
		metadataSink: metadataSink,
		path:         path,
		now:          time.Now,
	}
}

// Open opens the database connection and creates the schema if needed.
func (s *RunStore) Open(ctx context.Context) error {
	conn, err := sql.Open("sqlite3", s.path)
	if err != nil {
		return s.fail("RunStore.Open", ErrCauseOpenFailure, err)
	}

	// SQLite only supports one writer at a time
	conn.SetMaxOpenConns(1)

	pragmas := []string{"PRAGMA busy_timeout = 5000", "PRAGMA foreign_keys = ON"}
	if s.path != ":memory:" {
		pragmas = append(pragmas, "PRAGMA journal_mode = WAL")
	}
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return s.fail("RunStore.Open", ErrCauseOpenFailure, err)
	}
	for _, pragma := range pragmas {
		if _, err := conn.ExecContext(ctx, pragma); err != nil {
			conn.Close()
			return s.fail("RunStore.Open", ErrCauseOpenFailure, fmt.Errorf("%s: %w", pragma, err))
		}
	}
	if _, err := conn.ExecContext(ctx, schema); err != nil {
		conn.Close()
		return s.fail("RunStore.Open", ErrCauseOpenFailure, fmt.Errorf("create schema: %w", err))
	}

	s.db = conn
	return nil
}

func (s *RunStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveRun stores snapshot as a new run and returns the run id.
func (s *RunStore) SaveRun(ctx context.Context, snapshot session.Snapshot) (string, error) {
	runID := uuid.NewString()
	if err := s.saveRun(ctx, runID, snapshot); err != nil {
		return "", s.fail("RunStore.SaveRun", ErrCauseWriteFailure, err)
	}
	return runID, nil
}

func (s *RunStore) saveRun(ctx context.Context, runID string, snapshot session.Snapshot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	summary := snapshot.Summary
	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, session_id, started_at, finished_at, saved_at, total_urls,
			total_test_cases, passed, failed, pass_rate, score, grade)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, runID, snapshot.SessionID,
		snapshot.StartedAt.UTC().Format(timeLayout), snapshot.FinishedAt.UTC().Format(timeLayout),
		s.now().UTC().Format(timeLayout), summary.TotalURLs, summary.Statistics.Total,
		summary.Statistics.Passed, summary.Statistics.Failed, summary.Statistics.PassRate,
		summary.WeightedScore.Score, string(summary.WeightedScore.Grade))
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for i, tc := range snapshot.TestCases {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO test_cases (run_id, position, id, test_type, module, subject_data, description,
				preconditions, steps, expected_result, actual_result, status, severity, verdict,
				comments, resolution, recorded_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, runID, i, tc.ID, tc.TestType, tc.Module, tc.SubjectData, tc.Description,
			tc.Preconditions, tc.Steps, tc.ExpectedResult, tc.ActualResult, string(tc.Status),
			string(tc.Severity), string(tc.Verdict), tc.Comments, tc.Resolution,
			tc.Timestamp.UTC().Format(timeLayout))
		if err != nil {
			return fmt.Errorf("insert test case %s: %w", tc.ID, err)
		}
	}

	for i, r := range snapshot.ProbeResults {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO probe_results (run_id, position, requested_url, url_hash, final_url,
				status_code, status_text, category, latency_ms, error_detail, probed_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, runID, i, r.RequestedURL, hashutil.URLHash(r.RequestedURL), r.FinalURL,
			r.StatusCode, r.StatusText, string(r.Category), r.LatencyMs, r.ErrorDetail,
			r.Timestamp.UTC().Format(timeLayout))
		if err != nil {
			return fmt.Errorf("insert probe result %s: %w", r.RequestedURL, err)
		}
	}

	return tx.Commit()
}

// FindRun returns the header of runID, or ErrRunNotFound.
func (s *RunStore) FindRun(ctx context.Context, runID string) (RunRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, session_id, started_at, finished_at, saved_at, total_urls, total_test_cases,
			passed, failed, pass_rate, score, grade
		FROM runs
		WHERE id = ?
	`, runID)
	record, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return RunRecord{}, ErrRunNotFound
	}
	if err != nil {
		return RunRecord{}, s.fail("RunStore.FindRun", ErrCauseReadFailure, err)
	}
	return record, nil
}

// ListRuns returns stored runs, newest first. limit <= 0 returns all.
func (s *RunStore) ListRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	query := `
		SELECT id, session_id, started_at, finished_at, saved_at, total_urls, total_test_cases,
			passed, failed, pass_rate, score, grade
		FROM runs
		ORDER BY saved_at DESC, id`
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, s.fail("RunStore.ListRuns", ErrCauseReadFailure, err)
	}
	defer rows.Close()

	var runs []RunRecord
	for rows.Next() {
		record, err := scanRun(rows)
		if err != nil {
			return nil, s.fail("RunStore.ListRuns", ErrCauseReadFailure, err)
		}
		runs = append(runs, record)
	}
	if err := rows.Err(); err != nil {
		return nil, s.fail("RunStore.ListRuns", ErrCauseReadFailure, err)
	}
	return runs, nil
}

// LoadTestCases returns the test cases of runID in recording order.
func (s *RunStore) LoadTestCases(ctx context.Context, runID string) ([]ledger.TestCase, error) {
	if _, err := s.FindRun(ctx, runID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, test_type, module, subject_data, description, preconditions, steps,
			expected_result, actual_result, status, severity, comments, resolution, recorded_at
		FROM test_cases
		WHERE run_id = ?
		ORDER BY position
	`, runID)
	if err != nil {
		return nil, s.fail("RunStore.LoadTestCases", ErrCauseReadFailure, err)
	}
	defer rows.Close()

	cases := []ledger.TestCase{}
	for rows.Next() {
		var tc ledger.TestCase
		var status, severity, recordedAt string
		if err := rows.Scan(&tc.ID, &tc.TestType, &tc.Module, &tc.SubjectData, &tc.Description,
			&tc.Preconditions, &tc.Steps, &tc.ExpectedResult, &tc.ActualResult,
			&status, &severity, &tc.Comments, &tc.Resolution, &recordedAt); err != nil {
			return nil, s.fail("RunStore.LoadTestCases", ErrCauseReadFailure, err)
		}
		tc.Status = ledger.Status(status)
		if parsed, ok := ledger.ParseStatus(status); ok {
			tc.Status = parsed
		}
		tc.Severity = ledger.Severity(severity)
		if parsed, ok := ledger.ParseSeverity(severity); ok {
			tc.Severity = parsed
		}
		tc.Verdict = tc.Status.Verdict()
		if tc.Timestamp, err = parseTime(recordedAt, "recorded_at"); err != nil {
			return nil, s.fail("RunStore.LoadTestCases", ErrCauseReadFailure, err)
		}
		cases = append(cases, tc)
	}
	if err := rows.Err(); err != nil {
		return nil, s.fail("RunStore.LoadTestCases", ErrCauseReadFailure, err)
	}
	return cases, nil
}

// URLHistory returns every stored probe of rawURL, newest first. Spellings
// that share a canonical key share a history.
func (s *RunStore) URLHistory(ctx context.Context, rawURL string) ([]URLObservation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, requested_url, status_code, category, latency_ms, error_detail, probed_at
		FROM probe_results
		WHERE url_hash = ?
		ORDER BY probed_at DESC
	`, hashutil.URLHash(rawURL))
	if err != nil {
		return nil, s.fail("RunStore.URLHistory", ErrCauseReadFailure, err)
	}
	defer rows.Close()

	var history []URLObservation
	for rows.Next() {
		var o URLObservation
		var probedAt string
		if err := rows.Scan(&o.RunID, &o.URL, &o.StatusCode, &o.Category, &o.LatencyMs,
			&o.ErrorDetail, &probedAt); err != nil {
			return nil, s.fail("RunStore.URLHistory", ErrCauseReadFailure, err)
		}
		if o.ProbedAt, err = parseTime(probedAt, "probed_at"); err != nil {
			return nil, s.fail("RunStore.URLHistory", ErrCauseReadFailure, err)
		}
		history = append(history, o)
	}
	if err := rows.Err(); err != nil {
		return nil, s.fail("RunStore.URLHistory", ErrCauseReadFailure, err)
	}
	return history, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (RunRecord, error) {
	var r RunRecord
	var startedAt, finishedAt, savedAt string
	if err := row.Scan(&r.ID, &r.SessionID, &startedAt, &finishedAt, &savedAt, &r.TotalURLs,
		&r.TotalTestCases, &r.Passed, &r.Failed, &r.PassRate, &r.Score, &r.Grade); err != nil {
		return RunRecord{}, err
	}
	var err error
	if r.StartedAt, err = parseTime(startedAt, "started_at"); err != nil {
		return RunRecord{}, err
	}
	if r.FinishedAt, err = parseTime(finishedAt, "finished_at"); err != nil {
		return RunRecord{}, err
	}
	if r.SavedAt, err = parseTime(savedAt, "saved_at"); err != nil {
		return RunRecord{}, err
	}
	return r, nil
}

// parseTime parses a timestamp column, naming the field on failure.
func parseTime(value, fieldName string) (time.Time, error) {
	t, err := time.Parse(timeLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse %s: %w", fieldName, err)
	}
	return t, nil
}

// fail wraps err as a StorageError and records it.
func (s *RunStore) fail(action string, cause StorageErrorCause, err error) error {
	storageErr := &StorageError{
		Message:   err.Error(),
		Retryable: false,
		Cause:     cause,
		Err:       err,
	}
	s.metadataSink.RecordError(
		time.Now(),
		"storage",
		action,
		mapStorageErrorToMetadataCause(storageErr),
		err.Error(),
		[]metadata.Attribute{
			metadata.NewAttr(metadata.AttrWritePath, s.path),
		},
	)
	return storageErr
}
