package storage

const schema = `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		session_id TEXT NOT NULL,
		started_at TEXT NOT NULL,
		finished_at TEXT NOT NULL,
		saved_at TEXT NOT NULL,
		total_urls INTEGER NOT NULL DEFAULT 0,
		total_test_cases INTEGER NOT NULL DEFAULT 0,
		passed INTEGER NOT NULL DEFAULT 0,
		failed INTEGER NOT NULL DEFAULT 0,
		pass_rate REAL NOT NULL DEFAULT 0,
		score REAL NOT NULL DEFAULT 0,
		grade TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS test_cases (
		run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		id TEXT NOT NULL,
		test_type TEXT NOT NULL DEFAULT '',
		module TEXT NOT NULL DEFAULT '',
		subject_data TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		preconditions TEXT NOT NULL DEFAULT '',
		steps TEXT NOT NULL DEFAULT '',
		expected_result TEXT NOT NULL DEFAULT '',
		actual_result TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL,
		severity TEXT NOT NULL,
		verdict TEXT NOT NULL,
		comments TEXT NOT NULL DEFAULT '',
		resolution TEXT NOT NULL DEFAULT '',
		recorded_at TEXT NOT NULL,
		PRIMARY KEY (run_id, position)
	);

	CREATE TABLE IF NOT EXISTS probe_results (
		run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		requested_url TEXT NOT NULL,
		url_hash TEXT NOT NULL,
		final_url TEXT NOT NULL DEFAULT '',
		status_code INTEGER NOT NULL DEFAULT 0,
		status_text TEXT NOT NULL DEFAULT '',
		category TEXT NOT NULL,
		latency_ms INTEGER NOT NULL DEFAULT 0,
		error_detail TEXT NOT NULL DEFAULT '',
		probed_at TEXT NOT NULL,
		PRIMARY KEY (run_id, position)
	);

	CREATE INDEX IF NOT EXISTS idx_probe_results_url_hash ON probe_results(url_hash);
`
