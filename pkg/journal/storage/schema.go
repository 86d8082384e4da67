package storage

// SchemaVersion is the current journal schema version.
const SchemaVersion = 1

// Schema creates the journal tables.
const Schema = `
CREATE TABLE IF NOT EXISTS journal_entries (
    id TEXT PRIMARY KEY,
    request_id TEXT,
    route TEXT,
    upstream TEXT NOT NULL,
    method TEXT NOT NULL,
    status TEXT NOT NULL,
    status_code INTEGER,
    duration_ns INTEGER NOT NULL,
    error TEXT,
    created_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_journal_created_at ON journal_entries(created_at);
CREATE INDEX IF NOT EXISTS idx_journal_upstream_method ON journal_entries(upstream, method);
CREATE INDEX IF NOT EXISTS idx_journal_status ON journal_entries(status);

CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at INTEGER NOT NULL
);
`

const (
	insertSchemaVersion = `INSERT OR IGNORE INTO schema_version (version, applied_at) VALUES (?, strftime('%s','now'))`
	getSchemaVersion    = `SELECT MAX(version) FROM schema_version`

	insertEntry = `
INSERT INTO journal_entries
    (id, request_id, route, upstream, method, status, status_code, duration_ns, error, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	deleteBefore = `DELETE FROM journal_entries WHERE created_at < ?`

	deleteOldest = `
DELETE FROM journal_entries WHERE id IN (
    SELECT id FROM journal_entries ORDER BY created_at ASC LIMIT ?
)`
)
