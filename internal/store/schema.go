package store

// Rows are only ever inserted with rowid max+1 and deleted oldest-first, so
// rowids stay contiguous and the newest N rows are those above max(id)-N.
const schemaSQL = `
CREATE TABLE IF NOT EXISTS session_log (
    id            INTEGER PRIMARY KEY,
    minute        INTEGER NOT NULL UNIQUE,
    logged_at_ms  INTEGER NOT NULL,
    family        TEXT NOT NULL DEFAULT '',
    cost          REAL NOT NULL DEFAULT 0,
    tokens        INTEGER NOT NULL DEFAULT 0,
    duration_ms   INTEGER NOT NULL DEFAULT 0,
    project       TEXT NOT NULL DEFAULT '',
    session_id    TEXT NOT NULL DEFAULT ''
);
`
