// Package store provides the SQLite-backed session log.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/theirongolddev/burnline/internal/model"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// DefaultMaxRecords bounds the session log when no limit is configured.
const DefaultMaxRecords = 5000

// ErrSkipped is returned by Append when a record already exists for the
// same wall-clock minute.
var ErrSkipped = errors.New("store: record for this minute already logged")

// SessionLog is a size-bounded log of statusline invocations, at most one
// per minute. Several processes may append concurrently.
type SessionLog struct {
	db  *sql.DB
	max int
}

// Open opens or creates the session log at dbPath. A file that is not a
// usable database is removed and recreated once.
func Open(dbPath string, maxRecords int) (*SessionLog, error) {
	if maxRecords <= 0 {
		maxRecords = DefaultMaxRecords
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o750); err != nil {
		return nil, fmt.Errorf("creating log dir: %w", err)
	}

	db, err := openDB(dbPath)
	if err != nil {
		if !corrupt(err) {
			return nil, err
		}
		removeDB(dbPath)
		if db, err = openDB(dbPath); err != nil {
			return nil, err
		}
	}
	return &SessionLog{db: db, max: maxRecords}, nil
}

func openDB(dbPath string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dbPath+"?_pragma=busy_timeout(2000)&_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_txlock=immediate")
	if err != nil {
		return nil, fmt.Errorf("opening session log: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return db, nil
}

// corrupt reports whether err means the file is not a usable database.
// Busy and permission errors leave the file alone.
func corrupt(err error) bool {
	var serr *sqlite.Error
	if !errors.As(err, &serr) {
		return false
	}
	switch serr.Code() & 0xff {
	case sqlite3.SQLITE_NOTADB, sqlite3.SQLITE_CORRUPT:
		return true
	}
	return false
}

func removeDB(dbPath string) {
	for _, suffix := range []string{"", "-wal", "-shm"} {
		_ = os.Remove(dbPath + suffix)
	}
}

// Close closes the database.
func (l *SessionLog) Close() error {
	return l.db.Close()
}

// Max returns the retention limit.
func (l *SessionLog) Max() int { return l.max }

// Append logs rec unless a record for the same minute exists, then drops
// the oldest records beyond the retention limit.
func (l *SessionLog) Append(rec model.SessionRecord) error {
	tx, err := l.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.Exec(`INSERT OR IGNORE INTO session_log
		(id, minute, logged_at_ms, family, cost, tokens, duration_ms, project, session_id)
		VALUES ((SELECT COALESCE(MAX(id), 0) + 1 FROM session_log), ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.Time.Unix()/60, rec.Time.UnixMilli(), string(rec.Family), rec.Cost,
		rec.Tokens, rec.DurationMS, rec.Project, rec.SessionID,
	)
	if err != nil {
		return fmt.Errorf("inserting record: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrSkipped
	}

	if _, err := tx.Exec(`DELETE FROM session_log
		WHERE id <= (SELECT MAX(id) FROM session_log) - ?`, l.max); err != nil {
		return fmt.Errorf("trimming log: %w", err)
	}
	return tx.Commit()
}

// Records returns every logged record, oldest first.
func (l *SessionLog) Records() ([]model.SessionRecord, error) {
	rows, err := l.db.Query(`SELECT logged_at_ms, family, cost, tokens, duration_ms, project, session_id
		FROM session_log ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []model.SessionRecord
	for rows.Next() {
		var (
			r      model.SessionRecord
			ms     int64
			family string
		)
		if err := rows.Scan(&ms, &family, &r.Cost, &r.Tokens, &r.DurationMS, &r.Project, &r.SessionID); err != nil {
			return nil, err
		}
		r.Time = time.UnixMilli(ms)
		r.Family = model.Family(family)
		out = append(out, r)
	}
	return out, rows.Err()
}

// Count returns the number of retained records.
func (l *SessionLog) Count() (int, error) {
	var n int
	err := l.db.QueryRow("SELECT COUNT(*) FROM session_log").Scan(&n)
	return n, err
}
