package index

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const schema = `
PRAGMA journal_mode = WAL;
PRAGMA synchronous = NORMAL;
PRAGMA cache_size = -64000;
PRAGMA busy_timeout = 5000;

CREATE TABLE IF NOT EXISTS exports (
    export_key   TEXT PRIMARY KEY,
    file_path    TEXT NOT NULL,
    title        TEXT NOT NULL DEFAULT '',
    participants TEXT NOT NULL DEFAULT '[]',
    created_at   TEXT NOT NULL DEFAULT '',
    updated_at   TEXT NOT NULL DEFAULT '',
    summary      TEXT NOT NULL DEFAULT '',
    unresolved   INTEGER NOT NULL DEFAULT 0,
    mtime        INTEGER NOT NULL DEFAULT 0,
    size         INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS messages (
    export_key      TEXT NOT NULL,
    idx             INTEGER NOT NULL,
    ts              TEXT NOT NULL DEFAULT '',
    raw_ts          TEXT NOT NULL,
    sender          TEXT NOT NULL,
    is_notification INTEGER NOT NULL DEFAULT 0,
    body            TEXT NOT NULL,
    line_number     INTEGER NOT NULL DEFAULT 0,
    byte_offset     INTEGER NOT NULL DEFAULT 0,
    date_only       TEXT NOT NULL DEFAULT '',
    year            INTEGER NOT NULL DEFAULT 0,
    month           TEXT NOT NULL DEFAULT '',
    day_name        TEXT NOT NULL DEFAULT '',
    hour            INTEGER NOT NULL DEFAULT -1,
    period          TEXT NOT NULL DEFAULT '',
    PRIMARY KEY (export_key, idx)
);

CREATE INDEX IF NOT EXISTS messages_sender ON messages (sender);
CREATE INDEX IF NOT EXISTS messages_date ON messages (date_only);

CREATE VIRTUAL TABLE IF NOT EXISTS messages_fts USING fts5(
    body,
    content=messages,
    content_rowid=rowid,
    tokenize='unicode61'
);

-- triggers to keep FTS in sync
CREATE TRIGGER IF NOT EXISTS messages_ai AFTER INSERT ON messages BEGIN
    INSERT INTO messages_fts(rowid, body) VALUES (new.rowid, new.body);
END;

CREATE TRIGGER IF NOT EXISTS messages_ad AFTER DELETE ON messages BEGIN
    INSERT INTO messages_fts(messages_fts, rowid, body) VALUES('delete', old.rowid, old.body);
END;

CREATE TRIGGER IF NOT EXISTS messages_au AFTER UPDATE ON messages BEGIN
    INSERT INTO messages_fts(messages_fts, rowid, body) VALUES('delete', old.rowid, old.body);
    INSERT INTO messages_fts(rowid, body) VALUES (new.rowid, new.body);
END;

CREATE TABLE IF NOT EXISTS meta (key TEXT PRIMARY KEY, value TEXT);
`

type DB struct {
	db *sql.DB
}

// OpenDB opens or creates the index at dbPath. ":memory:" is accepted for a
// throwaway index.
func OpenDB(dbPath string) (*DB, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if dbPath == ":memory:" {
		// every pooled connection would otherwise get its own empty database
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	d := &DB{db: db}
	if err := d.resetIfChanged("schema_version", schemaVersion); err != nil {
		db.Close()
		return nil, fmt.Errorf("schema version: %w", err)
	}
	return d, nil
}

// schemaVersion should be bumped whenever message parsing logic changes
// to force a full re-index.
const schemaVersion = "1"

// resetIfChanged stores value under key in meta. When the stored value
// differs, every export is marked stale so the next run re-parses it.
func (d *DB) resetIfChanged(key, value string) error {
	var cur string
	err := d.db.QueryRow("SELECT value FROM meta WHERE key = ?", key).Scan(&cur)
	if err == nil && cur == value {
		return nil
	}
	if err != nil && err != sql.ErrNoRows {
		return err
	}
	if _, err := d.db.Exec("UPDATE exports SET mtime = 0, size = 0"); err != nil {
		return err
	}
	_, err = d.db.Exec("INSERT OR REPLACE INTO meta (key, value) VALUES (?, ?)", key, value)
	return err
}

func (d *DB) Close() error {
	return d.db.Close()
}

func (d *DB) Raw() *sql.DB {
	return d.db
}

type ExportInfo struct {
	Mtime int64
	Size  int64
}

func (d *DB) GetExportInfo(exportKey string) (*ExportInfo, error) {
	var info ExportInfo
	err := d.db.QueryRow(
		"SELECT mtime, size FROM exports WHERE export_key = ?",
		exportKey,
	).Scan(&info.Mtime, &info.Size)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &info, nil
}

func (d *DB) AllExportKeys() (map[string]struct{}, error) {
	rows, err := d.db.Query("SELECT export_key FROM exports")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	keys := make(map[string]struct{})
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys[k] = struct{}{}
	}
	return keys, rows.Err()
}

func (d *DB) DeleteExport(exportKey string) error {
	tx, err := d.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM messages WHERE export_key = ?", exportKey); err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM exports WHERE export_key = ?", exportKey); err != nil {
		return err
	}
	return tx.Commit()
}

func (d *DB) ExportCount() (int, error) {
	var n int
	err := d.db.QueryRow("SELECT COUNT(*) FROM exports").Scan(&n)
	return n, err
}

func (d *DB) MessageCount() (int, error) {
	var n int
	err := d.db.QueryRow("SELECT COUNT(*) FROM messages").Scan(&n)
	return n, err
}

type ExportRow struct {
	ExportKey    string   `json:"export_key"`
	FilePath     string   `json:"file_path"`
	Title        string   `json:"title"`
	Participants []string `json:"participants"`
	CreatedAt    string   `json:"created_at"`
	UpdatedAt    string   `json:"updated_at"`
	Summary      string   `json:"summary"`
	Unresolved   int      `json:"unresolved"`
	MessageCount int      `json:"message_count"`
}

const exportColumns = `e.export_key, e.file_path, e.title, e.participants, e.created_at, e.updated_at, e.summary, e.unresolved,
	(SELECT COUNT(*) FROM messages m WHERE m.export_key = e.export_key)`

type scanner interface {
	Scan(dest ...any) error
}

func scanExport(s scanner) (ExportRow, error) {
	var e ExportRow
	var participants string
	err := s.Scan(&e.ExportKey, &e.FilePath, &e.Title, &participants, &e.CreatedAt, &e.UpdatedAt, &e.Summary, &e.Unresolved, &e.MessageCount)
	if err != nil {
		return e, err
	}
	if err := json.Unmarshal([]byte(participants), &e.Participants); err != nil {
		return e, fmt.Errorf("participants of %s: %w", e.ExportKey, err)
	}
	return e, nil
}

func (d *DB) GetExportByKey(exportKey string) (*ExportRow, error) {
	e, err := scanExport(d.db.QueryRow(
		"SELECT "+exportColumns+" FROM exports e WHERE e.export_key = ?",
		exportKey,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// AllExports lists exports, most recently active first.
func (d *DB) AllExports() ([]ExportRow, error) {
	rows, err := d.db.Query("SELECT " + exportColumns + " FROM exports e ORDER BY e.updated_at DESC, e.export_key")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var exports []ExportRow
	for rows.Next() {
		e, err := scanExport(rows)
		if err != nil {
			return nil, err
		}
		exports = append(exports, e)
	}
	return exports, rows.Err()
}

type MessageRow struct {
	ExportKey      string `json:"export_key"`
	Idx            int    `json:"index"`
	Ts             string `json:"timestamp"`
	RawTs          string `json:"raw_timestamp"`
	Sender         string `json:"sender"`
	IsNotification bool   `json:"is_notification"`
	Body           string `json:"body"`
	LineNumber     int    `json:"line"`
	Offset         int    `json:"offset"`
}

const messageColumns = "export_key, idx, ts, raw_ts, sender, is_notification, body, line_number, byte_offset"

func scanMessages(rows *sql.Rows) ([]MessageRow, error) {
	var msgs []MessageRow
	for rows.Next() {
		var m MessageRow
		if err := rows.Scan(&m.ExportKey, &m.Idx, &m.Ts, &m.RawTs, &m.Sender, &m.IsNotification, &m.Body, &m.LineNumber, &m.Offset); err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

func (d *DB) GetMessages(exportKey string) ([]MessageRow, error) {
	return d.GetMessagesPage(exportKey, -1, 0)
}

// GetMessagesPage returns up to limit messages starting at offset, in
// document order. A negative limit means no limit.
func (d *DB) GetMessagesPage(exportKey string, limit, offset int) ([]MessageRow, error) {
	rows, err := d.db.Query(
		"SELECT "+messageColumns+" FROM messages WHERE export_key = ? ORDER BY idx LIMIT ? OFFSET ?",
		exportKey, limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMessages(rows)
}

// GetMessagesWindow returns a window of messages around a hit message.
// It only loads the necessary rows from the database instead of all messages.
// startPos is the number of messages before the returned window.
// totalCount is the total number of messages in the export.
func (d *DB) GetMessagesWindow(exportKey string, hitIdx, context int) (msgs []MessageRow, localHit int, startPos int, totalCount int, err error) {
	err = d.db.QueryRow(
		"SELECT COUNT(*) FROM messages WHERE export_key = ?", exportKey,
	).Scan(&totalCount)
	if err != nil {
		return nil, -1, 0, 0, err
	}

	// idx is dense and 0-based, so the position of a hit is its idx
	hitPos := -1
	if hitIdx >= 0 && hitIdx < totalCount {
		hitPos = hitIdx
	}

	startPos = 0
	limit := totalCount
	if hitPos >= 0 {
		startPos = max(hitPos-context, 0)
		endPos := min(hitPos+context+1, totalCount)
		limit = endPos - startPos
	}

	msgs, err = d.GetMessagesPage(exportKey, limit, startPos)
	if err != nil {
		return nil, -1, 0, 0, err
	}

	localHit = -1
	for i, m := range msgs {
		if m.Idx == hitIdx {
			localHit = i
		}
	}
	return msgs, localHit, startPos, totalCount, nil
}
