package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/Zuo-Peng/wastats/internal/parse"
	_ "modernc.org/sqlite"
)

// ErrNoData is returned by Load when nothing has been imported yet.
var ErrNoData = errors.New("no data: run 'wastats import' first")

const schema = `
PRAGMA journal_mode = WAL;
PRAGMA synchronous = NORMAL;
PRAGMA busy_timeout = 5000;

CREATE TABLE IF NOT EXISTS messages (
    id              INTEGER PRIMARY KEY AUTOINCREMENT,
    timestamp       TEXT NOT NULL,
    sender          TEXT NOT NULL,
    message_content TEXT NOT NULL,
    has_media       INTEGER NOT NULL DEFAULT 0,
    is_poll         INTEGER NOT NULL DEFAULT 0,
    line_number     INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_messages_sender ON messages(sender);

CREATE VIRTUAL TABLE IF NOT EXISTS messages_fts USING fts5(
    message_content,
    content=messages,
    content_rowid=id,
    tokenize='unicode61'
);

-- triggers to keep FTS in sync
CREATE TRIGGER IF NOT EXISTS messages_ai AFTER INSERT ON messages BEGIN
    INSERT INTO messages_fts(rowid, message_content) VALUES (new.id, new.message_content);
END;

CREATE TRIGGER IF NOT EXISTS messages_ad AFTER DELETE ON messages BEGIN
    INSERT INTO messages_fts(messages_fts, rowid, message_content) VALUES('delete', old.id, old.message_content);
END;

CREATE TABLE IF NOT EXISTS meta (key TEXT PRIMARY KEY, value TEXT);
`

// schemaVersion should be bumped whenever parsing logic changes so that the
// next import replaces the stored records even if the transcript is unchanged.
const schemaVersion = "2"

const selectColumns = "SELECT id, timestamp, sender, message_content, has_media, is_poll, line_number FROM messages"

type DB struct {
	db *sql.DB
}

// Open opens or creates the database at dbPath. Stored timestamps are naive
// wall-clock text and load back as UTC.
func Open(dbPath string) (*DB, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	d := &DB{db: db}
	d.migrateSchemaVersion()

	return d, nil
}

func (d *DB) migrateSchemaVersion() {
	ver, _ := getMeta(context.Background(), d.db, "schema_version")
	if ver != schemaVersion {
		// forget the source so the next import rewrites everything
		d.db.Exec("DELETE FROM meta WHERE key LIKE 'source_%'")
		d.db.Exec("INSERT OR REPLACE INTO meta (key, value) VALUES ('schema_version', ?)", schemaVersion)
	}
}

func (d *DB) Close() error {
	return d.db.Close()
}

func (d *DB) Raw() *sql.DB {
	return d.db
}

// SourceInfo describes the transcript the stored records came from.
type SourceInfo struct {
	Key        string
	Mtime      int64
	Size       int64
	ImportID   string
	ImportedAt string
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func getMeta(ctx context.Context, q execer, key string) (string, error) {
	var v string
	err := q.QueryRowContext(ctx, "SELECT value FROM meta WHERE key = ?", key).Scan(&v)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return v, err
}

func setMeta(ctx context.Context, q execer, key, value string) error {
	_, err := q.ExecContext(ctx, "INSERT OR REPLACE INTO meta (key, value) VALUES (?, ?)", key, value)
	return err
}

// Source returns the recorded source of the stored records, or nil if none.
func (d *DB) Source(ctx context.Context) (*SourceInfo, error) {
	key, err := getMeta(ctx, d.db, "source_key")
	if err != nil {
		return nil, err
	}
	if key == "" {
		return nil, nil
	}

	info := &SourceInfo{Key: key}
	mtime, _ := getMeta(ctx, d.db, "source_mtime")
	size, _ := getMeta(ctx, d.db, "source_size")
	info.Mtime, _ = strconv.ParseInt(mtime, 10, 64)
	info.Size, _ = strconv.ParseInt(size, 10, 64)
	info.ImportID, _ = getMeta(ctx, d.db, "source_import_id")
	info.ImportedAt, _ = getMeta(ctx, d.db, "source_imported_at")
	return info, nil
}

// NeedsImport reports whether src differs from what was last imported.
func (d *DB) NeedsImport(ctx context.Context, src SourceInfo) (bool, error) {
	cur, err := d.Source(ctx)
	if err != nil {
		return false, err
	}
	if cur == nil {
		return true, nil
	}
	return cur.Key != src.Key || cur.Mtime != src.Mtime || cur.Size != src.Size, nil
}

// Append inserts msgs in order. Ids follow insertion order.
func (d *DB) Append(ctx context.Context, msgs []parse.Message) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := insertMessages(ctx, tx, msgs); err != nil {
		return err
	}
	return tx.Commit()
}

// Replace clears the table and stores msgs in a single transaction, so a
// failed import leaves the previous records untouched.
func (d *DB) Replace(ctx context.Context, msgs []parse.Message, src SourceInfo) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM messages"); err != nil {
		return fmt.Errorf("clear messages: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM sqlite_sequence WHERE name = 'messages'"); err != nil {
		return fmt.Errorf("reset id sequence: %w", err)
	}
	if err := insertMessages(ctx, tx, msgs); err != nil {
		return err
	}

	for k, v := range map[string]string{
		"source_key":         src.Key,
		"source_mtime":       strconv.FormatInt(src.Mtime, 10),
		"source_size":        strconv.FormatInt(src.Size, 10),
		"source_import_id":   src.ImportID,
		"source_imported_at": src.ImportedAt,
	} {
		if err := setMeta(ctx, tx, k, v); err != nil {
			return fmt.Errorf("record source: %w", err)
		}
	}

	return tx.Commit()
}

func insertMessages(ctx context.Context, tx *sql.Tx, msgs []parse.Message) error {
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO messages (timestamp, sender, message_content, has_media, is_poll, line_number)
		 VALUES (?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, m := range msgs {
		if _, err := stmt.ExecContext(ctx,
			m.Timestamp,
			m.Sender,
			m.Body,
			boolInt(m.HasMedia),
			boolInt(m.IsPoll),
			m.Line,
		); err != nil {
			return fmt.Errorf("insert message at line %d: %w", m.Line, err)
		}
	}
	return nil
}

// Load returns every stored message ordered by id.
func (d *DB) Load(ctx context.Context) ([]parse.Message, error) {
	rows, err := d.db.QueryContext(ctx, selectColumns+" ORDER BY id")
	if err != nil {
		return nil, err
	}
	msgs, err := d.scanMessages(rows)
	if err != nil {
		return nil, err
	}
	if len(msgs) == 0 {
		return nil, ErrNoData
	}
	return msgs, nil
}

// Get returns the message with the given id, or nil if it does not exist.
func (d *DB) Get(ctx context.Context, id int64) (*parse.Message, error) {
	rows, err := d.db.QueryContext(ctx, selectColumns+" WHERE id = ?", id)
	if err != nil {
		return nil, err
	}
	msgs, err := d.scanMessages(rows)
	if err != nil || len(msgs) == 0 {
		return nil, err
	}
	return &msgs[0], nil
}

// Window returns up to around messages on each side of id, plus the number
// of messages before and after the returned slice.
func (d *DB) Window(ctx context.Context, id int64, around int) (msgs []parse.Message, before, after int, err error) {
	if around < 0 {
		around = 0
	}

	rows, err := d.db.QueryContext(ctx, `
		SELECT * FROM (
			SELECT id, timestamp, sender, message_content, has_media, is_poll, line_number
			FROM messages WHERE id < ? ORDER BY id DESC LIMIT ?
		)
		UNION ALL
		SELECT id, timestamp, sender, message_content, has_media, is_poll, line_number
		FROM messages WHERE id = ?
		UNION ALL
		SELECT * FROM (
			SELECT id, timestamp, sender, message_content, has_media, is_poll, line_number
			FROM messages WHERE id > ? ORDER BY id LIMIT ?
		)
		ORDER BY id`,
		id, around, id, id, around,
	)
	if err != nil {
		return nil, 0, 0, err
	}
	msgs, err = d.scanMessages(rows)
	if err != nil || !containsID(msgs, id) {
		return nil, 0, 0, err
	}

	err = d.db.QueryRowContext(ctx,
		"SELECT (SELECT COUNT(*) FROM messages WHERE id < ?), (SELECT COUNT(*) FROM messages WHERE id > ?)",
		msgs[0].ID, msgs[len(msgs)-1].ID,
	).Scan(&before, &after)
	return msgs, before, after, err
}

func (d *DB) scanMessages(rows *sql.Rows) ([]parse.Message, error) {
	defer rows.Close()

	var msgs []parse.Message
	for rows.Next() {
		var m parse.Message
		var media, poll int
		if err := rows.Scan(&m.ID, &m.Timestamp, &m.Sender, &m.Body, &media, &poll, &m.Line); err != nil {
			return nil, err
		}
		m.HasMedia = media != 0
		m.IsPoll = poll != 0
		if t, err := time.ParseInLocation(parse.TimestampLayout, m.Timestamp, time.UTC); err == nil {
			m.Time = t
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

func (d *DB) Count(ctx context.Context) (int, error) {
	var n int
	err := d.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM messages").Scan(&n)
	return n, err
}

func (d *DB) FTSCount(ctx context.Context) (int, error) {
	var n int
	err := d.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM messages_fts").Scan(&n)
	return n, err
}

// Senders returns distinct senders by message count, descending.
func (d *DB) Senders(ctx context.Context) ([]string, error) {
	rows, err := d.db.QueryContext(ctx,
		"SELECT sender FROM messages GROUP BY sender ORDER BY COUNT(*) DESC, sender",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var senders []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		senders = append(senders, s)
	}
	return senders, rows.Err()
}

func containsID(msgs []parse.Message, id int64) bool {
	for _, m := range msgs {
		if m.ID == id {
			return true
		}
	}
	return false
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
