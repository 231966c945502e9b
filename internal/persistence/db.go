// Package persistence provides the SQLite archive of generated briefings and
// secure messages.
package persistence

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/theater-cop/internal/llm"
	"github.com/talgya/theater-cop/internal/theater"
)

// DB wraps a SQLite connection for the COP archive.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS briefings (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		panel TEXT NOT NULL,
		args TEXT NOT NULL,
		text TEXT NOT NULL,
		generated_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS messages (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		sender TEXT NOT NULL,
		text TEXT NOT NULL,
		timestamp TEXT NOT NULL,
		classification TEXT NOT NULL,
		is_me INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS cop_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_briefings_panel ON briefings(panel, generated_at);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// ArchivedBriefing is a generated panel text kept for later review.
type ArchivedBriefing struct {
	ID          int64     `json:"id"`
	Panel       llm.Panel `json:"panel"`
	Args        string    `json:"args,omitempty"`
	Text        string    `json:"text"`
	GeneratedAt time.Time `json:"generated_at"`
}

type briefingRow struct {
	ID          int64  `db:"id"`
	Panel       string `db:"panel"`
	Args        string `db:"args"`
	Text        string `db:"text"`
	GeneratedAt int64  `db:"generated_at"`
}

// SaveBriefing archives a generated briefing. Fallback texts are skipped.
func (db *DB) SaveBriefing(b llm.Briefing, args string) error {
	if b.Fallback {
		return nil
	}
	_, err := db.conn.Exec(
		"INSERT INTO briefings (panel, args, text, generated_at) VALUES (?, ?, ?, ?)",
		string(b.Panel), args, b.Text, b.GeneratedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("insert briefing %s: %w", b.Panel, err)
	}
	return nil
}

// RecentBriefings returns the newest archived briefings, optionally for one panel.
func (db *DB) RecentBriefings(panel llm.Panel, limit int) ([]ArchivedBriefing, error) {
	var rows []briefingRow
	var err error
	if panel == "" {
		err = db.conn.Select(&rows,
			"SELECT id, panel, args, text, generated_at FROM briefings ORDER BY id DESC LIMIT ?",
			limit,
		)
	} else {
		err = db.conn.Select(&rows,
			"SELECT id, panel, args, text, generated_at FROM briefings WHERE panel = ? ORDER BY id DESC LIMIT ?",
			string(panel), limit,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("select briefings: %w", err)
	}

	out := make([]ArchivedBriefing, len(rows))
	for i, r := range rows {
		out[i] = ArchivedBriefing{
			ID:          r.ID,
			Panel:       llm.Panel(r.Panel),
			Args:        r.Args,
			Text:        r.Text,
			GeneratedAt: time.UnixMilli(r.GeneratedAt).UTC(),
		}
	}
	return out, nil
}

// SeedMessages inserts the opening thread when the message table is empty.
func (db *DB) SeedMessages(msgs []theater.SecureMessage) error {
	var n int
	if err := db.conn.Get(&n, "SELECT COUNT(*) FROM messages"); err != nil {
		return fmt.Errorf("count messages: %w", err)
	}
	if n > 0 {
		return nil
	}

	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, m := range msgs {
		if err := insertMessage(tx, m); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	slog.Info("seeded secure messages", "count", len(msgs))
	return nil
}

// SaveMessage appends a secure message.
func (db *DB) SaveMessage(m theater.SecureMessage) error {
	return insertMessage(db.conn, m)
}

func insertMessage(e sqlx.Execer, m theater.SecureMessage) error {
	isMe := 0
	if m.IsMe {
		isMe = 1
	}
	_, err := e.Exec(
		`INSERT INTO messages (id, sender, text, timestamp, classification, is_me)
		VALUES (?, ?, ?, ?, ?, ?)`,
		m.ID, m.Sender, m.Text, m.Timestamp, string(m.Classification), isMe,
	)
	if err != nil {
		return fmt.Errorf("insert message %s: %w", m.ID, err)
	}
	return nil
}

// Messages returns the thread in posting order.
func (db *DB) Messages() ([]theater.SecureMessage, error) {
	var msgs []theater.SecureMessage
	err := db.conn.Select(&msgs,
		"SELECT id, sender, text, timestamp, classification, is_me FROM messages ORDER BY seq",
	)
	if err != nil {
		return nil, fmt.Errorf("select messages: %w", err)
	}
	return msgs, nil
}

// SaveMeta stores a key-value pair in service metadata.
func (db *DB) SaveMeta(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO cop_meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta retrieves a metadata value. ok is false when the key is unset.
func (db *DB) GetMeta(key string) (value string, ok bool, err error) {
	err = db.conn.Get(&value, "SELECT value FROM cop_meta WHERE key = ?", key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}
