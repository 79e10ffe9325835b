package chatpod

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

var _ TranscriptStore = (*SQLiteTranscripts)(nil)

// SQLiteTranscripts implements TranscriptStore on a local SQLite file.
type SQLiteTranscripts struct {
	db *sql.DB
}

// NewSQLiteTranscripts opens (and if necessary creates) the archive at the
// given path.
func NewSQLiteTranscripts(dbPath string) (*SQLiteTranscripts, error) {
	db, err := sql.Open("sqlite", dbPath+"?_journal=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	s := &SQLiteTranscripts{db: db}
	if err := s.initDB(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize database: %w", err)
	}
	return s, nil
}

func (s *SQLiteTranscripts) initDB() error {
	createTableSQL := `
	CREATE TABLE IF NOT EXISTS transcripts (
		id TEXT PRIMARY KEY,
		turn_id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		model TEXT NOT NULL,
		prompt TEXT NOT NULL,
		answer TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_transcripts_user ON transcripts(user_id, created_at);`

	if _, err := s.db.Exec(createTableSQL); err != nil {
		return fmt.Errorf("create tables: %w", err)
	}
	return nil
}

func (s *SQLiteTranscripts) Save(ctx context.Context, entry TranscriptEntry) error {
	query := `
	INSERT INTO transcripts (id, turn_id, user_id, model, prompt, answer, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		entry.ID, entry.TurnID, entry.UserID, entry.Model, entry.Prompt, entry.Answer, entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("save transcript: %w", err)
	}
	return nil
}

// Recent returns the user's latest archived turns, newest first.
func (s *SQLiteTranscripts) Recent(ctx context.Context, userID string, limit int) ([]TranscriptEntry, error) {
	query := `
	SELECT id, turn_id, user_id, model, prompt, answer, created_at
	FROM transcripts
	WHERE user_id = ?
	ORDER BY created_at DESC
	LIMIT ?
	`
	rows, err := s.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("query transcripts: %w", err)
	}
	defer rows.Close()

	var entries []TranscriptEntry
	for rows.Next() {
		var e TranscriptEntry
		if err := rows.Scan(&e.ID, &e.TurnID, &e.UserID, &e.Model, &e.Prompt, &e.Answer, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return entries, nil
}

func (s *SQLiteTranscripts) Close() error {
	return s.db.Close()
}
