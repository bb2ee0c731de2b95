package analytics

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/saintathena/backend/internal/domain"
	"github.com/saintathena/backend/internal/logger"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `CREATE TABLE IF NOT EXISTS saint_athena_interactions (
	id               INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id          TEXT,
	interaction_type TEXT    NOT NULL,
	query_text       TEXT    NOT NULL,
	products_found   INTEGER NOT NULL DEFAULT 0,
	created_at       TEXT    NOT NULL
)`

// SQLiteSink stores search interactions in a local SQLite database
type SQLiteSink struct {
	db *sql.DB
}

// NewSQLiteSink opens (or creates) the database at dsn and ensures the table exists
func NewSQLiteSink(ctx context.Context, dsn string) (*SQLiteSink, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: open: %v", domain.ErrAnalyticsFailure, err)
	}
	// sqlite allows one writer; :memory: databases are per connection
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: migrate: %v", domain.ErrAnalyticsFailure, err)
	}
	return &SQLiteSink{db: db}, nil
}

// Record inserts one interaction. An empty user id is stored as NULL.
func (s *SQLiteSink) Record(ctx context.Context, interaction domain.Interaction) error {
	var userID sql.NullString
	if interaction.UserID != "" {
		userID = sql.NullString{String: interaction.UserID, Valid: true}
	}
	createdAt := interaction.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO saint_athena_interactions (user_id, interaction_type, query_text, products_found, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		userID, interaction.Type, interaction.QueryText, interaction.ProductsFound,
		createdAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("%w: insert: %v", domain.ErrAnalyticsFailure, err)
	}
	return nil
}

// Recent returns up to limit interactions, newest first
func (s *SQLiteSink) Recent(ctx context.Context, limit int) ([]domain.Interaction, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT user_id, interaction_type, query_text, products_found, created_at
		 FROM saint_athena_interactions ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: query: %v", domain.ErrAnalyticsFailure, err)
	}
	defer rows.Close()

	var out []domain.Interaction
	for rows.Next() {
		var (
			in        domain.Interaction
			userID    sql.NullString
			createdAt string
		)
		if err := rows.Scan(&userID, &in.Type, &in.QueryText, &in.ProductsFound, &createdAt); err != nil {
			return nil, fmt.Errorf("%w: scan: %v", domain.ErrAnalyticsFailure, err)
		}
		in.UserID = userID.String
		if t, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
			in.CreatedAt = t
		}
		out = append(out, in)
	}
	return out, rows.Err()
}

// Close releases the database
func (s *SQLiteSink) Close() error {
	return s.db.Close()
}

// LogSink writes interactions to the log instead of storing them
type LogSink struct {
	log *log.Logger
}

// NewLogSink creates a log-backed sink; a nil logger uses the "analytics" logger
func NewLogSink(l *log.Logger) *LogSink {
	if l == nil {
		l = logger.New("analytics")
	}
	return &LogSink{log: l}
}

// Record logs the interaction at info level
func (s *LogSink) Record(ctx context.Context, interaction domain.Interaction) error {
	s.log.Info("interaction",
		"type", interaction.Type,
		"user", interaction.UserID,
		"query", interaction.QueryText,
		"found", interaction.ProductsFound,
	)
	return nil
}
