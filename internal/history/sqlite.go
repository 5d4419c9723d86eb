// Package history - sqlite.go is the durable Store implementation.
package history

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/convoflow/context-engine/internal/engine"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

const timeFormat = "2006-01-02T15:04:05.000Z"

// SQLiteStore persists conversations in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the database at dbPath, applies WAL
// and busy-timeout pragmas, runs pending migrations, and returns the
// store.
func OpenSQLite(ctx context.Context, dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o700); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// modernc.org/sqlite serialises writes; limit to one connection.
	db.SetMaxOpenConns(1)

	if err := pragmas(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteStore{db: db}, nil
}

func pragmas(ctx context.Context, db *sql.DB) error {
	for _, p := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.ExecContext(ctx, p); err != nil {
			return fmt.Errorf("setting %s: %w", p, err)
		}
	}
	return nil
}

func migrate(db *sql.DB) error {
	goose.SetBaseFS(embedMigrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("setting goose dialect: %w", err)
	}
	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}

// Append inserts one message at the end of a conversation.
func (s *SQLiteStore) Append(ctx context.Context, conversationID string, msg engine.Message) error {
	images, err := json.Marshal(msg.Images)
	if err != nil {
		return fmt.Errorf("encoding images: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO messages (conversation_id, message_id, role, content, images, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		conversationID, msg.ID, string(msg.Role), msg.Content, string(images),
		msg.Timestamp.UTC().Format(timeFormat),
	)
	if err != nil {
		return fmt.Errorf("inserting message %q: %w", msg.ID, err)
	}
	return nil
}

// Messages returns a conversation's history in insertion order.
func (s *SQLiteStore) Messages(ctx context.Context, conversationID string) ([]engine.Message, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT message_id, role, content, images, created_at
		FROM messages
		WHERE conversation_id = ?
		ORDER BY seq ASC`,
		conversationID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing messages: %w", err)
	}
	defer rows.Close()

	messages := []engine.Message{}
	for rows.Next() {
		var (
			msg       engine.Message
			role      string
			images    string
			createdAt string
		)
		if err := rows.Scan(&msg.ID, &role, &msg.Content, &images, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning message: %w", err)
		}
		msg.Role = engine.Role(role)
		if images != "" && images != "null" {
			if err := json.Unmarshal([]byte(images), &msg.Images); err != nil {
				return nil, fmt.Errorf("decoding images for %q: %w", msg.ID, err)
			}
		}
		ts, err := time.Parse(timeFormat, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parsing timestamp for %q: %w", msg.ID, err)
		}
		msg.Timestamp = ts

		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating messages: %w", err)
	}
	return messages, nil
}

// Clear removes a conversation entirely.
func (s *SQLiteStore) Clear(ctx context.Context, conversationID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM messages WHERE conversation_id = ?`, conversationID); err != nil {
		return fmt.Errorf("clearing conversation %q: %w", conversationID, err)
	}
	return nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Ensure SQLiteStore implements Store.
var _ Store = (*SQLiteStore)(nil)
