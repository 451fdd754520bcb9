package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // SQLite driver registration.

	"attendance_bot/internal/model"
	"attendance_bot/migrations"
)

const timeLayout = "2006-01-02T15:04:05Z"

// SQLite implements Storage backed by a SQLite database.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at dsn and runs pending migrations.
func NewSQLite(dsn string) (*SQLite, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	if err := migrations.Run(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLite{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// GetSubscriber returns a single subscriber by chat ID.
func (s *SQLite) GetSubscriber(ctx context.Context, chatID int64) (*model.Subscriber, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT chat_id, username, password, last_snapshot, notifications_enabled, created_at
		 FROM subscribers WHERE chat_id = ?`, chatID,
	)
	sub, err := scanSubscriber(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return sub, err
}

// ListSubscribers returns all subscribers in registration order.
func (s *SQLite) ListSubscribers(ctx context.Context) ([]model.Subscriber, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT chat_id, username, password, last_snapshot, notifications_enabled, created_at
		 FROM subscribers ORDER BY created_at, chat_id`,
	)
	if err != nil {
		return nil, fmt.Errorf("query subscribers: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var subs []model.Subscriber
	for rows.Next() {
		sub, err := scanSubscriber(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, *sub)
	}
	return subs, rows.Err()
}

// UpsertSubscriber inserts or replaces the whole subscriber record.
func (s *SQLite) UpsertSubscriber(ctx context.Context, sub *model.Subscriber) error {
	snapshot, err := json.Marshal(sub.LastSnapshot)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = time.Now().UTC().Truncate(time.Second)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO subscribers (chat_id, username, password, last_snapshot, notifications_enabled, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(chat_id) DO UPDATE SET
		   username = excluded.username,
		   password = excluded.password,
		   last_snapshot = excluded.last_snapshot,
		   notifications_enabled = excluded.notifications_enabled`,
		sub.ChatID, sub.Username, sub.Password, string(snapshot),
		boolToInt(sub.NotificationsEnabled), sub.CreatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("upsert subscriber: %w", err)
	}
	return nil
}

// DeleteSubscriber removes a subscriber by chat ID.
func (s *SQLite) DeleteSubscriber(ctx context.Context, chatID int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM subscribers WHERE chat_id = ?`, chatID)
	if err != nil {
		return fmt.Errorf("delete subscriber: %w", err)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

type scannable interface {
	Scan(dest ...any) error
}

func scanSubscriber(row scannable) (*model.Subscriber, error) {
	var sub model.Subscriber
	var snapshot string
	var enabled int
	var created sql.NullString
	err := row.Scan(&sub.ChatID, &sub.Username, &sub.Password, &snapshot, &enabled, &created)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan subscriber: %w", err)
	}
	sub.NotificationsEnabled = enabled == 1
	if err := json.Unmarshal([]byte(snapshot), &sub.LastSnapshot); err != nil {
		return nil, fmt.Errorf("decode snapshot for chat %d: %w", sub.ChatID, err)
	}
	if created.Valid {
		sub.CreatedAt, _ = time.Parse(timeLayout, created.String)
	}
	return &sub, nil
}
