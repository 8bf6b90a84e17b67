package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

// SQLStore persists users in SQLite through bun. Uniqueness is enforced by
// the unique index on email, so concurrent creates are serialized by the
// database rather than an application lock.
type SQLStore struct {
	db *bun.DB
}

var _ UserStore = (*SQLStore)(nil)

// OpenSQLite opens the SQLite database at dsn and ensures the users table
// exists.
func OpenSQLite(ctx context.Context, dsn string) (*SQLStore, error) {
	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	// SQLite handles one writer at a time; a single pooled connection
	// avoids busy errors under concurrent creates.
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())

	if _, err := db.NewCreateTable().
		Model((*User)(nil)).
		IfNotExists().
		Exec(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create users table: %w", err)
	}

	return &SQLStore{db: db}, nil
}

// NewSQLStore wraps an existing bun handle, mostly for tests.
func NewSQLStore(db *bun.DB) *SQLStore {
	return &SQLStore{db: db}
}

// Close releases the underlying database handle.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

// All returns every persisted record ordered by creation time.
func (s *SQLStore) All(ctx context.Context) ([]User, error) {
	users := []User{}
	if err := s.db.NewSelect().
		Model(&users).
		Order("created_at ASC").
		Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	return users, nil
}

// FindByEmail resolves a normalized email to its record.
func (s *SQLStore) FindByEmail(ctx context.Context, email string) (*User, error) {
	user := new(User)
	err := s.db.NewSelect().
		Model(user).
		Where("email = ?", NormalizeEmail(email)).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return user, nil
}

// Create inserts the record, mapping unique index violations to
// ErrEmailTaken.
func (s *SQLStore) Create(ctx context.Context, user *User) (*User, error) {
	record := *user
	record.Email = NormalizeEmail(record.Email)

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	if record.CreatedAt == nil {
		now := time.Now().UTC()
		record.CreatedAt = &now
	}

	if _, err := s.db.NewInsert().Model(&record).Exec(ctx); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return &record, nil
}

// isUniqueViolation matches the constraint error text of both sqlite drivers
// sqliteshim may select (modernc and mattn).
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "constraint failed: UNIQUE")
}
