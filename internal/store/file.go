package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// FileStore persists users as a single human-readable JSON array. Every
// operation, reads included, runs under one mutex so a lookup never observes
// a partially written file and concurrent creates cannot lose writes.
type FileStore struct {
	mu   sync.Mutex
	path string
}

var _ UserStore = (*FileStore)(nil)

// NewFileStore creates a store backed by the JSON file at path. The file is
// created on first write; a missing file reads as an empty set.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// All returns every persisted record.
func (s *FileStore) All(_ context.Context) ([]User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.load()
}

// FindByEmail scans the persisted set for a normalized email.
func (s *FileStore) FindByEmail(_ context.Context, email string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.load()
	if err != nil {
		return nil, err
	}

	email = NormalizeEmail(email)
	for i := range users {
		if users[i].Email == email {
			return &users[i], nil
		}
	}

	return nil, ErrUserNotFound
}

// Create appends the record and rewrites the file atomically.
func (s *FileStore) Create(_ context.Context, user *User) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.load()
	if err != nil {
		return nil, err
	}

	record := *user
	record.Email = NormalizeEmail(record.Email)

	for i := range users {
		if users[i].Email == record.Email {
			return nil, ErrEmailTaken
		}
	}

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	if record.CreatedAt == nil {
		now := time.Now().UTC()
		record.CreatedAt = &now
	}

	users = append(users, record)
	if err := s.persist(users); err != nil {
		return nil, err
	}

	return &record, nil
}

func (s *FileStore) load() ([]User, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []User{}, nil
		}
		return nil, fmt.Errorf("failed to read user store: %w", err)
	}

	if len(data) == 0 {
		return []User{}, nil
	}

	var users []User
	if err := json.Unmarshal(data, &users); err != nil {
		return nil, fmt.Errorf("failed to decode user store: %w", err)
	}

	return users, nil
}

// persist writes the whole set to a temp file in the same directory and
// renames it over the store, so a crash mid-write leaves the previous state
// intact.
func (s *FileStore) persist(users []User) error {
	data, err := json.MarshalIndent(users, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode user store: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp store file: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write user store: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close temp store file: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to replace user store: %w", err)
	}

	return nil
}
