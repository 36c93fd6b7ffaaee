// Package prefs persists client preferences in a small SQLite key/value table.
package prefs

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"scout-tui/internal/kbselect"
	"scout-tui/internal/state"
)

const (
	keyTheme = "theme-mode"
	keyKBs   = "kbs"
)

type Store struct {
	db *sql.DB
	mu sync.Mutex
}

func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) initSchema() error {
	stmts := []string{
		`PRAGMA journal_mode = WAL;`,
		`CREATE TABLE IF NOT EXISTS kv (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at INTEGER
		);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}

// Get returns the raw value for key and whether it was present.
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %s: %w", key, err)
	}
	return value, true, nil
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx, `INSERT INTO kv(key, value, updated_at) VALUES(?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// Theme returns the stored theme; anything other than "light" reads as dark.
func (s *Store) Theme(ctx context.Context) (state.Theme, error) {
	v, _, err := s.Get(ctx, keyTheme)
	if err != nil {
		return state.ThemeDark, err
	}
	return state.ParseTheme(v), nil
}

func (s *Store) SetTheme(ctx context.Context, t state.Theme) error {
	return s.Set(ctx, keyTheme, string(t))
}

// Selection returns the stored knowledge base selection. A missing or
// unreadable value is an empty selection.
func (s *Store) Selection(ctx context.Context) (kbselect.Selection, error) {
	v, ok, err := s.Get(ctx, keyKBs)
	if err != nil || !ok {
		return kbselect.Selection{}, err
	}
	var sel kbselect.Selection
	if err := json.Unmarshal([]byte(v), &sel); err != nil {
		return kbselect.Selection{}, nil
	}
	return sel, nil
}

func (s *Store) SaveSelection(ctx context.Context, sel kbselect.Selection) error {
	if sel == nil {
		sel = kbselect.Selection{}
	}
	buf, err := json.Marshal(sel)
	if err != nil {
		return fmt.Errorf("encode selection: %w", err)
	}
	return s.Set(ctx, keyKBs, string(buf))
}
