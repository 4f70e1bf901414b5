package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/vovakirdan/ghostflap/internal/eventlog"
)

// Well-known keys.
const (
	KeyHighScore = "high-score"
	KeySavedLog  = "save"
)

// KV is a string key-value store.
type KV interface {
	Get(key string) (string, error) // ErrNotFound when absent
	Set(key, value string) error
}

// Get implements KV.
func (s *Store) Get(key string) (string, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM kv WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("storage: cannot read key %q: %w", key, err)
	}
	return value, nil
}

// Set implements KV.
func (s *Store) Set(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO kv (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("storage: cannot write key %q: %w", key, err)
	}
	return nil
}

var _ KV = (*Store)(nil)

// MemoryKV is an in-process KV used when no database is configured.
type MemoryKV struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryKV creates an empty MemoryKV.
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{values: make(map[string]string)}
}

// Get implements KV.
func (m *MemoryKV) Get(key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

// Set implements KV.
func (m *MemoryKV) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

// HighScoreKV persists the high score as an integer under KeyHighScore.
type HighScoreKV struct {
	KV KV
}

// LoadHighScore returns the stored high score, 0 when none is stored.
func (h HighScoreKV) LoadHighScore() (int, error) {
	v, err := h.KV.Get(KeyHighScore)
	if errors.Is(err, ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, fmt.Errorf("storage: high score %q is not a number: %w", v, err)
	}
	return n, nil
}

// SaveHighScore stores the high score.
func (h HighScoreKV) SaveHighScore(score int) error {
	return h.KV.Set(KeyHighScore, strconv.Itoa(score))
}

// SaveLog stores a serialized log under KeySavedLog.
func SaveLog(kv KV, l *eventlog.Log) error {
	blob, err := l.Serialize()
	if err != nil {
		return err
	}
	return kv.Set(KeySavedLog, blob)
}

// LoadLog reads and validates the log stored under KeySavedLog.
// It returns ErrNotFound when nothing has been saved and
// *eventlog.MalformedLogError when the stored blob is invalid.
func LoadLog(kv KV) (*eventlog.Log, error) {
	blob, err := kv.Get(KeySavedLog)
	if err != nil {
		return nil, err
	}
	return eventlog.Deserialize(blob)
}
