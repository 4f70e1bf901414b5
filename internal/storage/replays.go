package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vovakirdan/ghostflap/internal/eventlog"
)

// Replay is an archived session log.
type Replay struct {
	ID        string
	Mode      string
	Score     int
	Width     int
	Height    int
	Events    int
	Log       string // serialized eventlog
	CreatedAt time.Time
}

// Decode parses the archived log.
func (r Replay) Decode() (*eventlog.Log, error) {
	return eventlog.Deserialize(r.Log)
}

// ArchiveReplay stores a finished session's log and returns its new ID.
func (s *Store) ArchiveReplay(mode string, score int, l *eventlog.Log) (string, error) {
	start, ok := l.SessionStart()
	if !ok {
		return "", fmt.Errorf("storage: cannot archive replay: log has no session start")
	}
	blob, err := l.Serialize()
	if err != nil {
		return "", fmt.Errorf("storage: cannot archive replay: %w", err)
	}

	id := uuid.NewString()
	_, err = s.db.Exec(
		`INSERT INTO replays (id, mode, score, width, height, events, log)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, mode, score, start.Width, start.Height, l.Len(), blob,
	)
	if err != nil {
		return "", fmt.Errorf("storage: cannot archive replay: %w", err)
	}
	return id, nil
}

// ImportReplay validates a serialized log and archives it.
func (s *Store) ImportReplay(blob string) (string, error) {
	l, err := eventlog.Deserialize(blob)
	if err != nil {
		return "", err
	}
	return s.ArchiveReplay("imported", 0, l)
}

// FindReplay returns the replay whose ID starts with prefix. The prefix must
// identify exactly one replay.
func (s *Store) FindReplay(prefix string) (*Replay, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return nil, ErrNotFound
	}
	rows, err := s.db.Query(
		`SELECT id, mode, score, width, height, events, log, created_at
		 FROM replays
		 WHERE id LIKE ? || '%'
		 LIMIT 2`,
		prefix,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query replay: %w", err)
	}
	defer rows.Close()

	replays, err := scanReplays(rows)
	if err != nil {
		return nil, err
	}
	switch len(replays) {
	case 0:
		return nil, ErrNotFound
	case 1:
		return &replays[0], nil
	default:
		return nil, fmt.Errorf("storage: replay id %q is ambiguous", prefix)
	}
}

// ListReplays returns the most recent replays, newest first. The Log field
// is left empty.
func (s *Store) ListReplays(limit int) ([]Replay, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(
		`SELECT id, mode, score, width, height, events, '', created_at
		 FROM replays
		 ORDER BY created_at DESC, rowid DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query replays: %w", err)
	}
	defer rows.Close()
	return scanReplays(rows)
}

// DeleteReplay removes the replay identified by prefix.
func (s *Store) DeleteReplay(prefix string) error {
	r, err := s.FindReplay(prefix)
	if err != nil {
		return err
	}
	if _, err := s.db.Exec("DELETE FROM replays WHERE id = ?", r.ID); err != nil {
		return fmt.Errorf("storage: cannot delete replay: %w", err)
	}
	return nil
}

func scanReplays(rows *sql.Rows) ([]Replay, error) {
	var out []Replay
	for rows.Next() {
		var r Replay
		var createdAt any
		if err := rows.Scan(&r.ID, &r.Mode, &r.Score, &r.Width, &r.Height, &r.Events, &r.Log, &createdAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		r.CreatedAt = parseTime(createdAt)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return out, nil
}
