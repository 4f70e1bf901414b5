package storage

import (
	"errors"
	"testing"

	"github.com/vovakirdan/ghostflap/internal/eventlog"
)

func testLog(t *testing.T) *eventlog.Log {
	t.Helper()
	l, err := eventlog.FromEvents([]eventlog.Event{
		eventlog.SessionStart(0, 80, 24),
		eventlog.ActorReady(0, 0, 1),
		eventlog.ObstacleSpawn(2e9, eventlog.Position{X: 88, Y: 10}),
	})
	if err != nil {
		t.Fatalf("FromEvents() failed: %v", err)
	}
	return l
}

func TestHighScoreKV(t *testing.T) {
	for name, kv := range map[string]KV{
		"memory": NewMemoryKV(),
		"sqlite": openTestStore(t),
	} {
		t.Run(name, func(t *testing.T) {
			h := HighScoreKV{KV: kv}
			got, err := h.LoadHighScore()
			if err != nil || got != 0 {
				t.Fatalf("LoadHighScore() on empty store = %d, %v", got, err)
			}
			if err := h.SaveHighScore(17); err != nil {
				t.Fatalf("SaveHighScore() failed: %v", err)
			}
			got, err = h.LoadHighScore()
			if err != nil || got != 17 {
				t.Errorf("LoadHighScore() = %d, %v; want 17", got, err)
			}
		})
	}
}

func TestHighScoreKVCorrupt(t *testing.T) {
	kv := NewMemoryKV()
	kv.Set(KeyHighScore, "lots")
	if _, err := (HighScoreKV{KV: kv}).LoadHighScore(); err == nil {
		t.Error("LoadHighScore() accepted a non-numeric value")
	}
}

func TestSaveAndLoadLog(t *testing.T) {
	kv := NewMemoryKV()
	if _, err := LoadLog(kv); !errors.Is(err, ErrNotFound) {
		t.Errorf("LoadLog() on empty store = %v, want ErrNotFound", err)
	}

	l := testLog(t)
	if err := SaveLog(kv, l); err != nil {
		t.Fatalf("SaveLog() failed: %v", err)
	}
	got, err := LoadLog(kv)
	if err != nil {
		t.Fatalf("LoadLog() failed: %v", err)
	}
	if got.Len() != l.Len() {
		t.Errorf("loaded %d events, want %d", got.Len(), l.Len())
	}

	kv.Set(KeySavedLog, "{broken")
	var malformed *eventlog.MalformedLogError
	if _, err := LoadLog(kv); !errors.As(err, &malformed) {
		t.Errorf("LoadLog() on corrupt blob = %v, want MalformedLogError", err)
	}
}
