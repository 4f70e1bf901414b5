package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, path, body string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestWatcherReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	writeConfig(t, path, "obstacles:\n  width: 6\n")

	w, err := NewWatcher(path, nil)
	if err != nil {
		t.Fatalf("NewWatcher() failed: %v", err)
	}
	if got := w.Config().Obstacles.Width; got != 6 {
		t.Fatalf("Width = %d, want 6", got)
	}

	var notified []int
	w.OnChange(func(c FlappyConfig) { notified = append(notified, c.Obstacles.Width) })

	writeConfig(t, path, "obstacles:\n  width: 3\n")
	if _, err := w.Reload(); err != nil {
		t.Fatalf("Reload() failed: %v", err)
	}
	if got := w.Config().Obstacles.Width; got != 3 {
		t.Errorf("Width after reload = %d, want 3", got)
	}
	if len(notified) != 1 || notified[0] != 3 {
		t.Errorf("OnChange callbacks = %v", notified)
	}
}

func TestWatcherKeepsPreviousOnInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	writeConfig(t, path, "obstacles:\n  width: 5\n")

	w, err := NewWatcher(path, nil)
	if err != nil {
		t.Fatalf("NewWatcher() failed: %v", err)
	}
	writeConfig(t, path, "obstacles:\n  palette: [red]\n")
	if _, err := w.Reload(); err == nil {
		t.Fatal("Reload() accepted a one-color palette")
	}
	if got := w.Config().Obstacles.Width; got != 5 {
		t.Errorf("config changed after failed reload: width %d", got)
	}
}

func TestWatcherPicksUpFileWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	writeConfig(t, path, "player:\n  variants: 2\n")

	w, err := NewWatcher(path, nil)
	if err != nil {
		t.Fatalf("NewWatcher() failed: %v", err)
	}
	changed := make(chan FlappyConfig, 4)
	w.OnChange(func(c FlappyConfig) { changed <- c })

	stop, err := w.Watch()
	if err != nil {
		t.Fatalf("Watch() failed: %v", err)
	}
	defer stop()

	writeConfig(t, path, "player:\n  variants: 5\n")

	deadline := time.After(5 * time.Second)
	for {
		select {
		case c := <-changed:
			if c.Player.Variants == 5 {
				return
			}
		case <-deadline:
			t.Fatal("watcher did not report the file change")
		}
	}
}
