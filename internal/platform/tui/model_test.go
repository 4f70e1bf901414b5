package tui

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/ghostflap/internal/config"
	"github.com/vovakirdan/ghostflap/internal/core"
	"github.com/vovakirdan/ghostflap/internal/eventlog"
	"github.com/vovakirdan/ghostflap/internal/games/flappy"
	"github.com/vovakirdan/ghostflap/internal/storage"
)

func keyMsg(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newTestModel(t *testing.T, opts Options) (Model, *bytes.Buffer) {
	t.Helper()
	if opts.Runtime.ScreenW == 0 {
		opts.Runtime = core.RuntimeConfig{ScreenW: 80, ScreenH: 24, TickRate: 30, Seed: 1}
	}
	clip := &bytes.Buffer{}
	opts.Clipboard = clip
	opts.Now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	opts.ScreenshotDir = t.TempDir()
	m, err := NewModel(opts)
	if err != nil {
		t.Fatalf("NewModel() failed: %v", err)
	}
	return m, clip
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	out, ok := next.(Model)
	if !ok {
		t.Fatalf("Update() returned %T", next)
	}
	return out
}

// playToEnd ticks without input until the session ends.
func playToEnd(t *testing.T, m Model) Model {
	t.Helper()
	for range 2000 {
		m = update(t, m, TickMsg(time.Time{}))
		if m.phase != phasePlaying {
			return m
		}
	}
	t.Fatal("session did not end")
	return m
}

func TestModelLiveSessionEndsInReport(t *testing.T) {
	m, _ := newTestModel(t, Options{})
	if m.phase != phasePlaying {
		t.Fatalf("phase = %v, want playing", m.phase)
	}

	m = playToEnd(t, m)

	if m.phase != phaseReport {
		t.Fatalf("phase = %v, want report", m.phase)
	}
	if m.report.Mode != flappy.ModeLive {
		t.Errorf("report mode = %v, want live", m.report.Mode)
	}
	if m.last == nil || !m.last.Frozen() {
		t.Fatal("ended session log should be kept and frozen")
	}
	if !strings.Contains(m.View(), "GAME OVER") {
		t.Error("report view should show GAME OVER")
	}
}

func TestModelSaveThenGhost(t *testing.T) {
	kv := storage.NewMemoryKV()
	m, _ := newTestModel(t, Options{Saves: kv})
	m = playToEnd(t, m)
	liveScore := m.report.Score

	m = update(t, m, keyMsg("s"))
	if m.errText != "" {
		t.Fatalf("save failed: %s", m.errText)
	}
	if _, err := storage.LoadLog(kv); err != nil {
		t.Fatalf("LoadLog() after save failed: %v", err)
	}

	m = update(t, m, keyMsg("g"))
	if m.phase != phasePlaying {
		t.Fatalf("phase = %v after g, want playing (err %q)", m.phase, m.errText)
	}
	if m.session.Mode() != flappy.ModeGhost {
		t.Fatalf("session mode = %v, want ghost", m.session.Mode())
	}

	m = playToEnd(t, m)
	if m.report.Mode != flappy.ModeGhost {
		t.Errorf("report mode = %v, want ghost", m.report.Mode)
	}
	if m.report.Score != liveScore {
		t.Errorf("ghost score = %d, want %d", m.report.Score, liveScore)
	}
	if !strings.Contains(m.View(), "REPLAY OVER") {
		t.Error("ghost report should show REPLAY OVER")
	}
}

func TestModelResumeAddsLiveActor(t *testing.T) {
	m, _ := newTestModel(t, Options{})
	m = playToEnd(t, m)
	m = update(t, m, keyMsg("s"))
	m = update(t, m, keyMsg("r"))

	if m.phase != phasePlaying {
		t.Fatalf("phase = %v after r, want playing (err %q)", m.phase, m.errText)
	}
	m = update(t, m, TickMsg(time.Time{}))
	actors := m.session.Actors()
	if len(actors) != 2 {
		t.Fatalf("got %d actors, want 2", len(actors))
	}
	if actors[0].Index != 0 || actors[1].Index != 1 {
		t.Errorf("actor indices = [%d %d], want [0 1]", actors[0].Index, actors[1].Index)
	}
}

func TestModelReplayWithoutSave(t *testing.T) {
	m, _ := newTestModel(t, Options{})
	m = playToEnd(t, m)

	m = update(t, m, keyMsg("g"))

	if m.phase != phaseReport {
		t.Errorf("phase = %v, want report", m.phase)
	}
	if !strings.Contains(m.errText, "No saved replay") {
		t.Errorf("errText = %q", m.errText)
	}
}

func TestModelViewportMismatchIsInline(t *testing.T) {
	m, _ := newTestModel(t, Options{})
	m = playToEnd(t, m)
	m = update(t, m, keyMsg("s"))
	m = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})

	m = update(t, m, keyMsg("g"))

	if m.phase != phaseReport {
		t.Fatalf("phase = %v, want report", m.phase)
	}
	if !strings.Contains(m.errText, "recorded at 80x24") || !strings.Contains(m.errText, "100x30") {
		t.Errorf("errText = %q", m.errText)
	}
}

func TestModelChangedRulesAreInline(t *testing.T) {
	cfg := config.DefaultFlappyConfig()
	m, _ := newTestModel(t, Options{Config: func() config.FlappyConfig { return cfg }})
	m = playToEnd(t, m)
	m = update(t, m, keyMsg("s"))

	cfg.Physics.Gravity *= 2
	m = update(t, m, keyMsg("g"))

	if m.phase != phaseReport {
		t.Fatalf("phase = %v, want report", m.phase)
	}
	if !strings.Contains(m.errText, "different game settings") {
		t.Errorf("errText = %q", m.errText)
	}
}

func TestModelExport(t *testing.T) {
	m, clip := newTestModel(t, Options{})
	m = playToEnd(t, m)

	m = update(t, m, keyMsg("e"))

	if m.errText != "" {
		t.Fatalf("export failed: %s", m.errText)
	}
	if !strings.HasPrefix(clip.String(), "\x1b]52;c;") {
		t.Errorf("clipboard output = %q, want an OSC52 sequence", clip.String())
	}
}

func TestModelImport(t *testing.T) {
	kv := storage.NewMemoryKV()
	m, _ := newTestModel(t, Options{Saves: kv})
	m = playToEnd(t, m)
	blob, err := m.last.Serialize()
	if err != nil {
		t.Fatalf("Serialize() failed: %v", err)
	}

	m = update(t, m, keyMsg("i"))
	if m.phase != phaseImport {
		t.Fatalf("phase = %v, want import", m.phase)
	}

	m.importBox.SetValue("not a replay")
	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.phase != phaseImport {
		t.Errorf("phase = %v after malformed import, want import", m.phase)
	}
	if !strings.Contains(m.errText, "malformed") {
		t.Errorf("errText = %q, want malformed message", m.errText)
	}
	if _, err := storage.LoadLog(kv); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("malformed import should not touch the save slot, got %v", err)
	}

	m.importLog(blob)
	if m.phase != phaseReport {
		t.Errorf("phase = %v after import, want report", m.phase)
	}
	saved, err := storage.LoadLog(kv)
	if err != nil {
		t.Fatalf("LoadLog() failed: %v", err)
	}
	if saved.Len() != m.last.Len() {
		t.Errorf("imported %d events, want %d", saved.Len(), m.last.Len())
	}
}

func TestModelImportCancel(t *testing.T) {
	m, _ := newTestModel(t, Options{})
	m = playToEnd(t, m)
	m = update(t, m, keyMsg("i"))

	m = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})

	if m.phase != phaseReport {
		t.Errorf("phase = %v, want report", m.phase)
	}
}

func TestModelArchivesToStore(t *testing.T) {
	store, err := storage.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	m, _ := newTestModel(t, Options{Store: store})
	m = playToEnd(t, m)

	if m.archiveID == "" {
		t.Fatal("ended session was not archived")
	}
	r, err := store.FindReplay(m.archiveID)
	if err != nil {
		t.Fatalf("FindReplay() failed: %v", err)
	}
	if r.Mode != "live" || r.Width != 80 || r.Height != 24 {
		t.Errorf("archived replay = %+v", r)
	}
	decoded, err := r.Decode()
	if err != nil {
		t.Fatalf("Decode() failed: %v", err)
	}
	if decoded.Len() != m.last.Len() {
		t.Errorf("archived %d events, want %d", decoded.Len(), m.last.Len())
	}
}

func TestModelQuitWhilePlaying(t *testing.T) {
	m, _ := newTestModel(t, Options{})

	next, cmd := m.Update(keyMsg("q"))

	if cmd == nil {
		t.Fatal("quit should return a command")
	}
	if !next.(Model).quitting {
		t.Error("model should be quitting")
	}
	if next.(Model).View() != "" {
		t.Error("quitting model should render nothing")
	}
}

func TestModelJumpReachesSession(t *testing.T) {
	m, _ := newTestModel(t, Options{})
	m = update(t, m, keyMsg(" "))
	m = update(t, m, TickMsg(time.Time{}))

	inputs := 0
	for _, e := range m.session.Log().Events() {
		if e.Kind == eventlog.KindActorInput {
			inputs++
		}
	}
	if inputs != 1 {
		t.Errorf("recorded %d inputs, want 1", inputs)
	}
}

func TestModelBadInitialReplay(t *testing.T) {
	_, err := NewModel(Options{
		Runtime: core.RuntimeConfig{ScreenW: 80, ScreenH: 24, TickRate: 30},
		Mode:    flappy.ModeGhost,
	})
	if err == nil {
		t.Error("ghost mode without a log should fail")
	}
}

func TestModelRejectedInitialReplayOffersLivePlay(t *testing.T) {
	m, _ := newTestModel(t, Options{})
	m = playToEnd(t, m)
	recorded := m.last

	m, _ = newTestModel(t, Options{
		Runtime: core.RuntimeConfig{ScreenW: 100, ScreenH: 30, TickRate: 30, Seed: 1},
		Mode:    flappy.ModeGhost,
		Replay:  recorded,
	})

	if m.phase != phaseReport {
		t.Fatalf("phase = %v, want report", m.phase)
	}
	if !strings.Contains(m.errText, "recorded at 80x24") {
		t.Errorf("errText = %q", m.errText)
	}

	m = update(t, m, keyMsg(" "))
	if m.phase != phasePlaying || m.session.Mode() != flappy.ModeLive {
		t.Error("space should start a live session")
	}
}
