package tui

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aymanbagabas/go-osc52/v2"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/ghostflap/internal/config"
	"github.com/vovakirdan/ghostflap/internal/core"
	"github.com/vovakirdan/ghostflap/internal/eventlog"
	"github.com/vovakirdan/ghostflap/internal/games/flappy"
	"github.com/vovakirdan/ghostflap/internal/replay"
	"github.com/vovakirdan/ghostflap/internal/storage"
)

type phase int

const (
	phasePlaying phase = iota
	phaseReport
	phaseImport
)

// Options configures a Model.
type Options struct {
	Runtime core.RuntimeConfig
	// Config returns the game config for the next session. Nil uses the
	// built-in defaults.
	Config func() config.FlappyConfig
	// Store receives final scores and archived replays. Nil disables both.
	Store *storage.Store
	// Saves holds the save slot. Nil uses Store, or memory without a Store.
	Saves storage.KV
	// HighScore is shared between sessions. Nil loads it from Saves.
	HighScore *flappy.HighScore
	Logger    *log.Logger
	// Clipboard receives OSC52 export sequences. Nil uses os.Stderr.
	Clipboard io.Writer
	// Term is the client's TERM, used to wrap OSC52 for screen and tmux.
	Term          string
	Renderer      *lipgloss.Renderer
	ScreenshotDir string

	// Mode and Replay select the first session.
	Mode   flappy.Mode
	Replay *eventlog.Log

	Now func() time.Time
}

// endBox receives the report from the running session's Reporter. It is a
// pointer so copies of the value-typed Model share it.
type endBox struct {
	report *flappy.Report
}

// Model is the Bubble Tea model running ghostflap sessions and the report
// surface between them.
type Model struct {
	rt            core.RuntimeConfig
	configFn      func() config.FlappyConfig
	store         *storage.Store
	saves         storage.KV
	high          *flappy.HighScore
	logger        *log.Logger
	clipboard     io.Writer
	term          string
	screenshotDir string
	now           func() time.Time

	screen  *core.Screen
	styles  styles
	session *flappy.Session
	ended   *endBox
	input   core.InputFrame
	phase   phase

	report    flappy.Report
	last      *eventlog.Log
	archiveID string
	status    string
	errText   string

	playKeys   playKeys
	reportKeys reportKeys
	importKeys importKeys
	help       help.Model
	importBox  textarea.Model

	width    int
	height   int
	quitting bool
	err      error
}

// NewModel creates a model and starts its first session. A replay rejected
// as malformed or recorded at another viewport opens the report surface with
// the reason instead, offering live play.
func NewModel(opts Options) (Model, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	clipboard := opts.Clipboard
	if clipboard == nil {
		clipboard = os.Stderr
	}
	configFn := opts.Config
	if configFn == nil {
		configFn = config.DefaultFlappyConfig
	}

	rt := opts.Runtime
	defaults := core.DefaultConfig()
	if rt.ScreenW <= 0 || rt.ScreenH <= 0 {
		rt.ScreenW, rt.ScreenH = defaults.ScreenW, defaults.ScreenH
	}
	if rt.TickRate <= 0 {
		rt.TickRate = defaults.TickRate
	}

	saves := opts.Saves
	if saves == nil {
		if opts.Store != nil {
			saves = opts.Store
		} else {
			saves = storage.NewMemoryKV()
		}
	}
	high := opts.HighScore
	if high == nil {
		var err error
		high, err = flappy.LoadHighScore(storage.HighScoreKV{KV: saves})
		if err != nil {
			return Model{}, fmt.Errorf("load high score: %w", err)
		}
	}

	screenshotDir := opts.ScreenshotDir
	if screenshotDir == "" {
		screenshotDir = filepath.Join(os.Getenv("HOME"), ".arcade", "screenshots")
	}

	box := textarea.New()
	box.Placeholder = "Paste an exported replay..."
	box.ShowLineNumbers = false
	box.CharLimit = 0
	box.SetHeight(6)
	box.SetWidth(60)
	box.KeyMap.InsertNewline.SetEnabled(false)

	h := help.New()
	h.ShowAll = false

	m := Model{
		rt:            rt,
		configFn:      configFn,
		store:         opts.Store,
		saves:         saves,
		high:          high,
		logger:        logger,
		clipboard:     clipboard,
		term:          opts.Term,
		screenshotDir: screenshotDir,
		now:           now,
		screen:        core.NewScreen(rt.ScreenW, rt.ScreenH),
		styles:        newStyles(opts.Renderer),
		input:         core.NewInputFrame(),
		playKeys:      defaultPlayKeys(),
		reportKeys:    defaultReportKeys(),
		importKeys:    defaultImportKeys(),
		help:          h,
		importBox:     box,
		width:         rt.ScreenW,
		height:        rt.ScreenH,
	}
	if err := m.startSession(opts.Mode, opts.Replay); err != nil {
		if !recoverable(err) {
			return Model{}, err
		}
		m.phase = phaseReport
		m.errText = describe(err)
	}
	return m, nil
}

// startSession replaces the current session. On error the model is left
// unchanged.
func (m *Model) startSession(mode flappy.Mode, recorded *eventlog.Log) error {
	box := &endBox{}
	s, err := flappy.NewSession(flappy.Options{
		Runtime:   m.rt,
		Config:    m.configFn(),
		Mode:      mode,
		Replay:    recorded,
		HighScore: m.high,
		Reporter: flappy.ReporterFunc(func(r flappy.Report) {
			box.report = &r
		}),
		Logger: m.logger,
		Origin: time.Duration(m.now().UnixNano()),
	})
	if err != nil {
		return err
	}
	m.session = s
	m.ended = box
	m.phase = phasePlaying
	m.status, m.errText = "", ""
	m.input.Clear()
	if m.screen.Width() != m.rt.ScreenW || m.screen.Height() != m.rt.ScreenH {
		m.screen.Resize(m.rt.ScreenW, m.rt.ScreenH)
	}
	return nil
}

// Init starts the tick loop.
func (m Model) Init() tea.Cmd {
	return tickCmd(m.rt.TickRate)
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case TickMsg:
		return m.handleTick()
	}

	if m.phase == phaseImport {
		var cmd tea.Cmd
		m.importBox, cmd = m.importBox.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.phase {
	case phaseReport:
		return m.handleReportKey(msg)
	case phaseImport:
		return m.handleImportKey(msg)
	}

	if key.Matches(msg, m.playKeys.Screenshot) {
		m.saveScreenshot()
		return m, nil
	}
	switch action := m.playKeys.Action(msg); action {
	case core.ActionQuit:
		m.quitting = true
		return m, tea.Quit
	case core.ActionNone:
	default:
		m.input.Set(action)
	}
	return m, nil
}

func (m Model) handleReportKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.status, m.errText = "", ""
	switch {
	case key.Matches(msg, m.reportKeys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.reportKeys.Play):
		if err := m.startSession(flappy.ModeLive, nil); err != nil {
			m.errText = describe(err)
		}

	case key.Matches(msg, m.reportKeys.Save):
		m.saveLast()

	case key.Matches(msg, m.reportKeys.Ghost):
		m.replaySaved(flappy.ModeGhost)

	case key.Matches(msg, m.reportKeys.Resume):
		m.replaySaved(flappy.ModeResume)

	case key.Matches(msg, m.reportKeys.Import):
		m.phase = phaseImport
		m.importBox.Reset()
		return m, m.importBox.Focus()

	case key.Matches(msg, m.reportKeys.Export):
		m.export()
	}
	return m, nil
}

func (m Model) handleImportKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.importKeys.Cancel):
		m.importBox.Blur()
		m.phase = phaseReport
		m.errText = ""
		return m, nil

	case key.Matches(msg, m.importKeys.Submit):
		m.importLog(m.importBox.Value())
		return m, nil
	}

	var cmd tea.Cmd
	m.importBox, cmd = m.importBox.Update(msg)
	return m, cmd
}

// handleResize records the new terminal size. A running session keeps the
// viewport it started with; the next session uses the new one.
func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width, m.height = msg.Width, msg.Height
	m.rt.ScreenW = msg.Width
	m.rt.ScreenH = msg.Height
	m.help.Width = msg.Width
	m.importBox.SetWidth(min(60, max(20, msg.Width-10)))
	if m.phase != phasePlaying {
		m.screen.Resize(msg.Width, msg.Height)
	}
	return m, nil
}

func (m Model) handleTick() (tea.Model, tea.Cmd) {
	if m.phase == phasePlaying && m.session != nil {
		m.session.Step(m.input)
		m.input.Clear()
		if m.ended.report != nil {
			r := *m.ended.report
			m.ended.report = nil
			m.finish(r)
			if m.err != nil {
				return m, tea.Quit
			}
		}
	}
	return m, tickCmd(m.rt.TickRate)
}

// finish moves to the report surface and persists the ended session.
func (m *Model) finish(r flappy.Report) {
	m.phase = phaseReport
	m.report = r
	m.last = r.Log
	m.archiveID = ""
	if r.Err != nil {
		m.err = r.Err
		m.quitting = true
		return
	}

	if err := m.high.Err(); err != nil {
		m.logger.Warn("could not persist high score", "err", err)
	}
	if m.store == nil {
		return
	}
	mode := r.Mode.String()
	if r.Mode != flappy.ModeGhost && r.Score > 0 {
		if _, err := m.store.SaveScore(r.Score, mode); err != nil {
			m.logger.Warn("could not save score", "err", err)
		}
	}
	id, err := m.store.ArchiveReplay(mode, r.Score, r.Log)
	if err != nil {
		m.logger.Warn("could not archive replay", "err", err)
		return
	}
	m.archiveID = id
	m.logger.Debug("replay archived", "id", id, "mode", mode, "score", r.Score)
}

func (m *Model) saveLast() {
	if m.last == nil {
		m.errText = "Nothing to save yet."
		return
	}
	if err := storage.SaveLog(m.saves, m.last); err != nil {
		m.errText = describe(err)
		return
	}
	m.status = fmt.Sprintf("Saved %d events.", m.last.Len())
}

func (m *Model) replaySaved(mode flappy.Mode) {
	saved, err := storage.LoadLog(m.saves)
	if errors.Is(err, storage.ErrNotFound) {
		m.errText = "No saved replay. Press s to save or i to import one."
		return
	}
	if err != nil {
		m.errText = describe(err)
		return
	}
	if err := m.startSession(mode, saved); err != nil {
		m.errText = describe(err)
	}
}

func (m *Model) importLog(blob string) {
	l, err := eventlog.Deserialize(strings.TrimSpace(blob))
	if err != nil {
		m.errText = describe(err)
		return
	}
	if err := storage.SaveLog(m.saves, l); err != nil {
		m.errText = describe(err)
		return
	}
	m.importBox.Blur()
	m.phase = phaseReport
	m.errText = ""
	m.status = fmt.Sprintf("Imported %d events into the save slot.", l.Len())
}

func (m *Model) export() {
	if m.last == nil {
		m.errText = "Nothing to export yet."
		return
	}
	blob, err := m.last.Serialize()
	if err != nil {
		m.errText = describe(err)
		return
	}
	seq := osc52.New(blob)
	switch {
	case strings.HasPrefix(m.term, "screen"):
		seq = seq.Screen()
	case strings.HasPrefix(m.term, "tmux"):
		seq = seq.Tmux()
	}
	if _, err := seq.WriteTo(m.clipboard); err != nil {
		m.errText = describe(err)
		return
	}
	m.status = fmt.Sprintf("Copied %d bytes to the clipboard.", len(blob))
}

func recoverable(err error) bool {
	var malformed *eventlog.MalformedLogError
	var mismatch *replay.ViewportMismatchError
	var rules *replay.RulesMismatchError
	return errors.As(err, &malformed) || errors.As(err, &mismatch) || errors.As(err, &rules)
}

// describe turns recoverable replay errors into a line for the report surface.
func describe(err error) string {
	var malformed *eventlog.MalformedLogError
	var mismatch *replay.ViewportMismatchError
	var rules *replay.RulesMismatchError
	switch {
	case errors.As(err, &mismatch):
		return fmt.Sprintf("Replay was recorded at %s; this terminal is %s.", mismatch.Recorded, mismatch.Current)
	case errors.As(err, &rules):
		return "Replay was recorded with different game settings."
	case errors.As(err, &malformed):
		return "Replay is malformed: " + malformed.Reason
	default:
		return "Error: " + err.Error()
	}
}

// saveScreenshot saves the current screen to a file.
func (m *Model) saveScreenshot() {
	if m.session != nil {
		m.session.Render(m.screen)
	}
	//nolint:errcheck // Best-effort directory creation
	os.MkdirAll(m.screenshotDir, 0o755)

	name := fmt.Sprintf("ghostflap_%s.txt", m.now().Format("20060102_150405"))
	path := filepath.Join(m.screenshotDir, name)
	if err := os.WriteFile(path, []byte(m.screen.String()), 0o600); err != nil {
		m.logger.Warn("could not save screenshot", "err", err)
	}
}

// View renders the current state to a string for display.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	switch m.phase {
	case phaseReport:
		return place(m.width, m.height, m.viewReport())
	case phaseImport:
		return place(m.width, m.height, m.viewImport())
	}
	m.session.Render(m.screen)
	return m.styles.RenderScreen(m.screen)
}

func (m Model) viewReport() string {
	var b strings.Builder
	title := "GAME OVER"
	switch {
	case m.session == nil:
		title = "GHOSTFLAP"
	case m.report.Mode == flappy.ModeGhost:
		title = "REPLAY OVER"
	}
	b.WriteString(m.styles.title.Render(title))
	b.WriteString("\n\n")
	b.WriteString(m.styles.score.Render(fmt.Sprintf("Score: %d", m.report.Score)))
	if m.report.NewHighScore {
		b.WriteString("  ")
		b.WriteString(m.styles.record.Render("New high score!"))
	}
	b.WriteString(fmt.Sprintf("\nBest:  %d\n", m.high.Value()))
	b.WriteString(fmt.Sprintf("Mode:  %s\n", m.report.Mode))
	if m.archiveID != "" {
		b.WriteString(m.styles.help.Render("Archived as " + shortID(m.archiveID)))
		b.WriteString("\n")
	}
	b.WriteString(m.messages())
	b.WriteString("\n")
	b.WriteString(m.help.View(m.reportKeys))
	return m.styles.panel.Render(b.String())
}

func (m Model) viewImport() string {
	var b strings.Builder
	b.WriteString(m.styles.title.Render("IMPORT REPLAY"))
	b.WriteString("\n\n")
	b.WriteString(m.importBox.View())
	b.WriteString("\n")
	b.WriteString(m.messages())
	b.WriteString("\n")
	b.WriteString(m.help.View(m.importKeys))
	return m.styles.panel.Render(b.String())
}

func (m Model) messages() string {
	switch {
	case m.errText != "":
		return "\n" + m.styles.errMsg.Render(m.errText) + "\n"
	case m.status != "":
		return "\n" + m.styles.status.Render(m.status) + "\n"
	}
	return ""
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// Err returns the fault that ended the program, if any.
func (m Model) Err() error {
	return m.err
}

// Run starts the Bubble Tea program and blocks until it exits.
func Run(opts Options) error {
	model, err := NewModel(opts)
	if err != nil {
		return err
	}

	p := tea.NewProgram(model, tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return err
	}
	if fm, ok := final.(Model); ok && fm.err != nil {
		return fm.err
	}
	return nil
}
