package flappy

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/vovakirdan/ghostflap/internal/config"
	"github.com/vovakirdan/ghostflap/internal/core"
	"github.com/vovakirdan/ghostflap/internal/eventlog"
	"github.com/vovakirdan/ghostflap/internal/random"
	"github.com/vovakirdan/ghostflap/internal/replay"
)

func testRuntime(w, h, rate int) core.RuntimeConfig {
	return core.RuntimeConfig{ScreenW: w, ScreenH: h, TickRate: rate, Seed: 1}
}

func newTestSession(t *testing.T, opts Options) *Session {
	t.Helper()
	if opts.Runtime.ScreenW == 0 {
		opts.Runtime = testRuntime(80, 24, 30)
	}
	if opts.Config.Obstacles.Palette == nil {
		opts.Config = config.DefaultFlappyConfig()
	}
	s, err := NewSession(opts)
	if err != nil {
		t.Fatalf("NewSession() failed: %v", err)
	}
	return s
}

func jumpFrame() core.InputFrame {
	in := core.NewInputFrame()
	in.Set(core.ActionJump)
	return in
}

// autopilot jumps whenever the primary actor sinks below the opening it is
// heading for.
func autopilot(s *Session) core.InputFrame {
	p := s.actor(0)
	if p == nil {
		return core.NewInputFrame()
	}
	target := (s.band.MinY + s.band.MaxY) / 2
	for _, o := range s.field.obstacles {
		if o.X+s.field.Width() >= p.X {
			target = o.GapY
			break
		}
	}
	if p.Y+float64(s.cfg.Player.Height)/2 > target+0.5 {
		return jumpFrame()
	}
	return core.NewInputFrame()
}

// playLive runs an autopiloted live session that stops flying after
// flyTicks, so it always ends.
func playLive(t *testing.T, rng random.Source, flyTicks int) Report {
	t.Helper()
	var reports []Report
	s := newTestSession(t, Options{
		Random:   rng,
		Reporter: ReporterFunc(func(r Report) { reports = append(reports, r) }),
		Origin:   42 * time.Hour,
	})
	for i := 0; !s.Over() && i < flyTicks+10_000; i++ {
		in := core.NewInputFrame()
		if i < flyTicks {
			in = autopilot(s)
		}
		s.Step(in)
	}
	if len(reports) != 1 {
		t.Fatalf("reporter called %d times, want 1", len(reports))
	}
	return reports[0]
}

func runGhost(t *testing.T, l *eventlog.Log, rng random.Source) (*Session, Report) {
	t.Helper()
	return driveGhost(t, Options{Mode: ModeGhost, Replay: l, Random: rng})
}

func runGhostWith(t *testing.T, l *eventlog.Log, cfg config.FlappyConfig) (*Session, Report) {
	t.Helper()
	return driveGhost(t, Options{Mode: ModeGhost, Replay: l, Config: cfg, Random: random.NewSeeded(7)})
}

func driveGhost(t *testing.T, opts Options) (*Session, Report) {
	t.Helper()
	var got *Report
	opts.Reporter = ReporterFunc(func(r Report) { got = &r })
	s := newTestSession(t, opts)
	for i := 0; !s.Over() && i < 50_000; i++ {
		// Jumps are ignored in ghost mode.
		s.Step(jumpFrame())
	}
	if got == nil {
		t.Fatal("ghost session never ended")
	}
	return s, *got
}

func TestGhostReplayReproducesScore(t *testing.T) {
	sources := map[string]func() random.Source{
		"centered gaps": func() random.Source { return random.NewSequence(0.5) },
		"seed 1":        func() random.Source { return random.NewSeeded(1) },
		"seed 99":       func() random.Source { return random.NewSeeded(99) },
		"seed 2024":     func() random.Source { return random.NewSeeded(2024) },
	}
	for name, src := range sources {
		t.Run(name, func(t *testing.T) {
			live := playLive(t, src(), 600)
			if !live.Log.Frozen() {
				t.Fatal("log not frozen at session end")
			}
			if name == "centered gaps" && live.Score == 0 {
				t.Fatal("autopilot should clear centered gaps")
			}

			ghost, report := runGhost(t, live.Log, random.NewSeeded(12345))
			if report.Score != live.Score {
				t.Errorf("ghost score = %d, live score = %d", report.Score, live.Score)
			}
			if ghost.Spawned() != len(live.Log.ObstaclePositions()) {
				t.Errorf("ghost spawned %d obstacles, live spawned %d", ghost.Spawned(), len(live.Log.ObstaclePositions()))
			}
		})
	}
}

func TestGhostReplayMatchesRecordedExample(t *testing.T) {
	secs := func(f float64) time.Duration { return time.Duration(f * float64(time.Second)) }
	cfg := config.DefaultFlappyConfig()
	cfg.Physics.Gravity = 0.01
	cfg.Physics.JumpPower = 0.01

	l, err := eventlog.FromEvents([]eventlog.Event{
		eventlog.SessionStart(0, 800, 600).WithRules(cfg.Fingerprint()),
		eventlog.ActorReady(0, 0, 0),
		eventlog.ActorInput(secs(1.0), 0, eventlog.ActionJump, eventlog.Position{X: 160, Y: 300}),
		eventlog.ObstacleSpawn(secs(2.0), eventlog.Position{X: 880, Y: 250}),
		eventlog.ActorInput(secs(2.3), 0, eventlog.ActionJump, eventlog.Position{X: 160, Y: 280}),
		eventlog.ActorInput(secs(4.0), 0, eventlog.ActionJump, eventlog.Position{X: 160, Y: 310}),
		eventlog.ObstacleSpawn(secs(4.0), eventlog.Position{X: 880, Y: 310}),
	})
	if err != nil {
		t.Fatalf("FromEvents() failed: %v", err)
	}

	s := newTestSession(t, Options{
		Runtime: testRuntime(800, 600, 10),
		Config:  cfg,
		Mode:    ModeGhost,
		Replay:  l,
		Random:  random.NewSeeded(3),
	})
	for i := 0; i < 60; i++ {
		s.Step(core.NewInputFrame())
	}
	if s.Over() {
		t.Fatal("session ended early")
	}

	var jumps []time.Duration
	for _, e := range s.Log().Events() {
		if e.Kind == eventlog.KindActorInput {
			jumps = append(jumps, e.At)
		}
	}
	if want := []time.Duration{secs(1.0), secs(2.3), secs(4.0)}; !reflect.DeepEqual(jumps, want) {
		t.Errorf("replayed jumps at %v, want %v", jumps, want)
	}

	obs := s.Obstacles()
	if len(obs) != 3 {
		t.Fatalf("got %d obstacles after 6s, want 3", len(obs))
	}
	if obs[0].GapY != 250 || obs[1].GapY != 310 {
		t.Errorf("replayed gap centers = %v, %v; want 250, 310", obs[0].GapY, obs[1].GapY)
	}
	lo, hi := s.Band().LiveRange()
	if obs[2].GapY < lo || obs[2].GapY > hi {
		t.Errorf("fallback gap center %v outside live range [%v, %v]", obs[2].GapY, lo, hi)
	}
}

func TestReplayRejectsViewportMismatch(t *testing.T) {
	live := playLive(t, random.NewSeeded(5), 30)

	_, err := NewSession(Options{
		Runtime: testRuntime(100, 24, 30),
		Config:  config.DefaultFlappyConfig(),
		Mode:    ModeGhost,
		Replay:  live.Log,
	})
	var mismatch *replay.ViewportMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("NewSession() = %v, want ViewportMismatchError", err)
	}
	if mismatch.Recorded != (replay.Viewport{Width: 80, Height: 24}) {
		t.Errorf("Recorded = %v", mismatch.Recorded)
	}
}

func TestReplayRejectsChangedRules(t *testing.T) {
	live := playLive(t, random.NewSequence(0.5), 600)

	cfg := config.DefaultFlappyConfig()
	cfg.Obstacles.OpeningRatio *= 1.6
	_, err := NewSession(Options{
		Runtime: testRuntime(80, 24, 30),
		Config:  cfg,
		Mode:    ModeGhost,
		Replay:  live.Log,
	})
	var mismatch *replay.RulesMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("NewSession() = %v, want RulesMismatchError", err)
	}
	if mismatch.Recorded != config.DefaultFlappyConfig().Fingerprint() || mismatch.Current != cfg.Fingerprint() {
		t.Errorf("mismatch = %+v", mismatch)
	}

	// Cosmetic settings do not affect replay.
	cfg = config.DefaultFlappyConfig()
	cfg.Obstacles.Palette = []string{"cyan", "magenta"}
	_, report := runGhostWith(t, live.Log, cfg)
	if report.Score != live.Score {
		t.Errorf("ghost score = %d with a new palette, live score = %d", report.Score, live.Score)
	}
}

func TestReplayRejectsMalformedLog(t *testing.T) {
	l := eventlog.New()
	_ = l.Append(eventlog.ActorReady(0, 0, 0))

	_, err := NewSession(Options{
		Runtime: testRuntime(80, 24, 30),
		Config:  config.DefaultFlappyConfig(),
		Mode:    ModeResume,
		Replay:  l,
	})
	var malformed *eventlog.MalformedLogError
	if !errors.As(err, &malformed) {
		t.Fatalf("NewSession() = %v, want MalformedLogError", err)
	}
}

func TestReplayModeNeedsLog(t *testing.T) {
	_, err := NewSession(Options{
		Runtime: testRuntime(80, 24, 30),
		Config:  config.DefaultFlappyConfig(),
		Mode:    ModeGhost,
	})
	if err == nil {
		t.Fatal("NewSession() without a log succeeded in ghost mode")
	}
}

func TestResumeShiftsActors(t *testing.T) {
	first := playLive(t, random.NewSeeded(8), 90)

	s := newTestSession(t, Options{Mode: ModeResume, Replay: first.Log, Random: random.NewSeeded(9)})
	actors := s.Actors()
	if len(actors) != 2 || actors[0].Index != 0 || actors[1].Index != 1 {
		t.Fatalf("resumed actors = %+v, want indices [0 1]", actors)
	}
	recordedVariant := first.Log.Events()[1].Variant
	if actors[1].Variant != recordedVariant {
		t.Errorf("replayed actor variant = %d, want %d", actors[1].Variant, recordedVariant)
	}

	var second *Report
	s.reporter = ReporterFunc(func(r Report) { second = &r })
	for i := 0; !s.Over() && i < 10_000; i++ {
		in := core.NewInputFrame()
		if i < 120 {
			in = autopilot(s)
		}
		s.Step(in)
	}
	if second == nil {
		t.Fatal("resumed session never ended")
	}
	if got := second.Log.Actors(); !reflect.DeepEqual(got, []int{0, 1}) {
		t.Errorf("resumed log actors = %v, want [0 1]", got)
	}

	// A resumed log replays with every actor again shifted by one.
	third := newTestSession(t, Options{Mode: ModeResume, Replay: second.Log, Random: random.NewSeeded(10)})
	var idx []int
	for _, a := range third.Actors() {
		idx = append(idx, a.Index)
	}
	if !reflect.DeepEqual(idx, []int{0, 1, 2}) {
		t.Errorf("actors after resuming a resumed log = %v, want [0 1 2]", idx)
	}
}

func TestGhostCrashDoesNotEndSession(t *testing.T) {
	// Recorded actor never jumps and hits the ground within a second.
	faller := playLive(t, random.NewSeeded(4), 0)

	s := newTestSession(t, Options{Mode: ModeResume, Replay: faller.Log, Random: random.NewSequence(0.5)})
	for i := 0; i < 90; i++ {
		s.Step(autopilot(s))
	}
	if s.Over() {
		t.Fatal("session ended when a ghost crashed")
	}
	actors := s.Actors()
	if !actors[1].Crashed {
		t.Error("ghost actor should have crashed")
	}
	if actors[0].Crashed {
		t.Error("live actor crashed")
	}
}

type memScores struct {
	saved []int
}

func (m *memScores) LoadHighScore() (int, error) { return 3, nil }

func (m *memScores) SaveHighScore(score int) error {
	m.saved = append(m.saved, score)
	return nil
}

func TestHighScoreWrittenOnIncrement(t *testing.T) {
	store := &memScores{}
	high, err := LoadHighScore(store)
	if err != nil {
		t.Fatal(err)
	}

	var report *Report
	s := newTestSession(t, Options{
		Random:    random.NewSequence(0.5),
		HighScore: high,
		Reporter:  ReporterFunc(func(r Report) { report = &r }),
	})
	for i := 0; s.State().Score < 4 && !s.Over() && i < 10_000; i++ {
		s.Step(autopilot(s))
	}
	if s.Over() {
		t.Fatalf("session ended at score %d before beating the high score", s.State().Score)
	}
	if !reflect.DeepEqual(store.saved, []int{4}) {
		t.Fatalf("saved = %v, want [4] while the session is still running", store.saved)
	}
	if s.State().HighScore != 4 {
		t.Errorf("HighScore = %d, want 4", s.State().HighScore)
	}

	for i := 0; !s.Over() && i < 10_000; i++ {
		s.Step(core.NewInputFrame())
	}
	if report == nil || !report.NewHighScore || report.Score < 4 {
		t.Errorf("report = %+v, want new high score", report)
	}
}

func TestGhostReplayLeavesHighScore(t *testing.T) {
	live := playLive(t, random.NewSequence(0.5), 600)
	if live.Score == 0 {
		t.Fatal("autopilot should clear centered gaps")
	}

	store := &memScores{}
	high, err := LoadHighScore(store)
	if err != nil {
		t.Fatal(err)
	}
	_, report := driveGhost(t, Options{
		Mode:      ModeGhost,
		Replay:    live.Log,
		Random:    random.NewSeeded(7),
		HighScore: high,
	})

	if report.Score != live.Score {
		t.Fatalf("ghost score = %d, live score = %d", report.Score, live.Score)
	}
	if report.NewHighScore {
		t.Error("ghost replay reported a new high score")
	}
	if len(store.saved) != 0 || high.Value() != 3 {
		t.Errorf("ghost replay wrote high scores %v, value %d", store.saved, high.Value())
	}
}

func TestEndCancelsTimersAndFreezesLog(t *testing.T) {
	var calls int
	s := newTestSession(t, Options{
		Random:   random.NewSeeded(6),
		Reporter: ReporterFunc(func(Report) { calls++ }),
	})
	if s.PendingTimers() == 0 {
		t.Fatal("spawn timer not scheduled")
	}
	for i := 0; !s.Over() && i < 10_000; i++ {
		s.Step(core.NewInputFrame())
	}
	if !s.Over() {
		t.Fatal("falling actor never ended the session")
	}
	if s.PendingTimers() != 0 {
		t.Errorf("PendingTimers() = %d after end", s.PendingTimers())
	}
	if !s.Log().Frozen() {
		t.Error("log not frozen")
	}

	clock, events := s.Clock(), s.Log().Len()
	for i := 0; i < 100; i++ {
		s.Step(jumpFrame())
	}
	if s.Clock() != clock || s.Log().Len() != events || calls != 1 {
		t.Errorf("session changed after end: clock %v->%v events %d->%d reports %d", clock, s.Clock(), events, s.Log().Len(), calls)
	}
	if s.Report().NewHighScore {
		t.Error("score 0 should not be a new high score")
	}
}

func TestLiveLogShape(t *testing.T) {
	origin := 5 * time.Hour
	s := newTestSession(t, Options{Random: random.NewSeeded(11), Origin: origin})
	s.Step(jumpFrame())

	events := s.Log().Events()
	kinds := []eventlog.Kind{events[0].Kind, events[1].Kind, events[2].Kind, events[3].Kind}
	want := []eventlog.Kind{eventlog.KindSessionStart, eventlog.KindActorReady, eventlog.KindObstaclesReady, eventlog.KindActorInput}
	if !reflect.DeepEqual(kinds, want) {
		t.Fatalf("kinds = %v, want %v", kinds, want)
	}
	if events[0].At != origin || events[0].Width != 80 || events[0].Height != 24 {
		t.Errorf("session start = %+v", events[0])
	}
	if events[3].At != origin+s.rt.TickPeriod() {
		t.Errorf("jump recorded at %v, want one tick after origin", events[3].At)
	}
	if events[3].Position == nil || events[3].Position.Y != 12 {
		t.Errorf("jump snapshot = %+v, want pre-physics y 12", events[3].Position)
	}
	if err := s.Log().Validate(); err != nil {
		t.Errorf("live log invalid: %v", err)
	}
}

func TestPause(t *testing.T) {
	s := newTestSession(t, Options{Random: random.NewSeeded(2)})
	s.Step(core.NewInputFrame())
	before := s.Clock()

	pause := core.NewInputFrame()
	pause.Set(core.ActionPause)
	s.Step(pause)
	for i := 0; i < 20; i++ {
		s.Step(core.NewInputFrame())
	}
	if !s.State().Paused || s.Clock() != before {
		t.Fatalf("paused session advanced: %v -> %v", before, s.Clock())
	}
	s.Step(pause)
	if s.State().Paused || s.Clock() == before {
		t.Error("unpausing did not resume the clock")
	}
}

func TestRenderDrawsActorsAndHUD(t *testing.T) {
	first := playLive(t, random.NewSeeded(8), 60)
	s := newTestSession(t, Options{Mode: ModeResume, Replay: first.Log, Random: random.NewSeeded(3)})
	// Both actors start on the same cell; move the ghost so neither hides the other.
	s.actors[1].Y = 5

	screen := core.NewScreen(80, 24)
	s.Render(screen)

	if got := screen.Row(0); got[1:5] != " 0/0" {
		t.Errorf("HUD row = %q", got)
	}
	live, ghost := 0, 0
	for y := 0; y < 24; y++ {
		for x := 0; x < 80; x++ {
			switch screen.Get(x, y) {
			case PlayerChar:
				live++
			case GhostChar:
				ghost++
			}
		}
	}
	if live != 1 || ghost != 1 {
		t.Errorf("found %d live and %d ghost actors on screen, want 1 and 1", live, ghost)
	}
	if screen.Get(0, 23) == ' ' {
		t.Error("ground not drawn")
	}
}
