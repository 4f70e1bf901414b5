package flappy

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/ghostflap/internal/config"
	"github.com/vovakirdan/ghostflap/internal/core"
	"github.com/vovakirdan/ghostflap/internal/eventlog"
	"github.com/vovakirdan/ghostflap/internal/metrics"
	"github.com/vovakirdan/ghostflap/internal/random"
	"github.com/vovakirdan/ghostflap/internal/replay"
	"github.com/vovakirdan/ghostflap/internal/schedule"
)

// Mode selects how a session treats a supplied log.
type Mode int

const (
	// ModeLive plays with one fresh actor and no log.
	ModeLive Mode = iota
	// ModeGhost replays a log non-interactively under its original indices.
	ModeGhost
	// ModeResume replays a log with every actor shifted up one index and a
	// new live actor at index 0.
	ModeResume
)

func (m Mode) String() string {
	switch m {
	case ModeLive:
		return "live"
	case ModeGhost:
		return "ghost"
	case ModeResume:
		return "resume"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// Report is handed to the Reporter once a session ends.
type Report struct {
	Mode         Mode
	Score        int
	NewHighScore bool
	Log          *eventlog.Log // frozen
	Err          error         // set when the session ended on an internal fault
}

// Reporter receives the end-of-session report.
type Reporter interface {
	SessionEnded(Report)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(Report)

// SessionEnded implements Reporter.
func (f ReporterFunc) SessionEnded(r Report) { f(r) }

// Options configures a session.
type Options struct {
	Runtime core.RuntimeConfig
	Config  config.FlappyConfig
	Mode    Mode
	// Replay is the log to replay in ghost and resume modes. It is cloned
	// and normalized; the caller's copy is not modified.
	Replay    *eventlog.Log
	Random    random.Source // nil: seeded from Runtime.Seed, or unseeded when 0
	HighScore *HighScore    // nil: in-memory, starting at 0
	Reporter  Reporter
	Logger    *log.Logger
	// Origin is added to every recorded timestamp.
	Origin time.Duration
}

// Session owns one play-through: actors, obstacles, ground, the timer queue
// and the event log being recorded.
type Session struct {
	mode     Mode
	rt       core.RuntimeConfig
	cfg      config.FlappyConfig
	band     Band
	rng      random.Source
	high     *HighScore
	reporter Reporter
	logger   *log.Logger
	origin   time.Duration

	timers *schedule.Scheduler
	log    *eventlog.Log
	gen    *Generator
	field  *Field
	ground *Ground

	actors    []*Actor // sorted by index
	startX    float64
	jumpSpeed float64

	tick       int
	score      int
	startHigh  int
	spawned    int
	paused     bool
	over       bool
	err        error
	replayPlan *replay.Plan
}

// NewSession validates the options, checks any replay log against the
// viewport and rules fingerprint, and starts the session at clock zero.
// Replay errors (*eventlog.MalformedLogError, *replay.ViewportMismatchError,
// *replay.RulesMismatchError) are returned before any actor or obstacle
// exists.
func NewSession(opts Options) (*Session, error) {
	if err := opts.Config.Validate(); err != nil {
		return nil, err
	}
	palette := make([]core.Color, 0, len(opts.Config.Obstacles.Palette))
	for _, name := range opts.Config.Obstacles.Palette {
		c, err := core.ParseColor(name)
		if err != nil {
			return nil, fmt.Errorf("flappy: palette: %w", err)
		}
		palette = append(palette, c)
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	var plan *replay.Plan
	if opts.Mode != ModeLive {
		if opts.Replay == nil {
			return nil, fmt.Errorf("flappy: %s mode needs a log to replay", opts.Mode)
		}
		recorded := opts.Replay.Clone()
		if err := recorded.Normalize(); err != nil {
			metrics.ReplaysRejected.WithLabelValues(metrics.ReasonMalformed).Inc()
			return nil, err
		}
		shift := 0
		if opts.Mode == ModeResume {
			shift = 1
		}
		var err error
		viewport := replay.Viewport{Width: opts.Runtime.ScreenW, Height: opts.Runtime.ScreenH}
		plan, err = replay.Build(recorded, viewport, opts.Config.Fingerprint(), shift)
		if err != nil {
			logger.Warn("replay rejected", "mode", opts.Mode, "err", err)
			return nil, err
		}
	}

	rng := opts.Random
	if rng == nil {
		if opts.Runtime.Seed != 0 {
			rng = random.NewSeeded(opts.Runtime.Seed)
		} else {
			src, err := random.NewUnseeded()
			if err != nil {
				return nil, err
			}
			rng = src
		}
	}

	high := opts.HighScore
	if high == nil {
		high, _ = LoadHighScore(nil)
	}

	band := NewBand(opts.Config, opts.Runtime.ScreenH)
	s := &Session{
		mode:       opts.Mode,
		rt:         opts.Runtime,
		cfg:        opts.Config,
		band:       band,
		rng:        rng,
		high:       high,
		reporter:   opts.Reporter,
		logger:     logger,
		origin:     opts.Origin,
		timers:     schedule.New(),
		log:        eventlog.New(),
		field:      NewField(band, opts.Config.Obstacles.Width),
		startX:     float64(opts.Runtime.ScreenW) * opts.Config.Player.XRatio,
		jumpSpeed:  opts.Config.Physics.JumpPower * band.Diameter,
		startHigh:  high.Value(),
		replayPlan: plan,
	}

	var recorded []float64
	if plan != nil {
		recorded = plan.Obstacles()
	}
	s.gen = NewGenerator(band, rng, palette, recorded)

	ground, err := NewGround(rng, s.rt.ScreenW, s.cfg.Ground.TileWidth, len(s.cfg.Ground.Types), s.cfg.Ground.Variations)
	if err != nil {
		return nil, err
	}
	s.ground = ground

	s.record(eventlog.SessionStart(s.now(), s.rt.ScreenW, s.rt.ScreenH).WithRules(s.cfg.Fingerprint()))

	if s.mode != ModeGhost {
		variant, err := random.Choose(rng, "player variant", variants(s.cfg.Player.Variants))
		if err != nil {
			return nil, err
		}
		s.readyActor(0, variant)
	}
	if plan != nil {
		plan.Schedule(s.timers, replayDriver{s})
	}
	s.timers.Every(s.cfg.Obstacles.SpawnInterval, s.spawn)
	s.timers.Advance(0)
	s.record(eventlog.ObstaclesReady(s.now()))

	metrics.SessionsStarted.WithLabelValues(s.mode.String()).Inc()
	s.logger.Debug("session started",
		"mode", s.mode,
		"viewport", fmt.Sprintf("%dx%d", s.rt.ScreenW, s.rt.ScreenH),
		"actors", len(s.actors),
		"recorded_obstacles", s.gen.Remaining(),
	)
	return s, nil
}

func variants(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

// now is the timestamp recorded for events raised at the current instant.
// Inside a timer callback it is that callback's fire time.
func (s *Session) now() time.Duration {
	return s.origin + s.timers.Now()
}

func (s *Session) record(e eventlog.Event) {
	if err := s.log.Append(e); err != nil && !errors.Is(err, eventlog.ErrFrozen) {
		s.logger.Error("record event", "kind", e.Kind, "err", err)
	}
}

// Step advances the session by one tick.
func (s *Session) Step(in core.InputFrame) core.StepResult {
	if s.over {
		return core.StepResult{State: s.State()}
	}

	if in.Has(core.ActionPause) {
		s.paused = !s.paused
	}
	if s.paused {
		return core.StepResult{State: s.State()}
	}

	s.tick++
	dt := s.rt.TickPeriod()
	clock := time.Duration(s.tick) * dt

	// Obstacle spawns and replayed actor events due this tick.
	s.timers.Advance(clock)
	if s.over {
		return core.StepResult{State: s.State()}
	}

	if s.mode != ModeGhost && in.Has(core.ActionJump) {
		if a := s.actor(0); a != nil && !a.Crashed {
			s.record(eventlog.ActorInput(s.now(), 0, eventlog.ActionJump, eventlog.Position{X: a.X, Y: a.Y}))
			a.Vel = -s.jumpSpeed
		}
	}

	secs := dt.Seconds()
	h := float64(s.rt.ScreenH)
	gravity := s.cfg.Physics.Gravity * h
	maxFall := s.cfg.Physics.MaxFallSpeed * h
	for _, a := range s.actors {
		if a.Crashed {
			continue
		}
		a.Vel = min(a.Vel+gravity*secs, maxFall)
		a.Y += a.Vel * secs
	}

	w := float64(s.rt.ScreenW)
	dx := s.cfg.Physics.ScrollSpeed * w * secs
	s.field.Scroll(dx)
	if err := s.ground.Scroll(dx, w, s.spawned >= s.high.Value()); err != nil {
		s.end(err)
		return core.StepResult{State: s.State()}
	}

	if p := s.actor(0); p != nil {
		for n := s.field.Sweep(p.X); n > 0; n-- {
			s.score++
			if s.mode != ModeGhost {
				s.high.Offer(s.score)
			}
		}
	}
	s.field.Cull()

	s.checkCollisions()

	return core.StepResult{State: s.State()}
}

func (s *Session) checkCollisions() {
	pw, ph := s.cfg.Player.Width, s.cfg.Player.Height
	for _, a := range s.actors {
		if a.Crashed {
			continue
		}
		r := a.Rect(pw, ph)
		hit := a.Y <= 0 || r.Bottom() >= s.band.GroundTop || s.field.Collides(r)
		if !hit {
			continue
		}
		a.Crashed = true
		if a.Y+float64(ph) > s.band.GroundTop {
			a.Y = s.band.GroundTop - float64(ph)
		}
		if a.Primary() {
			s.end(nil)
			return
		}
		s.logger.Debug("ghost crashed", "actor", a.Index, "tick", s.tick)
	}
}

// spawn is the periodic obstacle timer.
func (s *Session) spawn() {
	center, color, replayed, err := s.gen.Next()
	if err != nil {
		s.logger.Error("obstacle generation failed", "err", err)
		s.end(err)
		return
	}
	x := float64(s.rt.ScreenW) * s.cfg.Obstacles.SpawnX
	s.field.Add(x, center, color)
	s.spawned++
	s.record(eventlog.ObstacleSpawn(s.now(), eventlog.Position{X: x, Y: center}))

	source := metrics.SourceLive
	if replayed {
		source = metrics.SourceReplay
	} else if s.replayPlan != nil && s.spawned == len(s.replayPlan.Obstacles())+1 {
		s.logger.Info("recorded obstacles exhausted, generating live", "spawned", s.spawned)
	}
	metrics.ObstaclesSpawned.WithLabelValues(source).Inc()
}

// end stops the session exactly once: pending timers are cancelled, the log
// is frozen and the reporter is notified.
func (s *Session) end(err error) {
	if s.over {
		return
	}
	s.over = true
	s.err = err
	s.timers.Stop()
	s.log.Freeze()

	metrics.SessionsEnded.WithLabelValues(s.mode.String()).Inc()
	metrics.FinalScore.Observe(float64(s.score))
	s.logger.Info("session ended",
		"mode", s.mode,
		"score", s.score,
		"high_score", s.high.Value(),
		"ticks", s.tick,
		"events", s.log.Len(),
	)

	if s.reporter != nil {
		s.reporter.SessionEnded(s.Report())
	}
}

// Report returns the end-of-session report. It is only meaningful once the
// session is over.
func (s *Session) Report() Report {
	return Report{
		Mode:         s.mode,
		Score:        s.score,
		NewHighScore: s.mode != ModeGhost && s.score > s.startHigh,
		Log:          s.log,
		Err:          s.err,
	}
}

func (s *Session) actor(index int) *Actor {
	i, ok := slices.BinarySearchFunc(s.actors, index, func(a *Actor, idx int) int { return a.Index - idx })
	if !ok {
		return nil
	}
	return s.actors[i]
}

func (s *Session) readyActor(index, variant int) {
	if s.actor(index) != nil {
		return
	}
	a := &Actor{
		Index:   index,
		Variant: variant,
		X:       s.startX,
		Y:       float64(s.rt.ScreenH) / 2,
	}
	i, _ := slices.BinarySearchFunc(s.actors, index, func(a *Actor, idx int) int { return a.Index - idx })
	s.actors = slices.Insert(s.actors, i, a)
	s.record(eventlog.ActorReady(s.now(), index, variant))
}

// replayDriver lets the replay plan drive the session's actors.
type replayDriver struct {
	s *Session
}

func (d replayDriver) ReadyActor(index, variant int) {
	d.s.readyActor(index, variant)
}

func (d replayDriver) PlaceActor(index int, pos eventlog.Position) {
	if a := d.s.actor(index); a != nil && !a.Crashed {
		a.X, a.Y = pos.X, pos.Y
	}
}

func (d replayDriver) Act(index int, action eventlog.InputAction) {
	a := d.s.actor(index)
	if a == nil || a.Crashed || action != eventlog.ActionJump {
		return
	}
	d.s.record(eventlog.ActorInput(d.s.now(), index, action, eventlog.Position{X: a.X, Y: a.Y}))
	a.Vel = -d.s.jumpSpeed
}

// State returns the current game state.
func (s *Session) State() core.GameState {
	return core.GameState{
		Score:     s.score,
		HighScore: s.high.Value(),
		GameOver:  s.over,
		Paused:    s.paused,
	}
}

// Mode returns the session mode.
func (s *Session) Mode() Mode { return s.mode }

// Clock returns the simulated time since session start.
func (s *Session) Clock() time.Duration {
	return time.Duration(s.tick) * s.rt.TickPeriod()
}

// Log returns the session's event log. It is frozen once the session is over.
func (s *Session) Log() *eventlog.Log { return s.log }

// Err returns the internal fault that ended the session, if any.
func (s *Session) Err() error { return s.err }

// Over reports whether the session has ended.
func (s *Session) Over() bool { return s.over }

// Spawned returns the number of obstacles spawned so far.
func (s *Session) Spawned() int { return s.spawned }

// PendingTimers returns the number of scheduled callbacks.
func (s *Session) PendingTimers() int { return s.timers.Pending() }

// Band returns the vertical geometry obstacles are built in.
func (s *Session) Band() Band { return s.band }

// Actors returns copies of every actor, ordered by index.
func (s *Session) Actors() []Actor {
	out := make([]Actor, len(s.actors))
	for i, a := range s.actors {
		out[i] = *a
	}
	return out
}

// Obstacles returns copies of the obstacles in play.
func (s *Session) Obstacles() []Obstacle { return s.field.Obstacles() }

// Ground returns the ground tiles and the active ground type index.
func (s *Session) Ground() ([]Tile, int) { return s.ground.Tiles(), s.ground.TypeIndex() }
