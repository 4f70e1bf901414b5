// Package replay turns a recorded event log into timed callbacks that
// re-drive actors in a new session.
package replay

import (
	"fmt"
	"time"

	"github.com/vovakirdan/ghostflap/internal/eventlog"
	"github.com/vovakirdan/ghostflap/internal/metrics"
	"github.com/vovakirdan/ghostflap/internal/schedule"
)

// Viewport is a screen size in cells.
type Viewport struct {
	Width  int
	Height int
}

func (v Viewport) String() string {
	return fmt.Sprintf("%dx%d", v.Width, v.Height)
}

// ViewportMismatchError rejects a replay recorded at a different screen size.
type ViewportMismatchError struct {
	Recorded Viewport
	Current  Viewport
}

func (e *ViewportMismatchError) Error() string {
	return fmt.Sprintf("replay: recorded at %s, current viewport is %s", e.Recorded, e.Current)
}

// RulesMismatchError rejects a replay recorded under different game rules.
type RulesMismatchError struct {
	Recorded string
	Current  string
}

func (e *RulesMismatchError) Error() string {
	recorded := e.Recorded
	if recorded == "" {
		recorded = "unknown rules"
	}
	return fmt.Sprintf("replay: recorded under rules %s, current rules are %s", recorded, e.Current)
}

// Actuator is the part of a session a replay drives.
type Actuator interface {
	// ReadyActor creates the actor at index with its recorded visual variant.
	ReadyActor(index, variant int)
	// PlaceActor forces the actor to a recorded position.
	PlaceActor(index int, pos eventlog.Position)
	// Act issues an input action for the actor.
	Act(index int, action eventlog.InputAction)
}

// Entry is one replayed actor event, already shifted to its session index.
type Entry struct {
	Delay    time.Duration
	Kind     eventlog.Kind
	Actor    int
	Variant  int
	Action   eventlog.InputAction
	Position eventlog.Position
}

// Plan is everything a session needs to replay a log.
type Plan struct {
	viewport  Viewport
	shift     int
	offsets   map[int]time.Duration
	entries   []Entry
	obstacles []float64
	actors    []int
}

// Build validates log against the current viewport and rules fingerprint and
// derives the replay plan. Every recorded actor index is increased by shift. Each actor event is
// delayed by its timestamp minus that actor's actor-ready timestamp.
//
// Nothing is scheduled here; an error means the replay must not start.
func Build(log *eventlog.Log, current Viewport, rules string, shift int) (*Plan, error) {
	if err := log.Validate(); err != nil {
		metrics.ReplaysRejected.WithLabelValues(metrics.ReasonMalformed).Inc()
		return nil, err
	}
	start, _ := log.SessionStart()
	recorded := Viewport{Width: start.Width, Height: start.Height}
	if recorded != current {
		metrics.ReplaysRejected.WithLabelValues(metrics.ReasonViewport).Inc()
		return nil, &ViewportMismatchError{Recorded: recorded, Current: current}
	}
	if start.Rules != rules {
		metrics.ReplaysRejected.WithLabelValues(metrics.ReasonRules).Inc()
		return nil, &RulesMismatchError{Recorded: start.Rules, Current: rules}
	}

	events := log.Events()
	p := &Plan{
		viewport:  current,
		shift:     shift,
		offsets:   make(map[int]time.Duration),
		obstacles: log.ObstaclePositions(),
	}
	for _, e := range events {
		if e.Kind == eventlog.KindActorReady {
			p.offsets[e.Actor] = e.At
			p.actors = append(p.actors, e.Actor+shift)
		}
	}

	for _, e := range events {
		if !e.Kind.ActorEvent() {
			continue
		}
		entry := Entry{
			Delay:   e.At - p.offsets[e.Actor],
			Kind:    e.Kind,
			Actor:   e.Actor + shift,
			Variant: e.Variant,
			Action:  e.Action,
		}
		if e.Position != nil {
			entry.Position = *e.Position
		}
		p.entries = append(p.entries, entry)
	}
	return p, nil
}

// Viewport returns the viewport the plan was checked against.
func (p *Plan) Viewport() Viewport {
	return p.viewport
}

// Shift returns the index shift applied to recorded actors.
func (p *Plan) Shift() int {
	return p.shift
}

// JumpOffset returns the recorded actor-ready timestamp of a recorded
// (unshifted) actor index.
func (p *Plan) JumpOffset(actor int) (time.Duration, bool) {
	d, ok := p.offsets[actor]
	return d, ok
}

// Entries returns the actor events in recorded order.
func (p *Plan) Entries() []Entry {
	return append([]Entry(nil), p.entries...)
}

// Obstacles returns the recorded gap centers, oldest first.
func (p *Plan) Obstacles() []float64 {
	return append([]float64(nil), p.obstacles...)
}

// Actors returns the session indices of the replayed actors.
func (p *Plan) Actors() []int {
	return append([]int(nil), p.actors...)
}

// Schedule registers one callback per entry on s, relative to s.Now().
// An input callback places the actor at its recorded position before
// re-issuing the action.
func (p *Plan) Schedule(s *schedule.Scheduler, act Actuator) []schedule.ID {
	ids := make([]schedule.ID, 0, len(p.entries))
	for _, e := range p.entries {
		var fn func()
		switch e.Kind {
		case eventlog.KindActorReady:
			fn = func() {
				metrics.ReplayCallbacks.WithLabelValues(string(e.Kind)).Inc()
				act.ReadyActor(e.Actor, e.Variant)
			}
		case eventlog.KindActorInput:
			fn = func() {
				metrics.ReplayCallbacks.WithLabelValues(string(e.Kind)).Inc()
				act.PlaceActor(e.Actor, e.Position)
				act.Act(e.Actor, e.Action)
			}
		default:
			continue
		}
		ids = append(ids, s.After(e.Delay, fn))
	}
	return ids
}
