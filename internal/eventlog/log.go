package eventlog

import "time"

// Log is an append-only ordered sequence of events. Insertion order is the
// causal order. A Log is owned by a single session and is not safe for
// concurrent mutation; once frozen it is read-only and may be shared.
type Log struct {
	events []Event
	frozen bool
}

// New creates an empty, writable log.
func New() *Log {
	return &Log{events: make([]Event, 0, 64)}
}

// FromEvents builds a writable log from events after validating them.
func FromEvents(events []Event) (*Log, error) {
	l := &Log{events: make([]Event, len(events))}
	for i, e := range events {
		l.events[i] = e.clone()
	}
	if err := l.Validate(); err != nil {
		return nil, err
	}
	return l, nil
}

// Append adds an event to the end of the log.
func (l *Log) Append(e Event) error {
	if l.frozen {
		return ErrFrozen
	}
	l.events = append(l.events, e.clone())
	return nil
}

// Freeze makes the log read-only.
func (l *Log) Freeze() {
	l.frozen = true
}

// Frozen reports whether the log is read-only.
func (l *Log) Frozen() bool {
	return l.frozen
}

// Len returns the number of events.
func (l *Log) Len() int {
	return len(l.events)
}

// Events returns a copy of the events in order.
func (l *Log) Events() []Event {
	out := make([]Event, len(l.events))
	for i, e := range l.events {
		out[i] = e.clone()
	}
	return out
}

// Clone returns a writable deep copy.
func (l *Log) Clone() *Log {
	return &Log{events: l.Events()}
}

// SessionStart returns the leading session-start event, if any.
func (l *Log) SessionStart() (Event, bool) {
	if len(l.events) == 0 || l.events[0].Kind != KindSessionStart {
		return Event{}, false
	}
	return l.events[0].clone(), true
}

// Normalize rebases every timestamp on the session-start timestamp, in place.
// Normalizing an already normalized log is a no-op.
func (l *Log) Normalize() error {
	if l.frozen {
		return ErrFrozen
	}
	start, ok := l.SessionStart()
	if !ok {
		return malformed(-1, "missing leading session-start event")
	}
	for i := range l.events {
		l.events[i].At -= start.At
	}
	return nil
}

// Normalized reports whether the session-start timestamp is zero.
func (l *Log) Normalized() bool {
	start, ok := l.SessionStart()
	return ok && start.At == 0
}

// ObstaclePositions returns the recorded gap centers, oldest first.
func (l *Log) ObstaclePositions() []float64 {
	var out []float64
	for _, e := range l.events {
		if e.Kind == KindObstacleSpawn && e.Position != nil {
			out = append(out, e.Position.Y)
		}
	}
	return out
}

// Actors returns the recorded actor indices in order of their actor-ready events.
func (l *Log) Actors() []int {
	var out []int
	for _, e := range l.events {
		if e.Kind == KindActorReady {
			out = append(out, e.Actor)
		}
	}
	return out
}

// Duration returns the span between session start and the last event.
func (l *Log) Duration() time.Duration {
	start, ok := l.SessionStart()
	if !ok || len(l.events) == 0 {
		return 0
	}
	return l.events[len(l.events)-1].At - start.At
}

// Validate checks the structural invariants every replayable log satisfies:
// exactly one session-start, first in the sequence, with a positive viewport;
// known kinds with their required fields; no event before session start;
// per-actor timestamps non-decreasing; inputs only after the actor is ready;
// and an actor with index 0.
func (l *Log) Validate() error {
	if len(l.events) == 0 {
		return malformed(-1, "log is empty")
	}
	start := l.events[0]
	if start.Kind != KindSessionStart {
		return malformed(0, "first event is %q, expected %q", start.Kind, KindSessionStart)
	}
	if start.Width <= 0 || start.Height <= 0 {
		return malformed(0, "invalid viewport %dx%d", start.Width, start.Height)
	}

	lastAt := make(map[int]time.Duration)
	ready := make(map[int]bool)

	for i, e := range l.events[1:] {
		i++
		if !e.Kind.Valid() {
			return malformed(i, "unknown event kind %q", e.Kind)
		}
		if e.Kind == KindSessionStart {
			return malformed(i, "duplicate session-start event")
		}
		if e.At < start.At {
			return malformed(i, "event precedes session start")
		}
		if e.Kind.ActorEvent() {
			if e.Actor < 0 {
				return malformed(i, "negative actor index %d", e.Actor)
			}
			if prev, seen := lastAt[e.Actor]; seen && e.At < prev {
				return malformed(i, "timestamps for actor %d go backwards", e.Actor)
			}
			lastAt[e.Actor] = e.At
		}

		switch e.Kind {
		case KindActorReady:
			if ready[e.Actor] {
				return malformed(i, "actor %d readied twice", e.Actor)
			}
			ready[e.Actor] = true
		case KindActorInput:
			if !ready[e.Actor] {
				return malformed(i, "input for actor %d before it is ready", e.Actor)
			}
			if e.Action != ActionJump {
				return malformed(i, "unknown input action %q", e.Action)
			}
			if e.Position == nil {
				return malformed(i, "input without position snapshot")
			}
		case KindObstacleSpawn:
			if e.Position == nil {
				return malformed(i, "obstacle spawn without position")
			}
		}
	}

	if !ready[0] {
		return malformed(-1, "no actor with index 0")
	}
	return nil
}
