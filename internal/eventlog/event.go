// Package eventlog records a played session as an ordered, replayable
// sequence of timestamped events.
package eventlog

import "time"

// Kind tags an Event.
type Kind string

const (
	KindSessionStart   Kind = "session-start"
	KindActorReady     Kind = "actor-ready"
	KindActorInput     Kind = "actor-input"
	KindObstacleSpawn  Kind = "obstacle-spawn"
	KindObstaclesReady Kind = "obstacles-ready"
)

// Valid reports whether k is a known event kind.
func (k Kind) Valid() bool {
	switch k {
	case KindSessionStart, KindActorReady, KindActorInput, KindObstacleSpawn, KindObstaclesReady:
		return true
	}
	return false
}

// ActorEvent reports whether events of this kind belong to an actor.
func (k Kind) ActorEvent() bool {
	return k == KindActorReady || k == KindActorInput
}

// InputAction is the action carried by an actor-input event.
type InputAction string

// ActionJump is currently the only input action.
const ActionJump InputAction = "jump"

// Position is a point in viewport cells.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Event is a tagged record. Only the fields relevant to Kind are set:
//
//	session-start    Width, Height, Rules
//	actor-ready      Actor, Variant
//	actor-input      Actor, Action, Position
//	obstacle-spawn   Position (only Y matters at replay)
//	obstacles-ready  nothing
type Event struct {
	Kind     Kind          `json:"kind"`
	At       time.Duration `json:"at"`
	Width    int           `json:"width,omitempty"`
	Height   int           `json:"height,omitempty"`
	Rules    string        `json:"rules,omitempty"`
	Actor    int           `json:"actor,omitempty"`
	Variant  int           `json:"variant,omitempty"`
	Action   InputAction   `json:"action,omitempty"`
	Position *Position     `json:"position,omitempty"`
}

// SessionStart records the viewport a session was played in.
func SessionStart(at time.Duration, width, height int) Event {
	return Event{Kind: KindSessionStart, At: at, Width: width, Height: height}
}

// WithRules tags a session-start event with the fingerprint of the game rules
// it was played under.
func (e Event) WithRules(rules string) Event {
	e.Rules = rules
	return e
}

// ActorReady records an actor joining the session.
func ActorReady(at time.Duration, actor, variant int) Event {
	return Event{Kind: KindActorReady, At: at, Actor: actor, Variant: variant}
}

// ActorInput records an input together with the actor's position when it was issued.
func ActorInput(at time.Duration, actor int, action InputAction, pos Position) Event {
	return Event{Kind: KindActorInput, At: at, Actor: actor, Action: action, Position: &pos}
}

// ObstacleSpawn records an obstacle placement.
func ObstacleSpawn(at time.Duration, pos Position) Event {
	return Event{Kind: KindObstacleSpawn, At: at, Position: &pos}
}

// ObstaclesReady marks the end of the obstacle-definition phase.
func ObstaclesReady(at time.Duration) Event {
	return Event{Kind: KindObstaclesReady, At: at}
}

func (e Event) clone() Event {
	if e.Position != nil {
		p := *e.Position
		e.Position = &p
	}
	return e
}
