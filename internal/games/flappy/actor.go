package flappy

import "github.com/vovakirdan/ghostflap/internal/core"

// Actor is one bird. Index 0 is the primary actor: its collisions end the
// session and its passed obstacles are the score.
type Actor struct {
	Index   int
	Variant int
	X       float64
	Y       float64 // top of hitbox
	Vel     float64 // cells per second, positive is down
	Crashed bool
}

// Primary reports whether this actor drives the session.
func (a Actor) Primary() bool {
	return a.Index == 0
}

// Rect returns the actor's hitbox.
func (a Actor) Rect(w, h int) core.RectF {
	return core.NewRectF(a.X, a.Y, float64(w), float64(h))
}
