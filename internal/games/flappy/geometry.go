// Package flappy implements ghostflap: a flappy-style side-scroller whose
// sessions are recorded to an event log and can be replayed as ghosts or
// resumed with a new live player.
package flappy

import (
	"math"

	"github.com/vovakirdan/ghostflap/internal/config"
	"github.com/vovakirdan/ghostflap/internal/core"
)

// Band is the vertical range obstacle openings live in, in cells.
// MinY and MaxY exclude the pillar caps; Diameter is the opening size.
type Band struct {
	MinY      float64
	MaxY      float64
	Diameter  float64
	GroundTop float64
}

// NewBand derives the playable band for a viewport.
func NewBand(cfg config.FlappyConfig, screenH int) Band {
	groundTop := float64(screenH - cfg.Ground.Height)
	caps := float64(cfg.Obstacles.CapHeight)
	return Band{
		MinY:      caps,
		MaxY:      groundTop - caps,
		Diameter:  float64(screenH) / cfg.Obstacles.OpeningRatio,
		GroundTop: groundTop,
	}
}

// LiveRange is where freshly generated gap centers are drawn from.
func (b Band) LiveRange() (lo, hi float64) {
	return b.MinY + b.Diameter/3, b.MaxY - b.Diameter/3
}

// Clamp forces a replayed gap center into [MinY, MaxY].
func (b Band) Clamp(center float64) float64 {
	return core.ClampF(center, b.MinY, b.MaxY)
}

// Opening returns the top and bottom edge of the opening around center.
// Neither edge leaves the band.
func (b Band) Opening(center float64) (top, bottom float64) {
	top = math.Max(b.MinY, center-b.Diameter/2)
	bottom = math.Min(b.MaxY, center+b.Diameter/2)
	return top, bottom
}

// BaseLengths returns the pillar segment lengths between the caps and the
// screen edge (top) or ground (bottom). Both are >= 0 for any center.
func (b Band) BaseLengths(center float64) (top, bottom float64) {
	t, bt := b.Opening(center)
	return math.Max(0, t-b.MinY), math.Max(0, b.MaxY-bt)
}
