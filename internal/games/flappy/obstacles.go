package flappy

import (
	"github.com/vovakirdan/ghostflap/internal/core"
	"github.com/vovakirdan/ghostflap/internal/random"
)

// Obstacle is a pair of pillars with an opening centered on GapY.
type Obstacle struct {
	X      float64
	GapY   float64
	Top    float64 // opening top edge
	Bottom float64 // opening bottom edge
	Color  core.Color
	Passed bool
}

// TopRect returns the collision rectangle of the upper pillar.
func (o Obstacle) TopRect(width float64) core.RectF {
	return core.NewRectF(o.X, 0, width, o.Top)
}

// BottomRect returns the collision rectangle of the lower pillar.
func (o Obstacle) BottomRect(width, groundTop float64) core.RectF {
	return core.NewRectF(o.X, o.Bottom, width, groundTop-o.Bottom)
}

// Generator decides each obstacle's gap center and color. Recorded gap
// centers are consumed first, oldest first; once they run out, centers are
// drawn live. Colors are always drawn live and never repeat back to back.
type Generator struct {
	band     Band
	rng      random.Source
	palette  []core.Color
	last     core.Color
	hasLast  bool
	recorded []float64
}

// NewGenerator creates a generator. recorded may be nil for live play.
func NewGenerator(band Band, rng random.Source, palette []core.Color, recorded []float64) *Generator {
	return &Generator{
		band:     band,
		rng:      rng,
		palette:  palette,
		recorded: append([]float64(nil), recorded...),
	}
}

// Remaining returns how many recorded gap centers are left.
func (g *Generator) Remaining() int {
	return len(g.recorded)
}

// Next returns the next obstacle's gap center and color. replayed reports
// whether the center came from the recording. An *random.EmptyDomainError
// means the palette cannot satisfy the no-repeat rule.
func (g *Generator) Next() (center float64, color core.Color, replayed bool, err error) {
	color, err = g.nextColor()
	if err != nil {
		return 0, 0, false, err
	}

	if len(g.recorded) > 0 {
		center = g.band.Clamp(g.recorded[0])
		g.recorded = g.recorded[1:]
		return center, color, true, nil
	}

	lo, hi := g.band.LiveRange()
	return g.rng.Uniform(lo, hi), color, false, nil
}

func (g *Generator) nextColor() (core.Color, error) {
	candidates := make([]core.Color, 0, len(g.palette))
	for _, c := range g.palette {
		if g.hasLast && c == g.last {
			continue
		}
		candidates = append(candidates, c)
	}
	c, err := random.Choose(g.rng, "obstacle color", candidates)
	if err != nil {
		return 0, err
	}
	g.last, g.hasLast = c, true
	return c, nil
}

// Field holds the obstacles currently in play, oldest (leftmost) first.
type Field struct {
	band      Band
	width     float64
	obstacles []Obstacle
}

// NewField creates an empty field for obstacles of the given width.
func NewField(band Band, width int) *Field {
	return &Field{band: band, width: float64(width), obstacles: make([]Obstacle, 0, 8)}
}

// Add places a new obstacle at x with its opening around center.
func (f *Field) Add(x, center float64, color core.Color) Obstacle {
	top, bottom := f.band.Opening(center)
	o := Obstacle{X: x, GapY: center, Top: top, Bottom: bottom, Color: color}
	f.obstacles = append(f.obstacles, o)
	return o
}

// Scroll moves every obstacle dx cells to the left.
func (f *Field) Scroll(dx float64) {
	for i := range f.obstacles {
		f.obstacles[i].X -= dx
	}
}

// Sweep marks obstacles whose right edge is left of x as passed and returns
// how many were newly passed.
func (f *Field) Sweep(x float64) int {
	passed := 0
	for i := range f.obstacles {
		if !f.obstacles[i].Passed && f.obstacles[i].X+f.width < x {
			f.obstacles[i].Passed = true
			passed++
		}
	}
	return passed
}

// Cull removes obstacles that have left the screen.
func (f *Field) Cull() {
	kept := f.obstacles[:0]
	for _, o := range f.obstacles {
		if o.X+f.width > 0 {
			kept = append(kept, o)
		}
	}
	f.obstacles = kept
}

// Collides reports whether r touches any pillar.
func (f *Field) Collides(r core.RectF) bool {
	for _, o := range f.obstacles {
		if r.Intersects(o.TopRect(f.width)) || r.Intersects(o.BottomRect(f.width, f.band.GroundTop)) {
			return true
		}
	}
	return false
}

// Obstacles returns a copy of the obstacles in play.
func (f *Field) Obstacles() []Obstacle {
	return append([]Obstacle(nil), f.obstacles...)
}

// Width returns the obstacle width in cells.
func (f *Field) Width() float64 {
	return f.width
}
