package flappy

import "github.com/vovakirdan/ghostflap/internal/random"

// Tile is one ground segment.
type Tile struct {
	X         float64
	Type      int // index into the configured ground types
	Variation int
}

// Ground is the scrolling strip under the play area. Adjacent tiles differ
// by at most one variation step. The strip switches from the first ground
// type to the second once the obstacle count reaches the high score.
type Ground struct {
	rng        random.Source
	tileWidth  float64
	types      int
	variations int
	typeIndex  int
	tiles      []Tile
}

// NewGround fills a strip covering screenW cells.
func NewGround(rng random.Source, screenW, tileWidth, types, variations int) (*Ground, error) {
	g := &Ground{
		rng:        rng,
		tileWidth:  float64(tileWidth),
		types:      types,
		variations: variations,
	}
	if err := g.fill(float64(screenW)); err != nil {
		return nil, err
	}
	return g, nil
}

// Scroll moves the strip dx cells left, recycling tiles that leave the
// screen. switchType asks for the next generated tiles to use the second type.
func (g *Ground) Scroll(dx, screenW float64, switchType bool) error {
	for i := range g.tiles {
		g.tiles[i].X -= dx
	}
	for len(g.tiles) > 0 && g.tiles[0].X+g.tileWidth < 0 {
		g.tiles = g.tiles[1:]
		if g.typeIndex == 0 && switchType && g.types > 1 {
			g.typeIndex = 1
		}
	}
	return g.fill(screenW)
}

func (g *Ground) fill(screenW float64) error {
	for len(g.tiles) == 0 || g.tiles[len(g.tiles)-1].X <= screenW {
		if err := g.add(); err != nil {
			return err
		}
	}
	return nil
}

func (g *Ground) add() error {
	var x float64
	var choices []int
	if n := len(g.tiles); n > 0 {
		last := g.tiles[n-1]
		x = last.X + g.tileWidth
		choices = []int{max(0, last.Variation-1), min(g.variations-1, last.Variation+1)}
	} else {
		for v := 0; v < g.variations; v++ {
			choices = append(choices, v)
		}
	}
	v, err := random.Choose(g.rng, "ground variation", choices)
	if err != nil {
		return err
	}
	g.tiles = append(g.tiles, Tile{X: x, Type: g.typeIndex, Variation: v})
	return nil
}

// Tiles returns a copy of the current tiles, leftmost first.
func (g *Ground) Tiles() []Tile {
	return append([]Tile(nil), g.tiles...)
}

// TypeIndex returns the ground type used for new tiles.
func (g *Ground) TypeIndex() int {
	return g.typeIndex
}
