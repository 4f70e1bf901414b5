package config

import (
	"fmt"
	"strings"

	"github.com/vovakirdan/ghostflap/internal/core"
)

// Validate rejects configurations the game cannot run with. A palette needs
// at least two colors because consecutive obstacles never share one.
func (c FlappyConfig) Validate() error {
	var errs []string
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Sprintf(format, args...))
		}
	}

	p := c.Physics
	check(p.Gravity > 0, "physics.gravity must be positive")
	check(p.JumpPower > 0, "physics.jump_power must be positive")
	check(p.MaxFallSpeed > 0, "physics.max_fall_speed must be positive")
	check(p.ScrollSpeed > 0, "physics.scroll_speed must be positive")

	o := c.Obstacles
	check(o.SpawnInterval > 0, "obstacles.spawn_interval must be positive")
	check(o.SpawnX >= 1, "obstacles.spawn_x must be at least 1 (off screen)")
	check(o.Width > 0, "obstacles.width must be positive")
	check(o.CapHeight >= 0, "obstacles.cap_height must not be negative")
	check(o.OpeningRatio > 1, "obstacles.opening_ratio must be greater than 1")
	check(len(o.Palette) >= 2, "obstacles.palette needs at least 2 colors, got %d", len(o.Palette))
	seen := make(map[string]bool)
	for _, name := range o.Palette {
		if _, err := core.ParseColor(name); err != nil {
			errs = append(errs, fmt.Sprintf("obstacles.palette: %v", err))
		}
		check(!seen[name], "obstacles.palette: duplicate color %q", name)
		seen[name] = true
	}

	pl := c.Player
	check(pl.XRatio > 0 && pl.XRatio < 1, "player.x_ratio must be in (0, 1)")
	check(pl.Width > 0 && pl.Height > 0, "player size must be positive")
	check(pl.Variants > 0, "player.variants must be positive")

	g := c.Ground
	check(g.Height > 0, "ground.height must be positive")
	check(g.TileWidth > 0, "ground.tile_width must be positive")
	check(len(g.Types) > 0, "ground.types must not be empty")
	check(g.Variations > 0, "ground.variations must be positive")

	if len(errs) > 0 {
		return fmt.Errorf("config: invalid:\n  %s", strings.Join(errs, "\n  "))
	}
	return nil
}
