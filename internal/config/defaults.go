package config

import (
	_ "embed"
	"time"
)

//go:embed defaults/ghostflap.yaml
var defaultFlappyYAML []byte

// DefaultFlappyConfig returns the built-in configuration. It matches the
// embedded defaults/ghostflap.yaml.
func DefaultFlappyConfig() FlappyConfig {
	return FlappyConfig{
		Physics: FlappyPhysics{
			Gravity:      1.0,
			JumpPower:    1.5,
			MaxFallSpeed: 1.2,
			ScrollSpeed:  0.2,
		},
		Obstacles: FlappyObstacles{
			SpawnInterval: 2 * time.Second,
			SpawnX:        1.1,
			Width:         4,
			CapHeight:     1,
			OpeningRatio:  3.5,
			Palette:       []string{"red", "yellow", "green", "blue"},
		},
		Player: FlappyPlayer{
			XRatio:   0.2,
			Width:    2,
			Height:   1,
			Variants: 3,
		},
		Ground: FlappyGround{
			Height:     1,
			TileWidth:  4,
			Types:      []string{"grass", "snow"},
			Variations: 4,
		},
	}
}
