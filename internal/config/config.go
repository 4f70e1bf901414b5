// Package config provides YAML-based game configuration loading,
// environment overrides and hot reload for ghostflap.
package config

import "time"

// FlappyConfig contains all tunable game parameters. Geometry that depends on
// the viewport is expressed as ratios so one file serves every terminal size.
type FlappyConfig struct {
	Physics   FlappyPhysics   `yaml:"physics"`
	Obstacles FlappyObstacles `yaml:"obstacles"`
	Player    FlappyPlayer    `yaml:"player"`
	Ground    FlappyGround    `yaml:"ground"`
}

// FlappyPhysics defines actor motion and scroll speed.
type FlappyPhysics struct {
	Gravity      float64 `yaml:"gravity"`        // viewport heights per second squared
	JumpPower    float64 `yaml:"jump_power"`     // opening diameters per second
	MaxFallSpeed float64 `yaml:"max_fall_speed"` // viewport heights per second
	ScrollSpeed  float64 `yaml:"scroll_speed"`   // viewport widths per second
}

// FlappyObstacles defines obstacle spawning and shape.
type FlappyObstacles struct {
	SpawnInterval time.Duration `yaml:"spawn_interval"`
	SpawnX        float64       `yaml:"spawn_x"` // viewport widths from the left edge
	Width         int           `yaml:"width"`
	CapHeight     int           `yaml:"cap_height"`
	OpeningRatio  float64       `yaml:"opening_ratio"` // opening diameter = height / ratio
	Palette       []string      `yaml:"palette"`
}

// FlappyPlayer defines the actor hitbox and start position.
type FlappyPlayer struct {
	XRatio   float64 `yaml:"x_ratio"` // viewport widths from the left edge
	Width    int     `yaml:"width"`
	Height   int     `yaml:"height"`
	Variants int     `yaml:"variants"`
}

// FlappyGround defines the scrolling ground strip.
type FlappyGround struct {
	Height     int      `yaml:"height"`
	TileWidth  int      `yaml:"tile_width"`
	Types      []string `yaml:"types"`
	Variations int      `yaml:"variations"`
}
