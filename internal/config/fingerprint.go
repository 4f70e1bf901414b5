package config

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"gopkg.in/yaml.v3"
)

// rules is the part of FlappyConfig that decides where actors and obstacles
// end up. Palette, ground art and player variants only change how a session
// looks.
type rules struct {
	Physics       FlappyPhysics `yaml:"physics"`
	SpawnInterval time.Duration `yaml:"spawn_interval"`
	SpawnX        float64       `yaml:"spawn_x"`
	ObstacleWidth int           `yaml:"obstacle_width"`
	CapHeight     int           `yaml:"cap_height"`
	OpeningRatio  float64       `yaml:"opening_ratio"`
	PlayerX       float64       `yaml:"player_x"`
	PlayerWidth   int           `yaml:"player_width"`
	PlayerHeight  int           `yaml:"player_height"`
	GroundHeight  int           `yaml:"ground_height"`
}

// Fingerprint identifies the game rules a session is played under. Two
// configs with the same fingerprint replay a recorded session identically.
func (c FlappyConfig) Fingerprint() string {
	data, err := yaml.Marshal(rules{
		Physics:       c.Physics,
		SpawnInterval: c.Obstacles.SpawnInterval,
		SpawnX:        c.Obstacles.SpawnX,
		ObstacleWidth: c.Obstacles.Width,
		CapHeight:     c.Obstacles.CapHeight,
		OpeningRatio:  c.Obstacles.OpeningRatio,
		PlayerX:       c.Player.XRatio,
		PlayerWidth:   c.Player.Width,
		PlayerHeight:  c.Player.Height,
		GroundHeight:  c.Ground.Height,
	})
	if err != nil {
		// Plain numeric fields always marshal.
		panic("config: fingerprint: " + err.Error())
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:8])
}
