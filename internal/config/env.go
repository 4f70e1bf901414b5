package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Env holds settings that may come from the environment. Explicit CLI flags
// take precedence over these.
type Env struct {
	DBPath     string `env:"GHOSTFLAP_DB"`
	FPS        int    `env:"GHOSTFLAP_FPS" envDefault:"30"`
	Seed       int64  `env:"GHOSTFLAP_SEED"`
	ConfigPath string `env:"GHOSTFLAP_CONFIG"`
	LogLevel   string `env:"GHOSTFLAP_LOG_LEVEL" envDefault:"info"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// LoadEnv parses Env from the process environment.
func LoadEnv() (Env, error) {
	var e Env
	if err := ParseEnv(&e); err != nil {
		return Env{}, err
	}
	return e, nil
}
