// ghostflap is a terminal side-scroller that records every session and can
// replay it as a ghost, or race against it.
//
// Usage:
//
//	ghostflap play                        - Play a live session
//	ghostflap play --replay <id|file>     - Replay an archived or exported log
//	ghostflap replays list                - List archived replays
//	ghostflap replays export <id>         - Print a replay blob
//	ghostflap replays import <file>       - Archive an exported replay
//	ghostflap replays delete <id>         - Delete an archived replay
//	ghostflap scores                      - Show high scores
//	ghostflap serve                       - Start SSH server for remote play
//
// Global flags:
//
//	--fps <rate>       - Set tick rate (default: 30)
//	--seed <value>     - Set RNG seed for reproducible obstacles
//	--db <path>        - Set database path (default: ~/.arcade/ghostflap.db)
//	--config <path>    - Game config YAML, reloaded when it changes
//	--log-level <lvl>  - debug, info, warn or error
//	--log-file <path>  - Write logs to a file
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/ghostflap/internal/config"
)

const defaultDBPath = "~/.arcade/ghostflap.db"

var (
	flagFPS      int
	flagSeed     int64
	flagDBPath   string
	flagConfig   string
	flagLogLevel string
	flagLogFile  string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "ghostflap",
	Short: "ghostflap - flap through pipes and race your own ghost",
	Long: `ghostflap is a flappy-style side-scroller for the terminal.

Every session is recorded. After a run you can save it, replay it as a
ghost, or resume it: play live alongside every actor the recording holds.

Available commands:
  play     - Play a session (optionally from a replay)
  replays  - Manage archived replays
  scores   - View high scores
  serve    - Start SSH server for remote play

Environment:
  GHOSTFLAP_DB, GHOSTFLAP_FPS, GHOSTFLAP_SEED, GHOSTFLAP_CONFIG and
  GHOSTFLAP_LOG_LEVEL set defaults; explicit flags win.

Examples:
  ghostflap play
  ghostflap play --replay 3f2a --resume
  ghostflap replays list
  ghostflap serve --ssh :2222`,
	SilenceUsage:      true,
	PersistentPreRunE: applyEnv,
}

func init() {
	rootCmd.PersistentFlags().IntVar(&flagFPS, "fps", 30, "Tick rate (frames per second)")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", defaultDBPath, "Path to the database")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to custom game config YAML")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&flagLogFile, "log-file", "", "Write logs to this file")

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(replaysCmd)
	rootCmd.AddCommand(scoresCmd)
	rootCmd.AddCommand(serveCmd)
}

// applyEnv fills every flag the user did not set from the environment.
func applyEnv(cmd *cobra.Command, _ []string) error {
	env, err := config.LoadEnv()
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if !flags.Changed("fps") && env.FPS > 0 {
		flagFPS = env.FPS
	}
	if !flags.Changed("seed") && env.Seed != 0 {
		flagSeed = env.Seed
	}
	if !flags.Changed("db") && env.DBPath != "" {
		flagDBPath = env.DBPath
	}
	if !flags.Changed("config") && env.ConfigPath != "" {
		flagConfig = env.ConfigPath
	}
	if !flags.Changed("log-level") && env.LogLevel != "" {
		flagLogLevel = env.LogLevel
	}
	if flagFPS <= 0 {
		return fmt.Errorf("--fps must be positive, got %d", flagFPS)
	}
	return nil
}

// newLogger builds the process logger. Full-screen commands pass quiet so
// logs without --log-file do not draw over the alternate screen.
func newLogger(prefix string, quiet bool) (*log.Logger, func(), error) {
	var (
		w       io.Writer = os.Stderr
		closeFn           = func() {}
	)
	switch {
	case flagLogFile != "":
		f, err := os.OpenFile(flagLogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		w = f
		closeFn = func() { f.Close() }
	case quiet:
		w = io.Discard
	}

	level, err := log.ParseLevel(flagLogLevel)
	if err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("invalid --log-level %q: %w", flagLogLevel, err)
	}

	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Prefix:          prefix,
		Level:           level,
	})
	return logger, closeFn, nil
}

// gameConfig returns the config supplier for new sessions. A custom config
// file is watched and reloaded; the returned stop func ends the watch.
func gameConfig(logger *log.Logger) (func() config.FlappyConfig, func(), error) {
	if flagConfig == "" {
		cfg, err := config.LoadFlappy("")
		if err != nil {
			return nil, nil, err
		}
		return func() config.FlappyConfig { return cfg }, func() {}, nil
	}

	w, err := config.NewWatcher(flagConfig, logger)
	if err != nil {
		return nil, nil, err
	}
	w.OnChange(func(config.FlappyConfig) {
		logger.Info("config reloaded; applies from the next session", "path", flagConfig)
	})
	stop, err := w.Watch()
	if err != nil {
		logger.Warn("config hot reload disabled", "path", flagConfig, "err", err)
		stop = func() {}
	}
	return w.Config, stop, nil
}
