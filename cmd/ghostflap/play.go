package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/ghostflap/internal/core"
	"github.com/vovakirdan/ghostflap/internal/eventlog"
	"github.com/vovakirdan/ghostflap/internal/games/flappy"
	"github.com/vovakirdan/ghostflap/internal/platform/tui"
	"github.com/vovakirdan/ghostflap/internal/storage"
)

var (
	flagReplay string
	flagGhost  bool
	flagResume bool
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play ghostflap",
	Long: `Start a session in the terminal.

Controls:
  Space/Up/W - Flap
  P/Esc      - Pause
  Ctrl+S     - Screenshot
  Q/Ctrl+C   - Quit

After a session ends:
  Space/Enter - Play again
  S           - Save this run to the save slot
  G           - Watch the saved run as a ghost
  R           - Resume: play live alongside the saved run
  I           - Import an exported run into the save slot
  E           - Export this run to the clipboard (OSC52)
  Q           - Quit

A replay only plays in a terminal of the size it was recorded at.

Examples:
  ghostflap play
  ghostflap play --seed 42
  ghostflap play --replay 3f2a9c          # archived replay, watched as a ghost
  ghostflap play --replay run.json --resume
  ghostflap play --config ./my-flappy.yaml`,
	Args: cobra.NoArgs,
	RunE: runPlay,
}

func init() {
	playCmd.Flags().StringVar(&flagReplay, "replay", "", "Archived replay ID (or prefix) or exported replay file")
	playCmd.Flags().BoolVar(&flagGhost, "ghost", false, "Watch the replay (default with --replay)")
	playCmd.Flags().BoolVar(&flagResume, "resume", false, "Play live alongside the replay")
}

func runPlay(_ *cobra.Command, _ []string) error {
	mode, err := playMode()
	if err != nil {
		return err
	}

	logger, closeLog, err := newLogger("ghostflap", true)
	if err != nil {
		return err
	}
	defer closeLog()

	width, height := 80, 24
	if w, h, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil {
		width = w
		height = h
	}

	configFn, stopWatch, err := gameConfig(logger)
	if err != nil {
		return err
	}
	defer stopWatch()

	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not open database: %v\n", err)
		store = nil
	}
	if store != nil {
		defer store.Close()
	}

	var recorded *eventlog.Log
	if flagReplay != "" {
		recorded, err = loadReplay(store, flagReplay)
		if err != nil {
			return err
		}
	}

	// A rejected replay opens the report surface with the reason.
	opts := tui.Options{
		Runtime: core.RuntimeConfig{
			ScreenW:  width,
			ScreenH:  height,
			TickRate: flagFPS,
			Seed:     flagSeed,
		},
		Config: configFn,
		Store:  store,
		Logger: logger,
		Term:   os.Getenv("TERM"),
		Mode:   mode,
		Replay: recorded,
	}
	return tui.Run(opts)
}

func playMode() (flappy.Mode, error) {
	switch {
	case flagGhost && flagResume:
		return 0, errors.New("--ghost and --resume are mutually exclusive")
	case flagReplay == "" && (flagGhost || flagResume):
		return 0, errors.New("--ghost and --resume need --replay")
	case flagResume:
		return flappy.ModeResume, nil
	case flagReplay != "":
		return flappy.ModeGhost, nil
	default:
		return flappy.ModeLive, nil
	}
}

// loadReplay reads ref as an exported replay file when such a file exists,
// otherwise as an archived replay ID prefix.
func loadReplay(store *storage.Store, ref string) (*eventlog.Log, error) {
	if data, err := os.ReadFile(ref); err == nil {
		l, err := eventlog.Deserialize(string(data))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", ref, err)
		}
		return l, nil
	}
	if store == nil {
		return nil, fmt.Errorf("replay %q: no such file and no database", ref)
	}
	r, err := store.FindReplay(ref)
	if err != nil {
		return nil, fmt.Errorf("replay %q: %w", ref, err)
	}
	return r.Decode()
}
