package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/ghostflap/internal/storage"
)

var flagReplayLimit int

var replaysCmd = &cobra.Command{
	Use:   "replays",
	Short: "Manage archived replays",
	Long: `Every finished session is archived with its full event log.

Replays are addressed by ID; any unambiguous prefix works.

Examples:
  ghostflap replays list
  ghostflap replays export 3f2a > run.json
  ghostflap replays import run.json
  ghostflap replays delete 3f2a`,
}

var replaysListCmd = &cobra.Command{
	Use:   "list",
	Short: "List archived replays, newest first",
	Args:  cobra.NoArgs,
	RunE:  runReplaysList,
}

var replaysExportCmd = &cobra.Command{
	Use:   "export <id>",
	Short: "Print an archived replay blob to stdout",
	Args:  cobra.ExactArgs(1),
	RunE:  runReplaysExport,
}

var replaysImportCmd = &cobra.Command{
	Use:   "import <file|->",
	Short: "Validate and archive an exported replay",
	Args:  cobra.ExactArgs(1),
	RunE:  runReplaysImport,
}

var replaysDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an archived replay",
	Args:  cobra.ExactArgs(1),
	RunE:  runReplaysDelete,
}

func init() {
	replaysListCmd.Flags().IntVar(&flagReplayLimit, "limit", 20, "Maximum number of replays to list")

	replaysCmd.AddCommand(replaysListCmd)
	replaysCmd.AddCommand(replaysExportCmd)
	replaysCmd.AddCommand(replaysImportCmd)
	replaysCmd.AddCommand(replaysDeleteCmd)
}

func openStore() (*storage.Store, error) {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return store, nil
}

func runReplaysList(cmd *cobra.Command, _ []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	replays, err := store.ListReplays(flagReplayLimit)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(replays) == 0 {
		fmt.Fprintln(out, "No replays archived yet.")
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Play 'ghostflap play' to record one!")
		return nil
	}

	fmt.Fprintf(out, "  %-8s  %-8s  %-5s  %-9s  %-6s  %s\n", "ID", "Mode", "Score", "Viewport", "Events", "Date")
	fmt.Fprintf(out, "  %-8s  %-8s  %-5s  %-9s  %-6s  %s\n", "--", "----", "-----", "--------", "------", "----")
	for _, r := range replays {
		fmt.Fprintf(out, "  %-8s  %-8s  %-5d  %-9s  %-6d  %s\n",
			shortID(r.ID), r.Mode, r.Score,
			fmt.Sprintf("%dx%d", r.Width, r.Height),
			r.Events, r.CreatedAt.Format("2006-01-02 15:04"))
	}
	return nil
}

func runReplaysExport(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	r, err := store.FindReplay(args[0])
	if err != nil {
		return fmt.Errorf("replay %q: %w", args[0], err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), r.Log)
	return nil
}

func runReplaysImport(cmd *cobra.Command, args []string) error {
	var (
		data []byte
		err  error
	)
	if args[0] == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(args[0])
	}
	if err != nil {
		return fmt.Errorf("reading replay: %w", err)
	}

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	id, err := store.ImportReplay(string(data))
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Imported replay %s\n", shortID(id))
	return nil
}

func runReplaysDelete(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.DeleteReplay(args[0]); err != nil {
		return fmt.Errorf("replay %q: %w", args[0], err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted replay %s\n", args[0])
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
