package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vampirenirmal/storylord/internal/checkpoint"
	"github.com/vampirenirmal/storylord/internal/config"
)

func init() {
	runsCmd := &cobra.Command{
		Use:   "runs",
		Short: "List checkpointed runs",
		Run:   runRuns,
	}
	exportCmd := &cobra.Command{
		Use:   "export <run-id>",
		Short: "Write the committed narrations of a run to stdout",
		Long:  "Writes the committed narration prefix of a run, joined with blank lines. Useful for salvaging a halted run.",
		Args:  cobra.ExactArgs(1),
		Run:   runExport,
	}
	RootCmd.AddCommand(runsCmd)
	RootCmd.AddCommand(exportCmd)
}

func openCheckpoints() *checkpoint.Store {
	cfg, err := config.Load()
	if err != nil {
		exitErr("loading config", err)
	}
	store, err := checkpoint.Open(cfg.Paths.CheckpointDB)
	if err != nil {
		exitErr("opening checkpoint store", err)
	}
	return store
}

func runRuns(cmd *cobra.Command, args []string) {
	store := openCheckpoints()
	defer store.Close()

	runs, err := store.ListRuns(cmd.Context())
	if err != nil {
		exitErr("listing runs", err)
	}
	if len(runs) == 0 {
		fmt.Println("no runs")
		return
	}

	for _, r := range runs {
		fmt.Printf("%s  %-10s  %3d beats  %s  %s\n",
			r.ID, r.Status, r.Beats, r.CreatedAt.Format("2006-01-02 15:04"), r.OutputName)
	}
}

func runExport(cmd *cobra.Command, args []string) {
	store := openCheckpoints()
	defer store.Close()

	narrations, err := store.LoadNarrations(cmd.Context(), args[0])
	if err != nil {
		exitErr("loading narrations", err)
	}
	if len(narrations) == 0 {
		fmt.Fprintln(os.Stderr, "run has no committed narrations")
		os.Exit(1)
	}

	parts := make([]string, len(narrations))
	for i, n := range narrations {
		parts[i] = n.NarrativeText
	}
	fmt.Println(strings.Join(parts, "\n\n"))
}
