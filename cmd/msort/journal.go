package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/franz/music-sorter/internal/store"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Show runs and placements recorded in the journal",
	Long: `Show what earlier runs did, as recorded with --journal.

Without flags the most recent runs are listed. --run lists every file a run
copied or moved, and --dest tells which source ended up at a destination.`,
	Args: cobra.NoArgs,
	RunE: runJournal,
}

func init() {
	rootCmd.AddCommand(journalCmd)

	journalCmd.Flags().String("run", "", "list the placements of this run")
	journalCmd.Flags().String("dest", "", "find the placement that produced this file")
	journalCmd.Flags().Int("limit", 20, "number of runs to list (0 = all)")
}

func runJournal(cmd *cobra.Command, args []string) error {
	dbPath := viper.GetString("journal")
	if dbPath == "" {
		return fmt.Errorf("no journal specified (use --journal or MSORT_JOURNAL)")
	}
	if _, err := os.Stat(dbPath); err != nil {
		return fmt.Errorf("journal %s: %w", dbPath, err)
	}

	db, err := openJournal(dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	runID, _ := cmd.Flags().GetString("run")
	dest, _ := cmd.Flags().GetString("dest")
	limit, _ := cmd.Flags().GetInt("limit")

	out := cmd.OutOrStdout()
	switch {
	case dest != "":
		return showDest(out, db, dest)
	case runID != "":
		return showRun(out, db, runID)
	default:
		return listRuns(out, db, limit)
	}
}

func listRuns(out io.Writer, db *store.Store, limit int) error {
	runs, err := db.ListRuns(limit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}
	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs recorded.")
		return nil
	}

	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		rows = append(rows, []string{
			run.ID,
			humanize.Time(run.StartedAt),
			run.Status,
			run.Mode + "/" + run.Strategy,
			run.InputDir + " -> " + run.OutputDir,
			strconv.Itoa(run.Placed),
			strconv.Itoa(run.Failed),
			strconv.Itoa(run.Skipped),
		})
	}

	fmt.Fprintln(out, renderTable(
		[]string{"Run", "Started", "Status", "Mode", "Dirs", "Placed", "Failed", "Skipped"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight},
	))
	return nil
}

func showRun(out io.Writer, db *store.Store, runID string) error {
	run, err := db.GetRun(runID)
	if err != nil {
		return fmt.Errorf("failed to get run: %w", err)
	}
	if run == nil {
		return fmt.Errorf("run %s not found", runID)
	}

	placements, err := db.ListPlacements(runID)
	if err != nil {
		return fmt.Errorf("failed to list placements: %w", err)
	}

	fmt.Fprintf(out, "Run %s (%s, %s %s)\n", run.ID, run.Status, run.Mode, run.Strategy)
	fmt.Fprintf(out, "  %s -> %s, started %s\n\n", run.InputDir, run.OutputDir,
		run.StartedAt.Format("2006-01-02 15:04:05"))

	var total int64
	rows := make([][]string, 0, len(placements))
	for _, p := range placements {
		rows = append(rows, []string{p.Status, p.SrcPath, p.DestPath, humanize.Bytes(uint64(p.BytesWritten)), p.Error})
		total += p.BytesWritten
	}

	if len(rows) > 0 {
		fmt.Fprintln(out, renderTable(
			[]string{"Status", "Source", "Destination", "Size", "Error"},
			rows,
			[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
		))
	}

	placed, err := db.CountPlacementsByStatus(runID, store.PlacementPlaced)
	if err != nil {
		return fmt.Errorf("failed to count placements: %w", err)
	}
	failed, err := db.CountPlacementsByStatus(runID, store.PlacementFailed)
	if err != nil {
		return fmt.Errorf("failed to count placements: %w", err)
	}

	fmt.Fprintf(out, "\n%d placed, %d failed, %s written\n", placed, failed, humanize.Bytes(uint64(total)))
	return nil
}

func showDest(out io.Writer, db *store.Store, dest string) error {
	if abs, err := filepath.Abs(dest); err == nil {
		dest = abs
	}

	p, err := db.FindByDest(dest)
	if err != nil {
		return fmt.Errorf("failed to search journal: %w", err)
	}
	if p == nil {
		return fmt.Errorf("no placement into %s recorded", dest)
	}

	fmt.Fprintf(out, "%s\n  from %s\n  by run %s (%s, %s)\n", p.DestPath, p.SrcPath, p.RunID, p.Action,
		humanize.Time(p.PlacedAt))
	return nil
}
