package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/abhisek/timestables/internal/store"
)

var leaderboardCmd = &cobra.Command{
	Use:   "leaderboard",
	Short: "Show the top students",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		if limit < 1 || limit > 100 {
			return fmt.Errorf("--limit must be between 1 and 100")
		}

		rt, err := setup(cmd, nil, false)
		if err != nil {
			return err
		}
		defer rt.Close()

		read := rt.rec.Leaderboard(cmd.Context(), limit)
		if read.Err != nil {
			return read.Err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "RANK\tNAME\tLEVEL\tACCURACY\tSESSIONS")
		for _, e := range read.Value {
			printer.Fprintf(w, "%d\t%s\t%d\t%.1f%%\t%d\n",
				e.Rank, e.Name, e.HighestLevelReached, e.BestAccuracy, e.TotalSessions)
		}
		if err := w.Flush(); err != nil {
			return err
		}
		sourceNote(read.Mode)
		return nil
	},
}

func init() {
	leaderboardCmd.Flags().Int("limit", store.DefaultLeaderboardSize, "Number of students to show (1-100)")
}
