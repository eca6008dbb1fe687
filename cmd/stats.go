package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/abhisek/timestables/internal/recorder"
)

// printer formats counts and percentages for the reporting commands.
var printer = message.NewPrinter(language.English)

var statsCmd = &cobra.Command{
	Use:   "stats <name>",
	Short: "Show a student's results",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := setup(cmd, nil, false)
		if err != nil {
			return err
		}
		defer rt.Close()

		ctx := cmd.Context()
		read := rt.rec.Student(ctx, args[0])
		if read.Err != nil {
			return fmt.Errorf("load %s: %w", args[0], read.Err)
		}
		agg := read.Value.Aggregate

		out := cmd.OutOrStdout()
		printer.Fprintf(out, "%s\n", agg.Name)
		printer.Fprintf(out, "  Highest level: %d\n", agg.HighestLevelReached)
		printer.Fprintf(out, "  Best accuracy: %.1f%%\n", agg.BestAccuracy)
		printer.Fprintf(out, "  Sessions:      %d\n\n", agg.TotalSessions)

		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "STARTED\tLEVEL\tSCORE\tACCURACY\tRESULT")
		for _, s := range read.Value.Sessions {
			result := "unfinished"
			if s.EndTime != nil {
				result = "failed"
				if s.LevelPassed {
					result = "passed"
				}
			}
			printer.Fprintf(w, "%s\t%d\t%d/%d\t%.1f%%\t%s\n",
				s.StartTime.Local().Format("2006-01-02 15:04"), s.Level,
				s.CorrectAnswers, s.TotalQuestions, s.Accuracy, result)
		}
		if err := w.Flush(); err != nil {
			return err
		}

		if timed := rt.rec.TimedResults(ctx, args[0], 5); timed.Err == nil && len(timed.Value) > 0 {
			fmt.Fprintln(out, "\nTimed challenges")
			for _, t := range timed.Value {
				printer.Fprintf(out, "  %s  %d of %d correct (%.0f%%)\n",
					t.Timestamp.Local().Format("2006-01-02 15:04"), t.CorrectAnswers, t.QuestionsAnswered, t.Accuracy)
			}
		}
		sourceNote(read.Mode)
		return nil
	},
}

// sourceNote tells the user when the remote server could not be reached.
func sourceNote(mode recorder.Mode) {
	if mode != recorder.ModeRemote {
		fmt.Fprintf(os.Stderr, "(results from the %s store)\n", mode)
	}
}
