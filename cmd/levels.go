package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/abhisek/timestables/internal/levels"
)

var levelsCmd = &cobra.Command{
	Use:   "levels",
	Short: "List the difficulty levels",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "LEVEL\tOPERATIONS\tRANGE\tDESCRIPTION")
		for _, cfg := range levels.All() {
			ops := ""
			for _, op := range cfg.Operations {
				ops += op.Symbol()
			}
			fmt.Fprintf(w, "%d\t%s\t%d-%d\t%s\n", cfg.Level, ops, cfg.Min, cfg.Max, cfg.Description)
		}
		return w.Flush()
	},
}
