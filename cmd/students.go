package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var studentsCmd = &cobra.Command{
	Use:   "students",
	Short: "List everyone who has played",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := setup(cmd, nil, false)
		if err != nil {
			return err
		}
		defer rt.Close()

		read := rt.rec.ListStudents(cmd.Context())
		if read.Err != nil {
			return read.Err
		}
		for _, name := range read.Value {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
		sourceNote(read.Mode)
		return nil
	},
}
