package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/timestables/internal/config"
	"github.com/abhisek/timestables/internal/store"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete all results saved on this computer",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cmd.Flags())
		if err != nil {
			return err
		}
		if cfg.DB.Type != store.TypeSQLite {
			return fmt.Errorf("reset only removes sqlite databases; clear the %s database directly", cfg.DB.Type)
		}

		path := cfg.DB.Path
		if path == "" {
			if path, err = store.DefaultDBPath(); err != nil {
				return err
			}
		}

		if yes, _ := cmd.Flags().GetBool("yes"); !yes {
			fmt.Fprintf(cmd.OutOrStdout(), "This deletes every saved result in %s.\nRun again with --yes to confirm.\n", path)
			return nil
		}

		removed := false
		for _, p := range []string{path, path + "-wal", path + "-shm"} {
			err := os.Remove(p)
			switch {
			case err == nil:
				removed = removed || p == path
			case errors.Is(err, fs.ErrNotExist):
			default:
				return fmt.Errorf("remove %s: %w", p, err)
			}
		}
		if removed {
			fmt.Fprintln(cmd.OutOrStdout(), "Removed", path)
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), "Nothing to reset at", path)
		}
		return nil
	},
}

func init() {
	resetCmd.Flags().Bool("yes", false, "Confirm deleting the database")
}
