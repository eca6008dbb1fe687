package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "timestables",
	Short: "Times tables practice game",
	Long: "Times Tables is a terminal arithmetic game with ten levels of " +
		"multiplication, division, addition and subtraction, a timed " +
		"challenge and a shared leaderboard.",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd, "", 0)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	f := rootCmd.PersistentFlags()
	f.String("config", "", "Path to a timestables.yaml config file (overrides TIMESTABLES_CONFIG)")
	f.String("db", "", "Path to SQLite database file (overrides TIMESTABLES_DB)")
	f.String("db-type", "", "Local store type: sqlite, mysql or postgres")
	f.String("db-url", "", "DSN for mysql or postgres stores")
	f.String("remote", "", "Base URL of a shared timestables server")
	f.Duration("remote-timeout", 0, "Timeout for each request to the remote server")
	f.String("log-level", "", "Log level: debug, info, warn or error")
	f.String("log-file", "", "Log file path (default $XDG_STATE_HOME/timestables/timestables.log)")

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(studentsCmd)
	rootCmd.AddCommand(leaderboardCmd)
	rootCmd.AddCommand(levelsCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(versionCmd)
}
