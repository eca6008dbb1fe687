package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/timestables/internal/levels"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Start playing, optionally straight into a level",
	Example: `  timestables play
  timestables play --name Ada --level 4`,
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")
		level, _ := cmd.Flags().GetInt("level")
		name = strings.TrimSpace(name)

		if level != 0 {
			if _, err := levels.Get(level); err != nil {
				return err
			}
			if name == "" {
				return fmt.Errorf("--level needs --name")
			}
		}
		return runApp(cmd, name, level)
	},
}

func init() {
	playCmd.Flags().String("name", "", "Player name")
	playCmd.Flags().Int("level", 0, fmt.Sprintf("Level to start at (%d-%d)", levels.First, levels.Last))
}
