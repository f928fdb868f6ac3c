package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tmuxup/tmuxup/internal/config"
	"github.com/tmuxup/tmuxup/internal/descriptor"
	"github.com/tmuxup/tmuxup/internal/orchestrator"
)

var debugCmd = &cobra.Command{
	Use:   "debug <session-name>",
	Short: "Print the tmux commands a start would run",
	Long: `Print the ordered tmux commands that 'tmuxup start <name>' would issue
to build the session from scratch, one per line, without contacting a
tmux server. Useful for checking a config file before running it.`,
	Args: cobra.ExactArgs(1),
	RunE: runDebug,
}

func init() {
	rootCmd.AddCommand(debugCmd)
}

func runDebug(cmd *cobra.Command, args []string) error {
	cfg := config.Get()

	desc, err := descriptor.Load(cfg.SessionDir(), args[0])
	if err != nil {
		return err
	}

	lines, err := orchestrator.Preview(desc, args[0])
	if err != nil {
		return err
	}

	for _, line := range lines {
		fmt.Println(line)
	}
	return nil
}
