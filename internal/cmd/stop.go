package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var stopCmd = &cobra.Command{
	Use:   "stop [session-name]",
	Short: "Stop a running tmux session",
	Long: `Kill the named tmux session. With --all, kill the whole tmux server on
the selected socket, ending every session at once.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStop,
}

var stopAll bool

func init() {
	rootCmd.AddCommand(stopCmd)

	stopCmd.Flags().BoolVar(&stopAll, "all", false, "Stop the tmux server and every session on it")
}

func runStop(cmd *cobra.Command, args []string) error {
	orch, logger := newOrchestrator()
	defer func() { _ = logger.Close() }()

	if stopAll {
		msg, err := orch.StopAll()
		if err != nil {
			return err
		}
		fmt.Println(msg)
		return nil
	}

	if len(args) == 0 {
		return fmt.Errorf("requires a session name (or --all)")
	}

	msg, err := orch.Stop(args[0])
	if err != nil {
		return err
	}

	fmt.Println(msg)
	return nil
}
