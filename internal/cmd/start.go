package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tmuxup/tmuxup/internal/orchestrator"
)

var startCmd = &cobra.Command{
	Use:   "start [session-name]",
	Short: "Start a tmux session from its config file",
	Long: `Start the tmux session described by <config-dir>/<name>.yml. With no
name, the current directory's basename is used.

If a session with that name already exists nothing is rebuilt: with
--attach (the default) the existing session is attached, otherwise the
command reports that it is already running.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStart,
}

var (
	startAttach   bool
	startNoAttach bool
	startAppend   bool
)

func init() {
	rootCmd.AddCommand(startCmd)

	startCmd.Flags().BoolVar(&startAttach, "attach", true, "Attach to the session once it is running")
	startCmd.Flags().BoolVar(&startNoAttach, "no-attach", false, "Do not attach to the session (overrides --attach)")
	startCmd.Flags().BoolVar(&startAppend, "append", false, "Append windows to an existing session instead of failing")
}

func runStart(cmd *cobra.Command, args []string) error {
	name := ""
	if len(args) > 0 {
		name = args[0]
	}

	orch, logger := newOrchestrator()
	defer func() { _ = logger.Close() }()

	msg, err := orch.Start(name, startOptions())
	if err != nil {
		return err
	}

	fmt.Println(msg)
	return nil
}

// startOptions resolves the attach flags. --no-attach wins over --attach
// so scripts can force a detached start regardless of the default.
func startOptions() orchestrator.StartOptions {
	return orchestrator.StartOptions{
		Attach: startAttach && !startNoAttach,
		Append: startAppend,
	}
}
