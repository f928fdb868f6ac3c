package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tmuxup/tmuxup/internal/util"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured sessions",
	Long: `List every session config in the config directory, with its window
count, root directory, and a marker for sessions currently running on
the tmux server.`,
	Args: cobra.NoArgs,
	RunE: runList,
}

var listFilter string

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().StringVarP(&listFilter, "filter", "f", "", "Only show sessions matching a glob pattern (e.g. 'web-*')")
}

func runList(cmd *cobra.Command, args []string) error {
	orch, logger := newOrchestrator()
	defer func() { _ = logger.Close() }()

	infos, err := orch.List(listFilter)
	if err != nil {
		return err
	}

	if len(infos) == 0 {
		if listFilter != "" {
			fmt.Printf("No sessions match %q\n", listFilter)
			return nil
		}
		fmt.Println("No session configs found.")
		fmt.Println("Create one with: tmuxup new <name>")
		return nil
	}

	running := 0
	for _, info := range infos {
		if info.Running {
			running++
		}
	}

	fmt.Printf("Found %d session config(s), %d running:\n\n", len(infos), running)
	for _, info := range infos {
		marker := " "
		if info.Running {
			marker = "●"
		}
		windows := fmt.Sprintf("%d window", info.Windows)
		if info.Windows != 1 {
			windows += "s"
		}
		fmt.Printf("  %s %-20s %-10s %s\n", marker, util.Truncate(info.Name, 20), windows, util.Truncate(info.Root, 40))
	}

	return nil
}
