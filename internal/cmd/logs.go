package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/tmuxup/tmuxup/internal/config"
	"github.com/tmuxup/tmuxup/internal/errors"
	"github.com/tmuxup/tmuxup/internal/logging"
)

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "View tmuxup's own debug logs",
	Long: `View and filter the JSON debug log tmuxup writes while orchestrating
sessions.

Examples:
  # Show the last 50 entries
  tmuxup logs

  # All entries for one session
  tmuxup logs -s api -n 0

  # Warnings and errors from the last hour
  tmuxup logs --level warn --since 1h

  # Export the filtered entries
  tmuxup logs -s api --export api.csv --format csv`,
	Args: cobra.NoArgs,
	RunE: runLogs,
}

var (
	logsSession string
	logsWindow  string
	logsRun     string
	logsTail    int
	logsLevel   string
	logsSince   string
	logsGrep    string
	logsExport  string
	logsFormat  string
)

func init() {
	rootCmd.AddCommand(logsCmd)

	logsCmd.Flags().StringVarP(&logsSession, "session", "s", "", "Only show entries for this session")
	logsCmd.Flags().StringVar(&logsWindow, "window", "", "Only show entries for this window")
	logsCmd.Flags().StringVar(&logsRun, "run", "", "Only show entries from this run ID")
	logsCmd.Flags().IntVarP(&logsTail, "tail", "n", 50, "Number of entries to show (0 for all)")
	logsCmd.Flags().StringVar(&logsLevel, "level", "", "Filter by minimum level (debug/info/warn/error)")
	logsCmd.Flags().StringVar(&logsSince, "since", "", "Show entries since duration ago (e.g. 1h, 30m)")
	logsCmd.Flags().StringVar(&logsGrep, "grep", "", "Only show entries whose message contains this text")
	logsCmd.Flags().StringVar(&logsExport, "export", "", "Write the filtered entries to a file instead of printing")
	logsCmd.Flags().StringVar(&logsFormat, "format", "text", "Export format: json, text, or csv")
}

func runLogs(cmd *cobra.Command, args []string) error {
	logDir := config.LogDir()

	entries, err := logging.AggregateLogs(logDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Println("No log file found.")
			fmt.Println("Logs are written to:", logDir)
			return nil
		}
		return err
	}

	filter := logging.LogFilter{
		Session:         logsSession,
		Window:          logsWindow,
		RunID:           logsRun,
		MessageContains: logsGrep,
	}
	if logsLevel != "" {
		filter.Level = logging.ParseLevel(logsLevel)
	}
	if logsSince != "" {
		duration, err := time.ParseDuration(logsSince)
		if err != nil {
			return fmt.Errorf("invalid duration format: %w", err)
		}
		filter.StartTime = time.Now().Add(-duration)
	}

	filtered := logging.FilterLogs(entries, filter)

	if logsTail > 0 && len(filtered) > logsTail {
		filtered = filtered[len(filtered)-logsTail:]
	}

	if logsExport != "" {
		if err := logging.ExportLogEntries(filtered, logsExport, logsFormat); err != nil {
			return err
		}
		fmt.Printf("Exported %d entries to %s\n", len(filtered), logsExport)
		return nil
	}

	if len(filtered) == 0 {
		fmt.Println("No matching log entries found.")
		return nil
	}
	for _, entry := range filtered {
		fmt.Println(logging.FormatEntry(entry))
	}
	return nil
}
