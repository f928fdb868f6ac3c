package cmd

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/tmuxup/tmuxup/internal/config"
	"github.com/tmuxup/tmuxup/internal/errors"
	"github.com/tmuxup/tmuxup/internal/orchestrator"
	"github.com/tmuxup/tmuxup/internal/tui"
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Pick and start a session interactively",
	Long: `Open a full-screen picker over the session configs. Type to filter,
move with the arrow keys, and press Enter to start and attach the
selected session. The list refreshes when config files change on disk.`,
	Args: cobra.NoArgs,
	RunE: runBrowse,
}

func init() {
	rootCmd.AddCommand(browseCmd)
}

func runBrowse(cmd *cobra.Command, args []string) error {
	if !interactive() {
		return errors.ErrNoTTY
	}

	orch, logger := newOrchestrator()
	defer func() { _ = logger.Close() }()

	load := func() ([]tui.Item, error) {
		infos, err := orch.List("")
		if err != nil {
			return nil, err
		}
		items := make([]tui.Item, len(infos))
		for i, info := range infos {
			items[i] = tui.Item{
				Name:    info.Name,
				Root:    info.Root,
				Windows: info.Windows,
				Running: info.Running,
			}
		}
		return items, nil
	}

	var opts []tui.Option
	if width, height, err := term.GetSize(int(os.Stdout.Fd())); err == nil && width > 0 && height > 0 {
		opts = append(opts, tui.WithSize(width, height))
	}

	// A watcher that cannot start, such as when the config directory
	// does not exist yet, just disables live refresh.
	cfg := config.Get()
	if watcher, err := tui.NewWatcher(cfg.SessionDir()); err == nil {
		defer func() { _ = watcher.Close() }()
		opts = append(opts, tui.WithWatcher(watcher))
	}

	p := tea.NewProgram(tui.New(load, opts...), tea.WithAltScreen())
	finalModel, err := p.Run()
	if err != nil {
		return fmt.Errorf("browse UI error: %w", err)
	}

	m, ok := finalModel.(tui.Model)
	if !ok || m.Choice() == "" {
		return nil
	}

	msg, err := orch.Start(m.Choice(), orchestrator.StartOptions{Attach: true})
	if err != nil {
		return err
	}
	fmt.Println(msg)
	return nil
}
