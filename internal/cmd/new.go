package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tmuxup/tmuxup/internal/config"
)

var newCmd = &cobra.Command{
	Use:   "new <session-name>",
	Short: "Create a session config from a starter template",
	Long: `Create <config-dir>/<name>.yml from a starter template. Existing
config files are never overwritten. When $EDITOR is set and the command
runs on a terminal, the new file is opened for editing.`,
	Args: cobra.ExactArgs(1),
	RunE: runNew,
}

func init() {
	rootCmd.AddCommand(newCmd)
}

// configTemplate is the starter session config. The commented block
// shows the multi-pane window form.
const configTemplate = `# Session config for tmuxup.
# Windows are created in order; commands are typed into a running shell.
name: %s
root: ~/

windows:
  - editor: vim
  - shell:
#  - services:
#      layout: main-vertical
#      panes:
#        - htop
#        - tail -f /var/log/syslog
`

func runNew(cmd *cobra.Command, args []string) error {
	name := args[0]
	cfg := config.Get()

	dir := cfg.SessionDir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// A .yaml twin would shadow or be shadowed by the new file, so
	// both spellings count as existing.
	for _, ext := range []string{".yml", ".yaml"} {
		existing := filepath.Join(dir, name+ext)
		if _, err := os.Stat(existing); err == nil {
			return fmt.Errorf("config file already exists: %s", existing)
		}
	}

	path := filepath.Join(dir, name+".yml")
	content := fmt.Sprintf(configTemplate, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	fmt.Printf("Created %s\n", path)

	if editor := os.Getenv("EDITOR"); editor != "" && interactive() {
		return openEditor(editor, path)
	}
	return nil
}

// openEditor hands the terminal to $EDITOR for the new config file.
func openEditor(editor, path string) error {
	editorCmd := exec.Command(editor, path)
	editorCmd.Stdin = os.Stdin
	editorCmd.Stdout = os.Stdout
	editorCmd.Stderr = os.Stderr
	if err := editorCmd.Run(); err != nil {
		return fmt.Errorf("editor exited with error: %w", err)
	}
	return nil
}
