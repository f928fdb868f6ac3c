package cmd

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/tmuxup/tmuxup/internal/config"
	"github.com/tmuxup/tmuxup/internal/logging"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the environment tmuxup runs in",
	Long: `Check that the environment has everything tmuxup needs: tmux on PATH,
the config directory, $SHELL, $EDITOR, and a usable terminal. Optional
items are informational; a missing required item makes the command fail.`,
	Args: cobra.NoArgs,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

// doctorCheck is the result of probing one environment requirement.
type doctorCheck struct {
	Name     string
	Required bool
	OK       bool
	Detail   string
}

func runDoctor(cmd *cobra.Command, args []string) error {
	cfg := config.Get()
	checks := []doctorCheck{
		checkTmux(cfg),
		checkConfigDir(cfg),
		checkEnvVar("$SHELL", "SHELL", "login shell for new windows"),
		checkEnvVar("$EDITOR", "EDITOR", "used by 'tmuxup new'"),
		checkTerminal(),
	}

	fmt.Println("Environment checks:")
	failed := 0
	for _, c := range checks {
		status := "✓"
		if !c.OK {
			if c.Required {
				status = "✗"
				failed++
			} else {
				status = "○"
			}
		}

		fmt.Printf("  %s %s", status, c.Name)
		if c.Detail != "" {
			fmt.Printf(" (%s)", c.Detail)
		}
		if !c.OK && !c.Required {
			fmt.Print(" [optional]")
		}
		fmt.Println()
	}

	if failed > 0 {
		return fmt.Errorf("%d required check(s) failed", failed)
	}
	return nil
}

// checkTmux verifies tmux is installed and reports its version.
func checkTmux(cfg *config.Config) doctorCheck {
	check := doctorCheck{Name: "tmux", Required: true}

	path, err := exec.LookPath("tmux")
	if err != nil {
		check.Detail = "not found in PATH"
		return check
	}

	check.OK = true
	check.Detail = path

	client := newTmuxClient(cfg, logging.NopLogger())
	if version, err := client.Version(); err == nil && version != "" {
		check.Detail = fmt.Sprintf("%s, %s", version, path)
	}
	return check
}

// checkConfigDir reports whether the session config directory exists.
func checkConfigDir(cfg *config.Config) doctorCheck {
	dir := cfg.SessionDir()
	check := doctorCheck{Name: "config directory", Detail: dir}

	if info, err := os.Stat(dir); err == nil && info.IsDir() {
		check.OK = true
		return check
	}
	check.Detail = fmt.Sprintf("%s missing, created by 'tmuxup new'", dir)
	return check
}

// checkEnvVar reports whether an environment variable is set.
func checkEnvVar(name, key, purpose string) doctorCheck {
	check := doctorCheck{Name: name}
	if value := os.Getenv(key); value != "" {
		check.OK = true
		check.Detail = value
		return check
	}
	check.Detail = "not set, " + purpose
	return check
}

// checkTerminal reports whether stdin is a terminal. Attach and browse
// refuse to run without one.
func checkTerminal() doctorCheck {
	check := doctorCheck{Name: "terminal", Detail: "stdin is a TTY"}
	if interactive() {
		check.OK = true
		return check
	}
	check.Detail = "stdin is not a TTY, attach and browse are unavailable"
	return check
}

// interactive reports whether the command is running on a terminal,
// honoring the test override.
func interactive() bool {
	if ttyCheck != nil {
		return ttyCheck()
	}
	return isatty.IsTerminal(os.Stdin.Fd())
}
