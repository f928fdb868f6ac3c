// Package cmd defines the tmuxup command-line interface.
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tmuxup/tmuxup/internal/config"
	"github.com/tmuxup/tmuxup/internal/logging"
	"github.com/tmuxup/tmuxup/internal/orchestrator"
	"github.com/tmuxup/tmuxup/internal/tmux"
)

var version, commit, date string

// SetVersionInfo sets version information from ldflags
func SetVersionInfo(v, c, d string) {
	version, commit, date = v, c, d
}

var rootCmd = &cobra.Command{
	Use:   "tmuxup",
	Short: "Declarative tmux session manager",
	Long: `Tmuxup starts tmux sessions from YAML config files. Each file describes
one session: its name, working directory, and the windows, panes, and
commands to build. Running 'tmuxup start' materializes that description
into a live session, or attaches if it is already running.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() error {
	rootCmd.Version = version
	rootCmd.SetVersionTemplate(versionTemplate())
	return rootCmd.Execute()
}

func versionTemplate() string {
	if commit != "none" && commit != "" {
		return fmt.Sprintf("tmuxup %s\n  commit: %s\n  built:  %s\n", version, commit, date)
	}
	return fmt.Sprintf("tmuxup %s\n", version)
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is $HOME/.config/tmuxup/config.yaml)")
	rootCmd.PersistentFlags().String("config-dir", "", "directory holding session config files")
	rootCmd.PersistentFlags().StringP("socket", "L", "", "tmux socket name or path (name uses -L, path uses -S)")
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("config_dir", rootCmd.PersistentFlags().Lookup("config-dir"))
	_ = viper.BindPFlag("socket", rootCmd.PersistentFlags().Lookup("socket"))
}

func initConfig() {
	// Defaults must be registered before the file is read so unset keys
	// still resolve.
	config.SetDefaults()

	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(config.ConfigDir())
		viper.AddConfigPath("$HOME/.config/tmuxup")
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	// Nested keys map dots to underscores: logging.level becomes
	// TMUXUP_LOGGING_LEVEL.
	viper.SetEnvPrefix("TMUXUP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// A missing config file is fine; defaults and flags cover everything.
	_ = viper.ReadInConfig()
}

// tmuxRunner and ttyCheck are swapped out by tests so commands run against
// a recording runner without a live server or a controlling terminal.
var (
	tmuxRunner tmux.Runner = tmux.ExecRunner{}
	ttyCheck   func() bool
)

// newLogger builds the debug logger from the logging configuration.
// Any failure to open the log file degrades to a no-op logger rather
// than blocking the command.
func newLogger(cfg *config.Config) *logging.Logger {
	if !cfg.Logging.Enabled {
		return logging.NopLogger()
	}

	logDir := config.LogDir()
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return logging.NopLogger()
	}

	rotation := logging.RotationConfig{
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
	}
	logger, err := logging.NewLoggerWithRotation(logDir, cfg.Logging.Level, rotation)
	if err != nil {
		return logging.NopLogger()
	}
	return logger
}

// newTmuxClient builds a tmux client honoring the configured socket.
func newTmuxClient(cfg *config.Config, logger *logging.Logger) *tmux.Client {
	client := tmux.NewClient().WithRunner(tmuxRunner).WithLogger(logger)
	if cfg.Socket != "" {
		client = client.WithSocket(cfg.Socket)
	}
	if ttyCheck != nil {
		client = client.WithTTYCheck(ttyCheck)
	}
	return client
}

// newOrchestrator wires the session orchestrator for the active
// configuration. Callers must close the returned logger when done.
func newOrchestrator() (*orchestrator.Orchestrator, *logging.Logger) {
	cfg := config.Get()
	logger := newLogger(cfg)
	client := newTmuxClient(cfg, logger)
	return orchestrator.New(cfg.SessionDir(), client, logger), logger
}
