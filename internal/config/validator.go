package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/tmuxup/tmuxup/internal/logging"
)

// Limits enforced on path-like settings.
const (
	maxPathLen       = 4096 // typical filesystem PATH_MAX
	maxSocketPathLen = 104  // sockaddr_un sun_path on the BSDs, the smallest common bound
	maxLogSizeMB     = 1000
)

// ValidationError is one rejected configuration value.
type ValidationError struct {
	Field   string // dotted config path, e.g. "logging.max_size_mb"
	Value   any    // the offending value
	Message string // what was wrong with it
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors aggregates every failure found in one Validate pass.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	switch len(e) {
	case 0:
		return ""
	case 1:
		return e[0].Error()
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d validation errors:\n", len(e))
	for i, err := range e {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, err)
	}
	return sb.String()
}

// errlist collects failures as validation walks the config.
type errlist struct {
	errs []ValidationError
}

func (l *errlist) add(field string, value any, message string) {
	l.errs = append(l.errs, ValidationError{Field: field, Value: value, Message: message})
}

// Validate checks every setting and reports all problems at once, so a
// config file with several mistakes does not need several edit cycles.
func (c *Config) Validate() []ValidationError {
	var l errlist
	c.checkConfigDir(&l)
	c.checkSocket(&l)
	c.checkLogging(&l)
	return l.errs
}

func (c *Config) checkConfigDir(l *errlist) {
	if c.ConfigDir == "" {
		return
	}

	if strings.ContainsRune(c.ConfigDir, '\x00') {
		l.add("config_dir", c.ConfigDir, "path contains a null byte")
	}
	if len(c.ConfigDir) > maxPathLen {
		l.add("config_dir", c.ConfigDir, fmt.Sprintf("path longer than %d characters", maxPathLen))
	}
}

func (c *Config) checkSocket(l *errlist) {
	if c.Socket == "" {
		return
	}

	if strings.ContainsRune(c.Socket, '\x00') {
		l.add("socket", c.Socket, "contains a null byte")
	}

	// The length cap only applies when the value is a socket path (-S);
	// bare -L names are resolved by tmux under its own directory.
	if strings.ContainsRune(c.Socket, '/') && len(c.Socket) > maxSocketPathLen {
		l.add("socket", c.Socket, fmt.Sprintf("socket path longer than the Unix limit of %d characters", maxSocketPathLen))
	}
}

func (c *Config) checkLogging(l *errlist) {
	if c.Logging.Level != "" && !slices.Contains(levelNames(), c.Logging.Level) {
		l.add("logging.level", c.Logging.Level, "must be one of: "+strings.Join(levelNames(), ", "))
	}

	switch size := c.Logging.MaxSizeMB; {
	case size <= 0:
		l.add("logging.max_size_mb", size, "must be positive")
	case size > maxLogSizeMB:
		l.add("logging.max_size_mb", size, fmt.Sprintf("larger than the %dMB cap", maxLogSizeMB))
	}

	if c.Logging.MaxBackups < 0 {
		l.add("logging.max_backups", c.Logging.MaxBackups, "cannot be negative")
	}
}

// levelNames is the log level vocabulary as it appears in config files:
// the logger's levels, lowercased.
func levelNames() []string {
	names := make([]string, 0, len(logging.ValidLevels()))
	for _, lv := range logging.ValidLevels() {
		names = append(names, strings.ToLower(lv))
	}
	return names
}
