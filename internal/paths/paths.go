// Package paths resolves the working-directory strings authored in
// session configuration files. Config authors write paths the way they
// would in a shell script, so both "~/code" and "$HOME/code/$PROJECT"
// must come out usable.
package paths

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Expand resolves a leading tilde and any environment variable references
// in path.
//
// A leading "~" or "~/" expands to the current user's home directory;
// "~user" forms are left untouched. Environment variables in "$NAME" or
// "${NAME}" form are substituted from the environment. Variables that are
// not set keep their literal "$NAME" text rather than collapsing to an
// empty string, so a typo'd variable shows up in tmux instead of silently
// targeting the wrong directory.
//
// The only failure mode is a "~" prefix when the home directory cannot be
// determined.
func Expand(path string) (string, error) {
	expanded, err := expandTilde(path)
	if err != nil {
		return "", err
	}

	return os.Expand(expanded, func(key string) string {
		if val, ok := os.LookupEnv(key); ok {
			return val
		}
		return "$" + key
	}), nil
}

// expandTilde resolves a leading ~ to the user's home directory.
func expandTilde(path string) (string, error) {
	if path == "~" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot expand ~: %w", err)
		}
		return home, nil
	}

	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot expand ~: %w", err)
		}
		return filepath.Join(home, path[2:]), nil
	}

	return path, nil
}
