// Package testutil provides shared helpers for tmuxup tests.
package testutil

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
)

// SkipIfNoTmux skips the test if tmux is not installed. Unit tests run
// against recorded runners and never need this; only tests that talk to
// a real server do.
func SkipIfNoTmux(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("tmux"); err != nil {
		t.Skipf("tmux binary not available: %v", err)
	}
}

// SocketName returns a unique tmux socket name for one test, so the test
// gets its own server instead of touching the user's. The server is
// killed when the test finishes.
func SocketName(t *testing.T) string {
	t.Helper()

	socket := "tmuxup-test-" + uuid.New().String()[:8]
	t.Cleanup(func() {
		// Best effort; the server may never have started.
		_ = exec.Command("tmux", "-L", socket, "kill-server").Run()
	})
	return socket
}

// ConfigDir creates a temporary session config directory populated with
// the given descriptor files, keyed by file name.
func ConfigDir(t *testing.T, files map[string]string) string {
	t.Helper()

	dir := t.TempDir()
	for name, body := range files {
		WriteConfig(t, dir, name, body)
	}
	return dir
}

// WriteConfig writes one descriptor file into dir. A name without an
// extension gets ".yml" appended.
func WriteConfig(t *testing.T, dir, name, body string) string {
	t.Helper()

	if filepath.Ext(name) == "" {
		name += ".yml"
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("failed to write config %s: %v", name, err)
	}
	return path
}

// SimpleConfig returns a minimal descriptor body with one window per
// command given.
func SimpleConfig(name, root string, commands ...string) string {
	var b strings.Builder
	b.WriteString("name: " + name + "\n")
	if root != "" {
		b.WriteString("root: " + root + "\n")
	}
	b.WriteString("windows:\n")
	for _, cmd := range commands {
		b.WriteString("  - " + cmd + "\n")
	}
	return b.String()
}
