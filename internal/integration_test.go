//go:build integration

// Package internal contains integration tests that drive the full
// orchestration stack against a real tmux server. Each test gets its own
// server on a private socket, so the user's sessions are never touched.
package internal

import (
	"strings"
	"testing"
	"time"

	"github.com/tmuxup/tmuxup/internal/orchestrator"
	"github.com/tmuxup/tmuxup/internal/testutil"
	"github.com/tmuxup/tmuxup/internal/tmux"
)

// newIntegrationOrchestrator wires the orchestrator to an isolated tmux
// server and a temp config directory.
func newIntegrationOrchestrator(t *testing.T, configs map[string]string) (*orchestrator.Orchestrator, *tmux.Client) {
	t.Helper()
	testutil.SkipIfNoTmux(t)

	dir := testutil.ConfigDir(t, configs)
	client := tmux.NewClient().WithSocket(testutil.SocketName(t))
	return orchestrator.New(dir, client, nil), client
}

func TestStartBuildsRealSession(t *testing.T) {
	o, client := newIntegrationOrchestrator(t, map[string]string{
		"web": `name: web
root: /tmp
windows:
  - editor: echo editor
  - echo plain
  - split:
      layout: even-horizontal
      panes:
        - echo one
        - echo two
`,
	})

	msg, err := o.Start("web", orchestrator.StartOptions{})
	if err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	if want := "Started detached session 'web'"; msg != want {
		t.Errorf("message = %q, want %q", msg, want)
	}

	if !client.SessionExists("web") {
		t.Fatal("session not present on the server")
	}

	windows, err := client.ListWindows("web")
	if err != nil {
		t.Fatalf("ListWindows: %v", err)
	}
	var names []string
	for _, w := range windows {
		names = append(names, w.Name)
	}
	if want := "editor,window-2,split"; strings.Join(names, ",") != want {
		t.Errorf("window names = %q, want %q", names, want)
	}

	panes, err := client.ListPanes("web", "split")
	if err != nil {
		t.Fatalf("ListPanes: %v", err)
	}
	if len(panes) != 2 {
		t.Errorf("pane count = %d, want 2", len(panes))
	}
}

func TestStartExistingSessionReported(t *testing.T) {
	o, _ := newIntegrationOrchestrator(t, map[string]string{
		"dup": "name: dup\nroot: /tmp\nwindows:\n  - echo hi\n",
	})

	if _, err := o.Start("dup", orchestrator.StartOptions{}); err != nil {
		t.Fatalf("first Start: %v", err)
	}

	msg, err := o.Start("dup", orchestrator.StartOptions{})
	if err != nil {
		t.Fatalf("second Start: %v", err)
	}
	if want := "Session 'dup' already exists"; msg != want {
		t.Errorf("message = %q, want %q", msg, want)
	}
}

// TestStartHonorsAmbientBaseIndex reproduces a server whose global
// base-index is 1, as a user tmux.conf would set it. The first window
// then comes up at index 1, and the rename must follow the queried index
// instead of assuming 0.
func TestStartHonorsAmbientBaseIndex(t *testing.T) {
	o, client := newIntegrationOrchestrator(t, map[string]string{
		"base": "name: base\nroot: /tmp\nwindows:\n  - editor: echo hi\n",
	})

	// A scratch session boots the server so the global option exists
	// before the real session is created.
	if _, err := client.Exec("new-session", "-d", "-s", "scratch"); err != nil {
		t.Fatalf("boot server: %v", err)
	}
	if _, err := client.Exec("set-option", "-g", "base-index", "1"); err != nil {
		t.Fatalf("set base-index: %v", err)
	}

	if _, err := o.Start("base", orchestrator.StartOptions{}); err != nil {
		t.Fatalf("Start: %v", err)
	}

	windows, err := client.ListWindows("base")
	if err != nil {
		t.Fatalf("ListWindows: %v", err)
	}
	if len(windows) != 1 || windows[0].Name != "editor" {
		t.Fatalf("windows = %+v, want one window named editor", windows)
	}
	if windows[0].Index != 1 {
		t.Errorf("window index = %d, want 1; the shifted base index was not exercised", windows[0].Index)
	}
}

func TestSendKeysReachPane(t *testing.T) {
	o, client := newIntegrationOrchestrator(t, map[string]string{
		"keys": "name: keys\nroot: /tmp\nwindows:\n  - printer: echo tmuxup-integration-marker\n",
	})

	if _, err := o.Start("keys", orchestrator.StartOptions{}); err != nil {
		t.Fatalf("Start: %v", err)
	}

	// The shell needs a moment to accept the typed command.
	deadline := time.Now().Add(5 * time.Second)
	var out string
	for {
		var err error
		out, err = client.Exec("capture-pane", "-p", "-t", "keys:printer")
		if err == nil && strings.Contains(out, "tmuxup-integration-marker") {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("marker never appeared in pane, last capture:\n%s", out)
		}
		time.Sleep(100 * time.Millisecond)
	}
}

func TestStopRealSession(t *testing.T) {
	o, client := newIntegrationOrchestrator(t, map[string]string{
		"gone": "name: gone\nroot: /tmp\nwindows:\n  - echo hi\n",
	})

	if _, err := o.Start("gone", orchestrator.StartOptions{}); err != nil {
		t.Fatalf("Start: %v", err)
	}

	msg, err := o.Stop("gone")
	if err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if want := "Stopped session 'gone'"; msg != want {
		t.Errorf("message = %q, want %q", msg, want)
	}
	if client.SessionExists("gone") {
		t.Error("session still present after stop")
	}
}

func TestStopAllRealServer(t *testing.T) {
	o, client := newIntegrationOrchestrator(t, map[string]string{
		"one": "name: one\nroot: /tmp\nwindows:\n  - echo hi\n",
		"two": "name: two\nroot: /tmp\nwindows:\n  - echo hi\n",
	})

	for _, name := range []string{"one", "two"} {
		if _, err := o.Start(name, orchestrator.StartOptions{}); err != nil {
			t.Fatalf("Start %s: %v", name, err)
		}
	}

	msg, err := o.StopAll()
	if err != nil {
		t.Fatalf("StopAll: %v", err)
	}
	if want := "Stopped 2 running sessions"; msg != want {
		t.Errorf("message = %q, want %q", msg, want)
	}
	if sessions, _ := client.ListSessions(); len(sessions) != 0 {
		t.Errorf("sessions after StopAll = %q, want none", sessions)
	}
}
