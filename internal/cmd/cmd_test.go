package cmd

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/tmuxup/tmuxup/internal/config"
	"github.com/tmuxup/tmuxup/internal/errors"
	"github.com/tmuxup/tmuxup/internal/testutil"
	"github.com/tmuxup/tmuxup/internal/tmux"
)

// executeCommand runs a cobra command with args and returns everything it
// printed: command output goes to stdout via fmt, cobra's own messages to
// the command's writers.
func executeCommand(root *cobra.Command, args ...string) (output string, err error) {
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)

	stdout := captureOutput(func() {
		err = root.Execute()
	})
	return stdout + buf.String(), err
}

// captureOutput captures stdout during function execution
func captureOutput(f func()) string {
	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	f()

	w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	io.Copy(&buf, r)
	return buf.String()
}

// setupTestEnvironment isolates a test from the user's real config and
// tmux server: config files resolve under a temp XDG home, tmux commands
// go to a recording runner, and the TTY check is pinned.
func setupTestEnvironment(t *testing.T, tty bool) *tmux.RecordingRunner {
	t.Helper()

	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	rec := tmux.NewRecordingRunner()
	prevRunner, prevTTY := tmuxRunner, ttyCheck
	tmuxRunner = rec
	ttyCheck = func() bool { return tty }
	t.Cleanup(func() {
		tmuxRunner = prevRunner
		ttyCheck = prevTTY
		resetFlags()
	})
	return rec
}

// resetFlags restores flag-bound package vars that persist across
// Execute calls within one test binary.
func resetFlags() {
	startAttach = true
	startNoAttach = false
	startAppend = false
	stopAll = false
	listFilter = ""
	logsSession = ""
	logsWindow = ""
	logsRun = ""
	logsTail = 50
	logsLevel = ""
	logsSince = ""
	logsGrep = ""
	logsExport = ""
	logsFormat = "text"
}

// stubSessionAbsent scripts the existence probe to fail, which reads as
// "no such session".
func stubSessionAbsent(rec *tmux.RecordingRunner) {
	rec.Stub([]string{"has-session"}, "", errors.NewTmuxError("can't find session", nil))
}

func TestRootCommand(t *testing.T) {
	if rootCmd.Use != "tmuxup" {
		t.Errorf("rootCmd.Use = %q, want %q", rootCmd.Use, "tmuxup")
	}

	names := make([]string, 0, len(rootCmd.Commands()))
	for _, sub := range rootCmd.Commands() {
		names = append(names, sub.Name())
	}
	for _, want := range []string{"start", "stop", "list", "browse", "debug", "doctor", "new", "logs"} {
		if !slices.Contains(names, want) {
			t.Errorf("subcommand %q is not registered (have %v)", want, names)
		}
	}
}

func TestStartCommandDetached(t *testing.T) {
	rec := setupTestEnvironment(t, false)
	stubSessionAbsent(rec)
	rec.Stub([]string{"list-windows"}, "0\n", nil)

	dir := testutil.ConfigDir(t, map[string]string{
		"api": testutil.SimpleConfig("api", "/tmp", "echo hi"),
	})

	output, err := executeCommand(rootCmd, "start", "api", "--no-attach", "--config-dir", dir)
	if err != nil {
		t.Fatalf("start failed: %v\nOutput: %s", err, output)
	}
	if !strings.Contains(output, "Started detached session 'api'") {
		t.Errorf("output = %q, want started-detached message", output)
	}

	lines := rec.CommandLines()
	found := false
	for _, line := range lines {
		if line == "tmux new-session -d -s api -c /tmp" {
			found = true
		}
		if strings.Contains(line, "attach-session") {
			t.Errorf("detached start must not attach, got %q", line)
		}
	}
	if !found {
		t.Errorf("new-session not issued, commands: %q", lines)
	}
}

func TestStartCommandExisting(t *testing.T) {
	rec := setupTestEnvironment(t, false)

	output, err := executeCommand(rootCmd, "start", "api", "--no-attach", "--config-dir", t.TempDir())
	if err != nil {
		t.Fatalf("start failed: %v\nOutput: %s", err, output)
	}
	if !strings.Contains(output, "Session 'api' already exists") {
		t.Errorf("output = %q, want already-exists message", output)
	}
	if calls := rec.Calls(); len(calls) != 1 {
		t.Errorf("expected only the existence probe, got %q", rec.CommandLines())
	}
}

func TestStartCommandAppend(t *testing.T) {
	setupTestEnvironment(t, false)

	_, err := executeCommand(rootCmd, "start", "api", "--append", "--config-dir", t.TempDir())
	if !errors.Is(err, errors.ErrAppendUnsupported) {
		t.Fatalf("error = %v, want ErrAppendUnsupported", err)
	}
}

func TestStartCommandAttachWithoutTTY(t *testing.T) {
	setupTestEnvironment(t, false)

	// Session exists, default --attach applies, but there is no terminal.
	_, err := executeCommand(rootCmd, "start", "api", "--config-dir", t.TempDir())
	if err == nil {
		t.Fatal("expected attach failure without a TTY")
	}
	if !errors.Is(err, errors.ErrNoTTY) {
		t.Errorf("error = %v, want ErrNoTTY in chain", err)
	}
}

func TestStartOptionsResolution(t *testing.T) {
	tests := []struct {
		name       string
		attach     bool
		noAttach   bool
		wantAttach bool
	}{
		{"default attaches", true, false, true},
		{"no-attach wins", true, true, false},
		{"attach disabled", false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			startAttach = tt.attach
			startNoAttach = tt.noAttach
			defer resetFlags()

			if got := startOptions().Attach; got != tt.wantAttach {
				t.Errorf("Attach = %v, want %v", got, tt.wantAttach)
			}
		})
	}
}

func TestStopCommand(t *testing.T) {
	rec := setupTestEnvironment(t, false)

	output, err := executeCommand(rootCmd, "stop", "api")
	if err != nil {
		t.Fatalf("stop failed: %v\nOutput: %s", err, output)
	}
	if !strings.Contains(output, "Stopped session 'api'") {
		t.Errorf("output = %q, want stopped message", output)
	}

	lines := rec.CommandLines()
	if len(lines) != 2 || lines[1] != "tmux kill-session -t api" {
		t.Errorf("commands = %q, want probe then kill-session", lines)
	}
}

func TestStopCommandAll(t *testing.T) {
	rec := setupTestEnvironment(t, false)
	rec.Stub([]string{"list-sessions"}, "a\nb\n", nil)

	output, err := executeCommand(rootCmd, "stop", "--all")
	if err != nil {
		t.Fatalf("stop --all failed: %v\nOutput: %s", err, output)
	}
	if !strings.Contains(output, "Stopped 2 running sessions") {
		t.Errorf("output = %q, want stopped-count message", output)
	}
}

func TestStopCommandNoName(t *testing.T) {
	setupTestEnvironment(t, false)

	_, err := executeCommand(rootCmd, "stop")
	if err == nil || !strings.Contains(err.Error(), "--all") {
		t.Errorf("error = %v, want name-or-all hint", err)
	}
}

func TestListCommand(t *testing.T) {
	rec := setupTestEnvironment(t, false)
	rec.Stub([]string{"list-sessions"}, "api\n", nil)

	dir := testutil.ConfigDir(t, map[string]string{
		"api":  testutil.SimpleConfig("api", "/srv/api", "vim", "htop"),
		"blog": testutil.SimpleConfig("blog", "", "vim"),
	})

	output, err := executeCommand(rootCmd, "list", "--config-dir", dir)
	if err != nil {
		t.Fatalf("list failed: %v\nOutput: %s", err, output)
	}

	if !strings.Contains(output, "Found 2 session config(s), 1 running:") {
		t.Errorf("output = %q, want summary line", output)
	}
	if !strings.Contains(output, "api") || !strings.Contains(output, "blog") {
		t.Errorf("output = %q, want both session names", output)
	}
	if !strings.Contains(output, "2 windows") || !strings.Contains(output, "1 window ") {
		t.Errorf("output = %q, want window counts", output)
	}

	// Only the running session's line carries the marker.
	for _, line := range strings.Split(output, "\n") {
		if strings.Contains(line, "●") && !strings.Contains(line, "api") {
			t.Errorf("marker on non-running session: %q", line)
		}
	}
}

func TestListCommandFilter(t *testing.T) {
	setupTestEnvironment(t, false)

	dir := testutil.ConfigDir(t, map[string]string{
		"api":  testutil.SimpleConfig("api", "", "vim"),
		"blog": testutil.SimpleConfig("blog", "", "vim"),
	})

	output, err := executeCommand(rootCmd, "list", "--filter", "a*", "--config-dir", dir)
	if err != nil {
		t.Fatalf("list failed: %v\nOutput: %s", err, output)
	}
	if !strings.Contains(output, "api") {
		t.Errorf("output = %q, want matching session", output)
	}
	if strings.Contains(output, "blog") {
		t.Errorf("output = %q, filtered session should be absent", output)
	}
}

func TestListCommandEmpty(t *testing.T) {
	setupTestEnvironment(t, false)

	output, err := executeCommand(rootCmd, "list", "--config-dir", t.TempDir())
	if err != nil {
		t.Fatalf("list failed: %v\nOutput: %s", err, output)
	}
	if !strings.Contains(output, "No session configs found.") {
		t.Errorf("output = %q, want empty-state message", output)
	}
	if !strings.Contains(output, "tmuxup new") {
		t.Errorf("output = %q, want creation hint", output)
	}
}

func TestDebugCommand(t *testing.T) {
	rec := setupTestEnvironment(t, false)

	dir := testutil.ConfigDir(t, map[string]string{
		"api": testutil.SimpleConfig("api", "/tmp", "echo hi"),
	})

	output, err := executeCommand(rootCmd, "debug", "api", "--config-dir", dir)
	if err != nil {
		t.Fatalf("debug failed: %v\nOutput: %s", err, output)
	}

	if !strings.Contains(output, "tmux new-session -d -s api -c /tmp") {
		t.Errorf("output = %q, want the new-session line", output)
	}
	if strings.Contains(output, "attach-session") {
		t.Errorf("output = %q, plan must never attach", output)
	}
	// The plan is computed offline; the real runner must stay untouched.
	if calls := rec.Calls(); len(calls) != 0 {
		t.Errorf("debug contacted the server: %q", rec.CommandLines())
	}
}

func TestDebugCommandMissingConfig(t *testing.T) {
	setupTestEnvironment(t, false)

	_, err := executeCommand(rootCmd, "debug", "ghost", "--config-dir", t.TempDir())
	if !errors.IsNotFound(err) {
		t.Fatalf("error = %v, want config-not-found", err)
	}
}

func TestNewCommand(t *testing.T) {
	setupTestEnvironment(t, false)
	t.Setenv("EDITOR", "")

	dir := t.TempDir()
	output, err := executeCommand(rootCmd, "new", "api", "--config-dir", dir)
	if err != nil {
		t.Fatalf("new failed: %v\nOutput: %s", err, output)
	}

	path := filepath.Join(dir, "api.yml")
	if !strings.Contains(output, "Created "+path) {
		t.Errorf("output = %q, want created path", output)
	}

	body, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("scaffolded file missing: %v", err)
	}
	for _, want := range []string{"name: api", "root: ~/", "windows:"} {
		if !strings.Contains(string(body), want) {
			t.Errorf("template missing %q in:\n%s", want, body)
		}
	}

	// Second run must refuse to overwrite.
	if _, err := executeCommand(rootCmd, "new", "api", "--config-dir", dir); err == nil {
		t.Error("expected refusal to overwrite existing config")
	}
}

func TestNewCommandYamlTwin(t *testing.T) {
	setupTestEnvironment(t, false)
	t.Setenv("EDITOR", "")

	dir := testutil.ConfigDir(t, map[string]string{
		"api.yaml": testutil.SimpleConfig("api", "", "vim"),
	})

	_, err := executeCommand(rootCmd, "new", "api", "--config-dir", dir)
	if err == nil || !strings.Contains(err.Error(), "api.yaml") {
		t.Errorf("error = %v, want refusal naming the .yaml twin", err)
	}
}

func TestDoctorCommand(t *testing.T) {
	setupTestEnvironment(t, true)
	t.Setenv("SHELL", "/bin/zsh")
	t.Setenv("EDITOR", "")

	output, _ := executeCommand(rootCmd, "doctor")

	if !strings.Contains(output, "Environment checks:") {
		t.Errorf("output = %q, want header", output)
	}
	if !strings.Contains(output, "✓ $SHELL (/bin/zsh)") {
		t.Errorf("output = %q, want SHELL reported", output)
	}
	if !strings.Contains(output, "○ $EDITOR") {
		t.Errorf("output = %q, want unset EDITOR marked optional", output)
	}
	if !strings.Contains(output, "✓ terminal") {
		t.Errorf("output = %q, want TTY check passing", output)
	}
}

func TestDoctorCommandNoTTY(t *testing.T) {
	setupTestEnvironment(t, false)

	output, _ := executeCommand(rootCmd, "doctor")
	if !strings.Contains(output, "○ terminal") {
		t.Errorf("output = %q, want missing TTY marked optional", output)
	}
}

func TestBrowseCommandRequiresTTY(t *testing.T) {
	setupTestEnvironment(t, false)

	_, err := executeCommand(rootCmd, "browse")
	if !errors.Is(err, errors.ErrNoTTY) {
		t.Errorf("error = %v, want ErrNoTTY", err)
	}
}

func TestLogsCommandNoFile(t *testing.T) {
	setupTestEnvironment(t, false)

	output, err := executeCommand(rootCmd, "logs")
	if err != nil {
		t.Fatalf("logs failed: %v\nOutput: %s", err, output)
	}
	if !strings.Contains(output, "No log file found.") {
		t.Errorf("output = %q, want no-log-file message", output)
	}
}

func TestLogsCommandFilters(t *testing.T) {
	setupTestEnvironment(t, false)

	logDir := config.LogDir()
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		t.Fatal(err)
	}
	lines := strings.Join([]string{
		`{"time":"2026-01-02T10:00:00Z","level":"INFO","msg":"starting session","session":"api"}`,
		`{"time":"2026-01-02T10:00:01Z","level":"DEBUG","msg":"creating window","session":"api","window":"editor"}`,
		`{"time":"2026-01-02T10:05:00Z","level":"INFO","msg":"starting session","session":"blog"}`,
	}, "\n") + "\n"
	if err := os.WriteFile(filepath.Join(logDir, "tmuxup.log"), []byte(lines), 0o644); err != nil {
		t.Fatal(err)
	}

	output, err := executeCommand(rootCmd, "logs", "--session", "api")
	if err != nil {
		t.Fatalf("logs failed: %v\nOutput: %s", err, output)
	}
	if !strings.Contains(output, "session=api") {
		t.Errorf("output = %q, want api entries", output)
	}
	if strings.Contains(output, "session=blog") {
		t.Errorf("output = %q, filtered session leaked through", output)
	}
}

func TestLogsCommandExport(t *testing.T) {
	setupTestEnvironment(t, false)

	logDir := config.LogDir()
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		t.Fatal(err)
	}
	line := `{"time":"2026-01-02T10:00:00Z","level":"INFO","msg":"starting session","session":"api"}` + "\n"
	if err := os.WriteFile(filepath.Join(logDir, "tmuxup.log"), []byte(line), 0o644); err != nil {
		t.Fatal(err)
	}

	out := filepath.Join(t.TempDir(), "export.csv")
	output, err := executeCommand(rootCmd, "logs", "--export", out, "--format", "csv")
	if err != nil {
		t.Fatalf("logs --export failed: %v\nOutput: %s", err, output)
	}
	if !strings.Contains(output, "Exported 1 entries to "+out) {
		t.Errorf("output = %q, want export confirmation", output)
	}

	body, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("export file missing: %v", err)
	}
	if !strings.Contains(string(body), "starting session") {
		t.Errorf("export = %q, want the entry message", body)
	}
}

func TestVersionTemplate(t *testing.T) {
	prevV, prevC, prevD := version, commit, date
	defer func() { version, commit, date = prevV, prevC, prevD }()

	SetVersionInfo("1.2.3", "abc1234", "2026-01-02")
	got := versionTemplate()
	for _, want := range []string{"tmuxup 1.2.3", "commit: abc1234", "built:  2026-01-02"} {
		if !strings.Contains(got, want) {
			t.Errorf("template = %q, missing %q", got, want)
		}
	}

	SetVersionInfo("dev", "none", "unknown")
	if got := versionTemplate(); got != "tmuxup dev\n" {
		t.Errorf("template = %q, want short form without commit", got)
	}
}
