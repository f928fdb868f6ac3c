// Package tmux is the control-plane client for the tmux server. It shells
// out to the tmux binary, one process per call, mapping each operation the
// orchestrator needs onto an explicit argument vector.
package tmux

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/tmuxup/tmuxup/internal/errors"
	"github.com/tmuxup/tmuxup/internal/logging"
)

// Client issues commands to a tmux server. The zero-value socket targets
// the ambient default server; a socket name targets an isolated named
// server and a socket path targets an exact socket file.
type Client struct {
	socket string
	runner Runner
	logger *logging.Logger
	isTTY  func() bool
}

// NewClient returns a Client that spawns real tmux processes against the
// default server.
func NewClient() *Client {
	return &Client{
		runner: ExecRunner{},
		logger: logging.NopLogger(),
		isTTY:  stdinIsTerminal,
	}
}

// WithSocket targets a non-default server. A value containing a path
// separator is used as a socket path (-S); anything else is a socket name
// (-L).
func (c *Client) WithSocket(socket string) *Client {
	c.socket = socket
	return c
}

// WithRunner substitutes the process runner.
func (c *Client) WithRunner(r Runner) *Client {
	c.runner = r
	return c
}

// WithLogger attaches a logger for per-command debug records.
func (c *Client) WithLogger(l *logging.Logger) *Client {
	c.logger = l
	return c
}

// WithTTYCheck substitutes the terminal precheck used before interactive
// commands. Tests run without a controlling terminal and stub it out.
func (c *Client) WithTTYCheck(f func() bool) *Client {
	c.isTTY = f
	return c
}

func (c *Client) socketArgs() []string {
	if c.socket == "" {
		return nil
	}
	if strings.ContainsRune(c.socket, os.PathSeparator) {
		return []string{"-S", c.socket}
	}
	return []string{"-L", c.socket}
}

// Exec runs one tmux command and returns its captured stdout. Exit status
// 0 is success; anything else surfaces as a *errors.TmuxError carrying
// the stderr text verbatim.
func (c *Client) Exec(args ...string) (string, error) {
	full := append(c.socketArgs(), args...)
	c.logger.Debug("executing tmux command", "args", strings.Join(full, " "))
	return c.runner.Run("tmux", full...)
}

// ExecInteractive runs one tmux command with the caller's terminal
// attached, blocking until it exits. It refuses to spawn without a
// controlling terminal, since the child would hang waiting for one.
func (c *Client) ExecInteractive(args ...string) error {
	if !c.isTTY() {
		return errors.ErrNoTTY
	}
	full := append(c.socketArgs(), args...)
	c.logger.Debug("executing interactive tmux command", "args", strings.Join(full, " "))
	return c.runner.RunInteractive("tmux", full...)
}

// SessionExists reports whether a session with the given name is present.
// Any failure reads as absent: at this layer a missing server and a
// missing session are indistinguishable.
func (c *Client) SessionExists(name string) bool {
	_, err := c.Exec("has-session", "-t", name)
	return err == nil
}

// NewSession creates a detached session with one default window.
func (c *Client) NewSession(name, workdir string) error {
	args := []string{"new-session", "-d", "-s", name}
	if workdir != "" {
		args = append(args, "-c", workdir)
	}
	_, err := c.Exec(args...)
	return err
}

// SetOption sets a session-scoped tmux option. Window options set this
// way are inherited by every window in the session.
func (c *Client) SetOption(session, option, value string) error {
	_, err := c.Exec("set-option", "-t", session, option, value)
	return err
}

// NewWindow creates a named window in the session, running the default
// shell. Commands are typed in afterwards with SendKeys, never passed at
// creation, so every window keeps a live shell once they finish.
func (c *Client) NewWindow(session, name, workdir string) error {
	args := []string{"new-window", "-t", session, "-n", name}
	if workdir != "" {
		args = append(args, "-c", workdir)
	}
	_, err := c.Exec(args...)
	return err
}

// RenameWindow renames the window at the given index.
func (c *Client) RenameWindow(session string, index int, name string) error {
	_, err := c.Exec("rename-window", "-t", fmt.Sprintf("%s:%d", session, index), name)
	return err
}

// FirstWindowIndex returns the index of the session's first window. A
// fresh session has exactly one window, but its index follows the
// server's base-index at creation time, so it must be queried rather
// than assumed.
func (c *Client) FirstWindowIndex(session string) (int, error) {
	out, err := c.Exec("list-windows", "-t", session, "-F", "#{window_index}")
	if err != nil {
		return 0, err
	}
	first, _, _ := strings.Cut(strings.TrimSpace(out), "\n")
	index, err := strconv.Atoi(strings.TrimSpace(first))
	if err != nil {
		return 0, errors.Wrapf(err, "unexpected list-windows output %q", first)
	}
	return index, nil
}

// SendKeys types a command into a window followed by Enter.
func (c *Client) SendKeys(session, window, text string) error {
	_, err := c.Exec("send-keys", "-t", session+":"+window, text, "Enter")
	return err
}

// SendKeysToPane types a command into one pane of a window followed by
// Enter.
func (c *Client) SendKeysToPane(session, window string, pane int, text string) error {
	_, err := c.Exec("send-keys", "-t", fmt.Sprintf("%s:%s.%d", session, window, pane), text, "Enter")
	return err
}

// SplitWindowH splits a window horizontally, creating a new pane running
// the default shell.
func (c *Client) SplitWindowH(session, window, workdir string) error {
	return c.splitWindow("-h", session, window, workdir)
}

// SplitWindowV splits a window vertically, creating a new pane running
// the default shell.
func (c *Client) SplitWindowV(session, window, workdir string) error {
	return c.splitWindow("-v", session, window, workdir)
}

func (c *Client) splitWindow(direction, session, window, workdir string) error {
	args := []string{"split-window", direction, "-t", session + ":" + window}
	if workdir != "" {
		args = append(args, "-c", workdir)
	}
	_, err := c.Exec(args...)
	return err
}

// SelectLayout applies a layout to a window.
func (c *Client) SelectLayout(session, window, layout string) error {
	_, err := c.Exec("select-layout", "-t", session+":"+window, layout)
	return err
}

// AttachSession attaches the caller's terminal to a session and blocks
// until the user detaches.
func (c *Client) AttachSession(name string) error {
	return c.ExecInteractive("attach-session", "-t", name)
}

// KillSession terminates a session and everything running in it.
func (c *Client) KillSession(name string) error {
	_, err := c.Exec("kill-session", "-t", name)
	return err
}

// KillServer terminates the whole tmux server and every session on it.
func (c *Client) KillServer() error {
	_, err := c.Exec("kill-server")
	return err
}

// ListSessions returns the names of all sessions on the server. A failure
// means no server is running, which reads as no sessions.
func (c *Client) ListSessions() ([]string, error) {
	out, err := c.Exec("list-sessions", "-F", "#{session_name}")
	if err != nil {
		return nil, nil
	}
	return splitLines(out), nil
}

// WindowInfo describes one window of a session.
type WindowInfo struct {
	Index int
	Name  string
}

// ListWindows returns the windows of a session in index order.
func (c *Client) ListWindows(session string) ([]WindowInfo, error) {
	out, err := c.Exec("list-windows", "-t", session, "-F", "#{window_index}:#{window_name}")
	if err != nil {
		return nil, err
	}
	var windows []WindowInfo
	for _, line := range splitLines(out) {
		idx, name, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		index, err := strconv.Atoi(idx)
		if err != nil {
			continue
		}
		windows = append(windows, WindowInfo{Index: index, Name: name})
	}
	return windows, nil
}

// ListPanes returns the pane indexes of a window in order.
func (c *Client) ListPanes(session, window string) ([]int, error) {
	out, err := c.Exec("list-panes", "-t", session+":"+window, "-F", "#{pane_index}")
	if err != nil {
		return nil, err
	}
	var panes []int
	for _, line := range splitLines(out) {
		index, err := strconv.Atoi(line)
		if err != nil {
			continue
		}
		panes = append(panes, index)
	}
	return panes, nil
}

// Version returns the tmux server version string, e.g. "tmux 3.4".
func (c *Client) Version() (string, error) {
	out, err := c.Exec("-V")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

func splitLines(out string) []string {
	var lines []string
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

func stdinIsTerminal() bool {
	fd := os.Stdin.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
