// Package orchestrator turns session descriptors into live tmux sessions
// through an ordered sequence of control-plane commands.
package orchestrator

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/tmuxup/tmuxup/internal/descriptor"
	"github.com/tmuxup/tmuxup/internal/errors"
	"github.com/tmuxup/tmuxup/internal/logging"
	"github.com/tmuxup/tmuxup/internal/paths"
	"github.com/tmuxup/tmuxup/internal/tmux"
)

// Orchestrator owns session lifecycle: it decides whether to create,
// attach, or refuse, and issues the materialization sequence in strict
// order. Every tmux call blocks until the server has acted on it, so the
// server applies commands in exactly the order built here.
type Orchestrator struct {
	configDir string
	client    *tmux.Client
	logger    *logging.Logger
}

// New returns an Orchestrator reading descriptors from configDir and
// driving tmux through client. A nil logger disables logging.
func New(configDir string, client *tmux.Client, logger *logging.Logger) *Orchestrator {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Orchestrator{configDir: configDir, client: client, logger: logger}
}

// StartOptions control how Start reconciles with an existing session.
type StartOptions struct {
	// Attach hands the terminal to the session once it is running, or to
	// the existing session if one is already present.
	Attach bool
	// Append asks to add windows to an existing session instead of
	// failing. Not implemented; requesting it is an error.
	Append bool
}

// Start brings up the named session and returns the user-facing result
// of the run. An empty name is detected from the current directory's
// basename.
//
// Against an existing session nothing is mutated: append fails fast,
// attach attaches, and otherwise the caller is told the session already
// exists. The descriptor file is consulted only when a fresh session has
// to be built, so attaching to a running session needs no config file.
func (o *Orchestrator) Start(name string, opts StartOptions) (string, error) {
	if name == "" {
		detected, err := descriptor.DetectName("")
		if err != nil {
			return "", err
		}
		name = detected
	}

	log := o.logger.WithSession(name).WithRun(uuid.New().String())
	log.Info("starting session", "attach", opts.Attach, "append", opts.Append)

	if o.client.SessionExists(name) {
		switch {
		case opts.Append:
			log.Warn("append requested for existing session")
			return "", errors.ErrAppendUnsupported
		case opts.Attach:
			log.Info("attaching to existing session")
			if err := o.client.AttachSession(name); err != nil {
				return "", errors.Wrapf(err, "Failed to attach to session '%s'", name)
			}
			return fmt.Sprintf("Attached to existing session '%s'", name), nil
		default:
			log.Info("session already exists, nothing to do")
			return fmt.Sprintf("Session '%s' already exists", name), nil
		}
	}

	desc, err := descriptor.Load(o.configDir, name)
	if err != nil {
		return "", err
	}
	if err := desc.Validate(); err != nil {
		return "", err
	}

	root, err := paths.Expand(desc.SessionRoot())
	if err != nil {
		return "", errors.Wrapf(err, "failed to expand root %q", desc.SessionRoot())
	}

	if err := o.materialize(log, desc, name, root); err != nil {
		return "", err
	}
	log.Info("session started", "windows", len(desc.Windows))

	if opts.Attach {
		if err := o.client.AttachSession(name); err != nil {
			return "", errors.Wrapf(err, "Started session '%s' but failed to attach", name)
		}
		return fmt.Sprintf("Started and attached to session '%s'", name), nil
	}
	return fmt.Sprintf("Started detached session '%s'", name), nil
}

// materialize executes the fresh-session sequence: create the detached
// session at the expanded root, pin base-index and pane-base-index to 0
// so later index arithmetic holds under any user tmux.conf, then build
// each window in document order. Fail-fast with no rollback: a failed
// call aborts the rest and may leave the session partially built.
func (o *Orchestrator) materialize(log *logging.Logger, desc *descriptor.Descriptor, session, root string) error {
	log.Debug("creating session", "root", root)
	if err := o.client.NewSession(session, root); err != nil {
		return err
	}
	if err := o.client.SetOption(session, "base-index", "0"); err != nil {
		return err
	}
	if err := o.client.SetOption(session, "pane-base-index", "0"); err != nil {
		return err
	}

	for i := range desc.Windows {
		w := &desc.Windows[i]
		name := w.EffectiveName(i)
		wlog := log.WithWindow(name)

		if i == 0 {
			// The server created the first window along with the session,
			// at whatever index the ambient base-index dictated. Rename it
			// in place rather than leaving a stray default-named window.
			index, err := o.client.FirstWindowIndex(session)
			if err != nil {
				return err
			}
			wlog.Debug("renaming initial window", "index", index)
			if err := o.client.RenameWindow(session, index, name); err != nil {
				return err
			}
		} else {
			wlog.Debug("creating window")
			if err := o.client.NewWindow(session, name, root); err != nil {
				return err
			}
		}

		if err := o.populateWindow(wlog, w, session, name, root); err != nil {
			return err
		}
	}
	return nil
}

// populateWindow types the window's commands in. Creation is always
// two-phase: windows and panes come up running a bare shell and receive
// their commands afterwards through send-keys, one call per command, so
// a slow shell startup cannot swallow input. An empty command list sends
// nothing.
func (o *Orchestrator) populateWindow(log *logging.Logger, w *descriptor.WindowSpec, session, window, root string) error {
	if w.Kind != descriptor.WindowLayout {
		for _, cmd := range w.Commands() {
			log.Debug("sending command", "command", cmd)
			if err := o.client.SendKeys(session, window, cmd); err != nil {
				return err
			}
		}
		return nil
	}

	// Pane 0 is the window's original pane; each further pane is one
	// horizontal split. Splits never carry commands either, so pane j is
	// fully created before its commands are typed into it.
	for j := range w.Panes {
		pane := &w.Panes[j]
		if j > 0 {
			log.Debug("splitting pane", "pane", j)
			if err := o.client.SplitWindowH(session, window, root); err != nil {
				return err
			}
		}
		for _, cmd := range pane.Commands() {
			log.Debug("sending command", "pane", j, "command", cmd)
			if err := o.client.SendKeysToPane(session, window, j, cmd); err != nil {
				return err
			}
		}
	}

	// Applied last, once every pane exists; any earlier and there would
	// be nothing to redistribute.
	if w.Layout != "" {
		log.Debug("applying layout", "layout", w.Layout)
		if err := o.client.SelectLayout(session, window, w.Layout); err != nil {
			return err
		}
	}
	return nil
}

// Stop kills the named session. A missing session is an error here, not
// something to create.
func (o *Orchestrator) Stop(name string) (string, error) {
	if !o.client.SessionExists(name) {
		return "", errors.NewSessionNotFound(name)
	}
	if err := o.client.KillSession(name); err != nil {
		return "", err
	}
	o.logger.WithSession(name).Info("session stopped")
	return fmt.Sprintf("Stopped session '%s'", name), nil
}

// StopAll kills the tmux server, ending every session on it at once.
func (o *Orchestrator) StopAll() (string, error) {
	sessions, err := o.client.ListSessions()
	if err != nil || len(sessions) == 0 {
		return "No running sessions", nil
	}
	if err := o.client.KillServer(); err != nil {
		return "", err
	}
	o.logger.Info("server stopped", "sessions", len(sessions))
	if len(sessions) == 1 {
		return "Stopped 1 running session", nil
	}
	return fmt.Sprintf("Stopped %d running sessions", len(sessions)), nil
}

// Preview returns the exact tmux command lines a fresh start of desc
// would issue, without contacting a server. Attach is not part of the
// plan, and the first-window index query is answered as 0.
func Preview(desc *descriptor.Descriptor, name string) ([]string, error) {
	if err := desc.Validate(); err != nil {
		return nil, err
	}
	root, err := paths.Expand(desc.SessionRoot())
	if err != nil {
		return nil, errors.Wrapf(err, "failed to expand root %q", desc.SessionRoot())
	}

	rec := tmux.NewRecordingRunner()
	rec.Stub([]string{"list-windows"}, "0\n", nil)
	client := tmux.NewClient().WithRunner(rec)

	dry := &Orchestrator{client: client, logger: logging.NopLogger()}
	if err := dry.materialize(dry.logger, desc, name, root); err != nil {
		return nil, err
	}
	return rec.CommandLines(), nil
}
