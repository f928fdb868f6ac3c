package orchestrator

import (
	"github.com/gobwas/glob"

	"github.com/tmuxup/tmuxup/internal/descriptor"
	"github.com/tmuxup/tmuxup/internal/errors"
)

// SessionInfo describes one configured session and whether a live tmux
// session with the same name is currently running.
type SessionInfo struct {
	Name    string
	Path    string
	Root    string
	Windows int
	Running bool
}

// List returns every parseable descriptor in the config directory,
// annotated with its running state. A non-empty filter restricts the
// result to names matching the glob pattern (wildcards * ? and
// character classes).
func (o *Orchestrator) List(filter string) ([]SessionInfo, error) {
	var matcher glob.Glob
	if filter != "" {
		m, err := glob.Compile(filter)
		if err != nil {
			return nil, errors.Wrap(err, "invalid filter pattern")
		}
		matcher = m
	}

	entries, err := descriptor.List(o.configDir)
	if err != nil {
		return nil, err
	}

	running := make(map[string]bool)
	if sessions, err := o.client.ListSessions(); err == nil {
		for _, s := range sessions {
			running[s] = true
		}
	}

	infos := make([]SessionInfo, 0, len(entries))
	for _, e := range entries {
		if matcher != nil && !matcher.Match(e.Name) {
			continue
		}
		infos = append(infos, SessionInfo{
			Name:    e.Name,
			Path:    e.Path,
			Root:    e.Descriptor.SessionRoot(),
			Windows: len(e.Descriptor.Windows),
			// Sessions are started under the file stem, so that is the
			// name to look for on the server.
			Running: running[e.Name],
		})
	}
	return infos, nil
}
