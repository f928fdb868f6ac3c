// Package descriptor defines the declarative YAML session format and its
// parser. A descriptor names a session, an optional root directory, and an
// ordered list of windows; the orchestrator turns one into a live tmux
// session.
package descriptor

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/tmuxup/tmuxup/internal/errors"
)

// WindowKind identifies which YAML shape produced a WindowSpec.
type WindowKind int

const (
	// WindowSimple is a bare string: one unnamed window running one command.
	WindowSimple WindowKind = iota
	// WindowNamed is a single-entry mapping of window name to command.
	WindowNamed
	// WindowLayout is a single-entry mapping of window name to a layout
	// block with an ordered pane list.
	WindowLayout
)

func (k WindowKind) String() string {
	switch k {
	case WindowSimple:
		return "simple"
	case WindowNamed:
		return "named"
	case WindowLayout:
		return "layout"
	}
	return "unknown"
}

// PaneKind identifies which YAML shape produced a PaneSpec.
type PaneKind int

const (
	// PaneSimple is a bare string: one command, or a shell-only pane when
	// the string is blank.
	PaneSimple PaneKind = iota
	// PaneMultiple is a sequence of commands run in order in one pane.
	PaneMultiple
	// PaneNamed is a single-entry mapping of pane title to one command or
	// a list of commands.
	PaneNamed
	// PaneNull is an explicit null: a shell-only pane.
	PaneNull
)

func (k PaneKind) String() string {
	switch k {
	case PaneSimple:
		return "simple"
	case PaneMultiple:
		return "multiple"
	case PaneNamed:
		return "named"
	case PaneNull:
		return "null"
	}
	return "unknown"
}

// Descriptor is a parsed session description. Window order is significant
// and preserved from the source document.
type Descriptor struct {
	Name    string
	Root    string
	Windows []WindowSpec
}

// SessionRoot returns the working directory for the session, defaulting to
// the user's home directory when the descriptor does not set one.
func (d *Descriptor) SessionRoot() string {
	if d.Root == "" {
		return "~"
	}
	return d.Root
}

// Validate checks constraints that shape classification alone cannot
// reject. It is called by the orchestrator before materializing a session,
// not by Parse, so listing still surfaces descriptors that would fail it.
func (d *Descriptor) Validate() error {
	for i := range d.Windows {
		w := &d.Windows[i]
		if w.Kind == WindowLayout && len(w.Panes) == 0 {
			return errors.NewValidationError("Window layout must have at least one pane").
				WithField(fmt.Sprintf("windows[%d]", i))
		}
	}
	return nil
}

// WindowSpec is one window in a descriptor. Exactly one shape applies,
// recorded in Kind; the remaining fields are populated per shape.
type WindowSpec struct {
	Kind       WindowKind
	Command    string     // WindowSimple, WindowNamed: the command line
	WindowName string     // WindowNamed, WindowLayout: the window title
	Layout     string     // WindowLayout: tmux layout name, may be empty
	Panes      []PaneSpec // WindowLayout: one entry per pane, in order

	named bool
}

// Name returns the window's declared title. Simple windows and empty
// mappings have none.
func (w *WindowSpec) Name() (string, bool) {
	if w.named {
		return w.WindowName, true
	}
	return "", false
}

// EffectiveName returns the window title to create, falling back to a
// positional name for untitled windows. index is zero-based; fallback
// names count from one.
func (w *WindowSpec) EffectiveName(index int) string {
	if name, ok := w.Name(); ok {
		return name
	}
	return fmt.Sprintf("window-%d", index+1)
}

// Commands returns the commands to type into the window, zero or one for
// the simple and named shapes. Layout windows carry their commands on
// their panes instead.
func (w *WindowSpec) Commands() []string {
	switch w.Kind {
	case WindowSimple, WindowNamed:
		return commandOrNone(w.Command)
	}
	return nil
}

// UnmarshalYAML classifies a window node by structural shape. Recognition
// order: a plain string is a simple window; a mapping is read by its first
// entry, where a string value makes a named window and a nested mapping
// makes a layout window. Anything else is rejected with the node's line.
func (w *WindowSpec) UnmarshalYAML(value *yaml.Node) error {
	node := resolveAlias(value)
	switch node.Kind {
	case yaml.ScalarNode:
		if node.Tag == strTag {
			w.Kind = WindowSimple
			w.Command = node.Value
			return nil
		}
	case yaml.MappingNode:
		w.Kind = WindowNamed
		if len(node.Content) == 0 {
			return nil
		}
		key := resolveAlias(node.Content[0])
		val := resolveAlias(node.Content[1])
		if key.Kind != yaml.ScalarNode || key.Tag != strTag {
			return fmt.Errorf("line %d: window name must be a string", key.Line)
		}
		w.WindowName = key.Value
		w.named = true
		switch {
		case val.Kind == yaml.ScalarNode && val.Tag == strTag:
			w.Command = val.Value
			return nil
		case val.Kind == yaml.MappingNode:
			var layout windowLayout
			if err := val.Decode(&layout); err != nil {
				return err
			}
			if layout.Panes == nil {
				return fmt.Errorf("line %d: window %q: layout form requires a panes list", val.Line, w.WindowName)
			}
			w.Kind = WindowLayout
			w.Layout = layout.Layout
			w.Panes = layout.Panes
			return nil
		}
		return fmt.Errorf("line %d: window %q: value must be a command string or a layout mapping", val.Line, w.WindowName)
	}
	return fmt.Errorf("line %d: cannot unmarshal %s into window spec", node.Line, node.Tag)
}

// windowLayout is the mapping under a layout window's name.
type windowLayout struct {
	Layout string     `yaml:"layout"`
	Panes  []PaneSpec `yaml:"panes"`
}

// PaneSpec is one pane in a layout window. Exactly one shape applies,
// recorded in Kind.
type PaneSpec struct {
	Kind        PaneKind
	Command     string   // PaneSimple, PaneNamed with a single command
	CommandList []string // PaneMultiple, PaneNamed with a command list
	PaneName    string   // PaneNamed: the declared title

	named bool
}

// Name returns the pane's declared title, if the pane has one. Titles are
// informational; tmux panes are addressed by index, not name.
func (p *PaneSpec) Name() (string, bool) {
	if p.named {
		return p.PaneName, true
	}
	return "", false
}

// Commands normalizes the pane to an ordered list of commands to type.
// Single commands are dropped when blank but otherwise kept verbatim,
// whitespace included. Command lists pass through untouched, so an empty
// string in a list sends a bare Enter.
func (p *PaneSpec) Commands() []string {
	switch p.Kind {
	case PaneSimple:
		return commandOrNone(p.Command)
	case PaneMultiple:
		return append([]string(nil), p.CommandList...)
	case PaneNamed:
		if p.CommandList != nil {
			return append([]string(nil), p.CommandList...)
		}
		return commandOrNone(p.Command)
	}
	return nil
}

// IsEmpty reports whether the pane has no commands to run.
func (p *PaneSpec) IsEmpty() bool {
	return len(p.Commands()) == 0
}

// UnmarshalYAML classifies a pane node by structural shape. Recognition
// order: explicit null, then plain string, then command list, then the
// named single-entry mapping. In the named form a list value keeps only
// its string items; any other value shape means a shell-only pane. Items
// of a top-level command list must all be strings.
func (p *PaneSpec) UnmarshalYAML(value *yaml.Node) error {
	node := resolveAlias(value)
	switch node.Kind {
	case yaml.ScalarNode:
		switch node.Tag {
		case nullTag:
			p.Kind = PaneNull
			return nil
		case strTag:
			p.Kind = PaneSimple
			p.Command = node.Value
			return nil
		}
	case yaml.SequenceNode:
		cmds := make([]string, 0, len(node.Content))
		for _, item := range node.Content {
			item = resolveAlias(item)
			if item.Kind != yaml.ScalarNode || item.Tag != strTag {
				return fmt.Errorf("line %d: pane command list items must be strings, got %s", item.Line, item.Tag)
			}
			cmds = append(cmds, item.Value)
		}
		p.Kind = PaneMultiple
		p.CommandList = cmds
		return nil
	case yaml.MappingNode:
		p.Kind = PaneNamed
		if len(node.Content) == 0 {
			return nil
		}
		key := resolveAlias(node.Content[0])
		val := resolveAlias(node.Content[1])
		if key.Kind != yaml.ScalarNode || key.Tag != strTag {
			return fmt.Errorf("line %d: pane name must be a string", key.Line)
		}
		p.PaneName = key.Value
		p.named = true
		switch {
		case val.Kind == yaml.ScalarNode && val.Tag == strTag:
			p.Command = val.Value
		case val.Kind == yaml.SequenceNode:
			cmds := make([]string, 0, len(val.Content))
			for _, item := range val.Content {
				item = resolveAlias(item)
				if item.Kind == yaml.ScalarNode && item.Tag == strTag {
					cmds = append(cmds, item.Value)
				}
			}
			p.CommandList = cmds
		}
		return nil
	}
	return fmt.Errorf("line %d: cannot unmarshal %s into pane spec", node.Line, node.Tag)
}

const (
	strTag  = "!!str"
	nullTag = "!!null"
)

// commandOrNone treats blank command strings as "no command" while
// preserving the original text of anything else.
func commandOrNone(cmd string) []string {
	if strings.TrimSpace(cmd) == "" {
		return nil
	}
	return []string{cmd}
}

// resolveAlias follows YAML anchors so classifiers see the referenced
// shape rather than the alias node itself.
func resolveAlias(n *yaml.Node) *yaml.Node {
	for n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}

// rawDescriptor detects missing required keys, which plain struct decoding
// cannot distinguish from zero values.
type rawDescriptor struct {
	Name    *string       `yaml:"name"`
	Root    string        `yaml:"root"`
	Windows *[]WindowSpec `yaml:"windows"`
}

// Parse decodes a session descriptor from YAML text. The name and windows
// keys are required; an empty windows list is allowed. Unknown top-level
// keys are ignored.
func Parse(data []byte) (*Descriptor, error) {
	var raw rawDescriptor
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	if raw.Name == nil {
		return nil, errors.New(`missing required field "name"`)
	}
	if raw.Windows == nil {
		return nil, errors.New(`missing required field "windows"`)
	}
	return &Descriptor{
		Name:    *raw.Name,
		Root:    raw.Root,
		Windows: *raw.Windows,
	}, nil
}
