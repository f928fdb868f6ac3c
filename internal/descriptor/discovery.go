// Locating descriptor files on disk: the <name>.yml lookup, cwd-based
// session name detection, and the config directory scan.

package descriptor

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tmuxup/tmuxup/internal/errors"
)

// Extensions recognized as descriptor files, in lookup order.
var descriptorExts = []string{".yml", ".yaml"}

// Load reads and parses the descriptor for name from configDir, trying
// <name>.yml then <name>.yaml. The not-found error reports the .yml path,
// the one users are told to create.
func Load(configDir, name string) (*Descriptor, error) {
	for _, ext := range descriptorExts {
		path := filepath.Join(configDir, name+ext)
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}
	}
	return nil, errors.NewConfigNotFound(filepath.Join(configDir, name+descriptorExts[0]))
}

// LoadFile reads and parses a single descriptor file.
func LoadFile(path string) (*Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewConfigNotFound(path)
		}
		return nil, errors.NewConfigError("failed to read config file", err).WithPath(path)
	}
	desc, err := Parse(data)
	if err != nil {
		return nil, errors.NewConfigError("failed to parse YAML", err).WithPath(path)
	}
	return desc, nil
}

// DetectName derives a session name from the basename of dir, or of the
// current working directory when dir is empty.
func DetectName(dir string) (string, error) {
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", errors.Wrap(err, "could not determine current directory")
		}
		dir = cwd
	}
	base := filepath.Base(dir)
	if base == "/" || base == "." {
		return "", errors.New("Could not determine directory name")
	}
	return base, nil
}

// Entry pairs a discovered descriptor file with its parsed contents. Name
// is the file stem, which is what start and stop take on the command line.
type Entry struct {
	Name       string
	Path       string
	Descriptor *Descriptor
}

// List scans configDir for descriptor files and parses each one. Files
// that fail to parse are skipped so one bad file cannot hide the rest. A
// missing directory yields an empty result, not an error. Entries come
// back sorted by name.
func List(configDir string) ([]Entry, error) {
	dirents, err := os.ReadDir(configDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "failed to read config directory")
	}

	var entries []Entry
	for _, de := range dirents {
		if de.IsDir() {
			continue
		}
		ext := filepath.Ext(de.Name())
		if ext != ".yml" && ext != ".yaml" {
			continue
		}
		path := filepath.Join(configDir, de.Name())
		desc, err := LoadFile(path)
		if err != nil {
			continue
		}
		entries = append(entries, Entry{
			Name:       strings.TrimSuffix(de.Name(), ext),
			Path:       path,
			Descriptor: desc,
		})
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}
