// Reading, filtering, and exporting the JSON log file. This is the data
// layer behind "tmuxup logs": the logger writes line-delimited JSON, and
// everything here turns those lines back into queryable entries.

package logging

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// LogEntry is one decoded line of the log file.
type LogEntry struct {
	Timestamp time.Time      `json:"time"`
	Level     string         `json:"level"`
	Message   string         `json:"msg"`
	Session   string         `json:"session,omitempty"`
	Window    string         `json:"window,omitempty"`
	RunID     string         `json:"run_id,omitempty"`
	Attrs     map[string]any `json:"attrs,omitempty"`
}

// LogFilter selects a subset of entries. Zero-valued fields do not
// filter; set fields combine with AND.
type LogFilter struct {
	// Level keeps entries at or above this level, DEBUG < INFO < WARN <
	// ERROR, compared case-insensitively.
	Level string

	// StartTime and EndTime bound the entry timestamps inclusively.
	StartTime time.Time
	EndTime   time.Time

	// Session, Window, and RunID match the context attributes the logger
	// stamps on each entry.
	Session string
	Window  string
	RunID   string

	// MessageContains keeps entries whose message has this substring.
	MessageContains string
}

// active reports whether any criterion is set.
func (f LogFilter) active() bool {
	return f != LogFilter{}
}

// matches reports whether entry passes every set criterion.
func (f LogFilter) matches(entry LogEntry) bool {
	if f.Level != "" {
		want, wantKnown := levelRank(strings.ToUpper(f.Level))
		have, haveKnown := levelRank(entry.Level)
		if wantKnown && haveKnown && have < want {
			return false
		}
	}
	if !f.StartTime.IsZero() && entry.Timestamp.Before(f.StartTime) {
		return false
	}
	if !f.EndTime.IsZero() && entry.Timestamp.After(f.EndTime) {
		return false
	}
	if f.Session != "" && entry.Session != f.Session {
		return false
	}
	if f.Window != "" && entry.Window != f.Window {
		return false
	}
	if f.RunID != "" && entry.RunID != f.RunID {
		return false
	}
	if f.MessageContains != "" && !strings.Contains(entry.Message, f.MessageContains) {
		return false
	}
	return true
}

// levelRank orders the level names for threshold comparison. Unknown
// names report false and are never filtered out.
func levelRank(level string) (int, bool) {
	switch level {
	case LevelDebug:
		return 0, true
	case LevelInfo:
		return 1, true
	case LevelWarn:
		return 2, true
	case LevelError:
		return 3, true
	}
	return 0, false
}

// AggregateLogs decodes every entry of the active log file in logDir,
// sorted by timestamp. Undecodable lines are dropped rather than
// failing the whole read, so a log with a torn or corrupt line still
// yields the rest.
func AggregateLogs(logDir string) ([]LogEntry, error) {
	file, err := os.Open(filepath.Join(logDir, LogFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("no log file found in %s: %w", logDir, err)
		}
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	defer func() { _ = file.Close() }()

	entries, err := readEntries(file)
	if err != nil {
		return nil, err
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Timestamp.Before(entries[j].Timestamp)
	})
	return entries, nil
}

// readEntries scans line-delimited JSON into entries, skipping blank and
// malformed lines.
func readEntries(r io.Reader) ([]LogEntry, error) {
	scanner := bufio.NewScanner(r)

	// A command with a big argument list can produce a log line well past
	// bufio's default token size.
	const maxLine = 1 << 20
	scanner.Buffer(make([]byte, maxLine), maxLine)

	var entries []LogEntry
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if entry, err := parseLogEntry(line); err == nil {
			entries = append(entries, entry)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading log file: %w", err)
	}
	return entries, nil
}

// parseLogEntry decodes one JSON log line. The named fields decode
// through the struct tags; any other top-level keys the logger appended
// are gathered into Attrs.
func parseLogEntry(line string) (LogEntry, error) {
	data := []byte(line)

	var entry LogEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return LogEntry{}, fmt.Errorf("invalid JSON: %w", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return LogEntry{}, fmt.Errorf("invalid JSON: %w", err)
	}
	extras := make(map[string]any)
	for key, value := range raw {
		switch key {
		case "time", "level", "msg", "session", "window", "run_id":
		default:
			extras[key] = value
		}
	}
	entry.Attrs = extras

	return entry, nil
}

// FilterLogs returns the entries matching filter, in their given order.
func FilterLogs(entries []LogEntry, filter LogFilter) []LogEntry {
	if !filter.active() {
		return entries
	}

	var kept []LogEntry
	for _, entry := range entries {
		if filter.matches(entry) {
			kept = append(kept, entry)
		}
	}
	return kept
}

// ExportLogs writes every entry of the log file in logDir to outputPath.
// Formats: "json", "text", "csv".
func ExportLogs(logDir, outputPath string, format string) error {
	entries, err := AggregateLogs(logDir)
	if err != nil {
		return fmt.Errorf("failed to aggregate logs: %w", err)
	}
	return ExportLogEntries(entries, outputPath, format)
}

// ExportLogEntries writes the given entries to outputPath, so a caller
// can filter before exporting. Formats: "json", "text", "csv".
func ExportLogEntries(entries []LogEntry, outputPath string, format string) error {
	var write func(io.Writer, []LogEntry) error
	switch strings.ToLower(format) {
	case "json":
		write = writeJSON
	case "text":
		write = writeText
	case "csv":
		write = writeCSV
	default:
		return fmt.Errorf("unsupported export format: %s (supported: json, text, csv)", format)
	}

	// The format is checked first so a typo does not leave an empty file.
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	return write(file, entries)
}

func writeJSON(w io.Writer, entries []LogEntry) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(entries)
}

func writeText(w io.Writer, entries []LogEntry) error {
	for _, entry := range entries {
		if _, err := io.WriteString(w, FormatEntry(entry)+"\n"); err != nil {
			return fmt.Errorf("failed to write text entry: %w", err)
		}
	}
	return nil
}

func writeCSV(w io.Writer, entries []LogEntry) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write([]string{"timestamp", "level", "message", "session", "window", "run_id", "attrs"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, entry := range entries {
		if err := cw.Write(entry.csvRecord()); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}
	return nil
}

// csvRecord flattens the entry into the export column order.
func (e LogEntry) csvRecord() []string {
	attrs := ""
	if len(e.Attrs) > 0 {
		if b, err := json.Marshal(e.Attrs); err == nil {
			attrs = string(b)
		}
	}
	return []string{
		e.Timestamp.Format(time.RFC3339Nano),
		e.Level,
		e.Message,
		e.Session,
		e.Window,
		e.RunID,
		attrs,
	}
}

// FormatEntry renders an entry as the single line the logs command
// prints: [timestamp] LEVEL - message (session=..., window=...) {attrs}.
func FormatEntry(entry LogEntry) string {
	var b strings.Builder

	fmt.Fprintf(&b, "[%s] %s - %s",
		entry.Timestamp.Format("2006-01-02 15:04:05.000"), entry.Level, entry.Message)

	var context []string
	if entry.Session != "" {
		context = append(context, "session="+entry.Session)
	}
	if entry.Window != "" {
		context = append(context, "window="+entry.Window)
	}
	if entry.RunID != "" {
		context = append(context, "run="+entry.RunID)
	}
	if len(context) > 0 {
		b.WriteString(" (" + strings.Join(context, ", ") + ")")
	}

	if len(entry.Attrs) > 0 {
		if attrs, err := json.Marshal(entry.Attrs); err == nil {
			b.WriteString(" " + string(attrs))
		}
	}
	return b.String()
}
