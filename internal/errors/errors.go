// Package errors provides structured error types for tmuxup.
//
// It wraps the standard library errors package and adds domain error
// types that carry context (config file paths, tmux command lines,
// captured stderr) plus severity and user-facing classification. All
// types support errors.Is/As chains via Unwrap.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Re-export standard library functions so callers only import this package.
var (
	// Is reports whether any error in err's chain matches target.
	Is = errors.Is
	// As finds the first error in err's chain that matches target.
	As = errors.As
	// Unwrap returns the result of calling the Unwrap method on err.
	Unwrap = errors.Unwrap
	// New creates a new error with the given text.
	New = errors.New
	// Join wraps multiple errors into a single error.
	Join = errors.Join
)

// -----------------------------------------------------------------------------
// Severity Levels
// -----------------------------------------------------------------------------

// Severity indicates how severe an error is.
type Severity int

const (
	// SeverityDebug is for debugging information.
	SeverityDebug Severity = iota
	// SeverityInfo is for informational messages.
	SeverityInfo
	// SeverityWarning is for warning conditions.
	SeverityWarning
	// SeverityError is for error conditions.
	SeverityError
	// SeverityCritical is for critical failures.
	SeverityCritical
)

var severityNames = [...]string{"debug", "info", "warning", "error", "critical"}

// String returns the lowercase name of the severity.
func (s Severity) String() string {
	if s < 0 || int(s) >= len(severityNames) {
		return "unknown"
	}
	return severityNames[s]
}

// -----------------------------------------------------------------------------
// Sentinel Errors
// -----------------------------------------------------------------------------

// Session errors.
var (
	// ErrSessionNotFound indicates the named tmux session does not exist.
	ErrSessionNotFound = New("session not found")
	// ErrSessionExists indicates a session with the same name is already running.
	ErrSessionExists = New("session already exists")
	// ErrAppendUnsupported indicates append-to-existing-session was requested.
	// The text is shown to users verbatim.
	ErrAppendUnsupported = New("Append functionality not yet implemented")
)

// Configuration errors.
var (
	// ErrConfigNotFound indicates no session configuration file was found.
	ErrConfigNotFound = New("configuration file not found")
	// ErrConfigInvalid indicates a configuration file failed to parse.
	ErrConfigInvalid = New("configuration file is invalid")
)

// Tmux errors.
var (
	// ErrTmuxNotFound indicates the tmux binary is not on PATH.
	ErrTmuxNotFound = New("tmux not found in PATH")
	// ErrNoTTY indicates an interactive command was requested without a terminal.
	ErrNoTTY = New("standard input is not a terminal")
)

// -----------------------------------------------------------------------------
// Error Interface
// -----------------------------------------------------------------------------

// TmuxupError is the interface implemented by all tmuxup domain errors.
type TmuxupError interface {
	error
	// Unwrap returns the underlying cause, if any.
	Unwrap() error
	// Is reports whether this error matches the target.
	Is(target error) bool
	// Severity returns the error's severity level.
	Severity() Severity
	// IsUserFacing indicates if this error should be shown to users as-is.
	IsUserFacing() bool
}

// -----------------------------------------------------------------------------
// Base Error Implementation
// -----------------------------------------------------------------------------

// baseError carries the fields shared by all domain errors. Constructors
// default to SeverityError and user-facing, the common case here.
type baseError struct {
	message    string
	cause      error
	userFacing bool
	severity   Severity
}

func newBase(message string, cause error) baseError {
	return baseError{
		message:    message,
		cause:      cause,
		userFacing: true,
		severity:   SeverityError,
	}
}

func (e *baseError) Error() string {
	if e.cause == nil {
		return e.message
	}
	return e.message + ": " + e.cause.Error()
}

func (e *baseError) Unwrap() error      { return e.cause }
func (e *baseError) Severity() Severity { return e.severity }
func (e *baseError) IsUserFacing() bool { return e.userFacing }

// -----------------------------------------------------------------------------
// Config Errors
// -----------------------------------------------------------------------------

// ConfigError represents a failure to locate, read, or parse a session
// configuration file.
type ConfigError struct {
	baseError
	// Path is the configuration file involved, if known.
	Path string
}

// NewConfigError creates a new ConfigError.
func NewConfigError(message string, cause error) *ConfigError {
	return &ConfigError{baseError: newBase(message, cause)}
}

// WithPath adds the configuration file path to the error.
func (e *ConfigError) WithPath(path string) *ConfigError {
	e.Path = path
	return e
}

// WithSeverity sets the error severity.
func (e *ConfigError) WithSeverity(s Severity) *ConfigError {
	e.severity = s
	return e
}

// Error returns the error message with file context.
func (e *ConfigError) Error() string {
	var b strings.Builder
	b.WriteString("config error")
	if e.Path != "" {
		fmt.Fprintf(&b, " [file=%s]", e.Path)
	}
	b.WriteString(": ")
	b.WriteString(e.message)
	if e.cause != nil {
		fmt.Fprintf(&b, ": %v", e.cause)
	}
	return b.String()
}

// Is implements errors.Is support.
func (e *ConfigError) Is(target error) bool {
	_, ok := target.(*ConfigError)
	return ok || Is(e.cause, target)
}

// -----------------------------------------------------------------------------
// Tmux Errors
// -----------------------------------------------------------------------------

// TmuxError represents a failed tmux invocation. The message holds the
// captured stderr verbatim when the process ran and failed, so users see
// what tmux itself reported.
type TmuxError struct {
	baseError
	// Args is the tmux argument list that failed, without the binary name.
	Args []string
	// Stderr is the raw stderr output captured from tmux, if any.
	Stderr string
}

// NewTmuxError creates a new TmuxError.
func NewTmuxError(message string, cause error) *TmuxError {
	return &TmuxError{baseError: newBase(message, cause)}
}

// WithArgs records the tmux argument list that failed.
func (e *TmuxError) WithArgs(args []string) *TmuxError {
	e.Args = args
	return e
}

// WithStderr records the raw stderr captured from tmux.
func (e *TmuxError) WithStderr(stderr string) *TmuxError {
	e.Stderr = stderr
	return e
}

// WithSeverity sets the error severity.
func (e *TmuxError) WithSeverity(s Severity) *TmuxError {
	e.severity = s
	return e
}

// Error returns the error message with command context.
func (e *TmuxError) Error() string {
	var b strings.Builder
	b.WriteString("tmux command failed")
	if len(e.Args) > 0 {
		fmt.Fprintf(&b, " [cmd=%s]", e.Args[0])
	}
	if e.message != "" {
		b.WriteString(": ")
		b.WriteString(e.message)
	}
	if e.cause != nil {
		fmt.Fprintf(&b, ": %v", e.cause)
	}
	return b.String()
}

// Is implements errors.Is support.
func (e *TmuxError) Is(target error) bool {
	_, ok := target.(*TmuxError)
	return ok || Is(e.cause, target)
}

// -----------------------------------------------------------------------------
// Semantic Errors
// -----------------------------------------------------------------------------

// ConfigNotFoundError indicates the configuration file for a session does
// not exist. Its message matches the text users see on the command line.
type ConfigNotFoundError struct {
	// Path is the file that was looked up.
	Path string
}

// NewConfigNotFound creates a ConfigNotFoundError for the given path.
func NewConfigNotFound(path string) *ConfigNotFoundError {
	return &ConfigNotFoundError{Path: path}
}

// Error returns the user-visible message.
func (e *ConfigNotFoundError) Error() string {
	return fmt.Sprintf("Configuration file not found: %s", e.Path)
}

// Is matches ErrConfigNotFound and other ConfigNotFoundErrors.
func (e *ConfigNotFoundError) Is(target error) bool {
	if _, ok := target.(*ConfigNotFoundError); ok {
		return true
	}
	return target == ErrConfigNotFound
}

// Severity returns the error severity.
func (e *ConfigNotFoundError) Severity() Severity { return SeverityError }

// IsUserFacing reports that the message is shown to users as-is.
func (e *ConfigNotFoundError) IsUserFacing() bool { return true }

// Unwrap returns the sentinel this error specializes.
func (e *ConfigNotFoundError) Unwrap() error { return ErrConfigNotFound }

// SessionNotFoundError indicates an operation targeted a session that is
// not running. Its message matches the text users see on the command line.
type SessionNotFoundError struct {
	// Name is the session that was looked up.
	Name string
}

// NewSessionNotFound creates a SessionNotFoundError for the given session.
func NewSessionNotFound(name string) *SessionNotFoundError {
	return &SessionNotFoundError{Name: name}
}

// Error returns the user-visible message.
func (e *SessionNotFoundError) Error() string {
	return fmt.Sprintf("Session '%s' does not exist", e.Name)
}

// Is matches ErrSessionNotFound and other SessionNotFoundErrors.
func (e *SessionNotFoundError) Is(target error) bool {
	if _, ok := target.(*SessionNotFoundError); ok {
		return true
	}
	return target == ErrSessionNotFound
}

// Severity returns the error severity.
func (e *SessionNotFoundError) Severity() Severity { return SeverityWarning }

// IsUserFacing reports that the message is shown to users as-is.
func (e *SessionNotFoundError) IsUserFacing() bool { return true }

// Unwrap returns the sentinel this error specializes.
func (e *SessionNotFoundError) Unwrap() error { return ErrSessionNotFound }

// ValidationError indicates a session descriptor that parsed but cannot be
// materialized, such as a layout window with no panes.
type ValidationError struct {
	baseError
	// Field is the descriptor field that failed validation, if known.
	Field string
}

// NewValidationError creates a new ValidationError.
func NewValidationError(message string) *ValidationError {
	return &ValidationError{baseError: newBase(message, nil)}
}

// WithField records which descriptor field failed validation.
func (e *ValidationError) WithField(field string) *ValidationError {
	e.Field = field
	return e
}

// Error returns the validation message, with the field when known.
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s [field=%s]", e.message, e.Field)
	}
	return e.message
}

// Is implements errors.Is support.
func (e *ValidationError) Is(target error) bool {
	_, ok := target.(*ValidationError)
	return ok || Is(e.cause, target)
}

// -----------------------------------------------------------------------------
// Classification Helpers
// -----------------------------------------------------------------------------

// IsUserFacing reports whether err carries a message meant for users as-is.
// Errors outside this package's taxonomy are treated as internal.
func IsUserFacing(err error) bool {
	var te TmuxupError
	if As(err, &te) {
		return te.IsUserFacing()
	}
	return false
}

// IsNotFound reports whether err indicates a missing session or
// configuration file.
func IsNotFound(err error) bool {
	return Is(err, ErrSessionNotFound) || Is(err, ErrConfigNotFound)
}

// GetSeverity extracts the severity from an error, defaulting to
// SeverityError for unclassified errors.
func GetSeverity(err error) Severity {
	var te TmuxupError
	if As(err, &te) {
		return te.Severity()
	}
	return SeverityError
}

// -----------------------------------------------------------------------------
// Wrapping Helpers
// -----------------------------------------------------------------------------

// Wrap wraps an error with a message, preserving the error chain. Returns
// nil if err is nil.
func Wrap(err error, message string) error {
	return Wrapf(err, "%s", message)
}

// Wrapf wraps an error with a formatted message, preserving the error
// chain. Returns nil if err is nil.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	msg := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", msg, err)
}

// FirstLine returns the first non-empty line of s, trimmed. Useful for
// turning multi-line tmux stderr into a single-line message.
func FirstLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
