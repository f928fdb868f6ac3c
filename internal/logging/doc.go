// Package logging provides structured logging for tmuxup.
//
// tmuxup drives tmux from the user's terminal, so nothing here writes to
// stdout: records are JSON lines appended to a size-rotated file under
// the tmuxup config directory, and the "tmuxup logs" command reads them
// back. Everything in the package is safe for concurrent use.
//
// # Writing
//
// [NewLogger] opens the log file and hands back a [Logger] whose Debug,
// Info, Warn, and Error methods take a message plus alternating
// key-value pairs:
//
//	logger, err := logging.NewLogger(config.LogDir(), "info")
//	if err != nil {
//		return err
//	}
//	defer logger.Close()
//
//	logger.Info("session started", "session", "dev")
//
// The With* methods derive child loggers that stamp a fixed attribute
// onto every record. The orchestrator threads these through its calls so
// one session start can be followed across records:
//
//	log := logger.WithSession("dev").WithWindow("editor")
//	log.Info("pane created", "index", 1)
//
// produces
//
//	{"time":"...","level":"INFO","msg":"pane created","session":"dev","window":"editor","index":1}
//
// Child loggers share the parent's file handle, so closing any one of
// them closes the family. [NopLogger] discards everything and is what
// tests reach for.
//
// # Rotation
//
// The file is rotated in place once a write would push it past the
// configured size. Backups are numbered newest-first (tmuxup.log.1,
// tmuxup.log.2, ...), optionally gzipped, and the oldest is dropped
// past MaxBackups:
//
//	rc := logging.RotationConfig{MaxSizeMB: 10, MaxBackups: 3, Compress: true}
//	logger, err := logging.NewLoggerWithRotation(dir, "debug", rc)
//
// # Reading back
//
// [AggregateLogs] decodes the log file into [LogEntry] values,
// [FilterLogs] narrows them, and [ExportLogEntries] writes them out as
// JSON, text, or CSV:
//
//	entries, _ := logging.AggregateLogs(config.LogDir())
//	failed := logging.FilterLogs(entries, logging.LogFilter{Level: "ERROR"})
//	logging.ExportLogEntries(failed, "failures.csv", "csv")
//
// All of the above is wired to the tmuxup config file:
//
//	logging:
//	  enabled: true
//	  level: info
//	  max_size_mb: 10
//	  max_backups: 3
package logging
