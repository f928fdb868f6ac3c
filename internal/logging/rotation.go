package logging

import (
	"compress/gzip"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// RotationConfig holds configuration for size-based log rotation.
type RotationConfig struct {
	// MaxSizeMB is the maximum size of the log file in megabytes before
	// rotation. A value of 0 disables rotation.
	MaxSizeMB int
	// MaxBackups is how many rotated files to retain. Zero keeps none.
	MaxBackups int
	// Compress gzips rotated files in the background.
	Compress bool
}

// DefaultRotationConfig returns the rotation settings used when the
// configuration file does not override them.
func DefaultRotationConfig() RotationConfig {
	return RotationConfig{MaxSizeMB: 10, MaxBackups: 3}
}

// RotatingWriter is an io.Writer backed by a file that is rotated when it
// exceeds a size threshold. Backups are numbered path.1 (newest) through
// path.N (oldest). It is safe for concurrent use.
type RotatingWriter struct {
	mu sync.Mutex

	path       string
	maxBytes   int64
	maxBackups int
	compress   bool

	file *os.File
	size int64
}

// NewRotatingWriter creates a RotatingWriter appending to path, creating
// parent directories as needed. With MaxSizeMB of 0 the writer never
// rotates and behaves like a plain append-only file.
func NewRotatingWriter(path string, config RotationConfig) (*RotatingWriter, error) {
	w := &RotatingWriter{
		path:       path,
		maxBytes:   int64(config.MaxSizeMB) * 1024 * 1024,
		maxBackups: config.MaxBackups,
		compress:   config.Compress,
	}

	if err := w.open(); err != nil {
		return nil, err
	}

	return w, nil
}

// open opens the log file for appending and records its current size.
// The caller must hold the mutex.
func (w *RotatingWriter) open() error {
	if err := os.MkdirAll(filepath.Dir(w.path), 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	file, err := os.OpenFile(w.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	st, err := file.Stat()
	if err != nil {
		file.Close()
		return fmt.Errorf("failed to stat log file: %w", err)
	}

	w.file = file
	w.size = st.Size()
	return nil
}

// Write implements io.Writer. When the write would push the file past the
// size threshold the file is rotated first.
func (w *RotatingWriter) Write(p []byte) (n int, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		return 0, fmt.Errorf("log file is closed")
	}

	if w.maxBytes > 0 && w.size+int64(len(p)) > w.maxBytes {
		if err := w.rotate(); err != nil {
			// Keep writing to the current file rather than dropping log
			// data. Tell the operator rotation is failing.
			fmt.Fprintf(os.Stderr, "Warning: log rotation failed: %v\n", err)
		}
	}

	n, err = w.file.Write(p)
	w.size += int64(n)
	return n, err
}

// rotate closes the active file, shifts backups, and opens a fresh file.
// The caller must hold the mutex.
func (w *RotatingWriter) rotate() error {
	if err := w.file.Sync(); err != nil {
		return fmt.Errorf("failed to sync log file: %w", err)
	}
	if err := w.file.Close(); err != nil {
		return fmt.Errorf("failed to close log file: %w", err)
	}
	w.file = nil

	w.shiftBackups()

	backup := w.backupName(1)
	if err := os.Rename(w.path, backup); err != nil {
		// Reopen the original file so logging can continue.
		if reopenErr := w.open(); reopenErr != nil {
			return fmt.Errorf("failed to rename log file, reopen also failed: %w", reopenErr)
		}
		return fmt.Errorf("failed to rename log file: %w", err)
	}

	if w.compress {
		go compressLogFile(backup)
	}

	return w.open()
}

// shiftBackups renumbers existing backups up by one, dropping the oldest
// when the backup count is at the limit.
func (w *RotatingWriter) shiftBackups() {
	if w.maxBackups <= 0 {
		os.Remove(w.backupName(1))
		os.Remove(w.backupName(1) + ".gz")
		return
	}

	oldest := w.backupName(w.maxBackups)
	os.Remove(oldest)
	os.Remove(oldest + ".gz")

	for i := w.maxBackups - 1; i >= 1; i-- {
		from := w.backupName(i)
		to := w.backupName(i + 1)

		// A backup may exist compressed or not, depending on whether
		// compression finished before the next rotation.
		if _, err := os.Stat(from + ".gz"); err == nil {
			os.Rename(from+".gz", to+".gz")
		} else if _, err := os.Stat(from); err == nil {
			os.Rename(from, to)
		}
	}
}

// backupName returns the path of the numbered backup file.
func (w *RotatingWriter) backupName(n int) string {
	return fmt.Sprintf("%s.%d", w.path, n)
}

// compressLogFile gzips a rotated file and removes the original. It runs
// asynchronously, so errors go to stderr.
func compressLogFile(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: cannot read %s for compression: %v\n", path, err)
		return
	}

	dst := path + ".gz"
	out, err := os.Create(dst)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: cannot create %s: %v\n", dst, err)
		return
	}
	defer out.Close()

	gz := gzip.NewWriter(out)
	if _, err := gz.Write(data); err != nil {
		os.Remove(dst)
		fmt.Fprintf(os.Stderr, "Warning: compressing %s failed: %v\n", dst, err)
		return
	}
	if err := gz.Close(); err != nil {
		os.Remove(dst)
		fmt.Fprintf(os.Stderr, "Warning: finalizing %s failed: %v\n", dst, err)
		return
	}

	// Remove the original only after the compressed copy is complete.
	os.Remove(path)
}

// Sync flushes buffered data to the underlying file.
func (w *RotatingWriter) Sync() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		return nil
	}
	return w.file.Sync()
}

// Close syncs and closes the underlying file. Subsequent writes fail.
func (w *RotatingWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		return nil
	}

	if err := w.file.Sync(); err != nil {
		return fmt.Errorf("failed to sync log file: %w", err)
	}
	if err := w.file.Close(); err != nil {
		return fmt.Errorf("failed to close log file: %w", err)
	}

	w.file = nil
	return nil
}

// CurrentSize returns the current size of the log file in bytes.
func (w *RotatingWriter) CurrentSize() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.size
}

// FilePath returns the path of the active log file.
func (w *RotatingWriter) FilePath() string {
	return w.path
}
