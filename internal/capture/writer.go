package capture

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/dpetkov/comsniff/internal/model"
)

const (
	// defaultMaxFileSize rotates capture files at 20 MiB.
	defaultMaxFileSize = 20 * 1024 * 1024

	// fsyncInterval forces an fsync after this many written bytes.
	fsyncInterval = 8 * 1024

	// maxPendingBytes caps the in-memory line queue at 5 MiB.
	maxPendingBytes = 5 * 1024 * 1024
)

// Writer writes capture lines to rotating session log files.
// All methods are safe for concurrent use; the serial readers append
// from their own goroutines while the session loop flushes.
type Writer struct {
	mu sync.Mutex

	dir    string
	header []string

	file     *os.File
	path     string
	size     int64
	lastSync int64

	pending      []string
	pendingBytes int

	// maxFileSize is a field (not the constant) so tests can rotate
	// without writing 20 MiB.
	maxFileSize int64

	now func() time.Time
}

// NewWriter creates the capture directory if needed and opens the first
// session file with its header block. The header lines describe the
// session (start time and per-channel summaries) and are repeated at the
// top of every rotated file.
func NewWriter(dir string, header []string) (*Writer, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, model.WrapCLIError(model.ExitGeneralError, "failed to create capture directory", err)
	}

	w := &Writer{
		dir:         dir,
		header:      header,
		maxFileSize: defaultMaxFileSize,
		now:         time.Now,
	}
	if err := w.openNewFile(); err != nil {
		return nil, err
	}
	return w, nil
}

// openNewFile closes the current file (writing its footer) and opens a
// fresh timestamped one with the header block. Caller holds the lock.
func (w *Writer) openNewFile() error {
	if w.file != nil {
		w.writeFooterLocked()
		_ = w.file.Close()
	}

	ts := w.now()
	stamp := fmt.Sprintf("%s_%03d", ts.Format("20060102_150405"), ts.Nanosecond()/1e6)
	path := filepath.Join(w.dir, "comsniff_"+stamp+".log")

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0644)
	for seq := 1; err != nil && os.IsExist(err); seq++ {
		// Same-millisecond rotation: disambiguate with a sequence suffix.
		path = filepath.Join(w.dir, fmt.Sprintf("comsniff_%s-%d.log", stamp, seq))
		file, err = os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0644)
	}
	if err != nil {
		return model.WrapCLIError(model.ExitGeneralError, "failed to open capture file", err)
	}
	w.file = file
	w.path = path
	w.size = 0
	w.lastSync = 0

	var b strings.Builder
	b.WriteString("=== comsniff capture ===\n")
	fmt.Fprintf(&b, "start: %s\n", ts.Format("2006-01-02 15:04:05"))
	for _, line := range w.header {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	b.WriteString(strings.Repeat("=", 50))
	b.WriteString("\n\n")

	n, err := file.WriteString(b.String())
	w.size += int64(n)
	if err != nil {
		return model.WrapCLIError(model.ExitGeneralError, "failed to write capture header", err)
	}
	return nil
}

// writeFooterLocked appends the session end line. Caller holds the lock.
func (w *Writer) writeFooterLocked() {
	fmt.Fprintf(w.file, "\nend: %s\n", w.now().Format("2006-01-02 15:04:05"))
}

// Append queues a line for the next flush. When the queue exceeds its
// byte cap the whole queue is dropped: the monitor must never block on a
// slow disk.
func (w *Writer) Append(line string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.pending = append(w.pending, line)
	w.pendingBytes += len(line)
	if w.pendingBytes > maxPendingBytes {
		w.pending = w.pending[:0]
		w.pendingBytes = 0
	}
}

// Flush writes all queued lines, fsyncs when enough data has accumulated
// since the last sync, and rotates the file once it passes the size limit.
func (w *Writer) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if len(w.pending) == 0 {
		return nil
	}

	chunk := strings.Join(w.pending, "")
	w.pending = w.pending[:0]
	w.pendingBytes = 0

	n, err := w.file.WriteString(chunk)
	w.size += int64(n)
	if err != nil {
		return model.WrapCLIError(model.ExitGeneralError, "failed to write capture data", err)
	}

	if w.size-w.lastSync >= fsyncInterval {
		_ = w.file.Sync()
		w.lastSync = w.size
	}

	if w.size >= w.maxFileSize {
		return w.openNewFile()
	}
	return nil
}

// Path returns the current capture file path.
func (w *Writer) Path() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.path
}

// Close flushes pending lines, writes the session footer, and closes the
// file. Close is safe to call once; the Writer is unusable afterwards.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		return nil
	}

	if len(w.pending) > 0 {
		chunk := strings.Join(w.pending, "")
		w.pending = nil
		w.pendingBytes = 0
		_, _ = w.file.WriteString(chunk)
	}

	w.writeFooterLocked()
	_ = w.file.Sync()
	err := w.file.Close()
	w.file = nil
	return err
}
