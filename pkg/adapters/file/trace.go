package file

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/aretw0/turing/pkg/domain"
)

// TraceWriter implements ports.TraceSink by writing one human-readable line
// per record:
//
//	Step 0003: State=halt, Head=0, Tape=11
//
// Writes are buffered; the first write error sticks and is reported by Err,
// Flush and Close.
type TraceWriter struct {
	mu     sync.Mutex
	w      *bufio.Writer
	closer io.Closer
	err    error
}

// NewTraceWriter wraps w. Close flushes but does not close w.
func NewTraceWriter(w io.Writer) *TraceWriter {
	return &TraceWriter{w: bufio.NewWriter(w)}
}

// OpenTrace opens path in append mode, creating it if needed.
func OpenTrace(path string) (*TraceWriter, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open trace file: %w", err)
	}
	tw := NewTraceWriter(f)
	tw.closer = f
	return tw, nil
}

// Title writes a section header, used to separate calculations in one file.
func (t *TraceWriter) Title(title string) {
	t.writeLine("----------" + title + "----------")
}

// Record writes a configuration line.
func (t *TraceWriter) Record(cfg domain.Configuration) {
	t.writeLine(cfg.String())
}

// NoTransition writes the diagnostic line.
func (t *TraceWriter) NoTransition(state string, symbol domain.Symbol) {
	t.writeLine(domain.NoTransitionLine(state, symbol))
}

func (t *TraceWriter) writeLine(line string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.err != nil {
		return
	}
	if _, err := t.w.WriteString(line); err != nil {
		t.err = err
		return
	}
	t.err = t.w.WriteByte('\n')
}

// Err returns the first write error, if any.
func (t *TraceWriter) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

// Flush writes buffered lines to the underlying writer.
func (t *TraceWriter) Flush() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.err != nil {
		return t.err
	}
	t.err = t.w.Flush()
	return t.err
}

// Close flushes and, for files opened by OpenTrace, closes the file.
// Closing twice is a no-op beyond the flush.
func (t *TraceWriter) Close() error {
	err := t.Flush()
	if t.closer != nil {
		cerr := t.closer.Close()
		t.closer = nil
		if err == nil {
			err = cerr
		}
	}
	return err
}
