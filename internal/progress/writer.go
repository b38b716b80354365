// Package progress provides utilities for tracking I/O progress.
package progress

import "io"

// Callback is called to report progress during I/O operations.
type Callback func(bytesWritten, totalBytes int64)

// Writer wraps an io.Writer to count bytes written and report progress.
type Writer struct {
	writer   io.Writer
	callback Callback
	total    int64
	written  int64
}

// NewWriter creates a progress-tracking writer.
// The total parameter should be the expected size (-1 if unknown).
// The callback is called after each Write with cumulative bytes and total.
func NewWriter(w io.Writer, total int64, callback Callback) *Writer {
	return &Writer{
		writer:   w,
		callback: callback,
		total:    total,
	}
}

// Write implements io.Writer and reports progress after each write.
func (w *Writer) Write(p []byte) (n int, err error) {
	n, err = w.writer.Write(p)
	if n > 0 {
		w.written += int64(n)
		if w.callback != nil {
			w.callback(w.written, w.total)
		}
	}
	return n, err
}

// Written returns the cumulative number of bytes written.
func (w *Writer) Written() int64 {
	return w.written
}
