// Package archive provides zip container writing and reading for pass bundles.
package archive

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zip"

	"github.com/meigma/passbook/core"
)

// Compile-time interface implementation check.
var _ core.ArchiveWriter = (*Writer)(nil)

// Writer writes bundle members into a zip container.
// Members carry no modification time so identical input yields identical bytes.
type Writer struct {
	zw          *zip.Writer
	compression core.Compression
	logger      *slog.Logger
	written     map[string]struct{}
	closed      bool
}

// NewWriter creates a Writer over w.
// If logger is nil, logging is disabled.
func NewWriter(w io.Writer, compression core.Compression, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	zw := zip.NewWriter(w)
	if compression.Method == core.MethodDeflate {
		level := compression.Level
		zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
			return flate.NewWriter(out, level)
		})
	}
	return &Writer{
		zw:          zw,
		compression: compression,
		logger:      logger,
		written:     make(map[string]struct{}),
	}
}

// Factory returns a core.ArchiveFactory producing Writers with the given settings.
func Factory(compression core.Compression, logger *slog.Logger) core.ArchiveFactory {
	return func(w io.Writer) core.ArchiveWriter {
		return NewWriter(w, compression, logger)
	}
}

// WriteEntry writes one member.
func (w *Writer) WriteEntry(name string, data []byte) error {
	if w.closed {
		return fmt.Errorf("write %s: archive closed", name)
	}
	if _, ok := w.written[name]; ok {
		return fmt.Errorf("%w: %s", core.ErrDuplicateEntry, name)
	}

	fw, err := w.zw.CreateHeader(&zip.FileHeader{
		Name:   name,
		Method: w.compression.Method,
	})
	if err != nil {
		return fmt.Errorf("create entry %s: %w", name, err)
	}
	if _, err := fw.Write(data); err != nil {
		return fmt.Errorf("write entry %s: %w", name, err)
	}

	w.written[name] = struct{}{}
	w.logger.Debug("wrote archive entry", "name", name, "size", len(data))
	return nil
}

// Close finalizes the zip central directory. Calling Close twice is a no-op.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	return w.zw.Close()
}
