package passbook

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/meigma/passbook/internal/archive"
)

// Compile-time interface check.
var _ io.Closer = (*Archive)(nil)

// Archive is an opened pass bundle for reading.
// Archive is safe for concurrent use.
type Archive struct {
	mu     sync.RWMutex
	closed bool

	reader *archive.Reader
	size   int64
}

// OpenArchive opens the bundle held in data.
// Returns ErrInvalidArchive if data is not a zip container with safe member
// names, and ErrReadLimits if it exceeds limits.
func OpenArchive(data []byte, limits ReadLimits) (*Archive, error) {
	r, err := archive.NewReader(data, limits)
	if err != nil {
		return nil, err
	}
	return &Archive{reader: r, size: int64(len(data))}, nil
}

// OpenArchiveFile reads and opens the bundle at path.
func OpenArchiveFile(path string, limits ReadLimits) (*Archive, error) {
	//nolint:gosec // G304: bundle path is supplied by the caller on purpose
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read bundle: %w", err)
	}
	return OpenArchive(data, limits)
}

// Close releases the archive. After Close, all other methods return ErrClosed.
func (a *Archive) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.closed = true
	return nil
}

// Size returns the size of the container in bytes.
func (a *Archive) Size() int64 {
	return a.size
}

// Open returns a reader for a member of the bundle.
// The caller is responsible for closing the returned ReadCloser.
func (a *Archive) Open(name string) (io.ReadCloser, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if a.closed {
		return nil, ErrClosed
	}
	return a.reader.Open(name)
}

// ReadFile returns the content of a member of the bundle.
func (a *Archive) ReadFile(name string) ([]byte, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if a.closed {
		return nil, ErrClosed
	}
	return a.reader.ReadEntry(name)
}
