package archive

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/zip"

	"github.com/meigma/passbook/core"
)

// Compile-time interface implementation check.
var _ core.ArchiveReader = (*Reader)(nil)

// Reader provides random access to the members of a zip bundle.
type Reader struct {
	zr     *zip.Reader
	files  map[string]*zip.File
	names  []string
	limits core.ReadLimits
}

// NewReader opens the bundle in data.
// Returns ErrInvalidArchive for malformed containers, duplicate members or
// unsafe member names, and ErrReadLimits when limits are exceeded.
func NewReader(data []byte, limits core.ReadLimits) (*Reader, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrInvalidArchive, err)
	}

	if limits.MaxFiles > 0 && len(zr.File) > limits.MaxFiles {
		return nil, fmt.Errorf("%w: %d members exceeds limit %d", core.ErrReadLimits, len(zr.File), limits.MaxFiles)
	}

	r := &Reader{
		zr:     zr,
		files:  make(map[string]*zip.File, len(zr.File)),
		limits: limits,
	}

	var total uint64
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		if !validMemberName(f.Name) {
			return nil, fmt.Errorf("%w: unsafe member name %q", core.ErrInvalidArchive, f.Name)
		}
		if _, dup := r.files[f.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate member %q", core.ErrInvalidArchive, f.Name)
		}
		//nolint:gosec // G115: limits are non-negative by construction
		if limits.MaxFileSize > 0 && f.UncompressedSize64 > uint64(limits.MaxFileSize) {
			return nil, fmt.Errorf("%w: member %s is %d bytes", core.ErrReadLimits, f.Name, f.UncompressedSize64)
		}
		total += f.UncompressedSize64
		//nolint:gosec // G115: limits are non-negative by construction
		if limits.MaxTotalSize > 0 && total > uint64(limits.MaxTotalSize) {
			return nil, fmt.Errorf("%w: total size exceeds %d bytes", core.ErrReadLimits, limits.MaxTotalSize)
		}
		r.files[f.Name] = f
		r.names = append(r.names, f.Name)
	}

	return r, nil
}

// Names returns member names in archive order.
func (r *Reader) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Size returns the uncompressed size of the named member.
func (r *Reader) Size(name string) (int64, error) {
	f, ok := r.files[name]
	if !ok {
		return 0, fmt.Errorf("%w: %s", core.ErrNotFound, name)
	}
	//nolint:gosec // G115: bounded by the archive size checked in NewReader
	return int64(f.UncompressedSize64), nil
}

// ReadEntry returns the content of the named member.
func (r *Reader) ReadEntry(name string) ([]byte, error) {
	f, ok := r.files[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrNotFound, name)
	}

	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", core.ErrInvalidArchive, name, err)
	}
	defer rc.Close()

	var buf bytes.Buffer
	//nolint:gosec // G115: declared size was checked against limits in NewReader
	if err := copyLimited(&buf, rc, int64(f.UncompressedSize64)); err != nil {
		if errors.Is(err, errSizeMismatch) {
			return nil, fmt.Errorf("%w: %s: %v", core.ErrInvalidArchive, name, err)
		}
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

// Open returns a streaming reader for the named member.
func (r *Reader) Open(name string) (io.ReadCloser, error) {
	f, ok := r.files[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrNotFound, name)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", core.ErrInvalidArchive, name, err)
	}
	return rc, nil
}
