package archive

import (
	"errors"
	"fmt"
	"io"

	"github.com/meigma/passbook/internal/safepath"
)

var errSizeMismatch = errors.New("content size does not match header")

// copyLimited copies exactly size bytes from src to dst and fails if src
// holds more or fewer bytes than the header declared.
func copyLimited(dst io.Writer, src io.Reader, size int64) error {
	n, err := io.Copy(dst, io.LimitReader(src, size+1))
	if err != nil {
		return err
	}
	if n != size {
		return fmt.Errorf("%w: got %d bytes, want %d", errSizeMismatch, n, size)
	}
	return nil
}

var memberValidator = safepath.NewValidator()

// validMemberName rejects absolute, traversing and NUL-containing names.
// Nested names are accepted on read so bundles produced by other tools open.
func validMemberName(name string) bool {
	return name != "" && memberValidator.ValidatePath(name) == nil
}
