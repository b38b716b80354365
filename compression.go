package passbook

import "github.com/meigma/passbook/core"

// Compression selects how archive members are stored.
// Re-exported from core package.
type Compression = core.Compression

// DeflateCompression returns deflate at the default level (default).
func DeflateCompression() Compression {
	return core.DeflateCompression()
}

// BestCompression returns deflate at the best compression level.
func BestCompression() Compression {
	return core.BestCompression()
}

// StoreCompression returns uncompressed members.
func StoreCompression() Compression {
	return core.StoreCompression()
}

// ParseCompression maps "deflate", "best" or "store" to a Compression.
func ParseCompression(name string) (Compression, error) {
	return core.ParseCompression(name)
}
