package core

import (
	"fmt"

	"github.com/klauspost/compress/flate"
)

// Compression selects how archive members are stored.
type Compression struct {
	// Method is the zip method: 0 for store, 8 for deflate.
	Method uint16
	// Level is the flate level used when Method is deflate.
	Level int
}

// Zip compression methods.
const (
	MethodStore   uint16 = 0
	MethodDeflate uint16 = 8
)

// DeflateCompression returns deflate at the default level.
func DeflateCompression() Compression {
	return Compression{Method: MethodDeflate, Level: flate.DefaultCompression}
}

// BestCompression returns deflate at the best compression level.
func BestCompression() Compression {
	return Compression{Method: MethodDeflate, Level: flate.BestCompression}
}

// StoreCompression returns uncompressed members.
func StoreCompression() Compression {
	return Compression{Method: MethodStore}
}

// ParseCompression maps a CLI name ("deflate", "best", "store") to a Compression.
func ParseCompression(name string) (Compression, error) {
	switch name {
	case "", "deflate":
		return DeflateCompression(), nil
	case "best":
		return BestCompression(), nil
	case "store":
		return StoreCompression(), nil
	default:
		return Compression{}, fmt.Errorf("unknown compression %q (want deflate, best or store)", name)
	}
}
