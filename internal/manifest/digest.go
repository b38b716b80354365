// Package manifest computes content digests and builds bundle manifests.
package manifest

import (
	//nolint:gosec // G505: SHA-1 is mandated by the wallet manifest format
	"crypto/sha1"
	_ "crypto/sha256"
	_ "crypto/sha512"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/opencontainers/go-digest"

	"github.com/meigma/passbook/core"
)

// Compile-time interface implementation checks.
var (
	_ core.Digester = sha1Digester{}
	_ core.Digester = algorithmDigester{}
)

// SHA1 returns the digester wallets expect in manifest.json.
func SHA1() core.Digester {
	return sha1Digester{}
}

// SHA256 returns a SHA-256 digester.
func SHA256() core.Digester {
	return algorithmDigester{alg: digest.SHA256}
}

// SHA512 returns a SHA-512 digester.
func SHA512() core.Digester {
	return algorithmDigester{alg: digest.SHA512}
}

// Lookup returns the digester registered under name.
func Lookup(name string) (core.Digester, error) {
	switch strings.ToLower(name) {
	case "", "sha1":
		return SHA1(), nil
	case "sha256":
		return SHA256(), nil
	case "sha512":
		return SHA512(), nil
	default:
		return nil, fmt.Errorf("unknown digest algorithm %q (want sha1, sha256 or sha512)", name)
	}
}

type sha1Digester struct{}

func (sha1Digester) Name() string { return "sha1" }

func (sha1Digester) Size() int { return sha1.Size * 2 }

func (sha1Digester) Digest(data []byte) string {
	//nolint:gosec // G401: see import
	sum := sha1.Sum(data)
	return hex.EncodeToString(sum[:])
}

// algorithmDigester adapts a go-digest algorithm to core.Digester.
type algorithmDigester struct {
	alg digest.Algorithm
}

func (d algorithmDigester) Name() string { return d.alg.String() }

func (d algorithmDigester) Size() int { return d.alg.Size() * 2 }

func (d algorithmDigester) Digest(data []byte) string {
	return d.alg.FromBytes(data).Encoded()
}
