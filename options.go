package passbook

import (
	"crypto/x509"
	"errors"
	"io"
	"log/slog"

	"github.com/meigma/passbook/internal/manifest"
)

// BuilderOption configures a Builder.
type BuilderOption func(*Builder) error

// CreateOption configures a Create operation.
type CreateOption func(*createConfig)

// VerifyOption configures a Verify operation.
type VerifyOption func(*verifyConfig)

// createConfig holds configuration for Create operations.
type createConfig struct {
	output   io.Writer
	progress ProgressCallback
}

// verifyConfig holds configuration for Verify operations.
type verifyConfig struct {
	roots  *x509.CertPool
	limits ReadLimits
}

// WithSigner sets the signing implementation.
// By default a PKCS#7 signer from the signer package is used.
func WithSigner(s Signer) BuilderOption {
	return func(b *Builder) error {
		if s == nil {
			return errors.New("nil signer")
		}
		b.signer = s
		return nil
	}
}

// WithVerifier sets the signature verification implementation used by Verify.
// By default a PKCS#7 verifier from the signer package is used.
func WithVerifier(v Verifier) BuilderOption {
	return func(b *Builder) error {
		if v == nil {
			return errors.New("nil verifier")
		}
		b.verifier = v
		return nil
	}
}

// WithDigester sets the manifest digest algorithm. The default is SHA-1,
// which is what wallets expect.
func WithDigester(d Digester) BuilderOption {
	return func(b *Builder) error {
		if d == nil {
			return errors.New("nil digester")
		}
		b.digester = d
		return nil
	}
}

// WithDigestAlgorithm selects the manifest digest algorithm by name
// ("sha1", "sha256" or "sha512").
func WithDigestAlgorithm(name string) BuilderOption {
	return func(b *Builder) error {
		d, err := manifest.Lookup(name)
		if err != nil {
			return err
		}
		b.digester = d
		return nil
	}
}

// WithCompression sets how archive members are stored. The default is deflate.
// It has no effect when WithArchiveFactory is also given.
func WithCompression(c Compression) BuilderOption {
	return func(b *Builder) error {
		b.compression = c
		return nil
	}
}

// WithArchiveFactory replaces the zip container writer.
func WithArchiveFactory(f ArchiveFactory) BuilderOption {
	return func(b *Builder) error {
		if f == nil {
			return errors.New("nil archive factory")
		}
		b.archiveFactory = f
		return nil
	}
}

// WithLogger sets a logger for the builder. By default, logging is disabled.
func WithLogger(logger *slog.Logger) BuilderOption {
	return func(b *Builder) error {
		b.logger = logger
		return nil
	}
}

// WithOutput streams the finished archive to w instead of returning it in
// Bundle.Archive. Nothing is written to w unless every stage succeeds.
func WithOutput(w io.Writer) CreateOption {
	return func(c *createConfig) {
		c.output = w
	}
}

// WithProgress sets a callback to receive progress updates while the archive
// is written.
func WithProgress(cb ProgressCallback) CreateOption {
	return func(c *createConfig) {
		c.progress = cb
	}
}

// WithRoots requires the signing certificate to chain to a certificate in
// pool. Without it only the signature itself is checked.
func WithRoots(pool *x509.CertPool) VerifyOption {
	return func(c *verifyConfig) {
		c.roots = pool
	}
}

// WithReadLimits sets safety limits for opening the bundle.
// The default is DefaultReadLimits.
func WithReadLimits(limits ReadLimits) VerifyOption {
	return func(c *verifyConfig) {
		c.limits = limits
	}
}
