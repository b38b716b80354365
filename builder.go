package passbook

import (
	"fmt"
	"log/slog"

	"github.com/meigma/passbook/internal/archive"
	"github.com/meigma/passbook/internal/manifest"
	"github.com/meigma/passbook/signer"
)

// Builder turns passes into signed bundles and checks existing bundles.
// A Builder holds no per-pass state and is safe for concurrent use as long
// as its collaborators are.
type Builder struct {
	signer         Signer
	verifier       Verifier
	digester       Digester
	archiveFactory ArchiveFactory
	compression    Compression
	logger         *slog.Logger
}

// NewBuilder creates a Builder.
//
// By default manifests use SHA-1 digests, signatures are detached PKCS#7
// SignedData with SHA-256, and archives are deflate-compressed zip files.
func NewBuilder(opts ...BuilderOption) (*Builder, error) {
	b := &Builder{
		digester:    manifest.SHA1(),
		compression: DeflateCompression(),
		logger:      slog.New(slog.DiscardHandler),
	}

	for _, opt := range opts {
		if err := opt(b); err != nil {
			return nil, err
		}
	}
	if b.logger == nil {
		b.logger = slog.New(slog.DiscardHandler)
	}

	// Wire up default implementations
	if b.signer == nil || b.verifier == nil {
		p7, err := signer.New(signer.WithLogger(b.logger))
		if err != nil {
			return nil, fmt.Errorf("create signer: %w", err)
		}
		if b.signer == nil {
			b.signer = p7
		}
		if b.verifier == nil {
			b.verifier = p7
		}
	}
	if b.archiveFactory == nil {
		b.archiveFactory = archive.Factory(b.compression, b.logger)
	}

	return b, nil
}

// Digester returns the manifest digest algorithm in use.
func (b *Builder) Digester() Digester {
	return b.digester
}
