package passbook

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/opencontainers/go-digest"

	"github.com/meigma/passbook/internal/manifest"
	"github.com/meigma/passbook/internal/progress"
)

// chunkSize is the write size used when streaming an archive to a sink.
const chunkSize = 32 << 10

// Bundle is the result of a successful Create.
type Bundle struct {
	// Archive holds the zip container. It is nil when WithOutput was used.
	Archive []byte
	// PassJSON is the exact pass.json member.
	PassJSON []byte
	// Manifest maps every digested member to its hex digest.
	Manifest Manifest
	// ManifestJSON is the exact manifest.json member.
	ManifestJSON []byte
	// Signature is the exact signature member (DER PKCS#7).
	Signature []byte
	// Size is the archive size in bytes.
	Size int64
	// Digest is the SHA-256 digest of the archive.
	Digest digest.Digest
}

// Create serializes p, builds its manifest, signs the manifest with creds
// and archives the result. The stages run strictly in that order and a
// failing stage stops the pipeline: no archive is written unless signing
// succeeded.
//
// Returns ErrEncoding if p cannot be serialized, ErrConfiguration if creds
// are incomplete, ErrSigning if the signer rejects them, and
// ErrDuplicateEntry if the archive writer sees a member twice.
func (b *Builder) Create(ctx context.Context, p *Pass, creds Credentials, opts ...CreateOption) (*Bundle, error) {
	// Apply options
	cfg := &createConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	if p == nil {
		return nil, fmt.Errorf("%w: nil pass", ErrEncoding)
	}

	// Serialize
	passJSON, err := p.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("serialize pass: %w", err)
	}
	b.logger.Debug("serialized pass", "serial", p.SerialNumber, "size", len(passJSON))
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Manifest
	m, manifestJSON, err := manifest.Build(b.digester, passJSON, p.files)
	if err != nil {
		return nil, fmt.Errorf("build manifest: %w", err)
	}
	b.logger.Debug("built manifest", "entries", len(m), "algorithm", b.digester.Name())
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Sign
	if _, err := creds.Validate(); err != nil {
		return nil, err
	}
	sig, err := b.signer.Sign(ctx, manifestJSON, creds)
	if err != nil {
		return nil, fmt.Errorf("sign manifest: %w", err)
	}
	b.logger.Debug("signed manifest", "size", len(sig))
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Archive
	data, err := b.writeArchive(sig, manifestJSON, passJSON, p)
	if err != nil {
		return nil, err
	}
	bundle := &Bundle{
		Archive:      data,
		PassJSON:     passJSON,
		Manifest:     m,
		ManifestJSON: manifestJSON,
		Signature:    sig,
		Size:         int64(len(data)),
		Digest:       digest.FromBytes(data),
	}
	b.logger.Debug("wrote archive", "size", bundle.Size, "digest", bundle.Digest.String())

	if cfg.output != nil {
		if err := writeOutput(cfg.output, data, cfg.progress); err != nil {
			return nil, fmt.Errorf("write archive: %w", err)
		}
		bundle.Archive = nil
	} else if cfg.progress != nil {
		cfg.progress(ProgressEvent{Operation: OperationCreate, BytesTransferred: bundle.Size, TotalBytes: bundle.Size})
	}

	return bundle, nil
}

// Create builds a signed bundle for p with a default Builder.
func (p *Pass) Create(ctx context.Context, creds Credentials, opts ...CreateOption) (*Bundle, error) {
	b, err := NewBuilder()
	if err != nil {
		return nil, err
	}
	return b.Create(ctx, p, creds, opts...)
}

// writeArchive writes signature, manifest.json, pass.json and then the
// assets in name order. The writer is closed on every path.
func (b *Builder) writeArchive(sig, manifestJSON, passJSON []byte, p *Pass) ([]byte, error) {
	var buf bytes.Buffer
	aw := b.archiveFactory(&buf)
	closed := false
	defer func() {
		if !closed {
			if cerr := aw.Close(); cerr != nil {
				b.logger.Warn("failed to close archive writer", "error", cerr)
			}
		}
	}()

	members := []struct {
		name string
		data []byte
	}{
		{SignatureMember, sig},
		{ManifestMember, manifestJSON},
		{PassMember, passJSON},
	}
	for _, name := range p.Files() {
		members = append(members, struct {
			name string
			data []byte
		}{name, p.files[name]})
	}

	for _, m := range members {
		if err := aw.WriteEntry(m.name, m.data); err != nil {
			return nil, fmt.Errorf("write %s: %w", m.name, err)
		}
	}

	closed = true
	if err := aw.Close(); err != nil {
		return nil, fmt.Errorf("close archive: %w", err)
	}
	return buf.Bytes(), nil
}

// writeOutput streams data to w in chunks, reporting progress after each.
func writeOutput(w io.Writer, data []byte, cb ProgressCallback) error {
	total := int64(len(data))
	if cb != nil {
		w = progress.NewWriter(w, total, func(written, total int64) {
			cb(ProgressEvent{Operation: OperationCreate, BytesTransferred: written, TotalBytes: total})
		})
	}
	for len(data) > 0 {
		n := min(chunkSize, len(data))
		written, err := w.Write(data[:n])
		if err != nil {
			return err
		}
		if written != n {
			return io.ErrShortWrite
		}
		data = data[n:]
	}
	return nil
}
