package passbook

import (
	"context"
	"fmt"
	"strings"

	"github.com/meigma/passbook/internal/manifest"
)

// VerifyResult describes a bundle that passed verification.
type VerifyResult struct {
	// Entries lists the members in archive order.
	Entries []Entry
	// Manifest is the decoded manifest.json.
	Manifest Manifest
	// Algorithm names the manifest digest algorithm.
	Algorithm string
	// PassJSON is the pass.json member.
	PassJSON []byte
}

// Verify checks a bundle produced by Create or any compatible tool.
//
// It requires pass.json, manifest.json and signature, recomputes the digest
// of every other member, requires the manifest to list exactly those members,
// and checks the detached signature over manifest.json.
//
// Returns ErrInvalidArchive for unreadable bundles or missing members,
// ErrManifestMismatch when digests or listings disagree, and
// ErrSignatureInvalid when the signature does not verify.
func (b *Builder) Verify(ctx context.Context, data []byte, opts ...VerifyOption) (*VerifyResult, error) {
	cfg := &verifyConfig{limits: DefaultReadLimits}
	for _, opt := range opts {
		opt(cfg)
	}

	a, err := OpenArchive(data, cfg.limits)
	if err != nil {
		return nil, err
	}
	defer a.Close()

	return b.VerifyArchive(ctx, a, opts...)
}

// VerifyArchive is like Verify for an already opened Archive.
func (b *Builder) VerifyArchive(ctx context.Context, a *Archive, opts ...VerifyOption) (*VerifyResult, error) {
	cfg := &verifyConfig{limits: DefaultReadLimits}
	for _, opt := range opts {
		opt(cfg)
	}

	entries, err := a.List()
	if err != nil {
		return nil, err
	}

	members := make(map[string][]byte, len(entries))
	meta := make(map[string][]byte, 2)
	for _, e := range entries {
		data, err := a.ReadFile(e.Name)
		if err != nil {
			return nil, err
		}
		switch e.Name {
		case ManifestMember, SignatureMember:
			meta[e.Name] = data
		default:
			members[e.Name] = data
		}
	}
	for _, required := range []string{PassMember, ManifestMember, SignatureMember} {
		_, inMeta := meta[required]
		_, inMembers := members[required]
		if !inMeta && !inMembers {
			return nil, fmt.Errorf("%w: missing %s", ErrInvalidArchive, required)
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m, err := manifest.Parse(meta[ManifestMember])
	if err != nil {
		return nil, err
	}
	d, err := manifest.DetectDigester(m)
	if err != nil {
		return nil, err
	}
	if d.Name() != b.digester.Name() {
		b.logger.Debug("manifest uses a different digest algorithm", "manifest", d.Name(), "builder", b.digester.Name())
	}

	if mismatches := manifest.Compare(d, m, members); len(mismatches) > 0 {
		msgs := make([]string, len(mismatches))
		for i, mm := range mismatches {
			msgs[i] = mm.String()
		}
		return nil, fmt.Errorf("%w: %s", ErrManifestMismatch, strings.Join(msgs, "; "))
	}
	b.logger.Debug("manifest matches members", "entries", len(m), "algorithm", d.Name())
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := b.verifier.Verify(ctx, meta[ManifestMember], meta[SignatureMember], cfg.roots); err != nil {
		return nil, fmt.Errorf("verify signature: %w", err)
	}
	b.logger.Debug("verified bundle signature", "chained", cfg.roots != nil)

	return &VerifyResult{
		Entries:   entries,
		Manifest:  m,
		Algorithm: d.Name(),
		PassJSON:  members[PassMember],
	}, nil
}
