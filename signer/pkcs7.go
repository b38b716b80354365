package signer

import (
	"context"
	"crypto/x509"
	"encoding/asn1"
	"fmt"
	"log/slog"

	"github.com/smallstep/pkcs7"

	"github.com/meigma/passbook/core"
)

// Compile-time interface implementation checks.
var (
	_ core.Signer   = (*PKCS7)(nil)
	_ core.Verifier = (*PKCS7)(nil)
)

// PKCS7 signs and verifies detached PKCS#7 SignedData over manifest bytes.
type PKCS7 struct {
	logger     *slog.Logger
	digestOID  asn1.ObjectIdentifier
	digestName string
}

// New creates a PKCS7 signer with the given options.
func New(opts ...Option) (*PKCS7, error) {
	p := &PKCS7{
		logger:     slog.New(slog.DiscardHandler),
		digestOID:  pkcs7.OIDDigestAlgorithmSHA256,
		digestName: "sha256",
	}
	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// Sign implements core.Signer.
func (p *PKCS7) Sign(ctx context.Context, manifest []byte, creds core.Credentials) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	id, err := LoadIdentity(creds)
	if err != nil {
		return nil, err
	}
	return p.SignWithIdentity(ctx, manifest, id)
}

// SignWithIdentity signs manifest with an already loaded identity.
func (p *PKCS7) SignWithIdentity(ctx context.Context, manifest []byte, id *Identity) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sd, err := pkcs7.NewSignedData(manifest)
	if err != nil {
		return nil, fmt.Errorf("%w: create signed data: %v", core.ErrSigning, err)
	}
	sd.SetDigestAlgorithm(p.digestOID)

	if err := sd.AddSigner(id.Certificate, id.Key, pkcs7.SignerInfoConfig{}); err != nil {
		return nil, fmt.Errorf("%w: add signer: %v", core.ErrSigning, err)
	}
	for _, c := range id.Chain {
		sd.AddCertificate(c)
	}
	sd.Detach()

	sig, err := sd.Finish()
	if err != nil {
		return nil, fmt.Errorf("%w: finish signature: %v", core.ErrSigning, err)
	}

	p.logger.Debug("signed manifest",
		"subject", id.Certificate.Subject.CommonName,
		"identity", id.Form.String(),
		"chain", len(id.Chain),
		"digest", p.digestName,
		"size", len(sig))
	return sig, nil
}

// Verify implements core.Verifier.
func (p *PKCS7) Verify(ctx context.Context, manifest, signature []byte, roots *x509.CertPool) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p7, err := pkcs7.Parse(signature)
	if err != nil {
		return fmt.Errorf("%w: parse signature: %v", core.ErrSignatureInvalid, err)
	}
	if len(p7.Content) > 0 {
		return fmt.Errorf("%w: signature is not detached", core.ErrSignatureInvalid)
	}
	p7.Content = manifest

	if roots != nil {
		err = p7.VerifyWithChain(roots)
	} else {
		err = p7.Verify()
	}
	if err != nil {
		return fmt.Errorf("%w: %v", core.ErrSignatureInvalid, err)
	}

	if signer := p7.GetOnlySigner(); signer != nil {
		p.logger.Debug("verified manifest signature",
			"subject", signer.Subject.CommonName,
			"chained", roots != nil)
	}
	return nil
}
