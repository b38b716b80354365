package signer

import (
	"encoding/asn1"
	"fmt"
	"log/slog"

	"github.com/smallstep/pkcs7"
)

// Option configures a PKCS7 signer.
type Option func(*PKCS7) error

// WithLogger sets the logger used for signing and verification events.
// If not set, logging is disabled.
func WithLogger(logger *slog.Logger) Option {
	return func(p *PKCS7) error {
		if logger != nil {
			p.logger = logger
		}
		return nil
	}
}

// WithDigestAlgorithm selects the message digest used inside the signature.
// Supported names are "sha1", "sha256", "sha384" and "sha512".
// The default is "sha256".
func WithDigestAlgorithm(name string) Option {
	return func(p *PKCS7) error {
		oid, err := digestOID(name)
		if err != nil {
			return err
		}
		p.digestOID = oid
		p.digestName = name
		return nil
	}
}

func digestOID(name string) (asn1.ObjectIdentifier, error) {
	switch name {
	case "sha1":
		return pkcs7.OIDDigestAlgorithmSHA1, nil
	case "sha256":
		return pkcs7.OIDDigestAlgorithmSHA256, nil
	case "sha384":
		return pkcs7.OIDDigestAlgorithmSHA384, nil
	case "sha512":
		return pkcs7.OIDDigestAlgorithmSHA512, nil
	default:
		return nil, fmt.Errorf("unsupported signature digest algorithm %q", name)
	}
}
