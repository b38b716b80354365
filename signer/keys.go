package signer

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
)

// ParsePrivateKeyPEM parses a PEM-encoded private key.
// Supports PKCS8, PKCS1 (RSA), and SEC1 (EC) formats.
// Pass nil password for unencrypted keys.
func ParsePrivateKeyPEM(pemData, password []byte) (crypto.Signer, error) {
	block, _ := pem.Decode(pemData)
	if block == nil {
		return nil, errors.New("failed to decode PEM block")
	}

	var keyBytes []byte
	var err error

	//nolint:staticcheck // x509.IsEncryptedPEMBlock is deprecated but still widely used
	if x509.IsEncryptedPEMBlock(block) {
		if password == nil {
			return nil, errors.New("encrypted key requires password")
		}
		//nolint:staticcheck // x509.DecryptPEMBlock is deprecated but still widely used
		keyBytes, err = x509.DecryptPEMBlock(block, password)
		if err != nil {
			return nil, fmt.Errorf("decrypt PEM block: %w", err)
		}
	} else {
		keyBytes = block.Bytes
	}

	switch block.Type {
	case "PRIVATE KEY": // PKCS8
		key, parseErr := x509.ParsePKCS8PrivateKey(keyBytes)
		if parseErr != nil {
			return nil, fmt.Errorf("parse PKCS8 private key: %w", parseErr)
		}
		signer, ok := key.(crypto.Signer)
		if !ok {
			return nil, fmt.Errorf("key type %T does not implement crypto.Signer", key)
		}
		return signer, nil

	case "RSA PRIVATE KEY": // PKCS1
		key, parseErr := x509.ParsePKCS1PrivateKey(keyBytes)
		if parseErr != nil {
			return nil, fmt.Errorf("parse PKCS1 private key: %w", parseErr)
		}
		return key, nil

	case "EC PRIVATE KEY": // SEC1
		key, parseErr := x509.ParseECPrivateKey(keyBytes)
		if parseErr != nil {
			return nil, fmt.Errorf("parse EC private key: %w", parseErr)
		}
		return key, nil

	default:
		return nil, fmt.Errorf("unsupported PEM block type: %s", block.Type)
	}
}

// isEncryptedPEM reports whether the first PEM block in pemData carries
// legacy encryption headers.
func isEncryptedPEM(pemData []byte) bool {
	block, _ := pem.Decode(pemData)
	//nolint:staticcheck // x509.IsEncryptedPEMBlock is deprecated but still widely used
	return block != nil && x509.IsEncryptedPEMBlock(block)
}

// ParseCertificatesPEM parses every CERTIFICATE block in pemData.
// Non-certificate blocks are skipped. At least one certificate is required.
func ParseCertificatesPEM(pemData []byte) ([]*x509.Certificate, error) {
	var certs []*x509.Certificate
	rest := pemData
	for {
		var block *pem.Block
		block, rest = pem.Decode(rest)
		if block == nil {
			break
		}
		if block.Type != "CERTIFICATE" {
			continue
		}
		cert, err := x509.ParseCertificate(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("parse certificate: %w", err)
		}
		certs = append(certs, cert)
	}
	if len(certs) == 0 {
		return nil, errors.New("no certificate found in PEM data")
	}
	return certs, nil
}

// checkKeyType rejects keys the PKCS#7 signer cannot use.
func checkKeyType(key crypto.PrivateKey) error {
	switch k := key.(type) {
	case *rsa.PrivateKey:
		if bits := k.N.BitLen(); bits < 2048 {
			return fmt.Errorf("RSA key size %d bits is too small (minimum 2048)", bits)
		}
		return nil
	case *ecdsa.PrivateKey:
		return nil
	case ed25519.PrivateKey:
		return errors.New("ed25519 keys are not supported for PKCS#7 signatures")
	default:
		return fmt.Errorf("unsupported key type: %T", key)
	}
}

type publicKeyEqualer interface {
	Equal(x crypto.PublicKey) bool
}

// keyMatchesCertificate reports whether key is the private half of cert's
// public key.
func keyMatchesCertificate(key crypto.Signer, cert *x509.Certificate) bool {
	pub, ok := key.Public().(publicKeyEqualer)
	if !ok {
		return false
	}
	return pub.Equal(cert.PublicKey)
}
