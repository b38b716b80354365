package signer

import (
	"crypto"
	"crypto/x509"
	"errors"
	"fmt"
	"os"

	pkcs12 "software.sslmate.com/src/go-pkcs12"

	"github.com/meigma/passbook/core"
)

// Identity is a loaded signing identity plus the chain certificates to
// embed alongside it.
type Identity struct {
	Certificate *x509.Certificate
	Key         crypto.Signer
	Chain       []*x509.Certificate
	Form        core.IdentityForm
}

// LoadIdentity resolves creds into an Identity.
// Returns ErrConfiguration if creds are incomplete or mixed, and ErrSigning
// if any certificate, key, bundle or password is rejected.
func LoadIdentity(creds core.Credentials) (*Identity, error) {
	form, err := creds.Validate()
	if err != nil {
		return nil, err
	}

	password := lazyPassword(creds.Password)

	var id *Identity
	switch form {
	case core.IdentityFiles:
		id, err = loadFiles(creds.CertificateFile, creds.KeyFile, password)
	case core.IdentityPEM:
		id, err = loadPEM([]byte(creds.CertificatePEM), []byte(creds.KeyPEM), password)
	case core.IdentityPKCS12:
		id, err = loadPKCS12(creds.PKCS12File, password)
	default:
		return nil, fmt.Errorf("%w: unknown identity form %s", core.ErrConfiguration, form)
	}
	if err != nil {
		return nil, err
	}
	id.Form = form

	chain, err := loadChain(creds)
	if err != nil {
		return nil, err
	}
	id.Chain = appendUnique(id.Chain, chain...)

	if err := checkKeyType(id.Key); err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrSigning, err)
	}
	if !keyMatchesCertificate(id.Key, id.Certificate) {
		return nil, fmt.Errorf("%w: private key does not match certificate %q", core.ErrSigning, id.Certificate.Subject.CommonName)
	}
	return id, nil
}

// lazyPassword wraps fn so it runs at most once and only when a key or
// bundle actually needs a password. A nil fn yields a nil password.
func lazyPassword(fn core.PasswordFunc) func() ([]byte, error) {
	var (
		done bool
		pw   []byte
		err  error
	)
	return func() ([]byte, error) {
		if fn == nil || done {
			return pw, err
		}
		done = true
		pw, err = fn()
		if err != nil {
			err = fmt.Errorf("%w: read key password: %v", core.ErrSigning, err)
		}
		return pw, err
	}
}

func loadFiles(certPath, keyPath string, password func() ([]byte, error)) (*Identity, error) {
	certPEM, err := readCredentialFile("certificate", certPath)
	if err != nil {
		return nil, err
	}
	keyPEM, err := readCredentialFile("key", keyPath)
	if err != nil {
		return nil, err
	}
	return loadPEM(certPEM, keyPEM, password)
}

func loadPEM(certPEM, keyPEM []byte, password func() ([]byte, error)) (*Identity, error) {
	certs, err := ParseCertificatesPEM(certPEM)
	if err != nil {
		return nil, fmt.Errorf("%w: signing certificate: %v", core.ErrSigning, err)
	}
	var pw []byte
	if isEncryptedPEM(keyPEM) {
		if pw, err = password(); err != nil {
			return nil, err
		}
	}
	key, err := ParsePrivateKeyPEM(keyPEM, pw)
	if err != nil {
		return nil, fmt.Errorf("%w: private key: %v", core.ErrSigning, err)
	}
	return &Identity{
		Certificate: certs[0],
		Key:         key,
		Chain:       certs[1:],
	}, nil
}

func loadPKCS12(path string, password func() ([]byte, error)) (*Identity, error) {
	data, err := readCredentialFile("PKCS#12 bundle", path)
	if err != nil {
		return nil, err
	}
	pw, err := password()
	if err != nil {
		return nil, err
	}
	key, cert, caCerts, err := pkcs12.DecodeChain(data, string(pw))
	if err != nil {
		if errors.Is(err, pkcs12.ErrIncorrectPassword) {
			return nil, fmt.Errorf("%w: PKCS#12 bundle: incorrect password", core.ErrSigning)
		}
		return nil, fmt.Errorf("%w: PKCS#12 bundle: %v", core.ErrSigning, err)
	}
	signer, ok := key.(crypto.Signer)
	if !ok {
		return nil, fmt.Errorf("%w: PKCS#12 key type %T does not implement crypto.Signer", core.ErrSigning, key)
	}
	return &Identity{
		Certificate: cert,
		Key:         signer,
		Chain:       caCerts,
	}, nil
}

func loadChain(creds core.Credentials) ([]*x509.Certificate, error) {
	data := []byte(creds.ChainPEM)
	if creds.ChainFile != "" {
		var err error
		data, err = readCredentialFile("chain certificate", creds.ChainFile)
		if err != nil {
			return nil, err
		}
	}
	certs, err := ParseCertificatesPEM(data)
	if err != nil {
		return nil, fmt.Errorf("%w: chain certificate: %v", core.ErrSigning, err)
	}
	return certs, nil
}

func readCredentialFile(what, path string) ([]byte, error) {
	//nolint:gosec // G304: credential paths are supplied by the caller on purpose
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s %s: %v", core.ErrSigning, what, path, err)
	}
	return data, nil
}

// appendUnique appends certs not already present in dst.
func appendUnique(dst []*x509.Certificate, certs ...*x509.Certificate) []*x509.Certificate {
	for _, c := range certs {
		dup := false
		for _, existing := range dst {
			if existing.Equal(c) {
				dup = true
				break
			}
		}
		if !dup {
			dst = append(dst, c)
		}
	}
	return dst
}
