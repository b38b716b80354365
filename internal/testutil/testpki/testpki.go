// Package testpki provides an offline certificate authority for tests.
// It issues a trust-chain certificate and a pass signing identity shaped like
// the ones wallets expect, and can export them as PEM files or PKCS#12.
package testpki

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"time"

	pkcs12 "software.sslmate.com/src/go-pkcs12"
)

// PKI holds a CA certificate and one leaf signing identity issued by it.
type PKI struct {
	CACert  *x509.Certificate
	CAKey   *rsa.PrivateKey
	Cert    *x509.Certificate
	Key     *rsa.PrivateKey
	PassTID string
}

// Files holds paths written by WriteFiles.
type Files struct {
	CA   string
	Cert string
	Key  string
}

// New creates a CA and a leaf certificate for pass type identifier
// "pass.com.example.test".
func New() (*PKI, error) {
	return NewWithCommonName("pass.com.example.test")
}

// NewWithCommonName creates a CA and a leaf certificate whose subject
// common name is cn.
func NewWithCommonName(cn string) (*PKI, error) {
	caKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return nil, fmt.Errorf("generate CA key: %w", err)
	}
	now := time.Now()
	caTemplate := &x509.Certificate{
		SerialNumber:          big.NewInt(1),
		Subject:               pkix.Name{CommonName: "Test Worldwide Developer Relations CA", Organization: []string{"Test"}},
		NotBefore:             now.Add(-time.Hour),
		NotAfter:              now.Add(24 * time.Hour),
		KeyUsage:              x509.KeyUsageCertSign | x509.KeyUsageCRLSign,
		BasicConstraintsValid: true,
		IsCA:                  true,
	}
	caDER, err := x509.CreateCertificate(rand.Reader, caTemplate, caTemplate, &caKey.PublicKey, caKey)
	if err != nil {
		return nil, fmt.Errorf("create CA certificate: %w", err)
	}
	caCert, err := x509.ParseCertificate(caDER)
	if err != nil {
		return nil, fmt.Errorf("parse CA certificate: %w", err)
	}

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return nil, fmt.Errorf("generate leaf key: %w", err)
	}
	leafTemplate := &x509.Certificate{
		SerialNumber: big.NewInt(2),
		Subject:      pkix.Name{CommonName: cn, OrganizationalUnit: []string{"TEAMID1234"}},
		NotBefore:    now.Add(-time.Hour),
		NotAfter:     now.Add(24 * time.Hour),
		KeyUsage:     x509.KeyUsageDigitalSignature,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageAny},
	}
	leafDER, err := x509.CreateCertificate(rand.Reader, leafTemplate, caCert, &key.PublicKey, caKey)
	if err != nil {
		return nil, fmt.Errorf("create leaf certificate: %w", err)
	}
	cert, err := x509.ParseCertificate(leafDER)
	if err != nil {
		return nil, fmt.Errorf("parse leaf certificate: %w", err)
	}

	return &PKI{
		CACert:  caCert,
		CAKey:   caKey,
		Cert:    cert,
		Key:     key,
		PassTID: cn,
	}, nil
}

// CAPEM returns the CA certificate as PEM.
func (p *PKI) CAPEM() string {
	return string(pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: p.CACert.Raw}))
}

// CertPEM returns the leaf certificate as PEM.
func (p *PKI) CertPEM() string {
	return string(pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: p.Cert.Raw}))
}

// KeyPEM returns the leaf private key as an unencrypted PKCS#1 PEM block.
func (p *PKI) KeyPEM() string {
	return string(pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(p.Key)}))
}

// PKCS8KeyPEM returns the leaf private key as an unencrypted PKCS#8 PEM block.
func (p *PKI) PKCS8KeyPEM() (string, error) {
	der, err := x509.MarshalPKCS8PrivateKey(p.Key)
	if err != nil {
		return "", err
	}
	return string(pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der})), nil
}

// EncryptedKeyPEM returns the leaf private key as a legacy encrypted PEM block.
func (p *PKI) EncryptedKeyPEM(password string) (string, error) {
	//nolint:staticcheck // legacy PEM encryption is what openssl emits for -des3 keys
	block, err := x509.EncryptPEMBlock(rand.Reader, "RSA PRIVATE KEY",
		x509.MarshalPKCS1PrivateKey(p.Key), []byte(password), x509.PEMCipherAES256)
	if err != nil {
		return "", fmt.Errorf("encrypt key: %w", err)
	}
	return string(pem.EncodeToMemory(block)), nil
}

// PKCS12 returns the leaf identity and CA certificate as a PKCS#12 bundle.
func (p *PKI) PKCS12(password string) ([]byte, error) {
	data, err := pkcs12.Modern.Encode(p.Key, p.Cert, []*x509.Certificate{p.CACert}, password)
	if err != nil {
		return nil, fmt.Errorf("encode pkcs12: %w", err)
	}
	return data, nil
}

// Roots returns a pool holding only the CA certificate.
func (p *PKI) Roots() *x509.CertPool {
	pool := x509.NewCertPool()
	pool.AddCert(p.CACert)
	return pool
}

// WriteFiles writes ca.pem, cert.pem and key.pem into dir.
func (p *PKI) WriteFiles(dir string) (Files, error) {
	files := Files{
		CA:   filepath.Join(dir, "ca.pem"),
		Cert: filepath.Join(dir, "cert.pem"),
		Key:  filepath.Join(dir, "key.pem"),
	}
	for path, content := range map[string]string{
		files.CA:   p.CAPEM(),
		files.Cert: p.CertPEM(),
		files.Key:  p.KeyPEM(),
	} {
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			return Files{}, fmt.Errorf("write %s: %w", path, err)
		}
	}
	return files, nil
}
