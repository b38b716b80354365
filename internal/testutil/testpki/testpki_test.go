package testpki

import (
	"crypto/x509"
	"encoding/pem"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	pkcs12 "software.sslmate.com/src/go-pkcs12"
)

func TestNew_LeafChainsToCA(t *testing.T) {
	t.Parallel()

	p, err := New()
	require.NoError(t, err)

	_, err = p.Cert.Verify(x509.VerifyOptions{
		Roots:     p.Roots(),
		KeyUsages: []x509.ExtKeyUsage{x509.ExtKeyUsageAny},
	})
	require.NoError(t, err)
	assert.Equal(t, "pass.com.example.test", p.Cert.Subject.CommonName)
}

func TestPKI_PEMEncodings(t *testing.T) {
	t.Parallel()

	p, err := New()
	require.NoError(t, err)

	block, _ := pem.Decode([]byte(p.CertPEM()))
	require.NotNil(t, block)
	assert.Equal(t, "CERTIFICATE", block.Type)

	block, _ = pem.Decode([]byte(p.KeyPEM()))
	require.NotNil(t, block)
	assert.Equal(t, "RSA PRIVATE KEY", block.Type)

	enc, err := p.EncryptedKeyPEM("secret")
	require.NoError(t, err)
	block, _ = pem.Decode([]byte(enc))
	require.NotNil(t, block)
	//nolint:staticcheck // checking legacy encryption headers
	assert.True(t, x509.IsEncryptedPEMBlock(block))
}

func TestPKI_PKCS12RoundTrip(t *testing.T) {
	t.Parallel()

	p, err := New()
	require.NoError(t, err)

	data, err := p.PKCS12("secret")
	require.NoError(t, err)

	_, cert, ca, err := pkcs12.DecodeChain(data, "secret")
	require.NoError(t, err)
	assert.True(t, cert.Equal(p.Cert))
	require.Len(t, ca, 1)
	assert.True(t, ca[0].Equal(p.CACert))
}

func TestPKI_WriteFiles(t *testing.T) {
	t.Parallel()

	p, err := New()
	require.NoError(t, err)

	files, err := p.WriteFiles(t.TempDir())
	require.NoError(t, err)

	for _, path := range []string{files.CA, files.Cert, files.Key} {
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.NotEmpty(t, data)
	}
}
