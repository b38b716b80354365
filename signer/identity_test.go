package signer

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/passbook/core"
	"github.com/meigma/passbook/internal/testutil/testpki"
)

func TestLoadIdentity_Forms(t *testing.T) {
	t.Parallel()

	pki, err := testpki.New()
	require.NoError(t, err)
	dir := t.TempDir()
	files, err := pki.WriteFiles(dir)
	require.NoError(t, err)

	p12, err := pki.PKCS12("secret")
	require.NoError(t, err)
	p12Path := filepath.Join(dir, "identity.p12")
	require.NoError(t, os.WriteFile(p12Path, p12, 0o600))

	encrypted, err := pki.EncryptedKeyPEM("secret")
	require.NoError(t, err)

	tests := []struct {
		name  string
		creds core.Credentials
		form  core.IdentityForm
	}{
		{
			name:  "files",
			creds: core.Credentials{CertificateFile: files.Cert, KeyFile: files.Key, ChainFile: files.CA},
			form:  core.IdentityFiles,
		},
		{
			name:  "pem",
			creds: core.Credentials{CertificatePEM: pki.CertPEM(), KeyPEM: pki.KeyPEM(), ChainPEM: pki.CAPEM()},
			form:  core.IdentityPEM,
		},
		{
			name: "encrypted pem",
			creds: core.Credentials{
				CertificatePEM: pki.CertPEM(),
				KeyPEM:         encrypted,
				ChainPEM:       pki.CAPEM(),
				Password:       core.StaticPassword("secret"),
			},
			form: core.IdentityPEM,
		},
		{
			name:  "pkcs12",
			creds: core.Credentials{PKCS12File: p12Path, ChainFile: files.CA, Password: core.StaticPassword("secret")},
			form:  core.IdentityPKCS12,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			id, err := LoadIdentity(tt.creds)
			require.NoError(t, err)
			assert.Equal(t, tt.form, id.Form)
			assert.True(t, id.Certificate.Equal(pki.Cert))
			require.Len(t, id.Chain, 1, "chain certificate must not be duplicated")
			assert.True(t, id.Chain[0].Equal(pki.CACert))
		})
	}
}

func TestLoadIdentity_Errors(t *testing.T) {
	t.Parallel()

	pki, err := testpki.New()
	require.NoError(t, err)
	other, err := testpki.New()
	require.NoError(t, err)
	dir := t.TempDir()

	p12, err := pki.PKCS12("secret")
	require.NoError(t, err)
	p12Path := filepath.Join(dir, "identity.p12")
	require.NoError(t, os.WriteFile(p12Path, p12, 0o600))

	encrypted, err := pki.EncryptedKeyPEM("secret")
	require.NoError(t, err)

	tests := []struct {
		name    string
		creds   core.Credentials
		wantErr error
	}{
		{
			name:    "certificate path only",
			creds:   core.Credentials{CertificateFile: "cert.pem", ChainPEM: pki.CAPEM()},
			wantErr: core.ErrConfiguration,
		},
		{
			name:    "no chain",
			creds:   core.Credentials{CertificatePEM: pki.CertPEM(), KeyPEM: pki.KeyPEM()},
			wantErr: core.ErrConfiguration,
		},
		{
			name:    "missing file",
			creds:   core.Credentials{CertificateFile: filepath.Join(dir, "nope.pem"), KeyFile: filepath.Join(dir, "nope.key"), ChainPEM: pki.CAPEM()},
			wantErr: core.ErrSigning,
		},
		{
			name:    "mismatched key",
			creds:   core.Credentials{CertificatePEM: pki.CertPEM(), KeyPEM: other.KeyPEM(), ChainPEM: pki.CAPEM()},
			wantErr: core.ErrSigning,
		},
		{
			name:    "wrong key password",
			creds:   core.Credentials{CertificatePEM: pki.CertPEM(), KeyPEM: encrypted, ChainPEM: pki.CAPEM(), Password: core.StaticPassword("nope")},
			wantErr: core.ErrSigning,
		},
		{
			name:    "wrong bundle password",
			creds:   core.Credentials{PKCS12File: p12Path, ChainPEM: pki.CAPEM(), Password: core.StaticPassword("nope")},
			wantErr: core.ErrSigning,
		},
		{
			name:    "garbage chain",
			creds:   core.Credentials{CertificatePEM: pki.CertPEM(), KeyPEM: pki.KeyPEM(), ChainPEM: "not a certificate"},
			wantErr: core.ErrSigning,
		},
		{
			name: "password callback fails",
			creds: core.Credentials{
				CertificatePEM: pki.CertPEM(), KeyPEM: encrypted, ChainPEM: pki.CAPEM(),
				Password: func() ([]byte, error) { return nil, errors.New("no tty") },
			},
			wantErr: core.ErrSigning,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := LoadIdentity(tt.creds)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestLoadIdentity_PasswordOnlyWhenNeeded(t *testing.T) {
	t.Parallel()

	pki, err := testpki.New()
	require.NoError(t, err)
	encrypted, err := pki.EncryptedKeyPEM("secret")
	require.NoError(t, err)

	calls := 0
	password := func() ([]byte, error) {
		calls++
		return []byte("secret"), nil
	}

	_, err = LoadIdentity(core.Credentials{CertificatePEM: pki.CertPEM(), KeyPEM: pki.KeyPEM(), ChainPEM: pki.CAPEM(), Password: password})
	require.NoError(t, err)
	assert.Zero(t, calls, "plain key must not ask for a password")

	_, err = LoadIdentity(core.Credentials{CertificatePEM: pki.CertPEM(), KeyPEM: encrypted, ChainPEM: pki.CAPEM(), Password: password})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}
