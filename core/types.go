// Package core provides the shared types and interfaces for passbook.
//
// This package exists to break import cycles between the root passbook package
// and the implementation packages (signer, internal/archive, internal/manifest).
// The passbook package re-exports the public types from this package, so
// external users should import passbook directly, not passbook/core.
package core

import (
	"context"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
)

// Sentinel errors for common failure conditions.
var (
	// ErrConfiguration indicates the signing credentials are missing or
	// combined inconsistently. It is raised before any signing attempt.
	ErrConfiguration = errors.New("passbook: invalid credential configuration")

	// ErrSigning indicates the signing primitive rejected the key, password,
	// certificate or trust chain.
	ErrSigning = errors.New("passbook: signing failed")

	// ErrEncoding indicates a pass value cannot be represented as JSON.
	ErrEncoding = errors.New("passbook: encoding failed")

	// ErrReservedName indicates an asset name collides with a bundle member
	// that the pipeline generates itself.
	ErrReservedName = errors.New("passbook: reserved bundle member name")

	// ErrInvalidName indicates an asset name is empty, nested or unsafe.
	ErrInvalidName = errors.New("passbook: invalid asset name")

	// ErrDuplicateEntry indicates an archive member was written twice.
	ErrDuplicateEntry = errors.New("passbook: duplicate archive entry")

	// ErrInvalidArchive indicates the bytes are not a readable pass bundle.
	ErrInvalidArchive = errors.New("passbook: invalid pass archive")

	// ErrManifestMismatch indicates the manifest does not describe the
	// archive members exactly.
	ErrManifestMismatch = errors.New("passbook: manifest mismatch")

	// ErrSignatureInvalid indicates the detached signature does not verify.
	ErrSignatureInvalid = errors.New("passbook: signature invalid")

	// ErrNotFound indicates the requested archive member does not exist.
	ErrNotFound = errors.New("passbook: not found")

	// ErrClosed indicates an operation was attempted on a closed resource.
	ErrClosed = errors.New("passbook: closed")
)

// Reserved bundle member names.
const (
	PassMember      = "pass.json"
	ManifestMember  = "manifest.json"
	SignatureMember = "signature"
)

// IsReservedName reports whether name is generated by the pipeline itself.
func IsReservedName(name string) bool {
	switch name {
	case PassMember, ManifestMember, SignatureMember:
		return true
	default:
		return false
	}
}

// Manifest maps bundle member names to hex-encoded content digests.
type Manifest map[string]string

// PasswordFunc supplies the private key password. A nil PasswordFunc means
// the key is not encrypted.
type PasswordFunc func() ([]byte, error)

// StaticPassword returns a PasswordFunc that always yields pw.
func StaticPassword(pw string) PasswordFunc {
	return func() ([]byte, error) {
		return []byte(pw), nil
	}
}

// Credentials describe one signing identity plus the trust chain certificate.
//
// The identity is given in exactly one form: certificate and key file paths,
// raw PEM certificate and key content, or a PKCS#12 bundle path. The chain is
// given either as a file path or as raw PEM content.
type Credentials struct {
	CertificateFile string
	KeyFile         string

	CertificatePEM string
	KeyPEM         string

	PKCS12File string

	ChainFile string
	ChainPEM  string

	Password PasswordFunc
}

// IdentityForm identifies which credential form carries the signing identity.
type IdentityForm int

// Identity forms.
const (
	IdentityNone IdentityForm = iota
	IdentityFiles
	IdentityPEM
	IdentityPKCS12
)

// String returns a human readable form name.
func (f IdentityForm) String() string {
	switch f {
	case IdentityFiles:
		return "files"
	case IdentityPEM:
		return "pem"
	case IdentityPKCS12:
		return "pkcs12"
	default:
		return "none"
	}
}

// Validate checks that exactly one complete identity form and exactly one
// chain form are present. It returns the identity form in use.
// All failures wrap ErrConfiguration.
func (c Credentials) Validate() (IdentityForm, error) {
	hasFiles := c.CertificateFile != "" || c.KeyFile != ""
	hasPEM := c.CertificatePEM != "" || c.KeyPEM != ""
	hasP12 := c.PKCS12File != ""

	forms := 0
	for _, present := range []bool{hasFiles, hasPEM, hasP12} {
		if present {
			forms++
		}
	}

	var form IdentityForm
	switch {
	case forms == 0:
		return IdentityNone, fmt.Errorf("%w: no signing certificate and key given", ErrConfiguration)
	case forms > 1:
		return IdentityNone, fmt.Errorf("%w: certificate paths, PEM content and PKCS#12 bundle are mutually exclusive", ErrConfiguration)
	case hasFiles:
		if c.CertificateFile == "" || c.KeyFile == "" {
			return IdentityNone, fmt.Errorf("%w: certificate path and key path must be given together", ErrConfiguration)
		}
		form = IdentityFiles
	case hasPEM:
		if c.CertificatePEM == "" || c.KeyPEM == "" {
			return IdentityNone, fmt.Errorf("%w: certificate PEM and key PEM must be given together", ErrConfiguration)
		}
		form = IdentityPEM
	default:
		form = IdentityPKCS12
	}

	switch {
	case c.ChainFile == "" && c.ChainPEM == "":
		return IdentityNone, fmt.Errorf("%w: no trust chain certificate given", ErrConfiguration)
	case c.ChainFile != "" && c.ChainPEM != "":
		return IdentityNone, fmt.Errorf("%w: chain path and chain PEM are mutually exclusive", ErrConfiguration)
	}

	return form, nil
}

// Signer produces a detached binary signature over manifest bytes.
// This interface is implemented by the signer package.
type Signer interface {
	// Sign returns a DER-encoded detached signature over manifest.
	// Returns ErrConfiguration for incomplete credentials and ErrSigning when
	// the key, password, certificate or chain is rejected.
	Sign(ctx context.Context, manifest []byte, creds Credentials) ([]byte, error)
}

// Verifier checks a detached signature over manifest bytes.
// This interface is implemented by the signer package.
type Verifier interface {
	// Verify returns nil when signature is a valid detached signature over
	// manifest. When roots is non-nil the signer certificate must chain to it.
	// Returns ErrSignatureInvalid otherwise.
	Verify(ctx context.Context, manifest, signature []byte, roots *x509.CertPool) error
}

// Digester computes fixed-length hex content digests.
// This interface is implemented by internal/manifest.
type Digester interface {
	// Name returns the algorithm name (e.g. "sha1").
	Name() string
	// Digest returns the lowercase hex digest of data.
	Digest(data []byte) string
	// Size returns the length of a hex digest in characters.
	Size() int
}

// ArchiveWriter writes named members into a bundle container.
// This interface is implemented by internal/archive.
type ArchiveWriter interface {
	// WriteEntry writes one member. Returns ErrDuplicateEntry if name was
	// already written.
	WriteEntry(name string, data []byte) error
	// Close finalizes the container. It must be called on every exit path.
	Close() error
}

// ArchiveFactory opens an ArchiveWriter over w.
type ArchiveFactory func(w io.Writer) ArchiveWriter

// ArchiveReader reads members back out of a bundle container.
// This interface is implemented by internal/archive.
type ArchiveReader interface {
	// Names returns member names in archive order.
	Names() []string
	// ReadEntry returns the content of the named member.
	// Returns ErrNotFound if it does not exist.
	ReadEntry(name string) ([]byte, error)
	// Size returns the uncompressed size of the named member.
	Size(name string) (int64, error)
}

// NameValidator validates asset names before they enter a pass.
// This interface is implemented by internal/safepath.
type NameValidator interface {
	// ValidateName returns ErrReservedName or ErrInvalidName for names that
	// cannot be stored as flat bundle members.
	ValidateName(name string) error
}

// ReadLimits defines safety limits for reading bundles back.
type ReadLimits struct {
	MaxFiles     int   // Maximum number of members (0 = no limit)
	MaxTotalSize int64 // Maximum total uncompressed size (0 = no limit)
	MaxFileSize  int64 // Maximum single member size (0 = no limit)
}

// ErrReadLimits indicates a bundle exceeded the configured ReadLimits.
var ErrReadLimits = errors.New("passbook: read limits exceeded")

// Entry describes one member of an opened bundle.
type Entry struct {
	Name string
	Size int64
}

// Generated reports whether the member is produced by the pipeline rather
// than supplied as an asset.
func (e Entry) Generated() bool {
	return IsReservedName(e.Name)
}
