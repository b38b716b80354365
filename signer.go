package passbook

import "github.com/meigma/passbook/core"

// Member names the pipeline generates. Assets may not use them.
const (
	PassMember      = core.PassMember
	ManifestMember  = core.ManifestMember
	SignatureMember = core.SignatureMember
)

// Credentials describe the signing identity and trust chain.
// Re-exported from core package.
type Credentials = core.Credentials

// PasswordFunc supplies the private key password.
// Re-exported from core package.
type PasswordFunc = core.PasswordFunc

// IdentityForm identifies which credential form carries the identity.
// Re-exported from core package.
type IdentityForm = core.IdentityForm

// Manifest maps bundle member names to hex content digests.
// Re-exported from core package.
type Manifest = core.Manifest

// StaticPassword returns a PasswordFunc that always yields pw.
func StaticPassword(pw string) PasswordFunc {
	return core.StaticPassword(pw)
}

// Signer produces the detached signature over manifest.json.
// This interface is implemented by the signer package.
type Signer = core.Signer

// Verifier checks the detached signature over manifest.json.
// This interface is implemented by the signer package.
type Verifier = core.Verifier

// Digester computes the hex content digests recorded in manifest.json.
// This interface is implemented by internal/manifest.
type Digester = core.Digester
