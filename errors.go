package passbook

import "github.com/meigma/passbook/core"

// Sentinel errors for common failure conditions.
// Re-exported from core package.
var (
	// ErrConfiguration indicates missing or inconsistent signing credentials.
	ErrConfiguration = core.ErrConfiguration

	// ErrSigning indicates the key, password, certificate or chain was rejected.
	ErrSigning = core.ErrSigning

	// ErrEncoding indicates the pass cannot be serialized.
	ErrEncoding = core.ErrEncoding

	// ErrReservedName indicates an asset name collides with a generated member.
	ErrReservedName = core.ErrReservedName

	// ErrInvalidName indicates an asset name is empty, nested or unsafe.
	ErrInvalidName = core.ErrInvalidName

	// ErrDuplicateEntry indicates an archive member was written twice.
	ErrDuplicateEntry = core.ErrDuplicateEntry

	// ErrInvalidArchive indicates the bytes are not a readable pass bundle.
	ErrInvalidArchive = core.ErrInvalidArchive

	// ErrManifestMismatch indicates the manifest does not match the members.
	ErrManifestMismatch = core.ErrManifestMismatch

	// ErrSignatureInvalid indicates the detached signature does not verify.
	ErrSignatureInvalid = core.ErrSignatureInvalid

	// ErrNotFound indicates a bundle member does not exist.
	ErrNotFound = core.ErrNotFound

	// ErrReadLimits indicates a bundle exceeded the configured read limits.
	ErrReadLimits = core.ErrReadLimits

	// ErrClosed indicates an operation was attempted on a closed Archive.
	ErrClosed = core.ErrClosed
)
