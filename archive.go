package passbook

import "github.com/meigma/passbook/core"

// ArchiveWriter writes named members into a bundle container.
// This interface is implemented by internal/archive.
type ArchiveWriter = core.ArchiveWriter

// ArchiveFactory opens an ArchiveWriter over a sink.
type ArchiveFactory = core.ArchiveFactory

// ArchiveReader reads members back out of a bundle container.
// This interface is implemented by internal/archive.
type ArchiveReader = core.ArchiveReader

// ReadLimits defines safety limits for reading bundles back.
// Re-exported from core package.
type ReadLimits = core.ReadLimits

// DefaultReadLimits bounds bundles opened for verification and inspection.
var DefaultReadLimits = ReadLimits{
	MaxFiles:     1000,
	MaxTotalSize: 64 << 20,
	MaxFileSize:  16 << 20,
}
