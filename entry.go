package passbook

import "github.com/meigma/passbook/core"

// Entry describes one member of an opened bundle.
// Re-exported from core package.
type Entry = core.Entry
