package passbook

import "github.com/meigma/passbook/core"

// NameValidator validates asset names before they enter a pass.
// This interface is implemented by internal/safepath.
type NameValidator = core.NameValidator
