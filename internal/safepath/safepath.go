// Package safepath provides name validation for pass bundle members.
package safepath

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/meigma/passbook/core"
)

// Compile-time interface implementation check.
var _ core.NameValidator = (*Validator)(nil)

// Validator checks bundle member and asset names.
type Validator struct{}

// NewValidator creates a new Validator.
func NewValidator() *Validator {
	return &Validator{}
}

// ValidatePath checks that a member path cannot escape the bundle root:
// no NUL bytes, no absolute or volume paths and no ".." components under
// either separator. Returns ErrInvalidName if the path is unsafe.
func (v *Validator) ValidatePath(path string) error {
	if containsNull(path) {
		return fmt.Errorf("%w: %q contains a NUL byte", core.ErrInvalidName, path)
	}
	if isAbsolute(path) {
		return fmt.Errorf("%w: %q is absolute", core.ErrInvalidName, path)
	}
	if containsTraversal(path) {
		return fmt.Errorf("%w: %q traverses outside the bundle", core.ErrInvalidName, path)
	}
	return nil
}

// ValidateName checks that name can be stored as a flat asset member.
// Reserved member names return ErrReservedName; empty, nested, dot or
// unsafe names return ErrInvalidName.
func (v *Validator) ValidateName(name string) error {
	if name == "" || name == "." {
		return fmt.Errorf("%w: empty name", core.ErrInvalidName)
	}
	if err := v.ValidatePath(name); err != nil {
		return err
	}
	if strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%w: %q is not a flat file name", core.ErrInvalidName, name)
	}
	if core.IsReservedName(name) {
		return fmt.Errorf("%w: %s", core.ErrReservedName, name)
	}
	return nil
}

func containsNull(path string) bool {
	return strings.IndexByte(path, 0) >= 0
}

func containsTraversal(path string) bool {
	for _, part := range strings.FieldsFunc(path, isSeparator) {
		if part == ".." {
			return true
		}
	}
	return false
}

func isAbsolute(path string) bool {
	if strings.HasPrefix(path, "/") || strings.HasPrefix(path, `\`) {
		return true
	}
	if filepath.IsAbs(path) || filepath.VolumeName(path) != "" {
		return true
	}
	// Drive letters are rejected on every platform since bundles travel.
	return len(path) >= 2 && path[1] == ':' && isLetter(path[0])
}

func isSeparator(r rune) bool {
	return r == '/' || r == '\\'
}

func isLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
