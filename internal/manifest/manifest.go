package manifest

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/meigma/passbook/core"
)

// Build digests passJSON and every asset and returns the manifest together
// with its JSON encoding. The manifest never lists manifest.json or signature.
// Keys are emitted in sorted order, so equal input yields equal bytes.
func Build(d core.Digester, passJSON []byte, files map[string][]byte) (core.Manifest, []byte, error) {
	m := make(core.Manifest, len(files)+1)
	m[core.PassMember] = d.Digest(passJSON)
	for name, data := range files {
		if core.IsReservedName(name) {
			return nil, nil, fmt.Errorf("%w: %s", core.ErrReservedName, name)
		}
		m[name] = d.Digest(data)
	}

	data, err := json.Marshal(m)
	if err != nil {
		return nil, nil, fmt.Errorf("encode manifest: %w", err)
	}
	return m, data, nil
}

// Parse decodes manifest.json bytes.
func Parse(data []byte) (core.Manifest, error) {
	var m core.Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: decode manifest: %v", core.ErrManifestMismatch, err)
	}
	return m, nil
}

// Mismatch describes one disagreement between a manifest and bundle content.
type Mismatch struct {
	Name     string
	Expected string // digest recorded in the manifest ("" if missing)
	Actual   string // digest of the member ("" if absent from the bundle)
}

// String formats the mismatch for error messages.
func (m Mismatch) String() string {
	switch {
	case m.Expected == "":
		return m.Name + ": not listed in manifest"
	case m.Actual == "":
		return m.Name + ": listed in manifest but missing from bundle"
	default:
		return fmt.Sprintf("%s: digest %s, manifest records %s", m.Name, m.Actual, m.Expected)
	}
}

// Compare recomputes digests of members and reports every disagreement with m,
// sorted by name. members must not include manifest.json or signature.
func Compare(d core.Digester, m core.Manifest, members map[string][]byte) []Mismatch {
	var out []Mismatch
	for name, data := range members {
		actual := d.Digest(data)
		expected, ok := m[name]
		switch {
		case !ok:
			out = append(out, Mismatch{Name: name, Actual: actual})
		case expected != actual:
			out = append(out, Mismatch{Name: name, Expected: expected, Actual: actual})
		}
	}
	for name, expected := range m {
		if _, ok := members[name]; !ok {
			out = append(out, Mismatch{Name: name, Expected: expected})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// DetectDigester picks the digester whose hex length matches the entries of m.
// Falls back to SHA1 for an empty manifest.
func DetectDigester(m core.Manifest) (core.Digester, error) {
	size := -1
	for name, hexDigest := range m {
		if size == -1 {
			size = len(hexDigest)
			continue
		}
		if len(hexDigest) != size {
			return nil, fmt.Errorf("%w: %s digest length %d differs from %d", core.ErrManifestMismatch, name, len(hexDigest), size)
		}
	}
	if size == -1 {
		return SHA1(), nil
	}
	for _, d := range []core.Digester{SHA1(), SHA256(), SHA512()} {
		if d.Size() == size {
			return d, nil
		}
	}
	return nil, fmt.Errorf("%w: no digest algorithm produces %d hex characters", core.ErrManifestMismatch, size)
}
