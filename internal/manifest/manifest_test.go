package manifest

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/passbook/core"
)

func TestDigesters(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		digester core.Digester
		want     string
	}{
		{
			name:     "sha1",
			digester: SHA1(),
			want:     "2aae6c35c94fcfb415dbe95f408b9ce91ee846ed",
		},
		{
			name:     "sha256",
			digester: SHA256(),
			want:     "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := tt.digester.Digest([]byte("hello world"))
			assert.Equal(t, tt.want, got)
			assert.Len(t, got, tt.digester.Size())
			assert.Equal(t, tt.name, tt.digester.Name())
		})
	}
}

func TestLookup(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"", "sha1", "SHA256", "sha512"} {
		d, err := Lookup(name)
		require.NoError(t, err, name)
		assert.NotNil(t, d)
	}

	_, err := Lookup("md5")
	assert.Error(t, err)
}

func TestBuild(t *testing.T) {
	t.Parallel()

	passJSON := []byte(`{"serialNumber":"abc123"}`)
	files := map[string][]byte{
		"icon.png": []byte("icon"),
		"logo.png": []byte("logo"),
	}

	m, data, err := Build(SHA1(), passJSON, files)
	require.NoError(t, err)

	assert.Len(t, m, len(files)+1)
	assert.Equal(t, SHA1().Digest(passJSON), m[core.PassMember])
	assert.Equal(t, SHA1().Digest([]byte("icon")), m["icon.png"])
	assert.NotContains(t, m, core.ManifestMember)
	assert.NotContains(t, m, core.SignatureMember)

	var decoded map[string]string
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, map[string]string(m), decoded)
}

func TestBuild_Deterministic(t *testing.T) {
	t.Parallel()

	files := map[string][]byte{
		"a.png": []byte("a"),
		"b.png": []byte("b"),
		"c.png": []byte("c"),
	}

	_, first, err := Build(SHA256(), []byte("{}"), files)
	require.NoError(t, err)
	for range 5 {
		_, again, err := Build(SHA256(), []byte("{}"), files)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestBuild_RejectsReservedAsset(t *testing.T) {
	t.Parallel()

	_, _, err := Build(SHA1(), []byte("{}"), map[string][]byte{"signature": []byte("x")})
	assert.ErrorIs(t, err, core.ErrReservedName)
}

func TestCompare(t *testing.T) {
	t.Parallel()

	d := SHA1()
	m := core.Manifest{
		"pass.json": d.Digest([]byte("pass")),
		"icon.png":  d.Digest([]byte("icon")),
		"gone.png":  d.Digest([]byte("gone")),
	}
	members := map[string][]byte{
		"pass.json": []byte("pass"),
		"icon.png":  []byte("tampered"),
		"extra.png": []byte("extra"),
	}

	got := Compare(d, m, members)
	require.Len(t, got, 3)
	assert.Equal(t, "extra.png", got[0].Name)
	assert.Empty(t, got[0].Expected)
	assert.Equal(t, "gone.png", got[1].Name)
	assert.Empty(t, got[1].Actual)
	assert.Equal(t, "icon.png", got[2].Name)
	assert.Contains(t, got[2].String(), "manifest records")
}

func TestCompare_Clean(t *testing.T) {
	t.Parallel()

	members := map[string][]byte{"pass.json": []byte("{}")}
	m, _, err := Build(SHA1(), members["pass.json"], nil)
	require.NoError(t, err)
	assert.Empty(t, Compare(SHA1(), m, members))
}

func TestDetectDigester(t *testing.T) {
	t.Parallel()

	d, err := DetectDigester(core.Manifest{"pass.json": SHA256().Digest([]byte("x"))})
	require.NoError(t, err)
	assert.Equal(t, "sha256", d.Name())

	d, err = DetectDigester(core.Manifest{})
	require.NoError(t, err)
	assert.Equal(t, "sha1", d.Name())

	_, err = DetectDigester(core.Manifest{"a": "abc", "b": "abcd"})
	assert.ErrorIs(t, err, core.ErrManifestMismatch)

	_, err = DetectDigester(core.Manifest{"a": "abc"})
	assert.ErrorIs(t, err, core.ErrManifestMismatch)
}

func TestParse(t *testing.T) {
	t.Parallel()

	m, err := Parse([]byte(`{"pass.json":"00"}`))
	require.NoError(t, err)
	assert.Equal(t, "00", m["pass.json"])

	_, err = Parse([]byte(`not json`))
	assert.ErrorIs(t, err, core.ErrManifestMismatch)
}
