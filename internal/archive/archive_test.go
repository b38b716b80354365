package archive

import (
	"bytes"
	"io"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/passbook/core"
)

func buildArchive(t *testing.T, compression core.Compression, members ...string) []byte {
	t.Helper()

	var buf bytes.Buffer
	w := NewWriter(&buf, compression, nil)
	for _, name := range members {
		require.NoError(t, w.WriteEntry(name, []byte("content of "+name)))
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestWriter_RoundTrip(t *testing.T) {
	t.Parallel()

	for _, c := range []struct {
		name        string
		compression core.Compression
	}{
		{"deflate", core.DeflateCompression()},
		{"best", core.BestCompression()},
		{"store", core.StoreCompression()},
	} {
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()

			data := buildArchive(t, c.compression, "signature", "manifest.json", "pass.json", "icon.png")

			r, err := NewReader(data, core.ReadLimits{})
			require.NoError(t, err)
			assert.Equal(t, []string{"signature", "manifest.json", "pass.json", "icon.png"}, r.Names())

			content, err := r.ReadEntry("icon.png")
			require.NoError(t, err)
			assert.Equal(t, "content of icon.png", string(content))

			size, err := r.Size("pass.json")
			require.NoError(t, err)
			assert.Equal(t, int64(len("content of pass.json")), size)

			rc, err := r.Open("manifest.json")
			require.NoError(t, err)
			streamed, err := io.ReadAll(rc)
			require.NoError(t, err)
			require.NoError(t, rc.Close())
			assert.Equal(t, "content of manifest.json", string(streamed))
		})
	}
}

func TestWriter_StoreMethod(t *testing.T) {
	t.Parallel()

	data := buildArchive(t, core.StoreCompression(), "pass.json")
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	require.Len(t, zr.File, 1)
	assert.Equal(t, zip.Store, zr.File[0].Method)
}

func TestWriter_Deterministic(t *testing.T) {
	t.Parallel()

	a := buildArchive(t, core.DeflateCompression(), "signature", "manifest.json", "pass.json")
	b := buildArchive(t, core.DeflateCompression(), "signature", "manifest.json", "pass.json")
	assert.Equal(t, a, b)
}

func TestWriter_DuplicateEntry(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	w := NewWriter(&buf, core.DeflateCompression(), nil)
	require.NoError(t, w.WriteEntry("pass.json", []byte("{}")))
	err := w.WriteEntry("pass.json", []byte("{}"))
	require.ErrorIs(t, err, core.ErrDuplicateEntry)
	require.NoError(t, w.Close())
	require.NoError(t, w.Close(), "second Close is a no-op")

	err = w.WriteEntry("icon.png", nil)
	require.Error(t, err)
}

func TestFactory(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	w := Factory(core.StoreCompression(), nil)(&buf)
	require.NoError(t, w.WriteEntry("pass.json", []byte("{}")))
	require.NoError(t, w.Close())

	r, err := NewReader(buf.Bytes(), core.ReadLimits{})
	require.NoError(t, err)
	assert.Equal(t, []string{"pass.json"}, r.Names())
}

// rawZip writes members with the upstream zip writer so tests can build
// archives the Writer refuses to produce.
func rawZip(t *testing.T, names ...string) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range names {
		w, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Store})
		require.NoError(t, err)
		_, err = w.Write([]byte(name))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestNewReader_Rejects(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		data    []byte
		limits  core.ReadLimits
		wantErr error
	}{
		{name: "not a zip", data: []byte("hello"), wantErr: core.ErrInvalidArchive},
		{name: "traversal", data: rawZip(t, "../evil"), wantErr: core.ErrInvalidArchive},
		{name: "absolute", data: rawZip(t, "/etc/passwd"), wantErr: core.ErrInvalidArchive},
		{name: "duplicate", data: rawZip(t, "pass.json", "pass.json"), wantErr: core.ErrInvalidArchive},
		{name: "too many files", data: rawZip(t, "a", "b", "c"), limits: core.ReadLimits{MaxFiles: 2}, wantErr: core.ErrReadLimits},
		{name: "file too large", data: rawZip(t, "a-long-name"), limits: core.ReadLimits{MaxFileSize: 4}, wantErr: core.ErrReadLimits},
		{name: "total too large", data: rawZip(t, "abc", "def"), limits: core.ReadLimits{MaxTotalSize: 5}, wantErr: core.ErrReadLimits},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := NewReader(tt.data, tt.limits)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestNewReader_AcceptsNestedNames(t *testing.T) {
	t.Parallel()

	r, err := NewReader(rawZip(t, "pass.json", "en.lproj/pass.strings"), core.ReadLimits{})
	require.NoError(t, err)
	assert.Equal(t, []string{"pass.json", "en.lproj/pass.strings"}, r.Names())
}

func TestReader_NotFound(t *testing.T) {
	t.Parallel()

	r, err := NewReader(rawZip(t, "pass.json"), core.ReadLimits{})
	require.NoError(t, err)

	_, err = r.ReadEntry("missing")
	require.ErrorIs(t, err, core.ErrNotFound)
	_, err = r.Size("missing")
	require.ErrorIs(t, err, core.ErrNotFound)
	_, err = r.Open("missing")
	require.ErrorIs(t, err, core.ErrNotFound)
}

func TestCopyLimited(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, copyLimited(&buf, bytes.NewReader([]byte("abcd")), 4))
	assert.Equal(t, "abcd", buf.String())

	buf.Reset()
	err := copyLimited(&buf, bytes.NewReader([]byte("abcdef")), 4)
	require.ErrorIs(t, err, errSizeMismatch)

	buf.Reset()
	err = copyLimited(&buf, bytes.NewReader([]byte("ab")), 4)
	require.ErrorIs(t, err, errSizeMismatch)
}
