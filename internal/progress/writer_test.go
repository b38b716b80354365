package progress

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriter_TracksProgress(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	var events [][2]int64
	pw := NewWriter(&buf, 11, func(written, total int64) {
		events = append(events, [2]int64{written, total})
	})

	n, err := pw.Write([]byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	require.Len(t, events, 1)
	assert.Equal(t, [2]int64{5, 11}, events[0])

	_, err = pw.Write([]byte(" world"))
	require.NoError(t, err)
	assert.Equal(t, [2]int64{11, 11}, events[len(events)-1])
	assert.Equal(t, int64(11), pw.Written())
	assert.Equal(t, "hello world", buf.String())
}

func TestWriter_NilCallback(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	pw := NewWriter(&buf, -1, nil)

	_, err := pw.Write([]byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, int64(5), pw.Written())
}

func TestWriter_PropagatesError(t *testing.T) {
	t.Parallel()

	called := false
	pw := NewWriter(failingWriter{}, -1, func(int64, int64) { called = true })

	_, err := pw.Write([]byte("hello"))
	assert.Error(t, err)
	assert.False(t, called)
	assert.Zero(t, pw.Written())
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("disk full")
}
