package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/meigma/passbook"
)

func TestProgressLine(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	line := &progressLine{w: &buf, label: "Writing"}

	line.finish()
	assert.Empty(t, buf.String(), "finish without updates prints nothing")

	line.update(passbook.ProgressEvent{Operation: passbook.OperationCreate, BytesTransferred: 1024, TotalBytes: 4096})
	line.update(passbook.ProgressEvent{Operation: passbook.OperationCreate, BytesTransferred: 4096, TotalBytes: 4096})
	line.finish()

	assert.Equal(t,
		"\r\x1b[KWriting 1.0 KiB / 4.0 KiB ( 25%)"+
			"\r\x1b[KWriting 4.0 KiB / 4.0 KiB (100%)\n",
		buf.String())
}
