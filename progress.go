package passbook

// Operation names the pipeline step a ProgressEvent belongs to.
type Operation string

// OperationCreate reports bytes of a finished bundle copied to the
// WithOutput sink.
const OperationCreate Operation = "create"

// ProgressEvent reports how much of a bundle has been written.
type ProgressEvent struct {
	Operation        Operation
	BytesTransferred int64
	TotalBytes       int64
}

// Done reports whether the whole bundle has been written.
func (e ProgressEvent) Done() bool {
	return e.BytesTransferred >= e.TotalBytes
}

// Percent returns the written share in the range [0, 100].
func (e ProgressEvent) Percent() float64 {
	if e.TotalBytes <= 0 {
		return 100
	}
	return 100 * float64(e.BytesTransferred) / float64(e.TotalBytes)
}

// ProgressCallback receives ProgressEvents on the goroutine calling Create.
// It is called once per written chunk, so it should return quickly.
type ProgressCallback func(event ProgressEvent)
