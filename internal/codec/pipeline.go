package codec

import (
	"errors"
	"io"
)

// Row is one tabular row flowing through a stream pipeline.
type Row []string

// ErrPipelineClosed is returned to a source pushing into a pipeline whose
// downstream stages have already terminated.
var ErrPipelineClosed = errors.New("pipeline closed")

// SourceFunc produces rows by calling push. Returning an error tears the
// pipeline down and delivers that error to the stream reader.
type SourceFunc func(push func(Row) error) error

// EncodeFunc consumes rows until the channel closes and writes the encoded
// byte stream to w.
type EncodeFunc func(rows <-chan Row, w io.Writer) error

// Run wires source -> encode -> stream and returns the live read handle.
// Both stages are running before the handle is handed back, so synchronous
// setup failures surface to the caller as a rejected call rather than a
// dead stream. Error contract: first failing stage wins and all stages are
// torn down; the reader observes that error on its next Read.
func Run(source SourceFunc, encode EncodeFunc) io.ReadCloser {
	pr, pw := io.Pipe()
	rows := make(chan Row, 64)
	done := make(chan struct{})
	srcErr := make(chan error, 1)

	go func() {
		err := source(func(r Row) error {
			select {
			case rows <- r:
				return nil
			case <-done:
				return ErrPipelineClosed
			}
		})
		srcErr <- err
		close(rows)
	}()

	go func() {
		encErr := encode(rows, pw)
		close(done)
		// Unblock a source still pushing, then drain what it queued.
		for range rows {
		}
		err := <-srcErr
		if err == nil || errors.Is(err, ErrPipelineClosed) {
			err = encErr
		}
		_ = pw.CloseWithError(err)
	}()

	return pr
}
