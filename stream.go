package msgpackhttp

import (
	"context"
	"io"
)

// Stream yields a body as a sequence of chunks, in order.
//
// Next returns a non-empty chunk and a nil error, or a nil chunk and an
// error. io.EOF ends the stream; any other error is a transport failure.
// A returned chunk is only valid until the following call to Next.
type Stream interface {
	Next(ctx context.Context) ([]byte, error)
}

// ReaderStream adapts r (typically an http.Request body) to a Stream reading
// at most chunkSize bytes per call. chunkSize <= 0 selects 8 KiB.
func ReaderStream(r io.Reader, chunkSize int) Stream {
	if chunkSize <= 0 {
		chunkSize = defaultChunkSize
	}
	return &readerStream{r: r, buf: make([]byte, chunkSize)}
}

type readerStream struct {
	r   io.Reader
	buf []byte
	err error // deferred error from a read that also returned data
}

func (s *readerStream) Next(ctx context.Context) ([]byte, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.r == nil {
		return nil, io.EOF
	}
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		n, err := s.r.Read(s.buf)
		if n > 0 {
			s.err = err
			return s.buf[:n], nil
		}
		if err != nil {
			s.err = err
			return nil, err
		}
		// n == 0 && err == nil: the reader made no progress, try again
	}
}
