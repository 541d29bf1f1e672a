package msgpackhttp

import (
	"context"
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/unkn0wn-root/msgpackhttp/codec"
)

// Message accumulates one request body under a byte budget and decodes it into T.
//
// A Message is created per request and driven by exactly one call to Run.
// It is not safe for concurrent use.
type Message[T any] struct {
	codec  codec.MediaCodec[T]
	limit  int64
	length int64 // declared Content-Length; -1 when absent
	stream Stream
	err    error // recorded at construction; returned by Run without reading
	used   bool
	n      int
}

// NewMessage prepares a MessagePack decode of s.
// contentType and contentLength are the raw header values ("" when missing).
func NewMessage[T any](contentType, contentLength string, s Stream) *Message[T] {
	return NewMessageWith[T](codec.Msgpack[T]{}, contentType, contentLength, s)
}

// NewMessageWith is NewMessage with an explicit codec. The request's media type
// must match c.MediaType(); otherwise s is dropped unread and Run reports
// ErrContentType.
func NewMessageWith[T any](c codec.MediaCodec[T], contentType, contentLength string, s Stream) *Message[T] {
	m := &Message[T]{codec: c, limit: DefaultLimit, length: -1}
	if !mediaTypeIs(contentType, c.MediaType()) {
		m.err = &Error{Kind: KindContentType}
		return m
	}
	if l, err := strconv.ParseUint(strings.TrimSpace(contentLength), 10, 63); err == nil {
		m.length = int64(l)
	}
	m.stream = s
	return m
}

// Limit sets the maximum accepted payload size in bytes. Negative values are
// treated as 0. Must be called before Run.
func (m *Message[T]) Limit(n int64) *Message[T] {
	if n < 0 {
		n = 0
	}
	m.limit = n
	return m
}

// Received reports how many body bytes were accumulated.
func (m *Message[T]) Received() int { return m.n }

// Run reads the stream to the end and decodes it.
//
// Order: content type, declared length vs budget, then chunks. The budget is
// checked before every append against bytes actually received; Content-Length
// only short-circuits. Every failure is an *Error and is terminal.
//
// Run panics if called a second time.
func (m *Message[T]) Run(ctx context.Context) (T, error) {
	var zero T
	if m.used {
		panic("msgpackhttp: Message could not be used second time")
	}
	m.used = true

	if m.err != nil {
		return zero, m.err
	}
	if m.length >= 0 && m.length > m.limit {
		return zero, &Error{Kind: KindOverflow}
	}

	stream := m.stream
	m.stream = nil

	body, err := m.accumulate(ctx, stream)
	if err != nil {
		return zero, err
	}
	if len(body) == 0 {
		return zero, &Error{Kind: KindPayload, Err: ErrEmptyPayload}
	}

	v, err := m.codec.Decode(body)
	if err != nil {
		return zero, &Error{Kind: KindDeserialize, Err: err}
	}
	return v, nil
}

func (m *Message[T]) accumulate(ctx context.Context, s Stream) ([]byte, error) {
	if s == nil {
		return nil, nil
	}
	body := make([]byte, 0, min(int64(initialBufferSize), m.limit))
	for {
		if err := ctx.Err(); err != nil {
			return nil, &Error{Kind: KindPayload, Err: err}
		}
		chunk, err := s.Next(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return body, nil
			}
			return nil, &Error{Kind: KindPayload, Err: err}
		}
		if int64(len(body))+int64(len(chunk)) > m.limit {
			return nil, &Error{Kind: KindOverflow}
		}
		body = append(body, chunk...)
		m.n = len(body)
	}
}

// mediaTypeIs compares the essence of a Content-Type header (parameters
// dropped) with want. Media types are case-insensitive.
func mediaTypeIs(header, want string) bool {
	essence, _, _ := strings.Cut(header, ";")
	essence = strings.TrimSpace(essence)
	return essence != "" && strings.EqualFold(essence, want)
}
