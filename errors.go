package msgpackhttp

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failure. The set is closed.
type Kind uint8

const (
	// KindOverflow: declared or received size exceeds the budget.
	KindOverflow Kind = iota + 1
	// KindContentType: Content-Type missing or not the codec's media type.
	KindContentType
	// KindDeserialize: the codec could not decode the accumulated body.
	KindDeserialize
	// KindSerialize: the codec could not encode an outbound value.
	KindSerialize
	// KindPayload: reading the body failed, or the body was empty.
	KindPayload
)

func (k Kind) String() string {
	switch k {
	case KindOverflow:
		return "overflow"
	case KindContentType:
		return "content_type"
	case KindDeserialize:
		return "deserialize"
	case KindSerialize:
		return "serialize"
	case KindPayload:
		return "payload"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Status is the HTTP status a failure of this kind maps to.
func (k Kind) Status() int {
	if k == KindOverflow {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusBadRequest
}

// Error is the failure value produced by Message and the Gateway.
// Err carries the codec or transport cause where there is one.
type Error struct {
	Kind Kind
	Err  error
}

// Sentinels for errors.Is. They match any *Error of the same Kind.
var (
	ErrOverflow    = &Error{Kind: KindOverflow}
	ErrContentType = &Error{Kind: KindContentType}
	ErrDeserialize = &Error{Kind: KindDeserialize}
	ErrSerialize   = &Error{Kind: KindSerialize}
	ErrPayload     = &Error{Kind: KindPayload}
)

// ErrEmptyPayload is the cause of the Payload failure for a body with no bytes.
var ErrEmptyPayload = errors.New("payload is empty")

func (e *Error) Error() string {
	switch e.Kind {
	case KindOverflow:
		return "msgpackhttp: payload size is bigger than limit"
	case KindContentType:
		return "msgpackhttp: content type error"
	case KindDeserialize:
		return fmt.Sprintf("msgpackhttp: deserialize error: %v", e.Err)
	case KindSerialize:
		return fmt.Sprintf("msgpackhttp: serialize error: %v", e.Err)
	case KindPayload:
		return fmt.Sprintf("msgpackhttp: error reading payload: %v", e.Err)
	default:
		return fmt.Sprintf("msgpackhttp: %s: %v", e.Kind, e.Err)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports kind equality against another *Error without a cause,
// so errors.Is(err, ErrOverflow) works for any overflow.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Err == nil && t.Kind == e.Kind
}

// Status is the HTTP status for this failure.
func (e *Error) Status() int { return e.Kind.Status() }

// StatusOf returns the status of the *Error wrapped in err,
// or 500 if err does not carry one.
func StatusOf(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Status()
	}
	return http.StatusInternalServerError
}

// KindOf returns the Kind of the *Error wrapped in err, or 0.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
