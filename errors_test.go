package msgpackhttp

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestKindStatus(t *testing.T) {
	cases := []struct {
		kind Kind
		want int
	}{
		{KindOverflow, http.StatusRequestEntityTooLarge},
		{KindContentType, http.StatusBadRequest},
		{KindDeserialize, http.StatusBadRequest},
		{KindSerialize, http.StatusBadRequest},
		{KindPayload, http.StatusBadRequest},
	}
	for _, tc := range cases {
		if got := (&Error{Kind: tc.kind}).Status(); got != tc.want {
			t.Fatalf("%s: status %d want %d", tc.kind, got, tc.want)
		}
	}
}

func TestErrorIsMatchesKindOnly(t *testing.T) {
	cause := errors.New("bad byte")
	err := fmt.Errorf("handler: %w", &Error{Kind: KindDeserialize, Err: cause})

	if !errors.Is(err, ErrDeserialize) {
		t.Fatalf("errors.Is(ErrDeserialize) false")
	}
	if errors.Is(err, ErrPayload) || errors.Is(err, ErrOverflow) {
		t.Fatalf("matched a different kind")
	}
	if !errors.Is(err, cause) {
		t.Fatalf("cause not reachable through Unwrap")
	}
	// an *Error with a cause is not a sentinel
	if errors.Is(ErrDeserialize, &Error{Kind: KindDeserialize, Err: cause}) {
		t.Fatalf("sentinel matched an error carrying a cause")
	}
}

func TestStatusOfAndKindOf(t *testing.T) {
	wrapped := fmt.Errorf("x: %w", &Error{Kind: KindOverflow})
	if StatusOf(wrapped) != http.StatusRequestEntityTooLarge {
		t.Fatalf("StatusOf wrapped overflow = %d", StatusOf(wrapped))
	}
	if KindOf(wrapped) != KindOverflow {
		t.Fatalf("KindOf = %s", KindOf(wrapped))
	}
	if StatusOf(errors.New("foreign")) != http.StatusInternalServerError {
		t.Fatalf("foreign error should map to 500")
	}
	if KindOf(nil) != 0 {
		t.Fatalf("KindOf(nil) should be 0")
	}
}

func TestErrorMessages(t *testing.T) {
	cause := errors.New("unexpected EOF")
	cases := []struct {
		err  *Error
		want string
	}{
		{&Error{Kind: KindOverflow}, "bigger than limit"},
		{&Error{Kind: KindContentType}, "content type"},
		{&Error{Kind: KindDeserialize, Err: cause}, "deserialize error: unexpected EOF"},
		{&Error{Kind: KindSerialize, Err: cause}, "serialize error: unexpected EOF"},
		{&Error{Kind: KindPayload, Err: ErrEmptyPayload}, "payload is empty"},
	}
	for _, tc := range cases {
		if msg := tc.err.Error(); !strings.Contains(msg, tc.want) {
			t.Fatalf("%s: %q does not contain %q", tc.err.Kind, msg, tc.want)
		}
	}
}

func TestKindString(t *testing.T) {
	if KindContentType.String() != "content_type" || Kind(99).String() != "kind(99)" {
		t.Fatalf("unexpected names: %s %s", KindContentType, Kind(99))
	}
}
