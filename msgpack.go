package msgpackhttp

import (
	"fmt"
	"net/http"

	"github.com/unkn0wn-root/msgpackhttp/codec"
)

// MsgPack wraps a decoded (or to-be-encoded) value.
// Value is the payload itself; handlers read and write it directly.
type MsgPack[T any] struct {
	Value T
}

// Get returns a pointer to the wrapped value.
func (m *MsgPack[T]) Get() *T { return &m.Value }

func (m MsgPack[T]) String() string {
	return fmt.Sprintf("MsgPack: %+v", m.Value)
}

// Render writes Value as a 200 response using the Named policy.
// Encode failures produce a 400 response instead.
func (m MsgPack[T]) Render(w http.ResponseWriter) error {
	return Write(w, http.StatusOK, m.Value, codec.Named)
}
