package codec

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
)

// MsgpackMediaType is the media type of MessagePack bodies.
const MsgpackMediaType = "application/msgpack"

// Policy selects how structs are laid out on encode.
type Policy uint8

const (
	// Named encodes structs as maps keyed by field name. Bigger, but
	// survives field reordering between peers. Zero value.
	Named Policy = iota
	// Compact encodes structs as arrays; field identity is positional.
	Compact
)

func (p Policy) String() string {
	switch p {
	case Named:
		return "named"
	case Compact:
		return "compact"
	default:
		return fmt.Sprintf("policy(%d)", uint8(p))
	}
}

// ParsePolicy maps "named"/"compact" (case-insensitive) to a Policy.
// Empty input yields Named.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "named":
		return Named, nil
	case "compact":
		return Compact, nil
	default:
		return Named, fmt.Errorf("codec: unknown msgpack policy %q", s)
	}
}

// Msgpack is a Codec that serializes values using vmihailenco/msgpack/v5.
// The zero value is ready to use and encodes with the Named policy.
//
// Decode accepts both layouts regardless of Policy.
// Use `msgpack:"fieldName"` tags if you need explicit control over names.
type Msgpack[V any] struct {
	Policy Policy
}

var _ MediaCodec[struct{}] = Msgpack[struct{}]{}

func (Msgpack[V]) MediaType() string { return MsgpackMediaType }

func (c Msgpack[V]) Encode(v V) ([]byte, error) {
	if c.Policy == Named {
		return msgpack.Marshal(v)
	}
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.UseArrayEncodedStructs(true)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (Msgpack[V]) Decode(b []byte) (V, error) {
	var v V
	err := msgpack.Unmarshal(b, &v)
	return v, err
}
