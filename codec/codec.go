package codec

// Codec encodes/decodes values V to []byte for the wire.
type Codec[V any] interface {
	Encode(V) ([]byte, error)
	Decode([]byte) (V, error)
}

// MediaCodec is a Codec bound to the media type it reads and writes.
// The accumulator rejects requests whose Content-Type essence differs
// from MediaType before any body byte is read.
type MediaCodec[V any] interface {
	Codec[V]
	MediaType() string
}
