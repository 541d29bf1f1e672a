package msgpackhttp

const (
	// DefaultLimit is the budget used when no Config is attached (256 KiB).
	DefaultLimit int64 = 256 << 10

	// initialBufferSize pre-sizes the accumulation buffer. It is a hint only.
	initialBufferSize = 8 << 10

	// defaultChunkSize is the read size ReaderStream uses when given <= 0.
	defaultChunkSize = 8 << 10
)

// coalesce returns def when v is the zero value of T - otherwise v.
func coalesce[T comparable](v, def T) T {
	var zero T
	if v == zero {
		return def
	}
	return v
}
