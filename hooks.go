package msgpackhttp

// Hooks lightweight callbacks for high-signal gateway events.
// Implementations MUST be cheap and non-blocking.
// The gateway calls them on every extraction and response.
type Hooks interface {
	// An inbound body was rejected. limit is the effective budget.
	// kind ∈ {overflow, content_type, deserialize, payload}
	Rejected(kind Kind, limit int64)

	// An inbound body of size bytes was decoded under limit.
	Decoded(size int, limit int64)

	// An outbound value could not be encoded.
	EncodeFailed(err error)
}

// NopHooks is the default no-op
type NopHooks struct{}

func (NopHooks) Rejected(Kind, int64) {}
func (NopHooks) Decoded(int, int64)   {}
func (NopHooks) EncodeFailed(error)   {}

// MultiHooks forwards every event to each element, in order.
type MultiHooks []Hooks

var _ Hooks = MultiHooks(nil)

func (m MultiHooks) Rejected(k Kind, limit int64) {
	for _, h := range m {
		h.Rejected(k, limit)
	}
}

func (m MultiHooks) Decoded(size int, limit int64) {
	for _, h := range m {
		h.Decoded(size, limit)
	}
}

func (m MultiHooks) EncodeFailed(err error) {
	for _, h := range m {
		h.EncodeFailed(err)
	}
}
