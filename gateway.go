package msgpackhttp

import (
	"context"
	"net/http"
	"strconv"

	"github.com/unkn0wn-root/msgpackhttp/codec"
)

// Options tune a Gateway. All fields are optional.
type Options struct {
	Config    *Config      // application-wide budget; nil => NewConfig()
	Policy    codec.Policy // struct layout for Respond; default Named
	Logger    Logger       // if nil, NopLogger is used
	Hooks     Hooks        // if nil, NopHooks is used
	ChunkSize int          // body read size; 0 => 8 KiB
}

// Gateway bridges Message to net/http: it extracts typed values from
// requests and writes typed values as responses. Safe for concurrent use.
type Gateway struct {
	cfg       *Config
	policy    codec.Policy
	log       Logger
	hooks     Hooks
	chunkSize int
}

var defaultGateway = New(Options{})

func New(opts Options) *Gateway {
	g := &Gateway{
		cfg:       opts.Config,
		policy:    opts.Policy,
		chunkSize: coalesce(opts.ChunkSize, defaultChunkSize),
	}
	if g.cfg == nil {
		g.cfg = NewConfig()
	}
	g.log = coalesce[Logger](opts.Logger, NopLogger{})
	g.hooks = coalesce[Hooks](opts.Hooks, NopHooks{})
	return g
}

func (g *Gateway) orDefault() *Gateway {
	if g == nil {
		return defaultGateway
	}
	return g
}

// Limit returns the effective budget for r: a Config attached to the request
// context wins over the Gateway's Config.
func (g *Gateway) Limit(r *http.Request) int64 {
	g = g.orDefault()
	if c, ok := ConfigFrom(r.Context()); ok {
		return c.MaxBytes()
	}
	return g.cfg.MaxBytes()
}

// Extract decodes the MessagePack body of r into T.
// Failures are *Error; use StatusOf or Fail to turn them into responses.
func Extract[T any](g *Gateway, r *http.Request) (MsgPack[T], error) {
	return ExtractWith[T](g, codec.Msgpack[T]{}, r)
}

// ExtractWith is Extract with an explicit codec (and thus media type).
func ExtractWith[T any](g *Gateway, c codec.MediaCodec[T], r *http.Request) (MsgPack[T], error) {
	g = g.orDefault()
	limit := g.Limit(r)

	var s Stream
	if r.Body != nil && r.Body != http.NoBody {
		s = ReaderStream(r.Body, g.chunkSize)
	}
	m := NewMessageWith[T](c, r.Header.Get("Content-Type"), declaredLength(r), s).Limit(limit)
	v, err := m.Run(r.Context())
	if err != nil {
		g.rejected(r.Context(), err, limit, m.Received())
		return MsgPack[T]{}, err
	}
	g.hooks.Decoded(m.Received(), limit)
	return MsgPack[T]{Value: v}, nil
}

// Bind is Extract that writes the failure response itself.
// ok is false when a response has already been written.
func Bind[T any](g *Gateway, w http.ResponseWriter, r *http.Request) (MsgPack[T], bool) {
	v, err := Extract[T](g, r)
	if err != nil {
		g.Fail(w, err)
		return v, false
	}
	return v, true
}

// Fail writes the response for an extraction or encode failure:
// 413 for overflow, 400 for the other kinds, 500 for foreign errors.
func (g *Gateway) Fail(w http.ResponseWriter, err error) {
	status := StatusOf(err)
	http.Error(w, http.StatusText(status), status)
}

// Respond encodes v with the Gateway's policy and writes it with status.
// If encoding fails nothing of v is written; the client gets a 400 and the
// *Error is returned.
func Respond[T any](g *Gateway, w http.ResponseWriter, status int, v T) error {
	g = g.orDefault()
	err := Write(w, status, v, g.policy)
	if KindOf(err) == KindSerialize {
		g.hooks.EncodeFailed(err)
		g.log.Error("msgpack encode failed", Fields{"err": err, "policy": g.policy.String()})
	}
	return err
}

// Write encodes v with policy p and writes it as an application/msgpack
// response. On encode failure it writes a 400 and returns a Serialize *Error.
func Write[T any](w http.ResponseWriter, status int, v T, p codec.Policy) error {
	body, err := codec.Msgpack[T]{Policy: p}.Encode(v)
	if err != nil {
		e := &Error{Kind: KindSerialize, Err: err}
		http.Error(w, http.StatusText(e.Status()), e.Status())
		return e
	}
	h := w.Header()
	h.Set("Content-Type", codec.MsgpackMediaType)
	h.Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(status)
	_, err = w.Write(body)
	return err
}

func (g *Gateway) rejected(ctx context.Context, err error, limit int64, received int) {
	kind := KindOf(err)
	g.hooks.Rejected(kind, limit)
	if ctx.Err() != nil {
		g.log.Debug("msgpack extraction cancelled", Fields{"err": err, "received": received})
		return
	}
	g.log.Debug("msgpack payload rejected", Fields{
		"kind":     kind.String(),
		"limit":    limit,
		"received": received,
		"err":      err,
	})
}

// declaredLength returns the Content-Length header, or r.ContentLength when
// the header was folded into the field by the server. "" means unknown.
func declaredLength(r *http.Request) string {
	if v := r.Header.Get("Content-Length"); v != "" {
		return v
	}
	if r.ContentLength > 0 {
		return strconv.FormatInt(r.ContentLength, 10)
	}
	return ""
}
