// Package store keeps msgpackd records as MessagePack blobs in a provider.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/unkn0wn-root/msgpackhttp/codec"
	pr "github.com/unkn0wn-root/msgpackhttp/provider"
)

// ErrRejected is returned by Put when the provider refused the write.
var ErrRejected = errors.New("store: write rejected by provider")

type Record struct {
	ID        string            `msgpack:"id"`
	Kind      string            `msgpack:"kind,omitempty"`
	Payload   []byte            `msgpack:"payload,omitempty"`
	Attrs     map[string]string `msgpack:"attrs,omitempty"`
	CreatedAt time.Time         `msgpack:"created_at"`
}

type Store struct {
	p     pr.Provider
	codec codec.Codec[Record]
	ttl   time.Duration
}

// New wraps p. Stored entries larger than maxRecord bytes are treated as
// corrupt on read and dropped; maxRecord <= 0 disables the check.
func New(p pr.Provider, ttl time.Duration, maxRecord int) *Store {
	return &Store{
		p: p,
		codec: codec.LimitCodec[Record]{
			Inner:     codec.Msgpack[Record]{Policy: codec.Compact},
			MaxDecode: maxRecord,
		},
		ttl: ttl,
	}
}

func key(id string) string { return "record:" + id }

func (s *Store) Put(ctx context.Context, r Record) error {
	b, err := s.codec.Encode(r)
	if err != nil {
		return fmt.Errorf("store: encode %q: %w", r.ID, err)
	}
	ok, err := s.p.Set(ctx, key(r.ID), b, int64(len(b)), s.ttl)
	if err != nil {
		return err
	}
	if !ok {
		return ErrRejected
	}
	return nil
}

// Get returns (record, true, nil) on hit. Entries that fail to decode are
// deleted and reported as a miss.
func (s *Store) Get(ctx context.Context, id string) (Record, bool, error) {
	b, ok, err := s.p.Get(ctx, key(id))
	if err != nil || !ok {
		return Record{}, false, err
	}
	r, err := s.codec.Decode(b)
	if err != nil {
		_ = s.p.Del(ctx, key(id)) // self-heal
		return Record{}, false, nil
	}
	return r, true, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	return s.p.Del(ctx, key(id))
}

func (s *Store) Close(ctx context.Context) error {
	return s.p.Close(ctx)
}
