package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/unkn0wn-root/msgpackhttp/internal/config"
)

// ==== in-memory provider ====

type memProvider struct {
	mu     sync.Mutex
	m      map[string][]byte
	reject bool
	getErr error
	ttls   map[string]time.Duration
}

func newMem() *memProvider {
	return &memProvider{m: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (p *memProvider) Get(_ context.Context, k string) ([]byte, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.getErr != nil {
		return nil, false, p.getErr
	}
	v, ok := p.m[k]
	return v, ok, nil
}

func (p *memProvider) Set(_ context.Context, k string, v []byte, _ int64, ttl time.Duration) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.reject {
		return false, nil
	}
	p.m[k] = append([]byte(nil), v...)
	p.ttls[k] = ttl
	return true, nil
}

func (p *memProvider) Del(_ context.Context, k string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.m, k)
	return nil
}

func (p *memProvider) Close(context.Context) error { return nil }

func (p *memProvider) has(k string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.m[k]
	return ok
}

// ==== tests ====

func sampleRecord() Record {
	return Record{
		ID:        "r1",
		Kind:      "note",
		Payload:   []byte{1, 2, 3},
		Attrs:     map[string]string{"a": "b"},
		CreatedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestPutGetDelete(t *testing.T) {
	ctx := context.Background()
	mem := newMem()
	s := New(mem, time.Minute, 0)

	if err := s.Put(ctx, sampleRecord()); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if mem.ttls["record:r1"] != time.Minute {
		t.Fatalf("ttl not forwarded: %v", mem.ttls["record:r1"])
	}
	got, ok, err := s.Get(ctx, "r1")
	if err != nil || !ok {
		t.Fatalf("Get ok=%v err=%v", ok, err)
	}
	if got.Kind != "note" || got.Attrs["a"] != "b" || !got.CreatedAt.Equal(sampleRecord().CreatedAt) || len(got.Payload) != 3 {
		t.Fatalf("round trip: %+v", got)
	}

	if err := s.Delete(ctx, "r1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok, _ := s.Get(ctx, "r1"); ok {
		t.Fatalf("record still present after Delete")
	}
}

func TestPutRejected(t *testing.T) {
	mem := newMem()
	mem.reject = true
	err := New(mem, 0, 0).Put(context.Background(), sampleRecord())
	if !errors.Is(err, ErrRejected) {
		t.Fatalf("want ErrRejected, got %v", err)
	}
}

func TestGetSelfHealsCorruptEntry(t *testing.T) {
	ctx := context.Background()
	mem := newMem()
	mem.m["record:bad"] = []byte{0xc1}

	s := New(mem, 0, 0)
	if _, ok, err := s.Get(ctx, "bad"); ok || err != nil {
		t.Fatalf("corrupt entry: ok=%v err=%v", ok, err)
	}
	if mem.has("record:bad") {
		t.Fatalf("corrupt entry not deleted")
	}
}

func TestGetDropsOversizedEntry(t *testing.T) {
	ctx := context.Background()
	mem := newMem()
	if err := New(mem, 0, 0).Put(ctx, sampleRecord()); err != nil {
		t.Fatalf("Put: %v", err)
	}

	small := New(mem, 0, 8)
	if _, ok, err := small.Get(ctx, "r1"); ok || err != nil {
		t.Fatalf("oversized entry: ok=%v err=%v", ok, err)
	}
	if mem.has("record:r1") {
		t.Fatalf("oversized entry not deleted")
	}
}

func TestGetProviderError(t *testing.T) {
	mem := newMem()
	mem.getErr = errors.New("down")
	if _, _, err := New(mem, 0, 0).Get(context.Background(), "x"); err == nil {
		t.Fatalf("expected provider error")
	}
}

func TestOpenInProcess(t *testing.T) {
	ctx := context.Background()
	for _, kind := range []string{"ristretto", "bigcache"} {
		t.Run(kind, func(t *testing.T) {
			cfg := config.Default().Store
			cfg.Kind = kind
			cfg.MaxCost = 1 << 20
			s, err := Open(ctx, cfg)
			if err != nil {
				t.Fatalf("Open: %v", err)
			}
			defer s.Close(ctx)
			if _, ok, err := s.Get(ctx, "missing"); ok || err != nil {
				t.Fatalf("miss: ok=%v err=%v", ok, err)
			}
		})
	}
	if _, err := Open(ctx, config.StoreConfig{Kind: "memcached"}); err == nil {
		t.Fatalf("expected unknown kind error")
	}
}
