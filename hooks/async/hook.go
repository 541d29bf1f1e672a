// usage:
//
//	raw := sloghooks.New(slog.Default(), sloghooks.Options{
//	    RejectedEvery: 10, // sample logs: ~every 10th rejection
//	})
//
//	hooks := asynchook.New(raw, 1, 1000) // 1 worker; queue 1000 events
//	defer hooks.Close()
//
//	gw := msgpackhttp.New(msgpackhttp.Options{
//	    Hooks: hooks, // or `raw` if you don’t want async
//	})
package asynchook

import (
	"sync"

	"github.com/unkn0wn-root/msgpackhttp"
)

type Hooks struct {
	inner msgpackhttp.Hooks
	q     chan func()
	wg    sync.WaitGroup
	once  sync.Once
}

var _ msgpackhttp.Hooks = (*Hooks)(nil)

func New(inner msgpackhttp.Hooks, workers, qlen int) *Hooks {
	if workers <= 0 {
		workers = 1
	}
	if qlen <= 0 {
		qlen = 1024
	}

	h := &Hooks{inner: inner, q: make(chan func(), qlen)}
	h.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer h.wg.Done()
			for f := range h.q {
				f()
			}
		}()
	}
	return h
}

// Close drains queued events and stops the workers.
// Events submitted after Close are dropped.
func (h *Hooks) Close() {
	h.once.Do(func() {
		close(h.q)
		h.wg.Wait()
	})
}

func (h *Hooks) try(f func()) {
	defer func() { _ = recover() }() // send on closed queue after Close
	select {
	case h.q <- f:
	default: // drop
	}
}

func (h *Hooks) Rejected(k msgpackhttp.Kind, limit int64) {
	h.try(func() { h.inner.Rejected(k, limit) })
}
func (h *Hooks) Decoded(n int, limit int64) { h.try(func() { h.inner.Decoded(n, limit) }) }
func (h *Hooks) EncodeFailed(err error)     { h.try(func() { h.inner.EncodeFailed(err) }) }
