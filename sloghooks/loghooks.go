package sloghooks

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/unkn0wn-root/msgpackhttp"
)

type Options struct {
	// Sampling to avoid floods; 0/1 = log all.
	RejectedEvery uint64
	// Log successful decodes at Debug. Off by default.
	LogDecoded bool
}

type Hooks struct {
	l    *slog.Logger
	opts Options

	rejectedCtr atomic.Uint64
}

var _ msgpackhttp.Hooks = (*Hooks)(nil)

func New(l *slog.Logger, opts Options) *Hooks {
	return &Hooks{l: l, opts: opts}
}

func sample(n uint64, ctr *atomic.Uint64) bool {
	if n == 0 || n == 1 {
		return true
	}
	return ctr.Add(1)%n == 0
}

func (h *Hooks) Rejected(kind msgpackhttp.Kind, limit int64) {
	if h.l == nil || !sample(h.opts.RejectedEvery, &h.rejectedCtr) {
		return
	}
	// overflow is the one worth seeing at Info: it usually means a limit is too tight
	lvl := slog.LevelDebug
	if kind == msgpackhttp.KindOverflow {
		lvl = slog.LevelInfo
	}
	h.l.Log(context.Background(), lvl, "msgpackhttp.rejected",
		"kind", kind.String(),
		"status", kind.Status(),
		"limit", limit)
}

func (h *Hooks) Decoded(size int, limit int64) {
	if h.l == nil || !h.opts.LogDecoded {
		return
	}
	h.l.Debug("msgpackhttp.decoded",
		"size", size,
		"limit", limit)
}

func (h *Hooks) EncodeFailed(err error) {
	if h.l == nil {
		return
	}
	h.l.Warn("msgpackhttp.encode_failed",
		"err", err)
}
