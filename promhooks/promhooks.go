// Package promhooks records gateway events as Prometheus metrics.
package promhooks

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/unkn0wn-root/msgpackhttp"
)

type Hooks struct {
	rejected     *prometheus.CounterVec
	decodedBytes prometheus.Histogram
	encodeFailed prometheus.Counter
}

var _ msgpackhttp.Hooks = (*Hooks)(nil)

// New creates the collectors under namespace and registers them with reg.
// A nil reg uses prometheus.DefaultRegisterer.
func New(reg prometheus.Registerer, namespace string) (*Hooks, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	h := &Hooks{
		rejected: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "msgpack",
				Name:      "rejected_total",
				Help:      "Inbound MessagePack bodies rejected, by failure kind.",
			},
			[]string{"kind", "status"},
		),
		decodedBytes: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "msgpack",
				Name:      "decoded_bytes",
				Help:      "Size of decoded MessagePack bodies in bytes.",
				Buckets:   prometheus.ExponentialBuckets(64, 4, 8),
			},
		),
		encodeFailed: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "msgpack",
				Name:      "encode_failures_total",
				Help:      "Outbound values that could not be encoded.",
			},
		),
	}
	for _, c := range []prometheus.Collector{h.rejected, h.decodedBytes, h.encodeFailed} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return h, nil
}

func (h *Hooks) Rejected(kind msgpackhttp.Kind, _ int64) {
	h.rejected.WithLabelValues(kind.String(), strconv.Itoa(kind.Status())).Inc()
}

func (h *Hooks) Decoded(size int, _ int64) {
	h.decodedBytes.Observe(float64(size))
}

func (h *Hooks) EncodeFailed(error) {
	h.encodeFailed.Inc()
}
