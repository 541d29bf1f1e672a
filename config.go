package msgpackhttp

import (
	"context"
	"net/http"
)

// Config holds the payload budget for requests it is attached to.
// Attach it to a Gateway via Options, or to a single route with Middleware;
// the request-scoped one wins. Treat it as read-only once requests use it.
type Config struct {
	limit int64
}

// NewConfig returns a Config with DefaultLimit.
func NewConfig() *Config {
	return &Config{limit: DefaultLimit}
}

// Limit sets the maximum accepted payload size in bytes. The default is 256KiB.
// Negative values are treated as 0.
func (c *Config) Limit(n int64) *Config {
	if n < 0 {
		n = 0
	}
	c.limit = n
	return c
}

// MaxBytes returns the configured budget. A nil Config reports DefaultLimit.
func (c *Config) MaxBytes() int64 {
	if c == nil {
		return DefaultLimit
	}
	return c.limit
}

type configKey struct{}

// WithConfig returns a context carrying c as the request-scoped Config.
func WithConfig(ctx context.Context, c *Config) context.Context {
	return context.WithValue(ctx, configKey{}, c)
}

// ConfigFrom returns the request-scoped Config, if any.
func ConfigFrom(ctx context.Context) (*Config, bool) {
	c, ok := ctx.Value(configKey{}).(*Config)
	return c, ok && c != nil
}

// Middleware attaches c to every request passing through it.
func Middleware(c *Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(WithConfig(r.Context(), c)))
		})
	}
}
