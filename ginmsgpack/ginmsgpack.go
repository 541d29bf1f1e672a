// Package ginmsgpack plugs msgpackhttp into gin handlers.
package ginmsgpack

import (
	"github.com/gin-gonic/gin"

	"github.com/unkn0wn-root/msgpackhttp"
)

// Bind decodes the request body into T. On failure the mapped status is
// written, the handler chain is aborted and ok is false.
func Bind[T any](c *gin.Context, g *msgpackhttp.Gateway) (T, bool) {
	v, err := msgpackhttp.Extract[T](g, c.Request)
	if err != nil {
		_ = c.Error(err)
		g.Fail(c.Writer, err)
		c.Abort()
		var zero T
		return zero, false
	}
	return v.Value, true
}

// Render writes v as a MessagePack response with the Gateway's policy.
func Render[T any](c *gin.Context, g *msgpackhttp.Gateway, status int, v T) {
	if err := msgpackhttp.Respond(g, c.Writer, status, v); err != nil {
		_ = c.Error(err)
		c.Abort()
	}
}

// Limit attaches cfg as the request-scoped Config for every route below it.
func Limit(cfg *msgpackhttp.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request = c.Request.WithContext(msgpackhttp.WithConfig(c.Request.Context(), cfg))
		c.Next()
	}
}
