package middleware

import (
	"net"
	"strings"

	"github.com/gin-gonic/gin"
)

// clientIP resolves the caller's address for rate limiting. Proxy headers win
// over the socket address since the server normally sits behind one.
func clientIP(c *gin.Context) string {
	// X-Forwarded-For lists every hop; the first entry is the caller.
	if forwarded := c.GetHeader("X-Forwarded-For"); forwarded != "" {
		first := strings.TrimSpace(strings.SplitN(forwarded, ",", 2)[0])
		if first != "" {
			return first
		}
	}

	if real := c.GetHeader("X-Real-IP"); real != "" {
		return strings.TrimSpace(real)
	}

	// RemoteAddr carries a port on direct connections.
	if host, _, err := net.SplitHostPort(c.Request.RemoteAddr); err == nil {
		return host
	}
	return c.Request.RemoteAddr
}
