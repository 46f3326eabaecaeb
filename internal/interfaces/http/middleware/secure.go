package middleware

import (
	"fmt"

	"github.com/gin-gonic/gin"
)

// SecurityConfig holds the response headers applied to every request
type SecurityConfig struct {
	HSTSEnabled bool
	HSTSMaxAge  int // seconds
}

// DefaultSecurityConfig leaves HSTS off; it only makes sense behind TLS
func DefaultSecurityConfig() SecurityConfig {
	return SecurityConfig{HSTSMaxAge: 31536000}
}

// Secure sets the headers of a JSON-only API. Ledger responses carry
// balances, so they are never cached.
func Secure(cfg SecurityConfig) gin.HandlerFunc {
	var hsts string
	if cfg.HSTSEnabled {
		hsts = fmt.Sprintf("max-age=%d; includeSubDomains", cfg.HSTSMaxAge)
	}

	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "no-referrer")
		h.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		h.Set("Cache-Control", "no-store")
		if hsts != "" {
			h.Set("Strict-Transport-Security", hsts)
		}
		c.Next()
	}
}
