package middleware

import (
	"github.com/gin-gonic/gin"
)

type header struct{ name, value string }

// apiHeaders suit a JSON API that never renders HTML and whose responses
// carry patient data.
var apiHeaders = []header{
	{"X-Frame-Options", "DENY"},
	{"X-Content-Type-Options", "nosniff"},
	{"Referrer-Policy", "no-referrer"},
	{"Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'"},
	{"Cache-Control", "no-store"},
}

const hstsValue = "max-age=31536000; includeSubDomains"

// SecurityHeaders sets the response hardening headers. HSTS is only sent when
// enforceHTTPS is set, since local deployments run over plain HTTP.
func SecurityHeaders(enforceHTTPS bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		for _, hdr := range apiHeaders {
			h.Set(hdr.name, hdr.value)
		}
		if enforceHTTPS {
			h.Set("Strict-Transport-Security", hstsValue)
		}
		c.Next()
	}
}
