package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

const anyOrigin = "*"

// Headers the web app sends on a flash request and reads back on downloads.
var (
	corsAllowHeaders  = strings.Join([]string{"Content-Type", "Authorization", guestIDHeader, requestIDHeader}, ", ")
	corsExposeHeaders = strings.Join([]string{requestIDHeader, "Content-Disposition"}, ", ")
)

// CORSPolicy lists the browser origins allowed to call the API. A "*" entry
// admits every origin but drops credentials.
type CORSPolicy struct {
	Origins []string
	MaxAge  time.Duration
}

// CORS answers preflights and decorates responses for allowed origins.
// Preflights from other origins are refused with 403.
func CORS(policy CORSPolicy) gin.HandlerFunc {
	origins := make(map[string]struct{})
	wildcard := false
	for _, o := range policy.Origins {
		switch trimmed := strings.TrimRight(strings.TrimSpace(o), "/"); trimmed {
		case "":
		case anyOrigin:
			wildcard = true
		default:
			origins[trimmed] = struct{}{}
		}
	}
	maxAge := ""
	if policy.MaxAge > 0 {
		maxAge = strconv.Itoa(int(policy.MaxAge / time.Second))
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		_, listed := origins[origin]
		allowed := origin != "" && (listed || wildcard)
		preflight := c.Request.Method == http.MethodOptions && c.GetHeader("Access-Control-Request-Method") != ""

		if allowed {
			h := c.Writer.Header()
			h.Add("Vary", "Origin")
			if listed {
				h.Set("Access-Control-Allow-Origin", origin)
				h.Set("Access-Control-Allow-Credentials", "true")
			} else {
				h.Set("Access-Control-Allow-Origin", anyOrigin)
			}
			h.Set("Access-Control-Expose-Headers", corsExposeHeaders)
			if preflight {
				h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
				h.Set("Access-Control-Allow-Headers", corsAllowHeaders)
				if maxAge != "" {
					h.Set("Access-Control-Max-Age", maxAge)
				}
			}
		}

		switch {
		case preflight && origin != "" && !allowed:
			c.AbortWithStatus(http.StatusForbidden)
		case c.Request.Method == http.MethodOptions:
			c.AbortWithStatus(http.StatusNoContent)
		default:
			c.Next()
		}
	}
}
