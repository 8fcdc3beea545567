package middleware

import (
	"github.com/didip/tollbooth/v6"
	"github.com/didip/tollbooth/v6/limiter"
	"github.com/gin-gonic/gin"
)

// NewAuthLimiter bounds requests per second per client IP on the public auth
// endpoints. Coarse, IP-level protection; the per-identity resend throttle
// lives in the account service.
func NewAuthLimiter(rps float64) *limiter.Limiter {
	lmt := tollbooth.NewLimiter(rps, nil)
	lmt.SetIPLookups([]string{"X-Forwarded-For", "RemoteAddr", "X-Real-IP"})
	lmt.SetMessage(`{"error":"too many requests, try later"}`)
	lmt.SetMessageContentType("application/json")
	return lmt
}

func RateLimit(lmt *limiter.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if httpError := tollbooth.LimitByRequest(lmt, c.Writer, c.Request); httpError != nil {
			c.Abort()
			c.Writer.Header().Set("Content-Type", lmt.GetMessageContentType())
			c.Writer.WriteHeader(httpError.StatusCode)
			c.Writer.WriteString(lmt.GetMessage())
			return
		}
		c.Next()
	}
}
