package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/duynhne/gatehouse/internal/policy"
	"github.com/duynhne/gatehouse/internal/token"
)

// SessionCookie is the transport cookie carrying the session token.
const SessionCookie = "session"

// payloadKey stores the verified token payload in the gin context.
const payloadKey = "session_payload"

// Gate evaluates the access policy before any handler runs. Allowed
// authenticated requests get their verified payload stored in the
// context; everything else is redirected or rejected here and never
// reaches a handler.
func Gate(engine *policy.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		cookieToken, _ := c.Cookie(SessionCookie)

		decision := engine.Decide(c.Request.URL.Path, cookieToken)
		gateDecisionsTotal.WithLabelValues(decision.Kind.String()).Inc()

		switch decision.Kind {
		case policy.Allow:
			if decision.Payload != nil {
				c.Set(payloadKey, decision.Payload)
			}
			c.Next()

		case policy.RedirectLogin:
			c.Redirect(http.StatusFound, "/login")
			c.Abort()

		case policy.RedirectDashboard:
			c.Redirect(http.StatusFound, "/dashboard")
			c.Abort()

		case policy.Reject401:
			if cookieToken != "" {
				// A token was presented but failed verification; the
				// client only learns "unauthorized".
				zerolog.Ctx(c.Request.Context()).Warn().
					Str("path", c.Request.URL.Path).
					Msg("Session token rejected")
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})

		case policy.Reject403:
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
		}
	}
}

// PayloadFromContext returns the verified session payload stored by the
// gate, or nil for public routes.
func PayloadFromContext(c *gin.Context) *token.Payload {
	v, ok := c.Get(payloadKey)
	if !ok {
		return nil
	}
	payload, ok := v.(*token.Payload)
	if !ok {
		return nil
	}
	return payload
}
