package middleware

import (
	"net/http"

	"github.com/01moynul/farinez-golang/internal/session"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// SessionCookie carries the cart session id for browsers.
	SessionCookie = "farinez_session"
	// SessionHeader carries it for API clients; it wins over the cookie.
	SessionHeader = "X-Session-ID"
	// CtxSessionID is the context key holding the resolved id.
	CtxSessionID = "sessionID"
)

// SessionMiddleware resolves the cart session id, minting a new one when the
// request has none or an unparsable one. The id is echoed back in both the
// cookie and the header.
func SessionMiddleware(secureCookie bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(SessionHeader)
		if id == "" {
			id, _ = c.Cookie(SessionCookie)
		}
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}

		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(SessionCookie, id, int(session.TTL.Seconds()), "/", "", secureCookie, true)
		c.Header(SessionHeader, id)
		c.Set(CtxSessionID, id)
		c.Next()
	}
}
