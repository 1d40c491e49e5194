package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// SessionCookie names the cookie that identifies a browser session
	SessionCookie = "transcript_session"
	// SessionKey is the gin context key holding the session id
	SessionKey = "session_id"
)

// Session resolves the session id from its cookie and issues a new one when
// it is missing or malformed
func Session(maxAge int) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := c.Cookie(SessionCookie)
		if err != nil || uuid.Validate(id) != nil {
			id = uuid.New().String()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(SessionCookie, id, maxAge, "/", "", false, true)
		}

		c.Set(SessionKey, id)
		c.Next()
	}
}

// SessionID returns the session id set by Session
func SessionID(c *gin.Context) string {
	return c.GetString(SessionKey)
}
