package middlewares

import (
	"github.com/gin-gonic/gin"
	"github.com/openmined/dirbox/internal/server/session"
)

const (
	// SessionCookie is the one cookie carrying the opaque session token.
	SessionCookie = "session"

	identityContextKey = "identity"
	tokenContextKey    = "sessionToken"
)

// SessionAuth resolves the session cookie into an identity on the gin
// context. Absence or invalidity of the cookie means anonymous; this
// middleware never aborts a request.
func SessionAuth(sessions *session.Registry) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		token, err := ctx.Cookie(SessionCookie)
		if err == nil && token != "" {
			ctx.Set(tokenContextKey, token)
			if identity, ok := sessions.Validate(token); ok {
				ctx.Set(identityContextKey, identity)
			}
		}
		ctx.Next()
	}
}

// Identity returns the authenticated identity for this request, "" when
// anonymous.
func Identity(ctx *gin.Context) string {
	return ctx.GetString(identityContextKey)
}

// SessionToken returns the raw session cookie value, "" when absent.
func SessionToken(ctx *gin.Context) string {
	return ctx.GetString(tokenContextKey)
}
