package middlewares

import (
	"github.com/gin-contrib/secure"
	"github.com/gin-gonic/gin"
)

// SecurityHeaders sets the baseline browser hardening headers on every
// response.
func SecurityHeaders() gin.HandlerFunc {
	return secure.New(secure.Config{
		ContentTypeNosniff: true,
		BrowserXssFilter:   true,
		FrameDeny:          true,
		ReferrerPolicy:     "strict-origin-when-cross-origin",
	})
}
