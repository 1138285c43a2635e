package server

import (
	"log/slog"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	slogGin "github.com/samber/slog-gin"

	"github.com/openmined/dirbox/internal/server/handlers/auth"
	"github.com/openmined/dirbox/internal/server/handlers/browse"
	"github.com/openmined/dirbox/internal/server/handlers/perms"
	"github.com/openmined/dirbox/internal/server/middlewares"
	"github.com/openmined/dirbox/internal/version"
)

func SetupRoutes(config *Config, svc *Services) http.Handler {
	r := gin.New()

	browseH := browse.New(svc.Access)
	permsH := perms.New(svc.Access)
	authH := auth.New(svc.Sessions, auth.Credentials{
		Username:     config.Auth.Username,
		PasswordHash: []byte(config.Auth.PasswordHash),
	})

	httpLogger := slog.Default().WithGroup("http")
	r.Use(slogGin.NewWithConfig(httpLogger, slogGin.Config{
		DefaultLevel:     slog.LevelInfo,
		ClientErrorLevel: slog.LevelWarn,
		ServerErrorLevel: slog.LevelError,
		WithRequestID:    true,
	}))
	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(gzip.Gzip(gzip.BestSpeed))
	r.Use(cors.Default())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.SessionAuth(svc.Sessions))

	r.GET("/healthz", HealthHandler)
	r.GET("/version", VersionHandler)

	r.GET("/login", authH.LoginPage)
	r.POST("/login", middlewares.RateLimiter(config.Auth.LoginRateLimit), authH.Login)
	r.GET("/logout", authH.Logout)

	apiGroup := r.Group("/api")
	{
		apiGroup.POST("/permissions/read", permsH.SetRead)
		apiGroup.POST("/permissions/write", permsH.SetWrite)
	}

	// everything else is a filesystem path under the root
	r.NoRoute(browseH.Handler)

	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{
			"error": "method not allowed",
		})
	})

	return r.Handler()
}

func HealthHandler(ctx *gin.Context) {
	ctx.PureJSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

func VersionHandler(ctx *gin.Context) {
	ctx.String(http.StatusOK, version.DetailedWithApp())
}

func init() {
	gin.SetMode(gin.ReleaseMode)
}
