package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/custodia-labs/socrates/internal/core/ports/driving"
)

// Services are the driving ports the router serves.
type Services struct {
	Sync     driving.ProjectSyncService
	Projects driving.ProjectService
}

// SetupRoutes builds the HTTP handler.
func SetupRoutes(svc *Services) http.Handler {
	r := gin.New()
	r.Use(RequestLogger())
	r.Use(Recovery())

	gh := NewGitHubHandler(svc.Sync, svc.Projects)

	r.GET("/healthz", HealthHandler)

	github := r.Group("/github")
	{
		github.GET("/projects", gh.Projects)
		github.GET("/projects/:id/status", gh.Status)

		authed := github.Group("")
		authed.Use(GitHubToken())
		authed.POST("/import", gh.Import)
		authed.POST("/projects/:id/pull", gh.Pull)
		authed.POST("/projects/:id/push", gh.Push)
		authed.POST("/projects/:id/sync", gh.Sync)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "not found",
		})
	})

	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{
			"error": "method not allowed",
		})
	})

	return r.Handler()
}

// HealthHandler reports liveness.
func HealthHandler(ctx *gin.Context) {
	ctx.PureJSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

func init() {
	gin.SetMode(gin.ReleaseMode)
}
