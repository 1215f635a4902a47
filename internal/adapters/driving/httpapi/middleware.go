package httpapi

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/custodia-labs/socrates/internal/logger"
)

const tokenKey = "github_token"

// GitHubToken requires a bearer token and stores it on the context.
func GitHubToken() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		header := ctx.GetHeader("Authorization")
		scheme, token, ok := strings.Cut(header, " ")
		token = strings.TrimSpace(token)
		if !ok || !strings.EqualFold(scheme, "bearer") || token == "" {
			AbortWithError(ctx, http.StatusUnauthorized, CodeTokenRequired,
				errors.New("github token required as 'Authorization: Bearer <token>'"))
			return
		}

		ctx.Set(tokenKey, token)
		ctx.Next()
	}
}

// RequestLogger logs each request through the verbose logger.
func RequestLogger() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		ctx.Next()

		status := ctx.Writer.Status()
		latency := time.Since(start).Round(time.Millisecond)
		switch {
		case status >= http.StatusInternalServerError:
			logger.Error("http %s %s %d %s: %s", ctx.Request.Method, ctx.FullPath(), status, latency,
				ctx.Errors.String())
		case status >= http.StatusBadRequest:
			logger.Warn("http %s %s %d %s", ctx.Request.Method, ctx.FullPath(), status, latency)
		default:
			logger.Info("http %s %s %d %s", ctx.Request.Method, ctx.FullPath(), status, latency)
		}
	}
}

// Recovery turns handler panics into 500 responses.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(ctx *gin.Context, recovered any) {
		logger.Error("http %s %s panicked: %v", ctx.Request.Method, ctx.Request.URL.Path, recovered)
		ctx.AbortWithStatusJSON(http.StatusInternalServerError, APIError{
			Code:    CodeInternalError,
			Message: "internal server error",
		})
	})
}
