package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	apperrors "beautybook/internal/errors"
	"beautybook/internal/logger"
	"beautybook/internal/metrics"
	"beautybook/internal/models"

	"github.com/gin-gonic/gin"
)

// Keys set on the gin context by the auth middleware.
const (
	KeyUserID     = "user_id"
	KeyUserEmail  = "user_email"
	KeyIsOperator = "is_operator"
	KeyRequestID  = "request_id"
)

const requestIDHeader = "X-Request-ID"

func ContextWithUserID(ctx context.Context, userID int64) context.Context {
	return logger.ContextWithUserID(ctx, userID)
}

func UserIDFromContext(ctx context.Context) (int64, bool) {
	return logger.UserIDFromContext(ctx)
}

// Authenticator verifies credentials. Implementations return
// errors.ErrUnauthorized for bad credentials.
type Authenticator interface {
	Authenticate(ctx context.Context, email, password string) (*models.User, error)
}

// RequestID tags every request with an id, reusing the caller's if sent.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = logger.NewRequestID()
		}
		c.Set(KeyRequestID, id)
		c.Header(requestIDHeader, id)
		c.Request = c.Request.WithContext(logger.ContextWithRequestID(c.Request.Context(), id))
		c.Next()
	}
}

// CORS middleware для обработки CORS запросов
func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// Logger middleware для структурированного логирования запросов
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		latency := time.Since(start)
		logFields := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status_code", c.Writer.Status(),
			"latency_ms", latency.Milliseconds(),
			"client_ip", c.ClientIP(),
			"user_agent", c.Request.UserAgent(),
		}

		if requestID, exists := c.Get(KeyRequestID); exists {
			logFields = append(logFields, "request_id", requestID)
		}
		if userID, exists := c.Get(KeyUserID); exists {
			logFields = append(logFields, "user_id", userID)
		}

		switch {
		case c.Writer.Status() >= 500:
			if len(c.Errors) > 0 {
				logFields = append(logFields, "error", c.Errors.String())
			}
			slog.Error("Request completed with error", logFields...)
		case c.Writer.Status() >= 400:
			slog.Warn("Request rejected", logFields...)
		default:
			slog.Debug("Request completed", logFields...)
		}
	}
}

// Metrics records request latency per route template.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.HTTPRequestDuration.
			WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}

// Recovery middleware для восстановления после паники с детальным логированием
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		slog.Error("PANIC recovered",
			"panic", recovered,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"query", c.Request.URL.RawQuery,
			"client_ip", c.ClientIP(),
			"user_agent", c.Request.UserAgent(),
		)

		if !c.Writer.Written() {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
		}
	})
}

// BasicAuth требует HTTP Basic Auth; логин - email пользователя
func BasicAuth(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, _, ok := c.Request.BasicAuth(); !ok {
			c.Header("WWW-Authenticate", "Basic realm=\"Restricted\"")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		authenticate(c, auth)
	}
}

// OptionalBasicAuth authenticates when credentials are sent and lets
// anonymous requests through. Wrong credentials are still rejected.
func OptionalBasicAuth(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, _, ok := c.Request.BasicAuth(); !ok {
			c.Next()
			return
		}
		authenticate(c, auth)
	}
}

func authenticate(c *gin.Context, auth Authenticator) {
	username, password, _ := c.Request.BasicAuth()

	user, err := auth.Authenticate(c.Request.Context(), username, password)
	if err != nil {
		if !errors.Is(err, apperrors.ErrUnauthorized) {
			logger.WithContext(c.Request.Context()).Error("Authentication failed", "error", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	c.Set(KeyUserID, user.UserID)
	c.Set(KeyUserEmail, user.Email)
	c.Set(KeyIsOperator, user.IsOperator)
	c.Request = c.Request.WithContext(ContextWithUserID(c.Request.Context(), user.UserID))

	c.Next()
}

// RequireOperator must run after BasicAuth.
func RequireOperator() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !c.GetBool(KeyIsOperator) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": apperrors.ErrForbidden.Error()})
			return
		}
		c.Next()
	}
}
