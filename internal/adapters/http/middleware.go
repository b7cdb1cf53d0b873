package httpadapter

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/PabloGalante/interviewbuddy/internal/domain"
	"github.com/PabloGalante/interviewbuddy/internal/observability"
)

const (
	headerRequestID = "X-Request-ID"
	// The identity provider sits in front of the API and forwards the
	// signed-in user as an opaque id.
	headerUserID = "X-User-ID"

	ctxKeyUserID = "user_id"
)

// withRequestID tags every request with an id, taken from the client when present.
func withRequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := c.GetHeader(headerRequestID)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Header(headerRequestID, reqID)
		c.Request = c.Request.WithContext(observability.WithRequestID(c.Request.Context(), reqID))
		c.Next()
	}
}

// withLogging logs every request once it is served.
func withLogging() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		observability.LoggerFromContext(c.Request.Context()).Info("http request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
		)
	}
}

// withCORS opens the API to the configured web front-ends, or to all
// origins when none are configured.
func withCORS(allowedOrigins []string) gin.HandlerFunc {
	cfg := cors.DefaultConfig()
	if len(allowedOrigins) > 0 {
		cfg.AllowOrigins = allowedOrigins
	} else {
		cfg.AllowAllOrigins = true
	}
	cfg.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	cfg.AllowHeaders = []string{"Origin", "Content-Type", headerRequestID, headerUserID}
	cfg.ExposeHeaders = []string{headerRequestID}
	cfg.MaxAge = 12 * time.Hour
	return cors.New(cfg)
}

// requireUser rejects requests without a user id.
func requireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader(headerUserID)
		if userID == "" {
			userID = c.Query("userId")
		}
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse{Error: errorBody{
				Kind:        "unauthenticated",
				Title:       "Sign in required",
				Description: "Please sign in to continue.",
			}})
			return
		}
		c.Set(ctxKeyUserID, domain.UserID(userID))
		c.Next()
	}
}

func userFrom(c *gin.Context) domain.UserID {
	v, _ := c.Get(ctxKeyUserID)
	id, _ := v.(domain.UserID)
	return id
}
