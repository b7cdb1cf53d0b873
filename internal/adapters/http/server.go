package httpadapter

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/PabloGalante/interviewbuddy/internal/app/feedback"
	"github.com/PabloGalante/interviewbuddy/internal/app/interview"
	"github.com/PabloGalante/interviewbuddy/internal/app/session"
	"github.com/PabloGalante/interviewbuddy/internal/observability"
	"github.com/PabloGalante/interviewbuddy/internal/validator"
)

type Server struct {
	interviews *interview.Service
	feedback   *feedback.Service
	sessions   *session.Manager
	upgrader   websocket.Upgrader
}

// Options configures the HTTP surface.
type Options struct {
	// Release turns off gin's debug output.
	Release        bool
	AllowedOrigins []string
}

func NewServer(
	interviews *interview.Service,
	feedbackSvc *feedback.Service,
	sessions *session.Manager,
	opts Options,
) http.Handler {
	if opts.Release {
		gin.SetMode(gin.ReleaseMode)
	}
	if err := validator.Setup(); err != nil {
		observability.Logger().Error("request validation messages unavailable", "error", err)
	}

	s := &Server{
		interviews: interviews,
		feedback:   feedbackSvc,
		sessions:   sessions,
		upgrader:   buildUpgrader(opts.AllowedOrigins),
	}

	r := gin.New()
	r.Use(gin.Recovery(), withCORS(opts.AllowedOrigins), withRequestID(), withLogging())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// /interviews → create (POST), dashboard (GET)
	// /interviews/live → websocket dashboard feed
	// /interviews/{id} → get, regenerate (PUT), delete
	iv := r.Group("/interviews", requireUser())
	{
		iv.POST("", s.handleCreateInterview)
		iv.GET("", s.handleDashboard)
		iv.GET("/live", s.handleLiveDashboard)
		iv.GET("/:id", s.handleGetInterview)
		iv.PUT("/:id", s.handleUpdateInterview)
		iv.DELETE("/:id", s.handleDeleteInterview)
		iv.POST("/:id/answers", s.handleRecordAnswer)
		iv.GET("/:id/feedback", s.handleFeedback)
		iv.POST("/:id/sessions", s.handleStartSession)
	}

	// /sessions/{id} → practice session controls, owner only
	ss := r.Group("/sessions/:sid", requireUser())
	{
		ss.GET("", s.handleSessionView)
		ss.DELETE("", s.handleEndSession)
		ss.POST("/next", s.handleNext)
		ss.POST("/previous", s.handlePrevious)
		ss.POST("/submit", s.handleSubmit)
		ss.POST("/autoread", s.handleToggleAutoRead)
		ss.POST("/play", s.handlePlay)
		ss.POST("/stop", s.handleStopReading)
		ss.POST("/fullscreen", s.handleFullScreen)
	}

	return r
}
