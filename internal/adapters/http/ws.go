package httpadapter

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/PabloGalante/interviewbuddy/internal/observability"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = wsPongWait * 9 / 10
)

// buildUpgrader checks the Origin against allowedOrigins; an empty list
// permits all origins.
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

type liveEvent struct {
	Event string `json:"event"`
	dashboardResponse
}

// handleLiveDashboard streams the user's dashboard on every change
// until the client goes away.
func (s *Server) handleLiveDashboard(c *gin.Context) {
	userID := userFrom(c)
	log := observability.LoggerFromContext(c.Request.Context()).With("user_id", userID)

	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(context.WithoutCancel(c.Request.Context()))
	defer cancel()

	updates, err := s.interviews.Watch(ctx, userID)
	if err != nil {
		log.Error("watch interviews failed", "error", err)
		_ = conn.WriteJSON(errorResponse{Error: errorBody{Kind: "internal_error", Title: "Live updates unavailable"}})
		return
	}

	// The read loop only exists to notice the client closing.
	conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					log.Warn("live dashboard closed unexpectedly", "error", err)
				}
				return
			}
		}
	}()

	ping := time.NewTicker(wsPingPeriod)
	defer ping.Stop()

	log.Info("live dashboard connected")
	for {
		select {
		case dash, ok := <-updates:
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteJSON(liveEvent{Event: "interviews", dashboardResponse: toDashboardResponse(dash)}); err != nil {
				log.Debug("live dashboard write failed", "error", err)
				return
			}
		case <-ping.C:
			conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-ctx.Done():
			log.Info("live dashboard disconnected")
			return
		}
	}
}
