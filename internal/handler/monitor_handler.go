package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/jrmmllrs/test-app-backend/internal/config"
	"github.com/jrmmllrs/test-app-backend/internal/middleware"
	"github.com/jrmmllrs/test-app-backend/internal/service"
)

const monitorWriteTimeout = 10 * time.Second

// buildUpgrader creates a WebSocket upgrader with origin validation.
// An empty origin list permits all origins (development mode).
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

// MonitorHandler streams live proctoring updates to test owners over
// WebSocket, fanned out through Redis PubSub.
type MonitorHandler struct {
	rdb               *redis.Client
	proctoringService *service.ProctoringService
	testService       *service.TestService
	log               zerolog.Logger
	upgrader          websocket.Upgrader
}

// NewMonitorHandler creates a new MonitorHandler.
func NewMonitorHandler(rdb *redis.Client, proctoringService *service.ProctoringService, testService *service.TestService, log zerolog.Logger, allowedOrigins []string) *MonitorHandler {
	return &MonitorHandler{
		rdb:               rdb,
		proctoringService: proctoringService,
		testService:       testService,
		log:               log.With().Str("component", "monitor_handler").Logger(),
		upgrader:          buildUpgrader(allowedOrigins),
	}
}

// Stream godoc
// WS /ws/v1/tests/:testId/monitor?token=...
// Upgrades to WebSocket and relays every proctoring update committed
// against the test. Restricted to the test owner or an admin.
func (h *MonitorHandler) Stream(c *gin.Context) {
	p, ok := middleware.Principal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	testID, ok := paramID(c, "testId")
	if !ok {
		return
	}

	// Ownership check rides on the existing authoring authorization.
	if _, err := h.testService.Get(c.Request.Context(), p, testID); err != nil {
		failFromError(c, err)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	wsLog := h.log.With().Int("user_id", p.ID).Int("test_id", testID).Logger()
	wsLog.Info().Msg("Monitor connected")

	sub := h.rdb.Subscribe(c.Request.Context(), config.ProctorMonitorChannel(testID))
	defer sub.Close()

	// Reader goroutine detects client disconnect and stops the relay.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ch := sub.Channel()
	for {
		select {
		case <-done:
			wsLog.Debug().Msg("Monitor disconnected")
			return
		case msg, open := <-ch:
			if !open {
				wsLog.Warn().Msg("PubSub channel closed")
				return
			}
			conn.SetWriteDeadline(time.Now().Add(monitorWriteTimeout))
			if err := conn.WriteMessage(websocket.TextMessage, []byte(msg.Payload)); err != nil {
				wsLog.Debug().Err(err).Msg("Monitor write failed")
				return
			}
		}
	}
}
