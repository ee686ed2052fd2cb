package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/testcraft-backend/internal/config"
	"github.com/stemsi/testcraft-backend/internal/identity"
	"github.com/stemsi/testcraft-backend/internal/middleware"
	"github.com/stemsi/testcraft-backend/internal/response"
	"github.com/stemsi/testcraft-backend/internal/service"
	ws "github.com/stemsi/testcraft-backend/internal/websocket"
)

const summaryTimeout = 5 * time.Second // keep a slow store from stalling the stream

// buildUpgrader creates a WebSocket upgrader with origin validation.
// allowedOrigins comes from config.Config.AllowedOrigins.
// An empty slice permits all origins (development mode).
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

// MonitorHandler streams live class analytics to the teacher dashboard.
type MonitorHandler struct {
	rdb              *redis.Client
	analyticsService *service.AnalyticsService
	notifier         identity.Notifier
	log              zerolog.Logger
	upgrader         websocket.Upgrader
}

// NewMonitorHandler creates a new MonitorHandler.
func NewMonitorHandler(
	rdb *redis.Client,
	analyticsService *service.AnalyticsService,
	notifier identity.Notifier,
	log zerolog.Logger,
	allowedOrigins []string,
) *MonitorHandler {
	return &MonitorHandler{
		rdb:              rdb,
		analyticsService: analyticsService,
		notifier:         notifier,
		log:              log.With().Str("component", "monitor_handler").Logger(),
		upgrader:         buildUpgrader(allowedOrigins),
	}
}

// sessionEnded reports whether an auth event ends the stream's session:
// an explicit sign-out of it, or a newer sign-in elsewhere.
func sessionEnded(ev identity.Event, jti string) (bool, string) {
	switch ev.Kind {
	case identity.EventSignedOut:
		if ev.SessionID == "" || ev.SessionID == jti {
			return true, "signed out"
		}
	case identity.EventSignedIn:
		if ev.SessionID != jti {
			return true, "signed in elsewhere"
		}
	}
	return false, ""
}

// ClassStream godoc
// WS /ws/v1/teacher/classes/:id/stream?token=...
// Sends the class summary on connect and again after every ingested batch of
// scores. The stream closes when the teacher signs out or signs in elsewhere.
func (h *MonitorHandler) ClassStream(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	classID := c.Param("id")

	// Ownership is checked before the upgrade so failures get a normal JSON error.
	summary, err := h.analyticsService.Summary(c.Request.Context(), classID)
	if err != nil {
		failFromError(c, err)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	wsLog := h.log.With().
		Str("teacher_id", claims.TeacherID).
		Str("class_id", classID).
		Logger()

	// The stream outlives the handshake request only through ctx.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := ws.WriteTyped(conn, ws.SummaryResponse{Event: ws.EventSummary, Summary: summary}); err != nil {
		return
	}

	pubsub := h.rdb.Subscribe(ctx, config.CacheKey.ClassScoresChannel(classID))
	defer pubsub.Close()
	scores := pubsub.Channel()

	authEvents, unsubscribe := h.notifier.Subscribe(ctx, claims.TeacherID)
	defer unsubscribe()

	actions := h.readActions(conn, cancel, wsLog)

	pingTicker := time.NewTicker(ws.PingPeriod)
	defer pingTicker.Stop()

	wsLog.Info().Msg("Teacher attached to class stream")
	defer wsLog.Info().Msg("Teacher detached from class stream")

	for {
		select {
		case <-ctx.Done():
			return

		case msg, ok := <-scores:
			if !ok {
				return
			}
			if err := ws.WriteRaw(conn, []byte(msg.Payload)); err != nil {
				return
			}
			if err := h.pushSummary(ctx, conn, classID); err != nil {
				wsLog.Warn().Err(err).Msg("Summary push failed")
				return
			}

		case ev, ok := <-authEvents:
			if !ok {
				return
			}
			if ended, reason := sessionEnded(ev, claims.ID); ended {
				_ = ws.WriteTyped(conn, ws.SignedOutResponse{Event: ws.EventSignedOut, Reason: reason})
				_ = ws.Close(conn, websocket.ClosePolicyViolation, reason)
				wsLog.Info().Str("reason", reason).Msg("Closing class stream")
				return
			}

		case action, ok := <-actions:
			if !ok {
				return
			}
			switch action {
			case ws.ActionPing:
				err = ws.WriteTyped(conn, ws.PongResponse{Event: ws.EventPong})
			case ws.ActionRefresh:
				err = h.pushSummary(ctx, conn, classID)
			default:
				err = ws.WriteError(conn, "unknown action: "+string(action))
			}
			if err != nil {
				return
			}

		case <-pingTicker.C:
			if err := ws.WritePing(conn); err != nil {
				return
			}
		}
	}
}

// readActions owns the read side of the connection. All writes stay on the
// handler goroutine, which receives the client's actions through the channel.
func (h *MonitorHandler) readActions(conn *websocket.Conn, cancel context.CancelFunc, wsLog zerolog.Logger) <-chan ws.Action {
	actions := make(chan ws.Action, 8)
	ws.KeepAlive(conn)

	go func() {
		defer close(actions)
		defer cancel()
		for {
			var msg ws.RequestEnvelope
			if err := ws.ReadJSON(conn, &msg); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					wsLog.Warn().Err(err).Msg("Unexpected close")
				}
				return
			}
			select {
			case actions <- msg.Action:
			default:
				wsLog.Warn().Str("action", string(msg.Action)).Msg("Dropping action, stream busy")
			}
		}
	}()

	return actions
}

func (h *MonitorHandler) pushSummary(ctx context.Context, conn *websocket.Conn, classID string) error {
	ctx, cancel := context.WithTimeout(ctx, summaryTimeout)
	defer cancel()

	summary, err := h.analyticsService.LiveSummary(ctx, classID)
	if err != nil {
		return ws.WriteError(conn, "summary unavailable")
	}
	return ws.WriteTyped(conn, ws.SummaryResponse{Event: ws.EventSummary, Summary: summary})
}
