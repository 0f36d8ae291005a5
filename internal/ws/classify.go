package ws

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"slices"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/themobileprof/helpdesk-intent/internal/api"
	"github.com/themobileprof/helpdesk-intent/internal/api/middleware"
	"github.com/themobileprof/helpdesk-intent/internal/engine"
	"github.com/themobileprof/helpdesk-intent/internal/intent"
)

const (
	maxMessageBytes = 4096
	writeTimeout    = 5 * time.Second
)

// Classifier is the part of the engine the stream needs
type Classifier interface {
	Classify(ctx context.Context, text string, hasActiveTicket bool) (engine.Result, error)
}

// ClassifyHandler streams classifications over a WebSocket connection
type ClassifyHandler struct {
	classifier        Classifier
	messagesPerMinute int
	upgrader          websocket.Upgrader
	logger            *zap.Logger
}

// NewClassifyHandler creates a handler. An empty allowedOrigins accepts
// every origin.
func NewClassifyHandler(cls Classifier, messagesPerMinute int, allowedOrigins []string, logger *zap.Logger) *ClassifyHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if messagesPerMinute <= 0 {
		messagesPerMinute = 120
	}
	return &ClassifyHandler{
		classifier:        cls,
		messagesPerMinute: messagesPerMinute,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || len(allowedOrigins) == 0 || slices.Contains(allowedOrigins, origin)
			},
		},
		logger: logger.Named("ws"),
	}
}

// IncomingMessage is one classify request
type IncomingMessage struct {
	ID              string  `json:"id,omitempty"`
	Text            *string `json:"text"`
	HasActiveTicket bool    `json:"has_active_ticket"`
}

// OutgoingMessage is the reply to one request
type OutgoingMessage struct {
	ID string `json:"id,omitempty"`
	*api.ClassifyResponse
	Error string `json:"error,omitempty"`
}

// HandleClassify upgrades the connection and answers messages until the
// client disconnects
// GET /ws/classify
func (h *ClassifyHandler) HandleClassify(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	conn.SetReadLimit(maxMessageBytes)
	limiter := middleware.NewWebSocketLimiter(h.messagesPerMinute)
	ctx := c.Request.Context()

	h.logger.Debug("websocket connected", zap.String("client_ip", c.ClientIP()))

	for {
		var msg IncomingMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if !isMalformed(err) {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					h.logger.Warn("websocket closed", zap.Error(err))
				}
				return
			}
			if err := h.write(conn, OutgoingMessage{Error: "invalid message"}); err != nil {
				return
			}
			continue
		}

		reply := h.handle(ctx, limiter, msg)
		if err := h.write(conn, reply); err != nil {
			h.logger.Warn("websocket write failed", zap.Error(err))
			return
		}
	}
}

func (h *ClassifyHandler) handle(ctx context.Context, limiter *middleware.WebSocketLimiter, msg IncomingMessage) OutgoingMessage {
	out := OutgoingMessage{ID: msg.ID}

	if !limiter.Allow() {
		out.Error = "Rate limit exceeded. Please slow down."
		return out
	}
	if msg.Text == nil {
		out.Error = `Missing "text" field`
		return out
	}

	result, err := h.classifier.Classify(ctx, *msg.Text, msg.HasActiveTicket)
	switch {
	case errors.Is(err, intent.ErrInvalidInput):
		out.Error = `Missing "text" field`
	case err != nil:
		h.logger.Error("classification failed", zap.Error(err))
		out.Error = err.Error()
	default:
		resp := api.NewClassifyResponse(result)
		out.ClassifyResponse = &resp
	}
	return out
}

// isMalformed reports whether a read failed on the payload rather than the
// connection
func isMalformed(err error) bool {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	return errors.As(err, &syntaxErr) || errors.As(err, &typeErr) || errors.Is(err, io.ErrUnexpectedEOF)
}

func (h *ClassifyHandler) write(conn *websocket.Conn, msg OutgoingMessage) error {
	if err := conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return err
	}
	return conn.WriteJSON(msg)
}
