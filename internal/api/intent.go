package api

import (
	"context"
	"errors"
	"io"
	"math"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/themobileprof/helpdesk-intent/internal/engine"
	"github.com/themobileprof/helpdesk-intent/internal/intent"
)

// IntentService is the classification engine as seen by the handlers
type IntentService interface {
	Classify(ctx context.Context, text string, hasActiveTicket bool) (engine.Result, error)
	Retrain(ctx context.Context, examples []intent.Example) (engine.RetrainSummary, error)
	Health() engine.HealthStatus
}

// IntentHandler serves the classification endpoints
type IntentHandler struct {
	service IntentService
	logger  *zap.Logger
}

// NewIntentHandler creates a new intent handler
func NewIntentHandler(service IntentService, logger *zap.Logger) *IntentHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IntentHandler{
		service: service,
		logger:  logger.Named("api"),
	}
}

// ClassifyRequest is the body of POST /classify
type ClassifyRequest struct {
	Text            *string `json:"text"`
	HasActiveTicket bool    `json:"has_active_ticket"`
}

// ClassifyResponse is the body returned by POST /classify
type ClassifyResponse struct {
	Intent            intent.Intent `json:"intent"`
	Confidence        float64       `json:"confidence"`
	ShouldRouteToTech bool          `json:"should_route_to_tech"`
	ProcessedText     string        `json:"processed_text"`
}

// TrainRequest is the body of POST /train
type TrainRequest struct {
	Examples []intent.Example `json:"examples"`
}

// TrainResponse is the body returned by POST /train
type TrainResponse struct {
	Status        string `json:"status"`
	ExamplesCount int    `json:"examples_count"`
	Added         int    `json:"added"`
	Skipped       int    `json:"skipped"`
}

// HealthResponse is the body returned by GET /health
type HealthResponse struct {
	Status      string `json:"status"`
	ModelLoaded bool   `json:"model_loaded"`
}

// missingTextError is the 400 body when no text was supplied
const missingTextError = `Missing "text" field`

// RegisterRoutes mounts the endpoints. trainMiddleware runs before the
// retrain handler only.
func (h *IntentHandler) RegisterRoutes(r gin.IRouter, trainMiddleware ...gin.HandlerFunc) {
	r.GET("/health", h.Health)
	r.POST("/classify", h.Classify)
	r.POST("/train", append(trainMiddleware, h.Train)...)
}

// Health reports service readiness
// GET /health
func (h *IntentHandler) Health(c *gin.Context) {
	status := h.service.Health()
	c.JSON(http.StatusOK, HealthResponse{
		Status:      "ok",
		ModelLoaded: status.ModelLoaded,
	})
}

// Classify predicts the intent of a message
// POST /classify
func (h *IntentHandler) Classify(c *gin.Context) {
	var req ClassifyRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Text == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": missingTextError})
		return
	}

	result, err := h.service.Classify(c.Request.Context(), *req.Text, req.HasActiveTicket)
	if err != nil {
		h.writeError(c, "classification failed", err)
		return
	}

	c.JSON(http.StatusOK, NewClassifyResponse(result))
}

// Train adds examples and retrains the model
// POST /train
func (h *IntentHandler) Train(c *gin.Context) {
	var req TrainRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	summary, err := h.service.Retrain(c.Request.Context(), req.Examples)
	if err != nil {
		h.writeError(c, "retrain failed", err)
		return
	}

	for _, s := range summary.Skipped {
		h.logger.Warn("skipped training example",
			zap.Int("index", s.Index),
			zap.String("reason", s.Reason),
		)
	}

	c.JSON(http.StatusOK, TrainResponse{
		Status:        "trained",
		ExamplesCount: summary.ExamplesCount,
		Added:         summary.Added,
		Skipped:       len(summary.Skipped),
	})
}

// NewClassifyResponse converts an engine result to its wire form
func NewClassifyResponse(r engine.Result) ClassifyResponse {
	return ClassifyResponse{
		Intent:            r.Intent,
		Confidence:        math.Round(r.Confidence*1000) / 1000,
		ShouldRouteToTech: r.ShouldRouteToTech,
		ProcessedText:     r.ProcessedText,
	}
}

// StatusFor maps engine errors to HTTP status codes
func StatusFor(err error) int {
	switch {
	case errors.Is(err, intent.ErrInvalidInput):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (h *IntentHandler) writeError(c *gin.Context, msg string, err error) {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error(msg, zap.Error(err))
	}
	if errors.Is(err, intent.ErrInvalidInput) {
		c.JSON(status, gin.H{"error": missingTextError})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
