package intentclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/themobileprof/helpdesk-intent/internal/circuitbreaker"
	"github.com/themobileprof/helpdesk-intent/internal/classifier"
	"github.com/themobileprof/helpdesk-intent/internal/intent"
)

// DefaultBaseURL is used when Config.BaseURL is empty
const DefaultBaseURL = "http://localhost:5000"

// Config holds configuration for the intent service client
type Config struct {
	BaseURL         string        // Default: http://localhost:5000
	Timeout         time.Duration // Default: 3s
	RecheckInterval time.Duration // Default: 30s; how long to trust a failed health check
	AdminToken      string        // Bearer token for Retrain
	HTTPClient      *http.Client
	Logger          *zap.Logger
}

// Client classifies messages through the intent service, falling back to
// keyword rules whenever the service cannot answer.
type Client struct {
	baseURL         string
	adminToken      string
	recheckInterval time.Duration
	httpClient      *http.Client
	breaker         *circuitbreaker.CircuitBreaker
	rules           *classifier.RuleClassifier
	logger          *zap.Logger
	now             func() time.Time

	mu        sync.Mutex
	available bool
	checkedAt time.Time
}

// New creates a client. The service is probed on the first Classify unless
// CheckAvailability was called already.
func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 3 * time.Second
	}
	if cfg.RecheckInterval <= 0 {
		cfg.RecheckInterval = 30 * time.Second
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{}
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	httpClient := *cfg.HTTPClient
	httpClient.Timeout = cfg.Timeout
	logger := cfg.Logger.Named("intentclient")

	return &Client{
		baseURL:         strings.TrimRight(cfg.BaseURL, "/"),
		adminToken:      cfg.AdminToken,
		recheckInterval: cfg.RecheckInterval,
		httpClient:      &httpClient,
		breaker: circuitbreaker.New(circuitbreaker.Config{
			Name:         "intent-service",
			MaxFailures:  3,
			ResetTimeout: cfg.RecheckInterval,
			Logger:       logger,
		}),
		rules:  classifier.NewRuleClassifier(),
		logger: logger,
		now:    time.Now,
	}
}

// CheckAvailability probes /health and records whether the service is up
func (c *Client) CheckAvailability(ctx context.Context) bool {
	var health healthResponse
	err := c.do(ctx, http.MethodGet, "/health", nil, "", &health)
	up := err == nil && health.Status == "ok"

	c.mu.Lock()
	c.available = up
	c.checkedAt = c.now()
	c.mu.Unlock()

	if up {
		c.logger.Info("intent service available", zap.String("url", c.baseURL))
	} else {
		c.logger.Warn("intent service unavailable, using keyword rules",
			zap.String("url", c.baseURL),
			zap.Error(err),
		)
	}
	return up
}

// Available reports the result of the last health check
func (c *Client) Available() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.available
}

// Classify never fails: service errors are logged and answered by the
// keyword rules instead.
func (c *Client) Classify(ctx context.Context, text string, hasActiveTicket bool) Classification {
	if !c.serviceUsable(ctx) {
		return c.classifyWithRules(text, hasActiveTicket)
	}

	var out Classification
	err := c.breaker.Call(func() error {
		return c.do(ctx, http.MethodPost, "/classify", classifyRequest{
			Text:            text,
			HasActiveTicket: hasActiveTicket,
		}, "", &out)
	})
	if err != nil {
		c.logger.Warn("classification via service failed, using keyword rules", zap.Error(err))
		return c.classifyWithRules(text, hasActiveTicket)
	}

	out.Source = SourceService
	return out
}

// Retrain sends new examples to the service. It does not fall back.
func (c *Client) Retrain(ctx context.Context, examples []intent.Example) (TrainResult, error) {
	var out TrainResult
	if err := c.do(ctx, http.MethodPost, "/train", trainRequest{Examples: examples}, c.adminToken, &out); err != nil {
		return TrainResult{}, fmt.Errorf("retrain failed: %w", err)
	}
	return out, nil
}

// serviceUsable re-probes a service marked down once the last check is stale
func (c *Client) serviceUsable(ctx context.Context) bool {
	c.mu.Lock()
	available := c.available
	stale := c.now().Sub(c.checkedAt) >= c.recheckInterval
	c.mu.Unlock()

	if available {
		return true
	}
	if stale {
		return c.CheckAvailability(ctx)
	}
	return false
}

func (c *Client) classifyWithRules(text string, hasActiveTicket bool) Classification {
	r := c.rules.Classify(text, hasActiveTicket)
	return Classification{
		Intent:            r.Intent,
		Confidence:        r.Confidence,
		ShouldRouteToTech: r.ShouldRouteToTech,
		Source:            SourceRules,
	}
}

func (c *Client) do(ctx context.Context, method, path string, body interface{}, token string, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr errorResponse
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("service returned status %d: %s", resp.StatusCode, apiErr.Error)
		}
		return fmt.Errorf("service returned status %d", resp.StatusCode)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
