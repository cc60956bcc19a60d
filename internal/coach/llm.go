package coach

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// ErrLLMUnavailable is returned while the circuit breaker is open
var ErrLLMUnavailable = errors.New("llm coach unavailable")

// LLMConfig configures the chat-completion client
type LLMConfig struct {
	URL               string
	APIKey            string
	Model             string
	Timeout           time.Duration
	MaxRetries        int
	RetryWaitMin      time.Duration
	RetryWaitMax      time.Duration
	RateLimit         float64 // requests per second
	CircuitBreakerMax int     // consecutive failures before the circuit opens
	CircuitResetAfter time.Duration
}

// DefaultLLMConfig returns recommended defaults
func DefaultLLMConfig() LLMConfig {
	return LLMConfig{
		Model:             "gpt-4o-mini",
		Timeout:           30 * time.Second,
		MaxRetries:        3,
		RetryWaitMin:      200 * time.Millisecond,
		RetryWaitMax:      5 * time.Second,
		RateLimit:         2.0,
		CircuitBreakerMax: 5,
		CircuitResetAfter: time.Minute,
	}
}

// LLMClient posts prompts to an OpenAI-compatible chat completions endpoint
// with rate limiting, retries and a circuit breaker
type LLMClient struct {
	cfg     LLMConfig
	client  *retryablehttp.Client
	limiter *rate.Limiter
	log     *logrus.Entry

	mu                sync.Mutex
	consecutiveErrors int
	openedAt          time.Time
	lastError         error
}

// NewLLMClient creates a client. A nil logger discards output.
func NewLLMClient(cfg LLMConfig, logger *logrus.Logger) *LLMClient {
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}

	retryClient := retryablehttp.NewClient()
	retryClient.HTTPClient.Timeout = cfg.Timeout
	retryClient.RetryMax = cfg.MaxRetries
	retryClient.RetryWaitMin = cfg.RetryWaitMin
	retryClient.RetryWaitMax = cfg.RetryWaitMax
	retryClient.CheckRetry = retryPolicy
	retryClient.Logger = nil

	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}

	return &LLMClient{
		cfg:     cfg,
		client:  retryClient,
		limiter: rate.NewLimiter(limit, 1),
		log:     logger.WithField("component", "coach_llm"),
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Complete sends the system and user prompts and returns the first choice
func (c *LLMClient) Complete(ctx context.Context, system, user string) (string, error) {
	if err := c.checkCircuit(); err != nil {
		return "", err
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter error: %w", err)
	}

	body, err := json.Marshal(chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: 0.4,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode chat request: %w", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.recordFailure(err)
		return "", fmt.Errorf("chat request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("chat endpoint returned status %d", resp.StatusCode)
		if resp.StatusCode >= 500 {
			c.recordFailure(err)
		}
		return "", err
	}

	var decoded chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		c.recordFailure(err)
		return "", fmt.Errorf("failed to decode chat response: %w", err)
	}
	if len(decoded.Choices) == 0 || decoded.Choices[0].Message.Content == "" {
		return "", errors.New("chat response contained no choices")
	}

	c.recordSuccess()
	return decoded.Choices[0].Message.Content, nil
}

func (c *LLMClient) checkCircuit() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.openedAt.IsZero() {
		return nil
	}
	if time.Since(c.openedAt) >= c.cfg.CircuitResetAfter {
		c.openedAt = time.Time{}
		c.consecutiveErrors = 0
		return nil
	}
	return fmt.Errorf("%w: circuit breaker open: %v", ErrLLMUnavailable, c.lastError)
}

func (c *LLMClient) recordFailure(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.consecutiveErrors++
	c.lastError = err
	if c.cfg.CircuitBreakerMax > 0 && c.consecutiveErrors >= c.cfg.CircuitBreakerMax && c.openedAt.IsZero() {
		c.openedAt = time.Now()
		c.log.WithError(err).Warnf("Circuit breaker opened after %d consecutive errors", c.consecutiveErrors)
	}
}

func (c *LLMClient) recordSuccess() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.consecutiveErrors = 0
	c.openedAt = time.Time{}
}

// retryPolicy retries network errors, 429 and 5xx gateway errors
func retryPolicy(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	if err != nil {
		return true, nil
	}
	switch resp.StatusCode {
	case http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusBadGateway,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true, nil
	}
	return false, nil
}
