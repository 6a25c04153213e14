package ai

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"

	"github.com/nikbrunner/bmark/internal/logger"
)

const (
	DefaultURL     = "https://api.anthropic.com/v1/messages"
	DefaultModel   = "claude-haiku-4-5-20251001"
	DefaultTimeout = 30 * time.Second

	apiVersion       = "2023-06-01"
	defaultMaxTokens = 1024
	defaultRetries   = 2
)

var (
	ErrNoAPIKey        = errors.New("completion API key not set")
	ErrAPIRequest      = errors.New("API request failed")
	ErrInvalidResponse = errors.New("invalid API response")
)

// Completer produces the next assistant turn of a conversation.
type Completer interface {
	Complete(ctx context.Context, system string, history []Message, message string) (string, error)
}

// Config configures a Client. Zero values fall back to the defaults; a
// negative Retries disables retrying.
type Config struct {
	APIKey    string
	URL       string
	Model     string
	Timeout   time.Duration
	MaxTokens int
	Retries   int
	RetryWait time.Duration
}

// Client talks to an Anthropic-style messages endpoint.
type Client struct {
	http      *resty.Client
	url       string
	model     string
	timeout   time.Duration
	maxTokens int
	log       logger.Logger
}

// NewClient creates a completion client. It fails with ErrNoAPIKey when no
// key is configured.
func NewClient(cfg Config, log logger.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, ErrNoAPIKey
	}
	if cfg.URL == "" {
		cfg.URL = DefaultURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = defaultMaxTokens
	}
	switch {
	case cfg.Retries == 0:
		cfg.Retries = defaultRetries
	case cfg.Retries < 0:
		cfg.Retries = 0
	}
	if cfg.RetryWait <= 0 {
		cfg.RetryWait = 500 * time.Millisecond
	}
	if log == nil {
		log = logger.Nop()
	}

	httpClient := resty.New().
		SetHeader("Content-Type", "application/json").
		SetHeader("x-api-key", cfg.APIKey).
		SetHeader("anthropic-version", apiVersion).
		SetRetryCount(cfg.Retries).
		SetRetryWaitTime(cfg.RetryWait).
		SetRetryMaxWaitTime(4 * cfg.RetryWait).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if r == nil {
				return false
			}
			code := r.StatusCode()
			return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
		})

	return &Client{
		http:      httpClient,
		url:       cfg.URL,
		model:     cfg.Model,
		timeout:   cfg.Timeout,
		maxTokens: cfg.MaxTokens,
		log:       log,
	}, nil
}

// Complete sends history plus message and returns the reply text.
func (c *Client) Complete(ctx context.Context, system string, history []Message, message string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	messages := make([]Message, 0, len(history)+1)
	messages = append(messages, history...)
	messages = append(messages, Message{Role: RoleUser, Content: message})

	start := time.Now()
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(apiRequest{
			Model:     c.model,
			MaxTokens: c.maxTokens,
			System:    system,
			Messages:  messages,
		}).
		SetResult(&apiResponse{}).
		SetError(&apiError{}).
		Post(c.url)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return "", errors.Wrap(ctxErr, "completion request")
	}
	if err != nil {
		return "", errors.Wrapf(ErrAPIRequest, "%v", err)
	}

	c.log.Debug("completion",
		logger.Int("status", resp.StatusCode()),
		logger.Duration("took", time.Since(start)),
		logger.Int("attempts", resp.Request.Attempt),
	)

	if resp.IsError() {
		msg := strings.TrimSpace(resp.String())
		if apiErr, ok := resp.Error().(*apiError); ok && apiErr.Error.Message != "" {
			msg = apiErr.Error.Message
		}
		return "", errors.Wrapf(ErrAPIRequest, "status %d: %s", resp.StatusCode(), msg)
	}

	result, ok := resp.Result().(*apiResponse)
	if !ok {
		return "", ErrInvalidResponse
	}
	var text strings.Builder
	for _, block := range result.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return "", ErrInvalidResponse
	}
	return text.String(), nil
}
