package semantic

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/ChiragAJain/shl-recommender/internal/utils"
	"go.uber.org/zap"
)

const (
	defaultBaseURL        = "https://api.openai.com/v1"
	defaultEmbeddingModel = "text-embedding-3-small"
	defaultTimeout        = 30 * time.Second
	defaultMaxRetries     = 5
	maxRetryDelay         = 5 * time.Second
)

// errPermanent marks responses that retrying cannot fix.
var errPermanent = errors.New("embeddings request rejected")

// Client is an OpenAI-compatible embeddings client implementing Embedder.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	maxRetries int
	logger     *zap.Logger
	HTTPClient *http.Client
}

// ClientConfig configures the embeddings client.
type ClientConfig struct {
	BaseURL    string
	APIKey     string
	Model      string
	Timeout    time.Duration
	MaxRetries int
}

func NewClient(cfg ClientConfig, logger *zap.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("embeddings api key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = defaultEmbeddingModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = defaultMaxRetries
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		maxRetries: cfg.MaxRetries,
		logger:     logger,
		HTTPClient: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

// Embed returns an embedding vector for the given text, retrying rate limits
// and server errors with exponential backoff.
func (c *Client) Embed(ctx context.Context, text string) ([]float64, error) {
	url := fmt.Sprintf("%s/embeddings", c.baseURL)

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			c.logger.Debug("retrying embeddings request",
				zap.Int("attempt", attempt),
				zap.Error(lastErr),
			)
		}

		vector, retryAfter, err := c.embedOnce(ctx, url, text)
		if err == nil {
			return vector, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if errors.Is(err, errPermanent) {
			return nil, err
		}
		lastErr = err

		delay := retryDelay(attempt)
		if retryAfter > 0 {
			delay = retryAfter
		}
		if attempt < c.maxRetries {
			if werr := utils.WaitFor(ctx, delay); werr != nil {
				return nil, werr
			}
		}
	}

	return nil, lastErr
}

func (c *Client) embedOnce(ctx context.Context, url, text string) ([]float64, time.Duration, error) {
	body, _ := json.Marshal(map[string]string{
		"input": text,
		"model": c.model,
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		var retryAfter time.Duration
		if ra := resp.Header.Get("Retry-After"); ra != "" {
			if secs, err := strconv.Atoi(ra); err == nil {
				retryAfter = time.Duration(secs) * time.Second
			}
		}
		return nil, retryAfter, fmt.Errorf("embeddings request failed: %s", resp.Status)
	}

	if resp.StatusCode >= 300 {
		return nil, 0, fmt.Errorf("%w: %s", errPermanent, resp.Status)
	}

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, err
	}

	var out struct {
		Data []struct {
			Embedding []float64 `json:"embedding"`
		} `json:"data"`
	}
	if err := json.Unmarshal(payload, &out); err != nil {
		return nil, 0, fmt.Errorf("decode embeddings response: %w", err)
	}
	if len(out.Data) == 0 || len(out.Data[0].Embedding) == 0 {
		return nil, 0, errors.New("no embedding returned")
	}

	return out.Data[0].Embedding, 0, nil
}

func retryDelay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	base := 200 * time.Millisecond
	d := base << attempt
	if d > maxRetryDelay {
		d = maxRetryDelay
	}
	return d
}
