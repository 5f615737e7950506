package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/cenkalti/backoff/v4"
	"ads-insights-go/internal/logger"
)

// Client is the single capability the agents depend on: one prompt in, the
// raw model text out. Tests substitute a deterministic fake.
type Client interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Gateway talks to an OpenAI-compatible chat-completions endpoint with
// bearer auth and exponential-backoff retries. Client errors (4xx) are
// permanent and not retried.
type Gateway struct {
	URL          string
	APIKey       string
	Model        string
	Temperature  float64
	HTTPTimeout  time.Duration
	MaxRetryTime time.Duration
}

// GatewayFromEnv builds a Gateway from LLM_GATEWAY_URL, LLM_API_KEY and
// LLM_MODEL. Model and temperature from config take precedence when set.
func GatewayFromEnv(model string, temperature float64) (*Gateway, error) {
	url := os.Getenv("LLM_GATEWAY_URL")
	key := os.Getenv("LLM_API_KEY")
	if url == "" || key == "" {
		return nil, fmt.Errorf("llm gateway not configured")
	}
	if model == "" {
		model = os.Getenv("LLM_MODEL")
	}
	return &Gateway{
		URL:          url,
		APIKey:       key,
		Model:        model,
		Temperature:  temperature,
		HTTPTimeout:  25 * time.Second,
		MaxRetryTime: 45 * time.Second,
	}, nil
}

func (g *Gateway) Complete(ctx context.Context, prompt string) (string, error) {
	log := logger.New().WithField("component", "llm.gateway")

	reqBody := map[string]any{
		"model": g.Model,
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
		"temperature": g.Temperature,
	}
	data, _ := json.Marshal(reqBody)

	var content string
	var lastErr error
	op := func() error {
		reqCtx, cancel := context.WithTimeout(ctx, g.HTTPTimeout)
		defer cancel()

		req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, g.URL, bytes.NewReader(data))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Authorization", "Bearer "+g.APIKey)
		req.Header.Set("Content-Type", "application/json")

		client := &http.Client{Timeout: g.HTTPTimeout}
		resp, err := client.Do(req)
		if err != nil {
			lastErr = err
			log.WithError(err).Warn("llm request failed")
			return err
		}
		defer resp.Body.Close()

		body, _ := io.ReadAll(resp.Body)
		log.WithField("http_status", resp.StatusCode).Debug("llm raw response received")

		if c := contentFromChoices(body); c != "" {
			content = c
			lastErr = nil
			return nil
		}

		lastErr = fmt.Errorf("no message content in LLM response")
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			// Permanent: don't retry on client errors
			return backoff.Permanent(lastErr)
		}
		return lastErr
	}

	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = g.MaxRetryTime
	if err := backoff.Retry(op, backoff.WithContext(b, ctx)); err != nil {
		if lastErr == nil {
			lastErr = err
		}
		return "", fmt.Errorf("llm completion failed: %w", lastErr)
	}
	return content, nil
}

// contentFromChoices reads the openai-style choices[0].message.content field.
func contentFromChoices(body []byte) string {
	var obj map[string]any
	if err := json.Unmarshal(body, &obj); err != nil {
		return ""
	}
	choices, ok := obj["choices"].([]any)
	if !ok || len(choices) == 0 {
		return ""
	}
	c0, _ := choices[0].(map[string]any)
	if c0 == nil {
		return ""
	}
	msg, _ := c0["message"].(map[string]any)
	if msg == nil {
		return ""
	}
	content, _ := msg["content"].(string)
	return content
}
