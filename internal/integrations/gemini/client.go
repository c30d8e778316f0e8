/**
 * @description
 * Lightweight Gemini text-generation client.
 * Used by the meal planner as an optional suggestion tier; callers must
 * tolerate its absence.
 *
 * @dependencies
 * - net/http
 * - encoding/json
 * - backend/internal/config
 */

package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/belanja-project/backend/internal/config"
	"github.com/belanja-project/backend/internal/logger"
)

const (
	requestTimeout = 60 * time.Second
	maxTries       = 3
	retryBaseDelay = 400 * time.Millisecond
)

// ErrUnavailable is returned when no API key is configured or every retry failed
var ErrUnavailable = errors.New("gemini unavailable")

type Client struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		apiKey:  cfg.Services.GeminiAPIKey,
		baseURL: strings.TrimSuffix(cfg.Services.GeminiBaseURL, "/"),
		model:   cfg.Services.GeminiModel,
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
	}
}

// Available reports whether the client is configured at all
func (c *Client) Available() bool {
	return c != nil && c.apiKey != ""
}

// Generate sends a prompt and returns the first candidate's text.
// Transport and server errors are retried with backoff; exhaustion returns
// ErrUnavailable so callers can branch to their fallback tier.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	if !c.Available() {
		return "", ErrUnavailable
	}

	payload, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)

	var lastErr error
	for attempt := 1; attempt <= maxTries; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return "", fmt.Errorf("%w: %v", ErrUnavailable, ctx.Err())
			case <-time.After(retryBaseDelay * time.Duration(attempt)):
			}
		}

		text, err := c.generateOnce(ctx, url, payload)
		if err == nil {
			return text, nil
		}
		lastErr = err
		logger.Error("Gemini request failed (attempt %d/%d): %v", attempt, maxTries, err)

		if ctx.Err() != nil {
			break
		}
	}

	return "", fmt.Errorf("%w: %v", ErrUnavailable, lastErr)
}

func (c *Client) generateOnce(ctx context.Context, url string, payload []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("gemini api error: status %d", resp.StatusCode)
	}

	var decoded generateResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return "", err
	}
	if len(decoded.Candidates) == 0 || len(decoded.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("gemini response contained no candidates")
	}

	return decoded.Candidates[0].Content.Parts[0].Text, nil
}
