package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"syllabus-stack/shared/cache"
	"syllabus-stack/shared/config"
)

// ErrNoContent signals that the model produced no usable completion, either
// because the retry budget ran out or because a well-formed response carried
// no text. Callers treat it as absence, not as a fatal pipeline error.
var ErrNoContent = errors.New("no completion content")

// Client is a retrying HTTP client for the Gemini generateContent endpoint.
// Every successful completion is written through to the cache keyed by the
// prompt, so identical prompts issue exactly one network call.
type Client struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
	store      *cache.Cache
	attempts   int
	retryDelay time.Duration
}

func NewClient(cfg *config.AIConfig, store *cache.Cache) *Client {
	return &Client{
		endpoint: fmt.Sprintf("%s/v1beta/models/%s:generateContent", cfg.BaseURL, cfg.Model),
		apiKey:   cfg.GeminiAPIKey,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
		store:      store,
		attempts:   cfg.MaxAttempts,
		retryDelay: time.Duration(cfg.RetryDelaySeconds) * time.Second,
	}
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Query returns the completion text for prompt, serving repeats from cache.
// Transport failures and non-success statuses are retried with a fixed delay
// up to the attempt budget; a well-formed response with no extractable text
// fails immediately with ErrNoContent.
func (c *Client) Query(ctx context.Context, prompt string) (string, error) {
	fingerprint := cache.Fingerprint("llm", prompt)
	if entry, ok := c.store.Get(fingerprint); ok {
		if text, ok := entry.AsText(); ok {
			return text, nil
		}
	}

	payload, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
		GenerationConfig: generationConfig{
			Temperature:     0.1,
			MaxOutputTokens: 8192,
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode completion request: %w", err)
	}

	var lastErr error
	for attempt := 1; attempt <= c.attempts; attempt++ {
		if attempt > 1 {
			select {
			case <-time.After(c.retryDelay):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}

		text, retryable, err := c.complete(ctx, payload)
		if err == nil {
			if putErr := c.store.Put(fingerprint, cache.TextEntry(text)); putErr != nil {
				log.Printf("Warning: failed to cache completion: %v", putErr)
			}
			return text, nil
		}

		lastErr = err
		if !retryable {
			return "", err
		}
		log.Printf("Warning: completion attempt %d/%d failed: %v", attempt, c.attempts, err)
	}

	return "", fmt.Errorf("%w: completion failed after %d attempts: %w", ErrNoContent, c.attempts, lastErr)
}

// complete performs a single request. The second return value reports whether
// the failure is worth retrying: transport and HTTP-status failures are,
// a parsed response without text is not.
func (c *Client) complete(ctx context.Context, payload []byte) (string, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"?key="+c.apiKey, bytes.NewReader(payload))
	if err != nil {
		return "", false, fmt.Errorf("failed to create completion request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", true, fmt.Errorf("completion request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", true, fmt.Errorf("failed to read completion response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", true, fmt.Errorf("completion endpoint returned status %d", resp.StatusCode)
	}

	var parsed generateResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", false, fmt.Errorf("%w: malformed response: %v", ErrNoContent, err)
	}

	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", false, fmt.Errorf("%w: response carried no candidates", ErrNoContent)
	}

	text := parsed.Candidates[0].Content.Parts[0].Text
	if text == "" {
		return "", false, fmt.Errorf("%w: empty completion text", ErrNoContent)
	}

	return text, false, nil
}
