package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// #region http-client

// HTTPDecider calls a JSON-over-HTTP inference service implementing the
// decision contracts at POST {base}/decide and POST {base}/interact.
type HTTPDecider struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewHTTPDecider creates a client for the given base URL. apiKey may be
// empty for unauthenticated local services.
func NewHTTPDecider(baseURL, apiKey string) *HTTPDecider {
	return &HTTPDecider{
		baseURL: baseURL,
		apiKey:  apiKey,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// #endregion http-client

// #region retry

const (
	maxRetries = 2
	baseDelay  = 200 * time.Millisecond
	maxDelay   = 2 * time.Second
)

// post sends a JSON body and decodes the JSON response into out, retrying
// transient failures with exponential backoff. The per-call budget is the
// caller's context deadline.
func (d *HTTPDecider) post(ctx context.Context, path string, body, out interface{}) error {
	buf, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	var lastErr error
	delay := baseDelay

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
			if delay > maxDelay {
				delay = maxDelay
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.baseURL+path, bytes.NewReader(buf))
		if err != nil {
			return fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		if d.apiKey != "" {
			req.Header.Set("Authorization", "Bearer "+d.apiKey)
		}

		resp, err := d.client.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			resp.Body.Close()
			lastErr = fmt.Errorf("%s: status %d", path, resp.StatusCode)
			continue
		}
		if resp.StatusCode >= 300 {
			msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			resp.Body.Close()
			return fmt.Errorf("%s: status %d: %s", path, resp.StatusCode, msg)
		}

		err = json.NewDecoder(resp.Body).Decode(out)
		resp.Body.Close()
		if err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		return nil
	}
	return fmt.Errorf("%s: %d attempts failed: %w", path, maxRetries+1, lastErr)
}

// #endregion retry

// #region decider-impl

// DecideStateTransition asks the service for a behavioral transition.
func (d *HTTPDecider) DecideStateTransition(ctx context.Context, ac AgentContext) (StateDecision, error) {
	var out StateDecision
	if err := d.post(ctx, "/decide", ac, &out); err != nil {
		return StateDecision{}, err
	}
	if !out.NewState.Known() {
		return StateDecision{}, fmt.Errorf("/decide: unknown state %q in response", out.NewState)
	}
	return out, nil
}

// GenerateInteraction asks the service for an agent interaction.
func (d *HTTPDecider) GenerateInteraction(ctx context.Context, ac AgentContext) (Interaction, error) {
	var out Interaction
	if err := d.post(ctx, "/interact", ac, &out); err != nil {
		return Interaction{}, err
	}
	return out, nil
}

// #endregion decider-impl
