package simulator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/okian/deuce/internal/domain/types"
)

// HTTPClient wraps http.Client with the service's routes.
type HTTPClient struct {
	client  *http.Client
	baseURL string
}

func newHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body any) (int, []byte, error) {
	var rd io.Reader = http.NoBody
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		rd = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("failed to read response: %w", err)
	}
	return resp.StatusCode, data, nil
}

// Health checks GET /healthz.
func (c *HTTPClient) Health(ctx context.Context) error {
	status, _, err := c.do(ctx, http.MethodGet, "/healthz", nil)
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	if status != http.StatusOK {
		return fmt.Errorf("service health check failed with status: %d", status)
	}
	return nil
}

// CreateMatch calls POST /matches.
func (c *HTTPClient) CreateMatch(ctx context.Context, matchType string) (types.MatchView, error) {
	status, data, err := c.do(ctx, http.MethodPost, "/matches", map[string]string{"match_type": matchType})
	if err != nil {
		return types.MatchView{}, err
	}
	if status != http.StatusCreated {
		return types.MatchView{}, fmt.Errorf("create match: status %d: %s", status, bytes.TrimSpace(data))
	}
	var v types.MatchView
	if err := json.Unmarshal(data, &v); err != nil {
		return types.MatchView{}, fmt.Errorf("create match: %w", err)
	}
	return v, nil
}

// Match calls GET /matches/{id}.
func (c *HTTPClient) Match(ctx context.Context, id string) (types.MatchView, error) {
	status, data, err := c.do(ctx, http.MethodGet, "/matches/"+id, nil)
	if err != nil {
		return types.MatchView{}, err
	}
	if status != http.StatusOK {
		return types.MatchView{}, fmt.Errorf("get match %s: status %d", id, status)
	}
	var v types.MatchView
	if err := json.Unmarshal(data, &v); err != nil {
		return types.MatchView{}, fmt.Errorf("get match %s: %w", id, err)
	}
	return v, nil
}

// PostEvent calls POST /events and returns the status code.
func (c *HTTPClient) PostEvent(ctx context.Context, e Event) (int, AckResponse, error) {
	status, data, err := c.do(ctx, http.MethodPost, "/events", e)
	if err != nil {
		return 0, AckResponse{}, err
	}
	var ack AckResponse
	if status == http.StatusOK || status == http.StatusAccepted {
		// Assume the status code is authoritative even if the body is odd.
		_ = json.Unmarshal(data, &ack)
	}
	return status, ack, nil
}
