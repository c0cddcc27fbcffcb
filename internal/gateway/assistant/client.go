package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/finergize/assistant-backend/internal/types"
)

const (
	chatPath   = "/chat"
	simplePath = "/simple-chat"
	healthPath = "/health"
)

// APIError represents a non-success response from the assistant API.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("assistant: status %d: %s", e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("assistant: status %d", e.StatusCode)
}

// Client is a client for the conversational assistant API. It exposes a
// primary and a fallback completion endpoint; fallback selection is the
// caller's concern, the client itself never retries.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new assistant client.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Complete sends the request to the primary chat endpoint.
func (c *Client) Complete(ctx context.Context, req *types.ChatRequest) (*types.ChatResponse, error) {
	return c.post(ctx, chatPath, req)
}

// CompleteFallback sends the request to the simplified fallback endpoint.
func (c *Client) CompleteFallback(ctx context.Context, req *types.ChatRequest) (*types.ChatResponse, error) {
	return c.post(ctx, simplePath, req)
}

// Health reports whether the assistant API is reachable.
func (c *Client) Health(ctx context.Context) bool {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+healthPath, nil)
	if err != nil {
		return false
	}
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

func (c *Client) post(ctx context.Context, path string, req *types.ChatRequest) (*types.ChatResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var detail struct {
			Detail string `json:"detail"`
		}
		_ = json.Unmarshal(respBody, &detail)
		return nil, &APIError{StatusCode: resp.StatusCode, Detail: detail.Detail}
	}

	var result types.ChatResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	// A 200 with an empty reply is as unusable as a transport failure;
	// reporting it lets the caller route to the fallback endpoint.
	if result.Response == "" {
		return nil, fmt.Errorf("assistant: empty response body")
	}

	return &result, nil
}
