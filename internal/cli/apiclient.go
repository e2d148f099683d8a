package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// apiClient is a thin JSON client for the backend's caller-facing surface.
type apiClient struct {
	baseURL string
	token   string
	http    *http.Client
}

func newAPIClient(baseURL, token string) *apiClient {
	return &apiClient{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

type userPayload struct {
	ID         string  `json:"id"`
	Subject    string  `json:"subject"`
	Email      *string `json:"email"`
	Name       *string `json:"name"`
	LastSeenAt string  `json:"last_seen_at"`
}

type tokenPayload struct {
	ID        string  `json:"id"`
	Token     string  `json:"token"`
	Platform  *string `json:"platform"`
	UpdatedAt string  `json:"updated_at"`
}

type sendTestPayload struct {
	OK         bool            `json:"ok"`
	Status     int             `json:"status"`
	Result     json.RawMessage `json:"result"`
	TokenCount int             `json:"token_count"`
}

func (c *apiClient) Bootstrap(ctx context.Context, email, name *string) (userPayload, error) {
	var out userPayload
	err := c.do(ctx, http.MethodPost, "/users/bootstrap", map[string]interface{}{
		"email": email,
		"name":  name,
	}, &out)
	return out, err
}

func (c *apiClient) Me(ctx context.Context) (userPayload, error) {
	var out userPayload
	err := c.do(ctx, http.MethodGet, "/users/me", nil, &out)
	return out, err
}

func (c *apiClient) RegisterToken(ctx context.Context, token string, platform *string) (tokenPayload, error) {
	var out tokenPayload
	err := c.do(ctx, http.MethodPost, "/push/tokens", map[string]interface{}{
		"token":    token,
		"platform": platform,
	}, &out)
	return out, err
}

func (c *apiClient) UnregisterToken(ctx context.Context, token string) error {
	return c.do(ctx, http.MethodDelete, "/push/tokens", map[string]interface{}{"token": token}, nil)
}

func (c *apiClient) ListTokens(ctx context.Context) ([]tokenPayload, error) {
	var out struct {
		Tokens []tokenPayload `json:"tokens"`
	}
	err := c.do(ctx, http.MethodGet, "/push/tokens", nil, &out)
	return out.Tokens, err
}

func (c *apiClient) SendTest(ctx context.Context, title, body string) (sendTestPayload, error) {
	var out sendTestPayload
	err := c.do(ctx, http.MethodPost, "/push/test", map[string]interface{}{
		"title": title,
		"body":  body,
	}, &out)
	return out, err
}

func (c *apiClient) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("backend request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if err := json.Unmarshal(raw, &apiErr); err == nil && apiErr.Error != "" {
			return fmt.Errorf("%s", apiErr.Error)
		}
		return fmt.Errorf("backend returned status %d", resp.StatusCode)
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
