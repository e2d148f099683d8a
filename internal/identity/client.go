package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultTimeout = 15 * time.Second

// Client is an HTTP implementation of Service against a Clerk-style
// frontend API.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates an identity client for the given base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: defaultTimeout},
	}
}

// CreateSignIn starts a sign-in attempt. An empty password creates an
// identifier-only attempt.
func (c *Client) CreateSignIn(ctx context.Context, params SignInParams) (*Attempt, error) {
	body := map[string]string{"identifier": params.Identifier}
	if params.Password != "" {
		body["strategy"] = StrategyPassword
		body["password"] = params.Password
	}
	return c.postAttempt(ctx, "/v1/sign_ins", body)
}

// AttemptFirstFactor verifies the password first factor.
func (c *Client) AttemptFirstFactor(ctx context.Context, attemptID, password string) (*Attempt, error) {
	return c.postAttempt(ctx, "/v1/sign_ins/"+attemptID+"/attempt_first_factor", map[string]string{
		"strategy": StrategyPassword,
		"password": password,
	})
}

// PrepareSecondFactor requests an email code for the given address id.
func (c *Client) PrepareSecondFactor(ctx context.Context, attemptID, emailAddressID string) error {
	_, err := c.postAttempt(ctx, "/v1/sign_ins/"+attemptID+"/prepare_second_factor", map[string]string{
		"strategy":         StrategyEmailCode,
		"email_address_id": emailAddressID,
	})
	return err
}

// AttemptSecondFactor verifies the emailed second-factor code.
func (c *Client) AttemptSecondFactor(ctx context.Context, attemptID, code string) (*Attempt, error) {
	return c.postAttempt(ctx, "/v1/sign_ins/"+attemptID+"/attempt_second_factor", map[string]string{
		"strategy": StrategyEmailCode,
		"code":     code,
	})
}

// CreateSignUp starts a sign-up attempt.
func (c *Client) CreateSignUp(ctx context.Context, email, password string) (*Attempt, error) {
	return c.postAttempt(ctx, "/v1/sign_ups", map[string]string{
		"email_address": email,
		"password":      password,
	})
}

// PrepareEmailVerification requests the sign-up verification code.
func (c *Client) PrepareEmailVerification(ctx context.Context, attemptID string) error {
	_, err := c.postAttempt(ctx, "/v1/sign_ups/"+attemptID+"/prepare_verification", map[string]string{
		"strategy": StrategyEmailCode,
	})
	return err
}

// AttemptEmailVerification verifies the sign-up code.
func (c *Client) AttemptEmailVerification(ctx context.Context, attemptID, code string) (*Attempt, error) {
	return c.postAttempt(ctx, "/v1/sign_ups/"+attemptID+"/attempt_verification", map[string]string{
		"strategy": StrategyEmailCode,
		"code":     code,
	})
}

// StartSSOFlow starts an external single-sign-on flow and returns the created
// session id, or "" when the provider flow did not complete.
func (c *Client) StartSSOFlow(ctx context.Context, strategy string) (string, error) {
	var out struct {
		CreatedSessionID string `json:"created_session_id"`
	}
	if err := c.post(ctx, "/v1/sso", map[string]string{"strategy": strategy}, &out); err != nil {
		return "", err
	}
	return out.CreatedSessionID, nil
}

// ActivateSession activates a created session and returns its bearer token.
func (c *Client) ActivateSession(ctx context.Context, sessionID string) (string, error) {
	var out struct {
		Token string `json:"token"`
	}
	if err := c.post(ctx, "/v1/sessions/"+sessionID+"/activate", map[string]string{}, &out); err != nil {
		return "", err
	}
	return out.Token, nil
}

func (c *Client) postAttempt(ctx context.Context, path string, body map[string]string) (*Attempt, error) {
	var attempt Attempt
	if err := c.post(ctx, path, body, &attempt); err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (c *Client) post(ctx context.Context, path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("identity request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		apiErr := &APIError{Status: resp.StatusCode}
		if err := json.Unmarshal(raw, apiErr); err != nil || len(apiErr.Errors) == 0 {
			apiErr.Errors = []ErrorDetail{{
				Code:    "unexpected_response",
				Message: fmt.Sprintf("identity service returned status %d", resp.StatusCode),
			}}
		}
		return apiErr
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
