package push

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Message is one push notification addressed to a single device token, in
// the wire format the Expo push endpoint accepts.
type Message struct {
	To    string            `json:"to"`
	Sound string            `json:"sound,omitempty"`
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data,omitempty"`
}

// Delivery is the outcome of one batch submission to the push gateway.
type Delivery struct {
	OK     bool            `json:"ok"`
	Status int             `json:"status"`
	Result json.RawMessage `json:"result"`
}

// Gateway submits a batch of push messages in a single request.
type Gateway interface {
	Send(ctx context.Context, messages []Message) (Delivery, error)
}

// ExpoGateway delivers push messages through the Expo push HTTP endpoint.
type ExpoGateway struct {
	endpoint    string
	accessToken string
	http        *http.Client
}

// NewExpoGateway creates a gateway for the given endpoint. accessToken is
// optional; when set it is sent as a bearer authorization header.
func NewExpoGateway(endpoint, accessToken string) *ExpoGateway {
	return &ExpoGateway{
		endpoint:    endpoint,
		accessToken: accessToken,
		http:        &http.Client{Timeout: 30 * time.Second},
	}
}

// Send posts the whole batch as one JSON array. Transport failures are
// returned to the caller unretried; an HTTP error status is not a transport
// failure and is reported through Delivery.
func (g *ExpoGateway) Send(ctx context.Context, messages []Message) (Delivery, error) {
	payload, err := json.Marshal(messages)
	if err != nil {
		return Delivery{}, fmt.Errorf("encode push messages: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, bytes.NewReader(payload))
	if err != nil {
		return Delivery{}, fmt.Errorf("build push request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Encoding", "gzip, deflate")
	if g.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+g.accessToken)
	}

	resp, err := g.http.Do(req)
	if err != nil {
		return Delivery{}, fmt.Errorf("push gateway request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Delivery{}, fmt.Errorf("read push gateway response: %w", err)
	}

	result := json.RawMessage(raw)
	if !json.Valid(raw) {
		result, _ = json.Marshal(string(raw))
	}

	return Delivery{
		OK:     resp.StatusCode >= 200 && resp.StatusCode < 300,
		Status: resp.StatusCode,
		Result: result,
	}, nil
}
