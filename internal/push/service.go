package push

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/airborne/server/internal/model"
	"github.com/airborne/server/internal/repo"
)

const (
	defaultTitle = "Airborne Test Notification"
	defaultBody  = "Push notifications are configured successfully."
)

// ErrBootstrapRequired means the caller has no user record yet; the client
// must run the user bootstrap before any push operation.
var ErrBootstrapRequired = errors.New("run user bootstrap first")

// ErrNoTokens means a send was requested with zero registered devices.
var ErrNoTokens = errors.New("no registered push tokens")

// SendResult is returned from a test notification send.
type SendResult struct {
	OK         bool            `json:"ok"`
	Status     int             `json:"status"`
	Result     json.RawMessage `json:"result"`
	TokenCount int             `json:"token_count"`
}

// Service maintains per-user device push tokens and fans out test
// notifications through the push gateway.
type Service struct {
	users   repo.UserRepo
	tokens  repo.PushTokenRepo
	gateway Gateway
	logger  *zap.Logger
}

// NewService creates a push registry service.
func NewService(users repo.UserRepo, tokens repo.PushTokenRepo, gateway Gateway, logger *zap.Logger) *Service {
	return &Service{
		users:   users,
		tokens:  tokens,
		gateway: gateway,
		logger:  logger,
	}
}

// Register upserts the (user, token) record. Idempotent: repeated
// registration of the same token never creates duplicates.
func (s *Service) Register(ctx context.Context, subject, token string, platform *model.Platform) (model.PushToken, error) {
	user, err := s.currentUser(ctx, subject)
	if err != nil {
		return model.PushToken{}, err
	}

	record, err := s.tokens.Upsert(ctx, user.ID, token, platform)
	if err != nil {
		return model.PushToken{}, fmt.Errorf("register token: %w", err)
	}
	return record, nil
}

// Unregister deletes the (user, token) record. Always succeeds whether or
// not a record existed.
func (s *Service) Unregister(ctx context.Context, subject, token string) error {
	user, err := s.currentUser(ctx, subject)
	if err != nil {
		return err
	}
	return s.tokens.Delete(ctx, user.ID, token)
}

// List returns all token records owned by the caller.
func (s *Service) List(ctx context.Context, subject string) ([]model.PushToken, error) {
	user, err := s.currentUser(ctx, subject)
	if err != nil {
		return nil, err
	}
	return s.tokens.ListByUser(ctx, user.ID)
}

// SendTest builds one message per registered token and submits the batch as
// a single request. Fails with ErrNoTokens before any outbound request when
// the caller has no registered devices.
func (s *Service) SendTest(ctx context.Context, subject, title, body string) (SendResult, error) {
	user, err := s.currentUser(ctx, subject)
	if err != nil {
		return SendResult{}, err
	}

	tokens, err := s.tokens.ListByUser(ctx, user.ID)
	if err != nil {
		return SendResult{}, err
	}
	if len(tokens) == 0 {
		return SendResult{}, ErrNoTokens
	}

	if title == "" {
		title = defaultTitle
	}
	if body == "" {
		body = defaultBody
	}

	messages := make([]Message, 0, len(tokens))
	for _, record := range tokens {
		messages = append(messages, Message{
			To:    record.Token,
			Sound: "default",
			Title: title,
			Body:  body,
			Data:  map[string]string{"source": "airborne"},
		})
	}

	delivery, err := s.gateway.Send(ctx, messages)
	if err != nil {
		return SendResult{}, fmt.Errorf("send test notification: %w", err)
	}

	s.logger.Info("test notification sent",
		zap.String("subject", subject),
		zap.Int("token_count", len(tokens)),
		zap.Int("gateway_status", delivery.Status),
		zap.Bool("gateway_ok", delivery.OK),
	)

	return SendResult{
		OK:         delivery.OK,
		Status:     delivery.Status,
		Result:     delivery.Result,
		TokenCount: len(tokens),
	}, nil
}

func (s *Service) currentUser(ctx context.Context, subject string) (model.User, error) {
	user, err := s.users.GetBySubject(ctx, subject)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return model.User{}, ErrBootstrapRequired
		}
		return model.User{}, fmt.Errorf("resolve caller: %w", err)
	}
	return user, nil
}
