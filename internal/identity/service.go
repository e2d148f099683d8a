package identity

import "context"

// SignInParams are the inputs to attempt creation. Password may be empty for
// identity services that require an identifier-then-factor flow.
type SignInParams struct {
	Identifier string
	Password   string
}

// Service defines the identity service operations the authentication flows
// depend on. Implementations return *APIError for structured service errors.
type Service interface {
	// CreateSignIn starts a sign-in attempt. When params.Password is empty
	// the attempt is created from the identifier alone.
	CreateSignIn(ctx context.Context, params SignInParams) (*Attempt, error)
	// AttemptFirstFactor verifies the password against an existing attempt.
	AttemptFirstFactor(ctx context.Context, attemptID, password string) (*Attempt, error)
	// PrepareSecondFactor asks the service to send an email code for the
	// given address id.
	PrepareSecondFactor(ctx context.Context, attemptID, emailAddressID string) error
	// AttemptSecondFactor verifies an emailed code against the attempt.
	AttemptSecondFactor(ctx context.Context, attemptID, code string) (*Attempt, error)

	// CreateSignUp starts a sign-up attempt with email and password.
	CreateSignUp(ctx context.Context, email, password string) (*Attempt, error)
	// PrepareEmailVerification asks the service to send the sign-up
	// verification code.
	PrepareEmailVerification(ctx context.Context, attemptID string) error
	// AttemptEmailVerification verifies the sign-up code.
	AttemptEmailVerification(ctx context.Context, attemptID, code string) (*Attempt, error)

	// StartSSOFlow runs an external single-sign-on flow for the strategy and
	// returns the created session id, or "" when the flow was canceled.
	StartSSOFlow(ctx context.Context, strategy string) (string, error)

	// ActivateSession converts a created session id into the active local
	// session and returns its bearer token.
	ActivateSession(ctx context.Context, sessionID string) (string, error)
}
