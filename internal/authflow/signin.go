package authflow

import (
	"context"
	"fmt"
	"strings"

	"github.com/airborne/server/internal/identity"
)

// Step is the sign-in step the user is currently on.
type Step string

const (
	// StepCredentials is the initial step: identifier and password entry.
	StepCredentials Step = "credentials"
	// StepSecondFactorCode means an email code was sent and the flow is
	// waiting for the user to submit it.
	StepSecondFactorCode Step = "second_factor_code"
	// StepSignedIn is terminal: a session was activated.
	StepSignedIn Step = "signed_in"
)

const signInFallback = "Unable to sign in. Check your credentials and identity configuration."

// SignInFlow drives a multi-step sign-in against the identity service.
// It is a single-caller state machine: steps within one attempt are strictly
// sequential, enforced through the current step and the pending attempt
// reference. Not safe for concurrent use.
type SignInFlow struct {
	svc        identity.Service
	onSignedIn func()

	step       Step
	attempt    *identity.Attempt
	submitting bool
	signedIn   bool
	token      string
	errText    string
}

// NewSignInFlow creates a sign-in flow. onSignedIn is invoked once after
// session activation (or after an absorbed already-signed-in race) and may
// be nil.
func NewSignInFlow(svc identity.Service, onSignedIn func()) *SignInFlow {
	return &SignInFlow{
		svc:        svc,
		onSignedIn: onSignedIn,
		step:       StepCredentials,
	}
}

// Step returns the current sign-in step.
func (f *SignInFlow) Step() Step { return f.step }

// Err returns the display text of the last failure, or "".
func (f *SignInFlow) Err() string { return f.errText }

// Submitting reports whether a submission is in flight.
func (f *SignInFlow) Submitting() bool { return f.submitting }

// SignedIn reports whether a session has been activated.
func (f *SignInFlow) SignedIn() bool { return f.signedIn }

// SessionToken returns the bearer token of the activated session, or "".
func (f *SignInFlow) SessionToken() string { return f.token }

// SubmitCredentials creates a sign-in attempt from the identifier and
// password and advances the flow according to the attempt status. A no-op
// while a previous submission is pending; short-circuits to the signed-in
// path when already authenticated.
func (f *SignInFlow) SubmitCredentials(ctx context.Context, identifier, password string) error {
	if f.submitting {
		return nil
	}
	if f.signedIn {
		f.finishSignedIn()
		return nil
	}

	f.submitting = true
	defer func() { f.submitting = false }()
	f.errText = ""

	identifier = strings.TrimSpace(identifier)

	attempt, err := f.svc.CreateSignIn(ctx, identity.SignInParams{
		Identifier: identifier,
		Password:   password,
	})
	if err != nil {
		// Some identity configurations reject combined identifier+factor
		// creation; retry once with the identifier alone.
		if identity.ErrorCode(err) != identity.CodeFormParamFormatInvalid {
			return f.failFromService(err)
		}
		attempt, err = f.svc.CreateSignIn(ctx, identity.SignInParams{Identifier: identifier})
		if err != nil {
			return f.failFromService(err)
		}
	}

	switch attempt.Status {
	case identity.StatusComplete:
		return f.activateSession(ctx, attempt.CreatedSessionID)

	case identity.StatusNeedsFirstFactor:
		if !attempt.HasFirstFactor(identity.StrategyPassword) {
			return f.fail(KindConfig, "Password sign-in is not enabled for this application. Enable it in the identity provider dashboard.")
		}

		passwordAttempt, err := f.svc.AttemptFirstFactor(ctx, attempt.ID, password)
		if err != nil {
			return f.failFromService(err)
		}

		switch passwordAttempt.Status {
		case identity.StatusComplete:
			return f.activateSession(ctx, passwordAttempt.CreatedSessionID)
		case identity.StatusNeedsSecondFactor:
			return f.beginEmailCodeSecondFactor(ctx, passwordAttempt)
		default:
			return f.fail(KindStep, fmt.Sprintf("Password verification did not complete sign-in (%s).", statusOrUnknown(passwordAttempt.Status)))
		}

	case identity.StatusNeedsSecondFactor:
		return f.beginEmailCodeSecondFactor(ctx, attempt)

	case identity.StatusNeedsNewPassword:
		return f.fail(KindConfig, "This account requires a password reset before sign-in.")

	default:
		return f.fail(KindStep, fmt.Sprintf("Sign-in requires an unsupported step: %s.", statusOrUnknown(attempt.Status)))
	}
}

// SubmitSecondFactorCode verifies the emailed code. The flow stays on the
// code step on failure so the user may resubmit.
func (f *SignInFlow) SubmitSecondFactorCode(ctx context.Context, code string) error {
	if f.submitting {
		return nil
	}
	if f.signedIn {
		f.finishSignedIn()
		return nil
	}
	if f.step != StepSecondFactorCode || f.attempt == nil {
		return f.fail(KindStep, "No second-factor verification is pending.")
	}

	f.submitting = true
	defer func() { f.submitting = false }()
	f.errText = ""

	attempt, err := f.svc.AttemptSecondFactor(ctx, f.attempt.ID, strings.TrimSpace(code))
	if err != nil {
		return f.fail(KindVerification, identity.ErrorMessage(err, "Invalid verification code."))
	}

	if attempt.Status == identity.StatusComplete {
		return f.activateSession(ctx, attempt.CreatedSessionID)
	}
	return f.fail(KindVerification, fmt.Sprintf("Verification is not complete yet (%s).", statusOrUnknown(attempt.Status)))
}

// beginEmailCodeSecondFactor looks for an email-code second factor with an
// address id, asks the service to prepare it, and moves the flow to the code
// step. Fails without side effects when no such factor is offered.
func (f *SignInFlow) beginEmailCodeSecondFactor(ctx context.Context, attempt *identity.Attempt) error {
	factor, ok := attempt.EmailCodeSecondFactor()
	if !ok {
		return f.fail(KindConfig, "Second-factor authentication is required, but email code is not enabled for this account.")
	}

	if err := f.svc.PrepareSecondFactor(ctx, attempt.ID, factor.EmailAddressID); err != nil {
		return f.failFromService(err)
	}

	f.attempt = attempt
	f.step = StepSecondFactorCode
	return nil
}

// activateSession converts a created session id into the active session.
func (f *SignInFlow) activateSession(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return f.fail(KindActivation, "Sign-in completed, but no session could be activated.")
	}

	token, err := f.svc.ActivateSession(ctx, sessionID)
	if err != nil {
		return f.fail(KindActivation, identity.ErrorMessage(err, "Sign-in completed, but no session could be activated."))
	}

	f.token = token
	f.finishSignedIn()
	return nil
}

// failFromService maps an identity service error to flow state. A message
// indicating the user is already signed in is absorbed as success: a session
// was established concurrently and the race is harmless.
func (f *SignInFlow) failFromService(err error) error {
	code := identity.ErrorCode(err)
	msg := identity.ErrorMessage(err, signInFallback)

	if identity.IndicatesSignedIn(msg) {
		f.finishSignedIn()
		return nil
	}

	if strings.Contains(code, "identifier") || strings.Contains(strings.ToLower(msg), "invalid identifier") {
		return f.fail(KindConfig, "Invalid identifier. Verify you are using the exact email used at sign-up, and that email is enabled as a sign-in identifier.")
	}

	return f.fail(KindService, msg)
}

func (f *SignInFlow) finishSignedIn() {
	f.signedIn = true
	f.step = StepSignedIn
	f.attempt = nil
	f.errText = ""
	if f.onSignedIn != nil {
		f.onSignedIn()
	}
}

func (f *SignInFlow) fail(kind ErrorKind, message string) error {
	f.errText = message
	return &FlowError{Kind: kind, Message: message}
}

func statusOrUnknown(s identity.Status) string {
	if s == "" {
		return "unknown"
	}
	return string(s)
}
