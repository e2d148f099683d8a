package authflow

import (
	"context"
	"strings"

	"github.com/airborne/server/internal/identity"
)

// SignUpStep is the sign-up step the user is currently on.
type SignUpStep string

const (
	// SignUpStepRegistration is the initial step: email and password entry.
	SignUpStepRegistration SignUpStep = "registration"
	// SignUpStepEmailVerification means a verification code was sent to the
	// email address and the flow is waiting for it.
	SignUpStepEmailVerification SignUpStep = "email_verification"
	// SignUpStepSignedIn is terminal.
	SignUpStepSignedIn SignUpStep = "signed_in"
)

const signUpFallback = "Unable to sign up. Check your identity configuration."

// SignUpFlow drives sign-up against the identity service. Structurally the
// sign-in flow with sign-up step names. Not safe for concurrent use.
type SignUpFlow struct {
	svc          identity.Service
	onSignedIn   func()
	onNeedsLogin func()

	step       SignUpStep
	attempt    *identity.Attempt
	submitting bool
	signedIn   bool
	token      string
	errText    string
}

// NewSignUpFlow creates a sign-up flow. onSignedIn runs after session
// activation; onNeedsLogin runs when the attempt completed without a session
// to activate and the user must sign in explicitly. Both may be nil.
func NewSignUpFlow(svc identity.Service, onSignedIn, onNeedsLogin func()) *SignUpFlow {
	return &SignUpFlow{
		svc:          svc,
		onSignedIn:   onSignedIn,
		onNeedsLogin: onNeedsLogin,
		step:         SignUpStepRegistration,
	}
}

// Step returns the current sign-up step.
func (f *SignUpFlow) Step() SignUpStep { return f.step }

// Err returns the display text of the last failure, or "".
func (f *SignUpFlow) Err() string { return f.errText }

// Submitting reports whether a submission is in flight.
func (f *SignUpFlow) Submitting() bool { return f.submitting }

// SignedIn reports whether a session has been activated.
func (f *SignUpFlow) SignedIn() bool { return f.signedIn }

// SessionToken returns the bearer token of the activated session, or "".
func (f *SignUpFlow) SessionToken() string { return f.token }

// SubmitRegistration creates a sign-up attempt and advances the flow.
func (f *SignUpFlow) SubmitRegistration(ctx context.Context, email, password string) error {
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

	attempt, err := f.svc.CreateSignUp(ctx, strings.TrimSpace(email), password)
	if err != nil {
		msg := identity.ErrorMessage(err, signUpFallback)
		if identity.IndicatesSignedIn(msg) {
			f.finishSignedIn()
			return nil
		}
		return f.fail(KindService, msg)
	}

	switch attempt.Status {
	case identity.StatusComplete:
		return f.activateSession(ctx, attempt.CreatedSessionID)

	case identity.StatusMissingRequirements:
		if !attempt.NeedsEmailVerification() {
			return f.fail(KindConfig, "Account created, but additional sign-up requirements are enabled. Check your identity provider settings.")
		}
		if err := f.svc.PrepareEmailVerification(ctx, attempt.ID); err != nil {
			return f.fail(KindService, identity.ErrorMessage(err, signUpFallback))
		}
		f.attempt = attempt
		f.step = SignUpStepEmailVerification
		return nil

	default:
		return f.fail(KindStep, "Sign-up was abandoned. Please try again.")
	}
}

// SubmitVerificationCode verifies the emailed sign-up code. The flow stays on
// the verification step on failure so the user may resubmit.
func (f *SignUpFlow) SubmitVerificationCode(ctx context.Context, code string) error {
	if f.submitting {
		return nil
	}
	if f.signedIn {
		f.finishSignedIn()
		return nil
	}
	if f.step != SignUpStepEmailVerification || f.attempt == nil {
		return f.fail(KindStep, "No email verification is pending.")
	}

	f.submitting = true
	defer func() { f.submitting = false }()
	f.errText = ""

	attempt, err := f.svc.AttemptEmailVerification(ctx, f.attempt.ID, strings.TrimSpace(code))
	if err != nil {
		return f.fail(KindVerification, identity.ErrorMessage(err, "Invalid verification code."))
	}

	if attempt.Status == identity.StatusComplete {
		return f.activateSession(ctx, attempt.CreatedSessionID)
	}
	return f.fail(KindVerification, "Verification is not complete yet. Check the code and try again.")
}

// activateSession activates the created session. A completed sign-up without
// a session id is not an error here: the user is routed to explicit sign-in.
func (f *SignUpFlow) activateSession(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		if f.onNeedsLogin != nil {
			f.onNeedsLogin()
			return nil
		}
		return f.fail(KindActivation, "Sign-up completed, but no session could be activated.")
	}

	token, err := f.svc.ActivateSession(ctx, sessionID)
	if err != nil {
		return f.fail(KindActivation, identity.ErrorMessage(err, "Sign-up completed, but no session could be activated."))
	}

	f.token = token
	f.finishSignedIn()
	return nil
}

func (f *SignUpFlow) finishSignedIn() {
	f.signedIn = true
	f.step = SignUpStepSignedIn
	f.attempt = nil
	f.errText = ""
	if f.onSignedIn != nil {
		f.onSignedIn()
	}
}

func (f *SignUpFlow) fail(kind ErrorKind, message string) error {
	f.errText = message
	return &FlowError{Kind: kind, Message: message}
}
