package authflow

import (
	"context"
	"errors"

	"github.com/airborne/server/internal/identity"
)

// fakeIdentity implements identity.Service with per-call hooks and counters.
// Unset hooks fail the call so tests notice unexpected service traffic.
type fakeIdentity struct {
	createSignIn             func(params identity.SignInParams) (*identity.Attempt, error)
	attemptFirstFactor       func(attemptID, password string) (*identity.Attempt, error)
	prepareSecondFactor      func(attemptID, emailAddressID string) error
	attemptSecondFactor      func(attemptID, code string) (*identity.Attempt, error)
	createSignUp             func(email, password string) (*identity.Attempt, error)
	prepareEmailVerification func(attemptID string) error
	attemptEmailVerification func(attemptID, code string) (*identity.Attempt, error)
	startSSOFlow             func(strategy string) (string, error)
	activateSession          func(sessionID string) (string, error)

	createSignInCalls      int
	firstFactorCalls       int
	prepareSecondCalls     int
	activationCalls        int
	lastActivatedSessionID string
	lastCreateSignInParams identity.SignInParams
}

var errUnexpectedCall = errors.New("unexpected identity service call")

func (f *fakeIdentity) CreateSignIn(_ context.Context, params identity.SignInParams) (*identity.Attempt, error) {
	f.createSignInCalls++
	f.lastCreateSignInParams = params
	if f.createSignIn == nil {
		return nil, errUnexpectedCall
	}
	return f.createSignIn(params)
}

func (f *fakeIdentity) AttemptFirstFactor(_ context.Context, attemptID, password string) (*identity.Attempt, error) {
	f.firstFactorCalls++
	if f.attemptFirstFactor == nil {
		return nil, errUnexpectedCall
	}
	return f.attemptFirstFactor(attemptID, password)
}

func (f *fakeIdentity) PrepareSecondFactor(_ context.Context, attemptID, emailAddressID string) error {
	f.prepareSecondCalls++
	if f.prepareSecondFactor == nil {
		return errUnexpectedCall
	}
	return f.prepareSecondFactor(attemptID, emailAddressID)
}

func (f *fakeIdentity) AttemptSecondFactor(_ context.Context, attemptID, code string) (*identity.Attempt, error) {
	if f.attemptSecondFactor == nil {
		return nil, errUnexpectedCall
	}
	return f.attemptSecondFactor(attemptID, code)
}

func (f *fakeIdentity) CreateSignUp(_ context.Context, email, password string) (*identity.Attempt, error) {
	if f.createSignUp == nil {
		return nil, errUnexpectedCall
	}
	return f.createSignUp(email, password)
}

func (f *fakeIdentity) PrepareEmailVerification(_ context.Context, attemptID string) error {
	if f.prepareEmailVerification == nil {
		return errUnexpectedCall
	}
	return f.prepareEmailVerification(attemptID)
}

func (f *fakeIdentity) AttemptEmailVerification(_ context.Context, attemptID, code string) (*identity.Attempt, error) {
	if f.attemptEmailVerification == nil {
		return nil, errUnexpectedCall
	}
	return f.attemptEmailVerification(attemptID, code)
}

func (f *fakeIdentity) StartSSOFlow(_ context.Context, strategy string) (string, error) {
	if f.startSSOFlow == nil {
		return "", errUnexpectedCall
	}
	return f.startSSOFlow(strategy)
}

func (f *fakeIdentity) ActivateSession(_ context.Context, sessionID string) (string, error) {
	f.activationCalls++
	f.lastActivatedSessionID = sessionID
	if f.activateSession == nil {
		return "", errUnexpectedCall
	}
	return f.activateSession(sessionID)
}

func apiError(code, message, longMessage string) *identity.APIError {
	return &identity.APIError{
		Status: 422,
		Errors: []identity.ErrorDetail{{Code: code, Message: message, LongMessage: longMessage}},
	}
}
