package authflow

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/airborne/server/internal/identity"
)

func TestSignIn_CompleteOnCreate(t *testing.T) {
	svc := &fakeIdentity{
		createSignIn: func(identity.SignInParams) (*identity.Attempt, error) {
			return &identity.Attempt{ID: "att_1", Status: identity.StatusComplete, CreatedSessionID: "sess_1"}, nil
		},
		activateSession: func(sessionID string) (string, error) { return "token-1", nil },
	}

	signedIn := 0
	flow := NewSignInFlow(svc, func() { signedIn++ })

	err := flow.SubmitCredentials(context.Background(), "user@example.com", "hunter2")
	require.NoError(t, err)

	assert.True(t, flow.SignedIn())
	assert.Equal(t, StepSignedIn, flow.Step())
	assert.Equal(t, "token-1", flow.SessionToken())
	assert.Empty(t, flow.Err())
	assert.Equal(t, 1, signedIn)
	assert.Equal(t, 1, svc.activationCalls)
	assert.Equal(t, "sess_1", svc.lastActivatedSessionID)
}

func TestSignIn_PasswordFirstFactor(t *testing.T) {
	svc := &fakeIdentity{
		createSignIn: func(identity.SignInParams) (*identity.Attempt, error) {
			return &identity.Attempt{
				ID:                    "att_1",
				Status:                identity.StatusNeedsFirstFactor,
				SupportedFirstFactors: []identity.Factor{{Strategy: identity.StrategyPassword}},
			}, nil
		},
		attemptFirstFactor: func(attemptID, password string) (*identity.Attempt, error) {
			require.Equal(t, "att_1", attemptID)
			require.Equal(t, "hunter2", password)
			return &identity.Attempt{ID: "att_1", Status: identity.StatusComplete, CreatedSessionID: "sess_1"}, nil
		},
		activateSession: func(string) (string, error) { return "token-1", nil },
	}

	flow := NewSignInFlow(svc, nil)
	require.NoError(t, flow.SubmitCredentials(context.Background(), "user@example.com", "hunter2"))

	assert.True(t, flow.SignedIn())
	assert.Equal(t, 1, svc.activationCalls)
}

func TestSignIn_PasswordStrategyNotSupported(t *testing.T) {
	svc := &fakeIdentity{
		createSignIn: func(identity.SignInParams) (*identity.Attempt, error) {
			return &identity.Attempt{
				ID:                    "att_1",
				Status:                identity.StatusNeedsFirstFactor,
				SupportedFirstFactors: []identity.Factor{{Strategy: "passkey"}},
			}, nil
		},
	}

	flow := NewSignInFlow(svc, nil)
	err := flow.SubmitCredentials(context.Background(), "user@example.com", "hunter2")

	var ferr *FlowError
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, KindConfig, ferr.Kind)
	assert.Contains(t, flow.Err(), "Password sign-in is not enabled")
	assert.Equal(t, 0, svc.firstFactorCalls)
	assert.Equal(t, 0, svc.activationCalls)
	assert.False(t, flow.SignedIn())
}

func TestSignIn_SecondFactorRoundTrip(t *testing.T) {
	secondFactors := []identity.Factor{
		{Strategy: "totp"},
		{Strategy: identity.StrategyEmailCode, EmailAddressID: "email_9"},
	}
	svc := &fakeIdentity{
		createSignIn: func(identity.SignInParams) (*identity.Attempt, error) {
			return &identity.Attempt{
				ID:                    "att_1",
				Status:                identity.StatusNeedsFirstFactor,
				SupportedFirstFactors: []identity.Factor{{Strategy: identity.StrategyPassword}},
			}, nil
		},
		attemptFirstFactor: func(string, string) (*identity.Attempt, error) {
			return &identity.Attempt{
				ID:                     "att_1",
				Status:                 identity.StatusNeedsSecondFactor,
				SupportedSecondFactors: secondFactors,
			}, nil
		},
		prepareSecondFactor: func(attemptID, emailAddressID string) error {
			require.Equal(t, "email_9", emailAddressID)
			return nil
		},
		attemptSecondFactor: func(attemptID, code string) (*identity.Attempt, error) {
			require.Equal(t, "424242", code)
			return &identity.Attempt{ID: "att_1", Status: identity.StatusComplete, CreatedSessionID: "sess_1"}, nil
		},
		activateSession: func(string) (string, error) { return "token-1", nil },
	}

	flow := NewSignInFlow(svc, nil)
	require.NoError(t, flow.SubmitCredentials(context.Background(), "user@example.com", "hunter2"))
	assert.Equal(t, StepSecondFactorCode, flow.Step())
	assert.Equal(t, 1, svc.prepareSecondCalls)
	assert.Equal(t, 0, svc.activationCalls)

	require.NoError(t, flow.SubmitSecondFactorCode(context.Background(), " 424242 "))
	assert.True(t, flow.SignedIn())
	assert.Equal(t, 1, svc.activationCalls)
}

func TestSignIn_SecondFactorWithoutEmailCode(t *testing.T) {
	svc := &fakeIdentity{
		createSignIn: func(identity.SignInParams) (*identity.Attempt, error) {
			return &identity.Attempt{
				ID:                     "att_1",
				Status:                 identity.StatusNeedsSecondFactor,
				SupportedSecondFactors: []identity.Factor{{Strategy: "totp"}},
			}, nil
		},
	}

	flow := NewSignInFlow(svc, nil)
	err := flow.SubmitCredentials(context.Background(), "user@example.com", "hunter2")

	var ferr *FlowError
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, KindConfig, ferr.Kind)
	assert.Contains(t, flow.Err(), "email code is not enabled")
	assert.Equal(t, 0, svc.prepareSecondCalls)
	assert.Equal(t, StepCredentials, flow.Step())
}

func TestSignIn_SecondFactorIncompleteKeepsStep(t *testing.T) {
	svc := &fakeIdentity{
		createSignIn: func(identity.SignInParams) (*identity.Attempt, error) {
			return &identity.Attempt{
				ID:                     "att_1",
				Status:                 identity.StatusNeedsSecondFactor,
				SupportedSecondFactors: []identity.Factor{{Strategy: identity.StrategyEmailCode, EmailAddressID: "email_9"}},
			}, nil
		},
		prepareSecondFactor: func(string, string) error { return nil },
		attemptSecondFactor: func(string, string) (*identity.Attempt, error) {
			return &identity.Attempt{ID: "att_1", Status: identity.StatusNeedsSecondFactor}, nil
		},
	}

	flow := NewSignInFlow(svc, nil)
	require.NoError(t, flow.SubmitCredentials(context.Background(), "user@example.com", "hunter2"))

	err := flow.SubmitSecondFactorCode(context.Background(), "000000")
	var ferr *FlowError
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, KindVerification, ferr.Kind)
	assert.Contains(t, flow.Err(), "needs_second_factor")
	// User may resubmit from the same step.
	assert.Equal(t, StepSecondFactorCode, flow.Step())
	assert.Equal(t, 0, svc.activationCalls)
}

func TestSignIn_SecondFactorCodeWithoutPendingAttempt(t *testing.T) {
	flow := NewSignInFlow(&fakeIdentity{}, nil)
	err := flow.SubmitSecondFactorCode(context.Background(), "123456")

	var ferr *FlowError
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, KindStep, ferr.Kind)
}

func TestSignIn_UnsupportedStatusNamesStatus(t *testing.T) {
	svc := &fakeIdentity{
		createSignIn: func(identity.SignInParams) (*identity.Attempt, error) {
			return &identity.Attempt{ID: "att_1", Status: "needs_web3_wallet"}, nil
		},
	}

	flow := NewSignInFlow(svc, nil)
	err := flow.SubmitCredentials(context.Background(), "user@example.com", "hunter2")

	require.Error(t, err)
	assert.Contains(t, flow.Err(), "needs_web3_wallet")
	assert.Equal(t, 0, svc.activationCalls)
}

func TestSignIn_NeedsNewPassword(t *testing.T) {
	svc := &fakeIdentity{
		createSignIn: func(identity.SignInParams) (*identity.Attempt, error) {
			return &identity.Attempt{ID: "att_1", Status: identity.StatusNeedsNewPassword}, nil
		},
	}

	flow := NewSignInFlow(svc, nil)
	err := flow.SubmitCredentials(context.Background(), "user@example.com", "hunter2")

	var ferr *FlowError
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, KindConfig, ferr.Kind)
	assert.Contains(t, flow.Err(), "password reset")
}

func TestSignIn_IdentifierOnlyRetryOnFormatError(t *testing.T) {
	svc := &fakeIdentity{}
	svc.createSignIn = func(params identity.SignInParams) (*identity.Attempt, error) {
		if svc.createSignInCalls == 1 {
			require.Equal(t, "hunter2", params.Password)
			return nil, apiError(identity.CodeFormParamFormatInvalid, "bad format", "")
		}
		// Retry must carry only the identifier.
		require.Equal(t, "user@example.com", params.Identifier)
		require.Empty(t, params.Password)
		return &identity.Attempt{ID: "att_2", Status: identity.StatusComplete, CreatedSessionID: "sess_2"}, nil
	}
	svc.activateSession = func(string) (string, error) { return "token-2", nil }

	flow := NewSignInFlow(svc, nil)
	require.NoError(t, flow.SubmitCredentials(context.Background(), " user@example.com ", "hunter2"))

	assert.Equal(t, 2, svc.createSignInCalls)
	assert.True(t, flow.SignedIn())
}

func TestSignIn_NonFormatCreateErrorNotRetried(t *testing.T) {
	svc := &fakeIdentity{
		createSignIn: func(identity.SignInParams) (*identity.Attempt, error) {
			return nil, apiError("form_password_incorrect", "Password is incorrect.", "Password is incorrect. Try again.")
		},
	}

	flow := NewSignInFlow(svc, nil)
	err := flow.SubmitCredentials(context.Background(), "user@example.com", "wrong")

	require.Error(t, err)
	assert.Equal(t, 1, svc.createSignInCalls)
	assert.Equal(t, "Password is incorrect. Try again.", flow.Err())
}

func TestSignIn_AlreadySignedInAbsorbed(t *testing.T) {
	svc := &fakeIdentity{
		createSignIn: func(identity.SignInParams) (*identity.Attempt, error) {
			return nil, apiError("session_exists", "You're already signed in.", "")
		},
	}

	signedIn := 0
	flow := NewSignInFlow(svc, func() { signedIn++ })

	err := flow.SubmitCredentials(context.Background(), "user@example.com", "hunter2")
	require.NoError(t, err)

	assert.True(t, flow.SignedIn())
	assert.Empty(t, flow.Err())
	assert.Equal(t, 1, signedIn)
	assert.Equal(t, 0, svc.activationCalls)
}

func TestSignIn_InvalidIdentifierHint(t *testing.T) {
	svc := &fakeIdentity{
		createSignIn: func(identity.SignInParams) (*identity.Attempt, error) {
			return nil, apiError("form_identifier_not_found", "Invalid identifier.", "")
		},
	}

	flow := NewSignInFlow(svc, nil)
	err := flow.SubmitCredentials(context.Background(), "user@example.com", "hunter2")

	var ferr *FlowError
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, KindConfig, ferr.Kind)
	assert.Contains(t, flow.Err(), "Invalid identifier")
}

func TestSignIn_ActivationWithoutSessionID(t *testing.T) {
	svc := &fakeIdentity{
		createSignIn: func(identity.SignInParams) (*identity.Attempt, error) {
			return &identity.Attempt{ID: "att_1", Status: identity.StatusComplete}, nil
		},
	}

	flow := NewSignInFlow(svc, nil)
	err := flow.SubmitCredentials(context.Background(), "user@example.com", "hunter2")

	var ferr *FlowError
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, KindActivation, ferr.Kind)
	assert.Contains(t, flow.Err(), "no session could be activated")
	assert.Equal(t, 0, svc.activationCalls)
}

func TestSignIn_SignedInShortCircuit(t *testing.T) {
	svc := &fakeIdentity{
		createSignIn: func(identity.SignInParams) (*identity.Attempt, error) {
			return &identity.Attempt{ID: "att_1", Status: identity.StatusComplete, CreatedSessionID: "sess_1"}, nil
		},
		activateSession: func(string) (string, error) { return "token-1", nil },
	}

	signedIn := 0
	flow := NewSignInFlow(svc, func() { signedIn++ })
	require.NoError(t, flow.SubmitCredentials(context.Background(), "user@example.com", "hunter2"))

	// A second submit must not issue another attempt.
	require.NoError(t, flow.SubmitCredentials(context.Background(), "user@example.com", "hunter2"))
	assert.Equal(t, 1, svc.createSignInCalls)
	assert.Equal(t, 2, signedIn)
}

func TestSignIn_SSO(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		svc := &fakeIdentity{
			startSSOFlow:    func(strategy string) (string, error) { return "sess_sso", nil },
			activateSession: func(string) (string, error) { return "token-sso", nil },
		}
		flow := NewSignInFlow(svc, nil)
		require.NoError(t, flow.SubmitSSO(context.Background(), identity.StrategyGoogle))
		assert.True(t, flow.SignedIn())
		assert.Equal(t, "sess_sso", svc.lastActivatedSessionID)
	})

	t.Run("canceled", func(t *testing.T) {
		svc := &fakeIdentity{
			startSSOFlow: func(string) (string, error) { return "", nil },
		}
		flow := NewSignInFlow(svc, nil)
		err := flow.SubmitSSO(context.Background(), identity.StrategyGoogle)
		require.Error(t, err)
		assert.Contains(t, flow.Err(), "Google sign-in was canceled")
	})

	t.Run("already signed in absorbed", func(t *testing.T) {
		svc := &fakeIdentity{
			startSSOFlow: func(string) (string, error) {
				return "", apiError("session_exists", "already signed in", "")
			},
		}
		flow := NewSignInFlow(svc, nil)
		require.NoError(t, flow.SubmitSSO(context.Background(), identity.StrategyApple))
		assert.True(t, flow.SignedIn())
		assert.Empty(t, flow.Err())
	})
}
