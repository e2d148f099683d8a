package authflow

import (
	"context"
	"fmt"

	"github.com/airborne/server/internal/identity"
)

// ProviderName returns the display name for a known SSO strategy.
func ProviderName(strategy string) string {
	switch strategy {
	case identity.StrategyGoogle:
		return "Google"
	case identity.StrategyApple:
		return "Apple"
	default:
		return strategy
	}
}

// SubmitSSO runs an external single-sign-on flow for the strategy and
// activates the resulting session. The already-signed-in absorption rule
// applies the same way as for credential sign-in.
func (f *SignInFlow) SubmitSSO(ctx context.Context, strategy string) error {
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

	provider := ProviderName(strategy)

	sessionID, err := f.svc.StartSSOFlow(ctx, strategy)
	if err != nil {
		msg := identity.ErrorMessage(err, fmt.Sprintf("Unable to sign in with %s.", provider))
		if identity.IndicatesSignedIn(msg) {
			f.finishSignedIn()
			return nil
		}
		return f.fail(KindService, msg)
	}
	if sessionID == "" {
		return f.fail(KindService, fmt.Sprintf("%s sign-in was canceled or did not complete.", provider))
	}

	return f.activateSession(ctx, sessionID)
}

// SubmitSSO is the sign-up counterpart of the sign-in SSO path.
func (f *SignUpFlow) SubmitSSO(ctx context.Context, strategy string) error {
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

	provider := ProviderName(strategy)

	sessionID, err := f.svc.StartSSOFlow(ctx, strategy)
	if err != nil {
		msg := identity.ErrorMessage(err, fmt.Sprintf("Unable to sign up with %s.", provider))
		if identity.IndicatesSignedIn(msg) {
			f.finishSignedIn()
			return nil
		}
		return f.fail(KindService, msg)
	}
	if sessionID == "" {
		return f.fail(KindService, fmt.Sprintf("%s sign-up was canceled or did not complete.", provider))
	}

	return f.activateSession(ctx, sessionID)
}
