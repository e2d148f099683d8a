package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/airborne/server/internal/authflow"
	"github.com/airborne/server/internal/identity"
)

func newSignInCmd(app *App) *cobra.Command {
	var ssoStrategy string

	cmd := &cobra.Command{
		Use:   "signin",
		Short: "Sign in and store the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc := identity.NewClient(app.identityURL)
			flow := authflow.NewSignInFlow(svc, nil)

			var email string
			if ssoStrategy != "" {
				if err := flow.SubmitSSO(ctx, ssoStrategy); err != nil {
					return errors.New(flow.Err())
				}
			} else {
				var err error
				email, err = promptLine("Email: ")
				if err != nil {
					return err
				}
				password, err := promptPassword("Password: ")
				if err != nil {
					return err
				}

				if err := flow.SubmitCredentials(ctx, email, password); err != nil {
					return errors.New(flow.Err())
				}

				for flow.Step() == authflow.StepSecondFactorCode {
					fmt.Println("A verification code was sent to your email.")
					code, err := promptLine("Code: ")
					if err != nil {
						return err
					}
					if err := flow.SubmitSecondFactorCode(ctx, code); err != nil {
						var ferr *authflow.FlowError
						if errors.As(err, &ferr) && ferr.Kind == authflow.KindVerification {
							fmt.Println(ferr.Message)
							continue
						}
						return errors.New(flow.Err())
					}
				}
			}

			if !flow.SignedIn() {
				return errors.New("sign-in did not complete")
			}

			return app.finishSession(ctx, flow.SessionToken(), email)
		},
	}

	cmd.Flags().StringVar(&ssoStrategy, "sso", "", "SSO strategy (oauth_google or oauth_apple) instead of password sign-in")

	return cmd
}

// finishSession stores the session token and runs the user bootstrap so push
// operations work immediately. An empty token means an already-signed-in race
// was absorbed; the previously stored session stays valid.
func (a *App) finishSession(ctx context.Context, token, email string) error {
	if token == "" {
		token = a.loadSession()
		if token == "" {
			return errors.New("signed in, but no session token is available")
		}
	}
	if err := a.saveSession(token); err != nil {
		return err
	}

	api := newAPIClient(a.apiURL, token)
	var emailParam *string
	if email != "" {
		emailParam = &email
	}
	user, err := api.Bootstrap(ctx, emailParam, nil)
	if err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}

	fmt.Printf("Signed in as %s\n", user.Subject)
	return nil
}
