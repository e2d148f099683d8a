package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/airborne/server/internal/authflow"
	"github.com/airborne/server/internal/identity"
)

func newSignUpCmd(app *App) *cobra.Command {
	var ssoStrategy string

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account and store the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc := identity.NewClient(app.identityURL)

			needsLogin := false
			flow := authflow.NewSignUpFlow(svc, nil, func() { needsLogin = true })

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

				if err := flow.SubmitRegistration(ctx, email, password); err != nil {
					return errors.New(flow.Err())
				}

				for flow.Step() == authflow.SignUpStepEmailVerification {
					fmt.Println("A verification code was sent to your email.")
					code, err := promptLine("Code: ")
					if err != nil {
						return err
					}
					if err := flow.SubmitVerificationCode(ctx, code); err != nil {
						var ferr *authflow.FlowError
						if errors.As(err, &ferr) && ferr.Kind == authflow.KindVerification {
							fmt.Println(ferr.Message)
							continue
						}
						return errors.New(flow.Err())
					}
				}
			}

			if needsLogin {
				fmt.Println("Account created. Run `airborne signin` to sign in.")
				return nil
			}
			if !flow.SignedIn() {
				return errors.New("sign-up did not complete")
			}

			return app.finishSession(ctx, flow.SessionToken(), email)
		},
	}

	cmd.Flags().StringVar(&ssoStrategy, "sso", "", "SSO strategy (oauth_google or oauth_apple) instead of password sign-up")

	return cmd
}
