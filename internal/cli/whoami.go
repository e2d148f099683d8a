package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func newWhoamiCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			token := app.loadSession()
			if token == "" {
				return errors.New("not signed in; run `airborne signin`")
			}

			user, err := newAPIClient(app.apiURL, token).Me(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Printf("Subject:    %s\n", user.Subject)
			if user.Email != nil {
				fmt.Printf("Email:      %s\n", *user.Email)
			}
			if user.Name != nil {
				fmt.Printf("Name:       %s\n", *user.Name)
			}
			fmt.Printf("Last seen:  %s\n", user.LastSeenAt)
			return nil
		},
	}
}

func newSignOutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "signout",
		Short: "Discard the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.clearSession(); err != nil {
				return err
			}
			fmt.Println("Signed out.")
			return nil
		},
	}
}
