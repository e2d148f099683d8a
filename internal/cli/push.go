package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func newPushCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "push",
		Short: "Manage push tokens and test notifications",
	}
	cmd.AddCommand(
		newPushRegisterCmd(app),
		newPushUnregisterCmd(app),
		newPushListCmd(app),
		newPushTestCmd(app),
	)
	return cmd
}

func (a *App) authedClient() (*apiClient, error) {
	token := a.loadSession()
	if token == "" {
		return nil, errors.New("not signed in; run `airborne signin`")
	}
	return newAPIClient(a.apiURL, token), nil
}

func newPushRegisterCmd(app *App) *cobra.Command {
	var platform string

	cmd := &cobra.Command{
		Use:   "register <token>",
		Short: "Register a device push token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := app.authedClient()
			if err != nil {
				return err
			}

			var platformParam *string
			if platform != "" {
				platformParam = &platform
			}

			record, err := api.RegisterToken(cmd.Context(), args[0], platformParam)
			if err != nil {
				return err
			}

			fmt.Printf("Registered %s (id %s)\n", record.Token, record.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&platform, "platform", "", "device platform (ios or android)")
	return cmd
}

func newPushUnregisterCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "unregister <token>",
		Short: "Remove a device push token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := app.authedClient()
			if err != nil {
				return err
			}
			if err := api.UnregisterToken(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Println("Unregistered.")
			return nil
		},
	}
}

func newPushListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered push tokens",
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := app.authedClient()
			if err != nil {
				return err
			}

			tokens, err := api.ListTokens(cmd.Context())
			if err != nil {
				return err
			}
			if len(tokens) == 0 {
				fmt.Println("No registered push tokens.")
				return nil
			}
			for _, record := range tokens {
				platform := "-"
				if record.Platform != nil {
					platform = *record.Platform
				}
				fmt.Printf("%s  %-8s  updated %s\n", record.Token, platform, record.UpdatedAt)
			}
			return nil
		},
	}
}

func newPushTestCmd(app *App) *cobra.Command {
	var title, body string

	cmd := &cobra.Command{
		Use:   "test",
		Short: "Send a test notification to all registered devices",
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := app.authedClient()
			if err != nil {
				return err
			}
			return runPushTest(cmd.Context(), api, title, body)
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "notification title")
	cmd.Flags().StringVar(&body, "body", "", "notification body")
	return cmd
}

func runPushTest(ctx context.Context, api *apiClient, title, body string) error {
	result, err := api.SendTest(ctx, title, body)
	if err != nil {
		return err
	}
	fmt.Printf("Delivered to gateway: ok=%v status=%d tokens=%d\n", result.OK, result.Status, result.TokenCount)
	return nil
}
