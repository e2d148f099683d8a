package cli

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

// App carries the CLI configuration and session state shared by commands.
type App struct {
	apiURL      string
	identityURL string
	stateDir    string
}

func defaultStateDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".airborne"
	}
	return filepath.Join(home, ".airborne")
}

// NewRootCmd builds the airborne command tree.
func NewRootCmd() *cobra.Command {
	app := &App{}

	root := &cobra.Command{
		Use:           "airborne",
		Short:         "Airborne backend client",
		Long:          "Sign in against the identity service and manage push tokens on the Airborne backend.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&app.apiURL, "api", envOr("AIRBORNE_API_URL", "http://localhost:8080"), "backend base URL")
	root.PersistentFlags().StringVar(&app.identityURL, "identity", envOr("AIRBORNE_IDENTITY_URL", "https://example.clerk.accounts.dev"), "identity service base URL")
	root.PersistentFlags().StringVar(&app.stateDir, "state-dir", defaultStateDir(), "directory for the saved session")

	root.AddCommand(
		newSignInCmd(app),
		newSignUpCmd(app),
		newSignOutCmd(app),
		newWhoamiCmd(app),
		newPushCmd(app),
	)

	return root
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
