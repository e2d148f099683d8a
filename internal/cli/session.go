package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

type sessionState struct {
	Token string `json:"token"`
}

func (a *App) sessionPath() string {
	return filepath.Join(a.stateDir, "session.json")
}

// saveSession persists the activated session token for later commands.
func (a *App) saveSession(token string) error {
	if err := os.MkdirAll(a.stateDir, 0o700); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	payload, err := json.Marshal(sessionState{Token: token})
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := os.WriteFile(a.sessionPath(), payload, 0o600); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

// loadSession returns the saved session token, or "" when signed out.
func (a *App) loadSession() string {
	payload, err := os.ReadFile(a.sessionPath())
	if err != nil {
		return ""
	}
	var state sessionState
	if err := json.Unmarshal(payload, &state); err != nil {
		return ""
	}
	return state.Token
}

// clearSession removes the saved session. Idempotent.
func (a *App) clearSession() error {
	err := os.Remove(a.sessionPath())
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove session: %w", err)
	}
	return nil
}
