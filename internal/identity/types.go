package identity

// Status is the step an in-progress attempt is on. The identity service owns
// the vocabulary; anything outside the constants below is treated as unknown
// by callers.
type Status string

const (
	StatusComplete            Status = "complete"
	StatusNeedsFirstFactor    Status = "needs_first_factor"
	StatusNeedsSecondFactor   Status = "needs_second_factor"
	StatusNeedsNewPassword    Status = "needs_new_password"
	StatusMissingRequirements Status = "missing_requirements"
	StatusAbandoned           Status = "abandoned"
)

// Strategy names used by sign-in factors and SSO flows.
const (
	StrategyPassword  = "password"
	StrategyEmailCode = "email_code"
	StrategyGoogle    = "oauth_google"
	StrategyApple     = "oauth_apple"
)

// Factor describes one supported first or second factor on an attempt.
// EmailAddressID is set for email-based factors and identifies which of the
// user's addresses the code would be sent to.
type Factor struct {
	Strategy       string `json:"strategy"`
	EmailAddressID string `json:"email_address_id,omitempty"`
}

// Attempt is the server-tracked, multi-step authentication transaction.
// It is a tagged union keyed by Status: the factor lists are meaningful in
// the needs_* states, CreatedSessionID only when Status is complete, and
// UnverifiedFields only for sign-up attempts in missing_requirements.
type Attempt struct {
	ID                     string   `json:"id"`
	Status                 Status   `json:"status"`
	SupportedFirstFactors  []Factor `json:"supported_first_factors,omitempty"`
	SupportedSecondFactors []Factor `json:"supported_second_factors,omitempty"`
	CreatedSessionID       string   `json:"created_session_id,omitempty"`
	UnverifiedFields       []string `json:"unverified_fields,omitempty"`
}

// HasFirstFactor reports whether the attempt supports the given first-factor strategy.
func (a *Attempt) HasFirstFactor(strategy string) bool {
	for _, f := range a.SupportedFirstFactors {
		if f.Strategy == strategy {
			return true
		}
	}
	return false
}

// EmailCodeSecondFactor returns the first supported second factor that uses
// the email-code strategy and carries an email address id, or false.
func (a *Attempt) EmailCodeSecondFactor() (Factor, bool) {
	for _, f := range a.SupportedSecondFactors {
		if f.Strategy == StrategyEmailCode && f.EmailAddressID != "" {
			return f, true
		}
	}
	return Factor{}, false
}

// NeedsEmailVerification reports whether a sign-up attempt still has an
// unverified email address.
func (a *Attempt) NeedsEmailVerification() bool {
	for _, field := range a.UnverifiedFields {
		if field == "email_address" {
			return true
		}
	}
	return false
}
