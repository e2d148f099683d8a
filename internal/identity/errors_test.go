package identity

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorMessage_prefersLongMessage(t *testing.T) {
	err := &APIError{Errors: []ErrorDetail{{
		Code:        "form_password_incorrect",
		Message:     "Incorrect password",
		LongMessage: "Password is incorrect. Try again, or use another method.",
	}}}
	got := ErrorMessage(err, "fallback")
	if got != "Password is incorrect. Try again, or use another method." {
		t.Errorf("expected long message, got %q", got)
	}
}

func TestErrorMessage_fallsBackToShortMessage(t *testing.T) {
	err := &APIError{Errors: []ErrorDetail{{Code: "x", Message: "Incorrect password"}}}
	if got := ErrorMessage(err, "fallback"); got != "Incorrect password" {
		t.Errorf("expected short message, got %q", got)
	}
}

func TestErrorMessage_fallsBackToDefault(t *testing.T) {
	cases := []error{
		errors.New("plain error"),
		&APIError{},
		fmt.Errorf("wrapped: %w", errors.New("inner")),
	}
	for _, err := range cases {
		if got := ErrorMessage(err, "fallback"); got != "fallback" {
			t.Errorf("ErrorMessage(%v) = %q, want fallback", err, got)
		}
	}
}

func TestErrorMessage_unwrapsWrappedAPIError(t *testing.T) {
	inner := &APIError{Errors: []ErrorDetail{{Message: "Incorrect password"}}}
	err := fmt.Errorf("create sign-in: %w", inner)
	if got := ErrorMessage(err, "fallback"); got != "Incorrect password" {
		t.Errorf("expected unwrapped message, got %q", got)
	}
}

func TestErrorCode(t *testing.T) {
	err := &APIError{Errors: []ErrorDetail{{Code: "Form_Param_Format_Invalid"}}}
	if got := ErrorCode(err); got != "form_param_format_invalid" {
		t.Errorf("expected lower-cased code, got %q", got)
	}
	if got := ErrorCode(errors.New("plain")); got != "" {
		t.Errorf("expected empty code for plain error, got %q", got)
	}
}

func TestIndicatesSignedIn(t *testing.T) {
	if !IndicatesSignedIn("You're ALREADY SIGNED IN.") {
		t.Error("case-insensitive match expected")
	}
	if IndicatesSignedIn("sign-in failed") {
		t.Error("unrelated message must not match")
	}
}
