package identity

import (
	"errors"
	"strings"
)

// Error codes the flow controller branches on.
const (
	CodeFormParamFormatInvalid = "form_param_format_invalid"
)

// ErrorDetail is one entry of an identity service error response.
type ErrorDetail struct {
	Code        string `json:"code"`
	Message     string `json:"message"`
	LongMessage string `json:"long_message"`
}

// APIError is a structured error returned by the identity service.
type APIError struct {
	Status int           `json:"-"`
	Errors []ErrorDetail `json:"errors"`
}

func (e *APIError) Error() string {
	if len(e.Errors) == 0 {
		return "identity service error"
	}
	first := e.Errors[0]
	if first.Message != "" {
		return first.Message
	}
	return first.Code
}

// ErrorMessage extracts a display string from an identity service error:
// long message first, then short message, then the fallback. Works on any
// error value so flows stay testable without a transport.
func ErrorMessage(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && len(apiErr.Errors) > 0 {
		if m := apiErr.Errors[0].LongMessage; m != "" {
			return m
		}
		if m := apiErr.Errors[0].Message; m != "" {
			return m
		}
	}
	return fallback
}

// ErrorCode returns the lower-cased code of the first error detail, or "".
func ErrorCode(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && len(apiErr.Errors) > 0 {
		return strings.ToLower(apiErr.Errors[0].Code)
	}
	return ""
}

// IndicatesSignedIn reports whether an extracted message means the user is
// already authenticated. Concurrent attempts for the same account (second
// device, retried request) surface this; callers treat it as success.
func IndicatesSignedIn(message string) bool {
	return strings.Contains(strings.ToLower(message), "already signed in")
}
