package authflow

// ErrorKind classifies flow failures so callers can decide whether a retry
// makes sense.
type ErrorKind int

const (
	// KindConfig means the identity service is missing an expected
	// capability. Actionable by the operator, not retryable by the user.
	KindConfig ErrorKind = iota
	// KindStep means the attempt landed on a known but unhandled step; the
	// raw status is included for diagnosis.
	KindStep
	// KindActivation means the attempt completed but no session could be
	// activated.
	KindActivation
	// KindVerification means a submitted code did not verify; the flow stays
	// on the code step and the user may resubmit.
	KindVerification
	// KindService wraps any other identity service failure.
	KindService
)

// FlowError is a user-visible flow failure. Message is display-ready text.
type FlowError struct {
	Kind    ErrorKind
	Message string
}

func (e *FlowError) Error() string {
	return e.Message
}
