package types

import "fmt"

// AuthError is returned when the bearer credential is missing or rejected
// by the core banking API (401/403). It is terminal for the current
// onboarding attempt: the session must re-authenticate before starting over.
type AuthError struct {
	Code    int
	Message string
}

func (e *AuthError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("authorization rejected (%d)", e.Code)
	}
	return fmt.Sprintf("authorization rejected (%d): %s", e.Code, e.Message)
}

// ValidationError is a non-auth 4xx rejection from the core banking API.
// It is surfaced verbatim and halts the workflow at its current phase,
// without advancing or rolling back.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// TransientError covers network failures, timeouts and 5xx responses.
// It is surfaced with a retry prompt; the workflow never retries on its own.
type TransientError struct {
	Message string
	Err     error
}

func (e *TransientError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// ProvisioningError is a 2xx response that is missing fields the next
// step depends on (e.g. no account number, no card number). It is a hard
// failure of that step even though the remote call "succeeded".
type ProvisioningError struct {
	Step    string
	Message string
}

func (e *ProvisioningError) Error() string {
	return fmt.Sprintf("%s provisioning failed: %s", e.Step, e.Message)
}
