package payment

import (
	"fmt"

	"campuspay/models"
)

// NotFoundError signals that a referenced record does not exist.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// ForbiddenError signals a student/invoice ownership mismatch.
type ForbiddenError struct {
	Message string
}

func (e ForbiddenError) Error() string {
	return e.Message
}

// InvalidStateError signals an action not valid for the current status,
// e.g. cancelling a COMPLETED session.
type InvalidStateError struct {
	Message string
}

func (e InvalidStateError) Error() string {
	return e.Message
}

// ExpiredError signals a session past its expiry.
type ExpiredError struct {
	SessionID string
}

func (e ExpiredError) Error() string {
	return fmt.Sprintf("payment session %s has expired", e.SessionID)
}

// UnauthorizedError signals a webhook payload whose signature did not verify.
type UnauthorizedError struct {
	Message string
}

func (e UnauthorizedError) Error() string {
	return e.Message
}

// InvalidArgumentError signals malformed input (phone, amount, method).
type InvalidArgumentError struct {
	Message string
}

func (e InvalidArgumentError) Error() string {
	return e.Message
}

// ProviderError signals a failed or timed-out provider call; the charge
// outcome is unknown, never assumed.
type ProviderError struct {
	Provider models.Provider
	Err      error
}

func (e ProviderError) Error() string {
	return fmt.Sprintf("provider %s call failed: %v", e.Provider, e.Err)
}

func (e ProviderError) Unwrap() error {
	return e.Err
}
