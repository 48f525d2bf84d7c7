package telegram

import (
	"errors"
	"fmt"
)

// Sentinel errors of the auth flow. Handlers map these to HTTP statuses;
// the gateway guarantees ErrPasswordRequired and ErrInvalidCode stay
// distinguishable so the client can prompt accordingly.
var (
	ErrNotConfigured    = errors.New("telegram api credentials not configured")
	ErrNotAuthorized    = errors.New("telegram session not authorized")
	ErrPasswordRequired = errors.New("two-factor password required")
	ErrInvalidCode      = errors.New("invalid login code")
)

// UpstreamError wraps a transport or protocol failure. The message keeps
// the upstream detail for diagnosis; credentials never pass through here.
type UpstreamError struct {
	Op  string
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream error: %s: %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// NotFoundError reports a missing chat, message or attachment
type NotFoundError struct {
	Resource string
	ID       int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Resource, e.ID)
}

// upstream wraps err as an UpstreamError unless it is already part of
// the taxonomy.
func upstream(op string, err error) error {
	if errors.Is(err, ErrPasswordRequired) || errors.Is(err, ErrInvalidCode) || errors.Is(err, ErrNotAuthorized) {
		return err
	}
	return &UpstreamError{Op: op, Err: err}
}
