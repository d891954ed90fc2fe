// Package apperror defines the error taxonomy shared by the access,
// property, rent and payment layers. Every class is matchable with
// errors.As so callers can render a precise refusal instead of a
// generic failure.
package apperror

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// AuthorizationError means the resolved scope was none, or a write target
// fell outside the resolved scope. Never retried.
type AuthorizationError struct {
	Resource string
	Action   string
	Scope    string
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("authorization denied: %s:%s (scope=%s)", e.Resource, e.Action, e.Scope)
}

// ValidationError means a required field is missing or malformed.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %q: %s", e.Field, e.Reason)
}

// ConflictError means a uniqueness precondition failed, e.g. the space
// already has an active assignment. Never retried.
type ConflictError struct {
	Resource string
	ID       string
	Reason   string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflict on %s %s: %s", e.Resource, e.ID, e.Reason)
}

// ReferentialIntegrityError means a referenced record is absent, or a
// deletion is blocked by dependents.
type ReferentialIntegrityError struct {
	Resource string
	ID       string
	Reason   string
}

func (e *ReferentialIntegrityError) Error() string {
	return fmt.Sprintf("referential integrity violation on %s %s: %s", e.Resource, e.ID, e.Reason)
}

// TransientStoreError wraps a store/network failure. The only class a
// caller may retry; no automatic retry happens here.
type TransientStoreError struct {
	Op  string
	Err error
}

func (e *TransientStoreError) Error() string {
	return fmt.Sprintf("store failure during %s: %v", e.Op, e.Err)
}

func (e *TransientStoreError) Unwrap() error {
	return e.Err
}

// HTTPStatus maps an error class to the status code controllers respond
// with. Unknown errors map to 500.
func HTTPStatus(err error) int {
	switch err.(type) {
	case *AuthorizationError:
		return fiber.StatusForbidden
	case *ValidationError:
		return fiber.StatusBadRequest
	case *ConflictError:
		return fiber.StatusConflict
	case *ReferentialIntegrityError:
		return fiber.StatusUnprocessableEntity
	case *TransientStoreError:
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}
