package apperror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{&AuthorizationError{Resource: "rent", Action: "write"}, fiber.StatusForbidden},
		{&ValidationError{Field: "tenantName"}, fiber.StatusBadRequest},
		{&ConflictError{Resource: "rent", ID: "G-01"}, fiber.StatusConflict},
		{&ReferentialIntegrityError{Resource: "properties", ID: "x"}, fiber.StatusUnprocessableEntity},
		{&TransientStoreError{Op: "rent.assign"}, fiber.StatusServiceUnavailable},
		{errors.New("something else"), fiber.StatusInternalServerError},
	}

	for _, c := range cases {
		if got := HTTPStatus(c.err); got != c.want {
			t.Errorf("HTTPStatus(%T) = %d, want %d", c.err, got, c.want)
		}
	}
}

func TestTransientStoreErrorUnwrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := fmt.Errorf("assigning: %w", &TransientStoreError{Op: "rent.assign", Err: cause})

	var transient *TransientStoreError
	if !errors.As(err, &transient) {
		t.Fatal("TransientStoreError not matchable through wrapping")
	}
	if !errors.Is(err, cause) {
		t.Error("cause not reachable through Unwrap")
	}
}
