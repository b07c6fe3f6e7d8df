package flows

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidInput wraps request validation failures. The coordinator
// surfaces the detail message to the user verbatim.
var ErrInvalidInput = errors.New("invalid input")

var requestValidator = validator.New(validator.WithRequiredStructEnabled())

// SignupRequest is the validated input for the signup operation.
type SignupRequest struct {
	Email         string `validate:"required,email"`
	Password      string `validate:"required,min=8,max=72"`
	AddingAccount bool
}

// LoginRequest is the validated input for the password-login operation.
type LoginRequest struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

// EmailRequest is the validated input for operations keyed on a bare
// email address.
type EmailRequest struct {
	Email string `validate:"required,email"`
}

// PasswordChangeRequest is the validated input for completing a
// forgot-password or set-password step.
type PasswordChangeRequest struct {
	Password string `validate:"required,min=8,max=72"`
}

// ValidateStruct runs the shared validator and converts the first failure
// into an ErrInvalidInput with a readable field message.
func ValidateStruct(req any) error {
	err := requestValidator.Struct(req)
	if err == nil {
		return nil
	}

	var invalid validator.ValidationErrors
	if errors.As(err, &invalid) && len(invalid) > 0 {
		first := invalid[0]
		return fmt.Errorf("%w: %s failed %s validation", ErrInvalidInput, strings.ToLower(first.Field()), first.Tag())
	}
	return fmt.Errorf("%w: %v", ErrInvalidInput, err)
}
