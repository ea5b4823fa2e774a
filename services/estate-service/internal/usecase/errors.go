package usecase

import (
	"errors"

	"github.com/vidyaa00/REMS/shared/validation"
)

var (
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrPropertyNotFound   = errors.New("property not found")
	ErrForbidden          = errors.New("not authorized")
	ErrInvalidResetToken  = errors.New("invalid or expired password reset token")
)

// ValidationError reports unusable input. Message is safe to show to clients.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// validateStruct runs v and converts its failure to a *ValidationError.
func validateStruct(v *validation.Validator, s any) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}

	var fe *validation.FieldError
	if errors.As(err, &fe) {
		return invalid(fe.Field, fe.Message)
	}

	return err
}
