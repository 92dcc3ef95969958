package common

import "errors"

// UserMessage maps an error returned by the client components to the text
// shown to the user. Unknown errors collapse to a generic message so that
// backend details never leak into the view layer.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrEmailUnverified):
		return "Please verify your email before logging in."
	case errors.Is(err, ErrInvalidCredentials):
		return "Invalid login credentials"
	case errors.Is(err, ErrRateLimited):
		return "Too many attempts, please try again later"
	case errors.Is(err, ErrNoSession), errors.Is(err, ErrTokenExpired):
		return "Please log in to continue"
	case errors.Is(err, ErrInvalidToken):
		return "The link is invalid or has expired"
	case errors.Is(err, ErrAlreadyExists):
		return "User already registered"
	case errors.Is(err, ErrUpload):
		return "Error uploading avatar!"
	case errors.Is(err, ErrRecord):
		return "Error updating profile"
	case errors.Is(err, ErrBusy):
		return "Please wait for the current operation to finish"
	case errors.Is(err, ErrValidation):
		var ve *ValidationError
		if errors.As(err, &ve) {
			return ve.Msg
		}
		return "Invalid input"
	case errors.Is(err, ErrUnavailable):
		return "Service unavailable, please try again"
	default:
		return "An unexpected error occurred"
	}
}

// ValidationError carries a user-facing explanation of rejected input.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return "validation error: " + e.Msg }

// Unwrap lets errors.Is match ErrValidation.
func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError returns an ErrValidation carrying msg.
func NewValidationError(msg string) error {
	return &ValidationError{Msg: msg}
}
