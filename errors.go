package authclient

import (
	goerrors "github.com/goliatone/go-errors"
)

const (
	textCodeNotAuthenticated  = "NOT_AUTHENTICATED"
	textCodeNetwork           = "NETWORK_UNAVAILABLE"
	textCodeRemoteRejected    = "REMOTE_REJECTED"
	textCodeDuplicateEmail    = "DUPLICATE_EMAIL"
	textCodeDuplicatePhone    = "DUPLICATE_PHONE"
	textCodeInvalidOTP        = "INVALID_OTP_FORMAT"
	textCodeEmailNotVerified  = "EMAIL_NOT_VERIFIED"
	textCodeInvalidTransition = "INVALID_VERIFICATION_TRANSITION"
)

// ErrNotAuthenticated is returned when the server definitively reports that no
// valid session exists. Distinct from a transport failure, which never clears
// local state.
var ErrNotAuthenticated = goerrors.New("not authenticated", goerrors.CategoryAuth).
	WithTextCode(textCodeNotAuthenticated)

// ErrEmailNotVerified is returned when registration is attempted before the
// verification gate reached VERIFIED for the email currently in the form.
var ErrEmailNotVerified = goerrors.New("email not verified", goerrors.CategoryValidation).
	WithTextCode(textCodeEmailNotVerified)

// ErrInvalidOTP is returned locally for codes that are not exactly six decimal
// digits. No network call is made for these.
var ErrInvalidOTP = goerrors.New("OTP must be a 6-digit number", goerrors.CategoryValidation).
	WithTextCode(textCodeInvalidOTP)

// ErrDuplicateEmail is returned when the email is already registered.
var ErrDuplicateEmail = goerrors.New("this email is already registered", goerrors.CategoryConflict).
	WithTextCode(textCodeDuplicateEmail)

// ErrDuplicatePhone is returned when the phone number is already registered.
var ErrDuplicatePhone = goerrors.New("phone number is already registered", goerrors.CategoryConflict).
	WithTextCode(textCodeDuplicatePhone)

// ErrInvalidTransition is returned when a verification-gate operation is not
// valid from the current state (e.g. submitting a code before one was sent).
var ErrInvalidTransition = goerrors.New("invalid verification state transition", goerrors.CategoryValidation).
	WithTextCode(textCodeInvalidTransition)

func networkError(err error, operation string) error {
	return goerrors.Wrap(
		err,
		goerrors.CategoryOperation,
		"could not reach server: "+operation,
	).WithTextCode(textCodeNetwork)
}

func remoteRejection(message string) error {
	return goerrors.New(message, goerrors.CategoryBadInput).
		WithTextCode(textCodeRemoteRejected)
}

func hasTextCode(err error, code string) bool {
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		return false
	}
	return richErr.TextCode == code
}

// IsNetworkError reports whether err represents a transport-level failure:
// the server gave no definitive answer, so cached state should be preserved.
func IsNetworkError(err error) bool {
	return hasTextCode(err, textCodeNetwork)
}

// IsAuthenticationError reports whether err is a definitive unauthenticated
// answer from the server.
func IsAuthenticationError(err error) bool {
	return hasTextCode(err, textCodeNotAuthenticated)
}

// FailureMessage extracts the human-readable reason carried by err, suitable
// for surfacing to the user verbatim.
func FailureMessage(err error) string {
	if err == nil {
		return ""
	}
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) && richErr.Message != "" {
		return richErr.Message
	}
	return err.Error()
}
