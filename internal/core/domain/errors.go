package domain

import "errors"

// Error kinds. Every failure a service returns wraps exactly one of these;
// anything else is treated as an unexpected store failure.
var (
	ErrValidation      = errors.New("validation failed")
	ErrForbidden       = errors.New("access forbidden")
	ErrInvalidState    = errors.New("invalid state")
	ErrExternalService = errors.New("external service failure")

	ErrIssueNotFound = errors.New("issue not found")
	ErrUserNotFound  = errors.New("user not found")

	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserExists         = errors.New("user already exists")
)

// MsgAdminOnly is reported whenever a non-admin reaches an admin-only operation.
const MsgAdminOnly = "Not authorized as an admin"

// Error pairs an error kind with a client-facing message.
type Error struct {
	kind error
	msg  string
}

// NewError returns an error that matches kind under errors.Is and reports msg.
func NewError(kind error, msg string) error {
	return &Error{kind: kind, msg: msg}
}

func (e *Error) Error() string { return e.msg }

func (e *Error) Unwrap() error { return e.kind }
