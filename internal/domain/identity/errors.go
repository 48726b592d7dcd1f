package identity

import "errors"

var (
	// ErrDuplicateIdentity is returned when the email is already registered.
	ErrDuplicateIdentity = errors.New("email already registered")
	// ErrInvalidCredentials covers both unknown emails and wrong secrets.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrPendingApproval is returned for a doctor whose secret matched but who
	// has not been approved yet.
	ErrPendingApproval = errors.New("account is pending admin approval")
	// ErrUnknownAccount is returned when a referenced account does not exist
	// or does not hold the role the reference requires.
	ErrUnknownAccount = errors.New("unknown account")

	ErrAccountNotFound = errors.New("account not found")
	ErrForbidden       = errors.New("forbidden")
	ErrInvalidInput    = errors.New("invalid input")
)
