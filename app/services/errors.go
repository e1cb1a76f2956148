package services

import "github.com/pkg/errors"

var (
	// ErrInvalid means the submitted form has errors; they are on the form.
	ErrInvalid = errors.New("invalid form")
	// ErrForbidden means the requester may not change the record.
	ErrForbidden = errors.New("not allowed")
	// ErrInvalidCredentials is a failed login.
	ErrInvalidCredentials = errors.New("invalid credentials")
)
