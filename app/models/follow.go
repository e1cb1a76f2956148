package models

import "errors"

// ErrSelfFollow is returned when a user tries to subscribe to themself.
var ErrSelfFollow = errors.New("users cannot follow themselves")

// Validate checks if the follow edge meets all validation requirements
func (f *Follow) Validate() error {
	if f.UserID != 0 && f.UserID == f.AuthorID {
		return ErrSelfFollow
	}
	return validate.Struct(f)
}
