package models

import (
	"errors"
	"strings"
	"time"
)

// Validate checks if the user meets all validation requirements
func (u *User) Validate() error {
	if err := validate.Struct(u); err != nil {
		return err
	}
	if u.PasswordHash == "" {
		return errors.New("password hash cannot be empty")
	}
	return nil
}

// Stamp sets the join date once.
func (u *User) Stamp(now time.Time) {
	if u.DateJoined.IsZero() {
		u.DateJoined = now
	}
}

// FullName joins first and last name, falling back to the username.
func (u *User) FullName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Username
	}
	return name
}

func (u *User) String() string {
	return u.Username
}
