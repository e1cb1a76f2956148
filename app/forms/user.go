package forms

import (
	"strings"

	"github.com/jinzhu/copier"

	"yatube/app/models"
)

// SignupForm registers a new account.
type SignupForm struct {
	FirstName string `schema:"first_name" validate:"max=150"`
	LastName  string `schema:"last_name" validate:"max=150"`
	Username  string `schema:"username" validate:"required,max=150,username"`
	Email     string `schema:"email" validate:"omitempty,email,max=254"`
	Password1 string `schema:"password1" validate:"required,min=8" copier:"-"`
	Password2 string `schema:"password2" validate:"required,eqfield=Password1" copier:"-"`
	Errors    Errors `schema:"-" copier:"-"`
}

func NewSignupForm() *SignupForm {
	return &SignupForm{Errors: Errors{}}
}

func (f *SignupForm) Validate() bool {
	if f.Errors == nil {
		f.Errors = Errors{}
	}
	f.Username = strings.TrimSpace(f.Username)
	f.Email = strings.TrimSpace(f.Email)
	f.FirstName = strings.TrimSpace(f.FirstName)
	f.LastName = strings.TrimSpace(f.LastName)
	check(f, f.Errors)
	return !f.Errors.Any()
}

// User builds the account described by the form, without a password hash.
func (f *SignupForm) User() (*models.User, error) {
	user := &models.User{}
	if err := copier.Copy(user, f); err != nil {
		return nil, err
	}
	return user, nil
}

// LoginForm authenticates an existing account.
type LoginForm struct {
	Username string `schema:"username" validate:"required"`
	Password string `schema:"password" validate:"required"`
	Next     string `schema:"next"`
	Errors   Errors `schema:"-"`
}

func NewLoginForm(next string) *LoginForm {
	return &LoginForm{Next: next, Errors: Errors{}}
}

func (f *LoginForm) Validate() bool {
	if f.Errors == nil {
		f.Errors = Errors{}
	}
	f.Username = strings.TrimSpace(f.Username)
	check(f, f.Errors)
	return !f.Errors.Any()
}
