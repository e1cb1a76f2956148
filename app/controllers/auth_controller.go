package controllers

import (
	"net/http"

	"github.com/pkg/errors"

	"yatube/app/auth"
	"yatube/app/forms"
	"yatube/app/services"
	"yatube/app/views"
)

// AuthController handles login, signup and logout
type AuthController struct {
	Base
	users    *services.UserService
	sessions *auth.Sessions
}

// NewAuthController creates a new AuthController
func NewAuthController(base Base, users *services.UserService, sessions *auth.Sessions) *AuthController {
	return &AuthController{Base: base, users: users, sessions: sessions}
}

// Login shows and handles the login form
func (ac *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	form := forms.NewLoginForm(r.URL.Query().Get("next"))
	if r.Method != http.MethodPost {
		ac.render(w, r, http.StatusOK, "users/login", views.Context{"Form": form})
		return
	}

	if err := forms.Decode(r, form); err != nil {
		form.Errors.Add(forms.NonField, "The submitted form could not be read.")
	}
	if !form.Errors.Any() && form.Validate() {
		user, err := ac.users.Authenticate(form.Username, form.Password)
		switch {
		case errors.Is(err, services.ErrInvalidCredentials):
			form.Errors.Add(forms.NonField, "Please enter a correct username and password. Note that both fields may be case-sensitive.")
		case err != nil:
			ac.fail(w, r, err)
			return
		default:
			if err := ac.sessions.Login(w, user); err != nil {
				ac.fail(w, r, err)
				return
			}
			redirect(w, r, auth.SafeNext(form.Next))
			return
		}
	}
	form.Password = ""
	ac.render(w, r, http.StatusOK, "users/login", views.Context{"Form": form})
}

// Signup shows and handles the registration form. A new account is
// logged in straight away.
func (ac *AuthController) Signup(w http.ResponseWriter, r *http.Request) {
	form := forms.NewSignupForm()
	if r.Method != http.MethodPost {
		ac.render(w, r, http.StatusOK, "users/signup", views.Context{"Form": form})
		return
	}

	if err := forms.Decode(r, form); err != nil {
		form.Errors.Add(forms.NonField, "The submitted form could not be read.")
		ac.render(w, r, http.StatusOK, "users/signup", views.Context{"Form": form})
		return
	}
	user, err := ac.users.Register(form)
	if errors.Is(err, services.ErrInvalid) {
		ac.render(w, r, http.StatusOK, "users/signup", views.Context{"Form": form})
		return
	}
	if err != nil {
		ac.fail(w, r, err)
		return
	}
	if err := ac.sessions.Login(w, user); err != nil {
		ac.fail(w, r, err)
		return
	}
	redirect(w, r, "/")
}

// Logout clears the session
func (ac *AuthController) Logout(w http.ResponseWriter, r *http.Request) {
	ac.sessions.Logout(w)
	redirect(w, r, "/")
}
