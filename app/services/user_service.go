package services

import (
	"time"

	"github.com/pkg/errors"

	"yatube/app/auth"
	"yatube/app/forms"
	"yatube/app/log"
	"yatube/app/models"
	"yatube/app/repositories"
)

// UserService handles accounts and logins
type UserService struct {
	users repositories.UserRepository
	now   func() time.Time
}

// NewUserService creates a new UserService
func NewUserService(users repositories.UserRepository) *UserService {
	return &UserService{
		users: users,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Register creates the account described by form. A taken username is
// reported on the form with ErrInvalid.
func (s *UserService) Register(form *forms.SignupForm) (*models.User, error) {
	if !form.Validate() {
		return nil, ErrInvalid
	}
	user, err := form.User()
	if err != nil {
		return nil, err
	}
	err = s.create(user, form.Password1)
	if repositories.IsDuplicate(err) {
		form.Errors.Add("username", "A user with that username already exists.")
		return nil, ErrInvalid
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// CreateUser stores a user with the given credentials.
func (s *UserService) CreateUser(username, password string) (*models.User, error) {
	user := &models.User{Username: username}
	if err := s.create(user, password); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) create(user *models.User, password string) error {
	if password == "" {
		return errors.New("password cannot be empty")
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	user.Stamp(s.now())
	if err := user.Validate(); err != nil {
		return errors.Wrap(err, "invalid user")
	}
	if err := s.users.Create(user); err != nil {
		return err
	}
	log.Log.WithField("username", user.Username).Info("user created")
	return nil
}

// Authenticate checks a username and password pair.
func (s *UserService) Authenticate(username, password string) (*models.User, error) {
	user, err := s.users.GetByUsername(username)
	if repositories.IsNotFound(err) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// GetUser retrieves a user by ID
func (s *UserService) GetUser(id int) (*models.User, error) {
	return s.users.GetByID(id)
}

// GetByUsername retrieves a user by username
func (s *UserService) GetByUsername(username string) (*models.User, error) {
	return s.users.GetByUsername(username)
}

// DeleteUser removes the account called username together with its posts,
// comments and subscriptions.
func (s *UserService) DeleteUser(username string) (*models.User, error) {
	user, err := s.users.GetByUsername(username)
	if err != nil {
		return nil, err
	}
	if err := s.users.Delete(user.ID); err != nil {
		return nil, err
	}
	log.Log.WithField("username", user.Username).Info("user deleted")
	return user, nil
}
