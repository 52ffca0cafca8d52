// Package auth implements the authentication gateway: account registration,
// login, and signed session tokens.
package auth

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/parleychat/parley/internal/models"
	"github.com/parleychat/parley/internal/store"
)

// ErrInvalidCredentials is returned by Login for an unknown username or a
// wrong password. The two cases are deliberately indistinguishable.
var ErrInvalidCredentials = errors.New("auth: invalid credentials")

var validate = validator.New()

// Password has no minimum beyond being present; the cap is bcrypt's 72-byte
// input limit.
type credentials struct {
	Username string `validate:"required,min=3,max=32"`
	Password string `validate:"required,max=72"`
}

// Session is the result of a successful register or login.
type Session struct {
	Token    string `json:"token"`
	UserID   string `json:"userId"`
	Username string `json:"username"`
}

// Service is the authentication gateway. It owns password credentials; no
// other component reads or writes them.
type Service struct {
	users  store.UserStore
	signer *Signer
}

func NewService(users store.UserStore, signer *Signer) *Service {
	return &Service{users: users, signer: signer}
}

// Register creates an account and returns a session for it. Fails with
// store.ErrUsernameTaken when the username exists (case-sensitive match);
// the store enforces uniqueness at insert time, so concurrent registrations
// for the same username cannot both succeed.
func (s *Service) Register(username, password string) (*Session, error) {
	if err := validate.Struct(credentials{Username: username, Password: password}); err != nil {
		return nil, fmt.Errorf("invalid registration: %w", err)
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		ID:       uuid.New().String(),
		Username: username,
		Password: hash,
	}
	if err := s.users.CreateUser(user); err != nil {
		return nil, err
	}

	return s.session(user)
}

// Login verifies the credentials and returns a session.
func (s *Service) Login(username, password string) (*Session, error) {
	user, err := s.users.UserByUsername(username)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if !CheckPassword(password, user.Password) {
		return nil, ErrInvalidCredentials
	}
	return s.session(user)
}

// VerifyToken checks a bearer token and returns its claims.
func (s *Service) VerifyToken(token string) (*Claims, error) {
	return s.signer.Verify(token)
}

func (s *Service) session(user *models.User) (*Session, error) {
	token, err := s.signer.Sign(user.ID, user.Username)
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, UserID: user.ID, Username: user.Username}, nil
}
