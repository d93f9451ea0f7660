package services

import (
	"context"
	"errors"

	"studioapi/internal/auth"
	"studioapi/internal/domain"
	"studioapi/internal/repos"
)

var (
	ErrBadCreds     = errors.New("invalid credentials")
	ErrUserNotFound = repos.ErrUserNotFound
)

type UserFinder interface {
	ByEmail(ctx context.Context, email string) (*domain.User, error)
}

type AuthService struct {
	Users UserFinder
}

func NewAuthService(users UserFinder) *AuthService { return &AuthService{Users: users} }

// Login returns the user with the password field cleared. Unknown emails
// yield ErrUserNotFound, wrong passwords ErrBadCreds; database errors are
// passed through untouched.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, error) {
	u, err := s.Users.ByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if !auth.VerifyPassword(u.Password, password) {
		return nil, ErrBadCreds
	}
	u.Password = ""
	return u, nil
}
