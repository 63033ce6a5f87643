package service

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"cloudlodge/internal/api"
	"cloudlodge/internal/entities"
	"cloudlodge/internal/session"
)

// AuthAPI is the slice of the backend the sign-in flows touch.
type AuthAPI interface {
	Login(ctx context.Context, email, password string) (string, error)
	Register(ctx context.Context, req api.RegisterRequest) (*entities.User, error)
}

type AuthService struct {
	api     AuthAPI
	session *session.Session
	log     *logrus.Logger
}

func NewAuthService(authAPI AuthAPI, sess *session.Session, log *logrus.Logger) *AuthService {
	return &AuthService{api: authAPI, session: sess, log: log}
}

// Login exchanges credentials for a token and stores it in the session.
func (s *AuthService) Login(ctx context.Context, email, password string) error {
	token, err := s.api.Login(ctx, email, password)
	if err != nil {
		return err
	}
	if err := s.session.SetToken(token); err != nil {
		return fmt.Errorf("storing session token: %w", err)
	}
	s.log.WithField("email", email).Info("signed in")
	return nil
}

// Logout drops the session token.
func (s *AuthService) Logout() error {
	if err := s.session.Clear(); err != nil {
		return err
	}
	s.log.Info("signed out")
	return nil
}

func (s *AuthService) Register(ctx context.Context, email, password, name string) (*entities.User, error) {
	user, err := s.api.Register(ctx, api.RegisterRequest{Email: email, Password: password, Name: name})
	if err != nil {
		return nil, err
	}
	s.log.WithField("email", email).Info("account created")
	return user, nil
}
