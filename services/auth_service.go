//go:generate go run go.uber.org/mock/mockgen -source=auth_service.go -destination=../mocks/mock_auth_service.go -package=mocks
package services

import (
	"chat-broadcaster/auth"
	"chat-broadcaster/domain"
	"chat-broadcaster/errors"
	"chat-broadcaster/repositories"
	"fmt"
	"log/slog"
)

// Session is what a client learns about itself after signup or login.
type Session struct {
	UserID   domain.UserID `json:"user_id"`
	UserName string        `json:"user_name"`
	Token    string        `json:"-"`
}

type IAuthService interface {
	SignUp(userName string) (Session, error)
	Login(identity auth.Identity) (Session, error)
}

type AuthService struct {
	log            *slog.Logger
	userRepository repositories.IUserRepository
	issuer         *auth.Issuer
}

func NewAuthService(log *slog.Logger, repo repositories.IUserRepository, issuer *auth.Issuer) *AuthService {
	return &AuthService{log: log, userRepository: repo, issuer: issuer}
}

// SignUp allocates a fresh user id for a display name and opens a session.
// There is no password: the signed session token is the only credential.
func (s *AuthService) SignUp(userName string) (Session, error) {
	if err := auth.ValidateSignUp(auth.SignUpRequest{UserName: userName}); err != nil {
		return Session{}, err
	}

	userID, err := s.userRepository.CreateUser(userName)
	if err != nil {
		return Session{}, fmt.Errorf("create user: %w", err)
	}

	token, err := s.issuer.GenerateToken(userID, userName)
	if err != nil {
		return Session{}, fmt.Errorf("%w: %v", errors.ErrTokenGeneration, err)
	}

	s.log.Info("User signed up", "user_id", userID, "name", userName)
	return Session{UserID: userID, UserName: userName, Token: token}, nil
}

// Login confirms that the session still points to a known user.
func (s *AuthService) Login(identity auth.Identity) (Session, error) {
	name, err := s.userRepository.GetUserName(identity.UserID)
	if err != nil {
		s.log.Debug("Session for unknown user", "user_id", identity.UserID, "error", err)
		return Session{}, errors.ErrUnauthorized
	}
	return Session{UserID: identity.UserID, UserName: name}, nil
}
