package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/upascal/fast-api-backend-template/internal/apperr"
	"github.com/upascal/fast-api-backend-template/internal/models"
)

// UserSource is the slice of the user store the auth service needs.
type UserSource interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

// Service verifies credentials and issues access tokens.
type Service struct {
	users  UserSource
	tokens *TokenIssuer
	ttl    time.Duration
}

func NewService(users UserSource, tokens *TokenIssuer, ttl time.Duration) *Service {
	return &Service{users: users, tokens: tokens, ttl: ttl}
}

// Authenticate checks email and password against the store. The
// failure is uniformly apperr.ErrAuthFailed whether the email is
// unknown, the password is wrong, or the account is inactive, so
// callers cannot enumerate accounts.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperr.ErrUserNotFound) {
			return nil, apperr.ErrAuthFailed
		}
		return nil, fmt.Errorf("auth: %w", err)
	}

	if !CheckPassword(password, user.HashedPassword) {
		return nil, apperr.ErrAuthFailed
	}

	if !user.IsActive {
		return nil, apperr.ErrAuthFailed
	}

	return user, nil
}

// Login authenticates and returns a bearer token for the user.
func (s *Service) Login(ctx context.Context, email, password string) (*models.Token, error) {
	user, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}

	token, err := s.tokens.Issue(user.ID, s.ttl)
	if err != nil {
		return nil, fmt.Errorf("auth: signing token: %w", err)
	}

	return &models.Token{AccessToken: token, TokenType: "bearer"}, nil
}
