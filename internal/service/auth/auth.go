package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/nkiryanov/crownplay/internal/apperrors"
	"github.com/nkiryanov/crownplay/internal/models"
)

const (
	defaultAccessHeaderName = "Authorization"
	defaultAccessAuthScheme = "Bearer"
)

type tokenManager interface {
	Issue(user models.User) (models.IssuedToken, error)
	Parse(access string) (models.TokenClaims, error)
}

type userService interface {
	CreateUser(ctx context.Context, email string, password string, name string) (models.User, error)
	Authenticate(ctx context.Context, email string, password string) (models.User, error)
	GetUser(ctx context.Context, userID uuid.UUID) (models.User, error)
}

type Config struct {
	// Header to read access token from and it's scheme
	// Defaults are used if empty
	AccessHeaderName string
	AccessAuthScheme string
}

type AuthService struct {
	accessHeaderName string
	accessAuthScheme string

	tokens tokenManager
	users  userService
}

func NewService(cfg Config, tokens tokenManager, users userService) (*AuthService, error) {
	if cfg.AccessHeaderName == "" {
		cfg.AccessHeaderName = defaultAccessHeaderName
	}
	if cfg.AccessAuthScheme == "" {
		cfg.AccessAuthScheme = defaultAccessAuthScheme
	}

	return &AuthService{
		accessHeaderName: cfg.AccessHeaderName,
		accessAuthScheme: cfg.AccessAuthScheme,
		tokens:           tokens,
		users:            users,
	}, nil
}

// Create player and issue access token
// Returns apperrors.ErrUserAlreadyExists if email is taken
func (s *AuthService) Signup(ctx context.Context, email string, password string, name string) (models.User, models.IssuedToken, error) {
	user, err := s.users.CreateUser(ctx, email, password, name)
	if err != nil {
		return user, models.IssuedToken{}, err
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return user, token, fmt.Errorf("token could not be issued. Err: %w", err)
	}

	return user, token, nil
}

// Check credentials and issue access token
// Returns apperrors.ErrInvalidCredentials or apperrors.ErrUserLocked
func (s *AuthService) Login(ctx context.Context, email string, password string) (models.User, models.IssuedToken, error) {
	user, err := s.users.Authenticate(ctx, email, password)
	if err != nil {
		return user, models.IssuedToken{}, err
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return user, token, fmt.Errorf("token could not be issued. Err: %w", err)
	}

	return user, token, nil
}

// Return user the request authenticated as
// Role and status are read from storage, so changes apply to already issued tokens
func (s *AuthService) Auth(ctx context.Context, r *http.Request) (models.User, error) {
	access, err := s.accessFromRequest(r)
	if err != nil {
		return models.User{}, err
	}

	claims, err := s.tokens.Parse(access)
	if err != nil {
		return models.User{}, fmt.Errorf("%w: %w", apperrors.ErrUnauthorized, err)
	}

	user, err := s.users.GetUser(ctx, claims.UserID)
	switch {
	case errors.Is(err, apperrors.ErrUserNotFound):
		return user, fmt.Errorf("%w: %w", apperrors.ErrUnauthorized, err)
	case err != nil:
		return user, err
	case user.Status == models.UserStatusLocked:
		return user, apperrors.ErrUserLocked
	}

	return user, nil
}

func (s *AuthService) accessFromRequest(r *http.Request) (string, error) {
	header := r.Header.Get(s.accessHeaderName)
	scheme, token, ok := strings.Cut(header, " ")

	if !ok || !strings.EqualFold(scheme, s.accessAuthScheme) || strings.TrimSpace(token) == "" {
		return "", fmt.Errorf("%w: no access token in request", apperrors.ErrUnauthorized)
	}

	return strings.TrimSpace(token), nil
}
