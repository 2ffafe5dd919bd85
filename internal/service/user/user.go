package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/nkiryanov/crownplay/internal/apperrors"
	"github.com/nkiryanov/crownplay/internal/models"
	"github.com/nkiryanov/crownplay/internal/repository"
)

type UserService struct {
	hasher  PasswordHasher
	storage repository.Storage
}

func NewService(hasher PasswordHasher, storage repository.Storage) *UserService {
	if hasher == nil {
		hasher = DefaultHasher
	}

	return &UserService{
		hasher:  hasher,
		storage: storage,
	}
}

// Create player with empty wallet in one transaction
func (s *UserService) CreateUser(ctx context.Context, email string, password string, name string) (models.User, error) {
	return s.createUser(ctx, repository.CreateUserParams{
		Email: strings.TrimSpace(email),
		Name:  strings.TrimSpace(name),
		Role:  models.RolePlayer,
	}, password)
}

func (s *UserService) createUser(ctx context.Context, params repository.CreateUserParams, password string) (models.User, error) {
	var user models.User

	if password == "" {
		return user, errors.New("password must not be empty")
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return user, fmt.Errorf("can't use this as password, Err: %w", err)
	}
	params.HashedPassword = hash

	err = s.storage.InTx(ctx, func(storage repository.Storage) error {
		user, err = storage.User().CreateUser(ctx, params)
		if err != nil {
			return err
		}

		_, err = storage.Wallet().CreateWallet(ctx, user.ID)
		return err
	})
	if err != nil {
		return user, fmt.Errorf("can't create user. Err: %w", err)
	}

	return user, nil
}

// Check credentials and return the user they belong to
// Unknown email and wrong password are indistinguishable: apperrors.ErrInvalidCredentials
func (s *UserService) Authenticate(ctx context.Context, email string, password string) (models.User, error) {
	user, err := s.storage.User().GetUserByEmail(ctx, strings.TrimSpace(email))
	switch {
	case errors.Is(err, apperrors.ErrUserNotFound):
		// Spend the same time as for existing user
		_, _ = s.hasher.Hash(password)
		return user, apperrors.ErrInvalidCredentials
	case err != nil:
		return user, err
	}

	if err := s.hasher.Compare(user.HashedPassword, password); err != nil {
		return user, apperrors.ErrInvalidCredentials
	}

	if user.Status == models.UserStatusLocked {
		return user, apperrors.ErrUserLocked
	}

	return user, nil
}

func (s *UserService) GetUser(ctx context.Context, userID uuid.UUID) (models.User, error) {
	return s.storage.User().GetUserByID(ctx, userID)
}

// User with the wallet
func (s *UserService) GetProfile(ctx context.Context, userID uuid.UUID) (models.UserWithWallet, error) {
	var profile models.UserWithWallet

	user, err := s.storage.User().GetUserByID(ctx, userID)
	if err != nil {
		return profile, err
	}

	wallet, err := s.storage.Wallet().GetWallet(ctx, userID, false)
	if err != nil {
		return profile, err
	}

	return models.UserWithWallet{User: user, Wallet: wallet}, nil
}

// Make sure admin account with the email exists. Existing user is promoted and keeps it's password
func (s *UserService) EnsureAdmin(ctx context.Context, email string, password string) (models.User, error) {
	user, err := s.storage.User().GetUserByEmail(ctx, email)
	switch {
	case err == nil && user.IsAdmin():
		return user, nil
	case err == nil:
		return s.storage.User().SetRole(ctx, user.ID, models.RoleAdmin)
	case errors.Is(err, apperrors.ErrUserNotFound):
		return s.createUser(ctx, repository.CreateUserParams{Email: email, Name: "Admin", Role: models.RoleAdmin}, password)
	default:
		return user, err
	}
}
