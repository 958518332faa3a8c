package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/dongapp/dong/internal/auth"
	"github.com/dongapp/dong/internal/models"
	"github.com/dongapp/dong/internal/storage"
)

// UserService handles account registration, login, and user records.
type UserService struct {
	authenticator auth.Authenticator
	jwtManager    *auth.JWTManager
	store         storage.Store
	logger        *slog.Logger
}

// NewUserService creates a new user service.
func NewUserService(authenticator auth.Authenticator, jwtManager *auth.JWTManager, store storage.Store, logger *slog.Logger) *UserService {
	return &UserService{
		authenticator: authenticator,
		jwtManager:    jwtManager,
		store:         store,
		logger:        logger,
	}
}

// Signup creates a new user account and returns it with a session token.
func (s *UserService) Signup(ctx context.Context, email, name, password string) (*models.User, string, error) {
	s.logger.Info("Signup request", "email", email)

	user, err := s.authenticator.Register(ctx, email, name, password)
	if err != nil {
		s.logger.Error("Registration failed", "email", email, "error", err)
		return nil, "", err
	}

	token, err := s.jwtManager.Generate(user)
	if err != nil {
		s.logger.Error("Failed to generate token", "user_id", user.ID, "error", err)
		return nil, "", err
	}

	s.logger.Info("User registered successfully", "user_id", user.ID, "email", user.Email)
	return user, token, nil
}

// Login authenticates a user and returns it with a session token.
func (s *UserService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	s.logger.Info("Login request", "email", email)

	user, err := s.authenticator.Authenticate(ctx, email, password)
	if err != nil {
		s.logger.Warn("Login failed", "email", email, "error", err)
		return nil, "", auth.ErrInvalidCredentials
	}

	token, err := s.jwtManager.Generate(user)
	if err != nil {
		s.logger.Error("Failed to generate token", "user_id", user.ID, "error", err)
		return nil, "", err
	}

	s.logger.Info("User logged in successfully", "user_id", user.ID, "email", user.Email)
	return user, token, nil
}

// GetUser retrieves a user by ID.
func (s *UserService) GetUser(ctx context.Context, id string) (*models.User, error) {
	user, err := s.store.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

// ListUsers retrieves all registered users.
func (s *UserService) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.store.ListUsers(ctx)
}

// UpdateUser changes a user's display name. Users may only update their
// own record.
func (s *UserService) UpdateUser(ctx context.Context, requesterID, id, name string) (*models.User, error) {
	if requesterID != id {
		return nil, ErrForbidden
	}

	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	user.Name = name
	if err := s.store.UpdateUser(ctx, user); err != nil {
		s.logger.Error("UpdateUser failed", "user_id", id, "error", err)
		return nil, err
	}

	s.logger.Info("User updated", "user_id", id)
	return user, nil
}

// DeleteUser removes a user account. Users may only delete their own
// record.
func (s *UserService) DeleteUser(ctx context.Context, requesterID, id string) error {
	if requesterID != id {
		return ErrForbidden
	}

	if err := s.store.DeleteUser(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrNotFound
		}
		s.logger.Error("DeleteUser failed", "user_id", id, "error", err)
		return err
	}

	s.logger.Info("User deleted", "user_id", id)
	return nil
}
