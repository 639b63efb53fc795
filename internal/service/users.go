package service

import (
	"context"
	"errors"
	"fmt"

	apperrors "beautybook/internal/errors"
	"beautybook/internal/logger"
	"beautybook/internal/models"
	"beautybook/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

// UserService registers and authenticates accounts.
type UserService struct {
	users          UserStore
	reconciliation *ReconciliationService
}

func NewUserService(users UserStore, reconciliation *ReconciliationService) *UserService {
	return &UserService{users: users, reconciliation: reconciliation}
}

// Register hashes the password and stores a non-operator account.
func (s *UserService) Register(ctx context.Context, req *models.RegisterUserRequest) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:        req.Email,
		PasswordHash: string(hash),
		FullName:     req.FullName,
		Phone:        req.Phone,
		IsActive:     true,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return nil, apperrors.Conflict("email is already registered")
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	logger.WithContext(ctx).Info("User registered", "user_id", user.UserID)
	return user, nil
}

// Authenticate checks credentials. The first successful sign-in of an
// account also links guest records made with its email; a failed link is
// logged and retried on the next sign-in.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil || !user.IsActive {
		return nil, apperrors.ErrUnauthorized
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, apperrors.ErrUnauthorized
	}

	if user.LastLoggedIn == nil {
		if _, err := s.reconciliation.LinkGuestRecords(ctx, user.UserID, user.Email); err != nil {
			logger.WithContext(ctx).Error("Failed to link guest records on first sign-in",
				"user_id", user.UserID, "error", err)
			return user, nil
		}
	}

	if err := s.users.TouchLastLogin(ctx, user.UserID); err != nil {
		logger.WithContext(ctx).Warn("Failed to record sign-in", "user_id", user.UserID, "error", err)
	}

	return user, nil
}
