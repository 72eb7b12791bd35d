package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SAP-F-2025/course-service/internal/models"
	"github.com/SAP-F-2025/course-service/internal/repositories"
)

type userService struct {
	repo   repositories.Repository
	logger *slog.Logger
	now    func() time.Time
}

func NewUserService(repo repositories.Repository, logger *slog.Logger) UserService {
	if logger == nil {
		logger = slog.Default()
	}
	return &userService{repo: repo, logger: logger, now: time.Now}
}

// Sync upserts the caller into the local read model and stamps the login time.
func (s *userService) Sync(ctx context.Context, identity *Identity) (*models.User, error) {
	if identity == nil || strings.TrimSpace(identity.UserID) == "" {
		return nil, ErrUnauthorized
	}

	now := s.now()
	user := &models.User{
		ID:          identity.UserID,
		FullName:    strings.TrimSpace(identity.FullName),
		Email:       strings.TrimSpace(identity.Email),
		IsAdmin:     identity.IsAdmin,
		LastLoginAt: &now,
	}
	if user.FullName == "" {
		user.FullName = user.DisplayName()
	}

	if err := s.repo.User().Upsert(ctx, nil, user); err != nil {
		return nil, fmt.Errorf("failed to sync user: %w", err)
	}
	if err := s.repo.User().UpdateLastLogin(ctx, nil, user.ID, now); err != nil {
		s.logger.Warn("Failed to update last login", "user_id", user.ID, "error", err)
	}
	return user, nil
}

func (s *userService) GetByID(ctx context.Context, id string) (*models.User, error) {
	user, err := s.repo.User().GetByID(ctx, nil, id)
	if err != nil {
		return nil, notFound(err, ErrUserNotFound, "failed to get user")
	}
	return user, nil
}
