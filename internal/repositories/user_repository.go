package repositories

import (
	"context"
	"time"

	"github.com/SAP-F-2025/course-service/internal/models"
	"gorm.io/gorm"
)

// UserRepository interface for the local user read model (the identity provider owns user data)
type UserRepository interface {
	GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.User, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []string) ([]*models.User, error)
	GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*models.User, error)
	// Upsert inserts the user or refreshes name, email and admin flag
	Upsert(ctx context.Context, tx *gorm.DB, user *models.User) error
	UpdateLastLogin(ctx context.Context, tx *gorm.DB, id string, loginTime time.Time) error
}
