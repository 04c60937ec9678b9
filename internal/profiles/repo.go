package profiles

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/learnloop/learnloop-backend/pkg/db/models"
)

// Repository exposes profile persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds the repo to the provided GORM connection.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindByID loads a profile by its UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	var profile models.Profile
	if err := r.db.WithContext(ctx).First(&profile, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

// FindByUserID retrieves the profile belonging to the given user.
func (r *Repository) FindByUserID(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	var profile models.Profile
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

// CreateForUser inserts an empty profile row for the user.
func (r *Repository) CreateForUser(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	profile := &models.Profile{UserID: userID}
	if err := r.db.WithContext(ctx).Create(profile).Error; err != nil {
		return nil, err
	}
	return profile, nil
}

// SetStripeCustomerID overwrites the profile's Stripe customer mapping. Pass nil to clear it.
func (r *Repository) SetStripeCustomerID(ctx context.Context, profileID uuid.UUID, customerID *string) error {
	return r.db.WithContext(ctx).
		Model(&models.Profile{}).
		Where("id = ?", profileID).
		UpdateColumn("stripe_customer_id", customerID).Error
}
