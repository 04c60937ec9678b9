package memberships

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/learnloop/learnloop-backend/pkg/db/models"
)

// Repository exposes membership persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds the repo to the provided GORM connection.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// Upsert writes the membership keyed on (user_id, community_id). Renewals and
// redelivered webhook events refresh the existing row instead of duplicating it.
func (r *Repository) Upsert(ctx context.Context, membership *models.Membership) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "community_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"status",
				"stripe_subscription_id",
				"current_period_end",
				"updated_at",
			}),
		}).
		Create(membership).Error
}

// UpdateStatusBySubscriptionID syncs the status of an existing membership.
// Returns the number of rows touched so callers can treat a missing row as a no-op.
func (r *Repository) UpdateStatusBySubscriptionID(ctx context.Context, stripeSubscriptionID string, status string) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Membership{}).
		Where("stripe_subscription_id = ?", stripeSubscriptionID).
		UpdateColumn("status", status)
	return result.RowsAffected, result.Error
}

// GetByUserAndCommunity retrieves a membership by its natural key.
func (r *Repository) GetByUserAndCommunity(ctx context.Context, userID, communityID uuid.UUID) (*models.Membership, error) {
	var membership models.Membership
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND community_id = ?", userID, communityID).
		First(&membership).Error
	if err != nil {
		return nil, err
	}
	return &membership, nil
}

// ListByUser returns the user's memberships along with community metadata.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]MembershipWithCommunity, error) {
	var rows []membershipWithCommunityRow

	err := r.db.WithContext(ctx).
		Model(&models.Membership{}).
		Select("memberships.*, communities.slug AS community_slug, communities.name AS community_name").
		Joins("JOIN communities ON communities.id = memberships.community_id").
		Where("memberships.user_id = ?", userID).
		Order("communities.name").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	return membershipRowsToDTO(rows), nil
}
