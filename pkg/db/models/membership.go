package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/learnloop/learnloop-backend/pkg/enums"
)

// Membership records paid access of a user to a community. One row per
// (user, community); the webhook reconciler is the only writer for
// purchased access, relying on the unique pair for upsert safety.
type Membership struct {
	ID                   uuid.UUID              `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID               uuid.UUID              `gorm:"column:user_id;type:uuid;not null;uniqueIndex:idx_memberships_user_community"`
	CommunityID          uuid.UUID              `gorm:"column:community_id;type:uuid;not null;uniqueIndex:idx_memberships_user_community"`
	Status               enums.MembershipStatus `gorm:"column:status;type:membership_status;not null"`
	StripeSubscriptionID string                 `gorm:"column:stripe_subscription_id"`
	CurrentPeriodEnd     time.Time              `gorm:"column:current_period_end"`
	CreatedAt            time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt            time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}
