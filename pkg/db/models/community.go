package models

import (
	"time"

	"github.com/google/uuid"
)

// Community is a purchasable learning group. A community with an owner
// profile belongs to a marketplace partner; whether payments route through
// that partner's connected account is decided at checkout time from the
// owner profile, not stored here.
type Community struct {
	ID             uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Slug           string     `gorm:"type:text;not null;uniqueIndex"`
	Name           string     `gorm:"column:name;not null"`
	Description    *string    `gorm:"column:description"`
	StripePriceID  *string    `gorm:"column:stripe_price_id"`
	OwnerProfileID *uuid.UUID `gorm:"column:owner_profile_id;type:uuid;index"`
	CreatedAt      time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
