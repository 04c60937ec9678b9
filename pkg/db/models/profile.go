package models

import (
	"time"

	"github.com/google/uuid"
)

// Profile carries billing-facing identity for a user: the lazily created
// Stripe customer mapping and, for marketplace partners, the Connect
// account that receives community revenue.
type Profile struct {
	ID                       uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID                   uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex"`
	StripeCustomerID         *string   `gorm:"column:stripe_customer_id"`
	StripeConnectedAccountID *string   `gorm:"column:stripe_connected_account_id"`
	CreatedAt                time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt                time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
