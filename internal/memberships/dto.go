package memberships

import (
	"time"

	"github.com/google/uuid"

	"github.com/learnloop/learnloop-backend/pkg/enums"
)

// MembershipWithCommunity is the read model for "my memberships" listings.
type MembershipWithCommunity struct {
	ID                   uuid.UUID              `json:"id"`
	CommunityID          uuid.UUID              `json:"community_id"`
	CommunitySlug        string                 `json:"community_slug"`
	CommunityName        string                 `json:"community_name"`
	Status               enums.MembershipStatus `json:"status"`
	StripeSubscriptionID string                 `json:"stripe_subscription_id,omitempty"`
	CurrentPeriodEnd     time.Time              `json:"current_period_end"`
	CreatedAt            time.Time              `json:"created_at"`
}

// MembershipStatusDTO answers "am I a member of this community?".
type MembershipStatusDTO struct {
	CommunityID      uuid.UUID               `json:"community_id"`
	CommunitySlug    string                  `json:"community_slug"`
	IsMember         bool                    `json:"is_member"`
	Status           *enums.MembershipStatus `json:"status,omitempty"`
	CurrentPeriodEnd *time.Time              `json:"current_period_end,omitempty"`
}

type membershipWithCommunityRow struct {
	ID                   uuid.UUID
	CommunityID          uuid.UUID
	CommunitySlug        string
	CommunityName        string
	Status               enums.MembershipStatus
	StripeSubscriptionID string
	CurrentPeriodEnd     time.Time
	CreatedAt            time.Time
}

func membershipRowsToDTO(rows []membershipWithCommunityRow) []MembershipWithCommunity {
	out := make([]MembershipWithCommunity, 0, len(rows))
	for _, row := range rows {
		out = append(out, MembershipWithCommunity{
			ID:                   row.ID,
			CommunityID:          row.CommunityID,
			CommunitySlug:        row.CommunitySlug,
			CommunityName:        row.CommunityName,
			Status:               row.Status,
			StripeSubscriptionID: row.StripeSubscriptionID,
			CurrentPeriodEnd:     row.CurrentPeriodEnd,
			CreatedAt:            row.CreatedAt,
		})
	}
	return out
}
