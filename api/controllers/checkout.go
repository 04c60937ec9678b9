package controllers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/learnloop/learnloop-backend/api/middleware"
	"github.com/learnloop/learnloop-backend/api/responses"
	"github.com/learnloop/learnloop-backend/api/validators"
	checkoutsvc "github.com/learnloop/learnloop-backend/internal/checkout"
	pkgerrors "github.com/learnloop/learnloop-backend/pkg/errors"
	"github.com/learnloop/learnloop-backend/pkg/logger"
)

// CheckoutService is the slice of the checkout service the controller needs.
type CheckoutService interface {
	CreateSession(ctx context.Context, userID, communityID uuid.UUID) (*checkoutsvc.Session, error)
}

// Checkout starts a hosted subscription checkout for a community.
func Checkout(svc CheckoutService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		userID, err := authenticatedUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload checkoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		session, err := svc.CreateSession(r.Context(), userID, payload.CommunityID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, checkoutResponse{
			SessionID:   session.ID,
			CheckoutURL: session.URL,
		})
	}
}

type checkoutRequest struct {
	CommunityID uuid.UUID `json:"community_id" validate:"required,uuid4"`
}

type checkoutResponse struct {
	SessionID   string `json:"session_id"`
	CheckoutURL string `json:"checkout_url"`
}

func authenticatedUserID(r *http.Request) (uuid.UUID, error) {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	userID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user id")
	}
	return userID, nil
}
