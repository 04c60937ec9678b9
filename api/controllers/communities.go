package controllers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/learnloop/learnloop-backend/api/responses"
	"github.com/learnloop/learnloop-backend/pkg/db/models"
	pkgerrors "github.com/learnloop/learnloop-backend/pkg/errors"
	"github.com/learnloop/learnloop-backend/pkg/logger"
)

// CommunityFinder is the read surface the community controller needs.
type CommunityFinder interface {
	FindBySlug(ctx context.Context, slug string) (*models.Community, error)
}

// GetCommunity returns the public view of a community by slug.
func GetCommunity(repo CommunityFinder, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "community repo unavailable"))
			return
		}

		slug := chi.URLParam(r, "slug")
		if slug == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "slug is required"))
			return
		}

		community, err := repo.FindBySlug(r.Context(), slug)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "community not found"))
				return
			}
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load community"))
			return
		}

		responses.WriteSuccess(w, newCommunityResponse(community))
	}
}

type communityResponse struct {
	ID          uuid.UUID `json:"id"`
	Slug        string    `json:"slug"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Purchasable bool      `json:"purchasable"`
	CreatedAt   time.Time `json:"created_at"`
}

func newCommunityResponse(community *models.Community) communityResponse {
	resp := communityResponse{
		ID:          community.ID,
		Slug:        community.Slug,
		Name:        community.Name,
		Purchasable: community.StripePriceID != nil && *community.StripePriceID != "",
		CreatedAt:   community.CreatedAt,
	}
	if community.Description != nil {
		resp.Description = *community.Description
	}
	return resp
}
