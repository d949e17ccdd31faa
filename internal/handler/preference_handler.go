package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/scrimplan/scrimplan-api/internal/dto"
	"github.com/scrimplan/scrimplan-api/internal/models"
	appErrors "github.com/scrimplan/scrimplan-api/pkg/errors"
	"github.com/scrimplan/scrimplan-api/pkg/response"
)

type preferenceService interface {
	Get(ctx context.Context, teamID, userID string) (*models.TeamPreference, error)
	Upsert(ctx context.Context, teamID, userID string, req dto.UpsertTeamPreferenceRequest) (*models.TeamPreference, error)
}

// PreferenceHandler exposes the team training cadence endpoints.
type PreferenceHandler struct {
	service preferenceService
}

// NewPreferenceHandler constructs a preference handler.
func NewPreferenceHandler(service preferenceService) *PreferenceHandler {
	return &PreferenceHandler{service: service}
}

// Get godoc
// @Summary Get the team's training cadence preference
// @Tags Preference
// @Produce json
// @Param teamId path string true "Team ID"
// @Success 200 {object} response.Envelope
// @Router /teams/{teamId}/preferences [get]
func (h *PreferenceHandler) Get(c *gin.Context) {
	teamID, claims, ok := requireTeamAndClaims(c)
	if !ok {
		return
	}
	pref, err := h.service.Get(c.Request.Context(), teamID, claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, pref)
}

// Upsert godoc
// @Summary Set the team's training cadence preference
// @Tags Preference
// @Accept json
// @Produce json
// @Param teamId path string true "Team ID"
// @Param payload body dto.UpsertTeamPreferenceRequest true "Preference payload"
// @Success 200 {object} response.Envelope
// @Router /teams/{teamId}/preferences [put]
func (h *PreferenceHandler) Upsert(c *gin.Context) {
	teamID, claims, ok := requireTeamAndClaims(c)
	if !ok {
		return
	}
	var req dto.UpsertTeamPreferenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid preference payload"))
		return
	}
	pref, err := h.service.Upsert(c.Request.Context(), teamID, claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, pref)
}
