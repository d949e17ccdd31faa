package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/scrimplan/scrimplan-api/internal/dto"
	"github.com/scrimplan/scrimplan-api/internal/models"
	appErrors "github.com/scrimplan/scrimplan-api/pkg/errors"
	"github.com/scrimplan/scrimplan-api/pkg/response"
)

type availabilityService interface {
	ListTeamAvailability(ctx context.Context, teamID, userID string) ([]models.Availability, error)
	ListUserAvailability(ctx context.Context, teamID, userID string) ([]models.Availability, error)
	CreateAvailability(ctx context.Context, teamID, userID string, req dto.CreateAvailabilityRequest) (*models.Availability, error)
	DeleteAvailability(ctx context.Context, availabilityID, userID string) error
	ListTeamAbsences(ctx context.Context, teamID, userID string) ([]models.Absence, error)
	ListUserAbsences(ctx context.Context, teamID, userID string) ([]models.Absence, error)
	CreateAbsence(ctx context.Context, teamID, userID string, req dto.CreateAbsenceRequest) (*models.Absence, error)
	DeleteAbsence(ctx context.Context, absenceID, userID string) error
}

// AvailabilityHandler exposes availability and absence endpoints.
type AvailabilityHandler struct {
	service availabilityService
}

// NewAvailabilityHandler constructs an availability handler.
func NewAvailabilityHandler(service availabilityService) *AvailabilityHandler {
	return &AvailabilityHandler{service: service}
}

// ListTeam godoc
// @Summary List every member's availability windows
// @Tags Availability
// @Produce json
// @Param teamId path string true "Team ID"
// @Success 200 {object} response.Envelope
// @Router /teams/{teamId}/availability [get]
func (h *AvailabilityHandler) ListTeam(c *gin.Context) {
	teamID, claims, ok := requireTeamAndClaims(c)
	if !ok {
		return
	}
	rows, err := h.service.ListTeamAvailability(c.Request.Context(), teamID, claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows)
}

// ListMine godoc
// @Summary List the caller's own availability windows
// @Tags Availability
// @Produce json
// @Param teamId path string true "Team ID"
// @Success 200 {object} response.Envelope
// @Router /teams/{teamId}/availability/me [get]
func (h *AvailabilityHandler) ListMine(c *gin.Context) {
	teamID, claims, ok := requireTeamAndClaims(c)
	if !ok {
		return
	}
	rows, err := h.service.ListUserAvailability(c.Request.Context(), teamID, claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows)
}

// Create godoc
// @Summary Add a recurring weekly availability window
// @Tags Availability
// @Accept json
// @Produce json
// @Param teamId path string true "Team ID"
// @Param payload body dto.CreateAvailabilityRequest true "Availability payload"
// @Success 201 {object} response.Envelope
// @Router /teams/{teamId}/availability [post]
func (h *AvailabilityHandler) Create(c *gin.Context) {
	teamID, claims, ok := requireTeamAndClaims(c)
	if !ok {
		return
	}
	var req dto.CreateAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid availability payload"))
		return
	}
	row, err := h.service.CreateAvailability(c.Request.Context(), teamID, claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, row)
}

// Delete godoc
// @Summary Delete an availability window owned by the caller
// @Tags Availability
// @Param id path string true "Availability ID"
// @Success 204
// @Router /availability/{id} [delete]
func (h *AvailabilityHandler) Delete(c *gin.Context) {
	claims, id, ok := requireClaimsAndID(c)
	if !ok {
		return
	}
	if err := h.service.DeleteAvailability(c.Request.Context(), id, claims.UserID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListTeamAbsences godoc
// @Summary List every member's absences
// @Tags Absence
// @Produce json
// @Param teamId path string true "Team ID"
// @Success 200 {object} response.Envelope
// @Router /teams/{teamId}/absences [get]
func (h *AvailabilityHandler) ListTeamAbsences(c *gin.Context) {
	teamID, claims, ok := requireTeamAndClaims(c)
	if !ok {
		return
	}
	rows, err := h.service.ListTeamAbsences(c.Request.Context(), teamID, claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows)
}

// ListMyAbsences godoc
// @Summary List the caller's own absences
// @Tags Absence
// @Produce json
// @Param teamId path string true "Team ID"
// @Success 200 {object} response.Envelope
// @Router /teams/{teamId}/absences/me [get]
func (h *AvailabilityHandler) ListMyAbsences(c *gin.Context) {
	teamID, claims, ok := requireTeamAndClaims(c)
	if !ok {
		return
	}
	rows, err := h.service.ListUserAbsences(c.Request.Context(), teamID, claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows)
}

// CreateAbsence godoc
// @Summary Block the caller for a concrete date range
// @Tags Absence
// @Accept json
// @Produce json
// @Param teamId path string true "Team ID"
// @Param payload body dto.CreateAbsenceRequest true "Absence payload"
// @Success 201 {object} response.Envelope
// @Router /teams/{teamId}/absences [post]
func (h *AvailabilityHandler) CreateAbsence(c *gin.Context) {
	teamID, claims, ok := requireTeamAndClaims(c)
	if !ok {
		return
	}
	var req dto.CreateAbsenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid absence payload"))
		return
	}
	row, err := h.service.CreateAbsence(c.Request.Context(), teamID, claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, row)
}

// DeleteAbsence godoc
// @Summary Delete an absence owned by the caller
// @Tags Absence
// @Param id path string true "Absence ID"
// @Success 204
// @Router /absences/{id} [delete]
func (h *AvailabilityHandler) DeleteAbsence(c *gin.Context) {
	claims, id, ok := requireClaimsAndID(c)
	if !ok {
		return
	}
	if err := h.service.DeleteAbsence(c.Request.Context(), id, claims.UserID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

func requireClaimsAndID(c *gin.Context) (*models.JWTClaims, string, bool) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return nil, "", false
	}
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "id is required"))
		return nil, "", false
	}
	return claims, id, true
}
