package handler

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/scrimplan/scrimplan-api/internal/dto"
	"github.com/scrimplan/scrimplan-api/internal/models"
	"github.com/scrimplan/scrimplan-api/internal/service"
	appErrors "github.com/scrimplan/scrimplan-api/pkg/errors"
	"github.com/scrimplan/scrimplan-api/pkg/response"
)

type scheduleService interface {
	GetTeamSchedule(ctx context.Context, teamID, userID string) ([]models.TrainingSlot, error)
	Compute(ctx context.Context, teamID, userID string) (*dto.ComputeScheduleResponse, error)
	NextSlot(ctx context.Context, teamID, userID string) (*models.TrainingSlot, error)
}

type exportService interface {
	ExportSchedule(ctx context.Context, teamID, userID string, format service.ExportFormat) (*service.ExportFile, error)
}

// ScheduleHandler exposes the team schedule endpoints.
type ScheduleHandler struct {
	schedules scheduleService
	exports   exportService
}

// NewScheduleHandler constructs a schedule handler.
func NewScheduleHandler(schedules scheduleService, exports exportService) *ScheduleHandler {
	return &ScheduleHandler{schedules: schedules, exports: exports}
}

// Get godoc
// @Summary List the team's persisted training slots
// @Tags Schedule
// @Produce json
// @Param teamId path string true "Team ID"
// @Success 200 {object} response.Envelope
// @Router /teams/{teamId}/schedule [get]
func (h *ScheduleHandler) Get(c *gin.Context) {
	teamID, claims, ok := requireTeamAndClaims(c)
	if !ok {
		return
	}
	slots, err := h.schedules.GetTeamSchedule(c.Request.Context(), teamID, claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, slots)
}

// Compute godoc
// @Summary Recompute the team's training schedule from the current availability snapshot
// @Tags Schedule
// @Produce json
// @Param teamId path string true "Team ID"
// @Success 200 {object} response.Envelope
// @Router /teams/{teamId}/schedule/compute [post]
func (h *ScheduleHandler) Compute(c *gin.Context) {
	teamID, claims, ok := requireTeamAndClaims(c)
	if !ok {
		return
	}
	result, err := h.schedules.Compute(c.Request.Context(), teamID, claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// Next godoc
// @Summary Return the next upcoming training slot
// @Tags Schedule
// @Produce json
// @Param teamId path string true "Team ID"
// @Success 200 {object} response.Envelope
// @Router /teams/{teamId}/schedule/next [get]
func (h *ScheduleHandler) Next(c *gin.Context) {
	teamID, claims, ok := requireTeamAndClaims(c)
	if !ok {
		return
	}
	slot, err := h.schedules.NextSlot(c.Request.Context(), teamID, claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, slot)
}

// Export godoc
// @Summary Download the team's schedule as CSV or PDF
// @Tags Schedule
// @Produce text/csv
// @Produce application/pdf
// @Param teamId path string true "Team ID"
// @Param format query string false "Export format (csv or pdf)" default(csv)
// @Success 200 {file} file
// @Router /teams/{teamId}/schedule/export [get]
func (h *ScheduleHandler) Export(c *gin.Context) {
	teamID, claims, ok := requireTeamAndClaims(c)
	if !ok {
		return
	}
	format, err := service.ParseFormat(c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	file, err := h.exports.ExportSchedule(c.Request.Context(), teamID, claims.UserID, format)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	c.Data(http.StatusOK, file.ContentType, file.Payload)
}

func requireTeamAndClaims(c *gin.Context) (string, *models.JWTClaims, bool) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return "", nil, false
	}
	teamID := strings.TrimSpace(c.Param("teamId"))
	if teamID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "teamId is required"))
		return "", nil, false
	}
	return teamID, claims, true
}
