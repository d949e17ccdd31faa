package dto

import (
	"time"

	"github.com/scrimplan/scrimplan-api/internal/models"
)

// PlanInput is the immutable snapshot the planner computes over. All data is
// already fetched; the engine performs no I/O.
type PlanInput struct {
	TeamID           string                `validate:"required"`
	TotalTeamMembers int                   `validate:"required,min=1"`
	Preferences      models.TeamPreference `validate:"required"`
	Availabilities   []models.Availability `validate:"-"`
	Absences         []models.Absence      `validate:"-"`
	HorizonStart     time.Time             `validate:"required"`
	HorizonDays      int                   `validate:"required,min=1,max=31"`
}

// PlanResult is the planner output: the selected slots, the terminal status
// and a deterministic human-readable summary.
type PlanResult struct {
	Slots       []models.TrainingSlot `json:"slots"`
	Status      models.PlanStatus     `json:"status"`
	Explanation string                `json:"explanation"`
}

// ComputeScheduleResponse wraps a plan result for the API.
type ComputeScheduleResponse struct {
	Slots       []models.TrainingSlot `json:"slots"`
	Status      models.PlanStatus     `json:"status"`
	Explanation string                `json:"explanation"`
	Persisted   bool                  `json:"persisted"`
}
