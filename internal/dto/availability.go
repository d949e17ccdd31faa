package dto

import "time"

// CreateAvailabilityRequest adds a recurring weekly training window.
type CreateAvailabilityRequest struct {
	Weekday   string `json:"weekday" validate:"required"`
	StartTime int    `json:"startTime" validate:"min=0,max=1439"`
	EndTime   int    `json:"endTime" validate:"required,min=1,max=1440"`
	Priority  int    `json:"priority" validate:"omitempty,min=1,max=10"`
}

// CreateAbsenceRequest blocks a user for a concrete date range.
type CreateAbsenceRequest struct {
	Start  time.Time `json:"start" validate:"required"`
	End    time.Time `json:"end" validate:"required"`
	Reason *string   `json:"reason" validate:"omitempty,max=500"`
}

// UpsertTeamPreferenceRequest sets the team's weekly training cadence.
type UpsertTeamPreferenceRequest struct {
	DaysPerWeek    int `json:"daysPerWeek" validate:"required,min=1,max=7"`
	HoursPerWeek   int `json:"hoursPerWeek" validate:"required,min=1"`
	MinSlotMinutes int `json:"minSlotMinutes" validate:"required,min=30"`
	MaxSlotMinutes int `json:"maxSlotMinutes" validate:"required,gtefield=MinSlotMinutes"`
}
