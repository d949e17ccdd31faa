package models

import "time"

// PlanStatus is the terminal outcome of a schedule computation. Infeasibility
// is a reportable result, not an error.
type PlanStatus string

const (
	PlanFeasible          PlanStatus = "FEASIBLE"
	PlanPartiallyFeasible PlanStatus = "PARTIALLY_FEASIBLE"
	PlanInfeasible        PlanStatus = "INFEASIBLE"
)

// TrainingSlot is a concrete computed training session. Date carries both the
// calendar day and the start time of the slot.
type TrainingSlot struct {
	ID               string    `db:"id" json:"id"`
	TeamID           string    `db:"team_id" json:"team_id"`
	Date             time.Time `db:"date" json:"date"`
	DurationMinutes  int       `db:"duration_minutes" json:"duration_minutes"`
	AttendeeCount    int       `db:"attendee_count" json:"attendee_count"`
	FeasibilityScore float64   `db:"feasibility_score" json:"feasibility_score"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
}
