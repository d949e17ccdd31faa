package models

import "time"

// Default slot duration bounds applied when a team has no stored preference.
const (
	DefaultDaysPerWeek    = 3
	DefaultHoursPerWeek   = 6
	DefaultMinSlotMinutes = 90
	DefaultMaxSlotMinutes = 180
)

// TeamPreference captures a team's weekly training cadence. One row per team,
// upserted by coaches or the owner.
type TeamPreference struct {
	ID             string    `db:"id" json:"id"`
	TeamID         string    `db:"team_id" json:"team_id"`
	DaysPerWeek    int       `db:"days_per_week" json:"days_per_week"`
	HoursPerWeek   int       `db:"hours_per_week" json:"hours_per_week"`
	MinSlotMinutes int       `db:"min_slot_minutes" json:"min_slot_minutes"`
	MaxSlotMinutes int       `db:"max_slot_minutes" json:"max_slot_minutes"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// DefaultTeamPreference returns the cadence used for teams that never stored
// an explicit preference.
func DefaultTeamPreference(teamID string) TeamPreference {
	return TeamPreference{
		TeamID:         teamID,
		DaysPerWeek:    DefaultDaysPerWeek,
		HoursPerWeek:   DefaultHoursPerWeek,
		MinSlotMinutes: DefaultMinSlotMinutes,
		MaxSlotMinutes: DefaultMaxSlotMinutes,
	}
}
