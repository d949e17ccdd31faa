package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/scrimplan/scrimplan-api/internal/models"
)

// TeamPreferenceRepository persists team training cadence preferences.
type TeamPreferenceRepository struct {
	db *sqlx.DB
}

// NewTeamPreferenceRepository constructs the repository.
func NewTeamPreferenceRepository(db *sqlx.DB) *TeamPreferenceRepository {
	return &TeamPreferenceRepository{db: db}
}

// GetByTeam returns stored preferences for a team.
func (r *TeamPreferenceRepository) GetByTeam(ctx context.Context, teamID string) (*models.TeamPreference, error) {
	const query = `SELECT id, team_id, days_per_week, hours_per_week, min_slot_minutes, max_slot_minutes, created_at, updated_at FROM team_preferences WHERE team_id = $1`
	var pref models.TeamPreference
	if err := r.db.GetContext(ctx, &pref, query, teamID); err != nil {
		return nil, err
	}
	return &pref, nil
}

// Upsert creates or updates the team preference row.
func (r *TeamPreferenceRepository) Upsert(ctx context.Context, pref *models.TeamPreference) error {
	if pref.ID == "" {
		pref.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if pref.CreatedAt.IsZero() {
		pref.CreatedAt = now
	}
	pref.UpdatedAt = now

	const query = `INSERT INTO team_preferences (id, team_id, days_per_week, hours_per_week, min_slot_minutes, max_slot_minutes, created_at, updated_at)
		VALUES (:id, :team_id, :days_per_week, :hours_per_week, :min_slot_minutes, :max_slot_minutes, :created_at, :updated_at)
		ON CONFLICT (team_id) DO UPDATE
		SET days_per_week = EXCLUDED.days_per_week,
		    hours_per_week = EXCLUDED.hours_per_week,
		    min_slot_minutes = EXCLUDED.min_slot_minutes,
		    max_slot_minutes = EXCLUDED.max_slot_minutes,
		    updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, pref); err != nil {
		return fmt.Errorf("upsert team preference: %w", err)
	}
	return nil
}
