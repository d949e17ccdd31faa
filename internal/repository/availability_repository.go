package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/scrimplan/scrimplan-api/internal/models"
)

// AvailabilityRepository persists recurring weekly availability windows.
type AvailabilityRepository struct {
	db *sqlx.DB
}

// NewAvailabilityRepository constructs the repository.
func NewAvailabilityRepository(db *sqlx.DB) *AvailabilityRepository {
	return &AvailabilityRepository{db: db}
}

// ListByTeam returns all availability rows for a team ordered by weekday and
// start time.
func (r *AvailabilityRepository) ListByTeam(ctx context.Context, teamID string) ([]models.Availability, error) {
	const query = `SELECT id, team_id, user_id, weekday, start_time, end_time, priority, created_at
		FROM availabilities WHERE team_id = $1
		ORDER BY weekday, start_time, user_id, id`
	var rows []models.Availability
	if err := r.db.SelectContext(ctx, &rows, query, teamID); err != nil {
		return nil, fmt.Errorf("list team availabilities: %w", err)
	}
	return rows, nil
}

// ListByUser returns a single member's availability rows within a team.
func (r *AvailabilityRepository) ListByUser(ctx context.Context, teamID, userID string) ([]models.Availability, error) {
	const query = `SELECT id, team_id, user_id, weekday, start_time, end_time, priority, created_at
		FROM availabilities WHERE team_id = $1 AND user_id = $2
		ORDER BY weekday, start_time, id`
	var rows []models.Availability
	if err := r.db.SelectContext(ctx, &rows, query, teamID, userID); err != nil {
		return nil, fmt.Errorf("list user availabilities: %w", err)
	}
	return rows, nil
}

// Create inserts a new availability row. Rows are never updated in place.
func (r *AvailabilityRepository) Create(ctx context.Context, row *models.Availability) error {
	if row.ID == "" {
		row.ID = uuid.NewString()
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO availabilities (id, team_id, user_id, weekday, start_time, end_time, priority, created_at)
		VALUES (:id, :team_id, :user_id, :weekday, :start_time, :end_time, :priority, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
		return fmt.Errorf("create availability: %w", err)
	}
	return nil
}

// FindByID returns a single availability row.
func (r *AvailabilityRepository) FindByID(ctx context.Context, id string) (*models.Availability, error) {
	const query = `SELECT id, team_id, user_id, weekday, start_time, end_time, priority, created_at
		FROM availabilities WHERE id = $1`
	var row models.Availability
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		return nil, err
	}
	return &row, nil
}

// Delete removes an availability row.
func (r *AvailabilityRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM availabilities WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete availability: %w", err)
	}
	return nil
}
