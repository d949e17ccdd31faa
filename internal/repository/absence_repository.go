package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/scrimplan/scrimplan-api/internal/models"
)

// AbsenceRepository persists time-bounded absences.
type AbsenceRepository struct {
	db *sqlx.DB
}

// NewAbsenceRepository constructs the repository.
func NewAbsenceRepository(db *sqlx.DB) *AbsenceRepository {
	return &AbsenceRepository{db: db}
}

// ListByTeam returns all absences for a team ordered by start.
func (r *AbsenceRepository) ListByTeam(ctx context.Context, teamID string) ([]models.Absence, error) {
	const query = `SELECT id, team_id, user_id, start, "end", reason, created_at
		FROM absences WHERE team_id = $1 ORDER BY start, id`
	var rows []models.Absence
	if err := r.db.SelectContext(ctx, &rows, query, teamID); err != nil {
		return nil, fmt.Errorf("list team absences: %w", err)
	}
	return rows, nil
}

// ListByUser returns a single member's absences within a team.
func (r *AbsenceRepository) ListByUser(ctx context.Context, teamID, userID string) ([]models.Absence, error) {
	const query = `SELECT id, team_id, user_id, start, "end", reason, created_at
		FROM absences WHERE team_id = $1 AND user_id = $2 ORDER BY start, id`
	var rows []models.Absence
	if err := r.db.SelectContext(ctx, &rows, query, teamID, userID); err != nil {
		return nil, fmt.Errorf("list user absences: %w", err)
	}
	return rows, nil
}

// Create inserts a new absence row.
func (r *AbsenceRepository) Create(ctx context.Context, row *models.Absence) error {
	if row.ID == "" {
		row.ID = uuid.NewString()
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO absences (id, team_id, user_id, start, "end", reason, created_at)
		VALUES (:id, :team_id, :user_id, :start, :end, :reason, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
		return fmt.Errorf("create absence: %w", err)
	}
	return nil
}

// FindByID returns a single absence row.
func (r *AbsenceRepository) FindByID(ctx context.Context, id string) (*models.Absence, error) {
	const query = `SELECT id, team_id, user_id, start, "end", reason, created_at FROM absences WHERE id = $1`
	var row models.Absence
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		return nil, err
	}
	return &row, nil
}

// Delete removes an absence row.
func (r *AbsenceRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM absences WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete absence: %w", err)
	}
	return nil
}
