package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/scrimplan/scrimplan-api/internal/models"
)

// TrainingSlotRepository persists computed training slots.
type TrainingSlotRepository struct {
	db *sqlx.DB
}

// NewTrainingSlotRepository constructs the repository.
func NewTrainingSlotRepository(db *sqlx.DB) *TrainingSlotRepository {
	return &TrainingSlotRepository{db: db}
}

// ListByTeam returns all stored slots for a team ordered by date.
func (r *TrainingSlotRepository) ListByTeam(ctx context.Context, teamID string) ([]models.TrainingSlot, error) {
	const query = `SELECT id, team_id, date, duration_minutes, attendee_count, feasibility_score, created_at
		FROM training_slots WHERE team_id = $1 ORDER BY date, id`
	var rows []models.TrainingSlot
	if err := r.db.SelectContext(ctx, &rows, query, teamID); err != nil {
		return nil, fmt.Errorf("list training slots: %w", err)
	}
	return rows, nil
}

// NextSlot returns the earliest stored slot at or after the given time.
func (r *TrainingSlotRepository) NextSlot(ctx context.Context, teamID string, after time.Time) (*models.TrainingSlot, error) {
	const query = `SELECT id, team_id, date, duration_minutes, attendee_count, feasibility_score, created_at
		FROM training_slots WHERE team_id = $1 AND date >= $2 ORDER BY date, id LIMIT 1`
	var slot models.TrainingSlot
	if err := r.db.GetContext(ctx, &slot, query, teamID, after); err != nil {
		return nil, err
	}
	return &slot, nil
}

// ReplaceFuture swaps the team's upcoming slots for a freshly computed set
// inside the caller's transaction. Past slots are kept for history.
func (r *TrainingSlotRepository) ReplaceFuture(ctx context.Context, tx *sqlx.Tx, teamID string, from time.Time, slots []models.TrainingSlot) error {
	const deleteQuery = `DELETE FROM training_slots WHERE team_id = $1 AND date >= $2`
	if _, err := tx.ExecContext(ctx, deleteQuery, teamID, from); err != nil {
		return fmt.Errorf("clear future training slots: %w", err)
	}

	const insertQuery = `INSERT INTO training_slots (id, team_id, date, duration_minutes, attendee_count, feasibility_score, created_at)
		VALUES (:id, :team_id, :date, :duration_minutes, :attendee_count, :feasibility_score, :created_at)`
	now := time.Now().UTC()
	for i := range slots {
		if slots[i].ID == "" {
			slots[i].ID = uuid.NewString()
		}
		if slots[i].CreatedAt.IsZero() {
			slots[i].CreatedAt = now
		}
		if _, err := tx.NamedExecContext(ctx, insertQuery, slots[i]); err != nil {
			return fmt.Errorf("insert training slot: %w", err)
		}
	}
	return nil
}
