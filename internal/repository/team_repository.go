package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/scrimplan/scrimplan-api/internal/models"
)

// TeamRepository reads team and membership rows. Membership data is owned by
// the team-management surface; this service only consumes it for
// authorization and member counting.
type TeamRepository struct {
	db *sqlx.DB
}

// NewTeamRepository constructs the repository.
func NewTeamRepository(db *sqlx.DB) *TeamRepository {
	return &TeamRepository{db: db}
}

// FindByID returns the team row.
func (r *TeamRepository) FindByID(ctx context.Context, teamID string) (*models.Team, error) {
	const query = `SELECT id, name, owner_id, join_code, created_at, updated_at FROM teams WHERE id = $1`
	var team models.Team
	if err := r.db.GetContext(ctx, &team, query, teamID); err != nil {
		return nil, err
	}
	return &team, nil
}

// GetMember returns the membership row for a user in a team.
func (r *TeamRepository) GetMember(ctx context.Context, teamID, userID string) (*models.TeamMember, error) {
	const query = `SELECT team_id, user_id, role, is_coach, joined_at FROM team_members WHERE team_id = $1 AND user_id = $2`
	var member models.TeamMember
	if err := r.db.GetContext(ctx, &member, query, teamID, userID); err != nil {
		return nil, err
	}
	return &member, nil
}

// CountMembers returns the number of users on the team roster.
func (r *TeamRepository) CountMembers(ctx context.Context, teamID string) (int, error) {
	const query = `SELECT COUNT(*) FROM team_members WHERE team_id = $1`
	var count int
	if err := r.db.GetContext(ctx, &count, query, teamID); err != nil {
		return 0, err
	}
	return count, nil
}
