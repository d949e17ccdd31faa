package models

import "time"

// Team is an esports team owned by a single user.
type Team struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	OwnerID   string    `db:"owner_id" json:"owner_id"`
	JoinCode  string    `db:"join_code" json:"join_code"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// TeamMember links a user to a team with an in-game role and coach flag.
type TeamMember struct {
	TeamID   string    `db:"team_id" json:"team_id"`
	UserID   string    `db:"user_id" json:"user_id"`
	Role     string    `db:"role" json:"role"`
	IsCoach  bool      `db:"is_coach" json:"is_coach"`
	JoinedAt time.Time `db:"joined_at" json:"joined_at"`
}
