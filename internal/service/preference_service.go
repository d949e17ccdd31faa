package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/scrimplan/scrimplan-api/internal/dto"
	"github.com/scrimplan/scrimplan-api/internal/models"
	appErrors "github.com/scrimplan/scrimplan-api/pkg/errors"
)

type preferenceRepository interface {
	GetByTeam(ctx context.Context, teamID string) (*models.TeamPreference, error)
	Upsert(ctx context.Context, pref *models.TeamPreference) error
}

// PreferenceService manages the team training cadence preference.
type PreferenceService struct {
	teams     teamReader
	prefs     preferenceRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewPreferenceService wires preference dependencies.
func NewPreferenceService(teams teamReader, prefs preferenceRepository, validate *validator.Validate, logger *zap.Logger) *PreferenceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PreferenceService{teams: teams, prefs: prefs, validator: validate, logger: logger}
}

// Get returns the stored preference, or the default cadence when the team
// never set one.
func (s *PreferenceService) Get(ctx context.Context, teamID, userID string) (*models.TeamPreference, error) {
	if _, err := s.teams.GetMember(ctx, teamID, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "not a member of this team")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load team membership")
	}
	pref, err := s.prefs.GetByTeam(ctx, teamID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			fallback := models.DefaultTeamPreference(teamID)
			return &fallback, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load team preference")
	}
	return pref, nil
}

// Upsert stores the cadence; restricted to coaches and the team owner.
func (s *PreferenceService) Upsert(ctx context.Context, teamID, userID string, req dto.UpsertTeamPreferenceRequest) (*models.TeamPreference, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid preference payload")
	}

	member, err := s.teams.GetMember(ctx, teamID, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "not a member of this team")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load team membership")
	}
	team, err := s.teams.FindByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "team not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load team")
	}
	if !member.IsCoach && team.OwnerID != userID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only coaches and team owners can set preferences")
	}

	pref := &models.TeamPreference{
		TeamID:         teamID,
		DaysPerWeek:    req.DaysPerWeek,
		HoursPerWeek:   req.HoursPerWeek,
		MinSlotMinutes: req.MinSlotMinutes,
		MaxSlotMinutes: req.MaxSlotMinutes,
	}
	if existing, err := s.prefs.GetByTeam(ctx, teamID); err == nil {
		pref.ID = existing.ID
		pref.CreatedAt = existing.CreatedAt
	}
	if err := s.prefs.Upsert(ctx, pref); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store team preference")
	}

	s.logger.Info("team preference updated", zap.String("team_id", teamID), zap.Int("days_per_week", pref.DaysPerWeek))
	return pref, nil
}
