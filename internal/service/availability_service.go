package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/scrimplan/scrimplan-api/internal/dto"
	"github.com/scrimplan/scrimplan-api/internal/models"
	appErrors "github.com/scrimplan/scrimplan-api/pkg/errors"
)

type availabilityRepository interface {
	ListByTeam(ctx context.Context, teamID string) ([]models.Availability, error)
	ListByUser(ctx context.Context, teamID, userID string) ([]models.Availability, error)
	Create(ctx context.Context, row *models.Availability) error
	FindByID(ctx context.Context, id string) (*models.Availability, error)
	Delete(ctx context.Context, id string) error
}

type absenceRepository interface {
	ListByTeam(ctx context.Context, teamID string) ([]models.Absence, error)
	ListByUser(ctx context.Context, teamID, userID string) ([]models.Absence, error)
	Create(ctx context.Context, row *models.Absence) error
	FindByID(ctx context.Context, id string) (*models.Absence, error)
	Delete(ctx context.Context, id string) error
}

// AvailabilityService manages recurring availability windows and absences.
// Rows are owned by the user who created them and are immutable: a change is
// a delete followed by a create.
type AvailabilityService struct {
	teams     teamReader
	avails    availabilityRepository
	absences  absenceRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAvailabilityService wires availability dependencies.
func NewAvailabilityService(teams teamReader, avails availabilityRepository, absences absenceRepository, validate *validator.Validate, logger *zap.Logger) *AvailabilityService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AvailabilityService{teams: teams, avails: avails, absences: absences, validator: validate, logger: logger}
}

// ListTeamAvailability returns every member's availability, member access.
func (s *AvailabilityService) ListTeamAvailability(ctx context.Context, teamID, userID string) ([]models.Availability, error) {
	if err := s.requireMember(ctx, teamID, userID); err != nil {
		return nil, err
	}
	rows, err := s.avails.ListByTeam(ctx, teamID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list availabilities")
	}
	return rows, nil
}

// ListUserAvailability returns the caller's own availability rows.
func (s *AvailabilityService) ListUserAvailability(ctx context.Context, teamID, userID string) ([]models.Availability, error) {
	if err := s.requireMember(ctx, teamID, userID); err != nil {
		return nil, err
	}
	rows, err := s.avails.ListByUser(ctx, teamID, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list availabilities")
	}
	return rows, nil
}

// CreateAvailability adds a recurring weekly window for the caller.
func (s *AvailabilityService) CreateAvailability(ctx context.Context, teamID, userID string, req dto.CreateAvailabilityRequest) (*models.Availability, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid availability payload")
	}
	weekday, ok := models.ParseWeekday(req.Weekday)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown weekday %q", req.Weekday))
	}
	if req.StartTime >= req.EndTime {
		return nil, appErrors.Clone(appErrors.ErrValidation, "start time must be before end time")
	}
	if err := s.requireMember(ctx, teamID, userID); err != nil {
		return nil, err
	}

	existing, err := s.avails.ListByUser(ctx, teamID, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list availabilities")
	}
	for _, prev := range existing {
		if prev.Weekday == weekday && prev.StartTime == req.StartTime && prev.EndTime == req.EndTime {
			return nil, appErrors.Clone(appErrors.ErrConflict, "an identical availability window already exists")
		}
	}

	priority := req.Priority
	if priority == 0 {
		priority = 1
	}
	row := &models.Availability{
		TeamID:    teamID,
		UserID:    userID,
		Weekday:   weekday,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Priority:  priority,
	}
	if err := s.avails.Create(ctx, row); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create availability")
	}
	return row, nil
}

// DeleteAvailability removes a window; only the owning user may delete it.
func (s *AvailabilityService) DeleteAvailability(ctx context.Context, availabilityID, userID string) error {
	row, err := s.avails.FindByID(ctx, availabilityID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "availability not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load availability")
	}
	if row.UserID != userID {
		return appErrors.Clone(appErrors.ErrForbidden, "only the owner can delete an availability")
	}
	if err := s.avails.Delete(ctx, availabilityID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete availability")
	}
	return nil
}

// ListTeamAbsences returns every member's absences, member access.
func (s *AvailabilityService) ListTeamAbsences(ctx context.Context, teamID, userID string) ([]models.Absence, error) {
	if err := s.requireMember(ctx, teamID, userID); err != nil {
		return nil, err
	}
	rows, err := s.absences.ListByTeam(ctx, teamID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list absences")
	}
	return rows, nil
}

// ListUserAbsences returns the caller's own absences.
func (s *AvailabilityService) ListUserAbsences(ctx context.Context, teamID, userID string) ([]models.Absence, error) {
	if err := s.requireMember(ctx, teamID, userID); err != nil {
		return nil, err
	}
	rows, err := s.absences.ListByUser(ctx, teamID, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list absences")
	}
	return rows, nil
}

// CreateAbsence blocks the caller for a concrete date range.
func (s *AvailabilityService) CreateAbsence(ctx context.Context, teamID, userID string, req dto.CreateAbsenceRequest) (*models.Absence, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid absence payload")
	}
	if !req.Start.Before(req.End) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "absence start must be before end")
	}
	if err := s.requireMember(ctx, teamID, userID); err != nil {
		return nil, err
	}

	row := &models.Absence{
		TeamID: teamID,
		UserID: userID,
		Start:  req.Start,
		End:    req.End,
		Reason: req.Reason,
	}
	if err := s.absences.Create(ctx, row); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create absence")
	}
	return row, nil
}

// DeleteAbsence removes an absence; only the owning user may delete it.
func (s *AvailabilityService) DeleteAbsence(ctx context.Context, absenceID, userID string) error {
	row, err := s.absences.FindByID(ctx, absenceID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "absence not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load absence")
	}
	if row.UserID != userID {
		return appErrors.Clone(appErrors.ErrForbidden, "only the owner can delete an absence")
	}
	if err := s.absences.Delete(ctx, absenceID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete absence")
	}
	return nil
}

func (s *AvailabilityService) requireMember(ctx context.Context, teamID, userID string) error {
	if _, err := s.teams.GetMember(ctx, teamID, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrForbidden, "not a member of this team")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load team membership")
	}
	return nil
}
