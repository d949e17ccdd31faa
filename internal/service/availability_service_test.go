package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/scrimplan/scrimplan-api/internal/dto"
	"github.com/scrimplan/scrimplan-api/internal/models"
	appErrors "github.com/scrimplan/scrimplan-api/pkg/errors"
)

type availabilityRepoMock struct {
	rows    map[string]*models.Availability
	created []*models.Availability
	deleted []string
}

func (m *availabilityRepoMock) ListByTeam(ctx context.Context, teamID string) ([]models.Availability, error) {
	var out []models.Availability
	for _, row := range m.rows {
		out = append(out, *row)
	}
	return out, nil
}

func (m *availabilityRepoMock) ListByUser(ctx context.Context, teamID, userID string) ([]models.Availability, error) {
	var out []models.Availability
	for _, row := range m.rows {
		if row.UserID == userID {
			out = append(out, *row)
		}
	}
	return out, nil
}

func (m *availabilityRepoMock) Create(ctx context.Context, row *models.Availability) error {
	row.ID = "avail-new"
	m.created = append(m.created, row)
	return nil
}

func (m *availabilityRepoMock) FindByID(ctx context.Context, id string) (*models.Availability, error) {
	row, ok := m.rows[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *row
	return &cp, nil
}

func (m *availabilityRepoMock) Delete(ctx context.Context, id string) error {
	m.deleted = append(m.deleted, id)
	return nil
}

type absenceRepoMock struct {
	rows    map[string]*models.Absence
	created []*models.Absence
	deleted []string
}

func (m *absenceRepoMock) ListByTeam(ctx context.Context, teamID string) ([]models.Absence, error) {
	var out []models.Absence
	for _, row := range m.rows {
		out = append(out, *row)
	}
	return out, nil
}

func (m *absenceRepoMock) ListByUser(ctx context.Context, teamID, userID string) ([]models.Absence, error) {
	var out []models.Absence
	for _, row := range m.rows {
		if row.UserID == userID {
			out = append(out, *row)
		}
	}
	return out, nil
}

func (m *absenceRepoMock) Create(ctx context.Context, row *models.Absence) error {
	row.ID = "abs-new"
	m.created = append(m.created, row)
	return nil
}

func (m *absenceRepoMock) FindByID(ctx context.Context, id string) (*models.Absence, error) {
	row, ok := m.rows[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *row
	return &cp, nil
}

func (m *absenceRepoMock) Delete(ctx context.Context, id string) error {
	m.deleted = append(m.deleted, id)
	return nil
}

func newAvailabilityFixture() (*AvailabilityService, *availabilityRepoMock, *absenceRepoMock) {
	teams := &teamRepoStub{
		team: &models.Team{ID: "team-1", OwnerID: "owner-1"},
		members: map[string]*models.TeamMember{
			"player-1": {TeamID: "team-1", UserID: "player-1"},
			"player-2": {TeamID: "team-1", UserID: "player-2"},
		},
	}
	avails := &availabilityRepoMock{rows: map[string]*models.Availability{}}
	absences := &absenceRepoMock{rows: map[string]*models.Absence{}}
	return NewAvailabilityService(teams, avails, absences, validator.New(), zap.NewNop()), avails, absences
}

func TestAvailabilityServiceCreate(t *testing.T) {
	svc, avails, _ := newAvailabilityFixture()

	row, err := svc.CreateAvailability(context.Background(), "team-1", "player-1", dto.CreateAvailabilityRequest{
		Weekday:   "mon",
		StartTime: 1080,
		EndTime:   1320,
	})
	require.NoError(t, err)

	assert.Equal(t, models.WeekdayMonday, row.Weekday)
	assert.Equal(t, 1, row.Priority, "priority defaults to 1")
	assert.Len(t, avails.created, 1)
}

func TestAvailabilityServiceCreateRejectsReversedWindow(t *testing.T) {
	svc, _, _ := newAvailabilityFixture()

	_, err := svc.CreateAvailability(context.Background(), "team-1", "player-1", dto.CreateAvailabilityRequest{
		Weekday:   "MON",
		StartTime: 1320,
		EndTime:   1080,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestAvailabilityServiceCreateRejectsDuplicateWindow(t *testing.T) {
	svc, avails, _ := newAvailabilityFixture()
	avails.rows["avail-1"] = &models.Availability{
		ID:        "avail-1",
		TeamID:    "team-1",
		UserID:    "player-1",
		Weekday:   models.WeekdayMonday,
		StartTime: 1080,
		EndTime:   1320,
	}

	_, err := svc.CreateAvailability(context.Background(), "team-1", "player-1", dto.CreateAvailabilityRequest{
		Weekday:   "MON",
		StartTime: 1080,
		EndTime:   1320,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)

	// The same window is fine for a different member.
	_, err = svc.CreateAvailability(context.Background(), "team-1", "player-2", dto.CreateAvailabilityRequest{
		Weekday:   "MON",
		StartTime: 1080,
		EndTime:   1320,
	})
	require.NoError(t, err)
}

func TestAvailabilityServiceCreateRejectsUnknownWeekday(t *testing.T) {
	svc, _, _ := newAvailabilityFixture()

	_, err := svc.CreateAvailability(context.Background(), "team-1", "player-1", dto.CreateAvailabilityRequest{
		Weekday:   "SOMEDAY",
		StartTime: 600,
		EndTime:   720,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestAvailabilityServiceCreateRequiresMembership(t *testing.T) {
	svc, _, _ := newAvailabilityFixture()

	_, err := svc.CreateAvailability(context.Background(), "team-1", "stranger", dto.CreateAvailabilityRequest{
		Weekday:   "MON",
		StartTime: 600,
		EndTime:   720,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestAvailabilityServiceDeleteOwnerOnly(t *testing.T) {
	svc, avails, _ := newAvailabilityFixture()
	avails.rows["avail-1"] = &models.Availability{ID: "avail-1", TeamID: "team-1", UserID: "player-1"}

	err := svc.DeleteAvailability(context.Background(), "avail-1", "player-2")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	require.NoError(t, svc.DeleteAvailability(context.Background(), "avail-1", "player-1"))
	assert.Equal(t, []string{"avail-1"}, avails.deleted)
}

func TestAvailabilityServiceDeleteMissing(t *testing.T) {
	svc, _, _ := newAvailabilityFixture()

	err := svc.DeleteAvailability(context.Background(), "nope", "player-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestAbsenceServiceCreate(t *testing.T) {
	svc, _, absences := newAvailabilityFixture()
	start := time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC)

	row, err := svc.CreateAbsence(context.Background(), "team-1", "player-1", dto.CreateAbsenceRequest{
		Start: start,
		End:   start.AddDate(0, 0, 3),
	})
	require.NoError(t, err)
	assert.Equal(t, "player-1", row.UserID)
	assert.Len(t, absences.created, 1)
}

func TestAbsenceServiceCreateRejectsReversedRange(t *testing.T) {
	svc, _, _ := newAvailabilityFixture()
	start := time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC)

	_, err := svc.CreateAbsence(context.Background(), "team-1", "player-1", dto.CreateAbsenceRequest{
		Start: start,
		End:   start,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestAbsenceServiceDeleteOwnerOnly(t *testing.T) {
	svc, _, absences := newAvailabilityFixture()
	absences.rows["abs-1"] = &models.Absence{ID: "abs-1", TeamID: "team-1", UserID: "player-1"}

	err := svc.DeleteAbsence(context.Background(), "abs-1", "player-2")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	require.NoError(t, svc.DeleteAbsence(context.Background(), "abs-1", "player-1"))
	assert.Equal(t, []string{"abs-1"}, absences.deleted)
}
