package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/scrimplan/scrimplan-api/internal/dto"
	"github.com/scrimplan/scrimplan-api/internal/models"
	appErrors "github.com/scrimplan/scrimplan-api/pkg/errors"
)

type teamRepoStub struct {
	team    *models.Team
	members map[string]*models.TeamMember
	count   int
}

func (s *teamRepoStub) FindByID(ctx context.Context, teamID string) (*models.Team, error) {
	if s.team == nil {
		return nil, sql.ErrNoRows
	}
	cp := *s.team
	return &cp, nil
}

func (s *teamRepoStub) GetMember(ctx context.Context, teamID, userID string) (*models.TeamMember, error) {
	member, ok := s.members[userID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *member
	return &cp, nil
}

func (s *teamRepoStub) CountMembers(ctx context.Context, teamID string) (int, error) {
	return s.count, nil
}

type availabilityFetcherStub struct {
	rows []models.Availability
}

func (s *availabilityFetcherStub) ListByTeam(ctx context.Context, teamID string) ([]models.Availability, error) {
	return s.rows, nil
}

type absenceFetcherStub struct {
	rows []models.Absence
}

func (s *absenceFetcherStub) ListByTeam(ctx context.Context, teamID string) ([]models.Absence, error) {
	return s.rows, nil
}

type preferenceFetcherStub struct {
	pref *models.TeamPreference
}

func (s *preferenceFetcherStub) GetByTeam(ctx context.Context, teamID string) (*models.TeamPreference, error) {
	if s.pref == nil {
		return nil, sql.ErrNoRows
	}
	cp := *s.pref
	return &cp, nil
}

type slotRepoStub struct {
	stored   []models.TrainingSlot
	next     *models.TrainingSlot
	replaced []models.TrainingSlot
	calls    int
}

func (s *slotRepoStub) ListByTeam(ctx context.Context, teamID string) ([]models.TrainingSlot, error) {
	return s.stored, nil
}

func (s *slotRepoStub) NextSlot(ctx context.Context, teamID string, after time.Time) (*models.TrainingSlot, error) {
	if s.next == nil {
		return nil, sql.ErrNoRows
	}
	cp := *s.next
	return &cp, nil
}

func (s *slotRepoStub) ReplaceFuture(ctx context.Context, tx *sqlx.Tx, teamID string, from time.Time, slots []models.TrainingSlot) error {
	s.calls++
	s.replaced = slots
	return nil
}

type plannerStub struct {
	result *dto.PlanResult
	input  dto.PlanInput
}

func (s *plannerStub) Compute(input dto.PlanInput) (*dto.PlanResult, error) {
	s.input = input
	return s.result, nil
}

type cacheStub struct {
	entries     map[string][]models.TrainingSlot
	sets        int
	invalidated []string
}

func (s *cacheStub) Enabled() bool { return true }

func (s *cacheStub) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	cached, ok := s.entries[key]
	if !ok {
		return false, nil
	}
	ptr, ok := dest.(*[]models.TrainingSlot)
	if !ok {
		return false, nil
	}
	*ptr = cached
	return true, nil
}

func (s *cacheStub) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	s.sets++
	return nil
}

func (s *cacheStub) Invalidate(ctx context.Context, pattern string) error {
	s.invalidated = append(s.invalidated, pattern)
	return nil
}

type txProviderMock struct {
	db *sqlx.DB
}

func (t *txProviderMock) BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error) {
	return t.db.BeginTxx(ctx, opts)
}

func newTxProviderMock(t *testing.T) (*txProviderMock, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	sqlxdb := sqlx.NewDb(db, "sqlmock")
	t.Cleanup(func() { db.Close() })
	return &txProviderMock{db: sqlxdb}, mock
}

type scheduleFixture struct {
	service *ScheduleService
	teams   *teamRepoStub
	slots   *slotRepoStub
	planner *plannerStub
	cache   *cacheStub
	mock    sqlmock.Sqlmock
}

var fixedNow = time.Date(2026, time.August, 29, 15, 0, 0, 0, time.UTC)

func newScheduleFixture(t *testing.T, planResult *dto.PlanResult) *scheduleFixture {
	teams := &teamRepoStub{
		team: &models.Team{ID: "team-1", Name: "Scrim Squad", OwnerID: "owner-1"},
		members: map[string]*models.TeamMember{
			"owner-1":  {TeamID: "team-1", UserID: "owner-1", IsCoach: false},
			"coach-1":  {TeamID: "team-1", UserID: "coach-1", IsCoach: true},
			"player-1": {TeamID: "team-1", UserID: "player-1", IsCoach: false},
		},
		count: 3,
	}
	slots := &slotRepoStub{}
	planner := &plannerStub{result: planResult}
	cache := &cacheStub{entries: map[string][]models.TrainingSlot{}}
	tx, mock := newTxProviderMock(t)

	svc := NewScheduleService(
		teams,
		&availabilityFetcherStub{},
		&absenceFetcherStub{},
		&preferenceFetcherStub{},
		slots,
		planner,
		tx,
		cache,
		nil,
		zap.NewNop(),
		ScheduleServiceConfig{HorizonDays: 7, ScheduleCacheTTL: time.Minute},
	)
	svc.now = func() time.Time { return fixedNow }

	return &scheduleFixture{service: svc, teams: teams, slots: slots, planner: planner, cache: cache, mock: mock}
}

func feasibleResult() *dto.PlanResult {
	return &dto.PlanResult{
		Slots: []models.TrainingSlot{
			{TeamID: "team-1", Date: fixedNow.AddDate(0, 0, 1), DurationMinutes: 120, AttendeeCount: 3, FeasibilityScore: 0.73},
		},
		Status:      models.PlanFeasible,
		Explanation: "1 of 1 requested days filled, total 120/120 minutes",
	}
}

func TestScheduleServiceGetRequiresMembership(t *testing.T) {
	f := newScheduleFixture(t, feasibleResult())

	_, err := f.service.GetTeamSchedule(context.Background(), "team-1", "stranger")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestScheduleServiceGetReadsThroughCache(t *testing.T) {
	f := newScheduleFixture(t, feasibleResult())
	f.slots.stored = []models.TrainingSlot{{ID: "slot-1", TeamID: "team-1"}}

	first, err := f.service.GetTeamSchedule(context.Background(), "team-1", "player-1")
	require.NoError(t, err)
	assert.Len(t, first, 1)
	assert.Equal(t, 1, f.cache.sets)

	cached := []models.TrainingSlot{{ID: "slot-cached", TeamID: "team-1"}}
	f.cache.entries["schedule:team-1"] = cached

	second, err := f.service.GetTeamSchedule(context.Background(), "team-1", "player-1")
	require.NoError(t, err)
	assert.Equal(t, "slot-cached", second[0].ID)
}

func TestScheduleServiceComputePersistsAndInvalidates(t *testing.T) {
	f := newScheduleFixture(t, feasibleResult())

	f.mock.ExpectBegin()
	f.mock.ExpectCommit()

	resp, err := f.service.Compute(context.Background(), "team-1", "coach-1")
	require.NoError(t, err)

	assert.True(t, resp.Persisted)
	assert.Equal(t, models.PlanFeasible, resp.Status)
	assert.Equal(t, 1, f.slots.calls)
	assert.Len(t, f.slots.replaced, 1)
	assert.Equal(t, []string{"schedule:team-1*"}, f.cache.invalidated)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestScheduleServiceComputeAllowsOwner(t *testing.T) {
	f := newScheduleFixture(t, feasibleResult())

	f.mock.ExpectBegin()
	f.mock.ExpectCommit()

	resp, err := f.service.Compute(context.Background(), "team-1", "owner-1")
	require.NoError(t, err)
	assert.True(t, resp.Persisted)
}

func TestScheduleServiceComputeForbidsPlainMember(t *testing.T) {
	f := newScheduleFixture(t, feasibleResult())

	_, err := f.service.Compute(context.Background(), "team-1", "player-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
	assert.Equal(t, 0, f.slots.calls)
}

func TestScheduleServiceComputeInfeasibleDoesNotPersist(t *testing.T) {
	f := newScheduleFixture(t, &dto.PlanResult{
		Status:      models.PlanInfeasible,
		Explanation: "0 of 3 requested days filled, total 0/360 minutes",
	})

	resp, err := f.service.Compute(context.Background(), "team-1", "coach-1")
	require.NoError(t, err)

	assert.False(t, resp.Persisted)
	assert.Equal(t, models.PlanInfeasible, resp.Status)
	assert.Equal(t, 0, f.slots.calls)
	assert.Empty(t, f.cache.invalidated)
}

func TestScheduleServiceComputeRequiresMembers(t *testing.T) {
	f := newScheduleFixture(t, feasibleResult())
	f.teams.count = 0

	_, err := f.service.Compute(context.Background(), "team-1", "coach-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErrors.FromError(err).Code)
}

func TestScheduleServiceComputeDefaultsPreferences(t *testing.T) {
	f := newScheduleFixture(t, feasibleResult())

	f.mock.ExpectBegin()
	f.mock.ExpectCommit()

	_, err := f.service.Compute(context.Background(), "team-1", "coach-1")
	require.NoError(t, err)

	assert.Equal(t, models.DefaultDaysPerWeek, f.planner.input.Preferences.DaysPerWeek)
	assert.Equal(t, models.DefaultMinSlotMinutes, f.planner.input.Preferences.MinSlotMinutes)
	assert.Equal(t, 3, f.planner.input.TotalTeamMembers)

	// The horizon opens at midnight of the day after the current time.
	wantStart := time.Date(2026, time.August, 30, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, wantStart, f.planner.input.HorizonStart)
	assert.Equal(t, 7, f.planner.input.HorizonDays)
}

func TestScheduleServiceObservesDBQueries(t *testing.T) {
	f := newScheduleFixture(t, feasibleResult())
	metrics := NewMetricsService()
	f.service.metrics = metrics

	f.mock.ExpectBegin()
	f.mock.ExpectCommit()

	_, err := f.service.Compute(context.Background(), "team-1", "coach-1")
	require.NoError(t, err)

	// Snapshot load: members, preference, availabilities, absences.
	snap := metrics.Snapshot()
	assert.Equal(t, uint64(4), snap.DBQueryCount)
	assert.Equal(t, uint64(1), snap.PlanComputations)

	_, err = f.service.GetTeamSchedule(context.Background(), "team-1", "player-1")
	require.NoError(t, err)
	assert.Equal(t, uint64(5), metrics.Snapshot().DBQueryCount)
}

func TestScheduleServiceNextSlot(t *testing.T) {
	f := newScheduleFixture(t, feasibleResult())

	_, err := f.service.NextSlot(context.Background(), "team-1", "player-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)

	f.slots.next = &models.TrainingSlot{ID: "slot-next", TeamID: "team-1", Date: fixedNow.Add(24 * time.Hour)}
	slot, err := f.service.NextSlot(context.Background(), "team-1", "player-1")
	require.NoError(t, err)
	assert.Equal(t, "slot-next", slot.ID)
}
