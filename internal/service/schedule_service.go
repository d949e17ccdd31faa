package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/scrimplan/scrimplan-api/internal/dto"
	"github.com/scrimplan/scrimplan-api/internal/models"
	"github.com/scrimplan/scrimplan-api/internal/repository"
	appErrors "github.com/scrimplan/scrimplan-api/pkg/errors"
)

type teamReader interface {
	FindByID(ctx context.Context, teamID string) (*models.Team, error)
	GetMember(ctx context.Context, teamID, userID string) (*models.TeamMember, error)
	CountMembers(ctx context.Context, teamID string) (int, error)
}

type availabilityFetcher interface {
	ListByTeam(ctx context.Context, teamID string) ([]models.Availability, error)
}

type absenceFetcher interface {
	ListByTeam(ctx context.Context, teamID string) ([]models.Absence, error)
}

type preferenceFetcher interface {
	GetByTeam(ctx context.Context, teamID string) (*models.TeamPreference, error)
}

type trainingSlotRepository interface {
	ListByTeam(ctx context.Context, teamID string) ([]models.TrainingSlot, error)
	NextSlot(ctx context.Context, teamID string, after time.Time) (*models.TrainingSlot, error)
	ReplaceFuture(ctx context.Context, tx *sqlx.Tx, teamID string, from time.Time, slots []models.TrainingSlot) error
}

type planComputer interface {
	Compute(input dto.PlanInput) (*dto.PlanResult, error)
}

type txProvider interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

type scheduleCache interface {
	Enabled() bool
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Invalidate(ctx context.Context, pattern string) error
}

// ScheduleService orchestrates schedule computation and retrieval. The
// planner itself is pure; this layer does the authorization, snapshot
// loading and persistence around it.
type ScheduleService struct {
	teams    teamReader
	avails   availabilityFetcher
	absences absenceFetcher
	prefs    preferenceFetcher
	slots    trainingSlotRepository
	planner  planComputer
	tx       txProvider
	cache    scheduleCache
	metrics  *MetricsService
	logger   *zap.Logger
	cacheTTL time.Duration
	horizon  int
	now      func() time.Time
}

// ScheduleServiceConfig tunes planning horizon and caching.
type ScheduleServiceConfig struct {
	HorizonDays      int
	ScheduleCacheTTL time.Duration
}

// NewScheduleService wires schedule dependencies.
func NewScheduleService(
	teams teamReader,
	avails availabilityFetcher,
	absences absenceFetcher,
	prefs preferenceFetcher,
	slots trainingSlotRepository,
	planner planComputer,
	tx txProvider,
	cache scheduleCache,
	metrics *MetricsService,
	logger *zap.Logger,
	cfg ScheduleServiceConfig,
) *ScheduleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.HorizonDays <= 0 {
		cfg.HorizonDays = defaultHorizonDays
	}
	if cfg.ScheduleCacheTTL <= 0 {
		cfg.ScheduleCacheTTL = 5 * time.Minute
	}
	return &ScheduleService{
		teams:    teams,
		avails:   avails,
		absences: absences,
		prefs:    prefs,
		slots:    slots,
		planner:  planner,
		tx:       tx,
		cache:    cache,
		metrics:  metrics,
		logger:   logger,
		cacheTTL: cfg.ScheduleCacheTTL,
		horizon:  cfg.HorizonDays,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// GetTeamSchedule returns the persisted slots for a team, date ascending.
func (s *ScheduleService) GetTeamSchedule(ctx context.Context, teamID, userID string) ([]models.TrainingSlot, error) {
	if _, err := s.requireMember(ctx, teamID, userID); err != nil {
		return nil, err
	}

	cacheKey := repository.ScheduleCacheKey(teamID)
	if s.cache != nil && s.cache.Enabled() {
		var cached []models.TrainingSlot
		if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
			return cached, nil
		}
	}

	queryStart := time.Now()
	slots, err := s.slots.ListByTeam(ctx, teamID)
	s.metrics.ObserveDBQuery("list_training_slots", time.Since(queryStart))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list training slots")
	}

	if s.cache != nil && s.cache.Enabled() {
		_ = s.cache.Set(ctx, cacheKey, slots, s.cacheTTL)
	}
	return slots, nil
}

// Compute runs the planner over a fresh snapshot and replaces the team's
// upcoming slots with the result. Restricted to coaches and the team owner.
// An infeasible plan is reported back as-is; nothing is persisted for it.
func (s *ScheduleService) Compute(ctx context.Context, teamID, userID string) (*dto.ComputeScheduleResponse, error) {
	member, err := s.requireMember(ctx, teamID, userID)
	if err != nil {
		return nil, err
	}
	team, err := s.teams.FindByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "team not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load team")
	}
	if !member.IsCoach && team.OwnerID != userID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only coaches and team owners can compute schedules")
	}

	input, err := s.loadPlanInput(ctx, teamID)
	if err != nil {
		return nil, err
	}

	started := s.now()
	result, err := s.planner.Compute(*input)
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.ObservePlanComputation(string(result.Status), s.now().Sub(started), len(result.Slots))
	}

	persisted := false
	if len(result.Slots) > 0 {
		if err := s.persistSlots(ctx, teamID, input.HorizonStart, result.Slots); err != nil {
			return nil, err
		}
		persisted = true
		if s.cache != nil {
			_ = s.cache.Invalidate(ctx, repository.ScheduleCachePattern(teamID))
		}
	}

	s.logger.Info("schedule computed",
		zap.String("team_id", teamID),
		zap.String("status", string(result.Status)),
		zap.Int("slots", len(result.Slots)),
		zap.Bool("persisted", persisted),
	)

	return &dto.ComputeScheduleResponse{
		Slots:       result.Slots,
		Status:      result.Status,
		Explanation: result.Explanation,
		Persisted:   persisted,
	}, nil
}

// NextSlot returns the earliest persisted slot at or after now.
func (s *ScheduleService) NextSlot(ctx context.Context, teamID, userID string) (*models.TrainingSlot, error) {
	if _, err := s.requireMember(ctx, teamID, userID); err != nil {
		return nil, err
	}
	queryStart := time.Now()
	slot, err := s.slots.NextSlot(ctx, teamID, s.now())
	s.metrics.ObserveDBQuery("next_training_slot", time.Since(queryStart))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no upcoming training slot")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load next training slot")
	}
	return slot, nil
}

func (s *ScheduleService) requireMember(ctx context.Context, teamID, userID string) (*models.TeamMember, error) {
	member, err := s.teams.GetMember(ctx, teamID, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "not a member of this team")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load team membership")
	}
	return member, nil
}

func (s *ScheduleService) loadPlanInput(ctx context.Context, teamID string) (*dto.PlanInput, error) {
	queryStart := time.Now()
	total, err := s.teams.CountMembers(ctx, teamID)
	s.metrics.ObserveDBQuery("count_team_members", time.Since(queryStart))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count team members")
	}
	if total == 0 {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "team has no members")
	}

	queryStart = time.Now()
	pref, err := s.prefs.GetByTeam(ctx, teamID)
	s.metrics.ObserveDBQuery("load_team_preference", time.Since(queryStart))
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load team preferences")
		}
		fallback := models.DefaultTeamPreference(teamID)
		pref = &fallback
	}

	queryStart = time.Now()
	availabilities, err := s.avails.ListByTeam(ctx, teamID)
	s.metrics.ObserveDBQuery("list_availabilities", time.Since(queryStart))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load availabilities")
	}
	queryStart = time.Now()
	absences, err := s.absences.ListByTeam(ctx, teamID)
	s.metrics.ObserveDBQuery("list_absences", time.Since(queryStart))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load absences")
	}

	// Planning starts tomorrow: today is already in motion.
	now := s.now()
	horizonStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, 1)

	return &dto.PlanInput{
		TeamID:           teamID,
		TotalTeamMembers: total,
		Preferences:      *pref,
		Availabilities:   availabilities,
		Absences:         absences,
		HorizonStart:     horizonStart,
		HorizonDays:      s.horizon,
	}, nil
}

func (s *ScheduleService) persistSlots(ctx context.Context, teamID string, from time.Time, slots []models.TrainingSlot) error {
	if s.tx == nil {
		return appErrors.Clone(appErrors.ErrInternal, "transaction provider missing")
	}
	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin transaction")
	}
	if err := s.slots.ReplaceFuture(ctx, tx, teamID, from, slots); err != nil {
		_ = tx.Rollback()
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist training slots")
	}
	if err := tx.Commit(); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit training slots")
	}
	return nil
}
