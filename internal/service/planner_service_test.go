package service

import (
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

// 2026-08-31 is a Monday; a 7 day horizon from here covers MON..SUN once.
var horizonMonday = time.Date(2026, time.August, 31, 0, 0, 0, 0, time.UTC)

func newTestPlanner() *PlannerService {
	return NewPlannerService(validator.New(), zap.NewNop())
}

func planInput(totalMembers int, pref models.TeamPreference, avails []models.Availability, absences []models.Absence) dto.PlanInput {
	return dto.PlanInput{
		TeamID:           "team-1",
		TotalTeamMembers: totalMembers,
		Preferences:      pref,
		Availabilities:   avails,
		Absences:         absences,
		HorizonStart:     horizonMonday,
		HorizonDays:      7,
	}
}

func window(userID string, weekday models.Weekday, start, end, priority int) models.Availability {
	return models.Availability{
		ID:        userID + "-" + string(weekday),
		TeamID:    "team-1",
		UserID:    userID,
		Weekday:   weekday,
		StartTime: start,
		EndTime:   end,
		Priority:  priority,
	}
}

func TestPlannerSingleCleanOverlap(t *testing.T) {
	pref := models.TeamPreference{TeamID: "team-1", DaysPerWeek: 1, HoursPerWeek: 2, MinSlotMinutes: 90, MaxSlotMinutes: 180}
	avails := []models.Availability{
		window("user-1", models.WeekdayMonday, 1080, 1320, 1),
		window("user-2", models.WeekdayMonday, 1080, 1320, 1),
	}

	result, err := newTestPlanner().Compute(planInput(2, pref, avails, nil))
	require.NoError(t, err)

	require.Len(t, result.Slots, 1)
	assert.Equal(t, models.PlanFeasible, result.Status)

	slot := result.Slots[0]
	assert.Equal(t, horizonMonday.Add(1080*time.Minute), slot.Date)
	assert.Equal(t, 180, slot.DurationMinutes)
	assert.Equal(t, 2, slot.AttendeeCount)
	assert.InDelta(t, 0.73, slot.FeasibilityScore, 1e-9)
	assert.Equal(t, "1 of 1 requested days filled, total 180/120 minutes", result.Explanation)
}

func TestPlannerAbsenceRemovesUser(t *testing.T) {
	pref := models.TeamPreference{TeamID: "team-1", DaysPerWeek: 1, HoursPerWeek: 2, MinSlotMinutes: 90, MaxSlotMinutes: 180}
	avails := []models.Availability{
		window("user-1", models.WeekdayMonday, 1080, 1320, 1),
		window("user-2", models.WeekdayMonday, 1080, 1320, 1),
	}
	absences := []models.Absence{
		{ID: "abs-1", TeamID: "team-1", UserID: "user-2", Start: horizonMonday.Add(10 * time.Hour), End: horizonMonday.Add(11 * time.Hour)},
	}

	result, err := newTestPlanner().Compute(planInput(2, pref, avails, absences))
	require.NoError(t, err)

	require.Len(t, result.Slots, 1)
	slot := result.Slots[0]
	assert.Equal(t, 1, slot.AttendeeCount)
	assert.InDelta(t, 0.38, slot.FeasibilityScore, 1e-9)
}

func TestPlannerNoSharedOverlapIsInfeasible(t *testing.T) {
	pref := models.TeamPreference{TeamID: "team-1", DaysPerWeek: 1, HoursPerWeek: 2, MinSlotMinutes: 90, MaxSlotMinutes: 180}
	avails := []models.Availability{
		window("user-1", models.WeekdayMonday, 480, 600, 1),
		window("user-2", models.WeekdayMonday, 1200, 1320, 1),
	}

	result, err := newTestPlanner().Compute(planInput(2, pref, avails, nil))
	require.NoError(t, err)

	assert.Empty(t, result.Slots)
	assert.Equal(t, models.PlanInfeasible, result.Status)
	assert.Equal(t, "0 of 1 requested days filled, total 0/120 minutes", result.Explanation)
}

func TestPlannerShortOverlapDiscarded(t *testing.T) {
	pref := models.TeamPreference{TeamID: "team-1", DaysPerWeek: 1, HoursPerWeek: 2, MinSlotMinutes: 90, MaxSlotMinutes: 180}
	avails := []models.Availability{
		window("user-1", models.WeekdayMonday, 1000, 1125, 1),
		window("user-2", models.WeekdayMonday, 1080, 1200, 1),
	}

	result, err := newTestPlanner().Compute(planInput(2, pref, avails, nil))
	require.NoError(t, err)

	assert.Empty(t, result.Slots)
	assert.Equal(t, models.PlanInfeasible, result.Status)
}

func TestPlannerCapAndOnePerDate(t *testing.T) {
	pref := models.TeamPreference{TeamID: "team-1", DaysPerWeek: 3, HoursPerWeek: 9, MinSlotMinutes: 90, MaxSlotMinutes: 180}
	weekdays := []models.Weekday{
		models.WeekdayMonday, models.WeekdayTuesday, models.WeekdayWednesday,
		models.WeekdayThursday, models.WeekdayFriday, models.WeekdaySaturday, models.WeekdaySunday,
	}
	var avails []models.Availability
	for _, wd := range weekdays {
		avails = append(avails, window("user-1", wd, 1080, 1320, 1))
		avails = append(avails, window("user-2", wd, 1080, 1320, 1))
	}

	result, err := newTestPlanner().Compute(planInput(2, pref, avails, nil))
	require.NoError(t, err)

	require.Len(t, result.Slots, 3)
	assert.Equal(t, models.PlanFeasible, result.Status)

	seen := make(map[string]bool)
	for _, slot := range result.Slots {
		key := slot.Date.Format("2006-01-02")
		assert.False(t, seen[key], "two slots on %s", key)
		seen[key] = true
	}

	// Equal scores everywhere, so the earliest dates win.
	assert.Equal(t, horizonMonday.Add(1080*time.Minute), result.Slots[0].Date)
	assert.Equal(t, horizonMonday.AddDate(0, 0, 1).Add(1080*time.Minute), result.Slots[1].Date)
	assert.Equal(t, horizonMonday.AddDate(0, 0, 2).Add(1080*time.Minute), result.Slots[2].Date)
}

func TestPlannerPartiallyFeasible(t *testing.T) {
	pref := models.TeamPreference{TeamID: "team-1", DaysPerWeek: 3, HoursPerWeek: 6, MinSlotMinutes: 90, MaxSlotMinutes: 180}
	avails := []models.Availability{
		window("user-1", models.WeekdayMonday, 1080, 1320, 1),
		window("user-2", models.WeekdayMonday, 1080, 1320, 1),
		window("user-1", models.WeekdayWednesday, 1080, 1320, 1),
		window("user-2", models.WeekdayWednesday, 1080, 1320, 1),
	}

	result, err := newTestPlanner().Compute(planInput(2, pref, avails, nil))
	require.NoError(t, err)

	assert.Len(t, result.Slots, 2)
	assert.Equal(t, models.PlanPartiallyFeasible, result.Status)
	assert.Equal(t, "2 of 3 requested days filled, total 360/360 minutes", result.Explanation)
}

func TestPlannerRepairSwapMovesTotalTowardsTarget(t *testing.T) {
	pref := models.TeamPreference{TeamID: "team-1", DaysPerWeek: 2, HoursPerWeek: 6, MinSlotMinutes: 90, MaxSlotMinutes: 180}
	avails := []models.Availability{
		// Monday: all three members for three hours.
		window("user-1", models.WeekdayMonday, 1080, 1260, 1),
		window("user-2", models.WeekdayMonday, 1080, 1260, 1),
		window("user-3", models.WeekdayMonday, 1080, 1260, 1),
		// Tuesday: two members, barely admissible.
		window("user-1", models.WeekdayTuesday, 1080, 1170, 1),
		window("user-2", models.WeekdayTuesday, 1080, 1170, 1),
		// Wednesday: the same two members, full length.
		window("user-1", models.WeekdayWednesday, 1080, 1260, 1),
		window("user-2", models.WeekdayWednesday, 1080, 1260, 1),
	}

	result, err := newTestPlanner().Compute(planInput(3, pref, avails, nil))
	require.NoError(t, err)

	// Greedy picks Monday and Tuesday (270 min, outside the 360±20% band);
	// the repair pass trades Tuesday for Wednesday to land exactly on target.
	require.Len(t, result.Slots, 2)
	assert.Equal(t, models.PlanFeasible, result.Status)
	assert.Equal(t, horizonMonday.Add(1080*time.Minute), result.Slots[0].Date)
	assert.Equal(t, horizonMonday.AddDate(0, 0, 2).Add(1080*time.Minute), result.Slots[1].Date)
	assert.Equal(t, "2 of 2 requested days filled, total 360/360 minutes", result.Explanation)
}

func TestPlannerDeterminism(t *testing.T) {
	pref := models.TeamPreference{TeamID: "team-1", DaysPerWeek: 2, HoursPerWeek: 4, MinSlotMinutes: 90, MaxSlotMinutes: 180}
	avails := []models.Availability{
		window("user-1", models.WeekdayMonday, 1080, 1320, 3),
		window("user-2", models.WeekdayMonday, 1140, 1380, 2),
		window("user-1", models.WeekdayThursday, 600, 900, 1),
		window("user-2", models.WeekdayThursday, 600, 900, 5),
		window("user-3", models.WeekdaySaturday, 480, 720, 1),
		window("user-1", models.WeekdaySaturday, 480, 720, 1),
	}

	planner := newTestPlanner()
	first, err := planner.Compute(planInput(3, pref, avails, nil))
	require.NoError(t, err)
	second, err := planner.Compute(planInput(3, pref, avails, nil))
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestPlannerRejectsInvalidPreferences(t *testing.T) {
	avails := []models.Availability{window("user-1", models.WeekdayMonday, 1080, 1320, 1)}
	cases := []struct {
		name string
		pref models.TeamPreference
	}{
		{"daysPerWeek too high", models.TeamPreference{TeamID: "team-1", DaysPerWeek: 8, HoursPerWeek: 6, MinSlotMinutes: 90, MaxSlotMinutes: 180}},
		{"hoursPerWeek zero", models.TeamPreference{TeamID: "team-1", DaysPerWeek: 3, HoursPerWeek: 0, MinSlotMinutes: 90, MaxSlotMinutes: 180}},
		{"max below min", models.TeamPreference{TeamID: "team-1", DaysPerWeek: 3, HoursPerWeek: 6, MinSlotMinutes: 120, MaxSlotMinutes: 90}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := newTestPlanner().Compute(planInput(2, tc.pref, avails, nil))
			require.Error(t, err)
			assert.Equal(t, appErrors.ErrInvalidData.Code, appErrors.FromError(err).Code)
		})
	}
}

func TestPlannerRejectsMalformedRows(t *testing.T) {
	pref := models.TeamPreference{TeamID: "team-1", DaysPerWeek: 1, HoursPerWeek: 2, MinSlotMinutes: 90, MaxSlotMinutes: 180}

	t.Run("availability window reversed", func(t *testing.T) {
		avails := []models.Availability{window("user-1", models.WeekdayMonday, 900, 600, 1)}
		_, err := newTestPlanner().Compute(planInput(2, pref, avails, nil))
		require.Error(t, err)
		assert.Equal(t, appErrors.ErrInvalidData.Code, appErrors.FromError(err).Code)
	})

	t.Run("absence range reversed", func(t *testing.T) {
		avails := []models.Availability{window("user-1", models.WeekdayMonday, 1080, 1320, 1)}
		absences := []models.Absence{{ID: "abs-1", UserID: "user-1", Start: horizonMonday.Add(12 * time.Hour), End: horizonMonday}}
		_, err := newTestPlanner().Compute(planInput(2, pref, avails, absences))
		require.Error(t, err)
		assert.Equal(t, appErrors.ErrInvalidData.Code, appErrors.FromError(err).Code)
	})
}

func TestSweepDayPartition(t *testing.T) {
	intervals := []memberInterval{
		{userID: "user-1", start: 600, end: 720, priority: 2},
		{userID: "user-1", start: 660, end: 780, priority: 5},
		{userID: "user-2", start: 600, end: 780, priority: 1},
	}

	segments := sweepDay(intervals)
	require.Len(t, segments, 2)

	// A user with two overlapping windows counts once, at the max priority.
	assert.Equal(t, segment{start: 600, end: 660, attendees: []string{"user-1", "user-2"}, weight: 3}, segments[0])
	assert.Equal(t, segment{start: 660, end: 780, attendees: []string{"user-1", "user-2"}, weight: 6}, segments[1])

	// Segments partition the covered range without overlap.
	for i := 1; i < len(segments); i++ {
		assert.GreaterOrEqual(t, segments[i].start, segments[i-1].end)
	}
}

func TestSweepDayAdjacentWindowsDoNotOverlap(t *testing.T) {
	intervals := []memberInterval{
		{userID: "user-1", start: 600, end: 720, priority: 1},
		{userID: "user-2", start: 720, end: 840, priority: 1},
	}

	segments := sweepDay(intervals)
	require.Len(t, segments, 2)
	assert.Equal(t, []string{"user-1"}, segments[0].attendees)
	assert.Equal(t, []string{"user-2"}, segments[1].attendees)
	assert.Equal(t, 720, segments[0].end)
	assert.Equal(t, 720, segments[1].start)
}

func TestSweepDayEmptyInput(t *testing.T) {
	assert.Empty(t, sweepDay(nil))
}

func TestFeasibilityScoreMonotonicity(t *testing.T) {
	smaller := feasibilityScore(2, 3, 1.0)
	larger := feasibilityScore(3, 3, 1.0)
	assert.Greater(t, larger, smaller)

	assert.Equal(t, 1.0, clamp01(1.5))
	assert.Equal(t, 0.0, clamp01(-0.5))
}

func TestBuildCandidatesDurationBounds(t *testing.T) {
	date := horizonMonday
	segments := []segment{
		{start: 600, end: 660, attendees: []string{"user-1", "user-2"}, weight: 2},  // 60 min, below min
		{start: 700, end: 820, attendees: []string{"user-1", "user-2"}, weight: 2},  // 120 min
		{start: 900, end: 1200, attendees: []string{"user-1", "user-2"}, weight: 2}, // 300 min, clipped
	}

	candidates := buildCandidates(date, segments, 90, 180, 2, 2)
	require.Len(t, candidates, 2)
	assert.Equal(t, 120, candidates[0].duration)
	assert.Equal(t, 700, candidates[0].startMinute)
	assert.Equal(t, 180, candidates[1].duration)
	assert.Equal(t, 900, candidates[1].startMinute)
}

func TestBuildCandidatesSoloSegmentRules(t *testing.T) {
	date := horizonMonday
	solo := []segment{{start: 600, end: 780, attendees: []string{"user-1"}, weight: 1}}

	// A lone attendee is admissible only when nobody else offered that date.
	assert.Len(t, buildCandidates(date, solo, 90, 180, 2, 1), 1)
	assert.Empty(t, buildCandidates(date, solo, 90, 180, 2, 2))
}
