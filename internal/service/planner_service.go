package service

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/scrimplan/scrimplan-api/internal/dto"
	"github.com/scrimplan/scrimplan-api/internal/models"
	appErrors "github.com/scrimplan/scrimplan-api/pkg/errors"
)

const (
	minutesPerDay = 1440

	// Fixed score blend: attendance coverage dominates, preference priority
	// is secondary. Not tunable at runtime.
	attendanceWeight = 0.7
	priorityWeight   = 0.3

	// Repair policy for the weekly selection pass.
	durationTolerance  = 0.2
	repairMaxScoreDrop = 0.1

	defaultHorizonDays = 7
)

// PlannerService computes a team's upcoming training slots from recurring
// availability, absences and cadence preferences. It is a pure computation
// over an immutable input snapshot: no I/O, no retained state, deterministic
// output for identical inputs.
type PlannerService struct {
	validator *validator.Validate
	logger    *zap.Logger
}

// NewPlannerService wires planner dependencies.
func NewPlannerService(validate *validator.Validate, logger *zap.Logger) *PlannerService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PlannerService{validator: validate, logger: logger}
}

// Compute runs the four-stage pipeline: aggregate availability per horizon
// date, sweep each date into constant-attendee segments, clip segments into
// admissible slot candidates, and select the weekly set. Infeasibility is a
// valid terminal status, never an error.
func (s *PlannerService) Compute(input dto.PlanInput) (*dto.PlanResult, error) {
	if err := s.validator.Struct(input); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid plan input")
	}
	prefs := input.Preferences
	if prefs.DaysPerWeek < 1 || prefs.DaysPerWeek > 7 {
		return nil, appErrors.Clone(appErrors.ErrInvalidData, fmt.Sprintf("daysPerWeek %d outside [1,7]", prefs.DaysPerWeek))
	}
	if prefs.HoursPerWeek < 1 {
		return nil, appErrors.Clone(appErrors.ErrInvalidData, fmt.Sprintf("hoursPerWeek %d must be >= 1", prefs.HoursPerWeek))
	}
	if prefs.MinSlotMinutes < 30 || prefs.MaxSlotMinutes < prefs.MinSlotMinutes {
		return nil, appErrors.Clone(appErrors.ErrInvalidData, fmt.Sprintf("slot bounds [%d,%d] invalid", prefs.MinSlotMinutes, prefs.MaxSlotMinutes))
	}

	horizonDays := input.HorizonDays
	if horizonDays <= 0 {
		horizonDays = defaultHorizonDays
	}

	days, err := aggregateHorizon(input.Availabilities, input.Absences, input.HorizonStart, horizonDays)
	if err != nil {
		return nil, err
	}

	var candidates []slotCandidate
	for _, day := range days {
		segments := sweepDay(day.intervals)
		dayUsers := distinctUsers(day.intervals)
		candidates = append(candidates, buildCandidates(day.date, segments, prefs.MinSlotMinutes, prefs.MaxSlotMinutes, input.TotalTeamMembers, dayUsers)...)
	}

	accepted, status := selectWeekly(candidates, prefs.DaysPerWeek, prefs.HoursPerWeek*60)

	slots := make([]models.TrainingSlot, 0, len(accepted))
	totalMinutes := 0
	for _, cand := range accepted {
		slots = append(slots, models.TrainingSlot{
			TeamID:           input.TeamID,
			Date:             cand.date.Add(time.Duration(cand.startMinute) * time.Minute),
			DurationMinutes:  cand.duration,
			AttendeeCount:    cand.attendeeCount,
			FeasibilityScore: cand.score,
		})
		totalMinutes += cand.duration
	}
	sort.Slice(slots, func(i, j int) bool { return slots[i].Date.Before(slots[j].Date) })

	result := &dto.PlanResult{
		Slots:  slots,
		Status: status,
		Explanation: fmt.Sprintf("%d of %d requested days filled, total %d/%d minutes",
			len(slots), prefs.DaysPerWeek, totalMinutes, prefs.HoursPerWeek*60),
	}

	s.logger.Debug("plan computed",
		zap.String("team_id", input.TeamID),
		zap.String("status", string(status)),
		zap.Int("candidates", len(candidates)),
		zap.Int("slots", len(slots)),
	)
	return result, nil
}

// --- Stage 1: availability aggregation ---

type memberInterval struct {
	userID   string
	start    int
	end      int
	priority int
}

type planDay struct {
	date      time.Time
	intervals []memberInterval
}

// aggregateHorizon resolves recurring weekly windows onto concrete calendar
// dates, dropping users whose absence intersects a date. Keyed by date, not
// weekday, so two occurrences of the same weekday get independent exclusions.
func aggregateHorizon(availabilities []models.Availability, absences []models.Absence, horizonStart time.Time, horizonDays int) ([]planDay, error) {
	for _, absence := range absences {
		if !absence.Start.Before(absence.End) {
			return nil, appErrors.Clone(appErrors.ErrInvalidData,
				fmt.Sprintf("aggregate: absence %s has start >= end", absence.ID))
		}
	}

	byWeekday := make(map[models.Weekday][]models.Availability)
	for _, row := range availabilities {
		if row.StartTime < 0 || row.EndTime > minutesPerDay || row.StartTime >= row.EndTime {
			return nil, appErrors.Clone(appErrors.ErrInvalidData,
				fmt.Sprintf("aggregate: availability %s has invalid window [%d,%d)", row.ID, row.StartTime, row.EndTime))
		}
		byWeekday[row.Weekday] = append(byWeekday[row.Weekday], row)
	}

	start := time.Date(horizonStart.Year(), horizonStart.Month(), horizonStart.Day(), 0, 0, 0, 0, horizonStart.Location())

	days := make([]planDay, 0, horizonDays)
	for offset := 0; offset < horizonDays; offset++ {
		date := start.AddDate(0, 0, offset)

		absent := make(map[string]bool)
		for _, absence := range absences {
			if absence.Covers(date) {
				absent[absence.UserID] = true
			}
		}

		day := planDay{date: date}
		for _, row := range byWeekday[models.WeekdayOf(date)] {
			if absent[row.UserID] {
				continue
			}
			priority := row.Priority
			if priority <= 0 {
				priority = 1
			}
			day.intervals = append(day.intervals, memberInterval{
				userID:   row.UserID,
				start:    row.StartTime,
				end:      row.EndTime,
				priority: priority,
			})
		}
		sort.Slice(day.intervals, func(i, j int) bool {
			a, b := day.intervals[i], day.intervals[j]
			if a.start != b.start {
				return a.start < b.start
			}
			if a.end != b.end {
				return a.end < b.end
			}
			return a.userID < b.userID
		})
		days = append(days, day)
	}
	return days, nil
}

// --- Stage 2: overlap sweep ---

type segment struct {
	start     int
	end       int
	attendees []string
	weight    int
}

func (s segment) length() int { return s.end - s.start }

// sweepDay partitions a date into maximal sub-intervals with a constant
// attendee set. Interval ends are exclusive, so a window closing at minute m
// and one opening at m are adjacent, never overlapping. A user with several
// overlapping windows counts once, at the highest active priority.
func sweepDay(intervals []memberInterval) []segment {
	if len(intervals) == 0 {
		return nil
	}

	boundarySet := make(map[int]struct{}, len(intervals)*2)
	for _, iv := range intervals {
		boundarySet[iv.start] = struct{}{}
		boundarySet[iv.end] = struct{}{}
	}
	boundaries := make([]int, 0, len(boundarySet))
	for b := range boundarySet {
		boundaries = append(boundaries, b)
	}
	sort.Ints(boundaries)

	var segments []segment
	for i := 0; i < len(boundaries)-1; i++ {
		lo, hi := boundaries[i], boundaries[i+1]

		priorities := make(map[string]int)
		for _, iv := range intervals {
			if iv.start <= lo && iv.end >= hi {
				if iv.priority > priorities[iv.userID] {
					priorities[iv.userID] = iv.priority
				}
			}
		}
		if len(priorities) == 0 {
			continue
		}

		attendees := make([]string, 0, len(priorities))
		weight := 0
		for userID, priority := range priorities {
			attendees = append(attendees, userID)
			weight += priority
		}
		sort.Strings(attendees)

		next := segment{start: lo, end: hi, attendees: attendees, weight: weight}
		if n := len(segments); n > 0 && mergeable(segments[n-1], next) {
			segments[n-1].end = next.end
			continue
		}
		segments = append(segments, next)
	}
	return segments
}

func distinctUsers(intervals []memberInterval) int {
	seen := make(map[string]struct{}, len(intervals))
	for _, iv := range intervals {
		seen[iv.userID] = struct{}{}
	}
	return len(seen)
}

func mergeable(prev, next segment) bool {
	if prev.end != next.start || prev.weight != next.weight {
		return false
	}
	if len(prev.attendees) != len(next.attendees) {
		return false
	}
	for i := range prev.attendees {
		if prev.attendees[i] != next.attendees[i] {
			return false
		}
	}
	return true
}

// --- Stage 3: slot candidates ---

type slotCandidate struct {
	date          time.Time
	startMinute   int
	duration      int
	attendeeCount int
	avgPriority   float64
	score         float64
}

// buildCandidates clips segments into admissible slot durations. One
// candidate per segment, anchored at the segment start: deterministic, and
// the clipped window always lies fully inside the overlap. Segments shorter
// than the minimum cannot host a slot and are dropped. A lone attendee can
// host a slot only when nobody else offered that date: two members with
// disjoint windows mean no shared training, not two trainings.
func buildCandidates(date time.Time, segments []segment, minSlotMinutes, maxSlotMinutes, totalMembers, dayUsers int) []slotCandidate {
	var candidates []slotCandidate
	for _, seg := range segments {
		if seg.length() < minSlotMinutes {
			continue
		}
		if dayUsers > 1 && len(seg.attendees) < 2 {
			continue
		}
		duration := seg.length()
		if duration > maxSlotMinutes {
			duration = maxSlotMinutes
		}
		count := len(seg.attendees)
		avgPriority := float64(seg.weight) / float64(count)
		candidates = append(candidates, slotCandidate{
			date:          date,
			startMinute:   seg.start,
			duration:      duration,
			attendeeCount: count,
			avgPriority:   avgPriority,
			score:         feasibilityScore(count, totalMembers, avgPriority),
		})
	}
	return candidates
}

func feasibilityScore(attendees, totalMembers int, avgPriority float64) float64 {
	coverage := 0.0
	if totalMembers > 0 {
		coverage = float64(attendees) / float64(totalMembers)
	}
	return clamp01(coverage*attendanceWeight + avgPriority/10*priorityWeight)
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// --- Stage 4: weekly selection ---

// selectWeekly picks at most one candidate per date and at most daysPerWeek
// dates, maximising total feasibility. Total duration tracks the weekly hour
// target softly: when it leaves the ±20% band, a single repair swap may trade
// the weakest accepted slot for an unaccepted candidate that moves the total
// strictly closer, as long as the set score drops no more than 10%.
func selectWeekly(candidates []slotCandidate, daysPerWeek, targetMinutes int) ([]slotCandidate, models.PlanStatus) {
	if len(candidates) == 0 {
		return nil, models.PlanInfeasible
	}

	ordered := make([]slotCandidate, len(candidates))
	copy(ordered, candidates)
	sort.Slice(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if a.score != b.score {
			return a.score > b.score
		}
		if !a.date.Equal(b.date) {
			return a.date.Before(b.date)
		}
		if a.attendeeCount != b.attendeeCount {
			return a.attendeeCount > b.attendeeCount
		}
		if a.duration != b.duration {
			return a.duration > b.duration
		}
		if da, db := dateKey(a.date), dateKey(b.date); da != db {
			return da < db
		}
		return a.startMinute < b.startMinute
	})

	claimed := make(map[string]bool)
	var accepted []slotCandidate
	for _, cand := range ordered {
		if len(accepted) >= daysPerWeek {
			break
		}
		key := dateKey(cand.date)
		if claimed[key] {
			continue
		}
		claimed[key] = true
		accepted = append(accepted, cand)
	}

	accepted = repairDuration(accepted, ordered, claimed, targetMinutes)

	status := models.PlanFeasible
	if len(accepted) < daysPerWeek {
		status = models.PlanPartiallyFeasible
	}
	return accepted, status
}

func repairDuration(accepted, ordered []slotCandidate, claimed map[string]bool, targetMinutes int) []slotCandidate {
	if len(accepted) == 0 || targetMinutes <= 0 {
		return accepted
	}

	total := 0
	scoreSum := 0.0
	for _, cand := range accepted {
		total += cand.duration
		scoreSum += cand.score
	}
	gap := math.Abs(float64(total - targetMinutes))
	if gap <= durationTolerance*float64(targetMinutes) {
		return accepted
	}

	lowest := 0
	for i, cand := range accepted {
		if cand.score < accepted[lowest].score {
			lowest = i
		}
	}
	removed := accepted[lowest]

	bestIdx := -1
	bestGap := gap
	for i, cand := range ordered {
		key := dateKey(cand.date)
		if key == dateKey(removed.date) {
			continue
		}
		if claimed[key] {
			continue
		}
		newTotal := total - removed.duration + cand.duration
		newGap := math.Abs(float64(newTotal - targetMinutes))
		if newGap >= gap {
			continue
		}
		newScoreSum := scoreSum - removed.score + cand.score
		if newScoreSum < scoreSum*(1-repairMaxScoreDrop) {
			continue
		}
		if newGap < bestGap {
			bestGap = newGap
			bestIdx = i
		}
	}
	if bestIdx < 0 {
		return accepted
	}

	repaired := make([]slotCandidate, 0, len(accepted))
	for i, cand := range accepted {
		if i == lowest {
			continue
		}
		repaired = append(repaired, cand)
	}
	repaired = append(repaired, ordered[bestIdx])
	delete(claimed, dateKey(removed.date))
	claimed[dateKey(ordered[bestIdx].date)] = true
	return repaired
}

func dateKey(date time.Time) string {
	return date.Format("2006-01-02")
}
