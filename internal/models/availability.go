package models

import (
	"strings"
	"time"
)

// Weekday names a day of the week as stored for recurring availability.
type Weekday string

// Weekday values, Monday first to match the planning week.
const (
	WeekdayMonday    Weekday = "MON"
	WeekdayTuesday   Weekday = "TUE"
	WeekdayWednesday Weekday = "WED"
	WeekdayThursday  Weekday = "THU"
	WeekdayFriday    Weekday = "FRI"
	WeekdaySaturday  Weekday = "SAT"
	WeekdaySunday    Weekday = "SUN"
)

var weekdayByTime = map[time.Weekday]Weekday{
	time.Monday:    WeekdayMonday,
	time.Tuesday:   WeekdayTuesday,
	time.Wednesday: WeekdayWednesday,
	time.Thursday:  WeekdayThursday,
	time.Friday:    WeekdayFriday,
	time.Saturday:  WeekdaySaturday,
	time.Sunday:    WeekdaySunday,
}

// WeekdayOf maps a calendar date to its stored weekday value.
func WeekdayOf(t time.Time) Weekday {
	return weekdayByTime[t.Weekday()]
}

// ParseWeekday validates a client-supplied weekday string.
func ParseWeekday(raw string) (Weekday, bool) {
	switch Weekday(strings.ToUpper(strings.TrimSpace(raw))) {
	case WeekdayMonday:
		return WeekdayMonday, true
	case WeekdayTuesday:
		return WeekdayTuesday, true
	case WeekdayWednesday:
		return WeekdayWednesday, true
	case WeekdayThursday:
		return WeekdayThursday, true
	case WeekdayFriday:
		return WeekdayFriday, true
	case WeekdaySaturday:
		return WeekdaySaturday, true
	case WeekdaySunday:
		return WeekdaySunday, true
	}
	return "", false
}

// Availability is a recurring weekly window in which a user is willing to
// train. Times are minutes since midnight. Rows are immutable; changes are
// delete + recreate.
type Availability struct {
	ID        string    `db:"id" json:"id"`
	TeamID    string    `db:"team_id" json:"team_id"`
	UserID    string    `db:"user_id" json:"user_id"`
	Weekday   Weekday   `db:"weekday" json:"weekday"`
	StartTime int       `db:"start_time" json:"start_time"`
	EndTime   int       `db:"end_time" json:"end_time"`
	Priority  int       `db:"priority" json:"priority"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Absence blocks a user for every calendar date intersecting [Start, End),
// overriding any recurring availability.
type Absence struct {
	ID        string    `db:"id" json:"id"`
	TeamID    string    `db:"team_id" json:"team_id"`
	UserID    string    `db:"user_id" json:"user_id"`
	Start     time.Time `db:"start" json:"start"`
	End       time.Time `db:"end" json:"end"`
	Reason    *string   `db:"reason" json:"reason,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Covers reports whether the absence blocks the given calendar date.
func (a Absence) Covers(date time.Time) bool {
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)
	return a.Start.Before(dayEnd) && a.End.After(dayStart)
}
