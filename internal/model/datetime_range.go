package model

import (
	"fmt"
	"time"
)

var (
	// MinTime and MaxTime stand in for an unbounded schedule edge.
	MinTime = time.Date(1, 1, 1, 0, 0, 0, 0, time.UTC)
	MaxTime = time.Date(9999, 12, 31, 23, 59, 59, 0, time.UTC)
)

const secondsPerDay = 24 * 60 * 60

// DateTimeRange is the half-open interval [Start, End).
// A reversed range is tolerated and treated as empty, ending at Start.
type DateTimeRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func NewDateTimeRange(start, end time.Time) DateTimeRange {
	return DateTimeRange{Start: start, End: end}
}

// BoundedRange maps optional edges onto a concrete range, nil meaning unbounded.
func BoundedRange(start, end *time.Time) DateTimeRange {
	r := DateTimeRange{Start: MinTime, End: MaxTime}
	if start != nil {
		r.Start = *start
	}
	if end != nil {
		r.End = *end
	}
	return r
}

func (r DateTimeRange) last() time.Time {
	if r.End.Before(r.Start) {
		return r.Start
	}
	return r.End
}

// IsEmpty reports whether no instant lies inside the range.
func (r DateTimeRange) IsEmpty() bool {
	return !r.Start.Before(r.End)
}

func (r DateTimeRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && t.Before(r.End)
}

// Overlap returns the intersection of r and other. The boolean is false when
// the intersection is empty.
func (r DateTimeRange) Overlap(other DateTimeRange) (DateTimeRange, bool) {
	start := r.Start
	if other.Start.After(start) {
		start = other.Start
	}
	end := r.End
	if other.End.Before(end) {
		end = other.End
	}
	if !start.Before(end) {
		return DateTimeRange{}, false
	}
	return DateTimeRange{Start: start, End: end}, true
}

// Duration saturates for ranges longer than about 292 years, which includes
// any range with an unbounded edge. Use Days for those.
func (r DateTimeRange) Duration() time.Duration {
	return r.last().Sub(r.Start)
}

// Days is the number of whole 24 hour periods in the range.
func (r DateTimeRange) Days() int {
	start, end := r.Start, r.last()
	secs := end.Unix() - start.Unix()
	if end.Nanosecond() < start.Nanosecond() {
		secs--
	}
	return int(secs / secondsPerDay)
}

// StartedDays counts the calendar days (UTC) touched by the range. A day the
// range merely ends on at midnight is not counted; any other partial day is.
// The result is never below one.
func (r DateTimeRange) StartedDays() int {
	end := r.last().UTC()
	endDay := startOfDay(end)

	days := int((endDay.Unix() - startOfDay(r.Start).Unix()) / secondsPerDay)
	if !end.Equal(endDay) {
		days++
	}
	if days < 1 {
		return 1
	}
	return days
}

// StartedWeeks counts started weeks, rounding partial weeks up.
func (r DateTimeRange) StartedWeeks() int {
	return (r.StartedDays() + 6) / 7
}

func (r DateTimeRange) String() string {
	return fmt.Sprintf("[%s, %s)", r.Start.Format(time.RFC3339), r.End.Format(time.RFC3339))
}

func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
