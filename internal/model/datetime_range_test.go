package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func ts(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestDateTimeRange_StartedDays(t *testing.T) {
	tests := []struct {
		name       string
		start, end string
		want       int
	}{
		{"same instant", "2025-01-01T10:00:00Z", "2025-01-01T10:00:00Z", 1},
		{"within one day", "2025-01-01T08:00:00Z", "2025-01-01T20:00:00Z", 1},
		{"midday to midday", "2025-01-01T12:00:00Z", "2025-01-02T12:00:00Z", 2},
		{"ends at midnight", "2024-12-15T08:00:00Z", "2025-01-01T00:00:00Z", 17},
		{"whole month", "2025-01-01T00:00:00Z", "2025-02-01T00:00:00Z", 31},
		{"ends mid day", "2025-02-01T00:00:00Z", "2025-02-15T16:00:00Z", 15},
		{"offset converted to utc", "2025-01-01T23:30:00-02:00", "2025-01-02T03:00:00Z", 1},
		{"reversed", "2025-01-05T00:00:00Z", "2025-01-01T00:00:00Z", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewDateTimeRange(ts(tt.start), ts(tt.end))
			assert.Equal(t, tt.want, r.StartedDays())
		})
	}
}

func TestDateTimeRange_StartedWeeks(t *testing.T) {
	assert.Equal(t, 1, NewDateTimeRange(ts("2025-01-01T00:00:00Z"), ts("2025-01-07T00:00:00Z")).StartedWeeks())
	assert.Equal(t, 1, NewDateTimeRange(ts("2025-01-01T00:00:00Z"), ts("2025-01-08T00:00:00Z")).StartedWeeks())
	assert.Equal(t, 2, NewDateTimeRange(ts("2025-01-01T00:00:00Z"), ts("2025-01-08T00:00:01Z")).StartedWeeks())
}

func TestDateTimeRange_Overlap(t *testing.T) {
	a := NewDateTimeRange(ts("2025-01-01T00:00:00Z"), ts("2025-01-10T00:00:00Z"))

	got, ok := a.Overlap(NewDateTimeRange(ts("2025-01-05T00:00:00Z"), ts("2025-01-20T00:00:00Z")))
	assert.True(t, ok)
	assert.Equal(t, ts("2025-01-05T00:00:00Z"), got.Start)
	assert.Equal(t, ts("2025-01-10T00:00:00Z"), got.End)

	_, ok = a.Overlap(NewDateTimeRange(ts("2025-01-10T00:00:00Z"), ts("2025-01-20T00:00:00Z")))
	assert.False(t, ok, "touching ranges do not overlap")

	_, ok = a.Overlap(NewDateTimeRange(ts("2025-01-08T00:00:00Z"), ts("2025-01-06T00:00:00Z")))
	assert.False(t, ok, "inverted ranges do not overlap")

	got, ok = BoundedRange(nil, nil).Overlap(a)
	assert.True(t, ok)
	assert.Equal(t, a, got)
}

func TestDateTimeRange_Contains(t *testing.T) {
	r := NewDateTimeRange(ts("2025-01-01T00:00:00Z"), ts("2025-01-02T00:00:00Z"))
	assert.True(t, r.Contains(ts("2025-01-01T00:00:00Z")))
	assert.True(t, r.Contains(ts("2025-01-01T23:59:59Z")))
	assert.False(t, r.Contains(ts("2025-01-02T00:00:00Z")))
	assert.False(t, r.IsEmpty())
	assert.True(t, NewDateTimeRange(r.End, r.Start).IsEmpty())
	assert.Equal(t, 1, r.Days())
}

func TestDateTimeRange_DaysOfUnboundedRange(t *testing.T) {
	r := BoundedRange(nil, nil)
	assert.Equal(t, 3652058, r.Days())
	assert.Equal(t, 3652059, r.StartedDays())

	open := BoundedRange(nil, ptr(ts("2025-01-01T00:00:00Z")))
	assert.Equal(t, 739251, open.Days())
	assert.Equal(t, 739251, open.StartedDays())
}

func TestDateTimeRange_DaysCountsWholePeriodsOnly(t *testing.T) {
	start := ts("2025-01-01T12:00:00Z")
	assert.Equal(t, 0, NewDateTimeRange(start, start.Add(24*time.Hour-time.Nanosecond)).Days())
	assert.Equal(t, 1, NewDateTimeRange(start, start.Add(24*time.Hour)).Days())
	assert.Equal(t, 2, NewDateTimeRange(start, ts("2025-01-03T13:00:00Z")).Days())
	assert.Equal(t, 0, NewDateTimeRange(start, ts("2024-12-01T00:00:00Z")).Days(), "reversed ranges are empty")
}
