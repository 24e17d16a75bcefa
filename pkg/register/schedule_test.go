package register

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func datePtr(y int, m time.Month, d int) *time.Time {
	t := date(y, m, d)
	return &t
}

func TestAdvance(t *testing.T) {
	base := date(2024, 1, 15)

	tests := []struct {
		frequency string
		want      time.Time
	}{
		{"daily", date(2024, 1, 16)},
		{"weekly", date(2024, 1, 22)},
		{"monthly", date(2024, 2, 15)},
		{"quarterly", date(2024, 4, 15)},
		{"half-yearly", date(2024, 7, 15)},
		{"halfyearly", date(2024, 7, 15)},
		{"yearly", date(2025, 1, 15)},
		{"annual", date(2025, 1, 15)},
		{"2nd year", date(2026, 1, 15)},
		{"3rd year", date(2027, 1, 15)},
		// case-insensitive, trimmed
		{"MONTHLY", date(2024, 2, 15)},
		{"  Quarterly  ", date(2024, 4, 15)},
		{"Half-Yearly", date(2024, 7, 15)},
		// unrecognized defaults to one year
		{"", date(2025, 1, 15)},
		{"fortnightly", date(2025, 1, 15)},
		{"asdf!!", date(2025, 1, 15)},
		{"2 years", date(2025, 1, 15)},
	}

	for _, tt := range tests {
		got := Advance(base, tt.frequency)
		assert.Equal(t, tt.want, got, "frequency %q", tt.frequency)
	}
}

func TestAdvanceIsTotalAndForward(t *testing.T) {
	base := date(2024, 6, 1)
	for _, freq := range []string{"daily", "weekly", "monthly", "quarterly", "half-yearly", "yearly", "2nd year", "3rd year", "garbage", ""} {
		got := Advance(base, freq)
		assert.True(t, got.After(base), "frequency %q must advance the date", freq)
	}
}

func TestNextDueFrequencyWithHistory(t *testing.T) {
	rec := Record{Frequency: "quarterly"}
	latest := &MaintenanceEvent{ServiceDate: datePtr(2024, 4, 6)}

	due := NextDue(rec, date(2023, 1, 1), latest)
	assert.Equal(t, date(2024, 7, 6), *due)
}

func TestNextDueFrequencyWithoutHistory(t *testing.T) {
	rec := Record{Frequency: "monthly"}

	due := NextDue(rec, date(2024, 1, 15), nil)
	assert.Equal(t, date(2024, 2, 15), *due)
}

func TestNextDueFrequencyWithHistoryButNoServiceDate(t *testing.T) {
	// A latest event with a nil service date still means "no usable
	// history": the registration date is the baseline.
	rec := Record{Frequency: "weekly"}
	latest := &MaintenanceEvent{ServiceDate: nil}

	due := NextDue(rec, date(2024, 3, 1), latest)
	assert.Equal(t, date(2024, 3, 8), *due)
}

func TestNextDueDirectFallback(t *testing.T) {
	rec := Record{Frequency: "", NextServiceDue: datePtr(2024, 12, 1)}

	due := NextDue(rec, date(2024, 1, 1), nil)
	assert.Equal(t, date(2024, 12, 1), *due)
}

func TestNextDueNothingSet(t *testing.T) {
	rec := Record{Frequency: "  ", NextServiceDue: nil}

	assert.Nil(t, NextDue(rec, date(2024, 1, 1), nil))
}

func TestNextDueFrequencyBeatsStoredDate(t *testing.T) {
	// Frequency-first: a stored next-service-due on the record is ignored
	// when a frequency is set.
	rec := Record{Frequency: "monthly", NextServiceDue: datePtr(2030, 1, 1)}
	latest := &MaintenanceEvent{ServiceDate: datePtr(2024, 5, 10)}

	due := NextDue(rec, date(2024, 1, 1), latest)
	assert.Equal(t, date(2024, 6, 10), *due)
}

func TestAvailability(t *testing.T) {
	label := "Under Repair"
	empty := "  "

	tests := []struct {
		name   string
		latest *AllocationEvent
		want   string
	}{
		{"no history", nil, "Available"},
		{"explicit label wins", &AllocationEvent{Status: &label, ActualReturnDate: datePtr(2024, 2, 1)}, "Under Repair"},
		{"open allocation", &AllocationEvent{ActualReturnDate: nil}, "Allocated"},
		{"closed without label", &AllocationEvent{ActualReturnDate: datePtr(2024, 2, 1)}, "Available"},
		{"blank label treated as absent", &AllocationEvent{Status: &empty, ActualReturnDate: nil}, "Allocated"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Availability(tt.latest))
		})
	}
}
