package utils

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestMonthsElapsed(t *testing.T) {
	tests := []struct {
		name     string
		from     time.Time
		to       time.Time
		expected int
	}{
		{
			name:     "three full months",
			from:     time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
			to:       time.Date(2024, 4, 15, 0, 0, 0, 0, time.UTC),
			expected: 3,
		},
		{
			name:     "same month",
			from:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			to:       time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
			expected: 0,
		},
		{
			name:     "year boundary",
			from:     time.Date(2023, 11, 10, 0, 0, 0, 0, time.UTC),
			to:       time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC),
			expected: 3,
		},
		{
			name:     "due date in the future clamps to zero",
			from:     time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
			to:       time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
			expected: 0,
		},
		{
			name:     "month difference ignores day of month",
			from:     time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
			to:       time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
			expected: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, MonthsElapsed(tt.from, tt.to))
		})
	}
}

func TestDateOnly_NormalizesAcrossZones(t *testing.T) {
	bogota := time.FixedZone("UTC-5", -5*60*60)

	// Same calendar day in different zones normalizes to the same instant.
	local := time.Date(2026, 8, 29, 10, 0, 0, 0, bogota)
	utc := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)
	assert.True(t, DateOnly(local).Equal(DateOnly(utc)))
	assert.Equal(t, time.UTC, DateOnly(local).Location())
}

func TestDaysUntilDue_MixedZones(t *testing.T) {
	bogota := time.FixedZone("UTC-5", -5*60*60)
	asOf := time.Date(2026, 8, 29, 10, 0, 0, 0, bogota)

	tests := []struct {
		name     string
		dueDate  time.Time
		expected int
	}{
		{
			name:     "due today across zones",
			dueDate:  time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC),
			expected: 0,
		},
		{
			name:     "due in three days across zones",
			dueDate:  time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
			expected: 3,
		},
		{
			name:     "one day overdue across zones",
			dueDate:  time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC),
			expected: -1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DaysUntilDue(tt.dueDate, asOf))
		})
	}
}

func TestDaysUntilDue(t *testing.T) {
	asOf := time.Date(2024, 3, 10, 15, 30, 0, 0, time.UTC)

	tests := []struct {
		name     string
		dueDate  time.Time
		expected int
	}{
		{
			name:     "due in three days",
			dueDate:  time.Date(2024, 3, 13, 0, 0, 0, 0, time.UTC),
			expected: 3,
		},
		{
			name:     "due today ignores time of day",
			dueDate:  time.Date(2024, 3, 10, 23, 59, 0, 0, time.UTC),
			expected: 0,
		},
		{
			name:     "five days overdue",
			dueDate:  time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
			expected: -5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DaysUntilDue(tt.dueDate, asOf))
		})
	}
}

func TestIsDateOverdue(t *testing.T) {
	asOf := time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC)

	assert.True(t, IsDateOverdue(time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC), asOf))
	assert.False(t, IsDateOverdue(time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), asOf))
	assert.False(t, IsDateOverdue(time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC), asOf))

	// A UTC-midnight due date is not overdue on the same calendar day in a
	// zone behind UTC, even though the local clock is past that instant.
	bogota := time.FixedZone("UTC-5", -5*60*60)
	assert.False(t, IsDateOverdue(
		time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 8, 29, 10, 0, 0, 0, bogota),
	))
}

func TestRoundMoney(t *testing.T) {
	assert.True(t, RoundMoney(decimal.NewFromFloat(10.005)).Equal(decimal.NewFromFloat(10.01)))
	assert.True(t, RoundMoney(decimal.NewFromFloat(10.004)).Equal(decimal.NewFromFloat(10.00)))
}
