package utils

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateOnly normalizes to the calendar date at UTC midnight. Comparisons then
// work on year/month/day alone, regardless of each value's zone.
func DateOnly(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// MonthsElapsed returns the number of whole calendar months between two dates
// as a year-month difference, clamped at zero. A due date in the future
// elapses no months.
func MonthsElapsed(from time.Time, to time.Time) int {
	months := (to.Year()-from.Year())*12 + int(to.Month()) - int(from.Month())
	if months < 0 {
		return 0
	}
	return months
}

// DaysUntilDue returns the whole days from asOf to dueDate, date-only.
// Negative when the due date has already passed.
func DaysUntilDue(dueDate time.Time, asOf time.Time) int {
	due := DateOnly(dueDate)
	ref := DateOnly(asOf)
	return int(due.Sub(ref).Hours() / 24)
}

// IsDateOverdue checks if a due date is strictly before the reference date,
// ignoring the time component.
func IsDateOverdue(dueDate time.Time, asOf time.Time) bool {
	return DateOnly(dueDate).Before(DateOnly(asOf))
}

// RoundMoney rounds to 2 decimal places for currency
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// DecimalFromString converts string to decimal.Decimal
func DecimalFromString(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(s)
}
