package domain

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/cuentasclaras/ledger-engine/pkg/utils"
)

var hundred = decimal.NewFromInt(100)

// ComputeInterest returns the simple interest accrued on an overdue
// transaction: amount * rate/100 per whole calendar month past the due date,
// always on the original principal, never compounding.
func ComputeInterest(t *Transaction, asOf time.Time) decimal.Decimal {
	if t.InterestRate.IsZero() {
		return decimal.Zero
	}

	months := utils.MonthsElapsed(t.DueDate, asOf)
	if months == 0 {
		return decimal.Zero
	}

	return t.Amount.Mul(t.InterestRate.Div(hundred)).Mul(decimal.NewFromInt(int64(months)))
}

// CurrentBalance is the outstanding amount including accrued interest,
// floored at zero when payments exceed the total owed.
func CurrentBalance(t *Transaction, asOf time.Time) decimal.Decimal {
	balance := t.Amount.Add(ComputeInterest(t, asOf)).Sub(t.TotalPaid)
	if balance.IsNegative() {
		return decimal.Zero
	}
	return balance
}

// ResyncTotalPaid recomputes the cached total from the full payment set.
// A full resum, not an incremental add, so the cache can never drift.
func ResyncTotalPaid(t *Transaction) {
	total := decimal.Zero
	for _, p := range t.Payments {
		total = total.Add(p.Amount)
	}
	t.TotalPaid = total
}

// RecomputeStatus derives the lifecycle status, first match wins:
// settled balance, then partial payment, then overdue, then pending.
// The manual Paid flag is a separate signal and plays no part here.
func RecomputeStatus(t *Transaction, asOf time.Time) string {
	switch {
	case !CurrentBalance(t, asOf).IsPositive():
		t.Status = StatusPaid
	case t.TotalPaid.IsPositive():
		t.Status = StatusPartiallyPaid
	case utils.IsDateOverdue(t.DueDate, asOf):
		t.Status = StatusOverdue
	default:
		t.Status = StatusPending
	}
	return t.Status
}
