package domain

import (
	"time"

	"github.com/cuentasclaras/ledger-engine/pkg/utils"
)

// Urgency badge kinds for due-date display classification.
type UrgencyKind string

const (
	UrgencyPaid     UrgencyKind = "paid"
	UrgencyOverdue  UrgencyKind = "overdue"
	UrgencyDueToday UrgencyKind = "due_today"
	UrgencyDueSoon  UrgencyKind = "due_soon"
	UrgencyNone     UrgencyKind = "none"
)

// UrgencyBadge classifies a transaction's due date for display. Days carries
// the overdue or remaining day count where the kind needs one.
type UrgencyBadge struct {
	Kind UrgencyKind `json:"kind"`
	Days int         `json:"days,omitempty"`
}

// Urgency computes the display badge as of a reference date. Recomputed on
// every read, never persisted. The manual Paid flag wins over everything;
// dueSoonDays is the lookahead window for the due-soon warning.
func Urgency(t *Transaction, asOf time.Time, dueSoonDays int) UrgencyBadge {
	if t.Paid {
		return UrgencyBadge{Kind: UrgencyPaid}
	}

	days := utils.DaysUntilDue(t.DueDate, asOf)
	switch {
	case days < 0:
		return UrgencyBadge{Kind: UrgencyOverdue, Days: -days}
	case days == 0:
		return UrgencyBadge{Kind: UrgencyDueToday}
	case days <= dueSoonDays:
		return UrgencyBadge{Kind: UrgencyDueSoon, Days: days}
	default:
		return UrgencyBadge{Kind: UrgencyNone}
	}
}
