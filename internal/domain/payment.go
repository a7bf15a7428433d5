package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Payment is one posting against a transaction's balance. The date may be
// backdated or future-dated, independently of when it was entered.
type Payment struct {
	ID            uuid.UUID       `json:"id" db:"id"`
	TransactionID uuid.UUID       `json:"transaction_id" db:"transaction_id"`
	Amount        decimal.Decimal `json:"amount" db:"amount"`
	Date          time.Time       `json:"date" db:"date"`
	Description   string          `json:"description" db:"description"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
}

// Installment frequencies
const (
	FrequencyWeekly   = "weekly"
	FrequencyBiweekly = "biweekly"
	FrequencyMonthly  = "monthly"
	FrequencyCustom   = "custom"
)

// Payment history sort directions
const (
	SortAscending  = "asc"
	SortDescending = "desc"
)

type AddPaymentRequest struct {
	Amount      decimal.Decimal `json:"amount" validate:"required,decimal_gt=0"`
	Date        string          `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Description string          `json:"description"`
}

type GenerateInstallmentsRequest struct {
	Amount      decimal.Decimal `json:"amount" validate:"required,decimal_gt=0"`
	Frequency   string          `json:"frequency" validate:"required,oneof=weekly biweekly monthly custom"`
	StartDate   string          `json:"start_date" validate:"required,datetime=2006-01-02"`
	Count       int             `json:"count" validate:"required,gt=0"`
	Description string          `json:"description"`
}

// NextInstallmentDate advances a posting date by one frequency step. Monthly
// steps move the calendar month, so spacing varies with month length.
func NextInstallmentDate(current time.Time, frequency string) time.Time {
	switch frequency {
	case FrequencyWeekly:
		return current.AddDate(0, 0, 7)
	case FrequencyBiweekly:
		return current.AddDate(0, 0, 14)
	case FrequencyMonthly:
		return current.AddDate(0, 1, 0)
	default:
		return current.AddDate(0, 0, 30)
	}
}
