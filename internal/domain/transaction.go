package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Transaction direction: money owed to the holder vs money the holder owes.
type TransactionType string

const (
	TypeReceivable TransactionType = "receivable"
	TypePayable    TransactionType = "payable"
)

// Derived lifecycle statuses. Independent of the manual Paid flag.
const (
	StatusPending       = "pending"
	StatusPartiallyPaid = "partially_paid"
	StatusPaid          = "paid"
	StatusOverdue       = "overdue"
)

// Transaction represents a single tracked obligation.
type Transaction struct {
	ID           uuid.UUID       `json:"id" db:"id"`
	Type         TransactionType `json:"type" db:"type"`
	Description  string          `json:"description" db:"description"`
	Amount       decimal.Decimal `json:"amount" db:"amount"`
	DueDate      time.Time       `json:"due_date" db:"due_date"`
	InterestRate decimal.Decimal `json:"interest_rate" db:"interest_rate"`
	Paid         bool            `json:"paid" db:"paid"`
	TotalPaid    decimal.Decimal `json:"total_paid" db:"total_paid"`
	Status       string          `json:"status" db:"status"`
	CreatedAt    time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at" db:"updated_at"`
	Payments     []*Payment      `json:"payments" db:"-"`
}

// DTOs for requests and responses

type CreateTransactionRequest struct {
	Type         TransactionType `json:"type" validate:"required,oneof=receivable payable"`
	Description  string          `json:"description" validate:"required"`
	Amount       decimal.Decimal `json:"amount" validate:"required,decimal_gt=0"`
	DueDate      string          `json:"due_date" validate:"required,datetime=2006-01-02"`
	InterestRate decimal.Decimal `json:"interest_rate" validate:"decimal_gte=0"`
}

// QueryParams drive the list view: tab type filter, free-text search and a
// second independent type filter combined with AND.
type QueryParams struct {
	Type       TransactionType
	SearchTerm string
	FilterType string
	AsOf       time.Time
}

// TransactionListItem is one row of the list view, with the derived figures
// a presentation layer renders next to the stored fields.
type TransactionListItem struct {
	*Transaction
	Balance decimal.Decimal `json:"balance"`
	Urgency UrgencyBadge    `json:"urgency"`
}

type BalanceResponse struct {
	TransactionID uuid.UUID       `json:"transaction_id"`
	Balance       decimal.Decimal `json:"balance"`
	Interest      decimal.Decimal `json:"interest"`
	TotalPaid     decimal.Decimal `json:"total_paid"`
	Status        string          `json:"status"`
}

type TotalsResponse struct {
	Receivable decimal.Decimal `json:"receivable"`
	Payable    decimal.Decimal `json:"payable"`
}
