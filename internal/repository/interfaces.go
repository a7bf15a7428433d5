package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/cuentasclaras/ledger-engine/internal/domain"
)

// TransactionRepository defines the interface for transaction data operations
type TransactionRepository interface {
	// Create creates a new transaction
	Create(ctx context.Context, transaction *domain.Transaction) error

	// GetByID retrieves a transaction by its ID, without its payments
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error)

	// Update updates a transaction's mutable fields
	Update(ctx context.Context, transaction *domain.Transaction) error

	// Delete removes a transaction and cascades to its payments
	Delete(ctx context.Context, id uuid.UUID) error

	// List retrieves all transactions, without payments
	List(ctx context.Context) ([]*domain.Transaction, error)

	// ReplaceAll swaps the whole collection, payments included
	ReplaceAll(ctx context.Context, transactions []*domain.Transaction) error
}

// PaymentRepository defines the interface for payment data operations
type PaymentRepository interface {
	// Create creates a new payment record
	Create(ctx context.Context, payment *domain.Payment) error

	// GetByTransactionID retrieves all payments for a transaction
	GetByTransactionID(ctx context.Context, transactionID uuid.UUID) ([]*domain.Payment, error)

	// Delete removes a payment by its ID
	Delete(ctx context.Context, paymentID uuid.UUID) error

	// ListAll retrieves every payment across all transactions
	ListAll(ctx context.Context) ([]*domain.Payment, error)
}
