package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/cuentasclaras/ledger-engine/internal/domain"
)

type paymentRepository struct {
	db *sqlx.DB
}

func NewPaymentRepository(db *sqlx.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	query := `
		INSERT INTO payments (id, transaction_id, amount, date, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.ExecContext(ctx, query,
		payment.ID,
		payment.TransactionID,
		payment.Amount,
		payment.Date,
		payment.Description,
		payment.CreatedAt,
	)

	return err
}

func (r *paymentRepository) GetByTransactionID(ctx context.Context, transactionID uuid.UUID) ([]*domain.Payment, error) {
	query := `
		SELECT id, transaction_id, amount, date, description, created_at
		FROM payments
		WHERE transaction_id = $1
		ORDER BY date
	`

	payments := make([]*domain.Payment, 0)
	err := r.db.SelectContext(ctx, &payments, query, transactionID)
	if err != nil {
		return nil, err
	}

	return payments, nil
}

func (r *paymentRepository) Delete(ctx context.Context, paymentID uuid.UUID) error {
	query := `DELETE FROM payments WHERE id = $1`

	_, err := r.db.ExecContext(ctx, query, paymentID)
	return err
}

func (r *paymentRepository) ListAll(ctx context.Context) ([]*domain.Payment, error) {
	query := `
		SELECT id, transaction_id, amount, date, description, created_at
		FROM payments
		ORDER BY date
	`

	payments := make([]*domain.Payment, 0)
	err := r.db.SelectContext(ctx, &payments, query)
	if err != nil {
		return nil, err
	}

	return payments, nil
}
