package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/cuentasclaras/ledger-engine/internal/domain"
)

type transactionRepository struct {
	db *sqlx.DB
}

func NewTransactionRepository(db *sqlx.DB) TransactionRepository {
	return &transactionRepository{db: db}
}

func (r *transactionRepository) Create(ctx context.Context, transaction *domain.Transaction) error {
	query := `
		INSERT INTO transactions (id, type, description, amount, due_date, interest_rate, paid, total_paid, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.db.ExecContext(ctx, query,
		transaction.ID,
		transaction.Type,
		transaction.Description,
		transaction.Amount,
		transaction.DueDate,
		transaction.InterestRate,
		transaction.Paid,
		transaction.TotalPaid,
		transaction.Status,
		transaction.CreatedAt,
		transaction.UpdatedAt,
	)

	return err
}

func (r *transactionRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	query := `
		SELECT id, type, description, amount, due_date, interest_rate, paid, total_paid, status, created_at, updated_at
		FROM transactions
		WHERE id = $1
	`

	var transaction domain.Transaction
	err := r.db.GetContext(ctx, &transaction, query, id)
	if err != nil {
		return nil, err
	}

	return &transaction, nil
}

func (r *transactionRepository) Update(ctx context.Context, transaction *domain.Transaction) error {
	query := `
		UPDATE transactions
		SET paid = $2, total_paid = $3, status = $4, updated_at = $5
		WHERE id = $1
	`

	_, err := r.db.ExecContext(ctx, query,
		transaction.ID,
		transaction.Paid,
		transaction.TotalPaid,
		transaction.Status,
		transaction.UpdatedAt,
	)

	return err
}

func (r *transactionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err = tx.ExecContext(ctx, `DELETE FROM payments WHERE transaction_id = $1`, id); err != nil {
		return err
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM transactions WHERE id = $1`, id); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *transactionRepository) List(ctx context.Context) ([]*domain.Transaction, error) {
	query := `
		SELECT id, type, description, amount, due_date, interest_rate, paid, total_paid, status, created_at, updated_at
		FROM transactions
		ORDER BY due_date
	`

	transactions := make([]*domain.Transaction, 0)
	err := r.db.SelectContext(ctx, &transactions, query)
	if err != nil {
		return nil, err
	}

	return transactions, nil
}

func (r *transactionRepository) ReplaceAll(ctx context.Context, transactions []*domain.Transaction) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err = tx.ExecContext(ctx, `DELETE FROM payments`); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM transactions`); err != nil {
		return err
	}

	insertTransaction := `
		INSERT INTO transactions (id, type, description, amount, due_date, interest_rate, paid, total_paid, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	insertPayment := `
		INSERT INTO payments (id, transaction_id, amount, date, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	for _, transaction := range transactions {
		_, err = tx.ExecContext(ctx, insertTransaction,
			transaction.ID,
			transaction.Type,
			transaction.Description,
			transaction.Amount,
			transaction.DueDate,
			transaction.InterestRate,
			transaction.Paid,
			transaction.TotalPaid,
			transaction.Status,
			transaction.CreatedAt,
			transaction.UpdatedAt,
		)
		if err != nil {
			return err
		}

		for _, payment := range transaction.Payments {
			_, err = tx.ExecContext(ctx, insertPayment,
				payment.ID,
				payment.TransactionID,
				payment.Amount,
				payment.Date,
				payment.Description,
				payment.CreatedAt,
			)
			if err != nil {
				return err
			}
		}
	}

	return tx.Commit()
}
