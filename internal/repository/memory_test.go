package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/cuentasclaras/ledger-engine/internal/domain"
)

func seedTransaction(t *testing.T, store *MemoryStore, description string) *domain.Transaction {
	t.Helper()
	transaction := &domain.Transaction{
		ID:          uuid.New(),
		Type:        domain.TypeReceivable,
		Description: description,
		Amount:      decimal.NewFromInt(100),
		DueDate:     time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	assert.NoError(t, store.Create(context.Background(), transaction))
	return transaction
}

func TestMemoryStore_MissingRowsLookLikeSQL(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	_, err := store.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, sql.ErrNoRows)

	err = store.Delete(ctx, uuid.New())
	assert.ErrorIs(t, err, sql.ErrNoRows)

	err = store.DeletePayment(ctx, uuid.New())
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestMemoryStore_ListPreservesInsertionOrder(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	first := seedTransaction(t, store, "primera")
	second := seedTransaction(t, store, "segunda")
	third := seedTransaction(t, store, "tercera")

	assert.NoError(t, store.Delete(ctx, second.ID))

	transactions, err := store.List(ctx)
	assert.NoError(t, err)
	assert.Len(t, transactions, 2)
	assert.Equal(t, first.ID, transactions[0].ID)
	assert.Equal(t, third.ID, transactions[1].ID)
}

func TestMemoryStore_DeleteCascadesPayments(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	transaction := seedTransaction(t, store, "con abonos")
	other := seedTransaction(t, store, "sin tocar")

	payments := store.Payments()
	assert.NoError(t, payments.Create(ctx, &domain.Payment{
		ID:            uuid.New(),
		TransactionID: transaction.ID,
		Amount:        decimal.NewFromInt(10),
		Date:          time.Now(),
	}))
	assert.NoError(t, payments.Create(ctx, &domain.Payment{
		ID:            uuid.New(),
		TransactionID: other.ID,
		Amount:        decimal.NewFromInt(20),
		Date:          time.Now(),
	}))

	assert.NoError(t, store.Delete(ctx, transaction.ID))

	remaining, err := payments.ListAll(ctx)
	assert.NoError(t, err)
	assert.Len(t, remaining, 1)
	assert.Equal(t, other.ID, remaining[0].TransactionID)
}

func TestMemoryStore_ReplaceAllRestoresNestedPayments(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	seedTransaction(t, store, "se descarta")

	imported := &domain.Transaction{
		ID:          uuid.New(),
		Type:        domain.TypePayable,
		Description: "importada",
		Amount:      decimal.NewFromInt(500),
		DueDate:     time.Date(2030, 2, 1, 0, 0, 0, 0, time.UTC),
		Payments: []*domain.Payment{
			{ID: uuid.New(), Amount: decimal.NewFromInt(50), Date: time.Now()},
		},
	}
	imported.Payments[0].TransactionID = imported.ID

	assert.NoError(t, store.ReplaceAll(ctx, []*domain.Transaction{imported}))

	transactions, err := store.List(ctx)
	assert.NoError(t, err)
	assert.Len(t, transactions, 1)
	assert.Equal(t, imported.ID, transactions[0].ID)

	payments, err := store.GetByTransactionID(ctx, imported.ID)
	assert.NoError(t, err)
	assert.Len(t, payments, 1)
}

func TestMemoryStore_ReadsReturnClones(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	transaction := seedTransaction(t, store, "original")

	read, err := store.GetByID(ctx, transaction.ID)
	assert.NoError(t, err)
	read.Description = "mutada"

	again, err := store.GetByID(ctx, transaction.ID)
	assert.NoError(t, err)
	assert.Equal(t, "original", again.Description)
}
