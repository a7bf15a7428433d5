package repository

import (
	"context"
	"database/sql"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/cuentasclaras/ledger-engine/internal/domain"
)

// MemoryStore is an in-memory implementation of both repositories, used for
// tests and for running the engine against a throwaway collection. Missing
// rows surface as sql.ErrNoRows so callers treat both backends the same.
type MemoryStore struct {
	mu           sync.RWMutex
	transactions map[uuid.UUID]*domain.Transaction
	payments     map[uuid.UUID]*domain.Payment
	order        []uuid.UUID
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		transactions: make(map[uuid.UUID]*domain.Transaction),
		payments:     make(map[uuid.UUID]*domain.Payment),
	}
}

func (s *MemoryStore) Create(ctx context.Context, transaction *domain.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clone := *transaction
	clone.Payments = nil
	s.transactions[transaction.ID] = &clone
	s.order = append(s.order, transaction.ID)
	return nil
}

func (s *MemoryStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	transaction, ok := s.transactions[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *transaction
	return &clone, nil
}

func (s *MemoryStore) Update(ctx context.Context, transaction *domain.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.transactions[transaction.ID]; !ok {
		return sql.ErrNoRows
	}
	clone := *transaction
	clone.Payments = nil
	s.transactions[transaction.ID] = &clone
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.transactions[id]; !ok {
		return sql.ErrNoRows
	}
	delete(s.transactions, id)
	for paymentID, payment := range s.payments {
		if payment.TransactionID == id {
			delete(s.payments, paymentID)
		}
	}
	for i, txID := range s.order {
		if txID == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *MemoryStore) List(ctx context.Context) ([]*domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	transactions := make([]*domain.Transaction, 0, len(s.order))
	for _, id := range s.order {
		clone := *s.transactions[id]
		transactions = append(transactions, &clone)
	}
	return transactions, nil
}

func (s *MemoryStore) ReplaceAll(ctx context.Context, transactions []*domain.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.transactions = make(map[uuid.UUID]*domain.Transaction)
	s.payments = make(map[uuid.UUID]*domain.Payment)
	s.order = nil

	for _, transaction := range transactions {
		clone := *transaction
		clone.Payments = nil
		s.transactions[transaction.ID] = &clone
		s.order = append(s.order, transaction.ID)

		for _, payment := range transaction.Payments {
			paymentClone := *payment
			s.payments[payment.ID] = &paymentClone
		}
	}
	return nil
}

func (s *MemoryStore) CreatePayment(ctx context.Context, payment *domain.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clone := *payment
	s.payments[payment.ID] = &clone
	return nil
}

func (s *MemoryStore) GetByTransactionID(ctx context.Context, transactionID uuid.UUID) ([]*domain.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	payments := make([]*domain.Payment, 0)
	for _, payment := range s.payments {
		if payment.TransactionID == transactionID {
			clone := *payment
			payments = append(payments, &clone)
		}
	}
	sortPaymentsByDate(payments)
	return payments, nil
}

func (s *MemoryStore) DeletePayment(ctx context.Context, paymentID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.payments[paymentID]; !ok {
		return sql.ErrNoRows
	}
	delete(s.payments, paymentID)
	return nil
}

func (s *MemoryStore) ListAll(ctx context.Context) ([]*domain.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	payments := make([]*domain.Payment, 0, len(s.payments))
	for _, payment := range s.payments {
		clone := *payment
		payments = append(payments, &clone)
	}
	sortPaymentsByDate(payments)
	return payments, nil
}

// Payments returns a PaymentRepository view of the store.
func (s *MemoryStore) Payments() PaymentRepository {
	return &memoryPayments{store: s}
}

type memoryPayments struct {
	store *MemoryStore
}

func (m *memoryPayments) Create(ctx context.Context, payment *domain.Payment) error {
	return m.store.CreatePayment(ctx, payment)
}

func (m *memoryPayments) GetByTransactionID(ctx context.Context, transactionID uuid.UUID) ([]*domain.Payment, error) {
	return m.store.GetByTransactionID(ctx, transactionID)
}

func (m *memoryPayments) Delete(ctx context.Context, paymentID uuid.UUID) error {
	return m.store.DeletePayment(ctx, paymentID)
}

func (m *memoryPayments) ListAll(ctx context.Context) ([]*domain.Payment, error) {
	return m.store.ListAll(ctx)
}

func sortPaymentsByDate(payments []*domain.Payment) {
	sort.SliceStable(payments, func(i, j int) bool {
		return payments[i].Date.Before(payments[j].Date)
	})
}
