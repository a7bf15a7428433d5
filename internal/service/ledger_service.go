package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/cuentasclaras/ledger-engine/internal/config"
	"github.com/cuentasclaras/ledger-engine/internal/domain"
	"github.com/cuentasclaras/ledger-engine/internal/repository"
	customError "github.com/cuentasclaras/ledger-engine/pkg/errors"
	"github.com/cuentasclaras/ledger-engine/pkg/logger"
	"github.com/cuentasclaras/ledger-engine/pkg/utils"
)

const dateLayout = "2006-01-02"

type LedgerService struct {
	TransactionRepo repository.TransactionRepository
	PaymentRepo     repository.PaymentRepository
	redis           *redis.Client
	config          *config.Config
}

func NewLedgerService(
	transactionRepo repository.TransactionRepository,
	paymentRepo repository.PaymentRepository,
	redisClient *redis.Client,
	cfg *config.Config,
) *LedgerService {
	return &LedgerService{
		TransactionRepo: transactionRepo,
		PaymentRepo:     paymentRepo,
		redis:           redisClient,
		config:          cfg,
	}
}

// CreateTransaction validates the request and appends a new obligation to the
// collection. Type, amount and due date are immutable once created.
func (s *LedgerService) CreateTransaction(ctx context.Context, request *domain.CreateTransactionRequest) (*domain.Transaction, error) {
	if strings.TrimSpace(request.Description) == "" {
		return nil, customError.WrapValidation("description must not be empty")
	}
	if !request.Amount.IsPositive() {
		return nil, customError.WrapValidation("amount must be greater than zero")
	}
	if request.InterestRate.IsNegative() {
		return nil, customError.WrapValidation("interest rate must not be negative")
	}

	dueDate, err := time.Parse(dateLayout, request.DueDate)
	if err != nil {
		return nil, customError.WrapValidation("due date must be a valid date")
	}

	now := time.Now()
	transaction := &domain.Transaction{
		ID:           uuid.New(),
		Type:         request.Type,
		Description:  strings.TrimSpace(request.Description),
		Amount:       request.Amount,
		DueDate:      dueDate,
		InterestRate: request.InterestRate,
		TotalPaid:    decimal.Zero,
		CreatedAt:    now,
		UpdatedAt:    now,
		Payments:     []*domain.Payment{},
	}
	domain.RecomputeStatus(transaction, now)

	if err = s.TransactionRepo.Create(ctx, transaction); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	return transaction, nil
}

// GetTransaction returns a transaction with its payments attached.
func (s *LedgerService) GetTransaction(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	transaction, err := s.TransactionRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapTransactionNotFound(id.String())
		}
		return nil, customError.WrapDatabaseError(err)
	}

	payments, err := s.PaymentRepo.GetByTransactionID(ctx, id)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	transaction.Payments = payments

	return transaction, nil
}

// DeleteTransaction removes a transaction and all of its payments.
func (s *LedgerService) DeleteTransaction(ctx context.Context, id uuid.UUID) error {
	if _, err := s.TransactionRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return customError.WrapTransactionNotFound(id.String())
		}
		return customError.WrapDatabaseError(err)
	}

	if err := s.TransactionRepo.Delete(ctx, id); err != nil {
		return customError.WrapDatabaseError(err)
	}

	s.invalidateBalance(ctx, id)
	return nil
}

// AddPayment posts a payment against a transaction, resyncs the running
// total from the full payment set and recomputes the derived status. The
// overpayment policy is an advisory check at the boundary, not here.
func (s *LedgerService) AddPayment(ctx context.Context, transactionID uuid.UUID, amount decimal.Decimal, date time.Time, description string) (*domain.Payment, error) {
	if !amount.IsPositive() {
		return nil, customError.WrapValidation("payment amount must be greater than zero")
	}

	transaction, err := s.GetTransaction(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if date.IsZero() {
		date = utils.DateOnly(now)
	}
	if description == "" {
		description = s.config.Business.DefaultPaymentNote
	}

	payment := &domain.Payment{
		ID:            uuid.New(),
		TransactionID: transactionID,
		Amount:        amount,
		Date:          date,
		Description:   description,
		CreatedAt:     now,
	}

	if err = s.PaymentRepo.Create(ctx, payment); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	transaction.Payments = append(transaction.Payments, payment)
	domain.ResyncTotalPaid(transaction)
	domain.RecomputeStatus(transaction, now)

	if err = s.TransactionRepo.Update(ctx, transaction); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	s.invalidateBalance(ctx, transactionID)
	return payment, nil
}

// RemovePayment deletes a single posting and returns it for confirmation
// messaging. The total is resummed from the remaining set.
func (s *LedgerService) RemovePayment(ctx context.Context, transactionID uuid.UUID, paymentID uuid.UUID) (*domain.Payment, error) {
	transaction, err := s.GetTransaction(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	var removed *domain.Payment
	remaining := make([]*domain.Payment, 0, len(transaction.Payments))
	for _, payment := range transaction.Payments {
		if payment.ID == paymentID {
			removed = payment
			continue
		}
		remaining = append(remaining, payment)
	}
	if removed == nil {
		return nil, customError.WrapPaymentNotFound(paymentID.String())
	}

	if err = s.PaymentRepo.Delete(ctx, paymentID); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	transaction.Payments = remaining
	domain.ResyncTotalPaid(transaction)
	domain.RecomputeStatus(transaction, time.Now())

	if err = s.TransactionRepo.Update(ctx, transaction); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	s.invalidateBalance(ctx, transactionID)
	return removed, nil
}

// ListPayments returns the payment history sorted by date. History views read
// it descending, exports ascending.
func (s *LedgerService) ListPayments(ctx context.Context, transactionID uuid.UUID, order string) ([]*domain.Payment, error) {
	transaction, err := s.GetTransaction(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	payments := transaction.Payments
	sort.SliceStable(payments, func(i, j int) bool {
		if order == domain.SortDescending {
			return payments[i].Date.After(payments[j].Date)
		}
		return payments[i].Date.Before(payments[j].Date)
	})

	return payments, nil
}

// GenerateInstallments posts a series of scheduled payments, one at a time
// through AddPayment so balance and status stay correct after every single
// posting. There is no rollback if a step fails mid-batch, and no check that
// the series total matches the outstanding balance.
func (s *LedgerService) GenerateInstallments(ctx context.Context, transactionID uuid.UUID, request *domain.GenerateInstallmentsRequest) ([]*domain.Payment, error) {
	if request.Count > s.config.Business.MaxInstallments {
		return nil, customError.WrapValidation(fmt.Sprintf("installment count must not exceed %d", s.config.Business.MaxInstallments))
	}

	startDate, err := time.Parse(dateLayout, request.StartDate)
	if err != nil {
		return nil, customError.WrapValidation("start date must be a valid date")
	}

	template := request.Description
	if template == "" {
		template = s.config.Business.DefaultPaymentNote
	}

	payments := make([]*domain.Payment, 0, request.Count)
	date := startDate
	for i := 1; i <= request.Count; i++ {
		description := fmt.Sprintf("%s %d/%d", template, i, request.Count)

		payment, err := s.AddPayment(ctx, transactionID, request.Amount, date, description)
		if err != nil {
			return payments, err
		}
		payments = append(payments, payment)

		date = domain.NextInstallmentDate(date, request.Frequency)
	}

	return payments, nil
}

// GetBalance computes the outstanding figures as of a reference date.
// Today's result is cached in Redis and dropped on every ledger mutation.
func (s *LedgerService) GetBalance(ctx context.Context, transactionID uuid.UUID, asOf time.Time) (*domain.BalanceResponse, error) {
	if asOf.IsZero() {
		asOf = time.Now()
	}

	if cached := s.cachedBalance(ctx, transactionID, asOf); cached != nil {
		return cached, nil
	}

	transaction, err := s.GetTransaction(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	response := &domain.BalanceResponse{
		TransactionID: transactionID,
		Balance:       domain.CurrentBalance(transaction, asOf),
		Interest:      domain.ComputeInterest(transaction, asOf),
		TotalPaid:     transaction.TotalPaid,
		Status:        domain.RecomputeStatus(transaction, asOf),
	}

	s.cacheBalance(ctx, transactionID, asOf, response)
	return response, nil
}

// QueryTransactions applies the list-view filters and ordering: tab type,
// case-insensitive search over description or stringified amount, and the
// independent second type filter, ANDed together. Unpaid entries come first,
// then due date ascending.
func (s *LedgerService) QueryTransactions(ctx context.Context, params domain.QueryParams) ([]*domain.TransactionListItem, error) {
	if params.AsOf.IsZero() {
		params.AsOf = time.Now()
	}

	transactions, err := s.listWithPayments(ctx)
	if err != nil {
		return nil, err
	}

	searchTerm := strings.ToLower(params.SearchTerm)

	filtered := make([]*domain.Transaction, 0, len(transactions))
	for _, transaction := range transactions {
		if params.Type != "" && transaction.Type != params.Type {
			continue
		}
		if searchTerm != "" {
			matchesDescription := strings.Contains(strings.ToLower(transaction.Description), searchTerm)
			matchesAmount := strings.Contains(transaction.Amount.String(), searchTerm)
			if !matchesDescription && !matchesAmount {
				continue
			}
		}
		if params.FilterType != "" && params.FilterType != "all" && string(transaction.Type) != params.FilterType {
			continue
		}
		filtered = append(filtered, transaction)
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		if filtered[i].Paid != filtered[j].Paid {
			return !filtered[i].Paid
		}
		return filtered[i].DueDate.Before(filtered[j].DueDate)
	})

	items := make([]*domain.TransactionListItem, 0, len(filtered))
	for _, transaction := range filtered {
		items = append(items, &domain.TransactionListItem{
			Transaction: transaction,
			Balance:     domain.CurrentBalance(transaction, params.AsOf),
			Urgency:     domain.Urgency(transaction, params.AsOf, s.config.Business.DueSoonDays),
		})
	}

	return items, nil
}

// Totals sums the original amounts of unpaid transactions per direction.
func (s *LedgerService) Totals(ctx context.Context) (*domain.TotalsResponse, error) {
	transactions, err := s.TransactionRepo.List(ctx)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	totals := &domain.TotalsResponse{
		Receivable: decimal.Zero,
		Payable:    decimal.Zero,
	}
	for _, transaction := range transactions {
		if transaction.Paid {
			continue
		}
		switch transaction.Type {
		case domain.TypeReceivable:
			totals.Receivable = totals.Receivable.Add(transaction.Amount)
		case domain.TypePayable:
			totals.Payable = totals.Payable.Add(transaction.Amount)
		}
	}

	return totals, nil
}

// TogglePaid flips the manual paid override. It does not touch the derived
// status; the two signals stay independent.
func (s *LedgerService) TogglePaid(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	transaction, err := s.GetTransaction(ctx, id)
	if err != nil {
		return nil, err
	}

	transaction.Paid = !transaction.Paid
	transaction.UpdatedAt = time.Now()

	if err = s.TransactionRepo.Update(ctx, transaction); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	return transaction, nil
}

// RefreshStatuses recomputes every derived status and persists the ones that
// drifted, typically pending entries that crossed their due date overnight.
func (s *LedgerService) RefreshStatuses(ctx context.Context, asOf time.Time) (int, error) {
	if asOf.IsZero() {
		asOf = time.Now()
	}

	transactions, err := s.listWithPayments(ctx)
	if err != nil {
		return 0, err
	}

	changed := 0
	for _, transaction := range transactions {
		previous := transaction.Status
		if domain.RecomputeStatus(transaction, asOf) == previous {
			continue
		}
		if err = s.TransactionRepo.Update(ctx, transaction); err != nil {
			return changed, customError.WrapDatabaseError(err)
		}
		changed++
	}

	if changed > 0 {
		logger.Log.WithField("count", changed).Info("refreshed transaction statuses")
	}
	return changed, nil
}

// DueSoonTransactions returns unpaid transactions due within the configured
// warning window, for the reminder job.
func (s *LedgerService) DueSoonTransactions(ctx context.Context, asOf time.Time) ([]*domain.Transaction, error) {
	if asOf.IsZero() {
		asOf = time.Now()
	}

	transactions, err := s.TransactionRepo.List(ctx)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	dueSoon := make([]*domain.Transaction, 0)
	for _, transaction := range transactions {
		if transaction.Paid {
			continue
		}
		days := utils.DaysUntilDue(transaction.DueDate, asOf)
		if days >= 0 && days <= s.config.Business.DueSoonDays {
			dueSoon = append(dueSoon, transaction)
		}
	}

	return dueSoon, nil
}

// listWithPayments loads the whole collection with payments attached, using
// one query per table.
func (s *LedgerService) listWithPayments(ctx context.Context) ([]*domain.Transaction, error) {
	transactions, err := s.TransactionRepo.List(ctx)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	payments, err := s.PaymentRepo.ListAll(ctx)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	byTransaction := make(map[uuid.UUID][]*domain.Payment)
	for _, payment := range payments {
		byTransaction[payment.TransactionID] = append(byTransaction[payment.TransactionID], payment)
	}
	for _, transaction := range transactions {
		transaction.Payments = byTransaction[transaction.ID]
		if transaction.Payments == nil {
			transaction.Payments = []*domain.Payment{}
		}
	}

	return transactions, nil
}

func (s *LedgerService) balanceCacheKey(transactionID uuid.UUID, asOf time.Time) string {
	return fmt.Sprintf("balance:%s:%s", transactionID, asOf.Format(dateLayout))
}

// Only today's balance is cached; mutation invalidates today's key, so an
// arbitrary as-of date must never be served from a key that outlives it.
func (s *LedgerService) cachedBalance(ctx context.Context, transactionID uuid.UUID, asOf time.Time) *domain.BalanceResponse {
	if s.redis == nil || !isToday(asOf) {
		return nil
	}

	raw, err := s.redis.Get(ctx, s.balanceCacheKey(transactionID, asOf)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.Log.WithError(err).Warn("failed to read balance cache")
		}
		return nil
	}

	var response domain.BalanceResponse
	if err = json.Unmarshal([]byte(raw), &response); err != nil {
		logger.Log.WithError(err).Warn("discarding unreadable balance cache entry")
		return nil
	}
	return &response
}

func (s *LedgerService) cacheBalance(ctx context.Context, transactionID uuid.UUID, asOf time.Time, response *domain.BalanceResponse) {
	if s.redis == nil || !isToday(asOf) {
		return
	}

	raw, err := json.Marshal(response)
	if err != nil {
		return
	}

	key := s.balanceCacheKey(transactionID, asOf)
	if err := s.redis.Set(ctx, key, raw, s.config.Business.BalanceCacheTTL).Err(); err != nil {
		logger.Log.WithError(err).Warn("failed to cache balance")
	}
}

func isToday(t time.Time) bool {
	return utils.DateOnly(t).Equal(utils.DateOnly(time.Now()))
}

func (s *LedgerService) invalidateBalance(ctx context.Context, transactionID uuid.UUID) {
	if s.redis == nil {
		return
	}

	key := s.balanceCacheKey(transactionID, time.Now())
	if err := s.redis.Del(ctx, key).Err(); err != nil {
		logger.Log.WithError(err).Warn("failed to invalidate balance cache")
	}
}
