package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/cuentasclaras/ledger-engine/internal/domain"
	"github.com/cuentasclaras/ledger-engine/internal/service"
	customError "github.com/cuentasclaras/ledger-engine/pkg/errors"
	"github.com/cuentasclaras/ledger-engine/pkg/response"
)

type LedgerHandler struct {
	service   *service.LedgerService
	validator *validator.Validate
}

func NewLedgerHandler(ledgerService *service.LedgerService) *LedgerHandler {
	v := validator.New()
	registerDecimalValidations(v)

	return &LedgerHandler{
		service:   ledgerService,
		validator: v,
	}
}

func registerDecimalValidations(v *validator.Validate) {
	_ = v.RegisterValidation("decimal_gt", func(fl validator.FieldLevel) bool {
		value, ok := fl.Field().Interface().(decimal.Decimal)
		if !ok {
			return false
		}
		baseline, err := decimal.NewFromString(fl.Param())
		if err != nil {
			return false
		}
		return value.GreaterThan(baseline)
	})

	_ = v.RegisterValidation("decimal_gte", func(fl validator.FieldLevel) bool {
		value, ok := fl.Field().Interface().(decimal.Decimal)
		if !ok {
			return false
		}
		baseline, err := decimal.NewFromString(fl.Param())
		if err != nil {
			return false
		}
		return value.GreaterThanOrEqual(baseline)
	})
}

// CreateTransaction handles POST /transactions
func (h *LedgerHandler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	var request domain.CreateTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "Invalid request body", err)
		return
	}

	if err := h.validator.Struct(&request); err != nil {
		response.BadRequest(w, "Validation failed", err)
		return
	}

	transaction, err := h.service.CreateTransaction(r.Context(), &request)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.Created(w, transaction)
}

// ListTransactions handles GET /transactions
func (h *LedgerHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	asOf, ok := h.queryAsOf(w, r)
	if !ok {
		return
	}

	params := domain.QueryParams{
		Type:       domain.TransactionType(r.URL.Query().Get("type")),
		SearchTerm: r.URL.Query().Get("search"),
		FilterType: r.URL.Query().Get("filter"),
		AsOf:       asOf,
	}

	items, err := h.service.QueryTransactions(r.Context(), params)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.Success(w, items)
}

// GetTransaction handles GET /transactions/{id}
func (h *LedgerHandler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	transaction, err := h.service.GetTransaction(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.Success(w, transaction)
}

// DeleteTransaction handles DELETE /transactions/{id}
func (h *LedgerHandler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.service.DeleteTransaction(r.Context(), id); err != nil {
		h.writeError(w, err)
		return
	}

	response.Success(w, map[string]string{"deleted": id.String()})
}

// TogglePaid handles POST /transactions/{id}/paid
func (h *LedgerHandler) TogglePaid(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	transaction, err := h.service.TogglePaid(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.Success(w, transaction)
}

// GetBalance handles GET /transactions/{id}/balance
func (h *LedgerHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	asOf, ok := h.queryAsOf(w, r)
	if !ok {
		return
	}

	balance, err := h.service.GetBalance(r.Context(), id, asOf)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.Success(w, balance)
}

// AddPayment handles POST /transactions/{id}/payments. The overpayment
// policy lives here at the boundary: the ledger itself does not re-validate.
func (h *LedgerHandler) AddPayment(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	var request domain.AddPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "Invalid request body", err)
		return
	}

	if err := h.validator.Struct(&request); err != nil {
		response.BadRequest(w, "Validation failed", err)
		return
	}

	balance, err := h.service.GetBalance(r.Context(), id, time.Time{})
	if err != nil {
		h.writeError(w, err)
		return
	}
	if request.Amount.GreaterThan(balance.Balance) {
		h.writeError(w, customError.WrapOverpayment(request.Amount.String(), balance.Balance.String()))
		return
	}

	var date time.Time
	if request.Date != "" {
		date, err = time.Parse("2006-01-02", request.Date)
		if err != nil {
			response.BadRequest(w, "Invalid payment date", err)
			return
		}
	}

	payment, err := h.service.AddPayment(r.Context(), id, request.Amount, date, request.Description)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.Created(w, payment)
}

// ListPayments handles GET /transactions/{id}/payments
func (h *LedgerHandler) ListPayments(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	order := r.URL.Query().Get("order")
	if order == "" {
		order = domain.SortDescending
	}

	payments, err := h.service.ListPayments(r.Context(), id, order)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.Success(w, payments)
}

// RemovePayment handles DELETE /transactions/{id}/payments/{paymentId}
func (h *LedgerHandler) RemovePayment(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	paymentID, ok := h.pathID(w, r, "paymentId")
	if !ok {
		return
	}

	removed, err := h.service.RemovePayment(r.Context(), id, paymentID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.Success(w, removed)
}

// GenerateInstallments handles POST /transactions/{id}/installments
func (h *LedgerHandler) GenerateInstallments(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	var request domain.GenerateInstallmentsRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "Invalid request body", err)
		return
	}

	if err := h.validator.Struct(&request); err != nil {
		response.BadRequest(w, "Validation failed", err)
		return
	}

	payments, err := h.service.GenerateInstallments(r.Context(), id, &request)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.Created(w, payments)
}

// Totals handles GET /totals
func (h *LedgerHandler) Totals(w http.ResponseWriter, r *http.Request) {
	totals, err := h.service.Totals(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.Success(w, totals)
}

// ExportJSON handles GET /export
func (h *LedgerHandler) ExportJSON(w http.ResponseWriter, r *http.Request) {
	data, filename, err := h.service.ExportJSON(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.File(w, "application/json", filename, data)
}

// ImportJSON handles POST /import
func (h *LedgerHandler) ImportJSON(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		response.BadRequest(w, "Could not read request body", err)
		return
	}

	count, err := h.service.ImportJSON(r.Context(), payload)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.Success(w, map[string]int{"imported": count})
}

// ExportPaymentsCSV handles GET /transactions/{id}/payments/export
func (h *LedgerHandler) ExportPaymentsCSV(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	data, filename, err := h.service.ExportPaymentsCSV(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.File(w, "text/csv; charset=utf-8", filename, data)
}

// ExportSpreadsheet handles GET /export/spreadsheet
func (h *LedgerHandler) ExportSpreadsheet(w http.ResponseWriter, r *http.Request) {
	data, filename, err := h.service.ExportSpreadsheet(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.File(w, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", filename, data)
}

// queryAsOf reads the optional as_of reference date; zero means today.
func (h *LedgerHandler) queryAsOf(w http.ResponseWriter, r *http.Request) (time.Time, bool) {
	raw := r.URL.Query().Get("as_of")
	if raw == "" {
		return time.Time{}, true
	}

	asOf, err := time.Parse("2006-01-02", raw)
	if err != nil {
		response.BadRequest(w, "Invalid as_of date", err)
		return time.Time{}, false
	}
	return asOf, true
}

func (h *LedgerHandler) pathID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)[name])
	if err != nil {
		response.BadRequest(w, "Invalid id", err)
		return uuid.Nil, false
	}
	return id, true
}

func (h *LedgerHandler) writeError(w http.ResponseWriter, err error) {
	var businessErr *customError.BusinessError
	if !errors.As(err, &businessErr) {
		response.InternalServerError(w, "Unexpected error", err)
		return
	}

	switch businessErr.Code {
	case customError.ErrCodeTransactionNotFound, customError.ErrCodePaymentNotFound, customError.ErrCodeNothingToExport:
		response.NotFound(w, businessErr.Message)
	case customError.ErrCodeValidation, customError.ErrCodeImportParse:
		response.BadRequest(w, businessErr.Message, businessErr.Err)
	case customError.ErrCodeOverpayment:
		response.Conflict(w, businessErr.Message, businessErr.Err)
	default:
		response.InternalServerError(w, businessErr.Message, businessErr.Err)
	}
}
