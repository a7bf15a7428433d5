package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"

	"github.com/cuentasclaras/ledger-engine/internal/config"
	"github.com/cuentasclaras/ledger-engine/internal/domain"
	"github.com/cuentasclaras/ledger-engine/internal/repository"
	"github.com/cuentasclaras/ledger-engine/internal/service"
)

func newTestRouter() *mux.Router {
	cfg := &config.Config{
		Business: config.BusinessConfig{
			DueSoonDays:        3,
			DefaultPaymentNote: "Abono",
			MaxInstallments:    120,
		},
	}
	store := repository.NewMemoryStore()
	ledgerService := service.NewLedgerService(store, store.Payments(), nil, cfg)
	handler := NewLedgerHandler(ledgerService)

	router := mux.NewRouter()
	router.HandleFunc("/transactions", handler.CreateTransaction).Methods("POST")
	router.HandleFunc("/transactions", handler.ListTransactions).Methods("GET")
	router.HandleFunc("/transactions/{id}", handler.GetTransaction).Methods("GET")
	router.HandleFunc("/transactions/{id}", handler.DeleteTransaction).Methods("DELETE")
	router.HandleFunc("/transactions/{id}/paid", handler.TogglePaid).Methods("POST")
	router.HandleFunc("/transactions/{id}/balance", handler.GetBalance).Methods("GET")
	router.HandleFunc("/transactions/{id}/payments", handler.AddPayment).Methods("POST")
	router.HandleFunc("/transactions/{id}/payments", handler.ListPayments).Methods("GET")
	router.HandleFunc("/transactions/{id}/payments/export", handler.ExportPaymentsCSV).Methods("GET")
	router.HandleFunc("/transactions/{id}/payments/{paymentId}", handler.RemovePayment).Methods("DELETE")
	router.HandleFunc("/transactions/{id}/installments", handler.GenerateInstallments).Methods("POST")
	router.HandleFunc("/totals", handler.Totals).Methods("GET")
	router.HandleFunc("/export", handler.ExportJSON).Methods("GET")
	router.HandleFunc("/import", handler.ImportJSON).Methods("POST")
	return router
}

func doRequest(router *mux.Router, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		payload, _ := json.Marshal(body)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func createTestTransaction(t *testing.T, router *mux.Router, body map[string]interface{}) *domain.Transaction {
	t.Helper()
	recorder := doRequest(router, http.MethodPost, "/transactions", body)
	assert.Equal(t, http.StatusCreated, recorder.Code)

	var envelope struct {
		Success bool                `json:"success"`
		Data    *domain.Transaction `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))
	assert.True(t, envelope.Success)
	return envelope.Data
}

func TestCreateTransactionEndpoint(t *testing.T) {
	tests := []struct {
		name         string
		body         map[string]interface{}
		expectedCode int
	}{
		{
			name: "valid receivable",
			body: map[string]interface{}{
				"type":        "receivable",
				"description": "Préstamo a Juan",
				"amount":      "100",
				"due_date":    "2030-01-15",
			},
			expectedCode: http.StatusCreated,
		},
		{
			name: "unknown type",
			body: map[string]interface{}{
				"type":        "loan",
				"description": "Préstamo",
				"amount":      "100",
				"due_date":    "2030-01-15",
			},
			expectedCode: http.StatusBadRequest,
		},
		{
			name: "zero amount",
			body: map[string]interface{}{
				"type":        "receivable",
				"description": "Préstamo",
				"amount":      "0",
				"due_date":    "2030-01-15",
			},
			expectedCode: http.StatusBadRequest,
		},
		{
			name: "negative interest rate",
			body: map[string]interface{}{
				"type":          "receivable",
				"description":   "Préstamo",
				"amount":        "100",
				"due_date":      "2030-01-15",
				"interest_rate": "-2",
			},
			expectedCode: http.StatusBadRequest,
		},
		{
			name: "malformed due date",
			body: map[string]interface{}{
				"type":        "receivable",
				"description": "Préstamo",
				"amount":      "100",
				"due_date":    "15/01/2030",
			},
			expectedCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter()
			recorder := doRequest(router, http.MethodPost, "/transactions", tt.body)
			assert.Equal(t, tt.expectedCode, recorder.Code)
		})
	}
}

func TestGetTransactionEndpoint(t *testing.T) {
	router := newTestRouter()

	t.Run("invalid id is a bad request", func(t *testing.T) {
		recorder := doRequest(router, http.MethodGet, "/transactions/not-a-uuid", nil)
		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})

	t.Run("unknown id is not found", func(t *testing.T) {
		recorder := doRequest(router, http.MethodGet, "/transactions/b2f7f2a8-0000-4000-8000-000000000000", nil)
		assert.Equal(t, http.StatusNotFound, recorder.Code)
	})
}

func TestAddPaymentEndpoint(t *testing.T) {
	router := newTestRouter()
	transaction := createTestTransaction(t, router, map[string]interface{}{
		"type":        "receivable",
		"description": "Préstamo a Juan",
		"amount":      "100",
		"due_date":    "2030-01-15",
	})
	paymentsPath := fmt.Sprintf("/transactions/%s/payments", transaction.ID)

	t.Run("overpayment is rejected with conflict", func(t *testing.T) {
		recorder := doRequest(router, http.MethodPost, paymentsPath, map[string]interface{}{
			"amount": "150",
		})
		assert.Equal(t, http.StatusConflict, recorder.Code)
	})

	t.Run("payment up to the balance is accepted", func(t *testing.T) {
		recorder := doRequest(router, http.MethodPost, paymentsPath, map[string]interface{}{
			"amount": "100",
			"date":   "2026-01-10",
		})
		assert.Equal(t, http.StatusCreated, recorder.Code)

		var envelope struct {
			Data *domain.Payment `json:"data"`
		}
		assert.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))
		assert.Equal(t, "Abono", envelope.Data.Description)
	})

	t.Run("settled balance rejects any further payment", func(t *testing.T) {
		recorder := doRequest(router, http.MethodPost, paymentsPath, map[string]interface{}{
			"amount": "1",
		})
		assert.Equal(t, http.StatusConflict, recorder.Code)
	})

	t.Run("missing amount fails validation", func(t *testing.T) {
		recorder := doRequest(router, http.MethodPost, paymentsPath, map[string]interface{}{
			"description": "sin monto",
		})
		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})
}

func TestRemovePaymentEndpoint(t *testing.T) {
	router := newTestRouter()
	transaction := createTestTransaction(t, router, map[string]interface{}{
		"type":        "payable",
		"description": "Deuda tarjeta",
		"amount":      "200",
		"due_date":    "2030-01-15",
	})

	recorder := doRequest(router, http.MethodPost,
		fmt.Sprintf("/transactions/%s/payments", transaction.ID),
		map[string]interface{}{"amount": "50"})
	assert.Equal(t, http.StatusCreated, recorder.Code)

	var envelope struct {
		Data *domain.Payment `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))

	deletePath := fmt.Sprintf("/transactions/%s/payments/%s", transaction.ID, envelope.Data.ID)
	recorder = doRequest(router, http.MethodDelete, deletePath, nil)
	assert.Equal(t, http.StatusOK, recorder.Code)

	recorder = doRequest(router, http.MethodDelete, deletePath, nil)
	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestGenerateInstallmentsEndpoint(t *testing.T) {
	router := newTestRouter()
	transaction := createTestTransaction(t, router, map[string]interface{}{
		"type":        "receivable",
		"description": "Préstamo",
		"amount":      "300",
		"due_date":    "2030-01-15",
	})
	path := fmt.Sprintf("/transactions/%s/installments", transaction.ID)

	t.Run("unknown frequency fails validation", func(t *testing.T) {
		recorder := doRequest(router, http.MethodPost, path, map[string]interface{}{
			"amount":     "100",
			"frequency":  "daily",
			"start_date": "2026-01-15",
			"count":      3,
		})
		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})

	t.Run("valid series posts every installment", func(t *testing.T) {
		recorder := doRequest(router, http.MethodPost, path, map[string]interface{}{
			"amount":      "100",
			"frequency":   "monthly",
			"start_date":  "2026-01-15",
			"count":       3,
			"description": "Cuota",
		})
		assert.Equal(t, http.StatusCreated, recorder.Code)

		var envelope struct {
			Data []*domain.Payment `json:"data"`
		}
		assert.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))
		assert.Len(t, envelope.Data, 3)
		assert.Equal(t, "Cuota 3/3", envelope.Data[2].Description)
	})
}

func TestExportPaymentsCSVEndpoint(t *testing.T) {
	router := newTestRouter()
	transaction := createTestTransaction(t, router, map[string]interface{}{
		"type":        "receivable",
		"description": "Préstamo",
		"amount":      "100",
		"due_date":    "2030-01-15",
	})
	exportPath := fmt.Sprintf("/transactions/%s/payments/export", transaction.ID)

	t.Run("empty history is not found", func(t *testing.T) {
		recorder := doRequest(router, http.MethodGet, exportPath, nil)
		assert.Equal(t, http.StatusNotFound, recorder.Code)
	})

	t.Run("history downloads as an attachment", func(t *testing.T) {
		recorder := doRequest(router, http.MethodPost,
			fmt.Sprintf("/transactions/%s/payments", transaction.ID),
			map[string]interface{}{"amount": "40", "date": "2026-01-10"})
		assert.Equal(t, http.StatusCreated, recorder.Code)

		recorder = doRequest(router, http.MethodGet, exportPath, nil)
		assert.Equal(t, http.StatusOK, recorder.Code)
		assert.Contains(t, recorder.Header().Get("Content-Disposition"), "attachment")
		assert.Contains(t, recorder.Body.String(), "Fecha,Descripción,Monto")
	})
}

func TestImportEndpoint(t *testing.T) {
	router := newTestRouter()

	t.Run("malformed payload is a bad request", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/import", bytes.NewReader([]byte("{broken")))
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)
		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})

	t.Run("exported collection can be imported back", func(t *testing.T) {
		createTestTransaction(t, router, map[string]interface{}{
			"type":        "receivable",
			"description": "Préstamo",
			"amount":      "100",
			"due_date":    "2030-01-15",
		})

		recorder := doRequest(router, http.MethodGet, "/export", nil)
		assert.Equal(t, http.StatusOK, recorder.Code)

		req := httptest.NewRequest(http.MethodPost, "/import", bytes.NewReader(recorder.Body.Bytes()))
		importRecorder := httptest.NewRecorder()
		router.ServeHTTP(importRecorder, req)
		assert.Equal(t, http.StatusOK, importRecorder.Code)

		var envelope struct {
			Data map[string]int `json:"data"`
		}
		assert.NoError(t, json.Unmarshal(importRecorder.Body.Bytes(), &envelope))
		assert.Equal(t, 1, envelope.Data["imported"])
	})
}

func TestGetBalanceEndpoint_AsOf(t *testing.T) {
	router := newTestRouter()
	transaction := createTestTransaction(t, router, map[string]interface{}{
		"type":          "receivable",
		"description":   "Préstamo con interés",
		"amount":        "1000",
		"due_date":      "2030-01-15",
		"interest_rate": "2",
	})
	balancePath := fmt.Sprintf("/transactions/%s/balance", transaction.ID)

	t.Run("as_of shifts the interest window", func(t *testing.T) {
		recorder := doRequest(router, http.MethodGet, balancePath+"?as_of=2030-04-15", nil)
		assert.Equal(t, http.StatusOK, recorder.Code)

		var envelope struct {
			Data *domain.BalanceResponse `json:"data"`
		}
		assert.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))
		assert.Equal(t, "60", envelope.Data.Interest.String())
		assert.Equal(t, "1060", envelope.Data.Balance.String())
	})

	t.Run("omitted as_of means today", func(t *testing.T) {
		recorder := doRequest(router, http.MethodGet, balancePath, nil)
		assert.Equal(t, http.StatusOK, recorder.Code)

		var envelope struct {
			Data *domain.BalanceResponse `json:"data"`
		}
		assert.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))
		assert.Equal(t, "0", envelope.Data.Interest.String())
	})

	t.Run("malformed as_of is a bad request", func(t *testing.T) {
		recorder := doRequest(router, http.MethodGet, balancePath+"?as_of=15-04-2030", nil)
		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})
}

func TestListTransactionsEndpoint_AsOf(t *testing.T) {
	router := newTestRouter()
	createTestTransaction(t, router, map[string]interface{}{
		"type":        "receivable",
		"description": "Préstamo",
		"amount":      "100",
		"due_date":    "2030-01-15",
	})

	recorder := doRequest(router, http.MethodGet, "/transactions?as_of=2030-01-20", nil)
	assert.Equal(t, http.StatusOK, recorder.Code)

	var envelope struct {
		Data []*domain.TransactionListItem `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))
	assert.Len(t, envelope.Data, 1)
	assert.Equal(t, domain.UrgencyOverdue, envelope.Data[0].Urgency.Kind)
	assert.Equal(t, 5, envelope.Data[0].Urgency.Days)
}

func TestTotalsEndpoint(t *testing.T) {
	router := newTestRouter()
	createTestTransaction(t, router, map[string]interface{}{
		"type":        "receivable",
		"description": "Préstamo",
		"amount":      "100",
		"due_date":    "2030-01-15",
	})
	createTestTransaction(t, router, map[string]interface{}{
		"type":        "payable",
		"description": "Deuda",
		"amount":      "250",
		"due_date":    "2030-01-15",
	})

	recorder := doRequest(router, http.MethodGet, "/totals", nil)
	assert.Equal(t, http.StatusOK, recorder.Code)

	var envelope struct {
		Data *domain.TotalsResponse `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))
	assert.Equal(t, "100", envelope.Data.Receivable.String())
	assert.Equal(t, "250", envelope.Data.Payable.String())
}
