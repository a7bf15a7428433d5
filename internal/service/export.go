package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/cuentasclaras/ledger-engine/internal/domain"
	customError "github.com/cuentasclaras/ledger-engine/pkg/errors"
)

const displayDateLayout = "02/01/2006"

// ExportJSON serializes the whole collection, payments nested under their
// transactions, pretty-printed.
func (s *LedgerService) ExportJSON(ctx context.Context) ([]byte, string, error) {
	transactions, err := s.listWithPayments(ctx)
	if err != nil {
		return nil, "", err
	}

	data, err := json.MarshalIndent(transactions, "", "  ")
	if err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("cuentas-%s.json", time.Now().Format(dateLayout))
	return data, filename, nil
}

// ImportJSON replaces the whole collection with the provided payload. The
// payload is parsed before anything is touched, so a malformed file leaves
// the existing collection intact.
func (s *LedgerService) ImportJSON(ctx context.Context, payload []byte) (int, error) {
	var transactions []*domain.Transaction
	if err := json.Unmarshal(payload, &transactions); err != nil {
		return 0, customError.WrapImportParse(err)
	}

	if err := s.TransactionRepo.ReplaceAll(ctx, transactions); err != nil {
		return 0, customError.WrapDatabaseError(err)
	}

	for _, transaction := range transactions {
		s.invalidateBalance(ctx, transaction.ID)
	}

	return len(transactions), nil
}

// ExportPaymentsCSV renders one transaction's payment history, ascending by
// date, with quoted fields. Fails when there is nothing to export.
func (s *LedgerService) ExportPaymentsCSV(ctx context.Context, transactionID uuid.UUID) ([]byte, string, error) {
	transaction, err := s.GetTransaction(ctx, transactionID)
	if err != nil {
		return nil, "", err
	}

	if len(transaction.Payments) == 0 {
		return nil, "", customError.WrapNothingToExport("payments")
	}

	payments := transaction.Payments
	sort.SliceStable(payments, func(i, j int) bool {
		return payments[i].Date.Before(payments[j].Date)
	})

	var buf bytes.Buffer
	buf.WriteString("Fecha,Descripción,Monto\n")
	for _, payment := range payments {
		buf.WriteString(fmt.Sprintf("%s,%s,%s\n",
			csvQuote(payment.Date.Format(displayDateLayout)),
			csvQuote(payment.Description),
			csvQuote(payment.Amount.StringFixed(2)),
		))
	}

	filename := fmt.Sprintf("abonos_%s_%s.csv", sanitizeFilename(transaction.Description), time.Now().Format(dateLayout))
	return buf.Bytes(), filename, nil
}

// ExportSpreadsheet renders the full collection as a workbook with localized
// labels and human-formatted dates, one row per transaction.
func (s *LedgerService) ExportSpreadsheet(ctx context.Context) ([]byte, string, error) {
	transactions, err := s.TransactionRepo.List(ctx)
	if err != nil {
		return nil, "", customError.WrapDatabaseError(err)
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Transacciones"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, "", err
	}
	f.SetActiveSheet(index)
	_ = f.DeleteSheet("Sheet1")

	headers := []string{"Tipo", "Descripción", "Monto", "Moneda", "Fecha Vencimiento", "Estado", "Fecha Creación"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheetName, cell, header)
	}

	for i, transaction := range transactions {
		row := i + 2
		_ = f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), typeLabel(transaction.Type))
		_ = f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), transaction.Description)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), transaction.Amount.InexactFloat64())
		_ = f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), "$")
		_ = f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), transaction.DueDate.Format(displayDateLayout))
		_ = f.SetCellValue(sheetName, fmt.Sprintf("F%d", row), paidLabel(transaction.Paid))
		_ = f.SetCellValue(sheetName, fmt.Sprintf("G%d", row), transaction.CreatedAt.Format(displayDateLayout+" 15:04"))
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("cuentas-%s.xlsx", time.Now().Format(dateLayout))
	return buf.Bytes(), filename, nil
}

func typeLabel(t domain.TransactionType) string {
	if t == domain.TypeReceivable {
		return "Por Cobrar"
	}
	return "Por Pagar"
}

func paidLabel(paid bool) string {
	if paid {
		return "Pagado"
	}
	return "Pendiente"
}

// csvQuote wraps a field in double quotes, doubling embedded quotes.
func csvQuote(field string) string {
	return `"` + strings.ReplaceAll(field, `"`, `""`) + `"`
}

func sanitizeFilename(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	return b.String()
}
