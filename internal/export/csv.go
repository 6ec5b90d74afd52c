// Package export writes a user's entries as CSV files and as an XLSX workbook.
package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"time"

	"finance-tracker/internal/models"
)

// File names produced by an export.
const (
	ExpensesFile = "expenses.csv"
	IncomeFile   = "income.csv"
)

var (
	ExpenseHeader = []string{"expense_id", "date", "category", "amount", "note", "payment_method"}
	IncomeHeader  = []string{"income_id", "date", "source", "amount", "note"}
)

// WriteExpensesCSV writes expenses under ExpenseHeader.
func WriteExpensesCSV(w io.Writer, expenses []models.Expense) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ExpenseHeader); err != nil {
		return err
	}
	for _, e := range expenses {
		if err := cw.Write([]string{
			strconv.FormatInt(e.ID, 10),
			e.Date.Format(models.DateLayout),
			e.Category,
			e.Amount.String(),
			e.Note,
			e.PaymentMethod,
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteIncomeCSV writes income rows under IncomeHeader.
func WriteIncomeCSV(w io.Writer, incomes []models.Income) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(IncomeHeader); err != nil {
		return err
	}
	for _, in := range incomes {
		if err := cw.Write([]string{
			strconv.FormatInt(in.ID, 10),
			in.Date.Format(models.DateLayout),
			in.Source,
			in.Amount.String(),
			in.Note,
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func readRecords(r io.Reader, header []string) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(header)
	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 || !slices.Equal(records[0], header) {
		return nil, errors.New("unexpected CSV header")
	}
	return records[1:], nil
}

// ReadExpensesCSV parses a file produced by WriteExpensesCSV.
func ReadExpensesCSV(r io.Reader) ([]models.Expense, error) {
	records, err := readRecords(r, ExpenseHeader)
	if err != nil {
		return nil, err
	}
	out := make([]models.Expense, 0, len(records))
	for i, rec := range records {
		id, date, amount, err := parseCommon(rec[0], rec[1], rec[3])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		out = append(out, models.Expense{
			ID: id, Date: date, Category: rec[2], Amount: amount, Note: rec[4], PaymentMethod: rec[5],
		})
	}
	return out, nil
}

// ReadIncomeCSV parses a file produced by WriteIncomeCSV.
func ReadIncomeCSV(r io.Reader) ([]models.Income, error) {
	records, err := readRecords(r, IncomeHeader)
	if err != nil {
		return nil, err
	}
	out := make([]models.Income, 0, len(records))
	for i, rec := range records {
		id, date, amount, err := parseCommon(rec[0], rec[1], rec[3])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		out = append(out, models.Income{
			ID: id, Date: date, Source: rec[2], Amount: amount, Note: rec[4],
		})
	}
	return out, nil
}

func parseCommon(rawID, rawDate, rawAmount string) (int64, time.Time, models.Money, error) {
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		return 0, time.Time{}, 0, fmt.Errorf("id %q: %w", rawID, err)
	}
	date, err := models.ParseDate(rawDate)
	if err != nil {
		return 0, time.Time{}, 0, err
	}
	amount, err := models.ParseMoney(rawAmount)
	if err != nil {
		return 0, time.Time{}, 0, fmt.Errorf("amount %q: %w", rawAmount, err)
	}
	return id, date, amount, nil
}

// WriteFiles writes ExpensesFile and IncomeFile into dir and returns their paths.
func WriteFiles(dir string, expenses []models.Expense, incomes []models.Income) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	expPath := filepath.Join(dir, ExpensesFile)
	incPath := filepath.Join(dir, IncomeFile)
	if err := writeFile(expPath, func(w io.Writer) error { return WriteExpensesCSV(w, expenses) }); err != nil {
		return nil, err
	}
	if err := writeFile(incPath, func(w io.Writer) error { return WriteIncomeCSV(w, incomes) }); err != nil {
		return nil, err
	}
	return []string{expPath, incPath}, nil
}

func writeFile(path string, write func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return write(f)
}
