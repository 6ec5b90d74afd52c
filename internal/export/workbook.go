package export

import (
	"fmt"
	"io"

	"finance-tracker/internal/models"

	"github.com/xuri/excelize/v2"
)

// Sheet names in the exported workbook.
const (
	ExpensesSheet = "Expenses"
	IncomeSheet   = "Income"
)

// WorkbookFile is the suggested download name.
const WorkbookFile = "finance.xlsx"

// WriteWorkbook writes both tables as sheets of a single XLSX file.
func WriteWorkbook(w io.Writer, expenses []models.Expense, incomes []models.Income) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", ExpensesSheet); err != nil {
		return err
	}
	if _, err := f.NewSheet(IncomeSheet); err != nil {
		return err
	}

	expRows := make([][]any, 0, len(expenses))
	for _, e := range expenses {
		expRows = append(expRows, []any{
			e.ID, e.Date.Format(models.DateLayout), e.Category, e.Amount.Float(), e.Note, e.PaymentMethod,
		})
	}
	if err := writeSheet(f, ExpensesSheet, ExpenseHeader, expRows); err != nil {
		return err
	}

	incRows := make([][]any, 0, len(incomes))
	for _, in := range incomes {
		incRows = append(incRows, []any{
			in.ID, in.Date.Format(models.DateLayout), in.Source, in.Amount.Float(), in.Note,
		})
	}
	if err := writeSheet(f, IncomeSheet, IncomeHeader, incRows); err != nil {
		return err
	}

	f.SetActiveSheet(0)
	return f.Write(w)
}

func writeSheet(f *excelize.File, sheet string, header []string, rows [][]any) error {
	head := make([]any, len(header))
	for i, h := range header {
		head[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &head); err != nil {
		return err
	}
	for i, row := range rows {
		if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", i+2), &row); err != nil {
			return err
		}
	}

	style, err := f.NewStyle(&excelize.Style{NumFmt: 2}) // 0.00
	if err != nil {
		return err
	}
	if err := f.SetColStyle(sheet, "D", style); err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "B", "C", 15); err != nil {
		return err
	}
	return f.SetColWidth(sheet, "E", "E", 30)
}
