package handlers

import (
	"bytes"
	"fmt"
	"net/http"

	"finance-tracker/internal/export"
	"finance-tracker/internal/logging"
	"finance-tracker/internal/models"
)

// ExportViewModel is the data passed to the export page.
type ExportViewModel struct {
	ExpensesFile string
	IncomeFile   string
	WorkbookFile string
}

// ExportPage lists the available downloads.
func (h *Handlers) ExportPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "export.html", ExportViewModel{
		ExpensesFile: export.ExpensesFile,
		IncomeFile:   export.IncomeFile,
		WorkbookFile: export.WorkbookFile,
	})
}

// ExportExpenses downloads the user's expenses as expenses.csv.
func (h *Handlers) ExportExpenses(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)
	expenses, err := h.svc.Expenses(r.Context(), user.ID, models.DateRange{})
	if err != nil {
		h.logger(r).Error("export expenses", logging.FieldError, err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	var buf bytes.Buffer
	if err := export.WriteExpensesCSV(&buf, expenses); err != nil {
		h.logger(r).Error("write expenses csv", logging.FieldError, err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	download(w, export.ExpensesFile, "text/csv; charset=utf-8", buf.Bytes())
}

// ExportIncome downloads the user's income as income.csv.
func (h *Handlers) ExportIncome(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)
	incomes, err := h.svc.Income(r.Context(), user.ID, models.DateRange{})
	if err != nil {
		h.logger(r).Error("export income", logging.FieldError, err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	var buf bytes.Buffer
	if err := export.WriteIncomeCSV(&buf, incomes); err != nil {
		h.logger(r).Error("write income csv", logging.FieldError, err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	download(w, export.IncomeFile, "text/csv; charset=utf-8", buf.Bytes())
}

// ExportWorkbook downloads both tables as an XLSX workbook.
func (h *Handlers) ExportWorkbook(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)
	var buf bytes.Buffer
	if err := h.svc.ExportWorkbook(r.Context(), user.ID, &buf); err != nil {
		h.logger(r).Error("export workbook", logging.FieldError, err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	download(w, export.WorkbookFile,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

// download sends body as an attachment named name.
func download(w http.ResponseWriter, name, contentType string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Header().Set("Content-Length", fmt.Sprint(len(body)))
	_, _ = w.Write(body)
}
