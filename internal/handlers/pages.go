package handlers

import (
	"cmp"
	"net/http"
	"slices"
	"strings"
	"time"

	"finance-tracker/internal/logging"
	"finance-tracker/internal/models"
	"finance-tracker/internal/tracker"

	"golang.org/x/sync/errgroup"
)

// CategoryDef defines the properties of a category.
type CategoryDef struct {
	ID    string
	Name  string
	Icon  string
	Color string
}

var categories = []CategoryDef{
	{"food", "Food", "🍽️", "#60a5fa"},
	{"transport", "Transport", "🚌", "#a78bfa"},
	{"entertainment", "Entertainment", "🎮", "#f472b6"},
	{"utilities", "Utilities", "💡", "#fbbf24"},
	{"housing", "Housing", "🏠", "#818cf8"},
	{"health", "Health", "💊", "#34d399"},
	{"gifts", "Gifts", "🎁", "#fb7185"},
	{"other", "Other", "📦", "#94a3b8"},
}

var paymentMethods = []string{"Cash", "Card", "Bank transfer", "Mobile money"}

var incomeSources = []string{"Salary", "Business", "Freelance", "Investment", "Gift", "Other"}

// CategoryStyle defines the visual style for a category.
type CategoryStyle struct {
	Icon  string
	Color string
}

var incomeStyle = CategoryStyle{Icon: "💰", Color: "#22c55e"}

func getCategoryStyle(category string) CategoryStyle {
	catLower := strings.ToLower(category)
	for _, c := range categories {
		if c.ID == catLower || strings.ToLower(c.Name) == catLower {
			return CategoryStyle{Icon: c.Icon, Color: c.Color}
		}
	}
	return CategoryStyle{Icon: "📦", Color: "#94a3b8"}
}

// HistoryItem is an expense or income row in the history list.
type HistoryItem struct {
	ID            int64
	Amount        models.Money
	Label         string
	Note          string
	Detail        string
	CategoryStyle CategoryStyle
	IsIncome      bool
}

// HistoryGroup groups entries by date.
type HistoryGroup struct {
	Title   string
	Date    string
	Income  models.Money
	Expense models.Money
	Items   []HistoryItem
}

// HistoryViewModel is the data passed to the list view template.
type HistoryViewModel struct {
	Month   MonthNav
	Income  models.Money
	Expense models.Money
	Groups  []HistoryGroup
}

// MonthNav describes the selected month and its neighbours.
type MonthNav struct {
	Year, Month         int
	MonthName           string
	PrevYear, PrevMonth int
	NextYear, NextMonth int
	IsCurrentMonth      bool
	Range               models.DateRange
}

// monthFromQuery reads ?year=&month=, defaulting to the current month.
func (h *Handlers) monthFromQuery(r *http.Request) MonthNav {
	now := h.now().UTC()
	year, month := now.Year(), int(now.Month())
	if y, err := parseIntParam(r, "year"); err == nil && y > 0 {
		year = y
	}
	if m, err := parseIntParam(r, "month"); err == nil && m >= 1 && m <= 12 {
		month = m
	}

	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	prev := first.AddDate(0, -1, 0)
	next := first.AddDate(0, 1, 0)
	return MonthNav{
		Year:           year,
		Month:          month,
		MonthName:      time.Month(month).String(),
		PrevYear:       prev.Year(),
		PrevMonth:      int(prev.Month()),
		NextYear:       next.Year(),
		NextMonth:      int(next.Month()),
		IsCurrentMonth: year == now.Year() && month == int(now.Month()),
		Range:          models.MonthRange(year, time.Month(month)),
	}
}

// History renders the month's expenses and income grouped by day.
func (h *Handlers) History(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)
	nav := h.monthFromQuery(r)

	var expenses []models.Expense
	var incomes []models.Income
	eg, ctx := errgroup.WithContext(r.Context())
	eg.Go(func() error {
		var err error
		expenses, err = h.svc.Expenses(ctx, user.ID, nav.Range)
		return err
	})
	eg.Go(func() error {
		var err error
		incomes, err = h.svc.Income(ctx, user.ID, nav.Range)
		return err
	})
	if err := eg.Wait(); err != nil {
		h.logger(r).Error("load history", logging.FieldError, err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	vm := HistoryViewModel{Month: nav}
	groups := make(map[string]*HistoryGroup)
	group := func(d time.Time) *HistoryGroup {
		key := d.Format(models.DateLayout)
		if g, ok := groups[key]; ok {
			return g
		}
		g := &HistoryGroup{Date: key, Title: h.formatGroupTitle(d)}
		groups[key] = g
		return g
	}

	for _, e := range expenses {
		g := group(e.Date)
		g.Expense += e.Amount
		vm.Expense += e.Amount
		g.Items = append(g.Items, HistoryItem{
			ID:            e.ID,
			Amount:        e.Amount,
			Label:         e.Category,
			Note:          e.Note,
			Detail:        e.PaymentMethod,
			CategoryStyle: getCategoryStyle(e.Category),
		})
	}
	for _, in := range incomes {
		g := group(in.Date)
		g.Income += in.Amount
		vm.Income += in.Amount
		g.Items = append(g.Items, HistoryItem{
			ID:            in.ID,
			Amount:        in.Amount,
			Label:         in.Source,
			Note:          in.Note,
			CategoryStyle: incomeStyle,
			IsIncome:      true,
		})
	}

	vm.Groups = make([]HistoryGroup, 0, len(groups))
	for _, g := range groups {
		vm.Groups = append(vm.Groups, *g)
	}
	slices.SortFunc(vm.Groups, func(a, b HistoryGroup) int { return cmp.Compare(b.Date, a.Date) })

	h.render(w, r, "list.html", vm)
}

// EntryFormViewModel is the data passed to the add-expense and add-income forms.
type EntryFormViewModel struct {
	Income     bool
	Errors     map[string]string
	Expense    tracker.ExpenseInput
	IncomeIn   tracker.IncomeInput
	Categories []CategoryDef
	Methods    []string
	Sources    []string
}

func (h *Handlers) entryForm(income bool) EntryFormViewModel {
	today := h.now().UTC().Format(models.DateLayout)
	return EntryFormViewModel{
		Income:     income,
		Expense:    tracker.ExpenseInput{Date: today},
		IncomeIn:   tracker.IncomeInput{Date: today},
		Categories: categories,
		Methods:    paymentMethods,
		Sources:    incomeSources,
	}
}

// ExpenseForm renders the add-expense form.
func (h *Handlers) ExpenseForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "entry.html", h.entryForm(false))
}

// IncomeForm renders the add-income form.
func (h *Handlers) IncomeForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "entry.html", h.entryForm(true))
}

// CreateExpense handles the add-expense form.
func (h *Handlers) CreateExpense(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	in := tracker.ExpenseInput{
		Amount:        r.FormValue("amount"),
		Category:      r.FormValue("category"),
		Date:          r.FormValue("date"),
		Note:          r.FormValue("note"),
		PaymentMethod: r.FormValue("payment_method"),
	}

	user := GetUserFromContext(r)
	if _, _, err := h.svc.AddExpense(r.Context(), user.ID, in); err != nil {
		if fields := formErrors(err); fields != nil {
			vm := h.entryForm(false)
			vm.Expense, vm.Errors = in, fields
			h.renderStatus(w, r, http.StatusUnprocessableEntity, "entry.html", vm)
			return
		}
		h.logger(r).Error("add expense", logging.FieldError, err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	redirectAfterPost(w, r, "/status")
}

// CreateIncome handles the add-income form.
func (h *Handlers) CreateIncome(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	in := tracker.IncomeInput{
		Amount: r.FormValue("amount"),
		Source: r.FormValue("source"),
		Date:   r.FormValue("date"),
		Note:   r.FormValue("note"),
	}

	user := GetUserFromContext(r)
	if _, _, err := h.svc.AddIncome(r.Context(), user.ID, in); err != nil {
		if fields := formErrors(err); fields != nil {
			vm := h.entryForm(true)
			vm.IncomeIn, vm.Errors = in, fields
			h.renderStatus(w, r, http.StatusUnprocessableEntity, "entry.html", vm)
			return
		}
		h.logger(r).Error("add income", logging.FieldError, err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	redirectAfterPost(w, r, "/status")
}

// StatusViewModel is the data passed to the budget status page.
type StatusViewModel struct {
	Month    MonthNav
	Overview *tracker.Overview
}

// Status renders totals, the overspend warning and goal progress.
func (h *Handlers) Status(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)
	nav := h.monthFromQuery(r)
	ov, err := h.svc.Overview(r.Context(), user.ID, nav.Range)
	if err != nil {
		h.logger(r).Error("load overview", logging.FieldError, err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	h.render(w, r, "status.html", StatusViewModel{Month: nav, Overview: ov})
}

// GoalsViewModel is the data passed to the budget goals page.
type GoalsViewModel struct {
	Month      MonthNav
	Goals      []tracker.GoalStatus
	Values     tracker.GoalInput
	Errors     map[string]string
	Categories []CategoryDef
}

func (h *Handlers) goalsView(r *http.Request) (GoalsViewModel, error) {
	user := GetUserFromContext(r)
	nav := h.monthFromQuery(r)
	goals, err := h.svc.GoalProgress(r.Context(), user.ID, nav.Range)
	if err != nil {
		return GoalsViewModel{}, err
	}
	return GoalsViewModel{Month: nav, Goals: goals, Categories: categories}, nil
}

// Goals renders the budget goals page.
func (h *Handlers) Goals(w http.ResponseWriter, r *http.Request) {
	vm, err := h.goalsView(r)
	if err != nil {
		h.logger(r).Error("load goals", logging.FieldError, err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	h.render(w, r, "goals.html", vm)
}

// SetGoal handles the set-budget-goal form.
func (h *Handlers) SetGoal(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	in := tracker.GoalInput{
		Category: r.FormValue("category"),
		Amount:   r.FormValue("amount"),
	}

	user := GetUserFromContext(r)
	if _, err := h.svc.SetBudgetGoal(r.Context(), user.ID, in); err != nil {
		fields := formErrors(err)
		if fields == nil {
			h.logger(r).Error("set goal", logging.FieldError, err)
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		vm, verr := h.goalsView(r)
		if verr != nil {
			h.logger(r).Error("load goals", logging.FieldError, verr)
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		vm.Values, vm.Errors = in, fields
		h.renderStatus(w, r, http.StatusUnprocessableEntity, "goals.html", vm)
		return
	}
	redirectAfterPost(w, r, "/goals")
}

func (h *Handlers) formatGroupTitle(date time.Time) string {
	dateStr := date.Format(models.DateLayout)
	now := h.now().UTC()
	if dateStr == now.Format(models.DateLayout) {
		return "TODAY"
	}
	if dateStr == now.AddDate(0, 0, -1).Format(models.DateLayout) {
		return "YESTERDAY"
	}
	return strings.ToUpper(date.Format("Mon, 02 Jan '06"))
}
