package handlers

import "net/http"

// Routes registers the web UI, the JSON API and static files.
func (h *Handlers) Routes(staticDir string) *http.ServeMux {
	mux := http.NewServeMux()

	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir(staticDir))))
	mux.HandleFunc("GET /healthz", h.Health)

	mux.HandleFunc("GET /login", h.LoginForm)
	mux.HandleFunc("POST /login", h.Login)
	mux.HandleFunc("GET /register", h.RegisterForm)
	mux.HandleFunc("POST /register", h.Register)
	mux.HandleFunc("POST /logout", h.Logout)

	web := func(fn http.HandlerFunc) http.Handler { return h.AuthMiddleware(fn) }
	mux.Handle("GET /{$}", web(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/status", http.StatusFound)
	}))
	mux.Handle("GET /status", web(h.Status))
	mux.Handle("GET /expenses", web(h.History))
	mux.Handle("GET /expenses/new", web(h.ExpenseForm))
	mux.Handle("POST /expenses", web(h.CreateExpense))
	mux.Handle("GET /income/new", web(h.IncomeForm))
	mux.Handle("POST /income", web(h.CreateIncome))
	mux.Handle("GET /chart", web(h.Statistics))
	mux.Handle("GET /goals", web(h.Goals))
	mux.Handle("POST /goals", web(h.SetGoal))
	mux.Handle("GET /export", web(h.ExportPage))
	mux.Handle("GET /export/expenses.csv", web(h.ExportExpenses))
	mux.Handle("GET /export/income.csv", web(h.ExportIncome))
	mux.Handle("GET /export/finance.xlsx", web(h.ExportWorkbook))

	mux.HandleFunc("POST /api/register", h.APIRegister)
	mux.HandleFunc("POST /api/login", h.APILogin)
	api := func(fn http.HandlerFunc) http.Handler { return h.APIAuthMiddleware(fn) }
	mux.Handle("GET /api/status", api(h.APIStatus))
	mux.Handle("GET /api/breakdown", api(h.APIBreakdown))
	mux.Handle("POST /api/expenses", api(h.APIAddExpense))
	mux.Handle("POST /api/incomes", api(h.APIAddIncome))
	mux.Handle("GET /api/goals", api(h.APIGoals))
	mux.Handle("POST /api/goals", api(h.APISetGoal))

	return mux
}
