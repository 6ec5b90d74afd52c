package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"finance-tracker/internal/auth"
	"finance-tracker/internal/logging"
	"finance-tracker/internal/models"
	"finance-tracker/internal/tracker"
)

const maxBodyBytes = 1 << 20

// amount accepts a JSON string ("12.50") or number (12.5).
type amount string

func (a *amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*a = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = amount(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*a = amount(n)
	return nil
}

type expenseRequest struct {
	Amount        amount `json:"amount"`
	Category      string `json:"category"`
	Date          string `json:"date"`
	Note          string `json:"note"`
	PaymentMethod string `json:"payment_method"`
}

type incomeRequest struct {
	Amount amount `json:"amount"`
	Source string `json:"source"`
	Date   string `json:"date"`
	Note   string `json:"note"`
}

type goalRequest struct {
	Category string `json:"category"`
	Amount   amount `json:"amount"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *models.User `json:"user"`
}

type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// APIAuthMiddleware requires a valid bearer token and loads its user.
func (h *Handlers) APIAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || raw == "" {
			w.Header().Set("WWW-Authenticate", `Bearer realm="api"`)
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "missing bearer token"})
			return
		}
		claims, err := h.tokens.Parse(strings.TrimSpace(raw))
		if err != nil {
			w.Header().Set("WWW-Authenticate", `Bearer realm="api", error="invalid_token"`)
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "invalid token"})
			return
		}
		userID, _ := claims.UserID()
		user, err := h.svc.User(r.Context(), userID)
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "invalid token"})
			return
		}
		ctx := context.WithValue(r.Context(), UserContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// APIRegister creates an account.
func (h *Handlers) APIRegister(w http.ResponseWriter, r *http.Request) {
	var in tracker.RegisterInput
	if !h.decode(w, r, &in) {
		return
	}
	user, err := h.svc.Register(r.Context(), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

// APILogin exchanges credentials for an access token.
func (h *Handlers) APILogin(w http.ResponseWriter, r *http.Request) {
	var in loginRequest
	if !h.decode(w, r, &in) {
		return
	}
	user, err := h.svc.Login(r.Context(), in.Username, in.Password)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	token, exp, err := h.tokens.Issue(user.ID, user.Username)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{Token: token, ExpiresAt: exp.UTC(), User: user})
}

// APIStatus returns the caller's budget status.
func (h *Handlers) APIStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.svc.BudgetStatus(r.Context(), GetUserFromContext(r).ID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

// APIBreakdown returns expenses by category. ?from= and ?to= are inclusive
// dates; both default to unbounded.
func (h *Handlers) APIBreakdown(w http.ResponseWriter, r *http.Request) {
	rng, err := rangeFromQuery(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	rows, err := h.svc.Breakdown(r.Context(), GetUserFromContext(r).ID, rng)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if rows == nil {
		rows = []models.CategoryShare{}
	}
	writeJSON(w, http.StatusOK, rows)
}

type expenseResponse struct {
	Expense *models.Expense       `json:"expense"`
	Status  *tracker.BudgetStatus `json:"status"`
}

type incomeResponse struct {
	Income *models.Income        `json:"income"`
	Status *tracker.BudgetStatus `json:"status"`
}

// APIAddExpense records an expense.
func (h *Handlers) APIAddExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if !h.decode(w, r, &req) {
		return
	}
	e, status, err := h.svc.AddExpense(r.Context(), GetUserFromContext(r).ID, tracker.ExpenseInput{
		Amount:        string(req.Amount),
		Category:      req.Category,
		Date:          req.Date,
		Note:          req.Note,
		PaymentMethod: req.PaymentMethod,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, expenseResponse{Expense: e, Status: status})
}

// APIAddIncome records income.
func (h *Handlers) APIAddIncome(w http.ResponseWriter, r *http.Request) {
	var req incomeRequest
	if !h.decode(w, r, &req) {
		return
	}
	in, status, err := h.svc.AddIncome(r.Context(), GetUserFromContext(r).ID, tracker.IncomeInput{
		Amount: string(req.Amount),
		Source: req.Source,
		Date:   req.Date,
		Note:   req.Note,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, incomeResponse{Income: in, Status: status})
}

// APISetGoal creates or replaces a budget goal.
func (h *Handlers) APISetGoal(w http.ResponseWriter, r *http.Request) {
	var req goalRequest
	if !h.decode(w, r, &req) {
		return
	}
	goal, err := h.svc.SetBudgetGoal(r.Context(), GetUserFromContext(r).ID, tracker.GoalInput{
		Category: req.Category,
		Amount:   string(req.Amount),
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, goal)
}

// APIGoals returns goal progress for the current month.
func (h *Handlers) APIGoals(w http.ResponseWriter, r *http.Request) {
	goals, err := h.svc.GoalProgress(r.Context(), GetUserFromContext(r).ID, h.monthFromQuery(r).Range)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if goals == nil {
		goals = []tracker.GoalStatus{}
	}
	writeJSON(w, http.StatusOK, goals)
}

func rangeFromQuery(r *http.Request) (models.DateRange, error) {
	var rng models.DateRange
	q := r.URL.Query()
	if v := q.Get("from"); v != "" {
		d, err := models.ParseDate(v)
		if err != nil {
			return rng, err
		}
		rng.From = d
	}
	if v := q.Get("to"); v != "" {
		d, err := models.ParseDate(v)
		if err != nil {
			return rng, err
		}
		rng.To = d.AddDate(0, 0, 1)
	}
	return rng, nil
}

func (h *Handlers) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return false
	}
	return true
}

// writeError maps service errors onto status codes.
func (h *Handlers) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *tracker.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: "validation failed", Fields: verr.Fields})
	case errors.Is(err, tracker.ErrPasswordMismatch):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, tracker.ErrUserExists):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	case errors.Is(err, tracker.ErrInvalidCredentials), errors.Is(err, auth.ErrInvalidToken):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: err.Error()})
	default:
		h.logger(r).Error("api request failed", logging.FieldPath, r.URL.Path, logging.FieldError, err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
