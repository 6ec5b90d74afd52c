package handlers

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"finance-tracker/internal/auth"
	"finance-tracker/internal/export"
	"finance-tracker/internal/logging"
	"finance-tracker/internal/models"
	"finance-tracker/internal/storage"
	"finance-tracker/internal/tracker"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"
)

const (
	templateDir = "../../web/templates"
	staticDir   = "../../web/static"
)

type HandlersTestSuite struct {
	suite.Suite
	db     *storage.DB
	h      *Handlers
	router http.Handler
	today  string
}

func (suite *HandlersTestSuite) SetupTest() {
	db, err := storage.NewDB(filepath.Join(suite.T().TempDir(), "test.db"))
	require.NoError(suite.T(), err)
	suite.db = db

	svc := tracker.NewService(db, tracker.Options{Logger: logging.Discard(), BcryptCost: bcrypt.MinCost})
	tokens := auth.NewTokenIssuer([]byte("test-secret-0123456789"), time.Hour)
	suite.h = NewHandlers(svc, db, tokens, Config{
		TemplateDir:     templateDir,
		SessionDuration: 24 * time.Hour,
		Currency:        "₦",
	}, logging.Discard())
	suite.router = SecurityHeaders(suite.h.Routes(staticDir))
	suite.today = time.Now().UTC().Format(models.DateLayout)
}

func (suite *HandlersTestSuite) TearDownTest() {
	if suite.db != nil {
		suite.db.Close()
	}
}

func (suite *HandlersTestSuite) do(req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	suite.router.ServeHTTP(rr, req)
	return rr
}

func (suite *HandlersTestSuite) postForm(path string, form url.Values, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	return suite.do(req)
}

func (suite *HandlersTestSuite) get(path string, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	return suite.do(req)
}

func sessionCookie(rr *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rr.Result().Cookies() {
		if c.Name == SessionCookieName {
			return c
		}
	}
	return nil
}

func (suite *HandlersTestSuite) registerAndLogin(username string) *http.Cookie {
	rr := suite.postForm("/register", url.Values{
		"username":         {username},
		"email":            {username + "@example.com"},
		"password":         {"secret123"},
		"confirm_password": {"secret123"},
	}, nil)
	require.Equal(suite.T(), http.StatusSeeOther, rr.Code, rr.Body.String())

	rr = suite.postForm("/login", url.Values{"username": {username}, "password": {"secret123"}}, nil)
	require.Equal(suite.T(), http.StatusFound, rr.Code, rr.Body.String())
	cookie := sessionCookie(rr)
	require.NotNil(suite.T(), cookie)
	return cookie
}

func (suite *HandlersTestSuite) TestHealth() {
	rr := suite.get("/healthz", nil)
	assert.Equal(suite.T(), http.StatusOK, rr.Code)
	assert.Equal(suite.T(), "ok", rr.Body.String())
	assert.Equal(suite.T(), "nosniff", rr.Header().Get("X-Content-Type-Options"))
}

func (suite *HandlersTestSuite) TestProtectedPagesRedirectToLogin() {
	for _, path := range []string{"/", "/status", "/expenses", "/chart", "/goals", "/export", "/export/expenses.csv"} {
		rr := suite.get(path, nil)
		assert.Equal(suite.T(), http.StatusFound, rr.Code, path)
		assert.Equal(suite.T(), "/login", rr.Header().Get("Location"), path)
	}
}

func (suite *HandlersTestSuite) TestInvalidSessionClearsCookie() {
	rr := suite.get("/status", &http.Cookie{Name: SessionCookieName, Value: "bogus"})
	assert.Equal(suite.T(), http.StatusFound, rr.Code)
	c := sessionCookie(rr)
	require.NotNil(suite.T(), c)
	assert.Equal(suite.T(), -1, c.MaxAge)
}

func (suite *HandlersTestSuite) TestRegisterPasswordMismatch() {
	rr := suite.postForm("/register", url.Values{
		"username":         {"alice"},
		"email":            {"alice@example.com"},
		"password":         {"secret123"},
		"confirm_password": {"different"},
	}, nil)
	assert.Equal(suite.T(), http.StatusUnprocessableEntity, rr.Code)
	assert.Contains(suite.T(), rr.Body.String(), "Passwords do not match")
	assert.NotContains(suite.T(), rr.Body.String(), "secret123")
}

func (suite *HandlersTestSuite) TestRegisterPasswordTooLongInBytes() {
	long := strings.Repeat("é", 40)
	rr := suite.postForm("/register", url.Values{
		"username":         {"alice"},
		"email":            {"alice@example.com"},
		"password":         {long},
		"confirm_password": {long},
	}, nil)
	assert.Equal(suite.T(), http.StatusUnprocessableEntity, rr.Code)
	assert.Contains(suite.T(), rr.Body.String(), "must be at most 72 bytes")

	rr = suite.apiRequest(http.MethodPost, "/api/register",
		`{"username":"alice","email":"alice@example.com","password":"`+long+`","confirm_password":"`+long+`"}`, "")
	assert.Equal(suite.T(), http.StatusUnprocessableEntity, rr.Code)
	assert.Contains(suite.T(), rr.Body.String(), `"password"`)
}

func (suite *HandlersTestSuite) TestRegisterDuplicate() {
	suite.registerAndLogin("alice")
	rr := suite.postForm("/register", url.Values{
		"username":         {"alice"},
		"email":            {"other@example.com"},
		"password":         {"secret123"},
		"confirm_password": {"secret123"},
	}, nil)
	assert.Equal(suite.T(), http.StatusConflict, rr.Code)
	assert.Contains(suite.T(), rr.Body.String(), "already registered")
}

func (suite *HandlersTestSuite) TestLoginRejectsBadPassword() {
	suite.registerAndLogin("alice")
	rr := suite.postForm("/login", url.Values{"username": {"alice"}, "password": {"nope"}}, nil)
	assert.Equal(suite.T(), http.StatusUnauthorized, rr.Code)
	assert.Contains(suite.T(), rr.Body.String(), "Invalid username or password")
	assert.Nil(suite.T(), sessionCookie(rr))

	rr = suite.postForm("/login", url.Values{"username": {"nobody"}, "password": {"secret123"}}, nil)
	assert.Equal(suite.T(), http.StatusUnauthorized, rr.Code)
}

func (suite *HandlersTestSuite) TestLoginFormRedirectsWhenLoggedIn() {
	cookie := suite.registerAndLogin("alice")
	rr := suite.get("/login", cookie)
	assert.Equal(suite.T(), http.StatusFound, rr.Code)
	assert.Equal(suite.T(), "/status", rr.Header().Get("Location"))
}

func (suite *HandlersTestSuite) TestAddEntriesAndStatus() {
	cookie := suite.registerAndLogin("alice")

	rr := suite.postForm("/income", url.Values{
		"amount": {"100"}, "source": {"Salary"}, "date": {suite.today},
	}, cookie)
	require.Equal(suite.T(), http.StatusSeeOther, rr.Code, rr.Body.String())

	rr = suite.get("/status", cookie)
	require.Equal(suite.T(), http.StatusOK, rr.Code)
	assert.Contains(suite.T(), rr.Body.String(), "₦100.00")
	assert.Contains(suite.T(), rr.Body.String(), "within budget")

	rr = suite.postForm("/expenses", url.Values{
		"amount": {"150.50"}, "category": {"Food"}, "date": {suite.today}, "payment_method": {"Cash"},
	}, cookie)
	require.Equal(suite.T(), http.StatusSeeOther, rr.Code, rr.Body.String())
	assert.Equal(suite.T(), "/status", rr.Header().Get("Location"))

	rr = suite.get("/status", cookie)
	require.Equal(suite.T(), http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(suite.T(), body, "₦150.50")
	assert.Contains(suite.T(), body, "overspent-warning")
	assert.Contains(suite.T(), body, "-₦50.50")

	rr = suite.get("/expenses", cookie)
	require.Equal(suite.T(), http.StatusOK, rr.Code)
	assert.Contains(suite.T(), rr.Body.String(), "TODAY")
	assert.Contains(suite.T(), rr.Body.String(), "income-item")
}

func (suite *HandlersTestSuite) TestAddExpenseValidation() {
	cookie := suite.registerAndLogin("alice")
	rr := suite.postForm("/expenses", url.Values{
		"amount": {"-5"}, "category": {"Food"}, "date": {"2024-13-01"},
	}, cookie)
	assert.Equal(suite.T(), http.StatusUnprocessableEntity, rr.Code)
	body := rr.Body.String()
	assert.Contains(suite.T(), body, "must be a positive number")
	assert.Contains(suite.T(), body, "YYYY-MM-DD")
	assert.Contains(suite.T(), body, `value="-5"`)
}

func (suite *HandlersTestSuite) TestHTMXPostUsesLocationHeader() {
	cookie := suite.registerAndLogin("alice")
	req := httptest.NewRequest(http.MethodPost, "/expenses", strings.NewReader(url.Values{
		"amount": {"10"}, "category": {"Food"}, "date": {suite.today},
	}.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("HX-Request", "true")
	req.AddCookie(cookie)

	rr := suite.do(req)
	assert.Equal(suite.T(), http.StatusOK, rr.Code)
	assert.Contains(suite.T(), rr.Header().Get("HX-Location"), `"/status"`)
}

func (suite *HandlersTestSuite) TestHTMXRendersContentOnly() {
	cookie := suite.registerAndLogin("alice")
	req := httptest.NewRequest(http.MethodGet, "/goals", nil)
	req.Header.Set("HX-Request", "true")
	req.AddCookie(cookie)

	rr := suite.do(req)
	assert.Equal(suite.T(), http.StatusOK, rr.Code)
	assert.NotContains(suite.T(), rr.Body.String(), "<html")
	assert.Contains(suite.T(), rr.Body.String(), "goal-form")
}

func (suite *HandlersTestSuite) TestChart() {
	cookie := suite.registerAndLogin("alice")
	rr := suite.get("/chart", cookie)
	assert.Equal(suite.T(), http.StatusOK, rr.Code)
	assert.Contains(suite.T(), rr.Body.String(), "No expenses recorded yet.")

	for _, e := range []url.Values{
		{"amount": {"75"}, "category": {"Food"}, "date": {suite.today}},
		{"amount": {"25"}, "category": {"Transport"}, "date": {suite.today}},
	} {
		require.Equal(suite.T(), http.StatusSeeOther, suite.postForm("/expenses", e, cookie).Code)
	}
	rr = suite.get("/chart", cookie)
	require.Equal(suite.T(), http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(suite.T(), body, "<svg")
	assert.Contains(suite.T(), body, "75.0%")
	assert.Contains(suite.T(), body, "25.0%")
	assert.Contains(suite.T(), body, "#FF6B6B")
}

func (suite *HandlersTestSuite) TestChartAllTime() {
	cookie := suite.registerAndLogin("alice")
	require.Equal(suite.T(), http.StatusSeeOther, suite.postForm("/expenses", url.Values{
		"amount": {"40"}, "category": {"Books"}, "date": {"2020-01-15"},
	}, cookie).Code)

	rr := suite.get("/chart", cookie)
	require.Equal(suite.T(), http.StatusOK, rr.Code)
	assert.Contains(suite.T(), rr.Body.String(), "No expenses recorded yet.")
	assert.Contains(suite.T(), rr.Body.String(), `href="/chart?range=all"`)

	rr = suite.get("/chart?range=all", cookie)
	require.Equal(suite.T(), http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(suite.T(), body, "All time")
	assert.Contains(suite.T(), body, "Books")
	assert.Contains(suite.T(), body, "100.0%")
}

func (suite *HandlersTestSuite) TestExpenseCategoryIsFreeText() {
	cookie := suite.registerAndLogin("alice")
	rr := suite.get("/expenses/new", cookie)
	require.Equal(suite.T(), http.StatusOK, rr.Code)
	assert.Contains(suite.T(), rr.Body.String(), `<input type="text" name="category" list="expense-categories"`)
	assert.NotContains(suite.T(), rr.Body.String(), `<select name="category"`)

	rr = suite.postForm("/expenses", url.Values{
		"amount": {"9.99"}, "category": {"Pet supplies"}, "date": {suite.today},
	}, cookie)
	require.Equal(suite.T(), http.StatusSeeOther, rr.Code, rr.Body.String())

	rr = suite.get("/chart", cookie)
	assert.Contains(suite.T(), rr.Body.String(), "Pet supplies")
}

func (suite *HandlersTestSuite) TestGoals() {
	cookie := suite.registerAndLogin("alice")
	rr := suite.postForm("/goals", url.Values{"category": {"Food"}, "amount": {"50"}}, cookie)
	require.Equal(suite.T(), http.StatusSeeOther, rr.Code, rr.Body.String())

	rr = suite.postForm("/expenses", url.Values{"amount": {"60"}, "category": {"Food"}, "date": {suite.today}}, cookie)
	require.Equal(suite.T(), http.StatusSeeOther, rr.Code)

	rr = suite.get("/goals", cookie)
	require.Equal(suite.T(), http.StatusOK, rr.Code)
	assert.Contains(suite.T(), rr.Body.String(), "exceeded")
	assert.Contains(suite.T(), rr.Body.String(), "over by ₦10.00")

	rr = suite.postForm("/goals", url.Values{"category": {""}, "amount": {"abc"}}, cookie)
	assert.Equal(suite.T(), http.StatusUnprocessableEntity, rr.Code)
}

func (suite *HandlersTestSuite) TestExportDownloads() {
	cookie := suite.registerAndLogin("alice")
	suite.postForm("/expenses", url.Values{"amount": {"12.50"}, "category": {"Food"}, "date": {suite.today}, "note": {"lunch, with team"}}, cookie)
	suite.postForm("/income", url.Values{"amount": {"100"}, "source": {"Salary"}, "date": {suite.today}}, cookie)

	rr := suite.get("/export/expenses.csv", cookie)
	require.Equal(suite.T(), http.StatusOK, rr.Code)
	assert.Contains(suite.T(), rr.Header().Get("Content-Disposition"), export.ExpensesFile)
	records, err := csv.NewReader(rr.Body).ReadAll()
	require.NoError(suite.T(), err)
	require.Len(suite.T(), records, 2)
	assert.Equal(suite.T(), export.ExpenseHeader, records[0])
	assert.Equal(suite.T(), "lunch, with team", records[1][4])

	rr = suite.get("/export/income.csv", cookie)
	require.Equal(suite.T(), http.StatusOK, rr.Code)
	incomes, err := export.ReadIncomeCSV(rr.Body)
	require.NoError(suite.T(), err)
	require.Len(suite.T(), incomes, 1)
	assert.Equal(suite.T(), models.Money(10000), incomes[0].Amount)

	rr = suite.get("/export/finance.xlsx", cookie)
	require.Equal(suite.T(), http.StatusOK, rr.Code)
	assert.Contains(suite.T(), rr.Header().Get("Content-Type"), "spreadsheetml")
	assert.Positive(suite.T(), rr.Body.Len())
}

func (suite *HandlersTestSuite) TestLogout() {
	cookie := suite.registerAndLogin("alice")
	rr := suite.postForm("/logout", nil, cookie)
	assert.Equal(suite.T(), http.StatusFound, rr.Code)
	assert.Equal(suite.T(), "/login", rr.Header().Get("Location"))

	rr = suite.get("/status", cookie)
	assert.Equal(suite.T(), http.StatusFound, rr.Code)
}

func (suite *HandlersTestSuite) TestSessionRenewal() {
	cookie := suite.registerAndLogin("alice")
	ctx := context.Background()
	require.NoError(suite.T(), suite.db.RenewSession(ctx, cookie.Value, time.Now().Add(time.Hour)))

	rr := suite.get("/status", cookie)
	require.Equal(suite.T(), http.StatusOK, rr.Code)
	renewed := sessionCookie(rr)
	require.NotNil(suite.T(), renewed)
	assert.Equal(suite.T(), int((24 * time.Hour).Seconds()), renewed.MaxAge)

	info, err := suite.db.ValidateSessionWithInfo(ctx, cookie.Value)
	require.NoError(suite.T(), err)
	assert.True(suite.T(), info.ExpiresAt.After(time.Now().Add(12*time.Hour)))
}

func (suite *HandlersTestSuite) apiRequest(method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return suite.do(req)
}

func (suite *HandlersTestSuite) apiLogin() string {
	rr := suite.apiRequest(http.MethodPost, "/api/register",
		`{"username":"bob","email":"bob@example.com","password":"secret123","confirm_password":"secret123"}`, "")
	require.Equal(suite.T(), http.StatusCreated, rr.Code, rr.Body.String())
	assert.NotContains(suite.T(), rr.Body.String(), "password")

	rr = suite.apiRequest(http.MethodPost, "/api/login", `{"username":"bob","password":"secret123"}`, "")
	require.Equal(suite.T(), http.StatusOK, rr.Code, rr.Body.String())
	var tok tokenResponse
	require.NoError(suite.T(), json.Unmarshal(rr.Body.Bytes(), &tok))
	require.NotEmpty(suite.T(), tok.Token)
	return tok.Token
}

func (suite *HandlersTestSuite) TestAPIRequiresToken() {
	rr := suite.apiRequest(http.MethodGet, "/api/status", "", "")
	assert.Equal(suite.T(), http.StatusUnauthorized, rr.Code)
	assert.NotEmpty(suite.T(), rr.Header().Get("WWW-Authenticate"))

	rr = suite.apiRequest(http.MethodGet, "/api/status", "", "not-a-jwt")
	assert.Equal(suite.T(), http.StatusUnauthorized, rr.Code)
}

func (suite *HandlersTestSuite) TestAPIFlow() {
	token := suite.apiLogin()

	rr := suite.apiRequest(http.MethodPost, "/api/incomes",
		`{"amount":"40","source":"Freelance","date":"`+suite.today+`"}`, token)
	require.Equal(suite.T(), http.StatusCreated, rr.Code, rr.Body.String())

	rr = suite.apiRequest(http.MethodPost, "/api/expenses",
		`{"amount":12.5,"category":"Food","date":"`+suite.today+`","payment_method":"Card"}`, token)
	require.Equal(suite.T(), http.StatusCreated, rr.Code, rr.Body.String())
	var created struct {
		Expense models.Expense       `json:"expense"`
		Status  tracker.BudgetStatus `json:"status"`
	}
	require.NoError(suite.T(), json.Unmarshal(rr.Body.Bytes(), &created))
	assert.Equal(suite.T(), models.Money(1250), created.Expense.Amount)
	assert.Equal(suite.T(), models.Money(2750), created.Status.Balance)
	assert.False(suite.T(), created.Status.Overspent)

	rr = suite.apiRequest(http.MethodGet, "/api/status", "", token)
	require.Equal(suite.T(), http.StatusOK, rr.Code)
	assert.Contains(suite.T(), rr.Body.String(), `"total_expense":"12.50"`)

	rr = suite.apiRequest(http.MethodGet, "/api/breakdown?from="+suite.today+"&to="+suite.today, "", token)
	require.Equal(suite.T(), http.StatusOK, rr.Code)
	var rows []models.CategoryShare
	require.NoError(suite.T(), json.Unmarshal(rr.Body.Bytes(), &rows))
	require.Len(suite.T(), rows, 1)
	assert.Equal(suite.T(), "Food", rows[0].Category)
	assert.InDelta(suite.T(), 100.0, rows[0].Percent, 0.001)

	rr = suite.apiRequest(http.MethodPost, "/api/goals", `{"category":"Food","amount":"10"}`, token)
	require.Equal(suite.T(), http.StatusOK, rr.Code, rr.Body.String())

	rr = suite.apiRequest(http.MethodGet, "/api/goals", "", token)
	require.Equal(suite.T(), http.StatusOK, rr.Code)
	var goals []tracker.GoalStatus
	require.NoError(suite.T(), json.Unmarshal(rr.Body.Bytes(), &goals))
	require.Len(suite.T(), goals, 1)
	assert.True(suite.T(), goals[0].Exceeded)
}

func (suite *HandlersTestSuite) TestAPIErrors() {
	token := suite.apiLogin()

	rr := suite.apiRequest(http.MethodPost, "/api/expenses", `{"amount":`, token)
	assert.Equal(suite.T(), http.StatusBadRequest, rr.Code)

	rr = suite.apiRequest(http.MethodPost, "/api/expenses", `{"amount":"0","category":"","date":"yesterday"}`, token)
	assert.Equal(suite.T(), http.StatusUnprocessableEntity, rr.Code)
	var resp errorResponse
	require.NoError(suite.T(), json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Contains(suite.T(), resp.Fields, "amount")
	assert.Contains(suite.T(), resp.Fields, "category")
	assert.Contains(suite.T(), resp.Fields, "date")

	rr = suite.apiRequest(http.MethodPost, "/api/register",
		`{"username":"bob","email":"new@example.com","password":"secret123","confirm_password":"secret123"}`, "")
	assert.Equal(suite.T(), http.StatusConflict, rr.Code)

	rr = suite.apiRequest(http.MethodPost, "/api/register",
		`{"username":"carol","email":"carol@example.com","password":"secret123","confirm_password":"x"}`, "")
	assert.Equal(suite.T(), http.StatusBadRequest, rr.Code)

	rr = suite.apiRequest(http.MethodPost, "/api/login", `{"username":"bob","password":"wrong"}`, "")
	assert.Equal(suite.T(), http.StatusUnauthorized, rr.Code)

	rr = suite.apiRequest(http.MethodGet, "/api/breakdown?from=nope", "", token)
	assert.Equal(suite.T(), http.StatusBadRequest, rr.Code)
}

func TestHandlersTestSuite(t *testing.T) {
	suite.Run(t, new(HandlersTestSuite))
}

func TestFormatGroupTitle(t *testing.T) {
	now := time.Date(2024, 5, 20, 22, 0, 0, 0, time.UTC)
	h := &Handlers{now: func() time.Time { return now }}

	assert.Equal(t, "TODAY", h.formatGroupTitle(time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "YESTERDAY", h.formatGroupTitle(time.Date(2024, 5, 19, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "WED, 01 MAY '24", h.formatGroupTitle(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)))
}

func TestMonthFromQuery(t *testing.T) {
	h := &Handlers{now: func() time.Time { return time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC) }}

	nav := h.monthFromQuery(httptest.NewRequest(http.MethodGet, "/chart", nil))
	assert.Equal(t, 2024, nav.Year)
	assert.Equal(t, 1, nav.Month)
	assert.True(t, nav.IsCurrentMonth)
	assert.Equal(t, 2023, nav.PrevYear)
	assert.Equal(t, 12, nav.PrevMonth)

	nav = h.monthFromQuery(httptest.NewRequest(http.MethodGet, "/chart?year=2023&month=12", nil))
	assert.False(t, nav.IsCurrentMonth)
	assert.Equal(t, 2024, nav.NextYear)
	assert.Equal(t, 1, nav.NextMonth)
	assert.Equal(t, models.MonthRange(2023, time.December), nav.Range)

	nav = h.monthFromQuery(httptest.NewRequest(http.MethodGet, "/chart?month=13", nil))
	assert.Equal(t, 1, nav.Month)
}

func TestAmountUnmarshal(t *testing.T) {
	var v struct {
		A amount `json:"a"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":12.5}`), &v))
	assert.Equal(t, amount("12.5"), v.A)
	require.NoError(t, json.Unmarshal([]byte(`{"a":"12,50"}`), &v))
	assert.Equal(t, amount("12,50"), v.A)
	assert.Error(t, json.Unmarshal([]byte(`{"a":true}`), &v))
}
