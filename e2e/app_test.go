package e2e

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/playwright-community/playwright-go"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

var userSeq atomic.Int32

// E2ETestSuite drives the web UI in a headless browser.
type E2ETestSuite struct {
	suite.Suite
	pw      *playwright.Playwright
	browser playwright.Browser
	page    playwright.Page
	expect  playwright.PlaywrightAssertions
}

func (suite *E2ETestSuite) SetupSuite() {
	pw, err := playwright.Run()
	require.NoError(suite.T(), err, "could not launch playwright")
	suite.pw = pw

	browser, err := pw.Chromium.Launch()
	require.NoError(suite.T(), err, "could not launch chromium")
	suite.browser = browser

	suite.expect = playwright.NewPlaywrightAssertions()
}

func (suite *E2ETestSuite) TearDownSuite() {
	if suite.browser != nil {
		suite.browser.Close()
	}
	if suite.pw != nil {
		suite.pw.Stop()
	}
}

func (suite *E2ETestSuite) SetupTest() {
	page, err := suite.browser.NewPage()
	require.NoError(suite.T(), err, "could not create page")
	suite.page = page

	_, err = suite.page.Goto(appURL)
	require.NoError(suite.T(), err, "could not navigate to app")
}

func (suite *E2ETestSuite) TearDownTest() {
	if suite.page != nil {
		suite.page.Close()
	}
}

func (suite *E2ETestSuite) fill(selector, value string) {
	err := suite.page.Locator(selector).Fill(value)
	require.NoError(suite.T(), err, "failed to fill %s", selector)
}

func (suite *E2ETestSuite) click(selector string) {
	err := suite.page.Locator(selector).Click()
	require.NoError(suite.T(), err, "failed to click %s", selector)
}

func (suite *E2ETestSuite) visible(selector string) {
	err := suite.expect.Locator(suite.page.Locator(selector)).ToBeVisible()
	require.NoError(suite.T(), err, "%s not visible", selector)
}

func (suite *E2ETestSuite) login(username, password string) {
	suite.visible(".login-form")
	suite.fill("input[name=username]", username)
	suite.fill("input[name=password]", password)
	suite.click(".login-btn")
	suite.visible(".status-screen")
}

// register creates a fresh account through the form and logs in with it.
func (suite *E2ETestSuite) register() string {
	username := fmt.Sprintf("user%d", userSeq.Add(1))

	_, err := suite.page.Goto(appURL + "/register")
	require.NoError(suite.T(), err)
	suite.visible(".register-form")
	suite.fill("input[name=username]", username)
	suite.fill("input[name=email]", username+"@example.com")
	suite.fill("input[name=password]", "secret123")
	suite.fill("input[name=confirm_password]", "secret123")
	suite.click(".register-btn")

	err = suite.expect.Locator(suite.page.Locator(".notice")).ToHaveText("Account created. Please log in.")
	require.NoError(suite.T(), err, "registration notice missing")
	suite.login(username, "secret123")
	return username
}

func (suite *E2ETestSuite) addEntry(formPath, formID string, fields map[string]string) {
	_, err := suite.page.Goto(appURL + formPath)
	require.NoError(suite.T(), err)
	suite.visible(formID)
	for name, value := range fields {
		suite.fill(formID+" input[name="+name+"]", value)
	}
	suite.click(formID + " .save-btn")
	suite.visible(".status-screen")
}

func (suite *E2ETestSuite) TestSeededAdminCanLogIn() {
	suite.login("testuser", "testpass123")
	err := suite.expect.Locator(suite.page.Locator(".nav-user")).ToHaveText("testuser")
	require.NoError(suite.T(), err)
}

func (suite *E2ETestSuite) TestWrongPasswordIsRejected() {
	suite.visible(".login-form")
	suite.fill("input[name=username]", "testuser")
	suite.fill("input[name=password]", "wrong-password")
	suite.click(".login-btn")

	err := suite.expect.Locator(suite.page.Locator(".login-form .error")).ToHaveText("Invalid username or password")
	require.NoError(suite.T(), err)
}

func (suite *E2ETestSuite) TestCompleteUserFlow() {
	suite.register()

	suite.addEntry("/income/new", "#income-form", map[string]string{"amount": "20", "source": "Gift"})
	err := suite.expect.Locator(suite.page.Locator(".ok")).ToBeVisible()
	require.NoError(suite.T(), err, "should be within budget after income")

	suite.addEntry("/expenses/new", "#expense-form", map[string]string{
		"amount": "12.50", "category": "Food", "note": "Lunch Test",
	})
	suite.addEntry("/expenses/new", "#expense-form", map[string]string{
		"amount": "30", "category": "Transport",
	})
	err = suite.expect.Locator(suite.page.Locator(".overspent-warning")).ToBeVisible()
	require.NoError(suite.T(), err, "overspend warning missing")

	_, err = suite.page.Goto(appURL + "/expenses")
	require.NoError(suite.T(), err)
	suite.visible(".list-screen")
	err = suite.expect.Locator(suite.page.Locator(".expense-item")).ToHaveCount(3)
	require.NoError(suite.T(), err, "history item count mismatch")
	err = suite.expect.Locator(suite.page.Locator(".expense-item").Filter(playwright.LocatorFilterOptions{
		HasText: "Lunch Test",
	}).Locator(".amount")).ToContainText("12.50")
	require.NoError(suite.T(), err, "amount mismatch")

	_, err = suite.page.Goto(appURL + "/chart")
	require.NoError(suite.T(), err)
	suite.visible(".expense-chart")
	err = suite.expect.Locator(suite.page.Locator(".category-row")).ToHaveCount(2)
	require.NoError(suite.T(), err, "chart category count mismatch")
}

func (suite *E2ETestSuite) TestInvalidExpenseShowsErrors() {
	suite.register()

	_, err := suite.page.Goto(appURL + "/expenses/new")
	require.NoError(suite.T(), err)
	suite.fill("#expense-form input[name=amount]", "abc")
	suite.click("#expense-form .save-btn")

	err = suite.expect.Locator(suite.page.Locator("#expense-form .field-error").First()).ToContainText("positive number")
	require.NoError(suite.T(), err, "amount error not shown")
}

func (suite *E2ETestSuite) TestBudgetGoal() {
	suite.register()

	_, err := suite.page.Goto(appURL + "/goals")
	require.NoError(suite.T(), err)
	suite.fill("#goal-form input[name=category]", "Food")
	suite.fill("#goal-form input[name=amount]", "25")
	suite.click("#goal-form .save-btn")

	err = suite.expect.Locator(suite.page.Locator(".goal-row .label")).ToHaveText("Food")
	require.NoError(suite.T(), err, "goal not listed")
}

func (suite *E2ETestSuite) TestLogout() {
	suite.login("testuser", "testpass123")
	suite.click(".logout-btn")
	suite.visible(".login-form")

	_, err := suite.page.Goto(appURL + "/status")
	require.NoError(suite.T(), err)
	suite.visible(".login-form")
}

func TestE2ESuite(t *testing.T) {
	suite.Run(t, new(E2ETestSuite))
}
