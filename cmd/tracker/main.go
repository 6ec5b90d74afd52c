// Command tracker is the interactive terminal front end: a numbered menu
// over the same operations the web UI offers.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"finance-tracker/internal/chart"
	"finance-tracker/internal/config"
	"finance-tracker/internal/events"
	"finance-tracker/internal/logging"
	"finance-tracker/internal/models"
	"finance-tracker/internal/storage"
	"finance-tracker/internal/tracker"

	"golang.org/x/term"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("tracker", flag.ContinueOnError)
	fs.SetOutput(stderr)
	envFile := fs.String("env", os.Getenv("ENV_FILE"), "Path to .env file")
	dbPath := fs.String("db", "", "Path to SQLite database file (overrides DB_DRIVER/DB_PATH)")
	outDir := fs.String("out", ".", "Directory for exported CSV files")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := config.LoadEnvFile(*envFile); err != nil {
		return err
	}
	cfg := config.Load()
	if *dbPath != "" {
		cfg.Database.Driver = storage.DriverSQLite
		cfg.Database.Path = *dbPath
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := logging.New(logging.Options{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		Output: stderr,
	}).With(logging.FieldComponent, logging.ComponentCLI)

	ctx := context.Background()
	db, err := storage.Open(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	var pub events.Publisher = events.Nop{}
	if cfg.AMQPURL != "" {
		c, err := events.Dial(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue,
			[]string{events.TypeBudgetOverspent}, logger)
		if err != nil {
			logger.Warn("amqp unavailable, events disabled", logging.FieldError, err)
		} else {
			defer c.Close()
			pub = c
		}
	}

	c := &cli{
		svc: tracker.NewService(db, tracker.Options{
			Publisher:  pub,
			Logger:     logger,
			BcryptCost: cfg.BcryptCost,
		}),
		stdin:     stdin,
		in:        bufio.NewReader(stdin),
		out:       stdout,
		currency:  cfg.CurrencySymbol,
		exportDir: *outDir,
		now:       time.Now,
	}
	return c.loop(ctx)
}

type cli struct {
	svc       *tracker.Service
	stdin     io.Reader
	in        *bufio.Reader
	out       io.Writer
	user      *models.User
	currency  string
	exportDir string
	now       func() time.Time
}

type menuItem struct {
	label string
	// requireLogin names the action in the "Please login first" hint;
	// empty for options open to everyone.
	requireLogin string
	// action is nil for Quit.
	action func(*cli, context.Context) error
}

var menu = []menuItem{
	{"Register", "", (*cli).register},
	{"Login", "", (*cli).login},
	{"Add Expense", "add expenses", (*cli).addExpense},
	{"Add Income", "add income", (*cli).addIncome},
	{"View Expense Chart", "view the expense chart", (*cli).viewChart},
	{"View Budget Status", "view budget status", (*cli).viewStatus},
	{"Quit", "", nil},
	{"Set Budget Goal", "set budget goals", (*cli).setGoal},
	{"Export Data", "export data", (*cli).export},
	{"Logout", "log out", (*cli).logout},
}

func (c *cli) loop(ctx context.Context) error {
	for {
		c.printMenu()
		choice, err := c.prompt("Enter choice: ")
		if errors.Is(err, io.EOF) {
			c.println("Goodbye!")
			return nil
		}
		if err != nil {
			return err
		}

		item, ok := lookup(choice)
		if !ok {
			c.println("Invalid choice.")
			continue
		}
		if item.action == nil {
			c.println("Goodbye!")
			return nil
		}
		if item.requireLogin != "" && c.user == nil {
			c.printf("Please login first to %s.\n", item.requireLogin)
			continue
		}
		if err := item.action(c, ctx); err != nil {
			if errors.Is(err, io.EOF) {
				c.println("\nGoodbye!")
				return nil
			}
			c.printf("Error: %v\n", err)
		}
	}
}

func lookup(choice string) (menuItem, bool) {
	n, err := strconv.Atoi(choice)
	if err != nil || n < 1 || n > len(menu) {
		return menuItem{}, false
	}
	return menu[n-1], true
}

func (c *cli) printMenu() {
	c.println("\nOptions:")
	for i, item := range menu {
		c.printf("%d. %s\n", i+1, item.label)
	}
	if c.user != nil {
		c.printf("(logged in as %s)\n", c.user.Username)
	}
}

func (c *cli) register(ctx context.Context) error {
	c.println("\nRegister")
	var in tracker.RegisterInput
	var err error
	if in.Username, err = c.prompt("Enter username: "); err != nil {
		return err
	}
	if in.Email, err = c.prompt("Enter email: "); err != nil {
		return err
	}
	if in.Password, err = c.password("Enter password: "); err != nil {
		return err
	}
	if in.ConfirmPassword, err = c.password("Confirm password: "); err != nil {
		return err
	}

	user, err := c.svc.Register(ctx, in)
	switch {
	case errors.Is(err, tracker.ErrPasswordMismatch):
		c.println("Passwords do not match. Registration failed.")
		return nil
	case errors.Is(err, tracker.ErrUserExists):
		c.println("Username or email already exists. Registration failed.")
		return nil
	case err != nil:
		return err
	}

	c.user = user
	c.println("Your registration was successful.")
	c.printf("Welcome, %s! Your user ID is %d.\n", user.Username, user.ID)
	return nil
}

func (c *cli) login(ctx context.Context) error {
	c.println("\nUser Login")
	username, err := c.prompt("Enter username: ")
	if err != nil {
		return err
	}
	password, err := c.password("Enter password: ")
	if err != nil {
		return err
	}

	user, err := c.svc.Login(ctx, username, password)
	if errors.Is(err, tracker.ErrInvalidCredentials) {
		c.println("Invalid username or password.")
		return nil
	}
	if err != nil {
		return err
	}
	c.user = user
	c.printf("Login successful. Welcome, %s!\n", user.Username)
	return nil
}

func (c *cli) addExpense(ctx context.Context) error {
	c.println("\nAdd Expense")
	var in tracker.ExpenseInput
	var err error
	if in.Amount, err = c.prompt("Enter expense amount: "); err != nil {
		return err
	}
	if in.Category, err = c.prompt("Enter expense category: "); err != nil {
		return err
	}
	if in.Date, err = c.date(); err != nil {
		return err
	}
	if in.Note, err = c.prompt("Enter note (optional): "); err != nil {
		return err
	}
	if in.PaymentMethod, err = c.prompt("Enter payment method (optional): "); err != nil {
		return err
	}

	_, status, err := c.svc.AddExpense(ctx, c.user.ID, in)
	if err != nil {
		return fmt.Errorf("failed to add expense: %w", err)
	}
	c.println("Expense recorded.")
	c.printStatus(status)
	return nil
}

func (c *cli) addIncome(ctx context.Context) error {
	c.println("\nAdd Income")
	var in tracker.IncomeInput
	var err error
	if in.Amount, err = c.prompt("Enter income amount: "); err != nil {
		return err
	}
	if in.Source, err = c.prompt("Enter income source: "); err != nil {
		return err
	}
	if in.Date, err = c.date(); err != nil {
		return err
	}
	if in.Note, err = c.prompt("Enter note (optional): "); err != nil {
		return err
	}

	_, status, err := c.svc.AddIncome(ctx, c.user.ID, in)
	if err != nil {
		return fmt.Errorf("failed to add income: %w", err)
	}
	c.println("Income recorded.")
	c.printStatus(status)
	return nil
}

func (c *cli) viewChart(ctx context.Context) error {
	rows, err := c.svc.Breakdown(ctx, c.user.ID, models.DateRange{})
	if err != nil {
		return err
	}
	c.println()
	title := fmt.Sprintf("%s, this is your expense distribution", c.user.Username)
	return chart.RenderText(c.out, title, chart.Build(rows), c.currency)
}

func (c *cli) viewStatus(ctx context.Context) error {
	status, err := c.svc.BudgetStatus(ctx, c.user.ID)
	if err != nil {
		return err
	}
	c.printStatus(&status)

	goals, err := c.svc.GoalProgress(ctx, c.user.ID, c.currentMonth())
	if err != nil {
		return err
	}
	if len(goals) > 0 {
		c.printf("\nBudget goals for %s:\n", c.now().UTC().Format("January 2006"))
	}
	for _, g := range goals {
		mark := ""
		if g.Exceeded {
			mark = "  EXCEEDED"
		}
		c.printf("  %s: %s%s of %s%s (%.1f%%)%s\n",
			g.Goal.Category, c.currency, g.Spent, c.currency, g.Goal.Amount, g.Percent, mark)
	}
	return nil
}

func (c *cli) setGoal(ctx context.Context) error {
	c.println("\nSet Budget Goal")
	var in tracker.GoalInput
	var err error
	if in.Category, err = c.prompt("Enter category: "); err != nil {
		return err
	}
	if in.Amount, err = c.prompt("Enter monthly budget amount: "); err != nil {
		return err
	}
	goal, err := c.svc.SetBudgetGoal(ctx, c.user.ID, in)
	if err != nil {
		return fmt.Errorf("failed to set budget goal: %w", err)
	}
	c.printf("Budget goal for %s set to %s%s.\n", goal.Category, c.currency, goal.Amount)
	return nil
}

func (c *cli) export(ctx context.Context) error {
	paths, err := c.svc.ExportFiles(ctx, c.user.ID, c.exportDir)
	if err != nil {
		return fmt.Errorf("failed to export data: %w", err)
	}
	c.println("Exported:")
	for _, p := range paths {
		c.printf("  %s\n", p)
	}
	return nil
}

func (c *cli) logout(context.Context) error {
	c.printf("%s has been logged out.\n", c.user.Username)
	c.user = nil
	return nil
}

func (c *cli) currentMonth() models.DateRange {
	now := c.now().UTC()
	return models.MonthRange(now.Year(), now.Month())
}

func (c *cli) printStatus(s *tracker.BudgetStatus) {
	if s == nil {
		c.println("Budget status is unavailable right now.")
		return
	}
	c.printf("\nBudget Status: Total Income = %s%s, Total Expense = %s%s\n",
		c.currency, s.TotalIncome, c.currency, s.TotalExpense)
	if s.Overspent {
		c.println("Alert: Your expenses exceed your income!")
	}
}

// date prompts until a valid YYYY-MM-DD date is entered. Empty means today.
func (c *cli) date() (string, error) {
	today := c.now().Format(models.DateLayout)
	for {
		raw, err := c.prompt(fmt.Sprintf("Enter date (YYYY-MM-DD) [%s]: ", today))
		if err != nil {
			return "", err
		}
		if raw == "" {
			return today, nil
		}
		if _, err := models.ParseDate(raw); err != nil {
			c.println("Invalid date format. Please use YYYY-MM-DD.")
			continue
		}
		return raw, nil
	}
}

func (c *cli) prompt(label string) (string, error) {
	fmt.Fprint(c.out, label)
	line, err := c.in.ReadString('\n')
	if err != nil && (line == "" || !errors.Is(err, io.EOF)) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// password reads without echo on a terminal and falls back to a plain line.
func (c *cli) password(label string) (string, error) {
	if f, ok := c.stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(c.out, label)
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(c.out)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
	line, err := c.prompt(label)
	return line, err
}

func (c *cli) println(a ...any) {
	fmt.Fprintln(c.out, a...)
}

func (c *cli) printf(format string, a ...any) {
	fmt.Fprintf(c.out, format, a...)
}
