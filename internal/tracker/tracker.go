// Package tracker implements the finance tracker operations shared by the
// web UI, the JSON API and the command-line menu.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"regexp"
	"strings"
	"time"

	"finance-tracker/internal/auth"
	"finance-tracker/internal/events"
	"finance-tracker/internal/logging"
	"finance-tracker/internal/models"
	"finance-tracker/internal/storage"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"
)

// Store is the persistence the service needs. *storage.DB satisfies it.
type Store interface {
	CreateUser(ctx context.Context, username, email, passwordHash string) (*models.User, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	UserExists(ctx context.Context, username, email string) (bool, error)
	TouchLastLogin(ctx context.Context, userID int64, at time.Time) error

	CreateExpense(ctx context.Context, e *models.Expense) error
	ListExpenses(ctx context.Context, userID int64, r models.DateRange) ([]models.Expense, error)
	CreateIncome(ctx context.Context, in *models.Income) error
	ListIncome(ctx context.Context, userID int64, r models.DateRange) ([]models.Income, error)
	Totals(ctx context.Context, userID int64) (models.Totals, error)
	CategoryTotals(ctx context.Context, userID int64, r models.DateRange) ([]models.CategoryTotal, error)

	UpsertBudgetGoal(ctx context.Context, userID int64, category string, amount models.Money) (*models.BudgetGoal, error)
	ListBudgetGoals(ctx context.Context, userID int64) ([]models.BudgetGoal, error)
}

// Options tunes a Service. Zero values pick sensible defaults.
type Options struct {
	Publisher  events.Publisher
	Logger     *slog.Logger
	BcryptCost int
	Now        func() time.Time
}

// Service validates input and runs tracker operations against a Store.
type Service struct {
	store      Store
	pub        events.Publisher
	log        *slog.Logger
	validate   *validator.Validate
	bcryptCost int
	now        func() time.Time
}

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

func NewService(store Store, opts Options) *Service {
	s := &Service{
		store:      store,
		pub:        opts.Publisher,
		log:        opts.Logger,
		bcryptCost: opts.BcryptCost,
		now:        opts.Now,
	}
	if s.pub == nil {
		s.pub = events.Nop{}
	}
	if s.log == nil {
		s.log = slog.Default()
	}
	s.log = s.log.With(logging.FieldComponent, logging.ComponentTracker)
	if s.bcryptCost == 0 {
		s.bcryptCost = bcrypt.DefaultCost
	}
	if s.now == nil {
		s.now = time.Now
	}

	s.validate = validator.New(validator.WithRequiredStructEnabled())
	s.validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = s.validate.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	})
	_ = s.validate.RegisterValidation("bcryptlen", func(fl validator.FieldLevel) bool {
		return len(fl.Field().String()) <= auth.MaxPasswordBytes
	})
	return s
}

// RegisterInput is the registration form.
type RegisterInput struct {
	Username        string `json:"username" validate:"required,min=3,max=50,username"`
	Email           string `json:"email" validate:"required,email,max=255"`
	Password        string `json:"password" validate:"required,min=6,bcryptlen"`
	ConfirmPassword string `json:"confirm_password" validate:"required"`
}

// Register creates an account after checking the passwords match and that
// neither the username nor the email is taken.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))

	if in.Password != in.ConfirmPassword {
		return nil, ErrPasswordMismatch
	}
	verr := &ValidationError{}
	if err := fromValidator(s.validate.Struct(in), verr); err != nil {
		return nil, err
	}
	if verr := verr.orNil(); verr != nil {
		return nil, verr
	}

	exists, err := s.store.UserExists(ctx, in.Username, in.Email)
	if err != nil {
		return nil, fmt.Errorf("check existing user: %w", err)
	}
	if exists {
		return nil, ErrUserExists
	}

	hash, err := auth.HashPasswordCost(in.Password, s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user, err := s.store.CreateUser(ctx, in.Username, in.Email, hash)
	if errors.Is(err, storage.ErrDuplicate) {
		return nil, ErrUserExists
	}
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.log.InfoContext(ctx, "user registered", logging.FieldUserID, user.ID, "username", user.Username)
	return user, nil
}

// Login checks credentials and records the login time. Unknown users and
// wrong passwords are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.store.GetUserByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if !auth.CheckPassword(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	now := s.now().UTC()
	if err := s.store.TouchLastLogin(ctx, user.ID, now); err != nil {
		return nil, fmt.Errorf("record login: %w", err)
	}
	user.LastLogin = &now
	return user, nil
}

// User fetches an account by ID.
func (s *Service) User(ctx context.Context, id int64) (*models.User, error) {
	return s.store.GetUserByID(ctx, id)
}
