package handlers

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"finance-tracker/internal/auth"
	"finance-tracker/internal/logging"
	"finance-tracker/internal/models"
	"finance-tracker/internal/storage"
	"finance-tracker/internal/tracker"
)

// Context key type to avoid collisions.
type contextKey string

const (
	// UserContextKey is the context key for the authenticated user.
	UserContextKey contextKey = "user"
	// SessionCookieName is the name of the session cookie.
	SessionCookieName = "session"
	// DefaultSessionDuration is how long sessions last (30 days).
	DefaultSessionDuration = 30 * 24 * time.Hour
)

// SessionStore persists browser sessions. *storage.DB satisfies it.
type SessionStore interface {
	CreateSession(ctx context.Context, token string, userID int64, expiresAt time.Time) error
	ValidateSession(ctx context.Context, token string) (*models.User, error)
	ValidateSessionWithInfo(ctx context.Context, token string) (*storage.SessionInfo, error)
	RenewSession(ctx context.Context, token string, newExpiresAt time.Time) error
	DeleteSession(ctx context.Context, token string) error
}

// Config holds presentation settings for the handlers.
type Config struct {
	TemplateDir     string
	SecureCookie    bool
	SessionDuration time.Duration
	Currency        string
}

// Handlers holds dependencies for HTTP handlers.
type Handlers struct {
	svc             *tracker.Service
	sessions        SessionStore
	tokens          *auth.TokenIssuer
	templateDir     string
	secureCookie    bool
	sessionDuration time.Duration
	currency        string
	log             *slog.Logger
	now             func() time.Time
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(svc *tracker.Service, sessions SessionStore, tokens *auth.TokenIssuer, cfg Config, log *slog.Logger) *Handlers {
	if cfg.SessionDuration <= 0 {
		cfg.SessionDuration = DefaultSessionDuration
	}
	if log == nil {
		log = slog.Default()
	}
	return &Handlers{
		svc:             svc,
		sessions:        sessions,
		tokens:          tokens,
		templateDir:     cfg.TemplateDir,
		secureCookie:    cfg.SecureCookie,
		sessionDuration: cfg.SessionDuration,
		currency:        cfg.Currency,
		log:             log,
		now:             time.Now,
	}
}

// GetUserFromContext retrieves the authenticated user from request context.
func GetUserFromContext(r *http.Request) *models.User {
	if user, ok := r.Context().Value(UserContextKey).(*models.User); ok {
		return user
	}
	return nil
}

// logger returns the request-scoped logger set by the logging middleware.
func (h *Handlers) logger(r *http.Request) *slog.Logger {
	l := logging.FromContext(r.Context())
	if l == slog.Default() {
		l = h.log
	}
	if u := GetUserFromContext(r); u != nil {
		l = l.With(logging.FieldUserID, u.ID)
	}
	return l
}

// page wraps every view model with what the layout needs.
type page struct {
	User     *models.User
	Currency string
	Path     string
	View     any
}

func (h *Handlers) funcs() template.FuncMap {
	return template.FuncMap{
		"money": func(m models.Money) string { return h.currency + m.String() },
		"pct":   func(f float64) string { return fmt.Sprintf("%.1f%%", f) },
		"neg":   func(m models.Money) bool { return m < 0 },
		"abs": func(m models.Money) models.Money {
			if m < 0 {
				return -m
			}
			return m
		},
	}
}

func (h *Handlers) render(w http.ResponseWriter, r *http.Request, viewName string, data any) {
	h.renderStatus(w, r, http.StatusOK, viewName, data)
}

func (h *Handlers) renderStatus(w http.ResponseWriter, r *http.Request, status int, viewName string, data any) {
	tmpl, err := template.New("base.html").Funcs(h.funcs()).ParseFiles(
		filepath.Join(h.templateDir, "base.html"),
		filepath.Join(h.templateDir, viewName),
	)
	if err != nil {
		h.logger(r).Error("template parse failed", "view", viewName, logging.FieldError, err)
		http.Error(w, "Template error", http.StatusInternalServerError)
		return
	}
	target := "base.html"
	if r.Header.Get("HX-Request") == "true" {
		target = "content"
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := tmpl.ExecuteTemplate(w, target, page{
		User:     GetUserFromContext(r),
		Currency: h.currency,
		Path:     r.URL.Path,
		View:     data,
	}); err != nil {
		h.logger(r).Error("template execution failed", "view", viewName, logging.FieldError, err)
	}
}

// redirectAfterPost sends HTMX clients to path via HX-Location and
// everyone else via 303 See Other.
func redirectAfterPost(w http.ResponseWriter, r *http.Request, path string) {
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Location", fmt.Sprintf(`{"path":%q, "target":"#content"}`, path))
		return
	}
	http.Redirect(w, r, path, http.StatusSeeOther)
}

// formErrors turns a service error into per-field messages for a form.
// Returns nil for errors that are not the user's fault.
func formErrors(err error) map[string]string {
	var verr *tracker.ValidationError
	switch {
	case errors.As(err, &verr):
		return verr.Fields
	case errors.Is(err, tracker.ErrPasswordMismatch):
		return map[string]string{"confirm_password": "Passwords do not match"}
	case errors.Is(err, tracker.ErrUserExists):
		return map[string]string{"username": "Username or email already registered"}
	}
	return nil
}

// SecurityHeaders sets conservative browser security headers.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hdr := w.Header()
		hdr.Set("X-Content-Type-Options", "nosniff")
		hdr.Set("X-Frame-Options", "DENY")
		hdr.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		if !strings.HasPrefix(r.URL.Path, "/api/") {
			hdr.Set("Content-Security-Policy",
				"default-src 'self'; script-src 'self' https://unpkg.com; style-src 'self' 'unsafe-inline'; img-src 'self' data:")
		}
		next.ServeHTTP(w, r)
	})
}

// Health reports liveness.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}
