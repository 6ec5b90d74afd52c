package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"finance-tracker/internal/auth"
	"finance-tracker/internal/logging"
	"finance-tracker/internal/tracker"
)

// AuthMiddleware wraps handlers to require authentication.
// Sessions past the halfway point of their lifetime are renewed.
func (h *Handlers) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(SessionCookieName)
		if err != nil || cookie.Value == "" {
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}

		info, err := h.sessions.ValidateSessionWithInfo(r.Context(), cookie.Value)
		if err != nil {
			h.clearSessionCookie(w)
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}

		now := h.now()
		if info.ExpiresAt.Sub(now) < h.sessionDuration/2 {
			newExpiresAt := now.Add(h.sessionDuration)
			if err := h.sessions.RenewSession(r.Context(), cookie.Value, newExpiresAt); err != nil {
				h.logger(r).Warn("session renewal failed", logging.FieldError, err)
			} else {
				h.setSessionCookie(w, cookie.Value)
			}
		}

		ctx := context.WithValue(r.Context(), UserContextKey, info.User)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// LoginViewModel holds data for the login page.
type LoginViewModel struct {
	Error    string
	Username string
	Notice   string
}

// LoginForm renders the login page.
func (h *Handlers) LoginForm(w http.ResponseWriter, r *http.Request) {
	if h.loggedIn(r) {
		http.Redirect(w, r, "/status", http.StatusFound)
		return
	}
	vm := LoginViewModel{}
	if r.URL.Query().Get("registered") == "1" {
		vm.Notice = "Account created. Please log in."
	}
	h.render(w, r, "login.html", vm)
}

// Login handles the login form submission.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderStatus(w, r, http.StatusBadRequest, "login.html", LoginViewModel{Error: "Invalid form submission"})
		return
	}

	username := strings.TrimSpace(r.FormValue("username"))
	password := r.FormValue("password")
	if username == "" || password == "" {
		h.renderStatus(w, r, http.StatusUnprocessableEntity, "login.html",
			LoginViewModel{Error: "Username and password are required", Username: username})
		return
	}

	user, err := h.svc.Login(r.Context(), username, password)
	if errors.Is(err, tracker.ErrInvalidCredentials) {
		h.renderStatus(w, r, http.StatusUnauthorized, "login.html",
			LoginViewModel{Error: "Invalid username or password", Username: username})
		return
	}
	if err != nil {
		h.logger(r).Error("login failed", logging.FieldError, err)
		h.renderStatus(w, r, http.StatusInternalServerError, "login.html",
			LoginViewModel{Error: "An error occurred. Please try again."})
		return
	}

	token, err := auth.GenerateSessionToken()
	if err != nil {
		h.logger(r).Error("generate session token", logging.FieldError, err)
		h.renderStatus(w, r, http.StatusInternalServerError, "login.html",
			LoginViewModel{Error: "An error occurred. Please try again."})
		return
	}
	if err := h.sessions.CreateSession(r.Context(), token, user.ID, h.now().Add(h.sessionDuration)); err != nil {
		h.logger(r).Error("create session", logging.FieldError, err)
		h.renderStatus(w, r, http.StatusInternalServerError, "login.html",
			LoginViewModel{Error: "An error occurred. Please try again."})
		return
	}

	h.setSessionCookie(w, token)
	h.logger(r).Info("user logged in", logging.FieldUserID, user.ID)
	http.Redirect(w, r, "/status", http.StatusFound)
}

// RegisterViewModel holds data for the registration page.
type RegisterViewModel struct {
	Error  string
	Errors map[string]string
	Values tracker.RegisterInput
}

// RegisterForm renders the registration page.
func (h *Handlers) RegisterForm(w http.ResponseWriter, r *http.Request) {
	if h.loggedIn(r) {
		http.Redirect(w, r, "/status", http.StatusFound)
		return
	}
	h.render(w, r, "register.html", RegisterViewModel{})
}

// Register handles the registration form submission.
func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderStatus(w, r, http.StatusBadRequest, "register.html", RegisterViewModel{Error: "Invalid form submission"})
		return
	}
	in := tracker.RegisterInput{
		Username:        r.FormValue("username"),
		Email:           r.FormValue("email"),
		Password:        r.FormValue("password"),
		ConfirmPassword: r.FormValue("confirm_password"),
	}

	_, err := h.svc.Register(r.Context(), in)
	if err != nil {
		in.Password, in.ConfirmPassword = "", ""
		if fields := formErrors(err); fields != nil {
			status := http.StatusUnprocessableEntity
			if errors.Is(err, tracker.ErrUserExists) {
				status = http.StatusConflict
			}
			h.renderStatus(w, r, status, "register.html", RegisterViewModel{Errors: fields, Values: in})
			return
		}
		h.logger(r).Error("register failed", logging.FieldError, err)
		h.renderStatus(w, r, http.StatusInternalServerError, "register.html",
			RegisterViewModel{Error: "An error occurred. Please try again.", Values: in})
		return
	}

	http.Redirect(w, r, "/login?registered=1", http.StatusSeeOther)
}

// Logout handles user logout.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(SessionCookieName); err == nil {
		if err := h.sessions.DeleteSession(r.Context(), cookie.Value); err != nil {
			h.logger(r).Warn("delete session failed", logging.FieldError, err)
		}
	}
	h.clearSessionCookie(w)
	http.Redirect(w, r, "/login", http.StatusFound)
}

func (h *Handlers) loggedIn(r *http.Request) bool {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil || cookie.Value == "" {
		return false
	}
	_, err = h.sessions.ValidateSession(r.Context(), cookie.Value)
	return err == nil
}

func (h *Handlers) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.sessionDuration.Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handlers) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}
