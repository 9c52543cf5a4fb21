package handler

import (
	"net/http"

	"github.com/floatdr/forum/internal/domain"
	"github.com/floatdr/forum/internal/logger"
	"github.com/floatdr/forum/internal/middleware"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

func (h *Handler) RegisterGetHandler(w http.ResponseWriter, r *http.Request) {
	h.renderTemplate(w, r, "register.html", nil)
}

func (h *Handler) RegisterPostHandler(w http.ResponseWriter, r *http.Request) {
	creds := domain.Credentials{
		Email:    r.FormValue("email"),
		Password: r.FormValue("password"),
	}
	if err := validate.Struct(creds); err != nil {
		h.redirectWithFlash(w, r, "/register", flashCookieError, "Enter a valid email and a password of at least 8 characters.")
		return
	}

	session, err := h.Auth.SignUp(r.Context(), creds)
	if err != nil {
		logger.Log.Error("during registration call", "error", err)
		h.redirectWithFlash(w, r, "/register", flashCookieError, "Registration failed. The email may already be taken.")
		return
	}

	// Some deployments require email confirmation before the first session.
	if session.AccessToken == "" {
		h.redirectWithFlash(w, r, "/login", flashCookieSuccess, "Account created. Confirm your email, then sign in.")
		return
	}

	h.setSessionCookie(w, session)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) LoginGetHandler(w http.ResponseWriter, r *http.Request) {
	h.renderTemplate(w, r, "login.html", nil)
}

func (h *Handler) LoginPostHandler(w http.ResponseWriter, r *http.Request) {
	creds := domain.Credentials{
		Email:    r.FormValue("email"),
		Password: r.FormValue("password"),
	}
	if err := validate.Struct(creds); err != nil {
		h.redirectWithFlash(w, r, "/login", flashCookieError, "Enter a valid email and password.")
		return
	}

	session, err := h.Auth.SignIn(r.Context(), creds)
	if err != nil {
		logger.Log.Warn("sign-in rejected", "email", creds.Email)
		h.redirectWithFlash(w, r, "/login", flashCookieError, "Invalid email or password.")
		return
	}

	h.setSessionCookie(w, session)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(h.Public.Session.CookieName); err == nil && cookie.Value != "" {
		if err := h.Auth.SignOut(r.Context(), cookie.Value); err != nil {
			// The local cookie is cleared regardless.
			logger.Log.Warn("backend signout failed", "error", err)
		}
	}

	middleware.ClearSessionCookies(w, h.Public.Session.CookieName, h.Public.Session.SecureCookies)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) setSessionCookie(w http.ResponseWriter, session domain.Session) {
	middleware.SetSessionCookies(w, h.Public.Session.CookieName, session, h.Public.Session.TTL, h.Public.Session.SecureCookies)
}
