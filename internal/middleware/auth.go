package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/floatdr/forum/internal/backend"
	"github.com/floatdr/forum/internal/domain"
	"github.com/floatdr/forum/internal/logger"
)

// ProfileSource is the slice of the data store the auth middleware needs.
type ProfileSource interface {
	GetProfile(ctx context.Context, id domain.UserId) (*domain.Profile, error)
	GetMembership(ctx context.Context, userId domain.UserId) (*domain.Membership, error)
}

// SourceFactory binds a data store to a session token. The pg driver ignores
// the token; the rest driver needs it for row-level security.
type SourceFactory func(token string) ProfileSource

// Refresher exchanges a refresh token for a new session once the access
// token has expired. Nil disables refresh; stale sessions then go back
// through login.
type Refresher interface {
	Refresh(ctx context.Context, refreshToken string) (domain.Session, error)
}

// refreshTokenTTL bounds how long an idle browser session can come back;
// the backend revokes rotated refresh tokens on its own schedule.
const refreshTokenTTL = 30 * 24 * time.Hour

// CurrentUser is what authenticated handlers get out of the request context.
type CurrentUser struct {
	Profile domain.Profile
	Token   string
}

type key int

const currentUserKey key = 0

type Auth struct {
	sources       SourceFactory
	refresher     Refresher
	cookieName    string
	secureCookies bool
}

func NewAuth(sources SourceFactory, refresher Refresher, cookieName string, secureCookies bool) *Auth {
	return &Auth{sources: sources, refresher: refresher, cookieName: cookieName, secureCookies: secureCookies}
}

// RefreshCookieName derives the refresh-token cookie from the session cookie
// name, so both stay configurable through one key.
func RefreshCookieName(sessionCookie string) string {
	return sessionCookie + "_refresh"
}

// OptionalAuth populates the current user when a valid session cookie is
// present, but lets anonymous requests through.
func (a *Auth) OptionalAuth() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if user, err := a.extractUser(w, r); err == nil {
				r = r.WithContext(context.WithValue(r.Context(), currentUserKey, user))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// NeedAuth redirects anonymous requests to the login screen.
func (a *Auth) NeedAuth() func(http.Handler) http.Handler {
	return a.auth(false)
}

// AdminOnly requires a signed-in admin profile.
func (a *Auth) AdminOnly() func(http.Handler) http.Handler {
	return a.auth(true)
}

func (a *Auth) auth(adminOnly bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := a.extractUser(w, r)
			if err != nil {
				a.clearCookieAndRedirect(w, r)
				return
			}
			if adminOnly && !user.Profile.IsAdmin {
				http.Error(w, "admins only", http.StatusForbidden)
				return
			}
			ctx := context.WithValue(r.Context(), currentUserKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func (a *Auth) extractUser(w http.ResponseWriter, r *http.Request) (*CurrentUser, error) {
	cookie, err := r.Cookie(a.cookieName)
	if err != nil || cookie.Value == "" {
		return nil, http.ErrNoCookie
	}
	token := cookie.Value

	if backend.TokenExpired(token, time.Now()) {
		token, err = a.refreshSession(w, r)
		if err != nil {
			return nil, err
		}
	}

	userId, err := backend.UserIdFromToken(token)
	if err != nil {
		return nil, err
	}

	profile, err := a.sources(token).GetProfile(r.Context(), userId)
	if err != nil {
		logger.Log.Warn("session token valid but profile lookup failed", "user_id", userId, "error", err)
		return nil, err
	}
	return &CurrentUser{Profile: *profile, Token: token}, nil
}

// refreshSession trades the refresh-token cookie for a new session, rotates
// both cookies and returns the fresh access token.
func (a *Auth) refreshSession(w http.ResponseWriter, r *http.Request) (string, error) {
	if a.refresher == nil {
		return "", http.ErrNoCookie
	}
	cookie, err := r.Cookie(RefreshCookieName(a.cookieName))
	if err != nil || cookie.Value == "" {
		return "", http.ErrNoCookie
	}

	session, err := a.refresher.Refresh(r.Context(), cookie.Value)
	if err != nil {
		logger.Log.Warn("session refresh rejected", "error", err)
		return "", err
	}

	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		ttl = time.Hour
	}
	SetSessionCookies(w, a.cookieName, session, ttl, a.secureCookies)
	return session.AccessToken, nil
}

// SetSessionCookies writes the access-token cookie and, when the session
// carries one, the long-lived refresh-token cookie.
func SetSessionCookies(w http.ResponseWriter, cookieName string, session domain.Session, ttl time.Duration, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    session.AccessToken,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
	if session.RefreshToken != "" {
		http.SetCookie(w, &http.Cookie{
			Name:     RefreshCookieName(cookieName),
			Value:    session.RefreshToken,
			Path:     "/",
			MaxAge:   int(refreshTokenTTL.Seconds()),
			HttpOnly: true,
			Secure:   secure,
			SameSite: http.SameSiteLaxMode,
		})
	}
}

// ClearSessionCookies expires both session cookies.
func ClearSessionCookies(w http.ResponseWriter, cookieName string, secure bool) {
	for _, name := range []string{cookieName, RefreshCookieName(cookieName)} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   secure,
			SameSite: http.SameSiteLaxMode,
		})
	}
}

func (a *Auth) clearCookieAndRedirect(w http.ResponseWriter, r *http.Request) {
	ClearSessionCookies(w, a.cookieName, a.secureCookies)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// WithUser returns a context carrying the signed-in user.
func WithUser(ctx context.Context, user *CurrentUser) context.Context {
	return context.WithValue(ctx, currentUserKey, user)
}

// GetUserFromContext retrieves the signed-in user, nil for anonymous.
func GetUserFromContext(r *http.Request) *CurrentUser {
	user, ok := r.Context().Value(currentUserKey).(*CurrentUser)
	if !ok {
		return nil
	}
	return user
}
