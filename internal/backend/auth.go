package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/floatdr/forum/internal/domain"
	internal_errors "github.com/floatdr/forum/internal/errors"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	User         struct {
		Id uuid.UUID `json:"id"`
	} `json:"user"`
}

func (r *tokenResponse) session() domain.Session {
	return domain.Session{
		AccessToken:  r.AccessToken,
		RefreshToken: r.RefreshToken,
		ExpiresAt:    time.Now().Add(time.Duration(r.ExpiresIn) * time.Second),
		UserId:       r.User.Id,
	}
}

// SignUp registers a new account. The backend may require email confirmation
// before the first sign-in, in which case the returned session is empty.
func (c *Client) SignUp(ctx context.Context, creds domain.Credentials) (domain.Session, error) {
	var session domain.Session
	body, err := json.Marshal(creds)
	if err != nil {
		return session, fmt.Errorf("failed to marshal signup data: %w", err)
	}

	resp, err := c.do(ctx, "POST", "/auth/v1/signup", nil, bytes.NewReader(body), "", nil)
	if err != nil {
		return session, err
	}
	defer resp.Body.Close()

	if err := statusError(resp, "signup"); err != nil {
		return session, err
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return session, fmt.Errorf("cannot decode signup response: %w", err)
	}
	return tr.session(), nil
}

// SignIn exchanges credentials for a session via the password grant.
func (c *Client) SignIn(ctx context.Context, creds domain.Credentials) (domain.Session, error) {
	var session domain.Session
	body, err := json.Marshal(creds)
	if err != nil {
		return session, fmt.Errorf("failed to marshal login data: %w", err)
	}

	query := url.Values{"grant_type": {"password"}}
	resp, err := c.do(ctx, "POST", "/auth/v1/token", query, bytes.NewReader(body), "", nil)
	if err != nil {
		return session, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return session, &internal_errors.ErrorWithStatusCode{Message: "invalid email or password", StatusCode: http.StatusUnauthorized}
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return session, fmt.Errorf("cannot decode login response: %w", err)
	}
	return tr.session(), nil
}

// Refresh trades a refresh token for a fresh session.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (domain.Session, error) {
	var session domain.Session
	body, err := json.Marshal(map[string]string{"refresh_token": refreshToken})
	if err != nil {
		return session, fmt.Errorf("failed to marshal refresh data: %w", err)
	}

	query := url.Values{"grant_type": {"refresh_token"}}
	resp, err := c.do(ctx, "POST", "/auth/v1/token", query, bytes.NewReader(body), "", nil)
	if err != nil {
		return session, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return session, &internal_errors.ErrorWithStatusCode{Message: "session expired", StatusCode: http.StatusUnauthorized}
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return session, fmt.Errorf("cannot decode refresh response: %w", err)
	}
	return tr.session(), nil
}

// SignOut revokes the session on the backend. A failed revocation is not
// fatal, the local session cookie is cleared regardless.
func (c *Client) SignOut(ctx context.Context, token string) error {
	resp, err := c.do(ctx, "POST", "/auth/v1/logout", nil, nil, token, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return statusError(resp, "logout")
}

// TokenExpired reports whether the access token's exp claim has passed. The
// backend rejects stale tokens on its own; this check lets the middleware
// refresh the session proactively instead of bouncing the user to login.
func TokenExpired(token string, now time.Time) bool {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return true
	}
	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return now.After(exp.Time)
}

// UserIdFromToken extracts the user id from an access token without
// verifying the signature. The signing key lives on the backend, which
// verifies the token on every request; here the claims only select which
// account's data to render.
func UserIdFromToken(token string) (domain.UserId, error) {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return uuid.Nil, &internal_errors.ErrorWithStatusCode{Message: "invalid access token", StatusCode: http.StatusUnauthorized}
	}
	sub, err := parsed.Claims.GetSubject()
	if err != nil || sub == "" {
		return uuid.Nil, &internal_errors.ErrorWithStatusCode{Message: "access token has no subject", StatusCode: http.StatusUnauthorized}
	}
	id, err := uuid.Parse(sub)
	if err != nil {
		return uuid.Nil, &internal_errors.ErrorWithStatusCode{Message: "malformed user id in token", StatusCode: http.StatusUnauthorized}
	}
	return id, nil
}
