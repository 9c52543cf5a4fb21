package domain

import "time"

// Session is what the auth service hands back after sign-in/sign-up.
type Session struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	ExpiresAt    time.Time `json:"expires_at"`
	UserId       UserId    `json:"user_id"`
}

type Credentials struct {
	Email    Email    `json:"email" validate:"required,email"`
	Password Password `json:"password" validate:"required,min=8"`
}
