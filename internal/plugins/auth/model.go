// Package auth is the server side of GoBarber authentication: account
// registration (POST /users), session creation and teardown (POST and
// DELETE /sessions), and profile reads and updates for the signed-in user.
//
// Sessions are JSON records in Redis. Clients hold an HS256 bearer token
// that names the session; deleting the record revokes the token.
package auth

import (
	"time"
)

// User is a registered account. PasswordHash never leaves the server.
type User struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	AvatarURL    *string    `json:"avatar_url"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	LastLoginAt  *time.Time `json:"-"`
}

// --- Request DTOs (bound from HTTP requests) ---

// RegisterRequest is the body of POST /users.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest is the body of POST /sessions.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdateProfileRequest is the body of PUT /profile.
type UpdateProfileRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// --- Service Input DTOs (passed from handler to service) ---

// RegisterInput is the input for creating a new user.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// LoginInput is the input for authenticating a user.
type LoginInput struct {
	Email    string
	Password string
}

// UpdateProfileInput carries the editable profile fields.
type UpdateProfileInput struct {
	Name  string
	Email string
}

// --- Sessions ---

// Session is the server-side record behind a bearer token, stored in Redis
// under session:<ID>.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// SessionResponse is the body returned by POST /sessions.
type SessionResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}
