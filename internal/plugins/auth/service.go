package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gobarber/gobarber/internal/apperror"
	"github.com/gobarber/gobarber/internal/sanitize"
)

// Field limits enforced on registration and profile updates.
const (
	minNameLen     = 2
	maxNameLen     = 100
	maxEmailLen    = 255
	minPasswordLen = 6
	maxPasswordLen = 128
)

// invalidCredentials is deliberately identical for unknown email and wrong
// password.
const invalidCredentials = "invalid email or password"

// AuthService defines the business logic contract for authentication.
// Handlers call these methods and never touch the repository directly.
type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*User, error)
	Login(ctx context.Context, input LoginInput) (token string, user *User, err error)
	ValidateSession(ctx context.Context, token string) (*Session, error)
	DestroySession(ctx context.Context, token string) error
	GetProfile(ctx context.Context, userID string) (*User, error)
	UpdateProfile(ctx context.Context, userID string, input UpdateProfileInput) (*User, error)
}

// authService implements AuthService with argon2id hashing, JWT bearer
// tokens, and Redis sessions.
type authService struct {
	repo     UserRepository
	sessions SessionStore
	tokens   *TokenManager
	now      func() time.Time
}

// NewAuthService creates a new auth service with the given dependencies.
func NewAuthService(repo UserRepository, sessions SessionStore, tokens *TokenManager) AuthService {
	return &authService{
		repo:     repo,
		sessions: sessions,
		tokens:   tokens,
		now:      time.Now,
	}
}

// Register validates input, rejects duplicate emails before the expensive
// hash, and persists the new user.
func (s *authService) Register(ctx context.Context, input RegisterInput) (*User, error) {
	// Validate the sanitised name so markup-only names count as empty.
	name := sanitize.PlainText(input.Name)
	email := normalizeEmail(input.Email)

	if err := validateName(name); err != nil {
		return nil, err
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(input.Password); err != nil {
		return nil, err
	}

	// Cheap pre-check. The unique index on users.email still decides races
	// between two sign-ups, which surface below as ErrDuplicateEmail.
	exists, err := s.repo.EmailExists(ctx, email)
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("checking email: %w", err))
	}
	if exists {
		return nil, apperror.NewConflict("an account with this email already exists")
	}

	hash, err := hashPassword(input.Password)
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("hashing password: %w", err))
	}

	now := s.now().UTC()
	user := &User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			return nil, apperror.NewConflict("an account with this email already exists")
		}
		return nil, apperror.NewInternal(fmt.Errorf("creating user: %w", err))
	}

	slog.Info("user registered",
		slog.String("user_id", user.ID),
		slog.String("email", user.Email),
	)

	return user, nil
}

// Login authenticates by email and password and opens a new session.
func (s *authService) Login(ctx context.Context, input LoginInput) (string, *User, error) {
	user, err := s.repo.FindByEmail(ctx, normalizeEmail(input.Email))
	if err != nil {
		// Unknown email and wrong password return the same error so the
		// endpoint cannot be used to probe which accounts exist.
		if apperror.IsNotFound(err) {
			return "", nil, apperror.NewUnauthorized(invalidCredentials)
		}
		return "", nil, apperror.NewInternal(fmt.Errorf("finding user: %w", err))
	}

	if !verifyPassword(input.Password, user.PasswordHash) {
		return "", nil, apperror.NewUnauthorized(invalidCredentials)
	}

	token, err := s.createSession(ctx, user)
	if err != nil {
		return "", nil, apperror.NewInternal(fmt.Errorf("creating session: %w", err))
	}

	// Non-critical; a failed timestamp update must not fail the login.
	if err := s.repo.UpdateLastLogin(ctx, user.ID); err != nil {
		slog.Warn("failed to update last login",
			slog.String("user_id", user.ID),
			slog.Any("error", err),
		)
	}

	slog.Info("user signed in",
		slog.String("user_id", user.ID),
		slog.String("email", user.Email),
	)

	return token, user, nil
}

// ValidateSession verifies the token and checks that its session is still
// live in Redis.
func (s *authService) ValidateSession(ctx context.Context, token string) (*Session, error) {
	// Signature, issuer and expiry are checked first so forged tokens never
	// reach Redis.
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, apperror.NewUnauthorized("session expired or invalid")
	}

	// A valid signature is not enough: logout deletes the record, and that
	// is what revokes the token before it expires.
	session, err := s.sessions.Get(ctx, claims.SessionID)
	if errors.Is(err, ErrSessionNotFound) {
		return nil, apperror.NewUnauthorized("session expired or invalid")
	}
	if err != nil {
		return nil, apperror.NewInternal(err)
	}
	// The session must belong to the token's subject. A token naming
	// someone else's session id is rejected like any other bad token.
	if session.UserID != claims.Subject {
		return nil, apperror.NewUnauthorized("session expired or invalid")
	}

	return session, nil
}

// DestroySession deletes the session named by token. Destroying an
// already-deleted session succeeds.
func (s *authService) DestroySession(ctx context.Context, token string) error {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return apperror.NewUnauthorized("session expired or invalid")
	}

	// Deleting a missing key is not an error, so logout is idempotent.
	if err := s.sessions.Delete(ctx, claims.SessionID); err != nil {
		return apperror.NewInternal(err)
	}

	slog.Info("user signed out",
		slog.String("user_id", claims.Subject),
		slog.String("session_id", claims.SessionID),
	)
	return nil
}

// GetProfile returns the user behind an authenticated session.
func (s *authService) GetProfile(ctx context.Context, userID string) (*User, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, err
		}
		return nil, apperror.NewInternal(fmt.Errorf("finding user: %w", err))
	}
	return user, nil
}

// UpdateProfile changes name and email. Moving to an email held by another
// account is a conflict.
func (s *authService) UpdateProfile(ctx context.Context, userID string, input UpdateProfileInput) (*User, error) {
	name := sanitize.PlainText(input.Name)
	email := normalizeEmail(input.Email)

	if err := validateName(name); err != nil {
		return nil, err
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}

	user, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	// Keeping one's own email is not a conflict.
	if email != user.Email {
		exists, err := s.repo.EmailExists(ctx, email)
		if err != nil {
			return nil, apperror.NewInternal(fmt.Errorf("checking email: %w", err))
		}
		if exists {
			return nil, apperror.NewConflict("an account with this email already exists")
		}
	}

	if err := s.repo.UpdateProfile(ctx, userID, name, email); err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			return nil, apperror.NewConflict("an account with this email already exists")
		}
		if apperror.IsNotFound(err) {
			return nil, err
		}
		return nil, apperror.NewInternal(fmt.Errorf("updating profile: %w", err))
	}

	user.Name = name
	user.Email = email
	user.UpdatedAt = s.now().UTC()
	return user, nil
}

// createSession stores a session record and returns the bearer token for it.
// The record is written first and expires with the token, so a token is
// never handed out for a session Redis does not hold.
func (s *authService) createSession(ctx context.Context, user *User) (string, error) {
	session := Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Email:     user.Email,
		CreatedAt: s.now().UTC(),
	}

	if err := s.sessions.Save(ctx, session, s.tokens.TTL()); err != nil {
		return "", err
	}

	token, err := s.tokens.Issue(user.ID, session.ID)
	if err != nil {
		// Nobody can present this session id, so remove the record now
		// instead of waiting for its TTL. A failed delete only costs that wait.
		_ = s.sessions.Delete(ctx, session.ID)
		return "", err
	}
	return token, nil
}

// --- Validation helpers ---

// normalizeEmail lowercases and trims so lookups and the unique index agree
// on one spelling per address.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// validateName counts runes, not bytes, so accented names get the full
// allowance.
func validateName(name string) error {
	n := len([]rune(name))
	if n == 0 {
		return apperror.NewValidation("name is required")
	}
	if n < minNameLen {
		return apperror.NewValidation(fmt.Sprintf("name must be at least %d characters", minNameLen))
	}
	if n > maxNameLen {
		return apperror.NewValidation(fmt.Sprintf("name must be at most %d characters", maxNameLen))
	}
	return nil
}

// validateEmail accepts a bare address only. ParseAddress also takes forms
// like "John <john@example.com>", which the Address comparison rejects.
func validateEmail(email string) error {
	if email == "" {
		return apperror.NewValidation("email is required")
	}
	if len(email) > maxEmailLen {
		return apperror.NewValidation("email is too long")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return apperror.NewValidation("email is invalid")
	}
	return nil
}

// validatePassword bounds length in bytes. The upper bound caps the work
// argon2 does for a single request.
func validatePassword(password string) error {
	if password == "" {
		return apperror.NewValidation("password is required")
	}
	if len(password) < minPasswordLen {
		return apperror.NewValidation(fmt.Sprintf("password must be at least %d characters", minPasswordLen))
	}
	if len(password) > maxPasswordLen {
		return apperror.NewValidation(fmt.Sprintf("password must be at most %d characters", maxPasswordLen))
	}
	return nil
}
