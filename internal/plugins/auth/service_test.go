package auth

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/gobarber/gobarber/internal/apperror"
)

// --- Mock Repository ---

// mockUserRepo implements UserRepository for testing.
type mockUserRepo struct {
	createFn          func(ctx context.Context, user *User) error
	findByIDFn        func(ctx context.Context, id string) (*User, error)
	findByEmailFn     func(ctx context.Context, email string) (*User, error)
	emailExistsFn     func(ctx context.Context, email string) (bool, error)
	updateLastLoginFn func(ctx context.Context, id string) error
	updateProfileFn   func(ctx context.Context, id, name, email string) error
}

func (m *mockUserRepo) Create(ctx context.Context, user *User) error {
	if m.createFn != nil {
		return m.createFn(ctx, user)
	}
	return nil
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*User, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, apperror.NewNotFound("user not found")
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*User, error) {
	if m.findByEmailFn != nil {
		return m.findByEmailFn(ctx, email)
	}
	return nil, apperror.NewNotFound("user not found")
}

func (m *mockUserRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	if m.emailExistsFn != nil {
		return m.emailExistsFn(ctx, email)
	}
	return false, nil
}

func (m *mockUserRepo) UpdateLastLogin(ctx context.Context, id string) error {
	if m.updateLastLoginFn != nil {
		return m.updateLastLoginFn(ctx, id)
	}
	return nil
}

func (m *mockUserRepo) UpdateProfile(ctx context.Context, id, name, email string) error {
	if m.updateProfileFn != nil {
		return m.updateProfileFn(ctx, id, name, email)
	}
	return nil
}

// --- Test Helpers ---

// newTestAuthService wires the service to a miniredis-backed session store.
func newTestAuthService(t *testing.T, repo *mockUserRepo) (*authService, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	tokens, err := NewTokenManager("test-secret-key-0123456789abcdef", "gobarber-test", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenManager: %v", err)
	}

	return &authService{
		repo:     repo,
		sessions: NewRedisSessionStore(rdb),
		tokens:   tokens,
		now:      time.Now,
	}, mr
}

// assertAppError checks that err is an *apperror.AppError with the expected code.
func assertAppError(t *testing.T, err error, expectedCode int) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error with code %d, got nil", expectedCode)
	}
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *apperror.AppError, got %T: %v", err, err)
	}
	if appErr.Code != expectedCode {
		t.Errorf("expected status %d, got %d (message: %s)", expectedCode, appErr.Code, appErr.Message)
	}
}

// registeredUser returns a user whose stored hash matches password.
func registeredUser(t *testing.T, password string) *User {
	t.Helper()
	hash, err := hashPassword(password)
	if err != nil {
		t.Fatalf("hashPassword failed: %v", err)
	}
	return &User{
		ID:           "user-123",
		Name:         "John Doe",
		Email:        "johndoe@example.com",
		PasswordHash: hash,
	}
}

// --- Register Tests ---

func TestRegister_Success(t *testing.T) {
	repo := &mockUserRepo{
		createFn: func(ctx context.Context, user *User) error {
			if user.Email != "johndoe@example.com" {
				t.Errorf("expected email johndoe@example.com, got %s", user.Email)
			}
			if user.Name != "John Doe" {
				t.Errorf("expected name John Doe, got %s", user.Name)
			}
			if user.PasswordHash == "" || user.PasswordHash == "123456" {
				t.Error("expected password hash to be set")
			}
			return nil
		},
	}

	svc, _ := newTestAuthService(t, repo)
	user, err := svc.Register(context.Background(), RegisterInput{
		Name:     "John Doe",
		Email:    "JohnDoe@Example.com",
		Password: "123456",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.ID == "" {
		t.Error("expected user ID to be generated")
	}
	if user.CreatedAt.IsZero() {
		t.Error("expected created_at to be set")
	}
}

func TestRegister_SanitizesName(t *testing.T) {
	var captured string
	repo := &mockUserRepo{
		createFn: func(ctx context.Context, user *User) error {
			captured = user.Name
			return nil
		},
	}

	svc, _ := newTestAuthService(t, repo)
	_, err := svc.Register(context.Background(), RegisterInput{
		Name:     "<b>John</b> <script>x()</script>Doe",
		Email:    "johndoe@example.com",
		Password: "123456",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if captured != "John Doe" {
		t.Errorf("expected sanitized name %q, got %q", "John Doe", captured)
	}
}

func TestRegister_Validation(t *testing.T) {
	tests := []struct {
		name  string
		input RegisterInput
	}{
		{"missing name", RegisterInput{Email: "a@example.com", Password: "123456"}},
		{"short name", RegisterInput{Name: "J", Email: "a@example.com", Password: "123456"}},
		{"missing email", RegisterInput{Name: "John", Password: "123456"}},
		{"invalid email", RegisterInput{Name: "John", Email: "not-an-email", Password: "123456"}},
		{"short password", RegisterInput{Name: "John", Email: "a@example.com", Password: "123"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestAuthService(t, &mockUserRepo{})
			_, err := svc.Register(context.Background(), tt.input)
			assertAppError(t, err, http.StatusUnprocessableEntity)
		})
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	repo := &mockUserRepo{
		emailExistsFn: func(ctx context.Context, email string) (bool, error) {
			return true, nil
		},
	}

	svc, _ := newTestAuthService(t, repo)
	_, err := svc.Register(context.Background(), RegisterInput{
		Name:     "John Doe",
		Email:    "taken@example.com",
		Password: "123456",
	})
	assertAppError(t, err, http.StatusConflict)
}

func TestRegister_DuplicateRace(t *testing.T) {
	repo := &mockUserRepo{
		createFn: func(ctx context.Context, user *User) error {
			return ErrDuplicateEmail
		},
	}

	svc, _ := newTestAuthService(t, repo)
	_, err := svc.Register(context.Background(), RegisterInput{
		Name:     "John Doe",
		Email:    "johndoe@example.com",
		Password: "123456",
	})
	assertAppError(t, err, http.StatusConflict)
}

func TestRegister_CreateError(t *testing.T) {
	repo := &mockUserRepo{
		createFn: func(ctx context.Context, user *User) error {
			return errors.New("db write error")
		},
	}

	svc, _ := newTestAuthService(t, repo)
	_, err := svc.Register(context.Background(), RegisterInput{
		Name:     "John Doe",
		Email:    "johndoe@example.com",
		Password: "123456",
	})
	assertAppError(t, err, http.StatusInternalServerError)
}

// --- Login / Session Tests ---

func TestLogin_Success(t *testing.T) {
	user := registeredUser(t, "123456")
	lastLoginUpdated := false
	repo := &mockUserRepo{
		findByEmailFn: func(ctx context.Context, email string) (*User, error) {
			if email != "johndoe@example.com" {
				t.Errorf("expected normalized email, got %s", email)
			}
			return user, nil
		},
		updateLastLoginFn: func(ctx context.Context, id string) error {
			lastLoginUpdated = true
			return nil
		},
	}

	svc, mr := newTestAuthService(t, repo)
	token, got, err := svc.Login(context.Background(), LoginInput{
		Email:    " JohnDoe@example.com ",
		Password: "123456",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if token == "" {
		t.Fatal("expected token")
	}
	if got.Email != "johndoe@example.com" {
		t.Errorf("expected user email, got %s", got.Email)
	}
	if !lastLoginUpdated {
		t.Error("expected last login to be updated")
	}
	if len(mr.Keys()) != 1 {
		t.Fatalf("expected one session key, got %v", mr.Keys())
	}
	if ttl := mr.TTL(mr.Keys()[0]); ttl != time.Hour {
		t.Errorf("expected session TTL of 1h, got %s", ttl)
	}

	session, err := svc.ValidateSession(context.Background(), token)
	if err != nil {
		t.Fatalf("ValidateSession: %v", err)
	}
	if session.UserID != user.ID {
		t.Errorf("expected session for %s, got %s", user.ID, session.UserID)
	}
}

func TestLogin_LastLoginFailureIsIgnored(t *testing.T) {
	user := registeredUser(t, "123456")
	repo := &mockUserRepo{
		findByEmailFn: func(ctx context.Context, email string) (*User, error) {
			return user, nil
		},
		updateLastLoginFn: func(ctx context.Context, id string) error {
			return errors.New("db timeout")
		},
	}

	svc, _ := newTestAuthService(t, repo)
	if _, _, err := svc.Login(context.Background(), LoginInput{Email: user.Email, Password: "123456"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	user := registeredUser(t, "123456")
	repo := &mockUserRepo{
		findByEmailFn: func(ctx context.Context, email string) (*User, error) {
			return user, nil
		},
	}

	svc, mr := newTestAuthService(t, repo)
	_, _, err := svc.Login(context.Background(), LoginInput{Email: user.Email, Password: "wrong"})
	assertAppError(t, err, http.StatusUnauthorized)
	if len(mr.Keys()) != 0 {
		t.Errorf("expected no session to be created, got %v", mr.Keys())
	}
}

func TestLogin_UnknownEmailLooksLikeWrongPassword(t *testing.T) {
	svc, _ := newTestAuthService(t, &mockUserRepo{})
	_, _, err := svc.Login(context.Background(), LoginInput{Email: "nobody@example.com", Password: "123456"})
	assertAppError(t, err, http.StatusUnauthorized)

	if msg := apperror.SafeMessage(err); msg != invalidCredentials {
		t.Errorf("expected generic message, got %q", msg)
	}
}

func TestLogin_RepositoryError(t *testing.T) {
	repo := &mockUserRepo{
		findByEmailFn: func(ctx context.Context, email string) (*User, error) {
			return nil, errors.New("connection refused")
		},
	}

	svc, _ := newTestAuthService(t, repo)
	_, _, err := svc.Login(context.Background(), LoginInput{Email: "a@example.com", Password: "123456"})
	assertAppError(t, err, http.StatusInternalServerError)
}

func TestDestroySession_RevokesToken(t *testing.T) {
	user := registeredUser(t, "123456")
	repo := &mockUserRepo{
		findByEmailFn: func(ctx context.Context, email string) (*User, error) {
			return user, nil
		},
	}

	svc, mr := newTestAuthService(t, repo)
	ctx := context.Background()
	token, _, err := svc.Login(ctx, LoginInput{Email: user.Email, Password: "123456"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	if err := svc.DestroySession(ctx, token); err != nil {
		t.Fatalf("DestroySession: %v", err)
	}
	if len(mr.Keys()) != 0 {
		t.Errorf("expected session to be deleted, got %v", mr.Keys())
	}

	_, err = svc.ValidateSession(ctx, token)
	assertAppError(t, err, http.StatusUnauthorized)

	// A second sign-out is a no-op.
	if err := svc.DestroySession(ctx, token); err != nil {
		t.Errorf("expected idempotent destroy, got %v", err)
	}
}

func TestValidateSession_ExpiredInRedis(t *testing.T) {
	user := registeredUser(t, "123456")
	repo := &mockUserRepo{
		findByEmailFn: func(ctx context.Context, email string) (*User, error) {
			return user, nil
		},
	}

	svc, mr := newTestAuthService(t, repo)
	token, _, err := svc.Login(context.Background(), LoginInput{Email: user.Email, Password: "123456"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	mr.FastForward(2 * time.Hour)

	_, err = svc.ValidateSession(context.Background(), token)
	assertAppError(t, err, http.StatusUnauthorized)
}

func TestValidateSession_SessionOfAnotherUser(t *testing.T) {
	user := registeredUser(t, "123456")
	svc, _ := newTestAuthService(t, &mockUserRepo{})
	ctx := context.Background()

	// A validly signed token that names the victim's session under a
	// different subject.
	victim := Session{ID: "victim-session", UserID: user.ID, Email: user.Email, CreatedAt: time.Now()}
	if err := svc.sessions.Save(ctx, victim, time.Hour); err != nil {
		t.Fatalf("Save: %v", err)
	}
	forged, err := svc.tokens.Issue("someone-else", victim.ID)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	_, err = svc.ValidateSession(ctx, forged)
	assertAppError(t, err, http.StatusUnauthorized)
}

func TestValidateSession_GarbageToken(t *testing.T) {
	svc, _ := newTestAuthService(t, &mockUserRepo{})
	_, err := svc.ValidateSession(context.Background(), "jwt-token")
	assertAppError(t, err, http.StatusUnauthorized)
}

// --- Profile Tests ---

func TestUpdateProfile_Success(t *testing.T) {
	user := registeredUser(t, "123456")
	var gotName, gotEmail string
	repo := &mockUserRepo{
		findByIDFn: func(ctx context.Context, id string) (*User, error) {
			return user, nil
		},
		updateProfileFn: func(ctx context.Context, id, name, email string) error {
			gotName, gotEmail = name, email
			return nil
		},
	}

	svc, _ := newTestAuthService(t, repo)
	updated, err := svc.UpdateProfile(context.Background(), user.ID, UpdateProfileInput{
		Name:  "John Tre",
		Email: "John-Doe@example.com",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotName != "John Tre" || gotEmail != "john-doe@example.com" {
		t.Errorf("unexpected update args: %q %q", gotName, gotEmail)
	}
	if updated.Email != "john-doe@example.com" {
		t.Errorf("expected updated email, got %s", updated.Email)
	}
}

func TestUpdateProfile_EmailTaken(t *testing.T) {
	user := registeredUser(t, "123456")
	repo := &mockUserRepo{
		findByIDFn: func(ctx context.Context, id string) (*User, error) {
			return user, nil
		},
		emailExistsFn: func(ctx context.Context, email string) (bool, error) {
			return email == "taken@example.com", nil
		},
	}

	svc, _ := newTestAuthService(t, repo)
	_, err := svc.UpdateProfile(context.Background(), user.ID, UpdateProfileInput{
		Name:  "John Doe",
		Email: "taken@example.com",
	})
	assertAppError(t, err, http.StatusConflict)
}

func TestUpdateProfile_KeepsOwnEmail(t *testing.T) {
	user := registeredUser(t, "123456")
	repo := &mockUserRepo{
		findByIDFn: func(ctx context.Context, id string) (*User, error) {
			return user, nil
		},
		emailExistsFn: func(ctx context.Context, email string) (bool, error) {
			t.Error("email existence should not be checked for an unchanged email")
			return true, nil
		},
	}

	svc, _ := newTestAuthService(t, repo)
	if _, err := svc.UpdateProfile(context.Background(), user.ID, UpdateProfileInput{
		Name:  "Johnny",
		Email: user.Email,
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestGetProfile_NotFound(t *testing.T) {
	svc, _ := newTestAuthService(t, &mockUserRepo{})
	_, err := svc.GetProfile(context.Background(), "missing")
	assertAppError(t, err, http.StatusNotFound)
}

// --- Password Hashing Tests ---

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := hashPassword("my-secret-password-123")
	if err != nil {
		t.Fatalf("hashPassword failed: %v", err)
	}

	if !verifyPassword("my-secret-password-123", hash) {
		t.Error("expected correct password to verify")
	}
	if verifyPassword("wrong-password", hash) {
		t.Error("expected wrong password to fail verification")
	}

	other, err := hashPassword("my-secret-password-123")
	if err != nil {
		t.Fatalf("hashPassword failed: %v", err)
	}
	if hash == other {
		t.Error("expected different salts to produce different hashes")
	}
}

func TestVerifyPassword_InvalidHash(t *testing.T) {
	tests := []struct {
		name string
		hash string
	}{
		{"empty string", ""},
		{"random text", "not-a-hash"},
		{"too few parts", "$argon2id$v=19$m=65536"},
		{"wrong algorithm", "$argon2i$v=19$m=65536,t=3,p=4$c2FsdA$aGFzaA"},
		{"corrupted salt", "$argon2id$v=19$m=65536,t=3,p=4$!!!invalid$aGFzaA"},
		{"corrupted hash", "$argon2id$v=19$m=65536,t=3,p=4$c2FsdA$!!!invalid"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if verifyPassword("password", tt.hash) {
				t.Error("expected invalid hash to fail verification")
			}
		})
	}
}
