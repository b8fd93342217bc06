package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/gobarber/gobarber/internal/apperror"
)

// mockAuthService implements AuthService for handler tests.
type mockAuthService struct {
	registerFn        func(ctx context.Context, input RegisterInput) (*User, error)
	loginFn           func(ctx context.Context, input LoginInput) (string, *User, error)
	validateSessionFn func(ctx context.Context, token string) (*Session, error)
	destroySessionFn  func(ctx context.Context, token string) error
	getProfileFn      func(ctx context.Context, userID string) (*User, error)
	updateProfileFn   func(ctx context.Context, userID string, input UpdateProfileInput) (*User, error)
}

func (m *mockAuthService) Register(ctx context.Context, input RegisterInput) (*User, error) {
	if m.registerFn != nil {
		return m.registerFn(ctx, input)
	}
	return &User{ID: "user-1", Name: input.Name, Email: input.Email}, nil
}

func (m *mockAuthService) Login(ctx context.Context, input LoginInput) (string, *User, error) {
	if m.loginFn != nil {
		return m.loginFn(ctx, input)
	}
	return "", nil, apperror.NewUnauthorized(invalidCredentials)
}

func (m *mockAuthService) ValidateSession(ctx context.Context, token string) (*Session, error) {
	if m.validateSessionFn != nil {
		return m.validateSessionFn(ctx, token)
	}
	return nil, apperror.NewUnauthorized("session expired or invalid")
}

func (m *mockAuthService) DestroySession(ctx context.Context, token string) error {
	if m.destroySessionFn != nil {
		return m.destroySessionFn(ctx, token)
	}
	return nil
}

func (m *mockAuthService) GetProfile(ctx context.Context, userID string) (*User, error) {
	if m.getProfileFn != nil {
		return m.getProfileFn(ctx, userID)
	}
	return nil, apperror.NewNotFound("user not found")
}

func (m *mockAuthService) UpdateProfile(ctx context.Context, userID string, input UpdateProfileInput) (*User, error) {
	if m.updateProfileFn != nil {
		return m.updateProfileFn(ctx, userID, input)
	}
	return &User{ID: userID, Name: input.Name, Email: input.Email}, nil
}

func newJSONContext(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestHandler_Register(t *testing.T) {
	var got RegisterInput
	h := NewHandler(&mockAuthService{
		registerFn: func(ctx context.Context, input RegisterInput) (*User, error) {
			got = input
			return &User{ID: "user-1", Name: input.Name, Email: input.Email}, nil
		},
	}, nil)

	c, rec := newJSONContext(http.MethodPost, "/users",
		`{"name":"John Doe","email":"johndoe@example.com","password":"123456"}`)
	if err := h.Register(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}
	if got.Password != "123456" || got.Email != "johndoe@example.com" {
		t.Errorf("unexpected input passed to service: %+v", got)
	}

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if _, leaked := body["password_hash"]; leaked {
		t.Error("password hash must not be serialized")
	}
	if body["email"] != "johndoe@example.com" {
		t.Errorf("unexpected email in body: %v", body["email"])
	}
}

func TestHandler_Register_InvalidBody(t *testing.T) {
	h := NewHandler(&mockAuthService{}, nil)
	c, _ := newJSONContext(http.MethodPost, "/users", `{"name":`)
	assertAppError(t, h.Register(c), http.StatusBadRequest)
}

func TestHandler_Register_ServiceError(t *testing.T) {
	h := NewHandler(&mockAuthService{
		registerFn: func(ctx context.Context, input RegisterInput) (*User, error) {
			return nil, apperror.NewConflict("an account with this email already exists")
		},
	}, nil)
	c, _ := newJSONContext(http.MethodPost, "/users",
		`{"name":"John Doe","email":"johndoe@example.com","password":"123456"}`)
	assertAppError(t, h.Register(c), http.StatusConflict)
}

func TestHandler_Login(t *testing.T) {
	h := NewHandler(&mockAuthService{
		loginFn: func(ctx context.Context, input LoginInput) (string, *User, error) {
			return "jwt-token", &User{ID: "user-1", Email: input.Email}, nil
		},
	}, nil)

	c, rec := newJSONContext(http.MethodPost, "/sessions",
		`{"email":"johndoe@example.com","password":"123456"}`)
	if err := h.Login(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}

	var resp struct {
		User  map[string]any `json:"user"`
		Token string         `json:"token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if resp.Token != "jwt-token" {
		t.Errorf("expected token jwt-token, got %q", resp.Token)
	}
	if resp.User["email"] != "johndoe@example.com" {
		t.Errorf("unexpected user: %v", resp.User)
	}
}

func TestHandler_Logout(t *testing.T) {
	var destroyed string
	h := NewHandler(&mockAuthService{
		destroySessionFn: func(ctx context.Context, token string) error {
			destroyed = token
			return nil
		},
	}, nil)

	c, rec := newJSONContext(http.MethodDelete, "/sessions", "")
	c.Request().Header.Set(echo.HeaderAuthorization, "Bearer jwt-token")
	if err := h.Logout(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rec.Code)
	}
	if destroyed != "jwt-token" {
		t.Errorf("expected token to be destroyed, got %q", destroyed)
	}
}

func TestHandler_Logout_NoToken(t *testing.T) {
	h := NewHandler(&mockAuthService{}, nil)
	c, _ := newJSONContext(http.MethodDelete, "/sessions", "")
	assertAppError(t, h.Logout(c), http.StatusUnauthorized)
}

func TestRequireAuth(t *testing.T) {
	svc := &mockAuthService{
		validateSessionFn: func(ctx context.Context, token string) (*Session, error) {
			if token != "good" {
				return nil, apperror.NewUnauthorized("session expired or invalid")
			}
			return &Session{ID: "session-1", UserID: "user-1"}, nil
		},
	}

	var seenUser string
	var seenSession *Session
	next := func(c echo.Context) error {
		seenUser = GetUserID(c)
		seenSession = GetSession(c)
		return c.NoContent(http.StatusOK)
	}
	handler := RequireAuth(svc)(next)

	t.Run("missing header", func(t *testing.T) {
		c, _ := newJSONContext(http.MethodGet, "/profile", "")
		assertAppError(t, handler(c), http.StatusUnauthorized)
	})

	t.Run("invalid token", func(t *testing.T) {
		c, _ := newJSONContext(http.MethodGet, "/profile", "")
		c.Request().Header.Set(echo.HeaderAuthorization, "Bearer bad")
		assertAppError(t, handler(c), http.StatusUnauthorized)
	})

	t.Run("valid token", func(t *testing.T) {
		c, rec := newJSONContext(http.MethodGet, "/profile", "")
		c.Request().Header.Set(echo.HeaderAuthorization, "Bearer good")
		if err := handler(c); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if rec.Code != http.StatusOK {
			t.Errorf("expected 200, got %d", rec.Code)
		}
		if seenUser != "user-1" {
			t.Errorf("expected user-1 in context, got %q", seenUser)
		}
		if seenSession == nil || seenSession.ID != "session-1" {
			t.Errorf("expected session in context, got %+v", seenSession)
		}
	})
}

func TestHandler_UpdateProfile(t *testing.T) {
	var gotUser string
	h := NewHandler(&mockAuthService{
		updateProfileFn: func(ctx context.Context, userID string, input UpdateProfileInput) (*User, error) {
			gotUser = userID
			return &User{ID: userID, Name: input.Name, Email: input.Email}, nil
		},
	}, nil)

	c, rec := newJSONContext(http.MethodPut, "/profile", `{"name":"John Tre","email":"johntre@example.com"}`)
	c.Set(contextKeyUserID, "user-1")
	if err := h.UpdateProfile(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if gotUser != "user-1" {
		t.Errorf("expected update for user-1, got %q", gotUser)
	}
}

// recordedActivity captures ActivityLogger calls.
type recordedActivity struct {
	userID, action, ip, userAgent string
}

type mockActivityLogger struct {
	calls []recordedActivity
}

func (m *mockActivityLogger) LogActivity(_ context.Context, userID, action, ip, userAgent string) {
	m.calls = append(m.calls, recordedActivity{userID, action, ip, userAgent})
}

func TestHandler_LogsActivityOnSuccessOnly(t *testing.T) {
	activity := &mockActivityLogger{}
	h := NewHandler(&mockAuthService{
		loginFn: func(ctx context.Context, input LoginInput) (string, *User, error) {
			if input.Password != "123456" {
				return "", nil, apperror.NewUnauthorized(invalidCredentials)
			}
			return "jwt-token", &User{ID: "user-1", Email: input.Email}, nil
		},
	}, activity)

	c, _ := newJSONContext(http.MethodPost, "/sessions", `{"email":"johndoe@example.com","password":"wrong"}`)
	assertAppError(t, h.Login(c), http.StatusUnauthorized)
	if len(activity.calls) != 0 {
		t.Fatalf("expected no activity for failed login, got %+v", activity.calls)
	}

	c, _ = newJSONContext(http.MethodPost, "/sessions", `{"email":"johndoe@example.com","password":"123456"}`)
	c.Request().Header.Set("User-Agent", "gobarber-cli")
	c.Request().RemoteAddr = "203.0.113.7:51234"
	if err := h.Login(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(activity.calls) != 1 {
		t.Fatalf("expected one activity entry, got %d", len(activity.calls))
	}
	got := activity.calls[0]
	if got.userID != "user-1" || got.action != ActivitySessionCreated {
		t.Errorf("unexpected activity: %+v", got)
	}
	if got.ip != "203.0.113.7" || got.userAgent != "gobarber-cli" {
		t.Errorf("expected request metadata, got %+v", got)
	}
}
