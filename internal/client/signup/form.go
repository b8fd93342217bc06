// Package signup drives the account creation flow: post the new account,
// then send the user to the sign-in page with a confirmation.
package signup

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gobarber/gobarber/internal/client/api"
	"github.com/gobarber/gobarber/internal/client/toast"
)

// Where a successful sign-up lands.
const signInPath = "/"

// Navigator changes the current page.
type Navigator interface {
	Push(path string)
}

// Toaster raises notifications.
type Toaster interface {
	AddToast(msg toast.Message) string
}

// UserCreator creates accounts. *api.Client implements it.
type UserCreator interface {
	CreateUser(ctx context.Context, input api.SignUpInput) (*api.UserProfile, error)
}

// Input is what the sign-up form collects.
type Input struct {
	Name     string
	Email    string
	Password string
}

// Form submits sign-ups.
type Form struct {
	users  UserCreator
	nav    Navigator
	toasts Toaster
	logger *slog.Logger
}

// Option configures a Form.
type Option func(*Form)

// WithLogger sets the logger used for completed sign-ups. Defaults to
// slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(f *Form) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// NewForm wires a Form to its collaborators.
func NewForm(users UserCreator, nav Navigator, toasts Toaster, opts ...Option) *Form {
	f := &Form{users: users, nav: nav, toasts: toasts, logger: slog.Default()}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Submit posts in to /users. On success it navigates to the sign-in page
// and raises a success toast. On failure it raises an error toast and
// returns the error without navigating.
func (f *Form) Submit(ctx context.Context, in Input) error {
	user, err := f.users.CreateUser(ctx, api.SignUpInput{
		Name:     in.Name,
		Email:    in.Email,
		Password: in.Password,
	})
	if err != nil {
		f.toasts.AddToast(toast.Message{
			Type:        toast.TypeError,
			Title:       "Erro no cadastro",
			Description: "Ocorreu um erro ao fazer cadastro, tente novamente.",
		})
		return fmt.Errorf("signing up: %w", err)
	}

	f.logger.Info("account created", slog.String("email", user.Email))

	f.nav.Push(signInPath)
	f.toasts.AddToast(toast.Message{
		Type:        toast.TypeSuccess,
		Title:       "Cadastro realizado!",
		Description: "Você já pode fazer seu logon no GoBarber!",
	})
	return nil
}
