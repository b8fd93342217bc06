// Package signin drives the sign-in flow on top of an authsession.Manager.
package signin

import (
	"context"

	"github.com/gobarber/gobarber/internal/client/api"
	"github.com/gobarber/gobarber/internal/client/toast"
)

// Where a successful sign-in lands.
const dashboardPath = "/dashboard"

// Navigator changes the current page.
type Navigator interface {
	Push(path string)
}

// Toaster raises notifications.
type Toaster interface {
	AddToast(msg toast.Message) string
}

// Authenticator opens a session. *authsession.Manager implements it.
type Authenticator interface {
	SignIn(ctx context.Context, creds api.Credentials) error
}

// Form submits sign-ins.
type Form struct {
	auth   Authenticator
	nav    Navigator
	toasts Toaster
}

// NewForm wires a Form to its collaborators.
func NewForm(auth Authenticator, nav Navigator, toasts Toaster) *Form {
	return &Form{auth: auth, nav: nav, toasts: toasts}
}

// Submit signs in with creds and navigates to the dashboard. On failure it
// raises an error toast and returns the error.
func (f *Form) Submit(ctx context.Context, creds api.Credentials) error {
	if err := f.auth.SignIn(ctx, creds); err != nil {
		f.toasts.AddToast(toast.Message{
			Type:        toast.TypeError,
			Title:       "Erro na autenticação",
			Description: "Ocorreu um erro ao fazer login, cheque as credenciais.",
		})
		return err
	}

	f.nav.Push(dashboardPath)
	return nil
}
