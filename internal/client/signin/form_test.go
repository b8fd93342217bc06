package signin_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/gobarber/gobarber/internal/client/api"
	"github.com/gobarber/gobarber/internal/client/router"
	"github.com/gobarber/gobarber/internal/client/signin"
	"github.com/gobarber/gobarber/internal/client/toast"
	"github.com/gobarber/gobarber/internal/mocks"
)

var creds = api.Credentials{Email: "johndoe@example.com", Password: "123456"}

func TestSubmit_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	auth := mocks.NewMockAuthenticator(ctrl)
	nav := mocks.NewMockNavigator(ctrl)
	toasts := mocks.NewMockToaster(ctrl)

	gomock.InOrder(
		auth.EXPECT().SignIn(gomock.Any(), creds).Return(nil),
		nav.EXPECT().Push("/dashboard"),
	)
	toasts.EXPECT().AddToast(gomock.Any()).Times(0)

	require.NoError(t, signin.NewForm(auth, nav, toasts).Submit(context.Background(), creds))
}

func TestSubmit_Failure(t *testing.T) {
	ctrl := gomock.NewController(t)
	auth := mocks.NewMockAuthenticator(ctrl)
	toasts := mocks.NewMockToaster(ctrl)
	history := router.NewHistory("/")

	boom := errors.New("signing in: api: 401 unauthorized: invalid email or password")
	auth.EXPECT().SignIn(gomock.Any(), creds).Return(boom)
	toasts.EXPECT().AddToast(gomock.Any()).DoAndReturn(func(msg toast.Message) string {
		assert.Equal(t, toast.TypeError, msg.Type)
		return "toast-1"
	})

	err := signin.NewForm(auth, history, toasts).Submit(context.Background(), creds)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, "/", history.Current())
}

func TestSubmit_WithRealCollaborators(t *testing.T) {
	ctrl := gomock.NewController(t)
	auth := mocks.NewMockAuthenticator(ctrl)
	auth.EXPECT().SignIn(gomock.Any(), creds).Return(nil)

	history := router.NewHistory("/")
	center := toast.NewCenter(nil)

	require.NoError(t, signin.NewForm(auth, history, center).Submit(context.Background(), creds))
	assert.Equal(t, "/dashboard", history.Current())
	assert.Empty(t, center.Messages())
}
