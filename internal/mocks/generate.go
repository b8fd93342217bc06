// Package mocks provides gomock implementations of the collaborators used by
// the client flows (navigation, notifications, account and session APIs).
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	nav := mocks.NewMockNavigator(ctrl)
//	nav.EXPECT().Push("/")
package mocks

// Navigator and Toaster are declared identically in signup and signin; the
// signup copies are used.
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=navigator_mock.go github.com/gobarber/gobarber/internal/client/signup Navigator
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=toaster_mock.go github.com/gobarber/gobarber/internal/client/signup Toaster

//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=user_creator_mock.go github.com/gobarber/gobarber/internal/client/signup UserCreator
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=authenticator_mock.go github.com/gobarber/gobarber/internal/client/signin Authenticator
