package auth

import (
	"context"

	pkgapi "github.com/iudanet/webkit/pkg/api"
)

// APIClient часть HTTP клиента, которая нужна сервису авторизации
type APIClient interface {
	Register(ctx context.Context, req pkgapi.RegisterRequest) (*pkgapi.RegisterResponse, error)
	Login(ctx context.Context, req pkgapi.LoginRequest) (*pkgapi.TokenResponse, error)
}
