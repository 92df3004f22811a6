package service

import (
	"context"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"

	"github.com/totegamma/archivist/internal/config"
	"github.com/totegamma/archivist/jwt"
)

var tracer = otel.Tracer("service")

type AuthService struct {
	config config.Auth
}

func NewAuthService(config config.Auth) *AuthService {
	return &AuthService{
		config: config,
	}
}

type AuthResult struct {
	UserID string
	Name   string
}

// AuthJwt validates a bearer token and returns the acting user.
func (s *AuthService) AuthJwt(ctx context.Context, token string) (*AuthResult, error) {
	_, span := tracer.Start(ctx, "Auth.Service.AuthJwt")
	defer span.End()

	if s.config.JWTSecret == "" {
		err := errors.New("jwt secret is not configured")
		span.RecordError(err)
		return nil, err
	}

	claims, err := jwt.Validate(token, s.config.Issuer, []byte(s.config.JWTSecret))
	if err != nil {
		span.RecordError(errors.Wrap(err, "jwt validation failed"))
		return nil, err
	}

	return &AuthResult{UserID: claims.Subject, Name: claims.Name}, nil
}
