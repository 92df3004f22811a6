package middleware

import (
	"fmt"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/totegamma/archivist/internal/domain"
	"github.com/totegamma/archivist/internal/service"
)

var tracer = otel.Tracer("middleware")

type AuthMiddleware struct {
	auth *service.AuthService
}

func NewAuthMiddleware(auth *service.AuthService) *AuthMiddleware {
	return &AuthMiddleware{
		auth: auth,
	}
}

// IdentifyRequester attaches the acting user of a valid bearer token to the
// request context. Requests without a usable token continue anonymously;
// the usecases decide whether that is allowed.
func (s *AuthMiddleware) IdentifyRequester(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, span := tracer.Start(c.Request().Context(), "Auth.Middleware.IdentifyRequester")
		defer span.End()

		authHeader := c.Request().Header.Get("authorization")
		if authHeader != "" {
			authType, token, found := strings.Cut(authHeader, " ")
			switch {
			case !found:
				span.RecordError(fmt.Errorf("invalid authentication header"))
			case !strings.EqualFold(authType, "Bearer"):
				span.RecordError(fmt.Errorf("only Bearer is acceptable"))
			default:
				result, err := s.auth.AuthJwt(ctx, strings.TrimSpace(token))
				if err != nil {
					span.RecordError(errors.Wrap(err, "AuthMiddleware.IdentifyRequester: s.auth.AuthJwt failed"))
					break
				}
				ctx = domain.WithRequester(ctx, result.UserID)
				span.SetAttributes(attribute.String("RequesterId", result.UserID))
				c.Response().Header().Set(domain.RequesterIdHeader, result.UserID)
			}
		}

		c.SetRequest(c.Request().WithContext(ctx))
		return next(c)
	}
}
