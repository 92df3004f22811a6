package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/totegamma/archivist/internal/config"
	"github.com/totegamma/archivist/internal/domain"
	"github.com/totegamma/archivist/internal/service"
	"github.com/totegamma/archivist/jwt"
)

func whoami(c echo.Context) error {
	return c.String(http.StatusOK, domain.RequesterFromContext(c.Request().Context()))
}

func TestIdentifyRequester(t *testing.T) {
	auth := NewAuthMiddleware(service.NewAuthService(config.Auth{JWTSecret: "s3cret", Issuer: "archivist"}))
	e := echo.New()
	e.GET("/whoami", whoami, auth.IdentifyRequester)

	token, err := jwt.Create("u-admin", "archivist", time.Minute, []byte("s3cret"))
	require.NoError(t, err)

	cases := map[string]string{
		"Bearer " + token: "u-admin",
		"bearer " + token: "u-admin",
		"Basic abc":       "",
		"Bearer garbage":  "",
		token:             "",
		"":                "",
	}
	for header, want := range cases {
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, want, rec.Body.String(), "header %q", header)
	}
}

func TestMetricsUsesRouteTemplate(t *testing.T) {
	e := echo.New()
	e.Use(Metrics)
	e.GET("/events/:id", func(c echo.Context) error {
		return c.NoContent(http.StatusNoContent)
	})

	counter := httpRequestsTotal.WithLabelValues(http.MethodGet, "/events/:id", "204")
	before := testutil.ToFloat64(counter)

	for _, id := range []string{"a", "b", "c"} {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/events/"+id, nil))
		assert.Equal(t, http.StatusNoContent, rec.Code)
	}

	assert.Equal(t, before+3, testutil.ToFloat64(counter))
}
