package middleware

import (
	"net/http/httptest"
	"testing"
	"time"

	"fanzvault/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func sign(t *testing.T, method jwt.SigningMethod, key interface{}, claims models.CallerClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return s
}

func claimsFor(sub, role string, exp time.Duration) models.CallerClaims {
	return models.CallerClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(exp)),
		},
		Role: role,
	}
}

func newApp() *fiber.App {
	auth := NewAuthMiddleware(testSecret, nil)
	app := fiber.New()
	app.Get("/me", auth.Handler, func(c *fiber.Ctx) error {
		claims, _ := ClaimsFrom(c)
		return c.SendString(claims.Subject)
	})
	app.Get("/admin", auth.Handler, AdminAuthMiddleware, func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})
	return app
}

func TestAuthMiddleware(t *testing.T) {
	valid := sign(t, jwt.SigningMethodHS256, []byte(testSecret), claimsFor("svc-1", models.RoleService, time.Hour))

	tests := []struct {
		name   string
		path   string
		header string
		want   int
	}{
		{"missing header", "/me", "", fiber.StatusUnauthorized},
		{"not bearer", "/me", "Basic abc", fiber.StatusUnauthorized},
		{"garbage token", "/me", "Bearer abc.def.ghi", fiber.StatusUnauthorized},
		{"wrong secret", "/me", "Bearer " + sign(t, jwt.SigningMethodHS256, []byte("other"), claimsFor("svc-1", "", time.Hour)), fiber.StatusUnauthorized},
		{"wrong algorithm", "/me", "Bearer " + sign(t, jwt.SigningMethodHS384, []byte(testSecret), claimsFor("svc-1", "", time.Hour)), fiber.StatusUnauthorized},
		{"expired", "/me", "Bearer " + sign(t, jwt.SigningMethodHS256, []byte(testSecret), claimsFor("svc-1", "", -time.Minute)), fiber.StatusUnauthorized},
		{"no subject", "/me", "Bearer " + sign(t, jwt.SigningMethodHS256, []byte(testSecret), claimsFor("", "", time.Hour)), fiber.StatusUnauthorized},
		{"valid", "/me", "Bearer " + valid, fiber.StatusOK},
		{"admin route as service", "/admin", "Bearer " + valid, fiber.StatusForbidden},
		{"admin route as admin", "/admin", "Bearer " + sign(t, jwt.SigningMethodHS256, []byte(testSecret), claimsFor("ops", models.RoleAdmin, time.Hour)), fiber.StatusNoContent},
	}

	app := newApp()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}
