// Package middleware provides HTTP middleware for the fiber app.
package middleware

import (
	"strings"

	"fanzvault/internal/logger"
	"fanzvault/internal/models"
	"fanzvault/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

const claimsKey = "claims"

// AuthMiddleware verifies the HS256 bearer token issued to platform
// services and stores the caller claims in the request context.
type AuthMiddleware struct {
	secret []byte
	log    *zap.Logger
}

func NewAuthMiddleware(secret string, log *zap.Logger) *AuthMiddleware {
	log = logger.OrNop(log)
	return &AuthMiddleware{
		secret: []byte(secret),
		log:    log.Named("auth"),
	}
}

// Handler rejects requests without a valid, unexpired token carrying a
// subject.
func (m *AuthMiddleware) Handler(c *fiber.Ctx) error {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return utils.Unauthorized(c, "missing authorization header")
	}
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return utils.Unauthorized(c, "invalid authorization format")
	}
	tokenString := strings.TrimPrefix(authHeader, "Bearer ")

	claims := &models.CallerClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		m.log.Debug("token rejected", zap.Error(err), zap.String("path", c.Path()))
		return utils.Unauthorized(c, "invalid token")
	}
	if claims.Subject == "" {
		return utils.Unauthorized(c, "token has no subject")
	}

	c.Locals(claimsKey, claims)
	return c.Next()
}

// AdminAuthMiddleware allows only callers with the admin role. It must run
// after Handler.
func AdminAuthMiddleware(c *fiber.Ctx) error {
	claims, ok := ClaimsFrom(c)
	if !ok {
		return utils.Unauthorized(c, "unauthorized")
	}
	if !claims.IsAdmin() {
		return utils.Forbidden(c, "admin access required")
	}
	return c.Next()
}

// ClaimsFrom returns the claims stored by Handler.
func ClaimsFrom(c *fiber.Ctx) (*models.CallerClaims, bool) {
	claims, ok := c.Locals(claimsKey).(*models.CallerClaims)
	return claims, ok
}
