package models

import "github.com/golang-jwt/jwt/v5"

// Caller roles
const (
	RoleService = "service"
	RoleAdmin   = "admin"
)

// CallerClaims are the claims of a token presented by a platform service.
// The subject identifies the acting user or service principal.
type CallerClaims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

func (c *CallerClaims) IsAdmin() bool {
	return c.Role == RoleAdmin
}
