package auth

import "github.com/golang-jwt/jwt/v5"

type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// Claims are the only supported JWT claims shape for this service.
// Access tokens carry the full actor identity (id, display name, organizational
// area, role) so downstream modules can stamp audit records without a user lookup.
// Area is optional; some accounts have no organizational unit.
type Claims struct {
	jwt.RegisteredClaims

	UserID    string    `json:"user_id"`
	Nombre    string    `json:"nombre"`
	Area      string    `json:"area,omitempty"`
	Rol       string    `json:"rol"`
	TokenType TokenType `json:"token_type"`
}
