package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/shopcore-labs/shopcore-backend/pkg/enums"
)

// AccessTokenClaims represents the typed JWT accepted by this API. Token
// issuance lives in the identity service; this package only verifies.
type AccessTokenClaims struct {
	UserID uuid.UUID      `json:"user_id"`
	Email  string         `json:"email"`
	Name   string         `json:"name"`
	Role   enums.UserRole `json:"role"`
	jwt.RegisteredClaims
}

// Principal is the authenticated identity carried through request context.
type Principal struct {
	UserID uuid.UUID
	Email  string
	Name   string
	Role   enums.UserRole
}
