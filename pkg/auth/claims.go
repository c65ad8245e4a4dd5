package auth

import (
	"github.com/golang-jwt/jwt/v5"

	"github.com/voltline/voltline-backend/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID  int64
	Role    enums.Role
	StoreID *int64
	JTI     string
}

// AccessTokenClaims represents the typed JWT issued to clients.
type AccessTokenClaims struct {
	UserID  int64      `json:"user_id"`
	Role    enums.Role `json:"role"`
	StoreID *int64     `json:"store_id,omitempty"`
	jwt.RegisteredClaims
}
