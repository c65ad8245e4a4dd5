package auth

import (
	"github.com/voltline/voltline-backend/internal/stores"
	"github.com/voltline/voltline-backend/internal/users"
)

// RegisterRequest holds new account details. Customer accounts omit the
// store block; seller registration opens the storefront in the same
// request so the minted token can carry its id. Admin accounts are never
// created through the public endpoint.
type RegisterRequest struct {
	Email    string                   `json:"email" validate:"required,email"`
	Password string                   `json:"password" validate:"required,min=8"`
	Name     string                   `json:"name" validate:"required"`
	Phone    *string                  `json:"phone,omitempty"`
	Seller   bool                     `json:"seller,omitempty"`
	Store    *stores.CreateStoreInput `json:"store,omitempty"`
}

// LoginRequest carries the credentials for an existing account.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse returns the minted access token alongside the account.
type AuthResponse struct {
	Token string         `json:"token"`
	User  *users.UserDTO `json:"user"`
}
