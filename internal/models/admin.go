package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Admin represents a dashboard operator account. Admins are created only by
// the seed tool, never through the API.
type Admin struct {
	ID           string    `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
}

// LoginRequest is the credential payload for admin login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AdminInfo is the admin shape exposed to clients.
type AdminInfo struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// LoginResponse carries the issued session token and the admin identity.
type LoginResponse struct {
	Token string    `json:"-"`
	Admin AdminInfo `json:"admin"`
}

// JWTClaims are embedded in admin session tokens.
type JWTClaims struct {
	AdminID string `json:"id"`
	jwt.RegisteredClaims
}
