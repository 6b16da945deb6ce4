package jwt

import (
	"github.com/golang-jwt/jwt/v5"
)

// Claims represents the meeting API token claims
type Claims struct {
	UserID  string `json:"userId"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"isAdmin"`
	jwt.RegisteredClaims
}
