package model

import "github.com/golang-jwt/jwt/v5"

// AccessClaims is the payload of a short-lived access token.
type AccessClaims struct {
	UserID   int    `json:"user_id"`
	Email    string `json:"email"`
	Username string `json:"username"`
	FullName string `json:"full_name"`
	jwt.RegisteredClaims
}

// RefreshClaims carries only the account id; everything else is resolved
// from storage when the token is exchanged.
type RefreshClaims struct {
	UserID int `json:"user_id"`
	jwt.RegisteredClaims
}
