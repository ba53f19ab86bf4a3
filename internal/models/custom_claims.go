package models

import "github.com/golang-jwt/jwt/v5"

// CustomClaims is the JWT payload for both token types. Subject mirrors UserID, and the
// registered ID is the JTI used for revocation.
type CustomClaims struct {
	jwt.RegisteredClaims
	UserID    string `json:"uid"`
	Email     string `json:"email,omitempty"`
	Name      string `json:"name,omitempty"`
	TokenType string `json:"token_use"`
}

// Is reports whether the claims were issued as tokenType.
func (c *CustomClaims) Is(tokenType string) bool {
	return c != nil && c.TokenType == tokenType
}
