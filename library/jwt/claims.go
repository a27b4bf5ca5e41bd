package jwt

import (
	"github.com/golang-jwt/jwt/v5"
)

// UserClaims is the payload of a session token.
type UserClaims struct {
	jwt.RegisteredClaims
	// ID is the user's ObjectID hex, duplicated in Subject.
	ID    string `json:"id"`
	Email string `json:"email"`
}
