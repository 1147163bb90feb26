package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// CustomClaims is the session payload minted by the identity collaborator.
// This service only ever validates; it never issues production tokens.
type CustomClaims struct {
	MemberID string `json:"member_id"`
	Role     string `json:"role"`
	Verified bool   `json:"verified"`
	jwt.RegisteredClaims
}

// GenerateToken creates a signed JWT for a member. Used by tests and local
// tooling; the real issuer lives outside this repository.
func GenerateToken(secret []byte, memberID, role string, duration time.Duration) (string, error) {
	now := time.Now()
	claims := &CustomClaims{
		MemberID: memberID,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(duration)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "alumnet",
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// ValidateToken parses and validates the signature and expiration of a JWT.
func ValidateToken(secret []byte, tokenString string) (*CustomClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &CustomClaims{}, func(token *jwt.Token) (interface{}, error) {
		return secret, nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(*CustomClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, jwt.ErrSignatureInvalid
}
