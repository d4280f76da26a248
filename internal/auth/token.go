// ABOUTME: Signed session tokens carrying the anonymous owner identity
// ABOUTME: HS256 JWTs with the owner id in the subject claim

package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token errors
var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
)

// sessionClaims is the payload of a session cookie: the registered claim
// set with the owner id as subject. No custom claims are carried — the
// cookie exists only to pin a browser to its partition.
type sessionClaims struct {
	jwt.RegisteredClaims
}

// JWTVerifier mints and verifies the session tokens stored in the
// browser's session cookie.
type JWTVerifier struct {
	secret []byte
}

// NewJWTVerifier creates a verifier signing with the given secret
func NewJWTVerifier(secret []byte) *JWTVerifier {
	return &JWTVerifier{secret: secret}
}

// Verify validates the token and returns the owner id from the subject claim
func (v *JWTVerifier) Verify(tokenString string) (ownerID string, err error) {
	var claims sessionClaims
	_, err = jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		// Only HS256 tokens are ever minted
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrExpiredToken
		}
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if claims.Subject == "" {
		return "", fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	return claims.Subject, nil
}

// Generate mints a session token for the given owner id, valid for expiresIn
func (v *JWTVerifier) Generate(ownerID string, expiresIn time.Duration) (string, error) {
	now := time.Now()
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   ownerID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiresIn)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(v.secret)
}
