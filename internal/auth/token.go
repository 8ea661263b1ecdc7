package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/upascal/fast-api-backend-template/internal/apperr"
)

// TokenClaims is the payload carried by an access token.
type TokenClaims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies access tokens with a shared secret
// and a fixed HMAC algorithm.
type TokenIssuer struct {
	secret []byte
	method jwt.SigningMethod
}

func NewTokenIssuer(secret, algorithm string) (*TokenIssuer, error) {
	if secret == "" {
		return nil, errors.New("auth: secret not configured")
	}

	method := jwt.GetSigningMethod(algorithm)
	if method == nil {
		return nil, fmt.Errorf("auth: unknown signing algorithm %q", algorithm)
	}
	if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("auth: algorithm %q is not HMAC-based", algorithm)
	}

	return &TokenIssuer{secret: []byte(secret), method: method}, nil
}

// Issue builds and signs a token for the given user expiring after
// ttl.
func (t *TokenIssuer) Issue(userID uuid.UUID, ttl time.Duration) (string, error) {
	now := time.Now()

	claims := TokenClaims{
		UserID: userID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	return jwt.NewWithClaims(t.method, claims).SignedString(t.secret)
}

// Verify checks signature, algorithm and expiry. Expired tokens fail
// with apperr.ErrTokenExpired; any other defect, including a missing
// or unparseable user_id claim, fails with apperr.ErrTokenInvalid.
func (t *TokenIssuer) Verify(tokenString string) (*TokenClaims, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{t.method.Alg()}))

	var claims TokenClaims
	_, err := parser.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		return t.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperr.ErrTokenExpired
		}
		return nil, apperr.ErrTokenInvalid
	}

	if claims.UserID == "" {
		return nil, apperr.ErrTokenInvalid
	}
	if _, err := uuid.Parse(claims.UserID); err != nil {
		return nil, apperr.ErrTokenInvalid
	}

	return &claims, nil
}

// Subject returns the user id carried by the claims.
func (c *TokenClaims) Subject() uuid.UUID {
	id, err := uuid.Parse(c.UserID)
	if err != nil {
		return uuid.Nil
	}
	return id
}
