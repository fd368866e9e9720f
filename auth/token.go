package auth

import (
	"chat-broadcaster/domain"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jonboulle/clockwork"
)

const issuer = "chat-broadcaster"

// CustomClaims defines the structure of the data stored inside the JWT.
type CustomClaims struct {
	UserID int64  `json:"user_id"`
	Name   string `json:"user_name"`
	jwt.RegisteredClaims
}

// Issuer signs and validates session tokens with a shared HMAC secret.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	clock  clockwork.Clock
}

func NewIssuer(secret string, ttl time.Duration, clock clockwork.Clock) *Issuer {
	return &Issuer{secret: []byte(secret), ttl: ttl, clock: clock}
}

func (i *Issuer) TTL() time.Duration {
	return i.ttl
}

// GenerateToken creates a signed JWT for a specific user.
func (i *Issuer) GenerateToken(userID domain.UserID, name string) (string, error) {
	now := i.clock.Now()
	claims := &CustomClaims{
		UserID: int64(userID),
		Name:   name,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    issuer,
		},
	}

	// HS256: HMAC with SHA256
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(i.secret)
}

// ValidateToken parses and validates the signature and expiration of a JWT string.
func (i *Issuer) ValidateToken(tokenString string) (*CustomClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &CustomClaims{},
		func(token *jwt.Token) (interface{}, error) {
			return i.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(i.clock.Now),
	)
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*CustomClaims)
	if !ok || !token.Valid {
		return nil, jwt.ErrSignatureInvalid
	}
	if claims.UserID <= 0 {
		return nil, fmt.Errorf("%w: missing user id", jwt.ErrTokenInvalidClaims)
	}
	return claims, nil
}
