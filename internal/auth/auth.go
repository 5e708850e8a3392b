package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/journeyverse/backend/internal/domain"
)

// Session identifies the authenticated account holder for one request. It is
// passed explicitly into every orchestration call rather than held as shared
// state.
type Session struct {
	UserID uuid.UUID
	Email  string
}

// Claims is the JWT claims structure carried by session tokens.
type Claims struct {
	UserID uuid.UUID `json:"user_id"`
	Email  string    `json:"email"`
	jwt.RegisteredClaims
}

// Verifier validates bearer session tokens issued by the auth provider.
type Verifier struct {
	secret []byte
	issuer string
}

func NewVerifier(secret, issuer string) *Verifier {
	return &Verifier{secret: []byte(secret), issuer: issuer}
}

// Verify parses and validates a session token. Any failure is reported as
// ErrUnauthenticated so callers never leak parsing detail to clients.
func (v *Verifier) Verify(tokenString string) (*Session, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, domain.ErrUnauthenticated
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || claims.UserID == uuid.Nil {
		return nil, domain.ErrUnauthenticated
	}
	if v.issuer != "" && claims.Issuer != v.issuer {
		return nil, domain.ErrUnauthenticated
	}

	return &Session{UserID: claims.UserID, Email: claims.Email}, nil
}

// Issue signs a session token for the given user. Session issuance belongs to
// the auth provider; this exists for local development and tests.
func (v *Verifier) Issue(userID uuid.UUID, email string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    v.issuer,
			Subject:   userID.String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(v.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, nil
}
