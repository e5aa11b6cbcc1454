package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Session is the decoded content of a session token.
type Session struct {
	UserID uuid.UUID
	// Key is an opaque per-session identifier; passkey challenges are
	// bound to it.
	Key       string
	ExpiresAt time.Time
}

// TokenIssuer mints and validates server-issued session tokens. Tokens are
// opaque to clients; internally they are HMAC-SHA256 JWTs.
type TokenIssuer struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

// NewTokenIssuer creates a session token issuer
func NewTokenIssuer(secret, issuer string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
	}
}

// Issue mints a session token for the given user
func (t *TokenIssuer) Issue(userID uuid.UUID) (string, *Session, error) {
	now := time.Now()
	session := &Session{
		UserID:    userID,
		Key:       uuid.NewString(),
		ExpiresAt: now.Add(t.ttl),
	}

	claims := jwt.MapClaims{
		"sub": userID.String(),
		"sid": session.Key,
		"iss": t.issuer,
		"iat": now.Unix(),
		"exp": session.ExpiresAt.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, session, nil
}

// Validate parses and verifies a session token and returns the session
func (t *TokenIssuer) Validate(tokenString string) (*Session, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return t.secret, nil
	},
		jwt.WithIssuer(t.issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid claims type")
	}

	sub, _ := claims["sub"].(string)
	userID, err := uuid.Parse(sub)
	if err != nil {
		return nil, fmt.Errorf("invalid subject claim: %w", err)
	}

	sid, _ := claims["sid"].(string)
	if sid == "" {
		return nil, errors.New("missing session key claim")
	}

	exp, err := claims.GetExpirationTime()
	if err != nil {
		return nil, fmt.Errorf("invalid expiration claim: %w", err)
	}

	return &Session{
		UserID:    userID,
		Key:       sid,
		ExpiresAt: exp.Time,
	}, nil
}
