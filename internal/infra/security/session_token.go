package security

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	uuid "github.com/google/uuid"

	"github.com/razbensimon/hit-computer-security-project/internal/core/domain"
)

var (
	// ErrInvalidSessionToken indicates the token is malformed or its signature failed.
	ErrInvalidSessionToken = errors.New("security: invalid session token")
	// ErrExpiredSessionToken indicates the token has expired.
	ErrExpiredSessionToken = errors.New("security: session token expired")
)

// SessionClaims embeds the session fields into JWT registered claims.
type SessionClaims struct {
	DisplayName   string `json:"name"`
	IsAdmin       bool   `json:"admin"`
	ResetRequired bool   `json:"reset_required"`
	jwt.RegisteredClaims
}

// SessionTokenCodec signs and parses the opaque session handoff value. The
// core never inspects the encoding; handlers convert between tokens and
// domain.Session values at the boundary.
type SessionTokenCodec struct {
	signingKey []byte
	issuer     string
	ttl        time.Duration
}

// NewSessionTokenCodec constructs a codec. An empty signing key is rejected.
func NewSessionTokenCodec(signingKey, issuer string, ttl time.Duration) (*SessionTokenCodec, error) {
	if signingKey == "" {
		return nil, fmt.Errorf("security: session signing key is required")
	}
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &SessionTokenCodec{signingKey: []byte(signingKey), issuer: issuer, ttl: ttl}, nil
}

// Issue signs a token embedding the session.
func (c *SessionTokenCodec) Issue(session domain.Session) (string, error) {
	now := time.Now().UTC()

	claims := SessionClaims{
		DisplayName:   session.DisplayName,
		IsAdmin:       session.IsAdmin,
		ResetRequired: session.ResetPasswordNeeded,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   session.Email,
			Issuer:    c.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.signingKey)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}

	return signed, nil
}

// Parse validates the token and reconstructs the session value.
func (c *SessionTokenCodec) Parse(token string) (domain.Session, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return domain.Session{}, ErrInvalidSessionToken
	}

	claims := &SessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return c.signingKey, nil
	}, jwt.WithIssuer(c.issuer))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return domain.Session{}, ErrExpiredSessionToken
		}
		return domain.Session{}, ErrInvalidSessionToken
	}

	if parsed == nil || !parsed.Valid || strings.TrimSpace(claims.Subject) == "" {
		return domain.Session{}, ErrInvalidSessionToken
	}

	return domain.Session{
		Email:               claims.Subject,
		DisplayName:         claims.DisplayName,
		IsAdmin:             claims.IsAdmin,
		ResetPasswordNeeded: claims.ResetRequired,
	}, nil
}
