// Package auth issues and checks the HS256 bearer tokens that guard the
// tournament API.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrMissingToken = errors.New("missing authorization token")
)

// Roles carried in tokens. Operators may start tournaments; spectators may
// only read results and follow live games.
const (
	RoleOperator  = "operator"
	RoleSpectator = "spectator"
)

const (
	issuer      = "regifting"
	tokenExpiry = 12 * time.Hour
)

// Claims is the token payload.
type Claims struct {
	Name string `json:"name"`
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Token is the response body of the token endpoint.
type Token struct {
	AccessToken string `json:"access_token"`
	Role        string `json:"role"`
	ExpiresIn   int    `json:"expires_in"` // seconds
}

// JWTManager signs and verifies tokens with one shared secret.
type JWTManager struct {
	secret []byte
	expiry time.Duration
	parser *jwt.Parser
}

// NewJWTManager creates a JWTManager whose tokens live for twelve hours.
func NewJWTManager(secret string) *JWTManager {
	return newManager(secret, tokenExpiry)
}

func newManager(secret string, expiry time.Duration) *JWTManager {
	return &JWTManager{
		secret: []byte(secret),
		expiry: expiry,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithIssuer(issuer),
			jwt.WithExpirationRequired(),
		),
	}
}

// GenerateToken signs a token for name with the given role.
func (m *JWTManager) GenerateToken(name, role string) (string, error) {
	now := time.Now()
	claims := Claims{
		Name: name,
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   name,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.expiry)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken verifies signature, issuer and expiry. An empty string
// yields ErrMissingToken; any other failure wraps ErrInvalidToken.
func (m *JWTManager) ValidateToken(raw string) (*Claims, error) {
	if raw == "" {
		return nil, ErrMissingToken
	}
	var claims Claims
	if _, err := m.parser.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return m.secret, nil
	}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return &claims, nil
}

// Issue creates the token endpoint response for name.
func (m *JWTManager) Issue(name, role string) (*Token, error) {
	access, err := m.GenerateToken(name, role)
	if err != nil {
		return nil, err
	}
	return &Token{AccessToken: access, Role: role, ExpiresIn: int(m.expiry / time.Second)}, nil
}
