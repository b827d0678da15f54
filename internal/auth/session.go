package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/helpkeeper/internal/common"
	"github.com/dmitrijs2005/helpkeeper/internal/models"
	"github.com/golang-jwt/jwt/v5"
)

// Claims identify the session user and the single role chosen for it.
type Claims struct {
	jwt.RegisteredClaims
	Username string      `json:"username"`
	Role     models.Role `json:"role"`
}

// Session is issued when a flow reaches Authenticated.
type Session struct {
	Username  string
	Role      models.Role
	Token     string
	ExpiresAt time.Time
}

// Sessions signs and checks HS256 session tokens.
type Sessions struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewSessions(secret []byte, ttl time.Duration, now func() time.Time) *Sessions {
	if now == nil {
		now = time.Now
	}
	return &Sessions{secret: secret, ttl: ttl, now: now}
}

func (s *Sessions) Issue(username string, role models.Role) (*Session, error) {
	exp := s.now().Add(s.ttl)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(s.now()),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
		Username: username,
		Role:     role,
	})

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("sign session token: %w", err)
	}
	return &Session{Username: username, Role: role, Token: signed, ExpiresAt: exp}, nil
}

// Parse verifies tokenString and returns its claims. Expired tokens yield
// common.ErrTokenExpired, anything else invalid common.ErrInvalidToken.
func (s *Sessions) Parse(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrInvalidToken
	}
	if !token.Valid {
		return nil, common.ErrInvalidToken
	}
	return claims, nil
}

// Authorize checks the token and that its role grants c.
func (s *Sessions) Authorize(tokenString string, c models.Capability) (*Claims, error) {
	claims, err := s.Parse(tokenString)
	if err != nil {
		return nil, err
	}
	if !claims.Role.Can(c) {
		return nil, common.ErrorUnauthorized
	}
	return claims, nil
}
