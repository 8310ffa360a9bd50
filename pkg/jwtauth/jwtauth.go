// Package jwtauth issues and parses the access/refresh token pair.
package jwtauth

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrExpiredToken = errors.New("expired token")
	ErrInvalidToken = errors.New("invalid token")
)

const (
	typeAccess  = "access"
	typeRefresh = "refresh"
)

// Claims carried by both token kinds; TokenType distinguishes them so a
// refresh token can never pass as an access token.
type Claims struct {
	MemberID  string `json:"mid"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	TokenType string `json:"typ"`
	jwt.RegisteredClaims
}

// Provider signs and verifies tokens with a shared HMAC secret.
type Provider struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewProvider(secret string, accessTTL, refreshTTL time.Duration) *Provider {
	return &Provider{secret: []byte(secret), accessTTL: accessTTL, refreshTTL: refreshTTL}
}

func (p *Provider) AccessTTL() time.Duration  { return p.accessTTL }
func (p *Provider) RefreshTTL() time.Duration { return p.refreshTTL }

func (p *Provider) GenerateAccessToken(memberID, email, role string) (string, error) {
	return p.generate(memberID, email, role, typeAccess, p.accessTTL)
}

func (p *Provider) GenerateRefreshToken(memberID, email, role string) (string, error) {
	return p.generate(memberID, email, role, typeRefresh, p.refreshTTL)
}

func (p *Provider) generate(memberID, email, role, typ string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		MemberID:  memberID,
		Email:     email,
		Role:      role,
		TokenType: typ,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   memberID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
}

// ParseAccessToken verifies signature, expiry and token type.
func (p *Provider) ParseAccessToken(token string) (*Claims, error) {
	return p.parse(token, typeAccess)
}

// ParseRefreshToken verifies signature, expiry and token type.
func (p *Provider) ParseRefreshToken(token string) (*Claims, error) {
	return p.parse(token, typeRefresh)
}

func (p *Provider) parse(token, wantType string) (*Claims, error) {
	var claims Claims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return p.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}
	if !parsed.Valid || claims.TokenType != wantType {
		return nil, ErrInvalidToken
	}
	return &claims, nil
}

// TokenExpiration returns the expiry of a token without requiring it to be
// otherwise valid (used when blacklisting on logout).
func (p *Provider) TokenExpiration(token string) (time.Time, error) {
	claims, err := p.parse(token, typeAccess)
	if err != nil {
		return time.Time{}, err
	}
	return claims.ExpiresAt.Time, nil
}

// HashToken derives the Redis blacklist key for an access token.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return "bl:" + hex.EncodeToString(sum[:])
}
