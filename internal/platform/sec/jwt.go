// Copyright (c) 2026 Shopii. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package sec provides cryptographic primitives, token management and the
// role/permission registry.
//
// # Architecture
//
// This package isolates security-sensitive code (hashing, JWT signing, TOTP)
// from the domain logic. Services receive a [*TokenService] through their
// constructors and never touch the signing secret directly.
package sec

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// # Token Lifetimes

const (
	// SessionTTL is the lifetime of a full session token.
	SessionTTL = 24 * time.Hour

	// StepUpTTL is the lifetime of a 2FA challenge or setup token.
	StepUpTTL = 10 * time.Minute
)

// ErrInvalidToken is returned for any token that fails parsing, signature or expiry checks.
var ErrInvalidToken = errors.New("sec: invalid token")

// AuthClaims represents the payload embedded inside a session JWT.
//
// # Token kinds
//
// A single claim shape serves three token kinds:
//   - full session: neither TwoFARequired nor TwoFASetup is set.
//   - challenge: TwoFARequired is set; only accepted by the verify-2FA endpoint.
//   - setup: TwoFASetup is set; only accepted by the 2FA enrollment endpoint.
type AuthClaims struct {
	jwt.RegisteredClaims

	UserID        string   `json:"id"`
	Role          UserRole `json:"role"`
	TwoFAVerified bool     `json:"twoFAVerified,omitempty"`
	TwoFARequired bool     `json:"twoFARequired,omitempty"`
	TwoFASetup    bool     `json:"twoFASetup,omitempty"`
}

// IsStepUp reports whether the claim is a restricted challenge or setup token.
func (c *AuthClaims) IsStepUp() bool {
	return c.TwoFARequired || c.TwoFASetup
}

// TokenService issues and verifies HS256 tokens signed with a shared secret.
type TokenService struct {
	secret []byte
	issuer string
	now    func() time.Time
}

// NewTokenService creates a new TokenService. An empty secret is rejected.
func NewTokenService(secret, issuer string) (*TokenService, error) {
	if secret == "" {
		return nil, errors.New("sec: jwt secret must not be empty")
	}
	return &TokenService{
		secret: []byte(secret),
		issuer: issuer,
		now:    time.Now,
	}, nil
}

// IssueSession creates a full session token valid for [SessionTTL].
func (service *TokenService) IssueSession(userID string, role UserRole, twoFAVerified bool) (string, error) {
	return service.sign(AuthClaims{
		UserID:        userID,
		Role:          role,
		TwoFAVerified: twoFAVerified,
	}, SessionTTL)
}

// IssueChallenge creates a 2FA challenge token valid for [StepUpTTL].
func (service *TokenService) IssueChallenge(userID string, role UserRole) (string, error) {
	return service.sign(AuthClaims{
		UserID:        userID,
		Role:          role,
		TwoFARequired: true,
	}, StepUpTTL)
}

// IssueSetup creates a 2FA enrollment token valid for [StepUpTTL].
func (service *TokenService) IssueSetup(userID string, role UserRole) (string, error) {
	return service.sign(AuthClaims{
		UserID:     userID,
		Role:       role,
		TwoFASetup: true,
	}, StepUpTTL)
}

func (service *TokenService) sign(claims AuthClaims, timeToLive time.Duration) (string, error) {
	currentTime := service.now()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		Subject:   claims.UserID,
		Issuer:    service.issuer,
		IssuedAt:  jwt.NewNumericDate(currentTime),
		ExpiresAt: jwt.NewNumericDate(currentTime.Add(timeToLive)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(service.secret)
	if err != nil {
		return "", fmt.Errorf("sec: failed to sign token: %w", err)
	}
	return signedToken, nil
}

// VerifyToken checks the signature and validity of a JWT string.
func (service *TokenService) VerifyToken(tokenString string) (*AuthClaims, error) {
	claims := &AuthClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(token *jwt.Token) (any, error) {
			return service.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(service.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	if !token.Valid || claims.UserID == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
