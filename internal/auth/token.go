// Package auth issues and verifies bearer tokens and manages accounts.
package auth

import (
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/go-jose/go-jose/v3"
	"github.com/go-jose/go-jose/v3/jwt"

	"github.com/notemate/notemate/internal/errs"
)

// Identity is the actor carried by a verified bearer token.
type Identity struct {
	UserID string
	Name   string
	Email  string
}

type tokenClaims struct {
	jwt.Claims
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// TokenService signs and verifies bearer tokens (HS256 JWTs).
type TokenService struct {
	secret   []byte
	duration time.Duration
	signer   jose.Signer
}

// NewTokenService creates a token service from a 64-hex-character secret.
func NewTokenService(hexSecret string, duration time.Duration) (*TokenService, error) {
	secret, err := hex.DecodeString(hexSecret)
	if err != nil {
		return nil, fmt.Errorf("token secret must be hex: %w", err)
	}
	if len(secret) != 32 {
		return nil, fmt.Errorf("token secret must be 32 bytes, got %d", len(secret))
	}

	signer, err := jose.NewSigner(
		jose.SigningKey{Algorithm: jose.HS256, Key: secret},
		(&jose.SignerOptions{}).WithType("JWT"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create token signer: %w", err)
	}

	return &TokenService{
		secret:   secret,
		duration: duration,
		signer:   signer,
	}, nil
}

// Issue creates a signed token for the given identity.
func (s *TokenService) Issue(id Identity) (string, error) {
	now := time.Now()
	claims := tokenClaims{
		Claims: jwt.Claims{
			Subject:  id.UserID,
			IssuedAt: jwt.NewNumericDate(now),
			Expiry:   jwt.NewNumericDate(now.Add(s.duration)),
		},
		Name:  id.Name,
		Email: id.Email,
	}

	raw, err := jwt.Signed(s.signer).Claims(claims).CompactSerialize()
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return raw, nil
}

// Verify parses and validates a token, returning the identity it carries.
func (s *TokenService) Verify(raw string) (Identity, error) {
	tok, err := jwt.ParseSigned(raw)
	if err != nil {
		return Identity{}, errs.Wrap(errs.Unauthenticated, "invalid token", err)
	}

	var claims tokenClaims
	if err := tok.Claims(s.secret, &claims); err != nil {
		return Identity{}, errs.Wrap(errs.Unauthenticated, "invalid token", err)
	}

	if err := claims.Validate(jwt.Expected{Time: time.Now()}); err != nil {
		if errors.Is(err, jwt.ErrExpired) {
			return Identity{}, errs.Wrap(errs.Unauthenticated, "token expired", err)
		}
		return Identity{}, errs.Wrap(errs.Unauthenticated, "invalid token", err)
	}

	if claims.Subject == "" {
		return Identity{}, errs.New(errs.Unauthenticated, "invalid token")
	}

	return Identity{
		UserID: claims.Subject,
		Name:   claims.Name,
		Email:  claims.Email,
	}, nil
}
