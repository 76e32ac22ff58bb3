package jwtinfra

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/client-portal-api/internal/config"
	"github.com/golang-jwt/jwt/v5"
)

// AudiencePortal marks sessions that belong to this portal's user population.
// Tokens minted for other audiences (staff console, partner API) must not be
// accepted here.
const AudiencePortal = "portal"

// Claims holds the JWT payload fields the portal cares about.
type Claims struct {
	Email    string `json:"email"`
	ClientID string `json:"client_id"`
	jwt.RegisteredClaims
}

// IsPortalAudience reports whether the token was minted for this portal.
func (c *Claims) IsPortalAudience() bool {
	for _, aud := range c.Audience {
		if aud == AudiencePortal {
			return true
		}
	}
	return false
}

// Provider verifies RS256 bearer tokens issued by the identity platform.
// Signing is only available when a private key is configured (dev/test
// setups that run without a real platform).
type Provider struct {
	privateKey *rsa.PrivateKey
	publicKey  *rsa.PublicKey
	expiry     time.Duration
}

func NewProvider(cfg *config.Config) (*Provider, error) {
	pubBytes, err := os.ReadFile(cfg.JWTPublicKeyPath)
	if err != nil {
		return nil, fmt.Errorf("read public key: %w", err)
	}
	pubKey, err := jwt.ParseRSAPublicKeyFromPEM(pubBytes)
	if err != nil {
		return nil, fmt.Errorf("parse public key: %w", err)
	}

	p := &Provider{publicKey: pubKey, expiry: cfg.JWTExpiry}

	if cfg.JWTPrivateKeyPath != "" {
		privBytes, err := os.ReadFile(cfg.JWTPrivateKeyPath)
		if err != nil {
			return nil, fmt.Errorf("read private key: %w", err)
		}
		privKey, err := jwt.ParseRSAPrivateKeyFromPEM(privBytes)
		if err != nil {
			return nil, fmt.Errorf("parse private key: %w", err)
		}
		p.privateKey = privKey
	}

	return p, nil
}

func (p *Provider) Sign(email, clientID string) (string, error) {
	if p.privateKey == nil {
		return "", errors.New("no private key configured")
	}
	claims := Claims{
		Email:    email,
		ClientID: clientID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   clientID,
			Audience:  jwt.ClaimStrings{AudiencePortal},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(p.expiry)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	return token.SignedString(p.privateKey)
}

func (p *Provider) Verify(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return p.publicKey, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}
