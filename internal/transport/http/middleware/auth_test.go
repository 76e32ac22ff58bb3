package middleware

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/client-portal-api/internal/config"
	jwtinfra "github.com/client-portal-api/internal/infrastructure/jwt"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestProvider generates a throwaway RSA key pair on disk and returns a
// provider that can both sign and verify, plus the raw private key for
// crafting tokens the provider itself would never mint.
func newTestProvider(t *testing.T) (*jwtinfra.Provider, *rsa.PrivateKey) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	dir := t.TempDir()
	privPath := filepath.Join(dir, "private.pem")
	pubPath := filepath.Join(dir, "public.pem")

	privPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	})
	require.NoError(t, os.WriteFile(privPath, privPEM, 0o600))

	pubBytes, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)
	pubPEM := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubBytes})
	require.NoError(t, os.WriteFile(pubPath, pubPEM, 0o600))

	provider, err := jwtinfra.NewProvider(&config.Config{
		JWTPublicKeyPath:  pubPath,
		JWTPrivateKeyPath: privPath,
		JWTExpiry:         time.Hour,
	})
	require.NoError(t, err)
	return provider, key
}

func protectedHandler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFromContext(r.Context())
		require.True(t, ok)
		w.Header().Set("X-Email", claims.Email)
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuth_ValidToken(t *testing.T) {
	provider, _ := newTestProvider(t)
	token, err := provider.Sign("maria@example.com", "01HZX0")
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/clients/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	Auth(provider)(protectedHandler(t)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "maria@example.com", rec.Header().Get("X-Email"))
}

func TestAuth_MissingHeader(t *testing.T) {
	provider, _ := newTestProvider(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/clients/me", nil)
	Auth(provider)(protectedHandler(t)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuth_MalformedToken(t *testing.T) {
	provider, _ := newTestProvider(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/clients/me", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	Auth(provider)(protectedHandler(t)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuth_ExpiredToken(t *testing.T) {
	provider, key := newTestProvider(t)

	claims := jwtinfra.Claims{
		Email: "maria@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Audience:  jwt.ClaimStrings{jwtinfra.AudiencePortal},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/clients/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	Auth(provider)(protectedHandler(t)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuth_ForeignAudienceForbidden(t *testing.T) {
	provider, key := newTestProvider(t)

	// Valid signature, wrong population: a staff-console session must not
	// pass as a portal client.
	claims := jwtinfra.Claims{
		Email: "staff@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Audience:  jwt.ClaimStrings{"staff-console"},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/clients/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	Auth(provider)(protectedHandler(t)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestClaimsFromContext_Absent(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, ok := ClaimsFromContext(req.Context())
	assert.False(t, ok)
}
