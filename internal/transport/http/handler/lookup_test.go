package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/client-portal-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockLookupService struct{ mock.Mock }

func (m *mockLookupService) Resolve(ctx context.Context, req domain.LookupRequest) (*domain.Client, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Client), args.Error(1)
}

func (m *mockLookupService) ResolvePublic(ctx context.Context, req domain.LookupRequest) (*domain.PublicClient, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PublicClient), args.Error(1)
}

func TestLookup_ReturnsMaskedView(t *testing.T) {
	svc := new(mockLookupService)
	svc.On("ResolvePublic", mock.Anything, mock.Anything).Return(&domain.PublicClient{
		Code:        "ACME",
		Name:        "Acme S.A.",
		MaskedEmail: "b***@acme.example",
	}, nil)
	h := NewLookupHandler(svc)

	rec := postJSON(t, h.Lookup, "/v1/clients/lookup", `{"code":"ACME"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	var pub domain.PublicClient
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pub))
	assert.Equal(t, "b***@acme.example", pub.MaskedEmail)
	// The full address never appears in the payload.
	assert.NotContains(t, rec.Body.String(), "billing@acme.example")
}

func TestLookup_NotFound(t *testing.T) {
	svc := new(mockLookupService)
	svc.On("ResolvePublic", mock.Anything, mock.Anything).Return(nil, domain.ErrNotFound)
	h := NewLookupHandler(svc)

	rec := postJSON(t, h.Lookup, "/v1/clients/lookup", `{"code":"NOPE"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLookup_MultiMatchSurfacesAsInternalError(t *testing.T) {
	svc := new(mockLookupService)
	svc.On("ResolvePublic", mock.Anything, mock.Anything).
		Return(nil, fmt.Errorf("email matched 2 clients: %w", domain.ErrDefect))
	h := NewLookupHandler(svc)

	rec := postJSON(t, h.Lookup, "/v1/clients/lookup", `{"email":"shared@acme.example"}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	// Details of the data defect stay out of the response.
	assert.NotContains(t, rec.Body.String(), "matched 2 clients")
}

func TestLookup_NoIdentifier(t *testing.T) {
	svc := new(mockLookupService)
	svc.On("ResolvePublic", mock.Anything, mock.Anything).
		Return(nil, fmt.Errorf("one of code, email or phone required: %w", domain.ErrBadRequest))
	h := NewLookupHandler(svc)

	rec := postJSON(t, h.Lookup, "/v1/clients/lookup", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLookup_InvalidBody(t *testing.T) {
	h := NewLookupHandler(new(mockLookupService))
	rec := postJSON(t, h.Lookup, "/v1/clients/lookup", `{{`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
