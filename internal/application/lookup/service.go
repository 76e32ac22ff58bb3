package lookup

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/client-portal-api/internal/domain"
	"github.com/client-portal-api/internal/pkg/mask"
	"github.com/rs/zerolog/log"
)

// ClientStore is the read-only client directory access the resolver requires.
type ClientStore interface {
	FindByCode(ctx context.Context, code string) (*domain.Client, error)
	FindByEmail(ctx context.Context, email string) (*domain.Client, error)
	FindByPhone(ctx context.Context, phone string) (*domain.Client, error)
}

type Service interface {
	// Resolve maps exactly one populated identifier to at most one client.
	// Resolution is not authentication: every successful resolve must be
	// followed by a possession proof before the caller is treated as that
	// identity.
	Resolve(ctx context.Context, req domain.LookupRequest) (*domain.Client, error)
	// ResolvePublic is Resolve reduced to the pre-verification view:
	// public code, name and a masked email, never the full contact fields.
	ResolvePublic(ctx context.Context, req domain.LookupRequest) (*domain.PublicClient, error)
}

type service struct {
	clients ClientStore
}

func NewService(clients ClientStore) Service {
	return &service{clients: clients}
}

func (s *service) Resolve(ctx context.Context, req domain.LookupRequest) (*domain.Client, error) {
	populated := 0
	for _, f := range []*string{req.Code, req.Email, req.Phone} {
		if f != nil && *f != "" {
			populated++
		}
	}
	switch {
	case populated == 0:
		return nil, fmt.Errorf("one of code, email or phone required: %w", domain.ErrBadRequest)
	case populated > 1:
		// Caller-contract violation, not user error.
		log.Error().Int("fields", populated).Msg("lookup called with multiple identifiers")
		return nil, fmt.Errorf("exactly one identifier allowed: %w", domain.ErrDefect)
	}

	var (
		c   *domain.Client
		err error
	)
	switch {
	case req.Code != nil && *req.Code != "":
		c, err = s.clients.FindByCode(ctx, strings.ToUpper(strings.TrimSpace(*req.Code)))
	case req.Email != nil && *req.Email != "":
		c, err = s.clients.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(*req.Email)))
	default:
		c, err = s.clients.FindByPhone(ctx, normalizePhone(*req.Phone))
	}
	if err != nil {
		if errors.Is(err, domain.ErrDefect) {
			log.Error().Err(err).Msg("identifier matched multiple clients")
		}
		return nil, err
	}
	return c, nil
}

func (s *service) ResolvePublic(ctx context.Context, req domain.LookupRequest) (*domain.PublicClient, error) {
	c, err := s.Resolve(ctx, req)
	if err != nil {
		return nil, err
	}
	return &domain.PublicClient{
		Code:        c.Code,
		Name:        c.Name,
		MaskedEmail: mask.Email(c.Email),
	}, nil
}

// normalizePhone strips formatting characters so stored and submitted numbers
// compare equal.
func normalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' || r == '+' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
