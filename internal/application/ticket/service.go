package ticket

import (
	"context"
	"fmt"
	"time"

	"github.com/client-portal-api/internal/application/verification"
	"github.com/client-portal-api/internal/domain"
	"github.com/client-portal-api/internal/pkg/id"
)

type SubmitRequest struct {
	Email   string `json:"email" validate:"required,email"`
	Code    string `json:"code" validate:"required,len=6,numeric"`
	Name    string `json:"name"`
	Subject string `json:"subject" validate:"required,max=200"`
	Body    string `json:"body" validate:"required,max=5000"`
}

// TicketStore is the persistence the service requires.
type TicketStore interface {
	Put(ctx context.Context, t *domain.Ticket) error
	Get(ctx context.Context, ticketID string) (*domain.Ticket, error)
	Update(ctx context.Context, ticketID string, updates map[string]interface{}) error
	ListByEmail(ctx context.Context, email string) ([]domain.Ticket, error)
}

type Service interface {
	// Submit accepts a helpdesk ticket from an unauthenticated visitor.
	// The contact-verification code proves mailbox possession first; a login
	// code cannot be replayed here — purposes never share a code.
	Submit(ctx context.Context, req SubmitRequest) (*domain.Ticket, error)
	ListForEmail(ctx context.Context, email string) ([]domain.Ticket, error)
	// Close marks the caller's own ticket as closed.
	Close(ctx context.Context, ticketID, email string) error
}

type service struct {
	tickets  TicketStore
	verifier verification.Service
	now      func() time.Time
}

func NewService(tickets TicketStore, verifier verification.Service) Service {
	return &service{tickets: tickets, verifier: verifier, now: time.Now}
}

func (s *service) Submit(ctx context.Context, req SubmitRequest) (*domain.Ticket, error) {
	_, err := s.verifier.Validate(ctx, verification.ValidateRequest{
		Email:   req.Email,
		Code:    req.Code,
		Purpose: domain.PurposeContact,
	})
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	t := &domain.Ticket{
		TicketID:  id.New(),
		Email:     verification.NormalizeEmail(req.Email),
		Name:      req.Name,
		Subject:   req.Subject,
		Body:      req.Body,
		Status:    domain.TicketStatusOpen,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.tickets.Put(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *service) ListForEmail(ctx context.Context, email string) ([]domain.Ticket, error) {
	return s.tickets.ListByEmail(ctx, verification.NormalizeEmail(email))
}

func (s *service) Close(ctx context.Context, ticketID, email string) error {
	t, err := s.tickets.Get(ctx, ticketID)
	if err != nil {
		return err
	}
	if t.Email != verification.NormalizeEmail(email) {
		return fmt.Errorf("ticket belongs to another client: %w", domain.ErrForbidden)
	}
	return s.tickets.Update(ctx, ticketID, map[string]interface{}{"status": domain.TicketStatusClosed})
}
