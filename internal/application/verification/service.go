package verification

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/client-portal-api/internal/domain"
	"github.com/client-portal-api/internal/pkg/otp"
	"github.com/rs/zerolog/log"
)

type IssueRequest struct {
	Email       string         `json:"email" validate:"required,email"`
	Purpose     domain.Purpose `json:"purpose" validate:"required"`
	DisplayName string         `json:"display_name"`
	// Phone switches delivery to SMS. The code row stays keyed by the
	// canonical email either way.
	Phone *string `json:"phone"`
}

type ValidateRequest struct {
	Email   string         `json:"email" validate:"required,email"`
	Code    string         `json:"code" validate:"required,len=6,numeric"`
	Purpose domain.Purpose `json:"purpose" validate:"required"`
}

type ValidateResult struct {
	Verified bool `json:"verified"`
	// SignInToken is only set for the login purpose: a single-use platform
	// token the client exchanges for a live session. The OTP itself never
	// becomes a session credential.
	SignInToken string `json:"sign_in_token,omitempty"`
}

// CodeStore is the verification-code persistence the service requires.
type CodeStore interface {
	Replace(ctx context.Context, v *domain.VerificationCode) error
	MarkUsed(ctx context.Context, email string, purpose domain.Purpose, code string, now time.Time) error
}

// Mailer delivers the code by email.
type Mailer interface {
	Send(to, subject, body string) error
}

// SMSSender delivers the code by SMS.
type SMSSender interface {
	SendSMS(ctx context.Context, to, message string) error
}

// TokenMinter asks the identity platform for a single-use sign-in token.
type TokenMinter interface {
	GenerateSignInToken(ctx context.Context, email string) (string, error)
}

type Service interface {
	Issue(ctx context.Context, req IssueRequest) error
	Validate(ctx context.Context, req ValidateRequest) (*ValidateResult, error)
}

type ServiceDeps struct {
	Codes    CodeStore
	Mailer   Mailer
	SMS      SMSSender
	Platform TokenMinter
	Now      func() time.Time
}

type service struct {
	codes    CodeStore
	mailer   Mailer
	sms      SMSSender
	platform TokenMinter
	now      func() time.Time
}

func NewService(deps ServiceDeps) Service {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		codes:    deps.Codes,
		mailer:   deps.Mailer,
		sms:      deps.SMS,
		platform: deps.Platform,
		now:      now,
	}
}

// Issue voids any outstanding code for (email, purpose), stores a fresh one
// and dispatches it. It deliberately never checks whether the email belongs
// to a known client — a distinguishable response would let callers enumerate
// registered addresses.
func (s *service) Issue(ctx context.Context, req IssueRequest) error {
	if !domain.ValidPurpose(req.Purpose) {
		return fmt.Errorf("unknown purpose %q: %w", req.Purpose, domain.ErrBadRequest)
	}
	email := NormalizeEmail(req.Email)

	code, err := otp.NewCode()
	if err != nil {
		return err
	}
	now := s.now().UTC()
	v := &domain.VerificationCode{
		Email:     email,
		Purpose:   req.Purpose,
		Code:      code,
		CreatedAt: now.Unix(),
		ExpiresAt: now.Add(domain.CodeValidity).Unix(),
	}
	if err := s.codes.Replace(ctx, v); err != nil {
		return err
	}

	if req.Phone != nil && *req.Phone != "" {
		if s.sms == nil {
			log.Warn().Str("purpose", string(req.Purpose)).Msg("sms channel not configured")
			return fmt.Errorf("send sms: %w", domain.ErrDeliveryFailed)
		}
		msg := fmt.Sprintf("Your verification code is %s. It is valid for 5 minutes.", code)
		if err := s.sms.SendSMS(ctx, *req.Phone, msg); err != nil {
			log.Warn().Err(err).Str("purpose", string(req.Purpose)).Msg("sms dispatch failed")
			return fmt.Errorf("send sms: %w", domain.ErrDeliveryFailed)
		}
		return nil
	}

	greeting := "Hello"
	if req.DisplayName != "" {
		greeting = "Hello " + req.DisplayName
	}
	body := fmt.Sprintf("%s,\n\nYour verification code is %s.\nIt is valid for 5 minutes.\n\nIf you did not request this code, you can ignore this email.",
		greeting, code)
	if err := s.mailer.Send(email, "Your verification code", body); err != nil {
		log.Warn().Err(err).Str("purpose", string(req.Purpose)).Msg("email dispatch failed")
		return fmt.Errorf("send email: %w", domain.ErrDeliveryFailed)
	}
	return nil
}

// Validate consumes the submitted code. The consume is durably recorded
// before any platform call: if minting the sign-in token fails afterwards,
// the code stays permanently spent and the caller must request a new one.
func (s *service) Validate(ctx context.Context, req ValidateRequest) (*ValidateResult, error) {
	if !domain.ValidPurpose(req.Purpose) {
		return nil, fmt.Errorf("unknown purpose %q: %w", req.Purpose, domain.ErrBadRequest)
	}
	email := NormalizeEmail(req.Email)

	if err := s.codes.MarkUsed(ctx, email, req.Purpose, req.Code, s.now().UTC()); err != nil {
		return nil, err
	}

	if req.Purpose != domain.PurposeLogin {
		return &ValidateResult{Verified: true}, nil
	}

	token, err := s.platform.GenerateSignInToken(ctx, email)
	if err != nil {
		log.Error().Err(err).Msg("sign-in token mint failed after code consumption")
		return nil, err
	}
	return &ValidateResult{Verified: true, SignInToken: token}, nil
}

// NormalizeEmail lower-cases and trims an address so lookups and code rows
// agree on the key.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
