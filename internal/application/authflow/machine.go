package authflow

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/client-portal-api/internal/application/verification"
	"github.com/client-portal-api/internal/domain"
	"github.com/client-portal-api/internal/pkg/mask"
)

// State of the identify-yourself interaction.
type State int

const (
	StateLookup State = iota
	StateOTPSent
	StateVerified
)

func (s State) String() string {
	switch s {
	case StateOTPSent:
		return "otp-sent"
	case StateVerified:
		return "verified"
	default:
		return "lookup"
	}
}

// ResendCooldown is how long resend stays disabled after a code is sent.
const ResendCooldown = 60 * time.Second

var (
	ErrBusy           = errors.New("request already in flight")
	ErrInvalidState   = errors.New("action not available in current state")
	ErrCooldownActive = errors.New("resend not available yet")
	// ErrDiscarded means the interaction was cancelled or torn down while the
	// request was in flight; the late response must not be applied.
	ErrDiscarded = errors.New("stale response discarded")
)

// Resolver maps one identifier to at most one client.
type Resolver interface {
	Resolve(ctx context.Context, req domain.LookupRequest) (*domain.Client, error)
}

// Verifier issues and validates one-time codes.
type Verifier interface {
	Issue(ctx context.Context, req verification.IssueRequest) error
	Validate(ctx context.Context, req verification.ValidateRequest) (*verification.ValidateResult, error)
}

// Machine drives the passwordless identify-yourself flow:
// lookup -> otp-sent -> verified, with cancel returning to lookup.
// One instance per interaction; the cooldown state lives and dies with it.
type Machine struct {
	resolver Resolver
	verifier Verifier
	purpose  domain.Purpose

	// OnCooldownTick, when set before the first submission, is called once per
	// second with the remaining cooldown while in otp-sent.
	OnCooldownTick func(remaining int)

	mu       sync.Mutex
	now      func() time.Time
	state    State
	client   *domain.Client
	viaPhone bool
	resendAt time.Time
	busy     bool
	gen      uint64
	closed   bool
	stopTick chan struct{}
}

func NewMachine(resolver Resolver, verifier Verifier, purpose domain.Purpose) *Machine {
	return &Machine{
		resolver: resolver,
		verifier: verifier,
		purpose:  purpose,
		now:      time.Now,
		state:    StateLookup,
	}
}

// WithClock overrides the time source. Test hook.
func (m *Machine) WithClock(now func() time.Time) *Machine {
	m.mu.Lock()
	m.now = now
	m.mu.Unlock()
	return m
}

func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Identity returns the resolved client's pre-verification view, or nil in
// lookup. The full record stays inside the machine until verification
// succeeds.
func (m *Machine) Identity() *domain.PublicClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.client == nil {
		return nil
	}
	return &domain.PublicClient{
		Code:        m.client.Code,
		Name:        m.client.Name,
		MaskedEmail: mask.Email(m.client.Email),
	}
}

// VerifiedClient returns the full client record once the flow is verified.
func (m *Machine) VerifiedClient() *domain.Client {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateVerified {
		return nil
	}
	return m.client
}

// CooldownRemaining returns the seconds until resend becomes available.
func (m *Machine) CooldownRemaining() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cooldownRemainingLocked()
}

func (m *Machine) cooldownRemainingLocked() int {
	d := m.resendAt.Sub(m.now())
	if d <= 0 {
		return 0
	}
	return int((d + time.Second - 1) / time.Second)
}

func (m *Machine) CanResend() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state == StateOTPSent && m.cooldownRemainingLocked() == 0
}

// SubmitIdentifier resolves the identifier and, on success, issues a code and
// enters otp-sent. On resolver failure the machine stays in lookup.
func (m *Machine) SubmitIdentifier(ctx context.Context, req domain.LookupRequest) (*domain.PublicClient, error) {
	gen, err := m.begin(StateLookup)
	if err != nil {
		return nil, err
	}

	client, err := m.resolver.Resolve(ctx, req)
	if err != nil {
		return nil, m.fail(gen, err)
	}

	viaPhone := req.Phone != nil && *req.Phone != ""
	issue := verification.IssueRequest{
		Email:       client.Email,
		Purpose:     m.purpose,
		DisplayName: client.Name,
	}
	if viaPhone {
		issue.Phone = client.Phone
	}
	if err := m.verifier.Issue(ctx, issue); err != nil {
		return nil, m.fail(gen, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.gen != gen {
		return nil, ErrDiscarded
	}
	m.busy = false
	m.client = client
	m.viaPhone = viaPhone
	m.state = StateOTPSent
	m.resendAt = m.now().Add(ResendCooldown)
	m.startTickerLocked()
	return &domain.PublicClient{
		Code:        client.Code,
		Name:        client.Name,
		MaskedEmail: mask.Email(client.Email),
	}, nil
}

// SubmitCode validates the typed code. On success the machine becomes
// verified; on failure it stays in otp-sent and the cooldown is untouched.
// The code itself is never retained.
func (m *Machine) SubmitCode(ctx context.Context, code string) (*verification.ValidateResult, error) {
	gen, err := m.begin(StateOTPSent)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	email := m.client.Email
	m.mu.Unlock()

	result, err := m.verifier.Validate(ctx, verification.ValidateRequest{
		Email:   email,
		Code:    code,
		Purpose: m.purpose,
	})
	if err != nil {
		return nil, m.fail(gen, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.gen != gen {
		return nil, ErrDiscarded
	}
	m.busy = false
	m.state = StateVerified
	m.stopTickerLocked()
	return result, nil
}

// Resend issues a fresh code once the cooldown has elapsed. The previous code
// is voided by issuance.
func (m *Machine) Resend(ctx context.Context) error {
	m.mu.Lock()
	if m.closed || m.state != StateOTPSent {
		m.mu.Unlock()
		return ErrInvalidState
	}
	if m.busy {
		m.mu.Unlock()
		return ErrBusy
	}
	if m.cooldownRemainingLocked() > 0 {
		m.mu.Unlock()
		return ErrCooldownActive
	}
	m.busy = true
	gen := m.gen
	issue := verification.IssueRequest{
		Email:       m.client.Email,
		Purpose:     m.purpose,
		DisplayName: m.client.Name,
	}
	if m.viaPhone {
		issue.Phone = m.client.Phone
	}
	m.mu.Unlock()

	if err := m.verifier.Issue(ctx, issue); err != nil {
		return m.fail(gen, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.gen != gen {
		return ErrDiscarded
	}
	m.busy = false
	m.resendAt = m.now().Add(ResendCooldown)
	m.startTickerLocked()
	return nil
}

// Cancel abandons the current attempt and returns to lookup, discarding the
// resolved identity. Any in-flight response is discarded when it lands.
func (m *Machine) Cancel() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resetLocked()
}

// ChangeIdentity leaves the verified state and returns to lookup.
func (m *Machine) ChangeIdentity() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateVerified {
		return
	}
	m.resetLocked()
}

// Close tears the machine down. No timers survive it.
func (m *Machine) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.gen++
	m.busy = false
	m.stopTickerLocked()
}

func (m *Machine) resetLocked() {
	m.gen++
	m.busy = false
	m.client = nil
	m.viaPhone = false
	m.state = StateLookup
	m.resendAt = time.Time{}
	m.stopTickerLocked()
}

func (m *Machine) begin(required State) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed || m.state != required {
		return 0, ErrInvalidState
	}
	if m.busy {
		return 0, ErrBusy
	}
	m.busy = true
	return m.gen, nil
}

// fail clears the busy flag and passes the error through, unless the attempt
// was cancelled while in flight — then the late error is discarded too.
func (m *Machine) fail(gen uint64, err error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.gen != gen {
		return ErrDiscarded
	}
	m.busy = false
	return err
}

func (m *Machine) startTickerLocked() {
	if m.OnCooldownTick == nil {
		return
	}
	m.stopTickerLocked()
	stop := make(chan struct{})
	m.stopTick = stop
	cb := m.OnCooldownTick
	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				remaining := m.CooldownRemaining()
				cb(remaining)
				if remaining == 0 {
					return
				}
			}
		}
	}()
}

func (m *Machine) stopTickerLocked() {
	if m.stopTick != nil {
		close(m.stopTick)
		m.stopTick = nil
	}
}
