package authflow

import (
	"context"
	"net/url"

	"github.com/client-portal-api/internal/infrastructure/identity"
	"github.com/rs/zerolog/log"
)

// Outcome is the terminal UI state of one bootstrap run.
type Outcome int

const (
	// OutcomeIdentify means no usable session: present the identify-yourself UI.
	OutcomeIdentify Outcome = iota
	// OutcomeReady means an authenticated portal session is live.
	OutcomeReady
	// OutcomeNeedsPassword means the visitor arrived on a recovery or invite
	// link and must set a password before anything else.
	OutcomeNeedsPassword
)

func (o Outcome) String() string {
	switch o {
	case OutcomeReady:
		return "ready"
	case OutcomeNeedsPassword:
		return "needs-password"
	default:
		return "identify"
	}
}

// SessionEvent is an asynchronous notification from the identity platform.
type SessionEvent string

const (
	EventSignedIn         SessionEvent = "SIGNED_IN"
	EventSignedOut        SessionEvent = "SIGNED_OUT"
	EventPasswordRecovery SessionEvent = "PASSWORD_RECOVERY"
)

// Platform is the session surface the bootstrapper drives.
type Platform interface {
	ExchangeCode(ctx context.Context, code string) (*identity.Session, error)
	SetSession(ctx context.Context, accessToken, refreshToken string) (*identity.Session, error)
	CurrentSession(ctx context.Context) (*identity.Session, error)
	SignOut(ctx context.Context) error
}

// Result captures one bootstrap run: the outcome, the session (if any), the
// immutable URL-derived flow, and the URL to rewrite the address bar to.
type Result struct {
	Outcome  Outcome
	Session  *identity.Session
	Flow     Context
	CleanURL *url.URL
}

// Reconcile decides what a later platform session event means for the UI.
// It consults the precomputed flow rather than re-deriving anything from
// whatever session state exists when the event fires: a "signed in" event
// during a recovery flow must never route to the authenticated area.
func (r *Result) Reconcile(evt SessionEvent) Outcome {
	switch {
	case evt == EventSignedOut:
		return OutcomeIdentify
	case r.Flow.RequiresPassword():
		return OutcomeNeedsPassword
	case evt == EventPasswordRecovery:
		return OutcomeNeedsPassword
	case evt == EventSignedIn:
		return OutcomeReady
	}
	return r.Outcome
}

// Bootstrapper converts a detected flow into a live session, once per page load.
type Bootstrapper struct {
	platform Platform
}

func NewBootstrapper(platform Platform) *Bootstrapper {
	return &Bootstrapper{platform: platform}
}

// Run executes the bootstrap decision table over the page URL:
//
//  1. An authorization code is exchanged for a session; failure falls through
//     without raising, and the code stays in the cleaned URL so a reload can
//     retry.
//  2. Raw fragment tokens are installed if no session was produced yet.
//  3. Recovery and invite flows terminate at needs-password regardless of
//     steps 1-2 — a valid recovery link must never land in the authenticated
//     area.
//  4. An existing session is accepted only if it belongs to this portal's
//     user population; foreign sessions are signed out and discarded.
//  5. Otherwise the visitor must identify.
func (b *Bootstrapper) Run(ctx context.Context, pageURL *url.URL) *Result {
	flow := Detect(pageURL)
	res := &Result{Flow: flow}

	var sess *identity.Session
	exchanged := false

	if flow.Code != "" {
		s, err := b.platform.ExchangeCode(ctx, flow.Code)
		if err != nil {
			// Not terminal: the fragment may still carry usable tokens.
			log.Warn().Err(err).Str("flow", flow.Kind.String()).Msg("authorization code exchange failed")
		} else {
			sess = s
			exchanged = true
		}
	}
	res.CleanURL = CleanURL(pageURL, flow, exchanged)

	if sess == nil && flow.AccessToken != "" && flow.RefreshToken != "" {
		s, err := b.platform.SetSession(ctx, flow.AccessToken, flow.RefreshToken)
		if err != nil {
			log.Warn().Err(err).Str("flow", flow.Kind.String()).Msg("fragment token install failed")
		} else {
			sess = s
		}
	}

	if flow.RequiresPassword() {
		res.Outcome = OutcomeNeedsPassword
		res.Session = sess
		return res
	}

	if sess == nil {
		sess, _ = b.platform.CurrentSession(ctx)
	}
	if sess != nil {
		if !sess.IsPortalUser() {
			log.Warn().Str("aud", sess.Audience).Msg("rejecting cross-portal session")
			_ = b.platform.SignOut(ctx)
			res.Outcome = OutcomeIdentify
			return res
		}
		res.Outcome = OutcomeReady
		res.Session = sess
		return res
	}

	res.Outcome = OutcomeIdentify
	return res
}
