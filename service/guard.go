package service

import (
	"context"
	"time"

	"github.com/layer-3/portal/core"
	"github.com/layer-3/portal/ports"
	"github.com/rs/zerolog"
)

// GuardMode selects which session state a page requires
type GuardMode int

const (
	// RequireSession protects pages for signed-in users
	RequireSession GuardMode = iota
	// RequireGuest protects pages that only make sense signed out (login, register)
	RequireGuest
)

func (m GuardMode) String() string {
	if m == RequireGuest {
		return "guest"
	}
	return "session"
}

// Decision is the outcome of a guard check
type Decision struct {
	Proceed  bool              // Page logic may run
	Redirect string            // Target when Proceed is false
	Cleared  bool              // Both credentials were removed
	State    core.SessionState // Session shape found in the store
	Expired  bool              // Access credential was present but expired
}

// Guard runs before page logic and turns invalid sessions into redirects
type Guard struct {
	codec       ports.CredentialCodec
	events      ports.EventPublisher
	log         zerolog.Logger
	loginPath   string
	landingPath string
}

// NewGuard creates a guard redirecting to loginPath or landingPath
func NewGuard(codec ports.CredentialCodec, events ports.EventPublisher, log zerolog.Logger, loginPath, landingPath string) *Guard {
	return &Guard{
		codec:       codec,
		events:      events,
		log:         log,
		loginPath:   loginPath,
		landingPath: landingPath,
	}
}

// LoginPath is where unauthenticated visitors are sent
func (g *Guard) LoginPath() string {
	return g.loginPath
}

// LandingPath is where authenticated visitors are sent
func (g *Guard) LandingPath() string {
	return g.landingPath
}

// Check inspects the store and decides whether the page may run.
// It never fails: any invalid session becomes a redirect or a cleared store.
func (g *Guard) Check(ctx context.Context, mode GuardMode, store ports.SessionStore) Decision {
	pair, _ := store.Get(ctx)
	d := Decision{State: pair.State()}

	switch d.State {
	case core.SessionNone:
		if mode == RequireGuest {
			d.Proceed = true
			return d
		}
		d.Redirect = g.loginPath
		return d

	case core.SessionPartial:
		// A half-written session cannot be trusted in either mode
		d.Cleared = g.clear(ctx, store, pair, "partial session")
		if mode == RequireGuest {
			d.Proceed = true
			return d
		}
		d.Redirect = g.loginPath
		return d
	}

	d.Expired = g.codec.IsExpired(pair.Access)

	switch {
	case mode == RequireSession && d.Expired:
		d.Cleared = g.clear(ctx, store, pair, "access token expired")
		d.Redirect = g.loginPath
	case mode == RequireSession:
		d.Proceed = true
	case d.Expired:
		d.Cleared = g.clear(ctx, store, pair, "access token expired")
		d.Proceed = true
	default:
		d.Redirect = g.landingPath
	}

	return d
}

func (g *Guard) clear(ctx context.Context, store ports.SessionStore, pair core.CredentialPair, reason string) bool {
	if err := store.Clear(ctx); err != nil {
		g.log.Warn().Err(err).Str("reason", reason).Msg("failed to clear session")
		return false
	}

	g.log.Debug().Str("reason", reason).Msg("session cleared by guard")

	if g.events != nil {
		event := core.SessionEvent{
			Type:      core.EventSessionCleared,
			Subject:   subjectOf(g.codec, pair.Access),
			Reason:    reason,
			RequestID: core.RequestID(ctx),
			At:        time.Now().UTC(),
		}
		if err := g.events.PublishSessionEvent(ctx, event); err != nil {
			g.log.Warn().Err(err).Msg("failed to publish session event")
		}
	}

	return true
}

// subjectOf returns the subject of an access credential, or "" when it cannot be decoded
func subjectOf(codec ports.CredentialCodec, accessToken string) string {
	if accessToken == "" {
		return ""
	}
	claims, err := codec.Decode(accessToken)
	if err != nil {
		return ""
	}
	return claims.Subject
}
