package ports

import (
	"context"
	"time"

	"github.com/layer-3/portal/core"
)

// SessionStore persists the credential pair of one browser session.
// Entry lifetimes are a property of the store, not of the credentials.
type SessionStore interface {
	// Get returns whatever credentials are stored; ok is true only when both are present
	Get(ctx context.Context) (pair core.CredentialPair, ok bool)

	// Set stores both credentials, refresh first then access
	Set(ctx context.Context, pair core.CredentialPair) error

	// Clear removes both credentials; clearing an empty store is not an error
	Clear(ctx context.Context) error
}

// RevocationStore records refresh credentials that must no longer be exchanged
type RevocationStore interface {
	InvalidateToken(ctx context.Context, tokenID string, expiry time.Duration) error
	IsTokenInvalidated(ctx context.Context, tokenID string) (bool, error)
}
