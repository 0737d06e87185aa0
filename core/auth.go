package core

import "time"

// Cookie names carrying the credential pair
const (
	AccessTokenKey  = "access_token"
	RefreshTokenKey = "refresh_token"
)

// Default storage entry lifetimes in seconds
const (
	DefaultAccessMaxAge  = 60 * 60          // 1 hour
	DefaultRefreshMaxAge = 7 * 24 * 60 * 60 // 7 days
)

// CredentialPair holds the access and refresh credentials of one session
type CredentialPair struct {
	Access  string `json:"access_token"`
	Refresh string `json:"refresh_token"`
}

// Complete reports whether both credentials are present
func (p CredentialPair) Complete() bool {
	return p.Access != "" && p.Refresh != ""
}

// Empty reports whether neither credential is present
func (p CredentialPair) Empty() bool {
	return p.Access == "" && p.Refresh == ""
}

// State classifies the pair as read from storage
func (p CredentialPair) State() SessionState {
	switch {
	case p.Complete():
		return SessionFull
	case p.Empty():
		return SessionNone
	default:
		return SessionPartial
	}
}

// SessionState is the storage-level shape of a session
type SessionState int

const (
	// SessionNone means neither credential is stored
	SessionNone SessionState = iota
	// SessionPartial means exactly one credential is stored
	SessionPartial
	// SessionFull means both credentials are stored
	SessionFull
)

func (s SessionState) String() string {
	switch s {
	case SessionNone:
		return "none"
	case SessionPartial:
		return "partial"
	case SessionFull:
		return "full"
	default:
		return "unknown"
	}
}

// Claims is the decoded payload of an access credential
type Claims struct {
	Subject   string    // Subject identifier (sub)
	IssuedAt  time.Time // Issued-at (iat)
	ExpiresAt time.Time // Expiry (exp)
}

// ExpiredAt reports whether the claims are expired at the given instant,
// compared at second precision.
func (c Claims) ExpiredAt(now time.Time) bool {
	return c.ExpiresAt.Unix() < now.Unix()
}

// IssuedSession is the issuer-side view of a credential pair
type IssuedSession struct {
	ID            string    // Access credential identifier
	Subject       string    // Account the pair belongs to
	IssuedAt      time.Time // When the pair was issued
	AccessExpiry  time.Time // When the access credential expires
	RefreshExpiry time.Time // When the refresh credential expires
	RefreshID     string    // Refresh credential identifier
}
