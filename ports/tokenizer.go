package ports

import "github.com/layer-3/portal/core"

// CredentialCodec reads access credentials without contacting the network
type CredentialCodec interface {
	// Decode extracts the claims of an access credential
	Decode(token string) (*core.Claims, error)

	// IsExpired reports whether the credential is expired; undecodable credentials are expired
	IsExpired(token string) bool
}

// Issuer mints signed credentials
type Issuer interface {
	IssueAccess(session *core.IssuedSession) (string, error)
	IssueRefresh(session *core.IssuedSession) (string, error)
	ParseRefresh(token string) (*core.IssuedSession, error)
	ParseAccess(token string) (*core.IssuedSession, error)
}
