package ports

import (
	"context"

	"github.com/layer-3/portal/core"
)

// Request describes one call to the remote API
type Request struct {
	Method string
	Path   string

	// Body is marshalled to JSON on every attempt. An io.Reader body is read
	// once and its bytes are sent as is.
	Body   any
	Header map[string]string
}

// Refresher exchanges a refresh credential for a new pair.
// A failed exchange yields ok == false and is never retried.
type Refresher interface {
	Refresh(ctx context.Context, refreshToken string) (pair core.CredentialPair, ok bool)
}

// Executor issues authenticated calls, renewing the session once on a 401
type Executor interface {
	Execute(ctx context.Context, store SessionStore, req Request, accessToken string, out any) error
}

// API is the remote course-schedule API as seen by the portal
type API interface {
	Executor
	Refresher

	Login(ctx context.Context, email, password string) (core.CredentialPair, error)
	Register(ctx context.Context, email, password, confirmPassword string) (string, error)
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, password, confirmPassword string) error
	StudyPrograms(ctx context.Context) ([]core.StudyProgram, error)
	Health(ctx context.Context) error
}
