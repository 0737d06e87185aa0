package store

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/layer-3/portal/core"
	"github.com/layer-3/portal/ports"
)

// CookieOptions are the attributes shared by both session cookies
type CookieOptions struct {
	Path          string
	Domain        string
	Secure        bool
	AccessMaxAge  time.Duration
	RefreshMaxAge time.Duration
}

// DefaultCookieOptions returns root-scoped secure cookies with the default lifetimes
func DefaultCookieOptions() CookieOptions {
	return CookieOptions{
		Path:          "/",
		Secure:        true,
		AccessMaxAge:  core.DefaultAccessMaxAge * time.Second,
		RefreshMaxAge: core.DefaultRefreshMaxAge * time.Second,
	}
}

// CookieStore keeps the session in two HttpOnly, SameSite=Strict cookies.
// It is bound to a single request; writes made during the request are
// visible to later reads of the same request.
type CookieStore struct {
	c       *gin.Context
	opts    CookieOptions
	written map[string]string
}

// NewCookieStore binds a cookie store to the request
func NewCookieStore(c *gin.Context, opts CookieOptions) *CookieStore {
	if opts.Path == "" {
		opts.Path = "/"
	}
	return &CookieStore{
		c:       c,
		opts:    opts,
		written: make(map[string]string, 2),
	}
}

var _ ports.SessionStore = (*CookieStore)(nil)

// Get reads both cookies
func (s *CookieStore) Get(ctx context.Context) (core.CredentialPair, bool) {
	pair := core.CredentialPair{
		Access:  s.read(core.AccessTokenKey),
		Refresh: s.read(core.RefreshTokenKey),
	}
	return pair, pair.Complete()
}

// Set writes the refresh cookie first so an interrupted write never leaves
// an access-only session behind
func (s *CookieStore) Set(ctx context.Context, pair core.CredentialPair) error {
	if !pair.Complete() {
		return fmt.Errorf("%w: incomplete credential pair", core.ErrStoreFailed)
	}

	s.write(core.RefreshTokenKey, pair.Refresh, s.opts.RefreshMaxAge)
	s.write(core.AccessTokenKey, pair.Access, s.opts.AccessMaxAge)

	return nil
}

// Clear expires both cookies
func (s *CookieStore) Clear(ctx context.Context) error {
	s.expire(core.AccessTokenKey)
	s.expire(core.RefreshTokenKey)
	return nil
}

func (s *CookieStore) read(name string) string {
	if value, ok := s.written[name]; ok {
		return value
	}
	value, err := s.c.Cookie(name)
	if err != nil {
		return ""
	}
	return value
}

func (s *CookieStore) write(name, value string, maxAge time.Duration) {
	s.c.SetSameSite(http.SameSiteStrictMode)
	s.c.SetCookie(name, value, int(maxAge/time.Second), s.opts.Path, s.opts.Domain, s.opts.Secure, true)
	s.written[name] = value
}

func (s *CookieStore) expire(name string) {
	s.c.SetSameSite(http.SameSiteStrictMode)
	s.c.SetCookie(name, "", -1, s.opts.Path, s.opts.Domain, s.opts.Secure, true)
	s.written[name] = ""
}
