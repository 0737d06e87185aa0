package store

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/layer-3/portal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newCookieContext(cookies ...*http.Cookie) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	c.Request = req
	return c, w
}

func TestCookieStore_Get(t *testing.T) {
	c, _ := newCookieContext(
		&http.Cookie{Name: core.AccessTokenKey, Value: "access"},
		&http.Cookie{Name: core.RefreshTokenKey, Value: "refresh"},
	)
	s := NewCookieStore(c, DefaultCookieOptions())

	pair, ok := s.Get(context.Background())
	assert.True(t, ok)
	assert.Equal(t, core.CredentialPair{Access: "access", Refresh: "refresh"}, pair)
}

func TestCookieStore_GetPartial(t *testing.T) {
	c, _ := newCookieContext(&http.Cookie{Name: core.AccessTokenKey, Value: "access"})
	s := NewCookieStore(c, DefaultCookieOptions())

	pair, ok := s.Get(context.Background())
	assert.False(t, ok)
	assert.Equal(t, core.SessionPartial, pair.State())
}

func TestCookieStore_SetWritesHardenedCookies(t *testing.T) {
	c, w := newCookieContext()
	s := NewCookieStore(c, CookieOptions{
		Path:          "/",
		Domain:        "portal.example",
		Secure:        true,
		AccessMaxAge:  time.Hour,
		RefreshMaxAge: 7 * 24 * time.Hour,
	})

	require.NoError(t, s.Set(context.Background(), core.CredentialPair{Access: "a1", Refresh: "r1"}))

	headers := w.Header().Values("Set-Cookie")
	require.Len(t, headers, 2)

	assert.True(t, strings.HasPrefix(headers[0], core.RefreshTokenKey+"=r1"), "refresh cookie must be written first")
	assert.True(t, strings.HasPrefix(headers[1], core.AccessTokenKey+"=a1"))

	for _, h := range headers {
		assert.Contains(t, h, "HttpOnly")
		assert.Contains(t, h, "Secure")
		assert.Contains(t, h, "SameSite=Strict")
		assert.Contains(t, h, "Path=/")
		assert.Contains(t, h, "Domain=portal.example")
	}
	assert.Contains(t, headers[0], "Max-Age=604800")
	assert.Contains(t, headers[1], "Max-Age=3600")
}

func TestCookieStore_SetIsVisibleWithinRequest(t *testing.T) {
	c, _ := newCookieContext(
		&http.Cookie{Name: core.AccessTokenKey, Value: "old-access"},
		&http.Cookie{Name: core.RefreshTokenKey, Value: "old-refresh"},
	)
	s := NewCookieStore(c, DefaultCookieOptions())

	require.NoError(t, s.Set(context.Background(), core.CredentialPair{Access: "new-access", Refresh: "new-refresh"}))

	pair, ok := s.Get(context.Background())
	assert.True(t, ok)
	assert.Equal(t, "new-access", pair.Access)
	assert.Equal(t, "new-refresh", pair.Refresh)
}

func TestCookieStore_SetRejectsIncompletePair(t *testing.T) {
	c, w := newCookieContext()
	s := NewCookieStore(c, DefaultCookieOptions())

	err := s.Set(context.Background(), core.CredentialPair{Access: "a"})
	assert.ErrorIs(t, err, core.ErrStoreFailed)
	assert.Empty(t, w.Header().Values("Set-Cookie"))
}

func TestCookieStore_Clear(t *testing.T) {
	c, w := newCookieContext(
		&http.Cookie{Name: core.AccessTokenKey, Value: "access"},
		&http.Cookie{Name: core.RefreshTokenKey, Value: "refresh"},
	)
	s := NewCookieStore(c, DefaultCookieOptions())

	require.NoError(t, s.Clear(context.Background()))

	headers := w.Header().Values("Set-Cookie")
	require.Len(t, headers, 2)
	for _, h := range headers {
		assert.Contains(t, h, "Max-Age=0")
		assert.Contains(t, h, "SameSite=Strict")
	}

	pair, ok := s.Get(context.Background())
	assert.False(t, ok)
	assert.True(t, pair.Empty())
}
