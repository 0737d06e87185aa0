package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/layer-3/portal/adapters/store"
	"github.com/layer-3/portal/core"
	"github.com/layer-3/portal/ports"
	"github.com/layer-3/portal/service"
	"github.com/rs/zerolog"
)

const (
	requestIDHeader = "X-Request-Id"
	sessionStoreKey = "sessionStore"
)

// RequestID assigns every request an id and makes it available to downstream calls
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}

		c.Request = c.Request.WithContext(core.WithRequestID(c.Request.Context(), id))
		c.Header(requestIDHeader, id)

		c.Next()
	}
}

// AccessLog logs one line per request
func AccessLog(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		status := c.Writer.Status()
		event := log.Info()
		if status >= http.StatusInternalServerError {
			event = log.Error()
		}
		event.
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("request_id", core.RequestID(c.Request.Context())).
			Msg("request")
	}
}

// SessionStore binds a cookie session store to the request so the guard
// and the handler share one view of the cookies
func SessionStore(opts store.CookieOptions) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(sessionStoreKey, store.NewCookieStore(c, opts))
		c.Next()
	}
}

// Guard runs the route guard in the given mode before the page handler
func Guard(guard *service.Guard, mode service.GuardMode) gin.HandlerFunc {
	return func(c *gin.Context) {
		decision := guard.Check(c.Request.Context(), mode, sessionFrom(c))
		if !decision.Proceed {
			c.Redirect(http.StatusSeeOther, decision.Redirect)
			c.Abort()
			return
		}

		c.Next()
	}
}

// sessionFrom returns the request's session store
func sessionFrom(c *gin.Context) ports.SessionStore {
	if v, ok := c.Get(sessionStoreKey); ok {
		if s, ok := v.(ports.SessionStore); ok {
			return s
		}
	}
	// Routes registered without the SessionStore middleware still get a usable store
	s := store.NewCookieStore(c, store.DefaultCookieOptions())
	c.Set(sessionStoreKey, s)
	return s
}
