package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/layer-3/portal/core"
)

const defaultSharedRefreshTimeout = 30 * time.Second

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Refresh exchanges refreshToken for a new pair. Any failure yields ok ==
// false; the exchange is never retried here.
//
// With single flight enabled, concurrent callers share one exchange. The
// shared exchange does not inherit the cancellation of whichever caller
// started it; each caller stops waiting when its own ctx is done.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (core.CredentialPair, bool) {
	if c.flight == nil {
		return c.refresh(ctx, refreshToken)
	}

	ch := c.flight.DoChan(refreshToken, func() (interface{}, error) {
		shared, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.sharedRefreshTimeout())
		defer cancel()

		pair, ok := c.refresh(shared, refreshToken)
		if !ok {
			return nil, core.ErrRefreshDenied
		}
		return pair, nil
	})

	select {
	case res := <-ch:
		if res.Shared {
			c.log.Debug().Msg("joined an in-flight refresh")
		}
		if res.Err != nil {
			return core.CredentialPair{}, false
		}
		return res.Val.(core.CredentialPair), true
	case <-ctx.Done():
		c.log.Debug().Err(ctx.Err()).Msg("stopped waiting for refresh")
		return core.CredentialPair{}, false
	}
}

// sharedRefreshTimeout bounds a coalesced exchange that no caller can cancel
func (c *Client) sharedRefreshTimeout() time.Duration {
	if c.timeout > 0 {
		return c.timeout
	}
	return defaultSharedRefreshTimeout
}

func (c *Client) refresh(ctx context.Context, refreshToken string) (core.CredentialPair, bool) {
	res, err := c.httpClient.
		NewRequest().
		SetContext(ctx).
		SetBody(refreshRequest{RefreshToken: refreshToken}).
		Execute(http.MethodPost, core.PathRefresh)
	if err != nil {
		c.log.Warn().Err(err).Msg("refresh request failed")
		return core.CredentialPair{}, false
	}

	if !res.IsSuccess() {
		c.log.Debug().Int("status", res.StatusCode()).Msg("refresh rejected")
		return core.CredentialPair{}, false
	}

	var body core.Response[core.Tokens]
	if err := json.Unmarshal(res.Body(), &body); err != nil {
		c.log.Warn().Err(err).Msg("refresh response is not JSON")
		return core.CredentialPair{}, false
	}

	pair := body.Data.Pair()
	if !pair.Complete() {
		c.log.Warn().Msg("refresh response carries no credential pair")
		return core.CredentialPair{}, false
	}

	return pair, true
}
