package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/rryowa/foodsafer/internal/models"
	"github.com/rryowa/foodsafer/internal/util"
)

const refreshFlightKey = "refresh"

// Refresh exchanges the stored refresh token for a new pair. On failure the
// store is cleared and a session-expired error is returned.
func (c *Client) Refresh(ctx context.Context) error {
	if !c.refreshAccessToken(ctx) {
		c.clearTokens(ctx)
		return util.NewSessionExpiredError()
	}
	return nil
}

// refreshAccessToken never returns an error: the caller only needs to know
// whether a fresh pair is now in the store. Concurrent callers share one
// in-flight exchange.
func (c *Client) refreshAccessToken(ctx context.Context) bool {
	if _, ok := c.store.RefreshToken(ctx); !ok {
		return false
	}

	v, _, _ := c.refreshGroup.Do(refreshFlightKey, func() (interface{}, error) {
		flightCtx, cancel := c.detached(ctx)
		defer cancel()
		return c.exchangeRefreshToken(flightCtx), nil
	})

	ok, _ := v.(bool)
	return ok
}

// detached outlives the caller that started the flight, so its cancellation
// does not fail the other waiters.
func (c *Client) detached(ctx context.Context) (context.Context, context.CancelFunc) {
	base := context.WithoutCancel(ctx)
	if c.timeout > 0 {
		return context.WithTimeout(base, c.timeout)
	}
	return context.WithCancel(base)
}

// exchangeRefreshToken talks to the refresh endpoint directly, bypassing
// dispatch, so a 401 from it cannot recurse into another refresh.
func (c *Client) exchangeRefreshToken(ctx context.Context) bool {
	refreshToken, ok := c.store.RefreshToken(ctx)
	if !ok {
		return false
	}

	payload, err := json.Marshal(models.RefreshRequest{RefreshToken: refreshToken})
	if err != nil {
		c.log.Errorw("encode refresh request", "error", err)
		return false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url(c.refreshPath), bytes.NewReader(payload))
	if err != nil {
		c.log.Errorw("build refresh request", "error", err)
		return false
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Warnw("token refresh failed", "error", err)
		return false
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		c.log.Warnw("token refresh rejected", "status", resp.StatusCode)
		return false
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		c.log.Warnw("read refresh response", "error", err)
		return false
	}

	var env models.Envelope[models.TokenPair]
	if err := json.Unmarshal(data, &env); err != nil {
		c.log.Warnw("invalid refresh response", "status", resp.StatusCode, "body", truncate(data, maxLoggedBody), "error", err)
		return false
	}
	if env.Status == models.StatusKO || env.Result.AccessToken == "" {
		c.log.Warnw("token refresh refused by server", "status", resp.StatusCode)
		return false
	}

	next := env.Result.RefreshToken
	if next == "" {
		next = refreshToken
	}
	if err := c.store.SetTokens(ctx, env.Result.AccessToken, next); err != nil {
		c.log.Errorw("failed to store refreshed tokens", "error", err)
		return false
	}

	c.log.Debugw("access token refreshed")
	return true
}
