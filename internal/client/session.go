package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rryowa/foodsafer/internal/models"
	"github.com/rryowa/foodsafer/internal/util"
)

// Login exchanges credentials for a token pair and stores it.
func (c *Client) Login(ctx context.Context, email, password string) error {
	pair, err := Request[models.TokenPair](ctx, c, loginPath, RequestOptions{
		Method:   http.MethodPost,
		Body:     models.LoginRequest{Email: email, Password: password},
		SkipAuth: true,
	})
	if err != nil {
		return err
	}
	if pair == nil || pair.AccessToken == "" || pair.RefreshToken == "" {
		return util.NewResponseError(util.ErrInvalidResponse, http.StatusOK, "%s", util.MsgInvalidResponse)
	}

	if err := c.store.SetTokens(ctx, pair.AccessToken, pair.RefreshToken); err != nil {
		return fmt.Errorf("store tokens: %w", err)
	}
	return nil
}

// Logout tells the backend to end the session, then forgets the tokens
// whether or not the backend call succeeded.
func (c *Client) Logout(ctx context.Context) error {
	if c.Authenticated(ctx) {
		if _, err := Request[json.RawMessage](ctx, c, logoutPath, RequestOptions{Method: http.MethodPost}); err != nil {
			c.log.Warnw("logout request failed", "error", err)
		}
	}

	if err := c.store.ClearTokens(ctx); err != nil {
		return fmt.Errorf("clear tokens: %w", err)
	}
	return nil
}
