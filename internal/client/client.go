// Package client implements the authenticated request pipeline for the
// FoodSafer backend: bearer headers from a CredentialStore, envelope decoding,
// and a single refresh-and-retry when the backend answers 401.
package client

import (
	"context"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/rryowa/foodsafer/internal/storage"
	"github.com/rryowa/foodsafer/internal/util"
)

const (
	loginPath    = "/auth/login"
	logoutPath   = "/auth/logout"
	queriesPath  = "/queries/"
	commandsPath = "/commands/"
)

type Client struct {
	baseURL     string
	refreshPath string
	timeout     time.Duration
	httpClient  *http.Client
	store       storage.CredentialStore
	log         *zap.SugaredLogger

	refreshGroup singleflight.Group
}

func New(cfg *util.ClientConfig, store storage.CredentialStore, log *zap.SugaredLogger) *Client {
	return &Client{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		refreshPath: cfg.RefreshPath,
		timeout:     cfg.HTTPTimeout,
		httpClient:  &http.Client{Timeout: cfg.HTTPTimeout},
		store:       store,
		log:         log,
	}
}

// Authenticated reports whether an access token is currently stored.
func (c *Client) Authenticated(ctx context.Context) bool {
	_, ok := c.store.AccessToken(ctx)
	return ok
}

func (c *Client) url(endpoint string) string {
	if strings.HasPrefix(endpoint, "http://") || strings.HasPrefix(endpoint, "https://") {
		return endpoint
	}
	if !strings.HasPrefix(endpoint, "/") {
		endpoint = "/" + endpoint
	}
	return c.baseURL + endpoint
}

func (c *Client) clearTokens(ctx context.Context) {
	if err := c.store.ClearTokens(ctx); err != nil {
		c.log.Errorw("failed to clear tokens", "error", err)
	}
}
