package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/rryowa/foodsafer/internal/models"
	"github.com/rryowa/foodsafer/internal/util"
)

type RequestOptions struct {
	Method string
	// Body is JSON-encoded once; json.RawMessage is sent as is.
	Body    any
	Headers http.Header
	// SkipAuth sends no Authorization header and decodes a 401 like any
	// other response instead of refreshing. Login uses it.
	SkipAuth bool
}

// Request performs one logical API call and returns the unwrapped envelope
// result. A nil result with a nil error means the backend sent no content.
func Request[T any](ctx context.Context, c *Client, endpoint string, opts RequestOptions) (*T, error) {
	resp, err := c.dispatch(ctx, endpoint, opts)
	if err != nil {
		return nil, err
	}
	return ParseResponse[T](resp, c.log)
}

// Query issues GET /queries/<name>.
func Query[T any](ctx context.Context, c *Client, name string, params url.Values) (*T, error) {
	endpoint := queriesPath + strings.TrimPrefix(name, "/")
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}
	return Request[T](ctx, c, endpoint, RequestOptions{Method: http.MethodGet})
}

// Command issues POST /commands/<name>.
func Command[T any](ctx context.Context, c *Client, name string, body any) (*T, error) {
	endpoint := commandsPath + strings.TrimPrefix(name, "/")
	return Request[T](ctx, c, endpoint, RequestOptions{Method: http.MethodPost, Body: body})
}

// Do is Request without a result type: it returns the raw result JSON.
func (c *Client) Do(ctx context.Context, endpoint string, opts RequestOptions) (json.RawMessage, error) {
	raw, err := Request[json.RawMessage](ctx, c, endpoint, opts)
	if err != nil || raw == nil {
		return nil, err
	}
	return *raw, nil
}

// dispatch sends the request and, on a 401, refreshes the token pair and
// replays it exactly once. The replayed response is returned whatever its status.
func (c *Client) dispatch(ctx context.Context, endpoint string, opts RequestOptions) (*http.Response, error) {
	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}

	body, err := encodeBody(opts.Body)
	if err != nil {
		return nil, fmt.Errorf("encode request body: %w", err)
	}
	target := c.url(endpoint)

	if opts.SkipAuth {
		return c.send(ctx, method, target, body, opts.Headers, "")
	}

	token, _ := c.store.AccessToken(ctx)
	resp, err := c.send(ctx, method, target, body, opts.Headers, token)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}
	discard(resp)

	if !c.reauthenticate(ctx, token) {
		c.clearTokens(ctx)
		return nil, util.NewSessionExpiredError()
	}

	token, _ = c.store.AccessToken(ctx)
	return c.send(ctx, method, target, body, opts.Headers, token)
}

// reauthenticate decides whether a request rejected with sentToken may be replayed.
func (c *Client) reauthenticate(ctx context.Context, sentToken string) bool {
	if _, ok := c.store.RefreshToken(ctx); !ok {
		c.log.Debugw("got 401 without a refresh token")
		return false
	}

	// Another call already rotated the pair while this one was in flight.
	if current, ok := c.store.AccessToken(ctx); ok && current != sentToken {
		return true
	}

	return c.refreshAccessToken(ctx)
}

func (c *Client) send(
	ctx context.Context,
	method, target string,
	body []byte,
	extra http.Header,
	token string,
) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header = buildHeaders(extra, token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Warnw("request failed", "method", method, "url", target, "error", err)
		return nil, util.NewTransportError(err)
	}
	return resp, nil
}

// buildHeaders merges caller headers over the JSON defaults. Authorization
// is never taken from the caller.
func buildHeaders(extra http.Header, token string) http.Header {
	h := make(http.Header, len(extra)+3)
	h.Set("Content-Type", "application/json")
	h.Set("Accept", "application/json")

	for key, values := range extra {
		h[http.CanonicalHeaderKey(key)] = append([]string(nil), values...)
	}

	h.Del(models.HeaderAuthorization)
	if token != "" {
		h.Set(models.HeaderAuthorization, models.BearerPrefix+token)
	}
	return h
}

func encodeBody(body any) ([]byte, error) {
	switch b := body.(type) {
	case nil:
		return nil, nil
	case json.RawMessage:
		return b, nil
	default:
		return json.Marshal(b)
	}
}

func discard(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}
