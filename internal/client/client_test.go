package client

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rryowa/foodsafer/internal/models"
	"github.com/rryowa/foodsafer/internal/storage/memory"
	"github.com/rryowa/foodsafer/internal/util"
)

const (
	testRefreshPath = "/auth/refresh"
	testTimeout     = 5 * time.Second
	testTick        = 10 * time.Millisecond
)

func newTestClient(t *testing.T, baseURL string, store *memory.CredentialStore) *Client {
	t.Helper()

	cfg := &util.ClientConfig{
		BaseURL:     baseURL,
		HTTPTimeout: 5 * time.Second,
		RefreshPath: testRefreshPath,
	}
	return New(cfg, store, zap.NewNop().Sugar())
}

func writeBody(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

// refreshEndpoint answers the refresh call with the given pair when the
// presented refresh token matches, and counts its calls.
func refreshEndpoint(t *testing.T, calls *atomic.Int32, wantRefresh string, pair models.TokenPair) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)

		if r.Header.Get("Authorization") != "" {
			t.Errorf("refresh call must not carry Authorization, got %q", r.Header.Get("Authorization"))
		}

		var req models.RefreshRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken != wantRefresh {
			writeBody(w, http.StatusUnauthorized, `{"status":"KO","result":{"code":"UNAUTHORIZED"}}`)
			return
		}

		body, err := json.Marshal(models.OK(pair))
		require.NoError(t, err)
		writeBody(w, http.StatusOK, string(body))
	}
}

func seededStore(t *testing.T, access, refresh string) *memory.CredentialStore {
	t.Helper()

	store := memory.NewCredentialStore()
	require.NoError(t, store.SetTokens(t.Context(), access, refresh))
	return store
}

func newServer(t *testing.T, mux *http.ServeMux) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}
