package client

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/rryowa/foodsafer/internal/util"
)

type idResult struct {
	ID string `json:"id"`
}

func response(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func requireResponseError(t *testing.T, err error, kind error, msg string, status int) *util.ResponseError {
	t.Helper()

	require.Error(t, err)
	require.ErrorIs(t, err, kind)

	var re *util.ResponseError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, msg, re.Error())
	assert.Equal(t, status, re.Status)
	return re
}

func TestParseResponse_OK(t *testing.T) {
	got, err := ParseResponse[idResult](response(http.StatusOK, `{"status":"OK","result":{"id":"42"}}`), zap.NewNop().Sugar())
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, idResult{ID: "42"}, *got)
}

func TestParseResponse_OKResultIsUnwrappedVerbatim(t *testing.T) {
	got, err := ParseResponse[json.RawMessage](
		response(http.StatusOK, `{"status":"OK","result":{"a":1,"b":[true,null]}}`),
		zap.NewNop().Sugar(),
	)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.JSONEq(t, `{"a":1,"b":[true,null]}`, string(*got))
}

func TestParseResponse_KO(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantMsg string
		code    string
	}{
		{
			name:    "message on http 200",
			status:  http.StatusOK,
			body:    `{"status":"KO","result":{"message":"Email taken"}}`,
			wantMsg: "Email taken",
		},
		{
			name:    "message wins over code",
			status:  http.StatusConflict,
			body:    `{"status":"KO","result":{"code":"EMAIL_TAKEN","message":"Email taken"}}`,
			wantMsg: "Email taken",
			code:    "EMAIL_TAKEN",
		},
		{
			name:    "code when message missing",
			status:  http.StatusBadRequest,
			body:    `{"status":"KO","result":{"code":"VALIDATION"}}`,
			wantMsg: "VALIDATION",
			code:    "VALIDATION",
		},
		{
			name:    "default message",
			status:  http.StatusOK,
			body:    `{"status":"KO","result":{}}`,
			wantMsg: util.MsgRequestFailed,
		},
		{
			name:    "result not an object",
			status:  http.StatusOK,
			body:    `{"status":"KO","result":"nope"}`,
			wantMsg: util.MsgRequestFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseResponse[idResult](response(tt.status, tt.body), zap.NewNop().Sugar())
			assert.Nil(t, got)
			re := requireResponseError(t, err, util.ErrRequestFailed, tt.wantMsg, tt.status)
			assert.Equal(t, tt.code, re.Code)
		})
	}
}

func TestParseResponse_EmptyBody(t *testing.T) {
	got, err := ParseResponse[idResult](response(http.StatusNoContent, ""), zap.NewNop().Sugar())
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = ParseResponse[idResult](response(http.StatusBadGateway, ""), zap.NewNop().Sugar())
	assert.Nil(t, got)
	requireResponseError(t, err, util.ErrRequestFailed, util.MsgRequestFailed, http.StatusBadGateway)
}

func TestParseResponse_NullResult(t *testing.T) {
	got, err := ParseResponse[idResult](response(http.StatusOK, `{"status":"OK","result":null}`), zap.NewNop().Sugar())
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = ParseResponse[idResult](response(http.StatusOK, `{"status":"OK"}`), zap.NewNop().Sugar())
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestParseResponse_InvalidJSON(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	log := zap.New(core).Sugar()

	body := "<not json>" + strings.Repeat("x", 1000)
	got, err := ParseResponse[idResult](response(http.StatusInternalServerError, body), log)
	assert.Nil(t, got)
	re := requireResponseError(t, err, util.ErrInvalidResponse, util.MsgInvalidResponse, http.StatusInternalServerError)
	assert.NotContains(t, re.Error(), "not json")

	entries := logs.FilterMessage("invalid response from server").All()
	require.Len(t, entries, 1)
	logged, ok := entries[0].ContextMap()["body"].(string)
	require.True(t, ok)
	assert.Len(t, logged, maxLoggedBody)
	assert.True(t, strings.HasPrefix(logged, "<not json>"))
}

func TestParseResponse_ResultShapeMismatch(t *testing.T) {
	got, err := ParseResponse[idResult](response(http.StatusOK, `{"status":"OK","result":[1,2,3]}`), zap.NewNop().Sugar())
	assert.Nil(t, got)
	requireResponseError(t, err, util.ErrInvalidResponse, util.MsgInvalidResponse, http.StatusOK)
}

func TestTruncate_Runes(t *testing.T) {
	assert.Equal(t, "héll", truncate([]byte("héllo"), 4))
	assert.Equal(t, "short", truncate([]byte("short"), 10))
}
