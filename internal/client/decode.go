package client

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/rryowa/foodsafer/internal/models"
	"github.com/rryowa/foodsafer/internal/util"
)

const maxLoggedBody = 500

// ParseResponse consumes resp and unwraps its envelope.
//
// An empty body yields (nil, nil) on a 2xx status and a "Request failed"
// error otherwise. A KO envelope is always an error, whatever the HTTP status.
func ParseResponse[T any](resp *http.Response, log *zap.SugaredLogger) (*T, error) {
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, util.NewTransportError(fmt.Errorf("read response body: %w", err))
	}

	return decodeEnvelope[T](resp.StatusCode, data, log)
}

func decodeEnvelope[T any](status int, data []byte, log *zap.SugaredLogger) (*T, error) {
	if len(data) == 0 {
		if !isSuccess(status) {
			return nil, util.NewResponseError(util.ErrRequestFailed, status, "%s", util.MsgRequestFailed)
		}
		return nil, nil
	}

	var env models.Envelope[json.RawMessage]
	if err := json.Unmarshal(data, &env); err != nil {
		log.Warnw("invalid response from server", "status", status, "body", truncate(data, maxLoggedBody), "error", err)
		return nil, invalidResponse(status, err)
	}

	if env.Status == models.StatusKO {
		return nil, logicalError(status, env.Result)
	}

	if len(env.Result) == 0 || string(env.Result) == "null" {
		return nil, nil
	}

	var result T
	if err := json.Unmarshal(env.Result, &result); err != nil {
		log.Warnw("unexpected result shape", "status", status, "body", truncate(data, maxLoggedBody), "error", err)
		return nil, invalidResponse(status, err)
	}
	return &result, nil
}

func logicalError(status int, raw json.RawMessage) error {
	// A result that is not an object still fails the call, with the default message.
	var body models.ErrorBody
	_ = json.Unmarshal(raw, &body)

	msg := body.Message
	if msg == "" {
		msg = body.Code
	}
	if msg == "" {
		msg = util.MsgRequestFailed
	}

	return &util.ResponseError{
		Msg:    msg,
		Code:   body.Code,
		Status: status,
		Kind:   util.ErrRequestFailed,
	}
}

func invalidResponse(status int, err error) error {
	return &util.ResponseError{
		Msg:    util.MsgInvalidResponse,
		Status: status,
		Kind:   util.ErrInvalidResponse,
		Err:    err,
	}
}

func isSuccess(status int) bool {
	return status >= http.StatusOK && status < http.StatusMultipleChoices
}

func truncate(data []byte, limit int) string {
	s := string(data)
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit])
}
