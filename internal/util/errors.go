package util

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	MsgRequestFailed   = "Request failed"
	MsgInvalidResponse = "Invalid response from server"
	MsgSessionExpired  = "Session expired. Please login again."
	MsgNetworkError    = "Network error"
)

var (
	ErrTransport       = errors.New("transport error")
	ErrInvalidResponse = errors.New("invalid response")
	ErrRequestFailed   = errors.New("request failed")
	ErrSessionExpired  = errors.New("session expired")
)

// ResponseError is what every failed API call returns: a user-facing message
// plus the HTTP status it was observed with (0 when no response arrived).
// Kind is one of the Err* sentinels above.
type ResponseError struct {
	Msg    string
	Code   string
	Status int
	Kind   error
	Err    error
}

func (e *ResponseError) Error() string { return e.Msg }

func (e *ResponseError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

func NewResponseError(kind error, status int, format string, args ...interface{}) error {
	return &ResponseError{
		Msg:    fmt.Sprintf(format, args...),
		Status: status,
		Kind:   kind,
	}
}

func NewTransportError(err error) error {
	return &ResponseError{
		Msg:  MsgNetworkError,
		Kind: ErrTransport,
		Err:  err,
	}
}

func NewSessionExpiredError() error {
	return &ResponseError{
		Msg:    MsgSessionExpired,
		Status: http.StatusUnauthorized,
		Kind:   ErrSessionExpired,
	}
}

// StatusOf reports the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var re *ResponseError
	if errors.As(err, &re) {
		return re.Status
	}
	return 0
}
