package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/rryowa/foodsafer/internal/models"
	"github.com/rryowa/foodsafer/internal/service"
	"github.com/rryowa/foodsafer/internal/util"
)

const (
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeInternal           = "INTERNAL"
)

// ErrorHandler renders every error as a KO envelope.
func ErrorHandler(log *zap.SugaredLogger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, body := toEnvelope(err)
		if status == http.StatusInternalServerError {
			log.Errorw("unhandled error", "error", err, "uri", c.Request().RequestURI)
		}

		if err := c.JSON(status, body); err != nil {
			log.Errorw("failed to write json response", "error", err)
		}
	}
}

func toEnvelope(err error) (int, models.Envelope[models.ErrorBody]) {
	if errors.Is(err, service.ErrInvalidCredentials) {
		return http.StatusUnauthorized, models.KO(CodeInvalidCredentials, "Invalid email or password")
	}

	if isUnauthorizedTokenError(err) {
		return http.StatusUnauthorized, models.KO(CodeUnauthorized, err.Error())
	}

	var re *util.ResponseError
	if errors.As(err, &re) {
		return re.Status, models.KO(re.Code, re.Msg)
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, models.KO(codeFromStatus(he.Code), fmt.Sprint(he.Message))
	}

	return http.StatusInternalServerError, models.KO(CodeInternal, "internal server error")
}

func isUnauthorizedTokenError(err error) bool {
	return errors.Is(err, service.ErrTokenExpired) ||
		errors.Is(err, service.ErrTokenInvalid) ||
		errors.Is(err, service.ErrTokenMalformed) ||
		errors.Is(err, service.ErrTokenRevoked) ||
		errors.Is(err, service.ErrRefreshTokenNotFoundOrUsed)
}

func codeFromStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "BAD_REQUEST"
	case http.StatusUnauthorized:
		return CodeUnauthorized
	case http.StatusForbidden:
		return "FORBIDDEN"
	case http.StatusNotFound:
		return "NOT_FOUND"
	case http.StatusMethodNotAllowed:
		return "METHOD_NOT_ALLOWED"
	}
	if status >= http.StatusInternalServerError {
		return CodeInternal
	}
	return "REQUEST_FAILED"
}
