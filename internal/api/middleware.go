package api

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/rryowa/foodsafer/internal/models"
	"github.com/rryowa/foodsafer/internal/service"
)

// BearerAuthMiddleware проверяет access токен из заголовка Authorization.
// Если токен валиден, userID и сам токен сохраняются в контексте Echo.
func BearerAuthMiddleware(authService *service.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(models.HeaderAuthorization)
			if !strings.HasPrefix(header, models.BearerPrefix) {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing bearer token")
			}

			token := strings.TrimSpace(strings.TrimPrefix(header, models.BearerPrefix))
			if token == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing bearer token")
			}

			userID, err := authService.Authenticate(c.Request().Context(), token)
			if err != nil {
				return err
			}

			c.Set(models.MwUserIDKey, userID)
			c.Set(models.MwTokenKey, token)

			return next(c)
		}
	}
}

func GetLoggerMiddlewareConfig(a *API) echomiddleware.RequestLoggerConfig {
	return echomiddleware.RequestLoggerConfig{
		LogMethod: true,
		LogURI:    true,
		LogStatus: true,
		LogError:  true,

		// Let the envelope error handler set the status before it is logged.
		HandleError: true,

		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			fields := []interface{}{
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
			}
			if v.Error != nil {
				fields = append(fields, zap.Error(v.Error))
				a.log.Warnw("Request", fields...)
			} else {
				a.log.Infow("Request", fields...)
			}
			return nil
		},
	}
}
