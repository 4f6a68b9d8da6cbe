package controller

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/rryowa/foodsafer/internal/models"
	"github.com/rryowa/foodsafer/internal/service"
)

type Controller struct {
	zapLogger   *zap.SugaredLogger
	authService *service.AuthService
}

func NewController(logger *zap.SugaredLogger, authService *service.AuthService) *Controller {
	return &Controller{
		zapLogger:   logger,
		authService: authService,
	}
}

type pingResult struct {
	Status string `json:"status"`
}

// (GET /queries/ping).
func (c *Controller) CheckServer(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, models.OK(pingResult{Status: "ok"}))
}

// (POST /auth/login).
func (c *Controller) Login(ctx echo.Context) error {
	var req models.LoginRequest
	if err := ctx.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	pair, err := c.authService.Login(ctx.Request().Context(), req.Email, req.Password, metadata(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, models.OK(pair))
}

// (POST /auth/refresh).
func (c *Controller) Refresh(ctx echo.Context) error {
	var req models.RefreshRequest
	if err := ctx.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	pair, err := c.authService.Refresh(ctx.Request().Context(), req.RefreshToken, metadata(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, models.OK(pair))
}

// (POST /auth/logout).
func (c *Controller) Logout(ctx echo.Context) error {
	userID, token, ok := principal(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing bearer token")
	}

	if err := c.authService.Logout(ctx.Request().Context(), userID, token); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

// (GET /queries/me).
func (c *Controller) Me(ctx echo.Context) error {
	userID, _, ok := principal(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing bearer token")
	}

	profile, err := c.authService.Profile(ctx.Request().Context(), userID)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, models.OK(profile))
}

func principal(ctx echo.Context) (int64, string, bool) {
	userID, ok := ctx.Get(models.MwUserIDKey).(int64)
	if !ok {
		return 0, "", false
	}
	token, ok := ctx.Get(models.MwTokenKey).(string)
	return userID, token, ok
}

func metadata(ctx echo.Context) models.UserMetadata {
	return models.UserMetadata{
		UserAgent: ctx.Request().UserAgent(),
		IPAddress: ctx.RealIP(),
	}
}
