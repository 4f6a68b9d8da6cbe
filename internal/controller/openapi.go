package controller

import (
	_ "embed"
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/labstack/echo/v4"
)

//go:embed openapi.yaml
var openapiSpec []byte

func GetSwagger() (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(openapiSpec)
	if err != nil {
		return nil, fmt.Errorf("load openapi spec: %w", err)
	}
	if err := doc.Validate(loader.Context); err != nil {
		return nil, fmt.Errorf("validate openapi spec: %w", err)
	}
	return doc, nil
}

// RegisterHandlers wires every operation of openapi.yaml; bearer guards the authenticated ones.
func RegisterHandlers(e *echo.Echo, c *Controller, bearer echo.MiddlewareFunc) {
	e.GET("/queries/ping", c.CheckServer)
	e.GET("/queries/me", c.Me, bearer)

	e.POST("/auth/login", c.Login)
	e.POST("/auth/refresh", c.Refresh)
	e.POST("/auth/logout", c.Logout, bearer)
}
