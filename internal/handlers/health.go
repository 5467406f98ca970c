package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type healthStatus struct {
	Status string `json:"status"`
}

// Health is a liveness probe, it never touches persistence
func Health(c echo.Context) error {
	return c.JSON(http.StatusOK, &healthStatus{Status: "OK"})
}
