package handler

import (
	"deposito-pos/internal/dashboard"
	"deposito-pos/internal/service"

	"github.com/gofiber/fiber/v2"
)

type DashboardHandler struct {
	service service.DashboardService
	live    *dashboard.Reducer
}

func NewDashboardHandler(s service.DashboardService, live *dashboard.Reducer) *DashboardHandler {
	return &DashboardHandler{service: s, live: live}
}

// GetMetrics returns the dashboard indicators computed on demand.
// GET /api/v1/dashboard/metrics
func (h *DashboardHandler) GetMetrics(c *fiber.Ctx) error {
	metrics, err := h.service.Metrics(c.UserContext())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(metrics)
}

// GetLiveMetrics returns the last figures pushed over the websocket.
// GET /api/v1/dashboard/live
func (h *DashboardHandler) GetLiveMetrics(c *fiber.Ctx) error {
	if h.live == nil {
		return c.SendStatus(fiber.StatusNotFound)
	}
	return c.JSON(h.live.Current())
}
