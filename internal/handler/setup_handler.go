package handler

import (
	"deposito-pos/internal/service"

	"github.com/gofiber/fiber/v2"
)

type SetupHandler struct {
	service service.SetupService
}

func NewSetupHandler(s service.SetupService) *SetupHandler {
	return &SetupHandler{service: s}
}

// Run seeds a fresh installation. Refused once any account exists.
// POST /api/v1/setup
func (h *SetupHandler) Run(c *fiber.Ctx) error {
	result, err := h.service.Run(c.UserContext())
	if err != nil {
		return fail(c, err)
	}
	return c.Status(201).JSON(result)
}

// GET /api/v1/diagnostics
func (h *SetupHandler) Diagnostics(c *fiber.Ctx) error {
	return c.JSON(h.service.Diagnostics(c.UserContext()))
}
