package handler

import (
	"deposito-pos/internal/model"

	"github.com/gofiber/fiber/v2"
)

type RoleHandler struct{}

func NewRoleHandler() *RoleHandler {
	return &RoleHandler{}
}

type roleResponse struct {
	Code       model.Role `json:"code"`
	Label      string     `json:"label"`
	Privileges []string   `json:"privileges"`
}

// GetRoles returns the two roles with the privileges each grants
// GET /api/v1/roles
func (h *RoleHandler) GetRoles(c *fiber.Ctx) error {
	roles := []model.Role{model.RoleAdmin, model.RoleSeller}
	out := make([]roleResponse, len(roles))
	for i, r := range roles {
		out[i] = roleResponse{Code: r, Label: r.Label(), Privileges: r.Privileges()}
	}
	return c.JSON(out)
}

// GetPrivileges lists every privilege code
// GET /api/v1/privileges
func (h *RoleHandler) GetPrivileges(c *fiber.Ctx) error {
	return c.JSON(model.DefaultPrivileges)
}
