package handler

import (
	"deposito-pos/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type AccountHandler struct {
	accountService service.AccountService
}

func NewAccountHandler(accountService service.AccountService) *AccountHandler {
	return &AccountHandler{accountService: accountService}
}

// CreateAccount handles account creation
// POST /api/v1/users
func (h *AccountHandler) CreateAccount(c *fiber.Ctx) error {
	var req service.CreateAccountRequest
	if err := c.BodyParser(&req); err != nil {
		return badJSON(c)
	}

	account, err := h.accountService.CreateAccount(c.UserContext(), &req)
	if err != nil {
		return fail(c, err)
	}

	return c.Status(201).JSON(fiber.Map{
		"message": "Usuário criado com sucesso",
		"data":    account,
	})
}

// GET /api/v1/users
func (h *AccountHandler) GetAccounts(c *fiber.Ctx) error {
	accounts, err := h.accountService.ListAccounts(c.UserContext())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(accounts)
}

// GET /api/v1/users/:id
func (h *AccountHandler) GetAccount(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid user ID"})
	}

	account, err := h.accountService.GetAccount(c.UserContext(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(account)
}

// UpdateAccount handles a partial update of name, role or active flag
// PUT /api/v1/users/:id
func (h *AccountHandler) UpdateAccount(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid user ID"})
	}

	var req service.UpdateAccountRequest
	if err := c.BodyParser(&req); err != nil {
		return badJSON(c)
	}

	account, err := h.accountService.UpdateAccount(c.UserContext(), id, &req)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Usuário atualizado com sucesso",
		"data":    account,
	})
}

// PATCH /api/v1/users/:id/toggle
func (h *AccountHandler) ToggleActive(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid user ID"})
	}

	account, err := h.accountService.ToggleActive(c.UserContext(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"data": account})
}

// DELETE /api/v1/users/:id
func (h *AccountHandler) DeleteAccount(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid user ID"})
	}

	if err := h.accountService.DeleteAccount(c.UserContext(), id); err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{"message": "Usuário excluído com sucesso"})
}
