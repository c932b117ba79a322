package handler

import (
	"errors"

	"deposito-pos/internal/service"
	"deposito-pos/pkg/jwt"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// fail maps a service error to its HTTP status and JSON body.
func fail(c *fiber.Ctx, err error) error {
	var verr *service.ValidationError
	var perr *service.PartialStockError

	switch {
	case errors.As(err, &verr):
		body := fiber.Map{"error": verr.Message}
		if verr.Field != "" {
			body["field"] = verr.Field
		}
		return c.Status(400).JSON(body)
	case errors.Is(err, service.ErrNotFound):
		return c.Status(404).JSON(fiber.Map{"error": "Registro não encontrado"})
	case errors.Is(err, service.ErrConflict):
		return c.Status(409).JSON(fiber.Map{"error": "Registro já existe"})
	case errors.Is(err, service.ErrForbidden):
		return c.Status(403).JSON(fiber.Map{"error": "Acesso negado"})
	case errors.Is(err, service.ErrSetupDone):
		return c.Status(409).JSON(fiber.Map{"error": "O sistema já possui usuários cadastrados"})
	case errors.Is(err, service.ErrTooManyAttempts):
		return c.Status(429).JSON(fiber.Map{"error": service.AuthMessage(err)})
	case errors.Is(err, service.ErrUnauthenticated),
		errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrAccountNotFound),
		errors.Is(err, service.ErrAccountInactive),
		errors.Is(err, service.ErrSessionExpired),
		errors.Is(err, service.ErrSessionReplaced),
		errors.Is(err, jwt.ErrInvalidToken),
		errors.Is(err, jwt.ErrMissingToken):
		return c.Status(401).JSON(fiber.Map{"error": service.AuthMessage(err)})
	case errors.Is(err, service.ErrWrongPassword), errors.Is(err, service.ErrInvalidEmail):
		return c.Status(400).JSON(fiber.Map{"error": service.AuthMessage(err)})
	case errors.As(err, &perr):
		// The sale exists; the client must know stock is off.
		return c.Status(500).JSON(fiber.Map{
			"error":           "Venda registrada, mas o estoque não foi atualizado para todos os produtos",
			"sale_id":         perr.SaleID,
			"number":          perr.Number,
			"failed_products": perr.Failed,
		})
	}

	log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("request failed")
	return c.Status(500).JSON(fiber.Map{"error": err.Error()})
}

func badJSON(c *fiber.Ctx) error {
	return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
}
