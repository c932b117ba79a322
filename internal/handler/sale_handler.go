package handler

import (
	"time"

	"deposito-pos/internal/model"
	"deposito-pos/internal/receipt"
	"deposito-pos/internal/repository"
	"deposito-pos/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type SaleHandler struct {
	service service.SaleService
	loc     *time.Location
}

func NewSaleHandler(s service.SaleService, loc *time.Location) *SaleHandler {
	if loc == nil {
		loc = time.Local
	}
	return &SaleHandler{service: s, loc: loc}
}

// CreateSale records a sale and decrements stock.
// POST /api/v1/sales
func (h *SaleHandler) CreateSale(c *fiber.Ctx) error {
	var req service.RecordSaleRequest
	if err := c.BodyParser(&req); err != nil {
		return badJSON(c)
	}

	sale, err := h.service.RecordSale(c.UserContext(), &req)
	if err != nil {
		return fail(c, err)
	}

	return c.Status(201).JSON(fiber.Map{"message": "Venda registrada", "data": sale})
}

// GetSales lists sales newest first.
// Query params: search, status, seller_id, start, end (yyyy-mm-dd), limit
func (h *SaleHandler) GetSales(c *fiber.Ctx) error {
	filter := repository.SaleFilter{
		Search: c.Query("search"),
		Status: model.SaleStatus(c.Query("status")),
		Limit:  c.QueryInt("limit", 0),
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid status"})
	}
	if v := c.Query("seller_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "Invalid seller ID"})
		}
		filter.SellerID = id
	}

	start, ok := dateQuery(c, "start", h.loc)
	if !ok {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid start date, use yyyy-mm-dd"})
	}
	end, ok := dateQuery(c, "end", h.loc)
	if !ok {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid end date, use yyyy-mm-dd"})
	}
	filter.From = start
	if !end.IsZero() {
		filter.To = end.AddDate(0, 0, 1).Add(-time.Millisecond)
	}

	sales, err := h.service.ListSales(c.UserContext(), filter)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(sales)
}

func (h *SaleHandler) GetSale(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid sale ID"})
	}

	sale, err := h.service.GetSale(c.UserContext(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(sale)
}

type SaleStatusRequest struct {
	Status model.SaleStatus `json:"status"`
}

// PATCH /api/v1/sales/:id/status
func (h *SaleHandler) UpdateStatus(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid sale ID"})
	}

	var req SaleStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return badJSON(c)
	}

	sale, err := h.service.UpdateStatus(c.UserContext(), id, req.Status)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Status atualizado", "data": sale})
}

func (h *SaleHandler) DeleteSale(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid sale ID"})
	}

	if err := h.service.DeleteSale(c.UserContext(), id); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Venda excluída"})
}

// Receipt downloads the sale receipt PDF.
// GET /api/v1/sales/:id/receipt
func (h *SaleHandler) Receipt(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid sale ID"})
	}

	pdf, name, err := h.service.Receipt(c.UserContext(), id)
	if err != nil {
		return fail(c, err)
	}

	c.Attachment(name)
	c.Set(fiber.HeaderContentType, receipt.ContentType)
	return c.Send(pdf)
}
