package handler

import (
	"time"

	"deposito-pos/internal/service"
	"deposito-pos/internal/workbook"

	"github.com/gofiber/fiber/v2"
)

type ReportHandler struct {
	service service.ReportService
	loc     *time.Location
	now     func() time.Time
}

func NewReportHandler(s service.ReportService, loc *time.Location) *ReportHandler {
	if loc == nil {
		loc = time.Local
	}
	return &ReportHandler{service: s, loc: loc, now: time.Now}
}

// GetSummary returns sales aggregates for the period and the inventory view.
// Query params: start, end (yyyy-mm-dd) or range (7d, 1m, 3m, 6m, 12m).
// Defaults to the current month.
func (h *ReportHandler) GetSummary(c *fiber.Ctx) error {
	start, end, ok := reportRange(c, h.now(), h.loc)
	if !ok {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid period"})
	}

	summary, err := h.service.Summary(c.UserContext(), start, end)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(summary)
}

// Export downloads the workbook.
// Query params: type (vendas, estoque, completo) plus the period params of GetSummary.
func (h *ReportHandler) Export(c *fiber.Ctx) error {
	kind, err := workbook.ParseKind(c.Query("type", string(workbook.KindFull)))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}
	start, end, ok := reportRange(c, h.now(), h.loc)
	if !ok {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid period"})
	}

	data, name, err := h.service.Export(c.UserContext(), kind, start, end)
	if err != nil {
		return fail(c, err)
	}

	c.Attachment(name)
	c.Set(fiber.HeaderContentType, workbook.ContentType)
	return c.Send(data)
}
