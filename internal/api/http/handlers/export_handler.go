package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-portal/internal/cache"
	"github.com/spec-kit/helpdesk-portal/internal/export"
)

// ExportHandler serves ticket list downloads. The same filter criteria as
// the listing endpoint apply, so staff export exactly what they see.
type ExportHandler struct {
	cache *cache.TicketCache
}

// NewExportHandler constructs handler.
func NewExportHandler(ticketCache *cache.TicketCache) *ExportHandler {
	return &ExportHandler{cache: ticketCache}
}

// CSV GET /dashboard/export.csv.
func (h *ExportHandler) CSV(c *fiber.Ctx) error {
	tickets := h.cache.Query(parseCriteria(c))
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="tickets.csv"`)
	return c.SendString(export.CSV(tickets))
}

// XLSX GET /dashboard/export.xlsx.
func (h *ExportHandler) XLSX(c *fiber.Ctx) error {
	tickets := h.cache.Query(parseCriteria(c))
	data, err := export.XLSX(tickets)
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="tickets.xlsx"`)
	return c.Send(data)
}
