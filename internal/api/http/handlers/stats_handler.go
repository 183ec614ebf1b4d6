package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-portal/internal/cache"
)

// StatsHandler serves the dashboard statistics snapshot and lookup tables.
type StatsHandler struct {
	cache *cache.TicketCache
}

// NewStatsHandler constructs handler.
func NewStatsHandler(ticketCache *cache.TicketCache) *StatsHandler {
	return &StatsHandler{cache: ticketCache}
}

// Statistics GET /dashboard/stats returns the cached snapshot; it never
// triggers a recompute.
func (h *StatsHandler) Statistics(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": h.cache.Statistics()})
}

// Lookups GET /lookups returns location and category tables plus assignable
// users for form dropdowns.
func (h *StatsHandler) Lookups(c *fiber.Ctx) error {
	lookups := h.cache.Lookups()
	return c.JSON(fiber.Map{"data": fiber.Map{
		"locations":  lookups.Locations,
		"categories": lookups.Categories,
		"assignable": lookups.AssignableUsers(),
	}})
}

// State GET /dashboard/state reports cache diagnostics.
func (h *StatsHandler) State(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": h.cache.State()})
}
