package handlers

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-portal/internal/api/dto"
	"github.com/spec-kit/helpdesk-portal/internal/cache"
	"github.com/spec-kit/helpdesk-portal/internal/domain"
	"github.com/spec-kit/helpdesk-portal/internal/query"
	apperrors "github.com/spec-kit/helpdesk-portal/pkg/util"
)

// TicketsHandler serves both the public submission surface and the staff
// dashboard endpoints.
type TicketsHandler struct {
	cache *cache.TicketCache
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketCache *cache.TicketCache) *TicketsHandler {
	return &TicketsHandler{cache: ticketCache}
}

// Submit POST /tickets.
func (h *TicketsHandler) Submit(c *fiber.Ctx) error {
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	ticket, err := h.cache.Create(c.Context(), cache.CreateInput{
		Title:          req.Title,
		Description:    req.Description,
		Status:         req.Status,
		Priority:       req.Priority,
		SubmitterName:  req.SubmitterName,
		SubmitterEmail: req.SubmitterEmail,
		AssignedTo:     req.AssignedTo,
		LocationID:     req.LocationID,
		CategoryID:     req.CategoryID,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.FromTicket(ticket)})
}

// Track GET /tickets/track?number=&email= lets submitters follow a ticket
// without a session.
func (h *TicketsHandler) Track(c *fiber.Ctx) error {
	number := strings.TrimSpace(c.Query("number"))
	email := strings.TrimSpace(c.Query("email"))
	if number == "" || email == "" {
		return apperrors.NewValidationError("number and email required", nil)
	}
	ticket, ok := h.cache.Track(number, email)
	if !ok {
		return apperrors.NewNotFound("ticket", map[string]any{"number": number})
	}
	return c.JSON(fiber.Map{"data": dto.FromTicket(ticket)})
}

// List GET /dashboard/tickets with filtering, sorting, and pagination.
func (h *TicketsHandler) List(c *fiber.Ctx) error {
	criteria := parseCriteria(c)
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 20)

	matched := h.cache.Query(criteria)
	items := query.Paginate(matched, page, pageSize)

	return c.JSON(fiber.Map{"data": dto.TicketPageResponse{
		Items:      dto.FromTickets(items),
		Total:      len(matched),
		Page:       page,
		PageSize:   pageSize,
		TotalPages: query.TotalPages(len(matched), pageSize),
	}})
}

// Get GET /dashboard/tickets/:id.
func (h *TicketsHandler) Get(c *fiber.Ctx) error {
	ticket, ok := h.cache.Get(c.Params("id"))
	if !ok {
		return apperrors.NewNotFound("ticket", map[string]any{"id": c.Params("id")})
	}
	return c.JSON(fiber.Map{"data": dto.FromTicket(ticket)})
}

// Update PATCH /dashboard/tickets/:id.
func (h *TicketsHandler) Update(c *fiber.Ctx) error {
	var req dto.UpdateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	patch := req.Patch()
	if patch.Empty() {
		return apperrors.NewValidationError("empty patch", nil)
	}
	ticket, err := h.cache.Update(c.Context(), c.Params("id"), patch)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromTicket(ticket)})
}

// BulkUpdate POST /dashboard/tickets/bulk.
func (h *TicketsHandler) BulkUpdate(c *fiber.Ctx) error {
	var req dto.BulkUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if len(req.IDs) == 0 {
		return apperrors.NewValidationError("ids required", nil)
	}
	patch := req.Patch()
	if patch.Empty() {
		return apperrors.NewValidationError("empty patch", nil)
	}
	tickets, err := h.cache.BulkUpdate(c.Context(), req.IDs, patch)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromTickets(tickets)})
}

// Delete DELETE /dashboard/tickets/:id.
func (h *TicketsHandler) Delete(c *fiber.Ctx) error {
	if err := h.cache.Delete(c.Context(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Refresh POST /dashboard/refresh reloads the cache from the store. The UI
// exposes this as the manual retry path; the cache itself never retries.
func (h *TicketsHandler) Refresh(c *fiber.Ctx) error {
	if err := h.cache.Load(c.Context()); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": h.cache.State()})
}

func parseCriteria(c *fiber.Ctx) query.Criteria {
	criteria := query.Criteria{
		Search:      strings.TrimSpace(c.Query("search")),
		Status:      domain.TicketStatus(strings.TrimSpace(c.Query("status"))),
		Priority:    domain.TicketPriority(strings.TrimSpace(c.Query("priority"))),
		LocationID:  c.Query("location_id"),
		CategoryID:  c.Query("category_id"),
		AssignedTo:  c.Query("assigned_to"),
		OverdueOnly: c.Query("overdue") == "true",
		SortBy:      c.Query("sort_by"),
		SortDesc:    c.Query("sort_dir") == "desc",
	}
	if from := parseTime(c.Query("created_from")); from != nil {
		criteria.CreatedFrom = from
	}
	if to := parseTime(c.Query("created_to")); to != nil {
		criteria.CreatedTo = to
	}
	return criteria
}

func parseTime(val string) *time.Time {
	if val == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, val)
	if err != nil {
		return nil
	}
	return &t
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}
