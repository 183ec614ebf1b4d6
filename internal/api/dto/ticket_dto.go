package dto

import (
	"time"

	"github.com/spec-kit/helpdesk-portal/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Title          string                `json:"title"`
	Description    string                `json:"description"`
	Priority       domain.TicketPriority `json:"priority"`
	Status         domain.TicketStatus   `json:"status"`
	SubmitterName  string                `json:"submitter_name"`
	SubmitterEmail string                `json:"submitter_email"`
	AssignedTo     *string               `json:"assigned_to"`
	LocationID     *string               `json:"location_id"`
	CategoryID     *string               `json:"category_id"`
}

// UpdateTicketRequest carries a partial update; absent fields stay untouched.
type UpdateTicketRequest struct {
	Title          *string                `json:"title"`
	Description    *string                `json:"description"`
	Status         *domain.TicketStatus   `json:"status"`
	Priority       *domain.TicketPriority `json:"priority"`
	SubmitterName  *string                `json:"submitter_name"`
	SubmitterEmail *string                `json:"submitter_email"`
	AssignedTo     *string                `json:"assigned_to"`
	LocationID     *string                `json:"location_id"`
	CategoryID     *string                `json:"category_id"`
}

// Patch converts the request into a domain patch.
func (r UpdateTicketRequest) Patch() domain.TicketPatch {
	return domain.TicketPatch{
		Title:          r.Title,
		Description:    r.Description,
		Status:         r.Status,
		Priority:       r.Priority,
		SubmitterName:  r.SubmitterName,
		SubmitterEmail: r.SubmitterEmail,
		AssignedTo:     r.AssignedTo,
		LocationID:     r.LocationID,
		CategoryID:     r.CategoryID,
	}
}

// BulkUpdateRequest applies one patch to a set of ticket ids.
type BulkUpdateRequest struct {
	IDs []string `json:"ids"`
	UpdateTicketRequest
}

// TicketResponse is the enriched ticket as served to clients.
type TicketResponse struct {
	ID             string                `json:"id"`
	TicketNumber   string                `json:"ticket_number"`
	Title          string                `json:"title"`
	Description    string                `json:"description"`
	Status         domain.TicketStatus   `json:"status"`
	Priority       domain.TicketPriority `json:"priority"`
	SubmitterName  string                `json:"submitter_name"`
	SubmitterEmail string                `json:"submitter_email"`
	AssignedTo     *string               `json:"assigned_to"`
	AssignedToName string                `json:"assigned_to_name"`
	LocationID     *string               `json:"location_id"`
	LocationName   string                `json:"location_name"`
	CategoryID     *string               `json:"category_id"`
	CategoryName   string                `json:"category_name"`
	IsOverdue      bool                  `json:"is_overdue"`
	TimeOpen       string                `json:"time_open"`
	CreatedAt      time.Time             `json:"created_at"`
	UpdatedAt      time.Time             `json:"updated_at"`
}

// TicketPageResponse is one page of a filtered listing.
type TicketPageResponse struct {
	Items      []TicketResponse `json:"items"`
	Total      int              `json:"total"`
	Page       int              `json:"page"`
	PageSize   int              `json:"page_size"`
	TotalPages int              `json:"total_pages"`
}

// FromTicket maps an enriched domain ticket.
func FromTicket(ticket *domain.Ticket) TicketResponse {
	return TicketResponse{
		ID:             ticket.ID,
		TicketNumber:   ticket.TicketNumber,
		Title:          ticket.Title,
		Description:    ticket.Description,
		Status:         ticket.Status,
		Priority:       ticket.Priority,
		SubmitterName:  ticket.SubmitterName,
		SubmitterEmail: ticket.SubmitterEmail,
		AssignedTo:     ticket.AssignedTo,
		AssignedToName: ticket.AssignedToName,
		LocationID:     ticket.LocationID,
		LocationName:   ticket.LocationName,
		CategoryID:     ticket.CategoryID,
		CategoryName:   ticket.CategoryName,
		IsOverdue:      ticket.IsOverdue,
		TimeOpen:       ticket.TimeOpen,
		CreatedAt:      ticket.CreatedAt,
		UpdatedAt:      ticket.UpdatedAt,
	}
}

// FromTickets maps a slice of enriched tickets.
func FromTickets(tickets []domain.Ticket) []TicketResponse {
	items := make([]TicketResponse, 0, len(tickets))
	for i := range tickets {
		items = append(items, FromTicket(&tickets[i]))
	}
	return items
}
