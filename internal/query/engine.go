// Package query filters, sorts, and paginates ticket lists. Everything here
// is pure: no function mutates its input slice or touches shared state.
package query

import (
	"sort"
	"strings"
	"time"

	"github.com/spec-kit/helpdesk-portal/internal/domain"
)

// Criteria describes a filtered, sorted view over a ticket list. All filter
// fields are optional and combine with logical AND.
type Criteria struct {
	Search      string                 `json:"search"`
	Status      domain.TicketStatus    `json:"status"`
	Priority    domain.TicketPriority  `json:"priority"`
	LocationID  string                 `json:"location_id"`
	CategoryID  string                 `json:"category_id"`
	AssignedTo  string                 `json:"assigned_to"`
	CreatedFrom *time.Time             `json:"created_from"`
	CreatedTo   *time.Time             `json:"created_to"`
	OverdueOnly bool                   `json:"overdue_only"`
	SortBy      string                 `json:"sort_by"`
	SortDesc    bool                   `json:"sort_desc"`
}

// Apply returns the tickets matching the criteria, sorted when SortBy is set.
// The input slice is never modified.
func Apply(tickets []domain.Ticket, criteria Criteria) []domain.Ticket {
	filtered := Filter(tickets, criteria)
	if criteria.SortBy != "" {
		Sort(filtered, criteria.SortBy, criteria.SortDesc)
	}
	return filtered
}

// Filter returns a new slice holding the tickets matching the criteria,
// preserving input order.
func Filter(tickets []domain.Ticket, criteria Criteria) []domain.Ticket {
	filtered := make([]domain.Ticket, 0, len(tickets))
	for i := range tickets {
		if matches(&tickets[i], criteria) {
			filtered = append(filtered, tickets[i])
		}
	}
	return filtered
}

func matches(ticket *domain.Ticket, criteria Criteria) bool {
	if criteria.Search != "" && !matchesSearch(ticket, criteria.Search) {
		return false
	}
	if criteria.Status != "" && ticket.Status != criteria.Status {
		return false
	}
	if criteria.Priority != "" && ticket.Priority != criteria.Priority {
		return false
	}
	if criteria.LocationID != "" && (ticket.LocationID == nil || *ticket.LocationID != criteria.LocationID) {
		return false
	}
	if criteria.CategoryID != "" && (ticket.CategoryID == nil || *ticket.CategoryID != criteria.CategoryID) {
		return false
	}
	if criteria.AssignedTo != "" && (ticket.AssignedTo == nil || *ticket.AssignedTo != criteria.AssignedTo) {
		return false
	}
	if criteria.CreatedFrom != nil && ticket.CreatedAt.Before(*criteria.CreatedFrom) {
		return false
	}
	if criteria.CreatedTo != nil && ticket.CreatedAt.After(*criteria.CreatedTo) {
		return false
	}
	if criteria.OverdueOnly && !ticket.IsOverdue {
		return false
	}
	return true
}

// matchesSearch does a case-insensitive substring match across the ticket's
// searchable text fields.
func matchesSearch(ticket *domain.Ticket, term string) bool {
	term = strings.ToLower(term)
	for _, field := range []string{
		ticket.Title,
		ticket.Description,
		ticket.TicketNumber,
		ticket.SubmitterName,
		ticket.SubmitterEmail,
		ticket.AssignedToName,
	} {
		if strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	return false
}

// Sort orders tickets in place by the named field. Date-suffixed fields
// compare as timestamps, priority compares by rank, everything else compares
// case-insensitively as text. The sort is stable so tied entries keep their
// input order.
func Sort(tickets []domain.Ticket, field string, descending bool) {
	sort.SliceStable(tickets, func(i, j int) bool {
		if descending {
			i, j = j, i
		}
		return compare(&tickets[i], &tickets[j], field)
	})
}

func compare(a, b *domain.Ticket, field string) bool {
	if strings.HasSuffix(field, "_at") {
		return dateField(a, field).Before(dateField(b, field))
	}
	if field == "priority" {
		return a.Priority.Rank() < b.Priority.Rank()
	}
	return strings.ToLower(textField(a, field)) < strings.ToLower(textField(b, field))
}

func dateField(t *domain.Ticket, field string) time.Time {
	switch field {
	case "updated_at":
		return t.UpdatedAt
	default:
		return t.CreatedAt
	}
}

func textField(t *domain.Ticket, field string) string {
	switch field {
	case "title":
		return t.Title
	case "description":
		return t.Description
	case "ticket_number":
		return t.TicketNumber
	case "status":
		return string(t.Status)
	case "submitter_name":
		return t.SubmitterName
	case "submitter_email":
		return t.SubmitterEmail
	case "assigned_to_name", "assigned_to":
		return t.AssignedToName
	case "location_name":
		return t.LocationName
	case "category_name":
		return t.CategoryName
	default:
		return t.TicketNumber
	}
}

// Paginate slices out the 1-based page of the given size. Out-of-range pages
// return an empty slice; callers clamp the page number if they want the last
// page instead.
func Paginate(tickets []domain.Ticket, page, size int) []domain.Ticket {
	if page < 1 || size < 1 {
		return []domain.Ticket{}
	}
	start := (page - 1) * size
	if start >= len(tickets) {
		return []domain.Ticket{}
	}
	end := start + size
	if end > len(tickets) {
		end = len(tickets)
	}
	return tickets[start:end]
}

// TotalPages returns ceil(total/size), 0 when either input is non-positive.
func TotalPages(total, size int) int {
	if total <= 0 || size <= 0 {
		return 0
	}
	return (total + size - 1) / size
}
