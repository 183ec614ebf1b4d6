package export

import (
	"strings"
	"testing"
	"time"

	"github.com/spec-kit/helpdesk-portal/internal/domain"
)

func sampleTicket() domain.Ticket {
	created := time.Date(2025, 3, 1, 8, 30, 0, 0, time.UTC)
	return domain.Ticket{
		RawTicket: domain.RawTicket{
			TicketNumber:   "TKT25030001",
			Title:          "Printer offline",
			Description:    "3rd floor printer",
			Status:         domain.TicketStatusOpen,
			Priority:       domain.TicketPriorityHigh,
			SubmitterName:  "Ada",
			SubmitterEmail: "ada@example.com",
			CreatedAt:      created,
			UpdatedAt:      created.Add(time.Hour),
		},
		AssignedToName: "Dana Reyes",
		LocationName:   "Head Office",
		CategoryName:   "Hardware",
	}
}

func TestCSVHeaderOrder(t *testing.T) {
	got := CSV(nil)
	want := `"Ticket Number","Title","Description","Status","Priority","Submitter Name","Submitter Email","Assigned To","Location","Category","Created At","Updated At"`
	if got != want {
		t.Errorf("header row = %q", got)
	}
}

func TestCSVRow(t *testing.T) {
	got := CSV([]domain.Ticket{sampleTicket()})
	lines := strings.Split(got, "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}

	want := `"TKT25030001","Printer offline","3rd floor printer","Open","High","Ada","ada@example.com","Dana Reyes","Head Office","Hardware","2025-03-01T08:30:00Z","2025-03-01T09:30:00Z"`
	if lines[1] != want {
		t.Errorf("row = %q\nwant  %q", lines[1], want)
	}
}

func TestCSVQuoteWrapsWithoutEscaping(t *testing.T) {
	ticket := sampleTicket()
	ticket.Title = `the "big" printer`

	got := CSV([]domain.Ticket{ticket})
	if !strings.Contains(got, `"the "big" printer"`) {
		t.Errorf("embedded quotes must pass through unescaped: %q", got)
	}
}

func TestCSVZeroTimesRenderEmpty(t *testing.T) {
	ticket := sampleTicket()
	ticket.CreatedAt = time.Time{}
	ticket.UpdatedAt = time.Time{}

	got := CSV([]domain.Ticket{ticket})
	if !strings.HasSuffix(got, `"",""`) {
		t.Errorf("zero timestamps should render as empty fields: %q", got)
	}
}
