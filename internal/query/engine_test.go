package query

import (
	"fmt"
	"testing"
	"time"

	"github.com/spec-kit/helpdesk-portal/internal/domain"
)

func strPtr(s string) *string { return &s }

func testTickets(now time.Time) []domain.Ticket {
	lookups := domain.NewLookupTables()
	lookups.Users["u-1"] = domain.User{ID: "u-1", FullName: "Dana Reyes", Role: "technician"}

	raws := []domain.RawTicket{
		{ID: "t-1", TicketNumber: "TKT25030001", Title: "Printer offline", Description: "3rd floor printer",
			Status: domain.TicketStatusOpen, Priority: domain.TicketPriorityHigh,
			SubmitterName: "Ada", SubmitterEmail: "ada@example.com", AssignedTo: strPtr("u-1"),
			LocationID: strPtr("loc-1"), CreatedAt: now.Add(-6 * time.Hour), UpdatedAt: now.Add(-6 * time.Hour)},
		{ID: "t-2", TicketNumber: "TKT25030002", Title: "VPN drops", Description: "disconnects hourly",
			Status: domain.TicketStatusInProgress, Priority: domain.TicketPriorityMedium,
			SubmitterName: "Ben", SubmitterEmail: "ben@example.com",
			LocationID: strPtr("loc-2"), CreatedAt: now.Add(-4 * time.Hour), UpdatedAt: now.Add(-time.Hour)},
		{ID: "t-3", TicketNumber: "TKT25030003", Title: "New laptop request", Description: "for ada's team",
			Status: domain.TicketStatusResolved, Priority: domain.TicketPriorityLow,
			SubmitterName: "Cleo", SubmitterEmail: "cleo@example.com", AssignedTo: strPtr("u-1"),
			CategoryID: strPtr("cat-1"), CreatedAt: now.Add(-48 * time.Hour), UpdatedAt: now.Add(-24 * time.Hour)},
		{ID: "t-4", TicketNumber: "TKT25030004", Title: "Password reset", Description: "locked out",
			Status: domain.TicketStatusOpen, Priority: domain.TicketPriorityMedium,
			SubmitterName: "Ben", SubmitterEmail: "ben@example.com",
			CreatedAt: now.Add(-2 * time.Hour), UpdatedAt: now.Add(-2 * time.Hour)},
	}
	return domain.EnrichAll(raws, lookups, now)
}

func ids(tickets []domain.Ticket) []string {
	out := make([]string, 0, len(tickets))
	for _, t := range tickets {
		out = append(out, t.ID)
	}
	return out
}

func equalIDs(got []domain.Ticket, want ...string) bool {
	if len(got) != len(want) {
		return false
	}
	for i, t := range got {
		if t.ID != want[i] {
			return false
		}
	}
	return true
}

func TestFilter(t *testing.T) {
	now := time.Date(2025, 3, 20, 15, 0, 0, 0, time.UTC)
	tickets := testTickets(now)
	from := now.Add(-5 * time.Hour)

	tests := []struct {
		name     string
		criteria Criteria
		want     []string
	}{
		{"no criteria keeps order", Criteria{}, []string{"t-1", "t-2", "t-3", "t-4"}},
		{"by status", Criteria{Status: domain.TicketStatusOpen}, []string{"t-1", "t-4"}},
		{"by priority", Criteria{Priority: domain.TicketPriorityMedium}, []string{"t-2", "t-4"}},
		{"by location", Criteria{LocationID: "loc-2"}, []string{"t-2"}},
		{"by category", Criteria{CategoryID: "cat-1"}, []string{"t-3"}},
		{"by assignee", Criteria{AssignedTo: "u-1"}, []string{"t-1", "t-3"}},
		{"created from", Criteria{CreatedFrom: &from}, []string{"t-2", "t-4"}},
		{"overdue only", Criteria{OverdueOnly: true}, []string{"t-1"}},
		{"combined AND", Criteria{Status: domain.TicketStatusOpen, Priority: domain.TicketPriorityMedium}, []string{"t-4"}},
		{"search title", Criteria{Search: "vpn"}, []string{"t-2"}},
		{"search ticket number", Criteria{Search: "25030003"}, []string{"t-3"}},
		{"search submitter and description", Criteria{Search: "ada"}, []string{"t-1", "t-3"}},
		{"search assignee name", Criteria{Search: "dana"}, []string{"t-1", "t-3"}},
		{"search no match", Criteria{Search: "nonexistent"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Filter(tickets, tt.criteria)
			if !equalIDs(got, tt.want...) {
				t.Errorf("Filter() = %v, want %v", ids(got), tt.want)
			}
		})
	}
}

func TestFilterDoesNotMutateInput(t *testing.T) {
	now := time.Date(2025, 3, 20, 15, 0, 0, 0, time.UTC)
	tickets := testTickets(now)
	before := ids(tickets)

	Apply(tickets, Criteria{Status: domain.TicketStatusOpen, SortBy: "priority", SortDesc: true})

	after := ids(tickets)
	for i := range before {
		if before[i] != after[i] {
			t.Fatalf("input order changed: %v -> %v", before, after)
		}
	}
}

func TestSortPriorityDescending(t *testing.T) {
	now := time.Date(2025, 3, 20, 15, 0, 0, 0, time.UTC)
	tickets := testTickets(now)

	got := Apply(tickets, Criteria{SortBy: "priority", SortDesc: true})
	// High, then the two Mediums in input order (stable), then Low.
	if !equalIDs(got, "t-1", "t-2", "t-4", "t-3") {
		t.Errorf("priority desc = %v", ids(got))
	}
}

func TestSortCreatedAt(t *testing.T) {
	now := time.Date(2025, 3, 20, 15, 0, 0, 0, time.UTC)
	tickets := testTickets(now)

	asc := Apply(tickets, Criteria{SortBy: "created_at"})
	if !equalIDs(asc, "t-3", "t-1", "t-2", "t-4") {
		t.Errorf("created_at asc = %v", ids(asc))
	}

	desc := Apply(tickets, Criteria{SortBy: "created_at", SortDesc: true})
	if !equalIDs(desc, "t-4", "t-2", "t-1", "t-3") {
		t.Errorf("created_at desc = %v", ids(desc))
	}
}

func TestSortTextCaseInsensitive(t *testing.T) {
	now := time.Date(2025, 3, 20, 15, 0, 0, 0, time.UTC)
	tickets := testTickets(now)

	got := Apply(tickets, Criteria{SortBy: "title"})
	// "New laptop...", "Password reset", "Printer offline", "VPN drops".
	if !equalIDs(got, "t-3", "t-4", "t-1", "t-2") {
		t.Errorf("title asc = %v", ids(got))
	}
}

func TestPaginate(t *testing.T) {
	now := time.Date(2025, 3, 20, 15, 0, 0, 0, time.UTC)
	lookups := domain.NewLookupTables()
	raws := make([]domain.RawTicket, 23)
	for i := range raws {
		raws[i] = domain.RawTicket{
			ID:        fmt.Sprintf("t-%02d", i+1),
			Status:    domain.TicketStatusOpen,
			Priority:  domain.TicketPriorityLow,
			CreatedAt: now.Add(-time.Duration(i) * time.Minute),
		}
	}
	tickets := domain.EnrichAll(raws, lookups, now)

	tests := []struct {
		name    string
		page    int
		size    int
		wantLen int
		firstID string
	}{
		{"first page", 1, 10, 10, "t-01"},
		{"middle page", 2, 10, 10, "t-11"},
		{"last partial page", 3, 10, 3, "t-21"},
		{"page past end", 4, 10, 0, ""},
		{"zero page", 0, 10, 0, ""},
		{"zero size", 1, 0, 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Paginate(tickets, tt.page, tt.size)
			if len(got) != tt.wantLen {
				t.Fatalf("len = %d, want %d", len(got), tt.wantLen)
			}
			if tt.wantLen > 0 && got[0].ID != tt.firstID {
				t.Errorf("first id = %s, want %s", got[0].ID, tt.firstID)
			}
		})
	}
}

func TestTotalPages(t *testing.T) {
	tests := []struct {
		total, size, want int
	}{
		{23, 10, 3},
		{20, 10, 2},
		{1, 10, 1},
		{0, 10, 0},
		{10, 0, 0},
	}
	for _, tt := range tests {
		if got := TotalPages(tt.total, tt.size); got != tt.want {
			t.Errorf("TotalPages(%d, %d) = %d, want %d", tt.total, tt.size, got, tt.want)
		}
	}
}
