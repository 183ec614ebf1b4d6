package handlers

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-portal/internal/domain"
	"github.com/spec-kit/helpdesk-portal/internal/query"
)

func criteriaFor(t *testing.T, target string) query.Criteria {
	t.Helper()
	var got query.Criteria
	app := fiber.New()
	app.Get("/probe", func(c *fiber.Ctx) error {
		got = parseCriteria(c)
		return c.SendStatus(fiber.StatusOK)
	})
	resp, err := app.Test(httptest.NewRequest("GET", target, nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	resp.Body.Close()
	return got
}

func TestParseCriteria(t *testing.T) {
	got := criteriaFor(t, "/probe?search=vpn&status=Open&priority=High&location_id=loc-1"+
		"&assigned_to=u-1&overdue=true&sort_by=priority&sort_dir=desc"+
		"&created_from=2025-03-01T00:00:00Z")

	if got.Search != "vpn" || got.Status != domain.TicketStatusOpen || got.Priority != domain.TicketPriorityHigh {
		t.Errorf("criteria = %+v", got)
	}
	if got.LocationID != "loc-1" || got.AssignedTo != "u-1" {
		t.Errorf("criteria = %+v", got)
	}
	if !got.OverdueOnly || got.SortBy != "priority" || !got.SortDesc {
		t.Errorf("criteria = %+v", got)
	}
	want := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	if got.CreatedFrom == nil || !got.CreatedFrom.Equal(want) {
		t.Errorf("CreatedFrom = %v", got.CreatedFrom)
	}
	if got.CreatedTo != nil {
		t.Errorf("CreatedTo = %v, want nil", got.CreatedTo)
	}
}

func TestParseCriteriaDefaults(t *testing.T) {
	got := criteriaFor(t, "/probe")
	if got.OverdueOnly || got.SortDesc || got.Status != "" || got.CreatedFrom != nil {
		t.Errorf("criteria = %+v", got)
	}
}

func TestParseCriteriaIgnoresBadTimestamp(t *testing.T) {
	got := criteriaFor(t, "/probe?created_from=yesterday")
	if got.CreatedFrom != nil {
		t.Errorf("CreatedFrom = %v, want nil for unparseable value", got.CreatedFrom)
	}
}

func TestParseInt(t *testing.T) {
	tests := []struct {
		val  string
		def  int
		want int
	}{
		{"", 20, 20},
		{"5", 20, 5},
		{"0", 20, 20},
		{"-3", 20, 20},
		{"abc", 20, 20},
	}
	for _, tt := range tests {
		if got := parseInt(tt.val, tt.def); got != tt.want {
			t.Errorf("parseInt(%q, %d) = %d, want %d", tt.val, tt.def, got, tt.want)
		}
	}
}
