package domain

import (
	"testing"
	"time"
)

func TestComputeStatisticsCounts(t *testing.T) {
	now := time.Date(2025, 3, 20, 15, 0, 0, 0, time.UTC)
	lookups := NewLookupTables()

	tickets := []Ticket{
		// Created today, open, high, overdue (5h > 4h SLA).
		Enrich(RawTicket{Status: TicketStatusOpen, Priority: TicketPriorityHigh,
			CreatedAt: now.Add(-5 * time.Hour), UpdatedAt: now.Add(-5 * time.Hour)}, lookups, now),
		// Created yesterday evening, in progress, medium, inside its 24h SLA.
		Enrich(RawTicket{Status: TicketStatusInProgress, Priority: TicketPriorityMedium, AssignedTo: strPtr("u-1"),
			CreatedAt: now.Add(-20 * time.Hour), UpdatedAt: now.Add(-time.Hour)}, lookups, now),
		// Resolved today: created 10 days ago, updated this morning.
		Enrich(RawTicket{Status: TicketStatusResolved, Priority: TicketPriorityLow, AssignedTo: strPtr("u-1"),
			CreatedAt: now.Add(-240 * time.Hour), UpdatedAt: now.Add(-2 * time.Hour)}, lookups, now),
		// Closed long ago: resolution time 48h.
		Enrich(RawTicket{Status: TicketStatusClosed, Priority: TicketPriorityMedium,
			CreatedAt: now.Add(-300 * time.Hour), UpdatedAt: now.Add(-252 * time.Hour)}, lookups, now),
	}

	stats := ComputeStatistics(tickets, now)

	if stats.Total != 4 {
		t.Errorf("Total = %d", stats.Total)
	}
	if stats.Open != 1 || stats.InProgress != 1 || stats.Resolved != 1 || stats.Closed != 1 {
		t.Errorf("status counts = %d/%d/%d/%d", stats.Open, stats.InProgress, stats.Resolved, stats.Closed)
	}
	if stats.HighPriority != 1 || stats.MediumPriority != 2 || stats.LowPriority != 1 {
		t.Errorf("priority counts = %d/%d/%d", stats.HighPriority, stats.MediumPriority, stats.LowPriority)
	}
	if stats.CreatedToday != 1 {
		t.Errorf("CreatedToday = %d", stats.CreatedToday)
	}
	if stats.CreatedThisWeek != 2 {
		t.Errorf("CreatedThisWeek = %d", stats.CreatedThisWeek)
	}
	if stats.ResolvedToday != 1 {
		t.Errorf("ResolvedToday = %d", stats.ResolvedToday)
	}
	if stats.Overdue != 1 {
		t.Errorf("Overdue = %d", stats.Overdue)
	}
	if stats.Unassigned != 2 {
		t.Errorf("Unassigned = %d", stats.Unassigned)
	}
	if stats.StatusDistribution["Open"] != 1 || stats.StatusDistribution["Resolved"] != 1 {
		t.Errorf("StatusDistribution = %v", stats.StatusDistribution)
	}
	if stats.PriorityDistribution["Medium"] != 2 {
		t.Errorf("PriorityDistribution = %v", stats.PriorityDistribution)
	}
}

func TestComputeStatisticsResolvedTodayRequiresResolvedStatus(t *testing.T) {
	now := time.Date(2025, 3, 20, 15, 0, 0, 0, time.UTC)
	lookups := NewLookupTables()

	// Closed today counts toward resolution time but not ResolvedToday.
	tickets := []Ticket{
		Enrich(RawTicket{Status: TicketStatusClosed, Priority: TicketPriorityLow,
			CreatedAt: now.Add(-48 * time.Hour), UpdatedAt: now.Add(-time.Hour)}, lookups, now),
	}

	stats := ComputeStatistics(tickets, now)
	if stats.ResolvedToday != 0 {
		t.Errorf("ResolvedToday = %d, want 0 for Closed status", stats.ResolvedToday)
	}
}

func TestComputeStatisticsAvgResolutionTime(t *testing.T) {
	now := time.Date(2025, 3, 20, 15, 0, 0, 0, time.UTC)
	lookups := NewLookupTables()

	t.Run("no terminal tickets", func(t *testing.T) {
		tickets := []Ticket{
			Enrich(RawTicket{Status: TicketStatusOpen, Priority: TicketPriorityLow,
				CreatedAt: now.Add(-time.Hour), UpdatedAt: now}, lookups, now),
		}
		if got := ComputeStatistics(tickets, now).AvgResolutionTime; got != "0h" {
			t.Errorf("AvgResolutionTime = %q, want 0h", got)
		}
	})

	t.Run("under a day", func(t *testing.T) {
		tickets := []Ticket{
			Enrich(RawTicket{Status: TicketStatusResolved, Priority: TicketPriorityLow,
				CreatedAt: now.Add(-10 * time.Hour), UpdatedAt: now.Add(-4 * time.Hour)}, lookups, now),
		}
		if got := ComputeStatistics(tickets, now).AvgResolutionTime; got != "6h" {
			t.Errorf("AvgResolutionTime = %q, want 6h", got)
		}
	})

	t.Run("averaged over terminal tickets", func(t *testing.T) {
		// 12h and 60h resolutions average to 36h.
		tickets := []Ticket{
			Enrich(RawTicket{Status: TicketStatusResolved, Priority: TicketPriorityLow,
				CreatedAt: now.Add(-20 * time.Hour), UpdatedAt: now.Add(-8 * time.Hour)}, lookups, now),
			Enrich(RawTicket{Status: TicketStatusClosed, Priority: TicketPriorityLow,
				CreatedAt: now.Add(-100 * time.Hour), UpdatedAt: now.Add(-40 * time.Hour)}, lookups, now),
		}
		if got := ComputeStatistics(tickets, now).AvgResolutionTime; got != "1d 12h" {
			t.Errorf("AvgResolutionTime = %q, want 1d 12h", got)
		}
	})
}

func TestComputeStatisticsWorkload(t *testing.T) {
	now := time.Date(2025, 3, 20, 15, 0, 0, 0, time.UTC)
	lookups := NewLookupTables()
	lookups.Users["u-1"] = User{ID: "u-1", FullName: "Dana Reyes", Role: "technician"}

	base := RawTicket{Priority: TicketPriorityLow, CreatedAt: now.Add(-time.Hour), UpdatedAt: now}
	mk := func(status TicketStatus, assignee *string) Ticket {
		raw := base
		raw.Status = status
		raw.AssignedTo = assignee
		return Enrich(raw, lookups, now)
	}

	tickets := []Ticket{
		mk(TicketStatusClosed, strPtr("u-1")),
		mk(TicketStatusClosed, strPtr("u-1")),
		mk(TicketStatusResolved, strPtr("u-1")),
		mk(TicketStatusOpen, strPtr("u-1")),
		mk(TicketStatusOpen, strPtr("ghost")),
		mk(TicketStatusInProgress, nil),
	}

	stats := ComputeStatistics(tickets, now)

	dana := stats.AssigneeWorkload["Dana Reyes"]
	if dana.Total != 4 || dana.Closed != 3 || dana.Open != 1 {
		t.Errorf("Dana workload = %+v", dana)
	}
	if dana.CompletionRate != 75 {
		t.Errorf("CompletionRate = %d, want 75", dana.CompletionRate)
	}

	ghost := stats.AssigneeWorkload["User ghost"]
	if ghost.Total != 1 || ghost.CompletionRate != 0 {
		t.Errorf("ghost workload = %+v", ghost)
	}

	unassigned := stats.AssigneeWorkload["Unassigned"]
	if unassigned.Total != 1 || unassigned.InProgress != 1 {
		t.Errorf("unassigned workload = %+v", unassigned)
	}
}

func TestAssignableUsers(t *testing.T) {
	lookups := NewLookupTables()
	lookups.Users["a"] = User{ID: "a", FullName: "A", Role: "technician"}
	lookups.Users["b"] = User{ID: "b", FullName: "B", Role: "Admin"}
	lookups.Users["c"] = User{ID: "c", FullName: "C", Role: "viewer"}

	got := lookups.AssignableUsers()
	if len(got) != 2 {
		t.Fatalf("AssignableUsers returned %d users, want 2", len(got))
	}
	for _, u := range got {
		if u.ID == "c" {
			t.Error("viewer role should not be assignable")
		}
	}
}
