package domain

import (
	"math"
	"time"
)

// Workload is the per-assignee slice of the statistics snapshot.
type Workload struct {
	Open           int `json:"open"`
	InProgress     int `json:"in_progress"`
	Closed         int `json:"closed"`
	Total          int `json:"total"`
	CompletionRate int `json:"completion_rate"`
}

// Statistics is the aggregate snapshot recomputed from the full ticket list
// after every mutation. It is always consistent with the list as of the last
// ComputeStatistics call.
type Statistics struct {
	Total      int `json:"total"`
	Open       int `json:"open"`
	InProgress int `json:"in_progress"`
	OnHold     int `json:"on_hold"`
	Resolved   int `json:"resolved"`
	Closed     int `json:"closed"`

	CreatedToday     int `json:"created_today"`
	CreatedThisWeek  int `json:"created_this_week"`
	CreatedThisMonth int `json:"created_this_month"`
	ResolvedToday    int `json:"resolved_today"`

	HighPriority   int `json:"high_priority"`
	MediumPriority int `json:"medium_priority"`
	LowPriority    int `json:"low_priority"`

	Overdue           int    `json:"overdue"`
	Unassigned        int    `json:"unassigned"`
	AvgResolutionTime string `json:"avg_resolution_time"`

	StatusDistribution   map[string]int      `json:"status_distribution"`
	PriorityDistribution map[string]int      `json:"priority_distribution"`
	AssigneeWorkload     map[string]Workload `json:"assignee_workload"`

	ComputedAt time.Time `json:"computed_at"`
}

// ComputeStatistics derives the snapshot from enriched tickets in a single
// pass plus a closing sweep for completion rates.
func ComputeStatistics(tickets []Ticket, now time.Time) Statistics {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	weekAgo := now.Add(-7 * 24 * time.Hour)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	stats := Statistics{
		Total:                len(tickets),
		StatusDistribution:   map[string]int{},
		PriorityDistribution: map[string]int{},
		AssigneeWorkload:     map[string]Workload{},
		ComputedAt:           now,
	}

	resolutionHours := 0.0
	resolutionCount := 0

	for i := range tickets {
		ticket := &tickets[i]

		switch ticket.Status {
		case TicketStatusOpen:
			stats.Open++
		case TicketStatusInProgress:
			stats.InProgress++
		case TicketStatusOnHold:
			stats.OnHold++
		case TicketStatusResolved:
			stats.Resolved++
		case TicketStatusClosed:
			stats.Closed++
		}

		switch ticket.Priority {
		case TicketPriorityHigh:
			stats.HighPriority++
		case TicketPriorityMedium:
			stats.MediumPriority++
		case TicketPriorityLow:
			stats.LowPriority++
		}

		status := string(ticket.Status)
		if status == "" {
			status = "Unknown"
		}
		stats.StatusDistribution[status]++

		priority := string(ticket.Priority)
		if priority == "" {
			priority = "Unknown"
		}
		stats.PriorityDistribution[priority]++

		if !ticket.CreatedAt.Before(today) {
			stats.CreatedToday++
		}
		if !ticket.CreatedAt.Before(weekAgo) {
			stats.CreatedThisWeek++
		}
		if !ticket.CreatedAt.Before(monthStart) {
			stats.CreatedThisMonth++
		}
		if ticket.Status == TicketStatusResolved && !ticket.UpdatedAt.Before(today) {
			stats.ResolvedToday++
		}

		if ticket.RawTicket.Overdue(now) {
			stats.Overdue++
		}
		if ticket.AssignedTo == nil || *ticket.AssignedTo == "" {
			stats.Unassigned++
		}

		if ticket.Status.IsTerminal() {
			resolutionHours += ticket.UpdatedAt.Sub(ticket.CreatedAt).Hours()
			resolutionCount++
		}

		key := workloadKey(ticket)
		workload := stats.AssigneeWorkload[key]
		workload.Total++
		switch ticket.Status {
		case TicketStatusOpen:
			workload.Open++
		case TicketStatusInProgress:
			workload.InProgress++
		case TicketStatusResolved, TicketStatusClosed:
			workload.Closed++
		}
		stats.AssigneeWorkload[key] = workload
	}

	for key, workload := range stats.AssigneeWorkload {
		if workload.Total > 0 {
			workload.CompletionRate = int(math.Round(float64(workload.Closed) / float64(workload.Total) * 100))
		}
		stats.AssigneeWorkload[key] = workload
	}

	if resolutionCount == 0 {
		stats.AvgResolutionTime = "0h"
	} else {
		stats.AvgResolutionTime = FormatHours(int(math.Round(resolutionHours / float64(resolutionCount))))
	}

	return stats
}

// workloadKey resolves the bucket label for a ticket's assignee: display name
// when known, "User {id}" for unknown ids, "Unassigned" otherwise.
func workloadKey(ticket *Ticket) string {
	if ticket.AssignedToName != "" && ticket.AssignedToName != "Unassigned" {
		return ticket.AssignedToName
	}
	if ticket.AssignedTo != nil && *ticket.AssignedTo != "" {
		return "User " + *ticket.AssignedTo
	}
	return "Unassigned"
}
