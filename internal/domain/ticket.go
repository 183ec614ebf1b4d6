package domain

import (
	"fmt"
	"strings"
	"time"
)

// TicketStatus enumerates lifecycle states for tickets. Values match the
// display strings stored in the tickets table.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "Open"
	TicketStatusInProgress TicketStatus = "In Progress"
	TicketStatusOnHold     TicketStatus = "On Hold"
	TicketStatusResolved   TicketStatus = "Resolved"
	TicketStatusClosed     TicketStatus = "Closed"
)

// TicketPriority enumerates SLA urgency.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "Low"
	TicketPriorityMedium TicketPriority = "Medium"
	TicketPriorityHigh   TicketPriority = "High"
)

// SLA thresholds in hours, keyed by priority. Tickets older than their
// threshold while in a non-terminal status are overdue.
var slaHours = map[TicketPriority]float64{
	TicketPriorityHigh:   4,
	TicketPriorityMedium: 24,
	TicketPriorityLow:    72,
}

// defaultSLAHours applies when the priority value is unrecognized.
const defaultSLAHours = 24

// priorityRanks orders priorities for sorting; higher sorts first when
// descending.
var priorityRanks = map[TicketPriority]int{
	TicketPriorityHigh:   3,
	TicketPriorityMedium: 2,
	TicketPriorityLow:    1,
}

// RawTicket is a ticket row as persisted, before enrichment.
type RawTicket struct {
	ID             string         `json:"id"`
	TicketNumber   string         `json:"ticket_number"`
	Title          string         `json:"title"`
	Description    string         `json:"description"`
	Status         TicketStatus   `json:"status"`
	Priority       TicketPriority `json:"priority"`
	SubmitterName  string         `json:"submitter_name"`
	SubmitterEmail string         `json:"submitter_email"`
	AssignedTo     *string        `json:"assigned_to"`
	LocationID     *string        `json:"location_id"`
	CategoryID     *string        `json:"category_id"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// Ticket is a raw ticket plus derived display fields. Derived fields are
// never persisted; they are recomputed on every enrichment pass.
type Ticket struct {
	RawTicket

	IsOverdue      bool   `json:"is_overdue"`
	TimeOpen       string `json:"time_open"`
	AssignedToName string `json:"assigned_to_name"`
	LocationName   string `json:"location_name"`
	CategoryName   string `json:"category_name"`
	StatusKey      string `json:"status_key"`
	PriorityKey    string `json:"priority_key"`
	PriorityRank   int    `json:"priority_rank"`
}

// IsTerminal reports whether the status ends the SLA clock.
func (s TicketStatus) IsTerminal() bool {
	return s == TicketStatusResolved || s == TicketStatusClosed
}

// Key returns the normalized comparison form: lowercase with runs of
// whitespace collapsed to underscores.
func (s TicketStatus) Key() string {
	return strings.Join(strings.Fields(strings.ToLower(string(s))), "_")
}

// Rank returns the sort weight for a priority, 0 when unrecognized.
func (p TicketPriority) Rank() int {
	return priorityRanks[p]
}

// Key returns the normalized comparison form of the priority.
func (p TicketPriority) Key() string {
	return strings.ToLower(strings.TrimSpace(string(p)))
}

// SLAHours returns the overdue threshold for the priority.
func (p TicketPriority) SLAHours() float64 {
	if hours, ok := slaHours[p]; ok {
		return hours
	}
	return defaultSLAHours
}

// Overdue reports whether the raw ticket has exceeded its SLA as of now.
// Terminal tickets are never overdue regardless of elapsed time.
func (t RawTicket) Overdue(now time.Time) bool {
	if t.Status.IsTerminal() {
		return false
	}
	hoursOpen := now.Sub(t.CreatedAt).Hours()
	return hoursOpen > t.Priority.SLAHours()
}

// OpenDuration returns how long the ticket has been (or was) open: terminal
// tickets measure creation to last update, everything else creation to now.
func (t RawTicket) OpenDuration(now time.Time) time.Duration {
	end := now
	if t.Status.IsTerminal() {
		end = t.UpdatedAt
	}
	return end.Sub(t.CreatedAt)
}

// FormatHours renders a whole number of hours as "{days}d {hours}h" when a
// full day or more, otherwise "{hours}h".
func FormatHours(hours int) string {
	if hours < 0 {
		hours = 0
	}
	days := hours / 24
	if days > 0 {
		return fmt.Sprintf("%dd %dh", days, hours%24)
	}
	return fmt.Sprintf("%dh", hours)
}

// Enrich attaches derived display fields to a raw ticket using the current
// lookup tables. Pure: the same inputs always yield the same ticket.
func Enrich(raw RawTicket, lookups LookupTables, now time.Time) Ticket {
	return Ticket{
		RawTicket:      raw,
		IsOverdue:      raw.Overdue(now),
		TimeOpen:       FormatHours(int(raw.OpenDuration(now).Hours())),
		AssignedToName: lookups.AssigneeDisplayName(raw.AssignedTo),
		LocationName:   lookups.LocationName(raw.LocationID),
		CategoryName:   lookups.CategoryName(raw.CategoryID),
		StatusKey:      raw.Status.Key(),
		PriorityKey:    raw.Priority.Key(),
		PriorityRank:   raw.Priority.Rank(),
	}
}

// EnrichAll enriches a slice of raw tickets preserving order.
func EnrichAll(raw []RawTicket, lookups LookupTables, now time.Time) []Ticket {
	tickets := make([]Ticket, 0, len(raw))
	for _, r := range raw {
		tickets = append(tickets, Enrich(r, lookups, now))
	}
	return tickets
}

// TicketPatch carries the mutable fields of an update. Nil fields are left
// untouched by the merge.
type TicketPatch struct {
	Title          *string         `json:"title"`
	Description    *string         `json:"description"`
	Status         *TicketStatus   `json:"status"`
	Priority       *TicketPriority `json:"priority"`
	SubmitterName  *string         `json:"submitter_name"`
	SubmitterEmail *string         `json:"submitter_email"`
	AssignedTo     *string         `json:"assigned_to"`
	LocationID     *string         `json:"location_id"`
	CategoryID     *string         `json:"category_id"`
}

// Apply merges the patch into a raw ticket and stamps UpdatedAt. The ticket
// number is immutable and never part of a patch.
func (p TicketPatch) Apply(raw RawTicket, now time.Time) RawTicket {
	if p.Title != nil {
		raw.Title = *p.Title
	}
	if p.Description != nil {
		raw.Description = *p.Description
	}
	if p.Status != nil {
		raw.Status = *p.Status
	}
	if p.Priority != nil {
		raw.Priority = *p.Priority
	}
	if p.SubmitterName != nil {
		raw.SubmitterName = *p.SubmitterName
	}
	if p.SubmitterEmail != nil {
		raw.SubmitterEmail = *p.SubmitterEmail
	}
	if p.AssignedTo != nil {
		if *p.AssignedTo == "" {
			raw.AssignedTo = nil
		} else {
			assignee := *p.AssignedTo
			raw.AssignedTo = &assignee
		}
	}
	if p.LocationID != nil {
		location := *p.LocationID
		raw.LocationID = &location
	}
	if p.CategoryID != nil {
		category := *p.CategoryID
		raw.CategoryID = &category
	}
	raw.UpdatedAt = now
	return raw
}

// Empty reports whether the patch changes nothing.
func (p TicketPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Status == nil &&
		p.Priority == nil && p.SubmitterName == nil && p.SubmitterEmail == nil &&
		p.AssignedTo == nil && p.LocationID == nil && p.CategoryID == nil
}
