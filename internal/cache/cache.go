// Package cache holds the in-process source of truth for tickets and lookup
// tables. All reads are served from memory; every mutation persists first,
// then updates the local copy, recomputes the statistics snapshot, and
// notifies observers.
package cache

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-portal/internal/domain"
	"github.com/spec-kit/helpdesk-portal/internal/notify"
	"github.com/spec-kit/helpdesk-portal/internal/query"
	"github.com/spec-kit/helpdesk-portal/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-portal/pkg/util"
)

// Dependencies bundles collaborators for the ticket cache.
type Dependencies struct {
	TicketRepo   repository.TicketRepository
	LocationRepo repository.LocationRepository
	CategoryRepo repository.CategoryRepository
	UserRepo     repository.UserRepository
	Notifier     *notify.ChangeNotifier
	Relay        *notify.RelayClient
	Logger       *zap.Logger
}

// TicketCache is the single in-memory source of truth for tickets, lookup
// tables, and the derived statistics snapshot.
type TicketCache struct {
	tickets    repository.TicketRepository
	locations  repository.LocationRepository
	categories repository.CategoryRepository
	users      repository.UserRepository
	notifier   *notify.ChangeNotifier
	relay      *notify.RelayClient
	logger     *zap.Logger
	now        func() time.Time

	mu          sync.RWMutex
	loading     bool
	list        []domain.Ticket
	lookups     domain.LookupTables
	stats       domain.Statistics
	lastRefresh time.Time
}

// CreateInput describes a ticket submission.
type CreateInput struct {
	Title          string
	Description    string
	Status         domain.TicketStatus
	Priority       domain.TicketPriority
	SubmitterName  string
	SubmitterEmail string
	AssignedTo     *string
	LocationID     *string
	CategoryID     *string
}

// Status reports cache health for diagnostics.
type Status struct {
	IsLoading     bool      `json:"is_loading"`
	LastRefresh   time.Time `json:"last_refresh"`
	TicketCount   int       `json:"ticket_count"`
	LocationCount int       `json:"location_count"`
	CategoryCount int       `json:"category_count"`
	UserCount     int       `json:"user_count"`
}

// New constructs the cache. Call Load before serving reads.
func New(deps Dependencies) *TicketCache {
	return &TicketCache{
		tickets:    deps.TicketRepo,
		locations:  deps.LocationRepo,
		categories: deps.CategoryRepo,
		users:      deps.UserRepo,
		notifier:   deps.Notifier,
		relay:      deps.Relay,
		logger:     deps.Logger,
		now:        time.Now,
		lookups:    domain.NewLookupTables(),
	}
}

// Load fetches tickets and all lookup tables in parallel and rebuilds the
// in-memory state. A Load issued while another is still in flight is a no-op.
// Lookup failures degrade to empty tables; a ticket read failure leaves the
// list empty and is returned to the caller. No automatic retry.
func (c *TicketCache) Load(ctx context.Context) error {
	c.mu.Lock()
	if c.loading {
		c.mu.Unlock()
		return nil
	}
	c.loading = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.loading = false
		c.mu.Unlock()
	}()

	var (
		wg         sync.WaitGroup
		rawTickets []domain.RawTicket
		ticketErr  error
		locations  []domain.Location
		locErr     error
		categories []domain.Category
		catErr     error
		users      []domain.User
		userErr    error
	)

	wg.Add(4)
	go func() {
		defer wg.Done()
		rawTickets, ticketErr = c.tickets.List(ctx)
	}()
	go func() {
		defer wg.Done()
		locations, locErr = c.locations.List(ctx)
	}()
	go func() {
		defer wg.Done()
		categories, catErr = c.categories.List(ctx)
	}()
	go func() {
		defer wg.Done()
		users, userErr = c.users.List(ctx)
	}()
	wg.Wait()

	lookups := domain.NewLookupTables()
	if locErr != nil {
		c.logger.Warn("location lookup load failed; continuing with empty table", zap.Error(locErr))
	}
	for _, location := range locations {
		lookups.Locations[location.ID] = location.Name
	}
	if catErr != nil {
		c.logger.Warn("category lookup load failed; continuing with empty table", zap.Error(catErr))
	}
	for _, category := range categories {
		lookups.Categories[category.ID] = category.Name
	}
	if userErr != nil {
		c.logger.Warn("user lookup load failed; continuing with empty table", zap.Error(userErr))
	}
	for _, user := range users {
		lookups.Users[user.ID] = user
	}

	var loadErr error
	if ticketErr != nil {
		if errors.Is(ticketErr, repository.ErrRelationMissing) {
			c.logger.Warn("tickets table not provisioned; starting empty")
			rawTickets = nil
		} else {
			rawTickets = nil
			loadErr = apperrors.NewPersistenceError("ticket load", ticketErr)
		}
	}

	now := c.now()
	enriched := domain.EnrichAll(rawTickets, lookups, now)
	stats := domain.ComputeStatistics(enriched, now)

	c.mu.Lock()
	c.list = enriched
	c.lookups = lookups
	c.stats = stats
	c.lastRefresh = now
	c.mu.Unlock()

	c.notifier.Publish(notify.Change{Op: notify.OpLoad})
	return loadErr
}

// Create validates the draft, assigns a ticket number, persists, and prepends
// the enriched record. Relay notification failures surface only as warnings.
func (c *TicketCache) Create(ctx context.Context, input CreateInput) (*domain.Ticket, error) {
	details := map[string]any{}
	if strings.TrimSpace(input.Title) == "" {
		details["title"] = "required"
	}
	if strings.TrimSpace(input.Description) == "" {
		details["description"] = "required"
	}
	if strings.TrimSpace(string(input.Priority)) == "" {
		details["priority"] = "required"
	}
	if len(details) > 0 {
		return nil, apperrors.NewValidationError("missing required ticket fields", details)
	}

	now := c.now()
	raw := domain.RawTicket{
		TicketNumber:   c.nextTicketNumber(now),
		Title:          strings.TrimSpace(input.Title),
		Description:    strings.TrimSpace(input.Description),
		Status:         input.Status,
		Priority:       input.Priority,
		SubmitterName:  strings.TrimSpace(input.SubmitterName),
		SubmitterEmail: strings.TrimSpace(input.SubmitterEmail),
		AssignedTo:     input.AssignedTo,
		LocationID:     input.LocationID,
		CategoryID:     input.CategoryID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if raw.Status == "" {
		raw.Status = domain.TicketStatusOpen
	}

	if err := c.tickets.Insert(ctx, &raw); err != nil {
		return nil, apperrors.NewPersistenceError("ticket create", err)
	}

	c.mu.Lock()
	ticket := domain.Enrich(raw, c.lookups, now)
	c.list = append([]domain.Ticket{ticket}, c.list...)
	c.recomputeLocked(now)
	c.mu.Unlock()

	c.notifier.Publish(notify.Change{Op: notify.OpCreate, TicketIDs: []string{ticket.ID}})
	c.relayNotify(ctx, &ticket, "submit")

	return &ticket, nil
}

// Update merges the patch remotely, then replaces the matching in-memory
// record with the merged, re-enriched row.
func (c *TicketCache) Update(ctx context.Context, id string, patch domain.TicketPatch) (*domain.Ticket, error) {
	now := c.now()
	raw, err := c.tickets.Update(ctx, id, patch, now)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"id": id})
		}
		return nil, apperrors.NewPersistenceError("ticket update", err)
	}

	c.mu.Lock()
	ticket := domain.Enrich(*raw, c.lookups, now)
	idx := c.indexOfLocked(id)
	if idx >= 0 {
		c.list[idx] = ticket
		c.recomputeLocked(now)
	}
	c.mu.Unlock()

	if idx < 0 {
		// The durable write happened but the ticket was never loaded here.
		return nil, apperrors.NewNotFound("ticket", map[string]any{"id": id})
	}

	c.notifier.Publish(notify.Change{Op: notify.OpUpdate, TicketIDs: []string{id}})
	if patch.Status != nil {
		c.relayNotify(ctx, &ticket, "update")
	}

	return &ticket, nil
}

// BulkUpdate applies one patch to a set of ids in a single persistence call,
// then merges each returned record into the local list.
func (c *TicketCache) BulkUpdate(ctx context.Context, ids []string, patch domain.TicketPatch) ([]domain.Ticket, error) {
	if len(ids) == 0 {
		return nil, apperrors.NewValidationError("no ticket ids given", nil)
	}

	now := c.now()
	rows, err := c.tickets.UpdateSet(ctx, ids, patch, now)
	if err != nil {
		return nil, apperrors.NewPersistenceError("ticket bulk update", err)
	}

	updated := make([]domain.Ticket, 0, len(rows))
	c.mu.Lock()
	for _, raw := range rows {
		ticket := domain.Enrich(raw, c.lookups, now)
		if idx := c.indexOfLocked(raw.ID); idx >= 0 {
			c.list[idx] = ticket
		}
		updated = append(updated, ticket)
	}
	c.recomputeLocked(now)
	c.mu.Unlock()

	c.notifier.Publish(notify.Change{Op: notify.OpBulkUpdate, TicketIDs: ids})
	return updated, nil
}

// Delete removes the ticket remotely, then locally once the store confirms.
func (c *TicketCache) Delete(ctx context.Context, id string) error {
	if err := c.tickets.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("ticket", map[string]any{"id": id})
		}
		return apperrors.NewPersistenceError("ticket delete", err)
	}

	now := c.now()
	c.mu.Lock()
	if idx := c.indexOfLocked(id); idx >= 0 {
		c.list = append(c.list[:idx], c.list[idx+1:]...)
	}
	c.recomputeLocked(now)
	c.mu.Unlock()

	c.notifier.Publish(notify.Change{Op: notify.OpDelete, TicketIDs: []string{id}})
	return nil
}

// Query returns the filtered, sorted view for the criteria. Read-only.
func (c *TicketCache) Query(criteria query.Criteria) []domain.Ticket {
	c.mu.RLock()
	snapshot := make([]domain.Ticket, len(c.list))
	copy(snapshot, c.list)
	c.mu.RUnlock()
	return query.Apply(snapshot, criteria)
}

// Tickets returns a copy of the full list, most recent first.
func (c *TicketCache) Tickets() []domain.Ticket {
	c.mu.RLock()
	defer c.mu.RUnlock()
	snapshot := make([]domain.Ticket, len(c.list))
	copy(snapshot, c.list)
	return snapshot
}

// Get returns the ticket with the given id.
func (c *TicketCache) Get(id string) (*domain.Ticket, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if idx := c.indexOfLocked(id); idx >= 0 {
		ticket := c.list[idx]
		return &ticket, true
	}
	return nil, false
}

// Track looks a ticket up by its number, optionally requiring the submitter
// email to match. Both comparisons are case-insensitive.
func (c *TicketCache) Track(number, email string) (*domain.Ticket, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for i := range c.list {
		if !strings.EqualFold(c.list[i].TicketNumber, number) {
			continue
		}
		if email != "" && !strings.EqualFold(c.list[i].SubmitterEmail, email) {
			continue
		}
		ticket := c.list[i]
		return &ticket, true
	}
	return nil, false
}

// Statistics returns the last computed snapshot. It never recomputes on
// read; snapshots change only after mutations, loads, and refreshes.
func (c *TicketCache) Statistics() domain.Statistics {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stats
}

// Lookups returns the current lookup tables.
func (c *TicketCache) Lookups() domain.LookupTables {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lookups
}

// State reports cache diagnostics.
func (c *TicketCache) State() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Status{
		IsLoading:     c.loading,
		LastRefresh:   c.lastRefresh,
		TicketCount:   len(c.list),
		LocationCount: len(c.lookups.Locations),
		CategoryCount: len(c.lookups.Categories),
		UserCount:     len(c.lookups.Users),
	}
}

// RefreshDerived re-enriches every ticket and recomputes statistics against
// the current clock without touching the store. Overdue flags and time-open
// strings drift with wall time between mutations; the cron worker calls this.
func (c *TicketCache) RefreshDerived() {
	now := c.now()
	c.mu.Lock()
	for i := range c.list {
		c.list[i] = domain.Enrich(c.list[i].RawTicket, c.lookups, now)
	}
	c.recomputeLocked(now)
	c.mu.Unlock()

	c.notifier.Publish(notify.Change{Op: notify.OpRefresh})
}

// ApplyRemoteInsert upserts a ticket delivered by the change feed. The event
// already reflects a durable write, so no store call is made.
func (c *TicketCache) ApplyRemoteInsert(raw domain.RawTicket) {
	c.upsertRemote(raw)
}

// ApplyRemoteUpdate upserts a ticket delivered by the change feed. Updates
// for ids that were never loaded insert rather than error.
func (c *TicketCache) ApplyRemoteUpdate(raw domain.RawTicket) {
	c.upsertRemote(raw)
}

// ApplyRemoteDelete removes a ticket deleted elsewhere. Unknown ids are
// ignored.
func (c *TicketCache) ApplyRemoteDelete(id string) {
	now := c.now()
	c.mu.Lock()
	if idx := c.indexOfLocked(id); idx >= 0 {
		c.list = append(c.list[:idx], c.list[idx+1:]...)
	}
	c.recomputeLocked(now)
	c.mu.Unlock()

	c.notifier.Publish(notify.Change{Op: notify.OpExternal, TicketIDs: []string{id}})
}

func (c *TicketCache) upsertRemote(raw domain.RawTicket) {
	now := c.now()
	c.mu.Lock()
	ticket := domain.Enrich(raw, c.lookups, now)
	if idx := c.indexOfLocked(raw.ID); idx >= 0 {
		c.list[idx] = ticket
	} else {
		c.list = append([]domain.Ticket{ticket}, c.list...)
	}
	c.recomputeLocked(now)
	c.mu.Unlock()

	c.notifier.Publish(notify.Change{Op: notify.OpExternal, TicketIDs: []string{raw.ID}})
}

func (c *TicketCache) indexOfLocked(id string) int {
	for i := range c.list {
		if c.list[i].ID == id {
			return i
		}
	}
	return -1
}

func (c *TicketCache) recomputeLocked(now time.Time) {
	c.stats = domain.ComputeStatistics(c.list, now)
	c.lastRefresh = now
}

// relayNotify posts a best-effort Telegram notification. Failures never
// unwind the triggering operation.
func (c *TicketCache) relayNotify(ctx context.Context, ticket *domain.Ticket, eventType string) {
	if c.relay == nil || !c.relay.Enabled() {
		return
	}
	msg := notify.Message{
		Email:          ticket.SubmitterEmail,
		Title:          ticket.Title,
		Status:         string(ticket.Status),
		Type:           eventType,
		TicketNumber:   ticket.TicketNumber,
		Description:    ticket.Description,
		SubmitterEmail: ticket.SubmitterEmail,
	}
	if err := c.relay.Send(ctx, msg); err != nil {
		c.logger.Warn("ticket notification failed",
			zap.String("ticket_number", ticket.TicketNumber),
			zap.Error(err))
	}
}
