package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-portal/internal/domain"
)

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	// List returns every ticket ordered most-recent-first.
	List(ctx context.Context) ([]domain.RawTicket, error)
	// Insert persists a new ticket, assigning an id when none is set, and
	// fills in the durable created/updated stamps.
	Insert(ctx context.Context, ticket *domain.RawTicket) error
	// Update applies the patch to one ticket and returns the merged row.
	// pgx.ErrNoRows when the id does not exist.
	Update(ctx context.Context, id string, patch domain.TicketPatch, updatedAt time.Time) (*domain.RawTicket, error)
	// UpdateSet applies the patch to every id in one statement and returns
	// the merged rows.
	UpdateSet(ctx context.Context, ids []string, patch domain.TicketPatch, updatedAt time.Time) ([]domain.RawTicket, error)
	// Delete removes one ticket. pgx.ErrNoRows when the id does not exist.
	Delete(ctx context.Context, id string) error
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

const ticketColumns = `id, ticket_number, title, description, status, priority,
       submitter_name, submitter_email, assigned_to, location_id, category_id,
       created_at, updated_at`

func (r *ticketRepository) List(ctx context.Context) ([]domain.RawTicket, error) {
	query := fmt.Sprintf(`SELECT %s FROM tickets ORDER BY created_at DESC`, ticketColumns)
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, mapTableError(err)
	}
	defer rows.Close()
	return scanTickets(rows)
}

func (r *ticketRepository) Insert(ctx context.Context, ticket *domain.RawTicket) error {
	if ticket.ID == "" {
		ticket.ID = uuid.NewString()
	}
	const query = `
        INSERT INTO tickets (id, ticket_number, title, description, status, priority,
            submitter_name, submitter_email, assigned_to, location_id, category_id,
            created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
        RETURNING created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		ticket.ID,
		ticket.TicketNumber,
		ticket.Title,
		ticket.Description,
		ticket.Status,
		ticket.Priority,
		ticket.SubmitterName,
		ticket.SubmitterEmail,
		ticket.AssignedTo,
		ticket.LocationID,
		ticket.CategoryID,
		ticket.CreatedAt,
		ticket.UpdatedAt,
	).Scan(&ticket.CreatedAt, &ticket.UpdatedAt)
}

func (r *ticketRepository) Update(ctx context.Context, id string, patch domain.TicketPatch, updatedAt time.Time) (*domain.RawTicket, error) {
	sets, args := patchClauses(patch, updatedAt)
	args = append(args, id)
	query := fmt.Sprintf(`UPDATE tickets SET %s WHERE id=$%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), ticketColumns)

	var ticket domain.RawTicket
	if err := scanTicketRow(r.pool.QueryRow(ctx, query, args...), &ticket); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) UpdateSet(ctx context.Context, ids []string, patch domain.TicketPatch, updatedAt time.Time) ([]domain.RawTicket, error) {
	sets, args := patchClauses(patch, updatedAt)
	args = append(args, ids)
	query := fmt.Sprintf(`UPDATE tickets SET %s WHERE id=ANY($%d) RETURNING %s`,
		strings.Join(sets, ", "), len(args), ticketColumns)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func (r *ticketRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM tickets WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// patchClauses builds the dynamic SET list for the non-nil patch fields. The
// updated_at stamp is always included; ticket_number never is.
func patchClauses(patch domain.TicketPatch, updatedAt time.Time) ([]string, []any) {
	sets := []string{}
	args := []any{}

	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s=$%d", column, len(args)))
	}

	if patch.Title != nil {
		add("title", *patch.Title)
	}
	if patch.Description != nil {
		add("description", *patch.Description)
	}
	if patch.Status != nil {
		add("status", *patch.Status)
	}
	if patch.Priority != nil {
		add("priority", *patch.Priority)
	}
	if patch.SubmitterName != nil {
		add("submitter_name", *patch.SubmitterName)
	}
	if patch.SubmitterEmail != nil {
		add("submitter_email", *patch.SubmitterEmail)
	}
	if patch.AssignedTo != nil {
		if *patch.AssignedTo == "" {
			add("assigned_to", nil)
		} else {
			add("assigned_to", *patch.AssignedTo)
		}
	}
	if patch.LocationID != nil {
		add("location_id", *patch.LocationID)
	}
	if patch.CategoryID != nil {
		add("category_id", *patch.CategoryID)
	}
	add("updated_at", updatedAt)

	return sets, args
}

func scanTicketRow(row pgx.Row, ticket *domain.RawTicket) error {
	return row.Scan(
		&ticket.ID,
		&ticket.TicketNumber,
		&ticket.Title,
		&ticket.Description,
		&ticket.Status,
		&ticket.Priority,
		&ticket.SubmitterName,
		&ticket.SubmitterEmail,
		&ticket.AssignedTo,
		&ticket.LocationID,
		&ticket.CategoryID,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	)
}

func scanTickets(rows pgx.Rows) ([]domain.RawTicket, error) {
	var result []domain.RawTicket
	for rows.Next() {
		var ticket domain.RawTicket
		if err := scanTicketRow(rows, &ticket); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}
