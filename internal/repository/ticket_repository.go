package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/spec-kit/chamados-service/internal/domain"
)

// TicketPatch carries a partial update. A nil field is left unchanged;
// there is no way to clear a stored value through this path.
type TicketPatch struct {
	Title       *string
	Description *string
	Status      *domain.TicketStatus
	Priority    *domain.TicketPriority
	Category    *string
	Contact     *string
	Notes       *string
}

// IsEmpty reports whether the patch carries no fields.
func (p TicketPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Status == nil &&
		p.Priority == nil && p.Category == nil && p.Contact == nil && p.Notes == nil
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	List(ctx context.Context) ([]domain.Ticket, error)
	GetByID(ctx context.Context, id int64) (*domain.Ticket, error)
	Insert(ctx context.Context, ticket *domain.Ticket) error
	UpdateByID(ctx context.Context, id int64, patch TicketPatch) (int64, error)
	DeleteByID(ctx context.Context, id int64) (bool, error)
}

type ticketRepository struct {
	db *sql.DB
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(db *sql.DB) TicketRepository {
	return &ticketRepository{db: db}
}

const ticketColumns = "id, title, description, status, priority, opened_at, category, contact, notes"

// List returns every stored ticket in insertion order.
func (r *ticketRepository) List(ctx context.Context) ([]domain.Ticket, error) {
	query := fmt.Sprintf("SELECT %s FROM tickets ORDER BY id", ticketColumns)
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Ticket
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *ticket)
	}
	return result, rows.Err()
}

// GetByID returns the matching ticket or sql.ErrNoRows.
func (r *ticketRepository) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	query := fmt.Sprintf("SELECT %s FROM tickets WHERE id = ?", ticketColumns)
	return scanTicket(r.db.QueryRowContext(ctx, query, id))
}

// Insert stores a new ticket and fills its assigned id.
func (r *ticketRepository) Insert(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (title, description, status, priority, opened_at, category, contact, notes)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query,
		ticket.Title,
		ticket.Description,
		string(ticket.Status),
		string(ticket.Priority),
		ticket.OpenedAt.UTC().Format(time.RFC3339),
		nullString(ticket.Category),
		nullString(ticket.Contact),
		nullString(ticket.Notes),
	)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	ticket.ID = id
	return nil
}

// UpdateByID applies the fields present in patch, coalescing absent ones
// to the stored values. Returns the count of rows affected; 0 means the
// id does not exist.
func (r *ticketRepository) UpdateByID(ctx context.Context, id int64, patch TicketPatch) (int64, error) {
	const query = `
        UPDATE tickets SET
            title       = COALESCE(?, title),
            description = COALESCE(?, description),
            status      = COALESCE(?, status),
            priority    = COALESCE(?, priority),
            category    = COALESCE(?, category),
            contact     = COALESCE(?, contact),
            notes       = COALESCE(?, notes)
        WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query,
		nullText(patch.Title),
		nullText(patch.Description),
		nullStatus(patch.Status),
		nullPriority(patch.Priority),
		nullText(patch.Category),
		nullText(patch.Contact),
		nullText(patch.Notes),
		id,
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// DeleteByID removes the row, reporting whether one was removed.
func (r *ticketRepository) DeleteByID(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM tickets WHERE id = ?", id)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTicket(row rowScanner) (*domain.Ticket, error) {
	var (
		ticket                   domain.Ticket
		openedAt                 string
		category, contact, notes sql.NullString
	)
	if err := row.Scan(
		&ticket.ID,
		&ticket.Title,
		&ticket.Description,
		&ticket.Status,
		&ticket.Priority,
		&openedAt,
		&category,
		&contact,
		&notes,
	); err != nil {
		return nil, err
	}
	parsed, err := time.Parse(time.RFC3339, openedAt)
	if err != nil {
		return nil, fmt.Errorf("parse opened_at %q: %w", openedAt, err)
	}
	ticket.OpenedAt = parsed
	ticket.Category = category.String
	ticket.Contact = contact.String
	ticket.Notes = notes.String
	return &ticket, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullText(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func nullStatus(s *domain.TicketStatus) any {
	if s == nil {
		return nil
	}
	return string(*s)
}

func nullPriority(p *domain.TicketPriority) any {
	if p == nil {
		return nil
	}
	return string(*p)
}
