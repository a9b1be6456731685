package dto

import (
	"time"

	"github.com/spec-kit/chamados-service/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Status      domain.TicketStatus   `json:"status"`
	Priority    domain.TicketPriority `json:"priority"`
	Category    string                `json:"category"`
	Contact     string                `json:"contact"`
	Notes       string                `json:"notes"`
}

// UpdateTicketRequest carries a partial update; absent fields stay nil.
type UpdateTicketRequest struct {
	Title       *string                `json:"title"`
	Description *string                `json:"description"`
	Status      *domain.TicketStatus   `json:"status"`
	Priority    *domain.TicketPriority `json:"priority"`
	Category    *string                `json:"category"`
	Contact     *string                `json:"contact"`
	Notes       *string                `json:"notes"`
}

// TicketResponse is the wire representation of a chamado.
type TicketResponse struct {
	ID          int64                 `json:"id"`
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Status      domain.TicketStatus   `json:"status"`
	Priority    domain.TicketPriority `json:"priority"`
	OpenedAt    string                `json:"openedAt"`
	Category    string                `json:"category,omitempty"`
	Contact     string                `json:"contact,omitempty"`
	Notes       string                `json:"notes,omitempty"`
}

// NewTicketResponse maps a domain ticket onto the wire shape.
func NewTicketResponse(ticket *domain.Ticket) TicketResponse {
	return TicketResponse{
		ID:          ticket.ID,
		Title:       ticket.Title,
		Description: ticket.Description,
		Status:      ticket.Status,
		Priority:    ticket.Priority,
		OpenedAt:    ticket.OpenedAt.UTC().Format(time.RFC3339),
		Category:    ticket.Category,
		Contact:     ticket.Contact,
		Notes:       ticket.Notes,
	}
}
