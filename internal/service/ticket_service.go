package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/chamados-service/internal/domain"
	"github.com/spec-kit/chamados-service/internal/events"
	"github.com/spec-kit/chamados-service/internal/repository"
	apperrors "github.com/spec-kit/chamados-service/pkg/util/errorutil"
)

// TicketService coordinates chamado workflows.
type TicketService struct {
	tickets    repository.TicketRepository
	dispatcher events.Dispatcher
	now        func() time.Time
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo repository.TicketRepository
	Dispatcher events.Dispatcher
	Now        func() time.Time
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Title       string
	Description string
	Status      domain.TicketStatus
	Priority    domain.TicketPriority
	Category    string
	Contact     string
	Notes       string
}

// TicketPatchInput describes a partial update. Nil fields are left
// untouched; clearing a stored value is not possible through this path.
type TicketPatchInput struct {
	Title       *string
	Description *string
	Status      *domain.TicketStatus
	Priority    *domain.TicketPriority
	Category    *string
	Contact     *string
	Notes       *string
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &TicketService{
		tickets:    deps.TicketRepo,
		dispatcher: deps.Dispatcher,
		now:        now,
	}
}

// Create validates input, applies defaults and stores a new ticket.
func (s *TicketService) Create(ctx context.Context, input TicketCreateInput) (*domain.Ticket, error) {
	title := strings.TrimSpace(input.Title)
	description := strings.TrimSpace(input.Description)
	if title == "" || description == "" {
		return nil, apperrors.NewValidationError("title and description are required")
	}

	status := input.Status
	if status == "" {
		status = domain.TicketStatusOpen
	}
	if !status.IsValid() {
		return nil, apperrors.NewValidationError("unknown status: " + string(status))
	}

	priority := input.Priority
	if priority == "" {
		priority = domain.TicketPriorityMedium
	}
	if !priority.IsValid() {
		return nil, apperrors.NewValidationError("unknown priority: " + string(priority))
	}

	ticket := &domain.Ticket{
		Title:       title,
		Description: description,
		Status:      status,
		Priority:    priority,
		OpenedAt:    s.now().UTC().Truncate(time.Second),
		Category:    strings.TrimSpace(input.Category),
		Contact:     strings.TrimSpace(input.Contact),
		Notes:       strings.TrimSpace(input.Notes),
	}

	if err := s.tickets.Insert(ctx, ticket); err != nil {
		return nil, apperrors.NewStorageError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Payload: events.TicketCreatedPayload{
			Title:    ticket.Title,
			Status:   ticket.Status,
			Priority: ticket.Priority,
		},
	})
	return ticket, nil
}

// Get returns a single ticket by id.
func (s *TicketService) Get(ctx context.Context, id int64) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NewNotFound("chamado")
		}
		return nil, apperrors.NewStorageError(err)
	}
	return ticket, nil
}

// List returns the full collection. Filtering and pagination happen in the
// browser views, never here.
func (s *TicketService) List(ctx context.Context) ([]domain.Ticket, error) {
	tickets, err := s.tickets.List(ctx)
	if err != nil {
		return nil, apperrors.NewStorageError(err)
	}
	return tickets, nil
}

// Update applies a partial update and returns the re-read ticket, not the
// patch echoed back.
func (s *TicketService) Update(ctx context.Context, id int64, patch TicketPatchInput) (*domain.Ticket, error) {
	if err := validatePatch(patch); err != nil {
		return nil, err
	}

	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	affected, err := s.tickets.UpdateByID(ctx, id, repository.TicketPatch{
		Title:       patch.Title,
		Description: patch.Description,
		Status:      patch.Status,
		Priority:    patch.Priority,
		Category:    patch.Category,
		Contact:     patch.Contact,
		Notes:       patch.Notes,
	})
	if err != nil {
		return nil, apperrors.NewStorageError(err)
	}
	if affected == 0 {
		return nil, apperrors.NewNotFound("chamado")
	}

	updated, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if existing.Status != updated.Status {
		s.publishEvent(ctx, events.Event{
			Type:     events.EventTicketStatusChanged,
			TicketID: id,
			Payload: events.TicketStatusChangedPayload{
				OldStatus: existing.Status,
				NewStatus: updated.Status,
			},
		})
	}
	if existing.Priority != updated.Priority {
		s.publishEvent(ctx, events.Event{
			Type:     events.EventTicketPriorityChanged,
			TicketID: id,
			Payload: events.TicketPriorityChangedPayload{
				OldPriority: existing.Priority,
				NewPriority: updated.Priority,
			},
		})
	}
	return updated, nil
}

// Delete removes a ticket, reporting whether a row was removed. A missing
// id is a normal outcome communicated to the caller, not a storage error.
func (s *TicketService) Delete(ctx context.Context, id int64) (bool, error) {
	existing, err := s.tickets.GetByID(ctx, id)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return false, apperrors.NewStorageError(err)
	}

	removed, err := s.tickets.DeleteByID(ctx, id)
	if err != nil {
		return false, apperrors.NewStorageError(err)
	}
	if removed && existing != nil {
		s.publishEvent(ctx, events.Event{
			Type:     events.EventTicketDeleted,
			TicketID: id,
			Payload:  events.TicketDeletedPayload{Title: existing.Title},
		})
	}
	return removed, nil
}

func validatePatch(patch TicketPatchInput) error {
	if patch.Title == nil && patch.Description == nil && patch.Status == nil &&
		patch.Priority == nil && patch.Category == nil && patch.Contact == nil && patch.Notes == nil {
		return apperrors.NewValidationError("no fields to update")
	}
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return apperrors.NewValidationError("title cannot be empty")
	}
	if patch.Description != nil && strings.TrimSpace(*patch.Description) == "" {
		return apperrors.NewValidationError("description cannot be empty")
	}
	if patch.Status != nil && !patch.Status.IsValid() {
		return apperrors.NewValidationError("unknown status: " + string(*patch.Status))
	}
	if patch.Priority != nil && !patch.Priority.IsValid() {
		return apperrors.NewValidationError("unknown priority: " + string(*patch.Priority))
	}
	return nil
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	event.ID = uuid.NewString()
	event.Timestamp = s.now().UTC()
	_ = s.dispatcher.Publish(ctx, event)
}
