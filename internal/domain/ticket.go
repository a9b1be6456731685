package domain

import "time"

// TicketStatus enumerates lifecycle states for chamados.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "Open"
	TicketStatusInProgress TicketStatus = "In Progress"
	TicketStatusClosed     TicketStatus = "Closed"
)

// IsValid reports whether the status is a member of the closed set.
func (s TicketStatus) IsValid() bool {
	switch s {
	case TicketStatusOpen, TicketStatusInProgress, TicketStatusClosed:
		return true
	}
	return false
}

// TicketPriority enumerates urgency levels.
type TicketPriority string

const (
	TicketPriorityHigh   TicketPriority = "High"
	TicketPriorityMedium TicketPriority = "Medium"
	TicketPriorityLow    TicketPriority = "Low"
)

// IsValid reports whether the priority is a member of the closed set.
func (p TicketPriority) IsValid() bool {
	switch p {
	case TicketPriorityHigh, TicketPriorityMedium, TicketPriorityLow:
		return true
	}
	return false
}

// Ticket is the aggregate for help-desk requests.
//
// OpenedAt is stamped once at creation and never modified afterwards.
// Category, Contact and Notes are opaque free-text fields carried for the
// browser views; the service stores them without validation.
type Ticket struct {
	ID          int64
	Title       string
	Description string
	Status      TicketStatus
	Priority    TicketPriority
	OpenedAt    time.Time
	Category    string
	Contact     string
	Notes       string
}
