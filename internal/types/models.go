// Package types holds the wire models exchanged with the Support Desk
// backend. List rows and full ticket records are deliberately separate
// types: a TicketSummary is a snapshot that is only ever replaced
// wholesale by a list refresh, while TicketDetail is the full record
// for the one ticket currently open.
package types

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/supportdesk-io/sdesk/internal/errors"
)

// Role is the authenticated user's role as encoded in the backend JWT.
type Role string

const (
	RoleAgent Role = "agent"
	RoleAdmin Role = "admin"
)

// Identity is the resolved authenticated user, as returned by GET /me.
type Identity struct {
	UserID uuid.UUID `json:"user_id"`
	Role   Role      `json:"role"`
}

// Status is the ticket lifecycle state. The wire values are exact and
// case-sensitive; the client never restricts transitions between them,
// the backend is the authority on legality.
type Status string

const (
	StatusOpen            Status = "open"
	StatusInProgress      Status = "in_progress"
	StatusWaitingCustomer Status = "waiting_customer"
	StatusResolved        Status = "resolved"
	StatusClosed          Status = "closed"
)

// Statuses returns every valid status in display order.
func Statuses() []Status {
	return []Status{
		StatusOpen,
		StatusInProgress,
		StatusWaitingCustomer,
		StatusResolved,
		StatusClosed,
	}
}

// Valid reports whether s is one of the known wire values.
func (s Status) Valid() bool {
	switch s {
	case StatusOpen, StatusInProgress, StatusWaitingCustomer, StatusResolved, StatusClosed:
		return true
	}
	return false
}

// ParseStatus converts a raw string into a Status, rejecting unknown
// values before they reach the wire.
func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	if !s.Valid() {
		return "", &errors.ValidationError{
			Field:   "status",
			Message: fmt.Sprintf("unknown status %q, valid values: %s", raw, StatusList()),
		}
	}
	return s, nil
}

// StatusList renders the valid status names for error messages and
// command help.
func StatusList() string {
	all := Statuses()
	names := make([]string, len(all))
	for i, s := range all {
		names[i] = string(s)
	}
	return strings.Join(names, ", ")
}

// TicketSummary is the lightweight list-row projection produced by the
// list endpoint. Number is a display-only sequence, assigned by the
// backend.
type TicketSummary struct {
	ID         uuid.UUID  `json:"id"`
	Number     int        `json:"number"`
	Title      string     `json:"title"`
	Status     Status     `json:"status"`
	AssigneeID *uuid.UUID `json:"assignee_id,omitempty"`
}

// TicketDetail is the full ticket record, including messages and
// attachments in server-provided order.
type TicketDetail struct {
	ID             uuid.UUID    `json:"id"`
	Number         int          `json:"number"`
	Title          string       `json:"title"`
	Description    string       `json:"description"`
	Status         Status       `json:"status"`
	RequesterName  string       `json:"requester_name"`
	RequesterEmail string       `json:"requester_email"`
	AssigneeID     *uuid.UUID   `json:"assignee_id,omitempty"`
	Messages       []Message    `json:"messages"`
	Attachments    []Attachment `json:"attachments"`
}

// Summary projects the detail down to its list-row form.
func (d *TicketDetail) Summary() TicketSummary {
	return TicketSummary{
		ID:         d.ID,
		Number:     d.Number,
		Title:      d.Title,
		Status:     d.Status,
		AssigneeID: d.AssigneeID,
	}
}

// Message is a single entry in a ticket's conversation. Append-only
// from the client's perspective.
type Message struct {
	AuthorID  uuid.UUID `json:"author_id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// Attachment is a file attached to a ticket.
type Attachment struct {
	ID       uuid.UUID `json:"id"`
	Filename string    `json:"filename"`
	Size     int64     `json:"size"`
}

// AuditRow is one event in a ticket's audit trail. Admin-only.
type AuditRow struct {
	EventType string         `json:"event_type"`
	ActorID   *uuid.UUID     `json:"actor_id,omitempty"`
	Payload   map[string]any `json:"payload,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// Credentials is the login payload. The backend defines the required
// field set: some deployments validate email only, others email and
// password, so the password is simply omitted from the wire when
// empty.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password,omitempty"`
}

// TicketCreateRequest carries the four mandatory fields for creating
// a ticket.
type TicketCreateRequest struct {
	Title          string `json:"title"`
	Description    string `json:"description"`
	RequesterName  string `json:"requester_name"`
	RequesterEmail string `json:"requester_email"`
}

// Trimmed returns a copy with surrounding whitespace removed from
// every field.
func (r TicketCreateRequest) Trimmed() TicketCreateRequest {
	return TicketCreateRequest{
		Title:          strings.TrimSpace(r.Title),
		Description:    strings.TrimSpace(r.Description),
		RequesterName:  strings.TrimSpace(r.RequesterName),
		RequesterEmail: strings.TrimSpace(r.RequesterEmail),
	}
}

// Validate reports the first empty mandatory field as a
// ValidationError. Call on the Trimmed form.
func (r TicketCreateRequest) Validate() error {
	fields := []struct {
		name  string
		value string
	}{
		{"title", r.Title},
		{"description", r.Description},
		{"requester_name", r.RequesterName},
		{"requester_email", r.RequesterEmail},
	}
	for _, f := range fields {
		if f.value == "" {
			return &errors.ValidationError{Field: f.name, Message: f.name + " is required"}
		}
	}
	return nil
}

// StatusUpdate is the PATCH /tickets/{id}/status payload.
type StatusUpdate struct {
	Status Status `json:"status"`
}

// AssigneeUpdate is the PATCH /tickets/{id}/assignee payload. A nil
// AssigneeID serializes as JSON null, which clears the assignment.
type AssigneeUpdate struct {
	AssigneeID *uuid.UUID `json:"assignee_id"`
}

// MessageCreate is the POST /tickets/{id}/messages payload.
type MessageCreate struct {
	AuthorID uuid.UUID `json:"author_id"`
	Body     string    `json:"body"`
}
