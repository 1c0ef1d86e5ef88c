package domain

import "time"

// EventKind identifies a lifecycle event worth telling someone about.
type EventKind string

const (
	EventTicketCreated            EventKind = "ticket_created"
	EventTicketStatusChanged      EventKind = "ticket_status_changed"
	EventTicketCommentAdded       EventKind = "ticket_comment_added"
	EventPortabiliteCreated       EventKind = "portabilite_created"
	EventPortabiliteStatusChanged EventKind = "portabilite_status_changed"
	EventPortabiliteCommentAdded  EventKind = "portabilite_comment_added"
)

// Notification is the payload handed to the notification collaborator.
// Reference is the human handle of the entity: a ticket title or a
// numero_portabilite.
type Notification struct {
	Kind        EventKind
	EntityID    string
	Reference   string
	DemandeurID string
	ActorID     string
	ActorRole   Role
	Status      string
	Message     string
	OccurredAt  time.Time
}
