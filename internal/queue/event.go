// Package queue defines the enrollment event payload exchanged over the
// message broker and the consumer that records it.
package queue

import "time"

// QueueName is the durable queue every enrollment event is routed to.
const QueueName = "enrollment.events"

// EventType names a state change worth recording.
type EventType string

const (
	ClassCreated         EventType = "class.created"
	ClassStatusChanged   EventType = "class.status_changed"
	UserRoleChanged      EventType = "user.role_changed"
	CartItemAdded        EventType = "cart.item_added"
	CartItemRemoved      EventType = "cart.item_removed"
	PaymentIntentCreated EventType = "payment.intent_created"
)

// Event is published after a mutation succeeds.  Actor is the email of the
// authenticated caller, Subject the id of the record that changed.
type Event struct {
	Type       EventType         `json:"type"`
	Actor      string            `json:"actor"`
	Subject    string            `json:"subject,omitempty"`
	Detail     map[string]string `json:"detail,omitempty"`
	OccurredAt string            `json:"occurred_at"`
}

// NewEvent stamps an event with the current UTC time.
func NewEvent(t EventType, actor, subject string, detail map[string]string) Event {
	return Event{
		Type:       t,
		Actor:      actor,
		Subject:    subject,
		Detail:     detail,
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	}
}
