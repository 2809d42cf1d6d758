package domain

import "time"

// RSVPEventType identifies a reservation lifecycle event on the broker
type RSVPEventType string

const (
	RSVPEventConfirmed  RSVPEventType = "rsvp.confirmed"
	RSVPEventWaitlisted RSVPEventType = "rsvp.waitlisted"
	RSVPEventUpdated    RSVPEventType = "rsvp.updated"
	RSVPEventCancelled  RSVPEventType = "rsvp.cancelled"
	RSVPEventPromoted   RSVPEventType = "rsvp.promoted"
)

// RSVPEvent is the message published for downstream consumers (notification
// senders, analytics). Delivery of notifications is out of scope here.
type RSVPEvent struct {
	ID          string        `json:"id"`
	Type        RSVPEventType `json:"type"`
	Reservation *Reservation  `json:"reservation"`
	Timestamp   time.Time     `json:"timestamp"`
}

// NewRSVPEvent builds an event envelope for a reservation
func NewRSVPEvent(eventType RSVPEventType, reservation *Reservation, id string) *RSVPEvent {
	return &RSVPEvent{
		ID:          id,
		Type:        eventType,
		Reservation: reservation,
		Timestamp:   time.Now().UTC(),
	}
}

// Key returns the partition key; all events for one venue event stay ordered
func (e *RSVPEvent) Key() string {
	if e.Reservation != nil {
		return e.Reservation.EventID
	}
	return e.ID
}
