package events

import "time"

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventSiteCreated      EventType = "site_created"
	EventSiteDeleted      EventType = "site_deleted"
	EventWorkerRegistered EventType = "worker_registered"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	SiteID    string      `json:"site_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// SiteCreatedPayload payload.
type SiteCreatedPayload struct {
	DirectorID string `json:"director_id"`
	Name       string `json:"name"`
}

// SiteDeletedPayload payload.
type SiteDeletedPayload struct {
	DirectorID string `json:"director_id"`
	Name       string `json:"name"`
}

// WorkerRegisteredPayload payload.
type WorkerRegisteredPayload struct {
	WorkerName string `json:"worker_name"`
	MaxShifts  int    `json:"max_shifts"`
}
