package events

import "time"

// DomainEvent is the base interface for all domain events
// Events represent something that has happened in the past
type DomainEvent interface {
	GetAggregateID() string
	GetEventType() string
	GetTimestamp() time.Time
}

// BaseEvent provides common event fields
type BaseEvent struct {
	AggregateID string    `json:"aggregate_id"`
	EventType   string    `json:"event_type"`
	Timestamp   time.Time `json:"timestamp"`
}

func (e BaseEvent) GetAggregateID() string  { return e.AggregateID }
func (e BaseEvent) GetEventType() string    { return e.EventType }
func (e BaseEvent) GetTimestamp() time.Time { return e.Timestamp }

// DocumentCreated is raised when a new document graph is created
type DocumentCreated struct {
	BaseEvent
	Title string `json:"title"`
}

// NodeAdded is raised when a node is added to a document graph
type NodeAdded struct {
	BaseEvent
	NodeName string `json:"node_name"`
}

// NodeRenamed is raised when a node is renamed; every edge naming the
// old name has already been rewritten when this event is observed
type NodeRenamed struct {
	BaseEvent
	OldName string `json:"old_name"`
	NewName string `json:"new_name"`
}

// NodeDeleted is raised when a node is deleted and its inbound edges
// collapsed into self-loops
type NodeDeleted struct {
	BaseEvent
	NodeName string `json:"node_name"`
}

// InitNodeChanged is raised when the designated initial node moves
type InitNodeChanged struct {
	BaseEvent
	OldName string `json:"old_name"`
	NewName string `json:"new_name"`
}

// NewBase builds the shared event fields
func NewBase(aggregateID, eventType string) BaseEvent {
	return BaseEvent{
		AggregateID: aggregateID,
		EventType:   eventType,
		Timestamp:   time.Now(),
	}
}
