// Package event defines the typed events published on the bus and broadcast
// to connected dashboard clients.
package event

import "time"

// Type identifies an assistant event.
type Type string

const (
	TypeActionExecuted Type = "action.executed"
	TypeActionFailed   Type = "action.failed"
	TypeRouteChosen    Type = "route.chosen"
	TypeRouteExhausted Type = "route.exhausted"
	TypeBreakerOpened  Type = "breaker.opened"
)

// Subject returns the NATS subject for this event type.
func (t Type) Subject() string {
	switch t {
	case TypeActionExecuted, TypeActionFailed:
		return "assistant.actions." + string(t)
	default:
		return "assistant.routing." + string(t)
	}
}

// Event is the envelope published for every assistant occurrence.
type Event struct {
	Type      Type      `json:"type"`
	SessionID string    `json:"session_id,omitempty"`
	Expert    string    `json:"expert,omitempty"`
	Action    string    `json:"action,omitempty"`
	Route     string    `json:"route,omitempty"` // "provider/model"
	Reason    string    `json:"reason,omitempty"`
	Detail    string    `json:"detail,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
