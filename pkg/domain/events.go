package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventRunStart EventType = "run_start"
	EventStep     EventType = "step"
	EventHalt     EventType = "halt"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
}

// StepEvent is emitted after every counted step that applied a rule.
type StepEvent struct {
	EventBase
	Step      int       `json:"step"`
	FromState string    `json:"from_state"`
	ToState   string    `json:"to_state"`
	Read      Symbol    `json:"read"`
	Write     Symbol    `json:"write"`
	Move      Direction `json:"move"`
	Match     Match     `json:"match"`
}

// HaltEvent is emitted once when a run reaches a terminal outcome.
type HaltEvent struct {
	EventBase
	Outcome  Outcome       `json:"outcome"`
	Steps    int           `json:"steps"`
	State    string        `json:"state"`
	TapeLen  int           `json:"tape_len"`
	Duration time.Duration `json:"duration"`
}

// LifecycleHooks defines callbacks for engine observability.
type LifecycleHooks struct {
	OnRunStart func(context.Context, *EventBase)
	OnStep     func(context.Context, *StepEvent)
	OnHalt     func(context.Context, *HaltEvent)
}
