package order

import (
	"database/sql/driver"
	"fmt"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusAccepted  Status = "accepted"
	StatusReady     Status = "ready"
	StatusCollected Status = "collected"
	StatusRejected  Status = "rejected"
	StatusCancelled Status = "cancelled"
)

// allowedTransitions is the fulfillment adjacency graph. Terminal statuses
// have no outgoing edges.
var allowedTransitions = map[Status]map[Status]bool{
	StatusPending: {
		StatusAccepted: true,
		StatusRejected: true,
	},
	StatusAccepted: {
		StatusReady:     true,
		StatusCancelled: true,
	},
	StatusReady: {
		StatusCollected: true,
		StatusCancelled: true,
	},
	StatusCollected: {},
	StatusRejected:  {},
	StatusCancelled: {},
}

func (s Status) String() string {
	return string(s)
}

func (s Status) Value() (driver.Value, error) {
	return s.String(), nil
}

// IsTerminal reports whether no further transition is permitted out of s.
// Only collected and cancelled are immutable; a rejected order has no legal
// successor either, but the source of truth for immutability is this pair.
func (s Status) IsTerminal() bool {
	return s == StatusCollected || s == StatusCancelled
}

// CanTransitionTo reports whether the adjacency graph permits s -> target.
func (s Status) CanTransitionTo(target Status) bool {
	return allowedTransitions[s][target]
}

// ParseStatus maps a wire string onto a recognized status.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPending, StatusAccepted, StatusReady, StatusCollected, StatusRejected, StatusCancelled:
		return Status(s), nil
	default:
		return "", &UnknownStatusError{Value: s}
	}
}

// UnknownStatusError is returned for a status string outside the six
// recognized values.
type UnknownStatusError struct {
	Value string
}

func (e *UnknownStatusError) Error() string {
	return fmt.Sprintf("unknown order status %q", e.Value)
}

// TerminalStateError is returned for any transition attempt out of a
// collected or cancelled order, regardless of the requested target.
type TerminalStateError struct {
	OrderID int64
	Status  Status
}

func (e *TerminalStateError) Error() string {
	return fmt.Sprintf("order %d is %s and can no longer change", e.OrderID, e.Status)
}

// InvalidTransitionError is returned when strict adjacency enforcement is
// on and the requested edge is not in the graph.
type InvalidTransitionError struct {
	OrderID int64
	From    Status
	To      Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("order %d cannot go from %s to %s", e.OrderID, e.From, e.To)
}
