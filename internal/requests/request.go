package requests

import (
	"fmt"
	"time"
)

// Type classifies an administrative request.
type Type string

const (
	TypeKYCUpdate         Type = "kyc_update"
	TypeHighValueTransfer Type = "high_value_transfer"
	TypeAddressChange     Type = "address_change"
)

// Status is the lifecycle state of a request.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// ParseStatus accepts pending, approved or rejected.
func ParseStatus(s string) (Status, bool) {
	switch st := Status(s); st {
	case StatusPending, StatusApproved, StatusRejected:
		return st, true
	}
	return "", false
}

// Request is an item awaiting a staff decision.
type Request struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id"`
	UserName  string     `json:"user_name"`
	Type      Type       `json:"type"`
	Details   string     `json:"details"`
	Date      time.Time  `json:"date"`
	Status    Status     `json:"status"`
	DecidedAt *time.Time `json:"decided_at,omitempty"`
}

// InvalidStateTransitionError represents an invalid state transition
type InvalidStateTransitionError struct {
	From      Status
	To        Status
	RequestID string
}

func (e *InvalidStateTransitionError) Error() string {
	return fmt.Sprintf("invalid state transition from %s to %s for request %s", e.From, e.To, e.RequestID)
}

// AllowedTransitions defines valid status transitions. Approved and
// rejected are terminal.
func AllowedTransitions() map[Status][]Status {
	return map[Status][]Status{
		StatusPending:  {StatusApproved, StatusRejected},
		StatusApproved: {},
		StatusRejected: {},
	}
}

// IsValidTransition checks if a status transition is allowed
func IsValidTransition(from, to Status) bool {
	for _, s := range AllowedTransitions()[from] {
		if s == to {
			return true
		}
	}
	return false
}

// StatusDescription provides human-readable descriptions of statuses
func StatusDescription(s Status) string {
	switch s {
	case StatusPending:
		return "Request is waiting for a staff decision"
	case StatusApproved:
		return "Request was approved by staff"
	case StatusRejected:
		return "Request was rejected by staff"
	default:
		return "Unknown status"
	}
}
