package data

import "context"

// Reject is one entry of the provider's suppression (reject) list.
type Reject struct {
	Email       string `json:"email"`
	Reason      string `json:"reason"`
	Detail      string `json:"detail"`
	CreatedAt   string `json:"created_at"`
	LastEventAt string `json:"last_event_at"`
	ExpiresAt   string `json:"expires_at"`
	Expired     bool   `json:"expired"`
	Subaccount  string `json:"subaccount"`
}

// RejectLookup defines the interface for suppression list lookups.
type RejectLookup interface {
	// ListRejects returns the non-expired suppression entries matching email.
	// An empty slice means the address is not suppressed.
	ListRejects(ctx context.Context, email string) ([]Reject, error)
}
